package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/sheetstack/sheetsmcp/internal/apierr"
	"github.com/sheetstack/sheetsmcp/internal/google"
)

// newFakeClient builds a client whose Sheets and Drive services talk to
// the given handler instead of Google.
func newFakeClient(t *testing.T, handler http.Handler, folderID string) *Client {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	ctx := context.Background()
	sheetsService, err := sheetsapi.NewService(ctx,
		option.WithEndpoint(ts.URL),
		option.WithHTTPClient(ts.Client()),
	)
	require.NoError(t, err)

	driveService, err := drive.NewService(ctx,
		option.WithEndpoint(ts.URL),
		option.WithHTTPClient(ts.Client()),
	)
	require.NoError(t, err)

	return NewClient(google.NewSessionFromServices(sheetsService, driveService, folderID))
}

func writeGoogleError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error":{"code":%d,"message":%q}}`, code, message)
}

// An update must be readable back through the same range, and both calls
// must carry the value options the Sheets UI semantics depend on.
func TestClient_UpdateThenGetRoundTrip(t *testing.T) {
	values := make(map[string][][]interface{})

	mux := http.NewServeMux()
	mux.HandleFunc("PUT /v4/spreadsheets/s1/values/{range}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "USER_ENTERED", r.URL.Query().Get("valueInputOption"))

		var vr sheetsapi.ValueRange
		require.NoError(t, json.NewDecoder(r.Body).Decode(&vr))
		values[r.PathValue("range")] = vr.Values

		resp := sheetsapi.UpdateValuesResponse{
			SpreadsheetId:  "s1",
			UpdatedRange:   r.PathValue("range"),
			UpdatedRows:    int64(len(vr.Values)),
			UpdatedCells:   2,
			UpdatedColumns: 2,
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})
	mux.HandleFunc("GET /v4/spreadsheets/s1/values/{range}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "UNFORMATTED_VALUE", r.URL.Query().Get("valueRenderOption"))

		resp := sheetsapi.ValueRange{Values: values[r.PathValue("range")]}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	client := newFakeClient(t, mux, "")
	ctx := context.Background()

	written := Matrix{{"name", "count"}}
	update, err := client.UpdateCells(ctx, "s1", "Sheet1", "A1:B1", written)
	require.NoError(t, err)
	assert.Equal(t, "s1", update.SpreadsheetID)
	assert.Equal(t, int64(2), update.UpdatedCells)

	got, err := client.GetSheetData(ctx, "s1", "Sheet1", "A1:B1")
	require.NoError(t, err)
	assert.Equal(t, written, got)
}

// A vendor 404 must classify as not found after travelling through the
// real API client plumbing, not just when injected directly.
func TestClient_VendorNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeGoogleError(w, http.StatusNotFound, "Requested entity was not found.")
	})

	client := newFakeClient(t, mux, "")

	_, err := client.GetSheetData(context.Background(), "missing", "Sheet1", "")
	require.Error(t, err)
	assert.Equal(t, apierr.KindNotFound, apierr.KindOf(err))
	assert.Contains(t, err.Error(), "Requested entity was not found.")
}

// Listing with a configured folder must scope the Drive query to that
// folder and to non-trashed spreadsheets.
func TestClient_ListSpreadsheetsFolderScoped(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /files", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		assert.Contains(t, q, "'folder42' in parents")
		assert.Contains(t, q, "mimeType='"+SpreadsheetMimeType+"'")
		assert.Contains(t, q, "trashed=false")

		resp := drive.FileList{
			Files: []*drive.File{
				{
					Id:           "s1",
					Name:         "Budget",
					CreatedTime:  "2026-01-02T03:04:05Z",
					ModifiedTime: "2026-01-03T03:04:05Z",
					WebViewLink:  "https://docs.google.com/spreadsheets/d/s1",
				},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	client := newFakeClient(t, mux, "folder42")

	infos, err := client.ListSpreadsheets(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "s1", infos[0].ID)
	assert.Equal(t, "Budget", infos[0].Title)
	assert.False(t, infos[0].CreatedTime.IsZero())
}

// Creating with a configured folder must reparent the new file out of its
// default parent and into the folder.
func TestClient_CreateSpreadsheetMovesIntoFolder(t *testing.T) {
	var moved bool

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v4/spreadsheets", func(w http.ResponseWriter, r *http.Request) {
		resp := sheetsapi.Spreadsheet{
			SpreadsheetId:  "new123",
			SpreadsheetUrl: "https://docs.google.com/spreadsheets/d/new123",
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})
	mux.HandleFunc("GET /files/new123", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(drive.File{Parents: []string{"root1"}}))
	})
	mux.HandleFunc("PATCH /files/new123", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "folder42", r.URL.Query().Get("addParents"))
		assert.Equal(t, "root1", r.URL.Query().Get("removeParents"))
		moved = true
		require.NoError(t, json.NewEncoder(w).Encode(drive.File{Id: "new123"}))
	})

	client := newFakeClient(t, mux, "folder42")

	info, err := client.CreateSpreadsheet(context.Background(), "Roadmap")
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, "new123", info.ID)
	assert.Equal(t, "folder42", info.FolderID)
	assert.Equal(t, "Roadmap", info.Title)
}

// Per-email share outcomes are independent: one rejected address must not
// roll back grants that already succeeded.
func TestClient_ShareSpreadsheetPartialFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /files/s1/permissions", func(w http.ResponseWriter, r *http.Request) {
		var perm drive.Permission
		require.NoError(t, json.NewDecoder(r.Body).Decode(&perm))

		if strings.HasPrefix(perm.EmailAddress, "blocked") {
			writeGoogleError(w, http.StatusForbidden, "The user does not have sufficient permissions.")
			return
		}
		resp := drive.Permission{Id: "perm-1", Role: perm.Role}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	client := newFakeClient(t, mux, "")

	result, err := client.ShareSpreadsheet(context.Background(), "s1",
		[]string{"ok@example.com", "blocked@example.com"}, RoleReader, false)
	require.NoError(t, err)

	require.Len(t, result.Shared, 1)
	assert.Equal(t, "ok@example.com", result.Shared[0].Email)
	assert.Equal(t, RoleReader, result.Shared[0].Role)

	require.Len(t, result.Failed, 1)
	assert.Equal(t, "blocked@example.com", result.Failed[0].Email)
	assert.Contains(t, result.Failed[0].Error, "sufficient permissions")
}
