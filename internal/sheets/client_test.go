package sheets

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	drive "google.golang.org/api/drive/v3"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/sheetstack/sheetsmcp/internal/apierr"
)

// Validation failures must be rejected before any network round trip, so
// a client without a live session is enough to exercise them.
func newValidationClient() *Client {
	return &Client{}
}

func TestGetSheetDataValidation(t *testing.T) {
	c := newValidationClient()
	ctx := context.Background()

	_, err := c.GetSheetData(ctx, "", "Sheet1", "A1:B2")
	assert.Equal(t, apierr.KindValidation, apierr.KindOf(err))

	_, err = c.GetSheetData(ctx, "sheet123", "", "A1:B2")
	assert.Equal(t, apierr.KindValidation, apierr.KindOf(err))
}

func TestUpdateCellsValidation(t *testing.T) {
	c := newValidationClient()
	ctx := context.Background()

	tests := []struct {
		name          string
		spreadsheetID string
		sheet         string
		rng           string
		data          Matrix
	}{
		{name: "missing spreadsheet", sheet: "Sheet1", rng: "A1:B2", data: Matrix{{"x"}}},
		{name: "missing sheet", spreadsheetID: "s1", rng: "A1:B2", data: Matrix{{"x"}}},
		{name: "missing range", spreadsheetID: "s1", sheet: "Sheet1", data: Matrix{{"x"}}},
		{name: "empty matrix", spreadsheetID: "s1", sheet: "Sheet1", rng: "A1:B2", data: Matrix{}},
		{name: "nil matrix", spreadsheetID: "s1", sheet: "Sheet1", rng: "A1:B2", data: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.UpdateCells(ctx, tt.spreadsheetID, tt.sheet, tt.rng, tt.data)
			require.Error(t, err)
			assert.Equal(t, apierr.KindValidation, apierr.KindOf(err))
		})
	}
}

func TestBatchUpdateCellsEmptyIsNoOp(t *testing.T) {
	c := newValidationClient()

	result, err := c.BatchUpdateCells(context.Background(), "sheet123", nil)
	require.NoError(t, err)
	assert.Equal(t, "sheet123", result.SpreadsheetID)
	assert.Empty(t, result.Responses)
	assert.Zero(t, result.TotalUpdatedCells)
}

func TestBatchUpdateCellsValidation(t *testing.T) {
	c := newValidationClient()
	ctx := context.Background()

	_, err := c.BatchUpdateCells(ctx, "", nil)
	assert.Equal(t, apierr.KindValidation, apierr.KindOf(err))

	_, err = c.BatchUpdateCells(ctx, "sheet123", []RangeValues{{Values: Matrix{{"x"}}}})
	require.Error(t, err)
	assert.Equal(t, apierr.KindValidation, apierr.KindOf(err))
	assert.Contains(t, err.Error(), "updates[0]")
}

func TestAddRowsValidation(t *testing.T) {
	c := newValidationClient()

	_, err := c.AddRows(context.Background(), "sheet123", "Sheet1", Matrix{}, true)
	require.Error(t, err)
	assert.Equal(t, apierr.KindValidation, apierr.KindOf(err))
}

func TestCreateSpreadsheetValidation(t *testing.T) {
	c := newValidationClient()

	_, err := c.CreateSpreadsheet(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, apierr.KindValidation, apierr.KindOf(err))
}

func TestShareSpreadsheetValidation(t *testing.T) {
	c := newValidationClient()
	ctx := context.Background()

	tests := []struct {
		name          string
		spreadsheetID string
		emails        []string
		role          string
	}{
		{name: "missing spreadsheet", emails: []string{"a@example.com"}, role: RoleReader},
		{name: "no emails", spreadsheetID: "s1", role: RoleReader},
		{name: "invalid role", spreadsheetID: "s1", emails: []string{"a@example.com"}, role: "admin"},
		{name: "empty role", spreadsheetID: "s1", emails: []string{"a@example.com"}, role: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.ShareSpreadsheet(ctx, tt.spreadsheetID, tt.emails, tt.role, false)
			require.Error(t, err)
			assert.Equal(t, apierr.KindValidation, apierr.KindOf(err))
		})
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleReader, RoleCommenter, RoleWriter, RoleOwner} {
		assert.True(t, validRole(role), "role %q", role)
	}
	for _, role := range []string{"", "admin", "Reader", "editor"} {
		assert.False(t, validRole(role), "role %q", role)
	}
}

func TestRangeRef(t *testing.T) {
	tests := []struct {
		sheet    string
		rng      string
		expected string
	}{
		{sheet: "Sheet1", rng: "A1:B2", expected: "'Sheet1'!A1:B2"},
		{sheet: "Sheet1", rng: "", expected: "'Sheet1'"},
		{sheet: "Q1 Report", rng: "A1", expected: "'Q1 Report'!A1"},
		{sheet: "Bob's Data", rng: "A1:C3", expected: "'Bob''s Data'!A1:C3"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, rangeRef(tt.sheet, tt.rng))
	}
}

func TestEscapeQueryTerm(t *testing.T) {
	assert.Equal(t, "folder123", escapeQueryTerm("folder123"))
	assert.Equal(t, `a\'b`, escapeQueryTerm("a'b"))
}

func TestConvertToSpreadsheetInfo(t *testing.T) {
	f := &drive.File{
		Id:           "file123",
		Name:         "Budget",
		WebViewLink:  "https://docs.google.com/spreadsheets/d/file123",
		CreatedTime:  "2024-03-01T10:00:00Z",
		ModifiedTime: "2024-03-02T15:30:00Z",
	}

	info := convertToSpreadsheetInfo(f)
	assert.Equal(t, "file123", info.ID)
	assert.Equal(t, "Budget", info.Title)
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/file123", info.URL)

	expectedCreated, _ := time.Parse(time.RFC3339, "2024-03-01T10:00:00Z")
	assert.True(t, info.CreatedTime.Equal(expectedCreated))

	expectedModified, _ := time.Parse(time.RFC3339, "2024-03-02T15:30:00Z")
	assert.True(t, info.ModifiedTime.Equal(expectedModified))
}

func TestConvertToSpreadsheetInfoBadTimestamps(t *testing.T) {
	info := convertToSpreadsheetInfo(&drive.File{Id: "f", Name: "n", CreatedTime: "garbage"})
	assert.True(t, info.CreatedTime.IsZero())
}

func TestConvertToSheetInfo(t *testing.T) {
	p := &sheetsapi.SheetProperties{
		SheetId: 42,
		Title:   "Data",
		Index:   1,
		GridProperties: &sheetsapi.GridProperties{
			RowCount:    1000,
			ColumnCount: 26,
		},
	}

	info := convertToSheetInfo(p)
	assert.Equal(t, int64(42), info.SheetID)
	assert.Equal(t, "Data", info.Title)
	assert.Equal(t, int64(1), info.Index)
	assert.Equal(t, int64(1000), info.RowCount)
	assert.Equal(t, int64(26), info.ColumnCount)
}

func TestConvertToSheetInfoNoGrid(t *testing.T) {
	info := convertToSheetInfo(&sheetsapi.SheetProperties{SheetId: 7, Title: "Bare"})
	assert.Zero(t, info.RowCount)
	assert.Zero(t, info.ColumnCount)
}
