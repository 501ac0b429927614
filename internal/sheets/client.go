package sheets

import (
	"context"
	"fmt"
	"strings"
	"time"

	drive "google.golang.org/api/drive/v3"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/sheetstack/sheetsmcp/internal/apierr"
	"github.com/sheetstack/sheetsmcp/internal/google"
)

const (
	// SpreadsheetMimeType is the MIME type Drive uses for spreadsheets.
	SpreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

	// valueInputUserEntered makes the API parse input the way the Sheets
	// UI would (numbers, dates, formulas).
	valueInputUserEntered = "USER_ENTERED"
)

// Client wraps the Google Sheets and Drive API services.
type Client struct {
	session *google.Session
}

// NewClient creates a client over the given API session.
func NewClient(session *google.Session) *Client {
	return &Client{session: session}
}

// GetSheetData reads cell values from a range. An empty rng reads the
// whole sheet.
func (c *Client) GetSheetData(ctx context.Context, spreadsheetID, sheet, rng string) (Matrix, error) {
	if err := requireIDAndSheet(spreadsheetID, sheet); err != nil {
		return nil, err
	}

	resp, err := c.session.Sheets().Spreadsheets.Values.
		Get(spreadsheetID, rangeRef(sheet, rng)).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, apierr.FromGoogle("failed to get sheet data", err)
	}

	if resp.Values == nil {
		return Matrix{}, nil
	}
	return Matrix(resp.Values), nil
}

// GetSheetFormulas reads the formulas behind a range instead of the
// computed values. Cells without formulas come back as literals.
func (c *Client) GetSheetFormulas(ctx context.Context, spreadsheetID, sheet, rng string) (Matrix, error) {
	if err := requireIDAndSheet(spreadsheetID, sheet); err != nil {
		return nil, err
	}

	resp, err := c.session.Sheets().Spreadsheets.Values.
		Get(spreadsheetID, rangeRef(sheet, rng)).
		ValueRenderOption("FORMULA").
		Context(ctx).
		Do()
	if err != nil {
		return nil, apierr.FromGoogle("failed to get sheet formulas", err)
	}

	if resp.Values == nil {
		return Matrix{}, nil
	}
	return Matrix(resp.Values), nil
}

// UpdateCells overwrites the target range with the given matrix. Cells
// outside the matrix's bounding rectangle are left untouched.
func (c *Client) UpdateCells(ctx context.Context, spreadsheetID, sheet, rng string, data Matrix) (*UpdateResult, error) {
	if err := requireIDAndSheet(spreadsheetID, sheet); err != nil {
		return nil, err
	}
	if rng == "" {
		return nil, apierr.Validation("range is required")
	}
	if len(data) == 0 {
		return nil, apierr.Validation("data must contain at least one row")
	}

	resp, err := c.session.Sheets().Spreadsheets.Values.
		Update(spreadsheetID, rangeRef(sheet, rng), &sheetsapi.ValueRange{Values: data}).
		ValueInputOption(valueInputUserEntered).
		Context(ctx).
		Do()
	if err != nil {
		return nil, apierr.FromGoogle("failed to update cells", err)
	}

	return &UpdateResult{
		SpreadsheetID:  resp.SpreadsheetId,
		UpdatedRange:   resp.UpdatedRange,
		UpdatedRows:    resp.UpdatedRows,
		UpdatedColumns: resp.UpdatedColumns,
		UpdatedCells:   resp.UpdatedCells,
	}, nil
}

// BatchUpdateCells applies several range updates in a single API call.
// An empty update list is a no-op. The vendor call is atomic: either all
// ranges are written or none.
func (c *Client) BatchUpdateCells(ctx context.Context, spreadsheetID string, updates []RangeValues) (*BatchUpdateResult, error) {
	if spreadsheetID == "" {
		return nil, apierr.Validation("spreadsheet_id is required")
	}

	if len(updates) == 0 {
		return &BatchUpdateResult{SpreadsheetID: spreadsheetID, Responses: []UpdateResult{}}, nil
	}

	data := make([]*sheetsapi.ValueRange, 0, len(updates))
	for i, u := range updates {
		if u.Range == "" {
			return nil, apierr.Validation("updates[%d]: range is required", i)
		}
		data = append(data, &sheetsapi.ValueRange{Range: u.Range, Values: u.Values})
	}

	resp, err := c.session.Sheets().Spreadsheets.Values.
		BatchUpdate(spreadsheetID, &sheetsapi.BatchUpdateValuesRequest{
			ValueInputOption: valueInputUserEntered,
			Data:             data,
		}).
		Context(ctx).
		Do()
	if err != nil {
		return nil, apierr.FromGoogle("failed to batch update cells", err)
	}

	result := &BatchUpdateResult{
		SpreadsheetID:     resp.SpreadsheetId,
		TotalUpdatedCells: resp.TotalUpdatedCells,
		Responses:         make([]UpdateResult, 0, len(resp.Responses)),
	}
	for _, r := range resp.Responses {
		result.Responses = append(result.Responses, UpdateResult{
			SpreadsheetID:  r.SpreadsheetId,
			UpdatedRange:   r.UpdatedRange,
			UpdatedRows:    r.UpdatedRows,
			UpdatedColumns: r.UpdatedColumns,
			UpdatedCells:   r.UpdatedCells,
		})
	}
	return result, nil
}

// AddRows writes rows into a sheet. With append true the rows land after
// the last populated row; otherwise they are inserted at the top.
func (c *Client) AddRows(ctx context.Context, spreadsheetID, sheet string, rows Matrix, appendRows bool) (*AppendResult, error) {
	if err := requireIDAndSheet(spreadsheetID, sheet); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apierr.Validation("rows must contain at least one row")
	}

	if appendRows {
		resp, err := c.session.Sheets().Spreadsheets.Values.
			Append(spreadsheetID, rangeRef(sheet, ""), &sheetsapi.ValueRange{Values: rows}).
			ValueInputOption(valueInputUserEntered).
			InsertDataOption("INSERT_ROWS").
			Context(ctx).
			Do()
		if err != nil {
			return nil, apierr.FromGoogle("failed to append rows", err)
		}

		result := &AppendResult{SpreadsheetID: spreadsheetID}
		if resp.Updates != nil {
			result.AppendedRange = resp.Updates.UpdatedRange
			result.UpdatedRows = resp.Updates.UpdatedRows
			result.UpdatedCells = resp.Updates.UpdatedCells
		}
		return result, nil
	}

	// Insert at the top: make room first, then write into the new rows.
	sheetID, err := c.sheetIDByTitle(ctx, spreadsheetID, sheet)
	if err != nil {
		return nil, err
	}

	_, err = c.session.Sheets().Spreadsheets.
		BatchUpdate(spreadsheetID, &sheetsapi.BatchUpdateSpreadsheetRequest{
			Requests: []*sheetsapi.Request{{
				InsertDimension: &sheetsapi.InsertDimensionRequest{
					Range: &sheetsapi.DimensionRange{
						SheetId:    sheetID,
						Dimension:  "ROWS",
						StartIndex: 0,
						EndIndex:   int64(len(rows)),
					},
				},
			}},
		}).
		Context(ctx).
		Do()
	if err != nil {
		return nil, apierr.FromGoogle("failed to insert rows", err)
	}

	resp, err := c.session.Sheets().Spreadsheets.Values.
		Update(spreadsheetID, rangeRef(sheet, "A1"), &sheetsapi.ValueRange{Values: rows}).
		ValueInputOption(valueInputUserEntered).
		Context(ctx).
		Do()
	if err != nil {
		return nil, apierr.FromGoogle("failed to write inserted rows", err)
	}

	return &AppendResult{
		SpreadsheetID: spreadsheetID,
		AppendedRange: resp.UpdatedRange,
		UpdatedRows:   resp.UpdatedRows,
		UpdatedCells:  resp.UpdatedCells,
	}, nil
}

// CreateSpreadsheet creates a new spreadsheet. When the session has a
// folder configured the file is moved there after creation.
func (c *Client) CreateSpreadsheet(ctx context.Context, title string) (*SpreadsheetInfo, error) {
	if title == "" {
		return nil, apierr.Validation("title is required")
	}

	created, err := c.session.Sheets().Spreadsheets.
		Create(&sheetsapi.Spreadsheet{
			Properties: &sheetsapi.SpreadsheetProperties{Title: title},
		}).
		Context(ctx).
		Do()
	if err != nil {
		return nil, apierr.FromGoogle("failed to create spreadsheet", err)
	}

	info := &SpreadsheetInfo{
		ID:    created.SpreadsheetId,
		Title: title,
		URL:   created.SpreadsheetUrl,
	}

	folderID := c.session.FolderID()
	if folderID == "" {
		return info, nil
	}

	if err := c.moveToFolder(ctx, created.SpreadsheetId, folderID); err != nil {
		return nil, err
	}
	info.FolderID = folderID
	return info, nil
}

// moveToFolder reparents a Drive file into the given folder.
func (c *Client) moveToFolder(ctx context.Context, fileID, folderID string) error {
	file, err := c.session.Drive().Files.Get(fileID).
		Fields("parents").
		Context(ctx).
		Do()
	if err != nil {
		return apierr.FromGoogle("failed to read file parents", err)
	}

	call := c.session.Drive().Files.Update(fileID, &drive.File{}).
		AddParents(folderID).
		Context(ctx)
	if len(file.Parents) > 0 {
		call = call.RemoveParents(strings.Join(file.Parents, ","))
	}

	if _, err := call.Do(); err != nil {
		return apierr.FromGoogle("failed to move spreadsheet into folder", err)
	}
	return nil
}

// ListSpreadsheets enumerates visible spreadsheets, scoped to the
// configured folder when one is set.
func (c *Client) ListSpreadsheets(ctx context.Context) ([]SpreadsheetInfo, error) {
	query := fmt.Sprintf("mimeType='%s' and trashed=false", SpreadsheetMimeType)
	if folderID := c.session.FolderID(); folderID != "" {
		query = fmt.Sprintf("'%s' in parents and %s", escapeQueryTerm(folderID), query)
	}

	var result []SpreadsheetInfo
	pageToken := ""
	for {
		call := c.session.Drive().Files.List().
			Q(query).
			OrderBy("name").
			Fields("nextPageToken, files(id, name, createdTime, modifiedTime, webViewLink)").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		fileList, err := call.Do()
		if err != nil {
			return nil, apierr.FromGoogle("failed to list spreadsheets", err)
		}

		for _, f := range fileList.Files {
			result = append(result, convertToSpreadsheetInfo(f))
		}

		if fileList.NextPageToken == "" {
			return result, nil
		}
		pageToken = fileList.NextPageToken
	}
}

// ShareSpreadsheet grants the given role to each email address. Entries
// are applied independently; sharing the same email again replaces its
// role (the Drive API is idempotent per email).
func (c *Client) ShareSpreadsheet(ctx context.Context, spreadsheetID string, emails []string, role string, notify bool) (*ShareResult, error) {
	if spreadsheetID == "" {
		return nil, apierr.Validation("spreadsheet_id is required")
	}
	if len(emails) == 0 {
		return nil, apierr.Validation("email_addresses must contain at least one address")
	}
	if !validRole(role) {
		return nil, apierr.Validation("invalid role %q (must be one of reader, commenter, writer, owner)", role)
	}

	result := &ShareResult{
		SpreadsheetID: spreadsheetID,
		Shared:        []ShareGrant{},
		Failed:        []ShareFailure{},
	}

	for _, email := range emails {
		call := c.session.Drive().Permissions.Create(spreadsheetID, &drive.Permission{
			Type:         "user",
			Role:         role,
			EmailAddress: email,
		}).Context(ctx)

		if role == RoleOwner {
			// Ownership transfers require a notification email.
			call = call.TransferOwnership(true).SendNotificationEmail(true)
		} else {
			call = call.SendNotificationEmail(notify)
		}

		perm, err := call.Do()
		if err != nil {
			classified := apierr.FromGoogle("failed to share", err)
			result.Failed = append(result.Failed, ShareFailure{Email: email, Error: classified.Message})
			continue
		}
		result.Shared = append(result.Shared, ShareGrant{
			Email:        email,
			Role:         perm.Role,
			PermissionID: perm.Id,
		})
	}

	return result, nil
}

// CreateSheet adds a new sheet (tab) to a spreadsheet.
func (c *Client) CreateSheet(ctx context.Context, spreadsheetID, title string) (*SheetInfo, error) {
	if spreadsheetID == "" {
		return nil, apierr.Validation("spreadsheet_id is required")
	}
	if title == "" {
		return nil, apierr.Validation("title is required")
	}

	resp, err := c.session.Sheets().Spreadsheets.
		BatchUpdate(spreadsheetID, &sheetsapi.BatchUpdateSpreadsheetRequest{
			Requests: []*sheetsapi.Request{{
				AddSheet: &sheetsapi.AddSheetRequest{
					Properties: &sheetsapi.SheetProperties{Title: title},
				},
			}},
		}).
		Context(ctx).
		Do()
	if err != nil {
		return nil, apierr.FromGoogle("failed to create sheet", err)
	}

	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return nil, apierr.Upstream(nil, "create sheet: missing AddSheet reply")
	}
	return convertToSheetInfo(resp.Replies[0].AddSheet.Properties), nil
}

// ListSheets returns all sheets of a spreadsheet in tab order.
func (c *Client) ListSheets(ctx context.Context, spreadsheetID string) ([]SheetInfo, error) {
	if spreadsheetID == "" {
		return nil, apierr.Validation("spreadsheet_id is required")
	}

	spreadsheet, err := c.session.Sheets().Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return nil, apierr.FromGoogle("failed to list sheets", err)
	}

	result := make([]SheetInfo, 0, len(spreadsheet.Sheets))
	for _, s := range spreadsheet.Sheets {
		if s.Properties == nil {
			continue
		}
		result = append(result, *convertToSheetInfo(s.Properties))
	}
	return result, nil
}

// RenameSheet renames a sheet addressed by its current title.
func (c *Client) RenameSheet(ctx context.Context, spreadsheetID, oldName, newName string) (*SheetInfo, error) {
	if spreadsheetID == "" {
		return nil, apierr.Validation("spreadsheet_id is required")
	}
	if oldName == "" || newName == "" {
		return nil, apierr.Validation("old_name and new_name are required")
	}

	sheetID, err := c.sheetIDByTitle(ctx, spreadsheetID, oldName)
	if err != nil {
		return nil, err
	}

	if err := c.renameSheetByID(ctx, spreadsheetID, sheetID, newName); err != nil {
		return nil, err
	}

	return &SheetInfo{SheetID: sheetID, Title: newName}, nil
}

// CopySheet copies a sheet into another (or the same) spreadsheet,
// optionally renaming the copy.
func (c *Client) CopySheet(ctx context.Context, srcSpreadsheet, srcSheet, dstSpreadsheet, dstSheet string) (*SheetInfo, error) {
	if srcSpreadsheet == "" || dstSpreadsheet == "" {
		return nil, apierr.Validation("src_spreadsheet and dst_spreadsheet are required")
	}
	if srcSheet == "" {
		return nil, apierr.Validation("src_sheet is required")
	}

	sheetID, err := c.sheetIDByTitle(ctx, srcSpreadsheet, srcSheet)
	if err != nil {
		return nil, err
	}

	copied, err := c.session.Sheets().Spreadsheets.Sheets.
		CopyTo(srcSpreadsheet, sheetID, &sheetsapi.CopySheetToAnotherSpreadsheetRequest{
			DestinationSpreadsheetId: dstSpreadsheet,
		}).
		Context(ctx).
		Do()
	if err != nil {
		return nil, apierr.FromGoogle("failed to copy sheet", err)
	}

	info := convertToSheetInfo(copied)
	if dstSheet == "" || dstSheet == copied.Title {
		return info, nil
	}

	if err := c.renameSheetByID(ctx, dstSpreadsheet, copied.SheetId, dstSheet); err != nil {
		return nil, err
	}
	info.Title = dstSheet
	return info, nil
}

// sheetIDByTitle resolves a sheet title to its numeric identifier.
func (c *Client) sheetIDByTitle(ctx context.Context, spreadsheetID, title string) (int64, error) {
	infos, err := c.ListSheets(ctx, spreadsheetID)
	if err != nil {
		return 0, err
	}
	for _, info := range infos {
		if info.Title == title {
			return info.SheetID, nil
		}
	}
	return 0, apierr.NotFound("sheet %q not found in spreadsheet %s", title, spreadsheetID)
}

func (c *Client) renameSheetByID(ctx context.Context, spreadsheetID string, sheetID int64, newName string) error {
	_, err := c.session.Sheets().Spreadsheets.
		BatchUpdate(spreadsheetID, &sheetsapi.BatchUpdateSpreadsheetRequest{
			Requests: []*sheetsapi.Request{{
				UpdateSheetProperties: &sheetsapi.UpdateSheetPropertiesRequest{
					Properties: &sheetsapi.SheetProperties{
						SheetId: sheetID,
						Title:   newName,
					},
					Fields: "title",
				},
			}},
		}).
		Context(ctx).
		Do()
	if err != nil {
		return apierr.FromGoogle("failed to rename sheet", err)
	}
	return nil
}

func requireIDAndSheet(spreadsheetID, sheet string) error {
	if spreadsheetID == "" {
		return apierr.Validation("spreadsheet_id is required")
	}
	if sheet == "" {
		return apierr.Validation("sheet is required")
	}
	return nil
}

func validRole(role string) bool {
	switch role {
	case RoleReader, RoleCommenter, RoleWriter, RoleOwner:
		return true
	}
	return false
}

// rangeRef builds an A1 range reference. Sheet titles are always quoted
// so names with spaces or punctuation address correctly.
func rangeRef(sheet, rng string) string {
	quoted := "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	if rng == "" {
		return quoted
	}
	return quoted + "!" + rng
}

// escapeQueryTerm escapes single quotes for Drive query strings.
func escapeQueryTerm(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}

func convertToSpreadsheetInfo(f *drive.File) SpreadsheetInfo {
	info := SpreadsheetInfo{
		ID:    f.Id,
		Title: f.Name,
		URL:   f.WebViewLink,
	}
	if f.CreatedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.CreatedTime); err == nil {
			info.CreatedTime = t
		}
	}
	if f.ModifiedTime != "" {
		if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
			info.ModifiedTime = t
		}
	}
	return info
}

func convertToSheetInfo(p *sheetsapi.SheetProperties) *SheetInfo {
	info := &SheetInfo{
		SheetID: p.SheetId,
		Title:   p.Title,
		Index:   p.Index,
	}
	if p.GridProperties != nil {
		info.RowCount = p.GridProperties.RowCount
		info.ColumnCount = p.GridProperties.ColumnCount
	}
	return info
}
