package sheets

import "time"

// Valid permission roles for sharing a spreadsheet.
const (
	RoleReader    = "reader"
	RoleCommenter = "commenter"
	RoleWriter    = "writer"
	RoleOwner     = "owner"
)

// Matrix is a rectangular block of cell values. Rows need not be equal
// length; the Sheets API pads ragged rows on write.
type Matrix [][]interface{}

// RangeValues pairs an A1-notation range with the values to write there.
// Used by batch updates.
type RangeValues struct {
	// Range is the target range in A1 notation, e.g. "Sheet1!A1:B2".
	Range string `json:"range"`

	// Values is the block of cell values to write.
	Values Matrix `json:"values"`
}

// SpreadsheetInfo describes a spreadsheet file.
type SpreadsheetInfo struct {
	// ID is the spreadsheet identifier.
	ID string `json:"id"`

	// Title is the spreadsheet title.
	Title string `json:"title"`

	// URL is the link for opening the spreadsheet in a browser.
	URL string `json:"url,omitempty"`

	// CreatedTime is when the file was created (from Drive metadata).
	CreatedTime time.Time `json:"createdTime,omitzero"`

	// ModifiedTime is when the file was last modified (from Drive metadata).
	ModifiedTime time.Time `json:"modifiedTime,omitzero"`

	// FolderID is the folder the spreadsheet was placed in, if any.
	FolderID string `json:"folderId,omitempty"`
}

// SheetInfo describes a single sheet (tab) within a spreadsheet.
type SheetInfo struct {
	// SheetID is the numeric sheet identifier.
	SheetID int64 `json:"sheetId"`

	// Title is the sheet name.
	Title string `json:"title"`

	// Index is the zero-based tab position.
	Index int64 `json:"index"`

	// RowCount is the number of rows in the sheet grid.
	RowCount int64 `json:"rowCount,omitempty"`

	// ColumnCount is the number of columns in the sheet grid.
	ColumnCount int64 `json:"columnCount,omitempty"`
}

// UpdateResult reports the outcome of a values update.
type UpdateResult struct {
	SpreadsheetID  string `json:"spreadsheetId"`
	UpdatedRange   string `json:"updatedRange"`
	UpdatedRows    int64  `json:"updatedRows"`
	UpdatedColumns int64  `json:"updatedColumns"`
	UpdatedCells   int64  `json:"updatedCells"`
}

// BatchUpdateResult reports the outcome of a batch values update.
// The Sheets values.batchUpdate call is atomic: either every range is
// applied or none is.
type BatchUpdateResult struct {
	SpreadsheetID     string         `json:"spreadsheetId"`
	TotalUpdatedCells int64          `json:"totalUpdatedCells"`
	Responses         []UpdateResult `json:"responses"`
}

// AppendResult reports where appended rows landed.
type AppendResult struct {
	SpreadsheetID string `json:"spreadsheetId"`
	AppendedRange string `json:"appendedRange"`
	UpdatedRows   int64  `json:"updatedRows"`
	UpdatedCells  int64  `json:"updatedCells"`
}

// ShareGrant records a successful per-email share.
type ShareGrant struct {
	Email        string `json:"email"`
	Role         string `json:"role"`
	PermissionID string `json:"permissionId"`
}

// ShareFailure records a per-email share failure.
type ShareFailure struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

// ShareResult aggregates per-email outcomes of a share operation.
// Entries are independent: one failing email does not roll back the rest.
type ShareResult struct {
	SpreadsheetID string         `json:"spreadsheetId"`
	Shared        []ShareGrant   `json:"shared"`
	Failed        []ShareFailure `json:"failed"`
}
