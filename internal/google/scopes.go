package google

// DefaultScopes are the Google OAuth scopes required by the tool set.
//
// The scopes provide access to:
//   - Google Sheets: read and write spreadsheet contents
//   - Google Drive: create, list, move, and share spreadsheet files
var DefaultScopes = []string{
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/drive",
}
