// Package apierr defines the error taxonomy shared by the tool registry,
// the Sheets client facade, and both transports.
//
// Every error surfaced to a caller is classified into one of five kinds:
//   - Validation: malformed or missing arguments, rejected before the
//     Google API is consulted
//   - Authentication: a missing or unknown API key on the HTTP transport
//   - Authorization: the Google credential lacks access to a resource
//   - NotFound: a referenced spreadsheet, sheet, or range does not exist
//   - Upstream: any other Google API failure, surfaced as-is without retry
//
// Errors from the Google API client are classified by HTTP status code via
// FromGoogle. The HTTP transport maps kinds back to response status codes
// via HTTPStatus.
package apierr
