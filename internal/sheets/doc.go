// Package sheets wraps the Google Sheets and Drive APIs behind a uniform
// client facade for spreadsheet operations.
//
// The Client translates named operations with primitive arguments into
// vendor API calls and normalizes responses into plain result types.
// Arguments are validated locally before any network round trip; vendor
// failures are classified through the apierr taxonomy. The client performs
// no retries, caching, or rate limiting of its own.
//
// All operations are synchronous and safe for concurrent use: the only
// state is the read-only API session.
package sheets
