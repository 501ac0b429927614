// Package resources provides MCP resources for exposing spreadsheet data.
// Resources are read-only data sources that MCP clients can fetch, such as
// the list of spreadsheets visible to the configured service account.
package resources
