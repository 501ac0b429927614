// Package sheets_tools defines the spreadsheet tool surface of the server.
//
// Every tool is registered once in the shared registry and exposed
// identically on both transports: the MCP stdio server and the HTTP API.
// Handlers decode JSON-shaped arguments and delegate to the sheets client
// facade; argument presence and primitive types are validated by the
// registry before any handler runs.
package sheets_tools
