// Package registry holds the process-wide mapping from tool name to
// argument schema and handler.
//
// Both transports (MCP stdio and the HTTP API) dispatch through the same
// registry, so an operation behaves identically regardless of entry
// point. Schemas are declarative data: each tool lists its arguments with
// a primitive type and a required flag, and Invoke checks an invocation
// against that table before the handler runs. A missing required argument
// or a wrong primitive type is a validation error; an unknown tool name
// is a not-found error on both transports.
package registry
