// Package cmd implements the command-line interface for sheetsmcp.
//
// This package provides the following commands:
//   - serve: Start the server over stdio (MCP) or HTTP (REST API)
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all tools
//
// The serve command is the default command when no subcommand is specified.
package cmd
