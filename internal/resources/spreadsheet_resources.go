package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/sheetstack/sheetsmcp/internal/server"
)

// RegisterSpreadsheetResources registers MCP resources exposing the
// spreadsheets visible to the service account.
func RegisterSpreadsheetResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listResource := mcp.NewResource(
		"spreadsheets://list",
		"Available Spreadsheets",
		mcp.WithResourceDescription("Spreadsheets visible to the configured service account, scoped to the configured Drive folder when set"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(listResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleSpreadsheetList(ctx, request, sc)
	})

	return nil
}

// handleSpreadsheetList returns the visible spreadsheets as a JSON document.
func handleSpreadsheetList(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	spreadsheets, err := sc.Client().ListSpreadsheets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list spreadsheets: %w", err)
	}

	listData := map[string]interface{}{
		"count":        len(spreadsheets),
		"spreadsheets": spreadsheets,
	}

	jsonData, err := json.MarshalIndent(listData, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal spreadsheet list: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
