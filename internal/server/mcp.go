package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/sheetstack/sheetsmcp/internal/instrumentation"
	"github.com/sheetstack/sheetsmcp/internal/logging"
	"github.com/sheetstack/sheetsmcp/internal/registry"
)

// TransportStdio is the transport label for stdio invocations.
const TransportStdio = "stdio"

// stdioClientID identifies the local MCP host in audit logs. The stdio
// transport has no API key gate; the host process is trusted.
const stdioClientID = "local"

// BuildMCPServer creates an MCP server exposing every registry tool.
// Invocations dispatch through Registry.Invoke so argument validation is
// identical to the HTTP transport.
func BuildMCPServer(sc *ServerContext, name, version string) *mcpserver.MCPServer {
	mcpSrv := mcpserver.NewMCPServer(name, version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)

	for _, tool := range sc.Registry().Tools() {
		mcpSrv.AddTool(toMCPTool(tool), makeMCPHandler(sc, tool))
	}

	return mcpSrv
}

// ServeStdio runs the MCP server over standard input/output. Logs must go
// to stderr; stdout carries the protocol stream.
func ServeStdio(mcpSrv *mcpserver.MCPServer) error {
	slog.Info("starting stdio server", logging.Transport(TransportStdio))
	if err := mcpserver.ServeStdio(mcpSrv); err != nil {
		return fmt.Errorf("stdio server error: %w", err)
	}
	return nil
}

// toMCPTool converts a registry tool definition into an MCP tool schema.
func toMCPTool(tool *registry.Tool) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(tool.Description),
	}
	if tool.ReadOnly {
		opts = append(opts, mcp.WithReadOnlyHintAnnotation(true))
	}

	for _, arg := range tool.Args {
		propOpts := []mcp.PropertyOption{
			mcp.Description(arg.Description),
		}
		if arg.Required {
			propOpts = append(propOpts, mcp.Required())
		}

		switch arg.Type {
		case registry.TypeNumber:
			opts = append(opts, mcp.WithNumber(arg.Name, propOpts...))
		case registry.TypeBoolean:
			opts = append(opts, mcp.WithBoolean(arg.Name, propOpts...))
		case registry.TypeArray:
			opts = append(opts, mcp.WithArray(arg.Name, propOpts...))
		case registry.TypeObject:
			opts = append(opts, mcp.WithObject(arg.Name, propOpts...))
		default:
			opts = append(opts, mcp.WithString(arg.Name, propOpts...))
		}
	}

	return mcp.NewTool(tool.Name, opts...)
}

// makeMCPHandler builds the MCP handler for a registry tool. Tool failures
// are returned as structured tool errors, never as protocol errors, so the
// request loop keeps running.
func makeMCPHandler(sc *ServerContext, tool *registry.Tool) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]interface{})

		start := time.Now()
		result, err := sc.Registry().Invoke(ctx, tool.Name, args)
		recordInvocation(ctx, sc, tool, TransportStdio, stdioClientID, args, start, err)

		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		body, merr := json.MarshalIndent(result, "", "  ")
		if merr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", merr)), nil
		}
		return mcp.NewToolResultText(string(body)), nil
	}
}

// recordInvocation records metrics and audit logging for a tool call on
// either transport. The tool's Service/Operation labels feed the Google
// API metrics; the raw arguments supply the audit target fields.
func recordInvocation(ctx context.Context, sc *ServerContext, tool *registry.Tool, transport, clientID string, args map[string]interface{}, start time.Time, err error) {
	duration := time.Since(start)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
	}

	if metrics := sc.Metrics(); metrics != nil {
		metrics.RecordToolInvocationWithClient(ctx, tool.Name, transport, status, clientID, duration)
		if tool.Service != "" {
			metrics.RecordGoogleAPIOperation(ctx, tool.Service, tool.Operation, status, duration)
		}
	}

	if audit := sc.AuditLogger(); audit != nil {
		ti := &instrumentation.ToolInvocation{
			Tool:      tool.Name,
			ClientID:  clientID,
			Transport: transport,
			StartTime: start,
			Duration:  duration,
			Success:   err == nil,
		}
		if err != nil {
			ti.Error = err.Error()
		}
		ti.WithSpanContext(ctx)
		ti.WithService(tool.Service, tool.Operation)
		if id, ok := args["spreadsheet_id"].(string); ok {
			ti.WithSpreadsheet(id)
		}
		if recipients := shareRecipients(args); len(recipients) > 0 {
			ti.WithRecipients(recipients)
		}
		audit.LogToolInvocation(ti)
	}
}

// shareRecipients extracts the email_addresses argument when present.
// Arguments arrive as decoded JSON, so the value is []interface{} of
// strings when the caller sent a well-formed array.
func shareRecipients(args map[string]interface{}) []string {
	raw, ok := args["email_addresses"].([]interface{})
	if !ok {
		return nil
	}
	recipients := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			recipients = append(recipients, s)
		}
	}
	return recipients
}
