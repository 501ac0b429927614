package server

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetstack/sheetsmcp/internal/apierr"
	"github.com/sheetstack/sheetsmcp/internal/instrumentation"
	"github.com/sheetstack/sheetsmcp/internal/registry"
)

func TestToMCPTool(t *testing.T) {
	tool := &registry.Tool{
		Name:        "update_cells",
		Description: "Overwrite a range of cells",
		Args: []registry.Arg{
			{Name: "spreadsheet_id", Type: registry.TypeString, Required: true, Description: "Spreadsheet ID"},
			{Name: "data", Type: registry.TypeArray, Required: true, Description: "Cell values"},
			{Name: "append", Type: registry.TypeBoolean, Description: "Append instead of overwrite"},
			{Name: "count", Type: registry.TypeNumber, Description: "Row count"},
		},
	}

	mcpTool := toMCPTool(tool)

	assert.Equal(t, "update_cells", mcpTool.Name)
	assert.Equal(t, "Overwrite a range of cells", mcpTool.Description)
	assert.ElementsMatch(t, []string{"spreadsheet_id", "data"}, mcpTool.InputSchema.Required)
	assert.Len(t, mcpTool.InputSchema.Properties, 4)
}

func TestToMCPTool_ReadOnlyAnnotation(t *testing.T) {
	readOnly := toMCPTool(&registry.Tool{
		Name:        "list_sheets",
		Description: "List sheets",
		ReadOnly:    true,
	})
	require.NotNil(t, readOnly.Annotations.ReadOnlyHint)
	assert.True(t, *readOnly.Annotations.ReadOnlyHint)

	mutating := toMCPTool(&registry.Tool{
		Name:        "update_cells",
		Description: "Update cells",
	})
	assert.Nil(t, mutating.Annotations.ReadOnlyHint)
}

func TestBuildMCPServer(t *testing.T) {
	reg := registry.New()
	reg.MustRegister(registry.Tool{
		Name:        "echo",
		Description: "Echo",
		HTTPMethod:  http.MethodPost,
		Handler: func(ctx context.Context, args registry.Args) (interface{}, error) {
			return "ok", nil
		},
	})

	sc := NewServerContext(context.Background(), nil, reg)
	mcpSrv := BuildMCPServer(sc, "sheetsmcp-test", "0.0.0")
	require.NotNil(t, mcpSrv)
}

func TestMCPHandler_Success(t *testing.T) {
	reg := registry.New()
	reg.MustRegister(registry.Tool{
		Name:        "echo",
		Description: "Echo back the message argument",
		HTTPMethod:  http.MethodPost,
		Args: []registry.Arg{
			{Name: "message", Type: registry.TypeString, Required: true},
		},
		Handler: func(ctx context.Context, args registry.Args) (interface{}, error) {
			return map[string]string{"message": args.String("message")}, nil
		},
	})

	sc := NewServerContext(context.Background(), nil, reg)
	tool, ok := reg.Lookup("echo")
	require.True(t, ok)
	handler := makeMCPHandler(sc, tool)

	req := mcp.CallToolRequest{}
	req.Params.Name = "echo"
	req.Params.Arguments = map[string]interface{}{"message": "hello"}

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)
}

func TestMCPHandler_ValidationFailureIsToolError(t *testing.T) {
	reg := registry.New()
	reg.MustRegister(registry.Tool{
		Name:        "echo",
		Description: "Echo back the message argument",
		HTTPMethod:  http.MethodPost,
		Args: []registry.Arg{
			{Name: "message", Type: registry.TypeString, Required: true},
		},
		Handler: func(ctx context.Context, args registry.Args) (interface{}, error) {
			t.Fatal("handler must not run on validation failure")
			return nil, nil
		},
	})

	sc := NewServerContext(context.Background(), nil, reg)
	tool, ok := reg.Lookup("echo")
	require.True(t, ok)
	handler := makeMCPHandler(sc, tool)

	req := mcp.CallToolRequest{}
	req.Params.Name = "echo"
	req.Params.Arguments = map[string]interface{}{}

	// Validation failures are structured tool errors, not protocol errors,
	// so the request loop keeps running.
	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}

// Audit records for a share call must carry the service, operation and
// spreadsheet target, and must log recipient domains rather than full
// addresses when PII is excluded.
func TestRecordInvocation_AuditTargetFields(t *testing.T) {
	reg := registry.New()
	reg.MustRegister(registry.Tool{
		Name:        "share_spreadsheet",
		Description: "Share",
		HTTPMethod:  http.MethodPost,
		Service:     instrumentation.ServiceDrive,
		Operation:   instrumentation.OperationShare,
		Handler: func(ctx context.Context, args registry.Args) (interface{}, error) {
			return "ok", nil
		},
	})

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	sc := NewServerContext(context.Background(), nil, reg)
	sc.SetAuditLogger(instrumentation.NewAuditLogger(logger))

	tool, ok := reg.Lookup("share_spreadsheet")
	require.True(t, ok)

	args := map[string]interface{}{
		"spreadsheet_id":  "abc123",
		"email_addresses": []interface{}{"user@example.com"},
	}
	recordInvocation(context.Background(), sc, tool, TransportHTTP, "ci", args, time.Now(), nil)

	out := buf.String()
	assert.Contains(t, out, `"service":"drive"`)
	assert.Contains(t, out, `"operation":"share"`)
	assert.Contains(t, out, `"spreadsheet_id":"abc123"`)
	assert.Contains(t, out, "example.com")
	assert.NotContains(t, out, "user@example.com")
}

func TestShareRecipients(t *testing.T) {
	got := shareRecipients(map[string]interface{}{
		"email_addresses": []interface{}{"a@x.com", 7, "b@y.com"},
	})
	assert.Equal(t, []string{"a@x.com", "b@y.com"}, got)

	assert.Nil(t, shareRecipients(map[string]interface{}{}))
	assert.Nil(t, shareRecipients(map[string]interface{}{"email_addresses": "a@x.com"}))
}

func TestMCPHandler_UpstreamFailure(t *testing.T) {
	reg := registry.New()
	reg.MustRegister(registry.Tool{
		Name:        "explode",
		Description: "Always fails upstream",
		HTTPMethod:  http.MethodPost,
		Handler: func(ctx context.Context, args registry.Args) (interface{}, error) {
			return nil, apierr.Upstream(assert.AnError, "vendor call failed")
		},
	})

	sc := NewServerContext(context.Background(), nil, reg)
	tool, ok := reg.Lookup("explode")
	require.True(t, ok)
	handler := makeMCPHandler(sc, tool)

	req := mcp.CallToolRequest{}
	req.Params.Name = "explode"

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}
