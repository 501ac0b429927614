package instrumentation

import (
	"context"
	"testing"
	"time"
)

func newTestProvider(t *testing.T, ctx context.Context) *Provider {
	t.Helper()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: "prometheus",
		TracingExporter: "none",
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })
	return provider
}

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil")
	}

	// Should not panic
	metrics.RecordHTTPRequest(ctx, "GET", "/health", 200, 100*time.Millisecond)
	metrics.RecordHTTPRequest(ctx, "POST", "/tools/update_cells", 500, 50*time.Millisecond)
}

func TestMetrics_RecordAuthFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	// Should not panic
	metrics.RecordAuthFailure(ctx, "missing_key")
	metrics.RecordAuthFailure(ctx, "unknown_key")
}

func TestMetrics_RecordGoogleAPIOperation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	// Should not panic
	metrics.RecordGoogleAPIOperation(ctx, ServiceSheets, OperationGet, StatusSuccess, 200*time.Millisecond)
	metrics.RecordGoogleAPIOperation(ctx, ServiceSheets, OperationUpdate, StatusError, 500*time.Millisecond)
	metrics.RecordGoogleAPIOperation(ctx, ServiceDrive, OperationList, StatusSuccess, 100*time.Millisecond)
}

func TestMetrics_RecordToolInvocation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	// Should not panic
	metrics.RecordToolInvocation(ctx, "get_sheet_data", "stdio", StatusSuccess, 100*time.Millisecond)
	metrics.RecordToolInvocation(ctx, "update_cells", "http", StatusError, 300*time.Millisecond)
}

func TestMetrics_RecordToolInvocationWithClient(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: "prometheus",
		TracingExporter: "none",
		DetailedLabels:  true,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	metrics := provider.Metrics()

	// Should not panic with or without a client ID
	metrics.RecordToolInvocationWithClient(ctx, "share_spreadsheet", "http", StatusSuccess, "reporting-service", 150*time.Millisecond)
	metrics.RecordToolInvocationWithClient(ctx, "share_spreadsheet", "http", StatusError, "", 150*time.Millisecond)
}

func TestMetrics_Uninitialized(t *testing.T) {
	ctx := context.Background()

	// Zero-value metrics must be safe to call
	var m Metrics
	m.RecordHTTPRequest(ctx, "GET", "/health", 200, time.Millisecond)
	m.RecordAuthFailure(ctx, "missing_key")
	m.RecordGoogleAPIOperation(ctx, ServiceSheets, OperationGet, StatusSuccess, time.Millisecond)
	m.RecordToolInvocation(ctx, "get_sheet_data", "stdio", StatusSuccess, time.Millisecond)
	m.RecordToolInvocationWithClient(ctx, "get_sheet_data", "http", StatusSuccess, "client", time.Millisecond)
}
