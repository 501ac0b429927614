package server

import (
	"context"
	"sync"

	"github.com/sheetstack/sheetsmcp/internal/instrumentation"
	"github.com/sheetstack/sheetsmcp/internal/registry"
	"github.com/sheetstack/sheetsmcp/internal/sheets"
)

// ServerContext holds the shared state for both transports: the tool
// registry, the Google client facade, and the observability recorders.
// The client and registry are read-only after construction, so concurrent
// HTTP requests share them without additional locking.
type ServerContext struct {
	ctx         context.Context
	cancel      context.CancelFunc
	client      *sheets.Client
	registry    *registry.Registry
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	mu          sync.RWMutex
	shutdown    bool
}

// NewServerContext creates a new server context.
func NewServerContext(ctx context.Context, client *sheets.Client, reg *registry.Registry) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:      shutdownCtx,
		cancel:   cancel,
		client:   client,
		registry: reg,
	}
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Client returns the sheets client facade.
func (sc *ServerContext) Client() *sheets.Client {
	return sc.client
}

// Registry returns the tool registry.
func (sc *ServerContext) Registry() *registry.Registry {
	return sc.registry
}

// SetMetrics sets the metrics recorder.
func (sc *ServerContext) SetMetrics(metrics *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = metrics
}

// Metrics returns the metrics recorder, or nil if instrumentation is not
// configured.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger sets the audit logger.
func (sc *ServerContext) SetAuditLogger(logger *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = logger
}

// AuditLogger returns the audit logger, or nil if audit logging is not
// configured.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// IsShutdown returns whether the server has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
