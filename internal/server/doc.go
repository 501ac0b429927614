// Package server provides the process context and the two transports of
// the sheetsmcp application.
//
// # Key Components
//
// ServerContext holds the shared, read-only state both transports consume:
// the tool registry, the sheets client facade, and the observability
// recorders. It is safe for concurrent use.
//
// BuildMCPServer exposes every registry tool over the MCP stdio transport.
// HTTPAPI exposes the same tools as REST endpoints under /tools/, gated by
// a static X-API-Key table loaded once at startup. Both transports dispatch
// through Registry.Invoke, so argument validation and error classification
// are identical regardless of entry point.
//
// # HTTP Surface
//
//	GET  /health            liveness, unauthenticated
//	GET  /healthz, /readyz  Kubernetes probes, unauthenticated
//	GET  /openapi.json      generated schema, unauthenticated
//	GET  /docs              interactive documentation, unauthenticated
//	*    /tools/<name>      one endpoint per tool, X-API-Key required
//
// MetricsServer serves Prometheus metrics on a dedicated port, isolated
// from application traffic.
package server
