package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sheetstack/sheetsmcp/internal/apierr"
	"github.com/sheetstack/sheetsmcp/internal/logging"
	"github.com/sheetstack/sheetsmcp/internal/registry"
)

// TransportHTTP is the transport label for REST invocations.
const TransportHTTP = "http"

// APIKeyHeader is the authentication header checked on every tool endpoint.
const APIKeyHeader = "X-API-Key"

const (
	// DefaultHTTPAddr is the default address for the HTTP API server.
	DefaultHTTPAddr = ":8000"

	// DefaultHTTPReadTimeout bounds request header reads.
	DefaultHTTPReadTimeout = 10 * time.Second

	// DefaultHTTPIdleTimeout closes idle keep-alive connections.
	DefaultHTTPIdleTimeout = 60 * time.Second

	// maxRequestBody caps tool request bodies at 4 MiB.
	maxRequestBody = 4 << 20
)

// ctxKey is the private type for request context values.
type ctxKey int

const clientIDKey ctxKey = iota

// ClientIDFromContext returns the authenticated client name stored by the
// API key gate, or empty if the request was unauthenticated.
func ClientIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(clientIDKey).(string)
	return id
}

// HTTPAPI is the REST transport. Every registry tool is exposed as its own
// endpoint under /tools/, gated by a static API key. Health and schema
// endpoints are unauthenticated.
type HTTPAPI struct {
	sc         *ServerContext
	keys       *APIKeys
	health     *HealthChecker
	name       string
	version    string
	httpServer *http.Server
}

// NewHTTPAPI creates the REST transport over the shared server context.
func NewHTTPAPI(sc *ServerContext, keys *APIKeys, name, version string) *HTTPAPI {
	return &HTTPAPI{
		sc:      sc,
		keys:    keys,
		health:  NewHealthChecker(sc),
		name:    name,
		version: version,
	}
}

// Handler builds the HTTP handler for the API. Exposed separately from
// Start so tests can drive it with httptest.
func (s *HTTPAPI) Handler() http.Handler {
	mux := http.NewServeMux()

	// Unauthenticated surface
	mux.HandleFunc("GET /health", s.handleHealth)
	s.health.RegisterHealthEndpoints(mux)
	mux.HandleFunc("GET /openapi.json", s.handleOpenAPI)
	mux.HandleFunc("GET /docs", s.handleDocs)

	// One endpoint per registered tool
	for _, tool := range s.sc.Registry().Tools() {
		pattern := tool.HTTPMethod + " /tools/" + tool.Name
		if tool.HTTPPathParam != "" {
			pattern += "/{" + tool.HTTPPathParam + "}"
		}
		mux.Handle(pattern, s.authenticate(s.toolHandler(tool)))
	}

	return s.instrument(mux)
}

// Start runs the HTTP server in a blocking manner.
func (s *HTTPAPI) Start(addr string) error {
	if addr == "" {
		addr = DefaultHTTPAddr
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: DefaultHTTPReadTimeout,
		IdleTimeout:       DefaultHTTPIdleTimeout,
	}

	slog.Info("starting HTTP API server",
		logging.Transport(TransportHTTP),
		slog.String("addr", addr),
		slog.Int("clients", s.keys.Len()),
	)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *HTTPAPI) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	if s.httpServer != nil {
		slog.Info("shutting down HTTP API server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// instrument records request metrics for every endpoint. The path label
// is the matched route pattern, never the raw URL, so spreadsheet IDs and
// scanner probes cannot blow up metric cardinality.
func (s *HTTPAPI) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		if metrics := s.sc.Metrics(); metrics != nil {
			metrics.RecordHTTPRequest(r.Context(), r.Method, routeLabel(r), rec.status, time.Since(start))
		}
	})
}

// routeLabel returns the ServeMux pattern that matched the request, with
// the method prefix stripped. ServeMux fills in r.Pattern during dispatch
// on the same Request, so reading it after ServeHTTP is safe. Requests
// that matched nothing collapse into a single label.
func routeLabel(r *http.Request) string {
	pattern := r.Pattern
	if pattern == "" {
		return "unmatched"
	}
	if i := strings.IndexByte(pattern, ' '); i >= 0 {
		pattern = pattern[i+1:]
	}
	return pattern
}

// authenticate rejects requests without a valid API key before the
// registry is consulted.
func (s *HTTPAPI) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		presented := r.Header.Get(APIKeyHeader)
		if presented == "" {
			s.recordAuthFailure(r, "missing_key")
			writeError(w, apierr.Authentication("missing %s header", APIKeyHeader))
			return
		}

		clientID, ok := s.keys.Authenticate(presented)
		if !ok {
			s.recordAuthFailure(r, "unknown_key")
			writeError(w, apierr.Authentication("invalid API key"))
			return
		}

		ctx := context.WithValue(r.Context(), clientIDKey, clientID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *HTTPAPI) recordAuthFailure(r *http.Request, reason string) {
	slog.Warn("rejected unauthenticated request",
		slog.String("path", r.URL.Path),
		slog.String("reason", reason),
	)
	if metrics := s.sc.Metrics(); metrics != nil {
		metrics.RecordAuthFailure(r.Context(), reason)
	}
}

// toolHandler dispatches a request to the registry. Arguments come from
// the JSON body for POST tools and from the path parameter for GET tools.
func (s *HTTPAPI) toolHandler(tool *registry.Tool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		args := make(map[string]interface{})

		if tool.HTTPMethod == http.MethodPost {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
			if err != nil {
				writeError(w, apierr.Validation("failed to read request body: %v", err))
				return
			}
			if len(body) > 0 {
				if err := json.Unmarshal(body, &args); err != nil {
					writeError(w, apierr.Validation("request body must be a JSON object: %v", err))
					return
				}
			}
		}

		if tool.HTTPPathParam != "" {
			args[tool.HTTPPathParam] = r.PathValue(tool.HTTPPathParam)
		}

		clientID := ClientIDFromContext(r.Context())

		start := time.Now()
		result, err := s.sc.Registry().Invoke(r.Context(), tool.Name, args)
		recordInvocation(r.Context(), s.sc, tool, TransportHTTP, clientID, args, start, err)

		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toolResponse{ClientID: clientID, Result: result})
	})
}

func (s *HTTPAPI) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": s.name,
		"version": s.version,
	})
}

// toolResponse is the success body for tool endpoints.
type toolResponse struct {
	ClientID string      `json:"client_id"`
	Result   interface{} `json:"result"`
}

// errorBody is the structured error response shared by all endpoints.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    apierr.Kind `json:"kind"`
	Message string      `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apierr.HTTPStatus(err), errorBody{
		Error: errorDetail{
			Kind:    apierr.KindOf(err),
			Message: err.Error(),
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", logging.Err(err))
	}
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
