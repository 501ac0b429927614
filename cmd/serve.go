package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sheetstack/sheetsmcp/internal/google"
	"github.com/sheetstack/sheetsmcp/internal/instrumentation"
	"github.com/sheetstack/sheetsmcp/internal/logging"
	"github.com/sheetstack/sheetsmcp/internal/registry"
	"github.com/sheetstack/sheetsmcp/internal/resources"
	"github.com/sheetstack/sheetsmcp/internal/server"
	"github.com/sheetstack/sheetsmcp/internal/sheets"
	"github.com/sheetstack/sheetsmcp/internal/tools/sheets_tools"
)

// serverName identifies the server in MCP handshakes, the OpenAPI
// document, and health responses.
const serverName = "sheetsmcp"

// EnvAPIKeysFile is consulted when --api-keys-file is not given.
const EnvAPIKeysFile = "API_KEYS_FILE"

type serveOptions struct {
	debug          bool
	transport      string
	httpAddr       string
	apiKeysFile    string
	serviceAccount string
	driveFolder    string
	metricsEnabled bool
	metricsAddr    string
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Sheets server",
		Long: `Start the server that exposes Google Sheets and Drive operations.

Supports two transport types:
  - stdio: MCP (Model Context Protocol) over standard input/output (default)
  - http:  REST API authenticated with static API keys

Google Credentials:
  Service account key file:
    --service-account flag OR SERVICE_ACCOUNT_PATH env var
  Inline key (base64-encoded JSON):
    CREDENTIALS_CONFIG env var
  Without either, Application Default Credentials are used.

  An optional Drive folder (--drive-folder or DRIVE_FOLDER_ID) scopes
  spreadsheet creation and listing. The folder must be shared with the
  service account.

API Keys (http transport only):
  A JSON file mapping client names to secret keys:
    --api-keys-file flag OR API_KEYS_FILE env var
  Clients authenticate with the X-API-Key header.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.applyEnv(cmd.Flags().Changed)
			return runServe(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&opts.transport, "transport", server.TransportStdio, "Transport type: stdio or http")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", server.DefaultHTTPAddr, "HTTP server address (for http transport)")
	cmd.Flags().StringVar(&opts.apiKeysFile, "api-keys-file", "", "Path to the API keys JSON file (for http transport). Can also use API_KEYS_FILE env var.")
	cmd.Flags().StringVar(&opts.serviceAccount, "service-account", "", "Path to a Google service account key file. Can also use SERVICE_ACCOUNT_PATH env var.")
	cmd.Flags().StringVar(&opts.driveFolder, "drive-folder", "", "Drive folder ID that scopes spreadsheet creation and listing. Can also use DRIVE_FOLDER_ID env var.")
	cmd.Flags().BoolVar(&opts.metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port (http transport only). Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// applyEnv fills options from the environment. Environment variables only
// apply when the corresponding flag was not set on the command line, so
// explicit flags always win.
func (o *serveOptions) applyEnv(changed func(name string) bool) {
	if !changed("api-keys-file") {
		if v := os.Getenv(EnvAPIKeysFile); v != "" {
			o.apiKeysFile = v
		}
	}
	if !changed("metrics-enabled") {
		if v := os.Getenv("METRICS_ENABLED"); v != "" {
			enabled, err := strconv.ParseBool(v)
			if err != nil {
				slog.Warn("invalid METRICS_ENABLED value, keeping default",
					slog.String("value", v))
			} else {
				o.metricsEnabled = enabled
			}
		}
	}
	if !changed("metrics-addr") {
		if v := os.Getenv("METRICS_ADDR"); v != "" {
			o.metricsAddr = v
		}
	}
}

func runServe(opts serveOptions) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Logs go to stderr so the stdio transport keeps stdout for the
	// protocol stream.
	logging.Setup(opts.debug)

	sessionCfg, err := google.ConfigFromEnv()
	if err != nil {
		return err
	}
	if opts.serviceAccount != "" {
		sessionCfg.ServiceAccountPath = opts.serviceAccount
	}
	if opts.driveFolder != "" {
		sessionCfg.FolderID = opts.driveFolder
	}

	session, err := google.NewSession(shutdownCtx, sessionCfg)
	if err != nil {
		return fmt.Errorf("failed to create Google API session: %w", err)
	}
	client := sheets.NewClient(session)

	reg := registry.New()
	if err := sheets_tools.RegisterSheetsTools(reg, client); err != nil {
		return fmt.Errorf("failed to register Sheets tools: %w", err)
	}

	serverContext := server.NewServerContext(shutdownCtx, client, reg)
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			slog.Error("error during server context shutdown", logging.Err(err))
		}
	}()

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			slog.Error("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	// Set metrics and audit logger on server context for tool instrumentation
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(nil, instrConfig.AuditLogging))
	}

	switch opts.transport {
	case server.TransportStdio:
		return runStdioServer(serverContext)
	case server.TransportHTTP:
		return runHTTPServer(shutdownCtx, serverContext, opts, provider)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, http)", opts.transport)
	}
}

func runStdioServer(serverContext *server.ServerContext) error {
	mcpSrv := server.BuildMCPServer(serverContext, serverName, version)

	if err := resources.RegisterSpreadsheetResources(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register spreadsheet resources: %w", err)
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := server.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runHTTPServer(ctx context.Context, serverContext *server.ServerContext, opts serveOptions, provider *instrumentation.Provider) error {
	if opts.apiKeysFile == "" {
		return fmt.Errorf("the http transport requires an API keys file: set --api-keys-file or %s", EnvAPIKeysFile)
	}
	keys, err := server.LoadAPIKeys(opts.apiKeysFile)
	if err != nil {
		return err
	}

	// Start metrics server if enabled
	var metricsServer *server.MetricsServer
	if opts.metricsEnabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    opts.metricsAddr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				slog.Error("metrics server failed", logging.Err(err))
			}
		}()
	}

	api := server.NewHTTPAPI(serverContext, keys, serverName, version)

	serverErr := make(chan error, 1)
	go func() {
		defer close(serverErr)
		if err := api.Start(opts.httpAddr); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer cancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("error during metrics server shutdown", logging.Err(err))
		}
	}
	return api.Shutdown(shutdownCtx)
}
