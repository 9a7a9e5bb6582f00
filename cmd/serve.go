package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/smsbridge/internal/config"
	"github.com/teemow/smsbridge/internal/instrumentation"
	"github.com/teemow/smsbridge/internal/logging"
	"github.com/teemow/smsbridge/internal/prompts"
	"github.com/teemow/smsbridge/internal/server"
	"github.com/teemow/smsbridge/internal/tools/messaging_tools"
	"github.com/teemow/smsbridge/internal/twilio"
)

const (
	transportSSE   = "sse"
	transportStdio = "stdio"

	defaultMetricsAddr = ":9090"
	shutdownTimeout    = 30 * time.Second
)

// MetricsConfig holds configuration for the dedicated metrics server.
type MetricsConfig struct {
	Enabled bool
	Addr    string
}

type serveOptions struct {
	transport string
	debug     bool
	envFile   string
	metrics   MetricsConfig
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server.

Twilio credentials are read from the environment or a .env file:
  TWILIO_ACCOUNT_SID   Account SID (required)
  TWILIO_AUTH_TOKEN    Auth token (required)
  TWILIO_NUMBER        Sender phone number in E.164 format (required)
  PORT                 HTTP port for the sse transport (default: 3000)

The server refuses to start when any required value is missing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loadMetricsEnvVars(cmd, &opts.metrics)
			return runServe(opts)
		},
	}

	cmd.Flags().StringVar(&opts.transport, "transport", transportSSE, "Transport type: sse or stdio")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&opts.envFile, "env-file", "", "Path to a .env file (default: .env in the working directory, if present)")
	cmd.Flags().BoolVar(&opts.metrics.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&opts.metrics.Addr, "metrics-addr", defaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// loadMetricsEnvVars applies METRICS_ENABLED and METRICS_ADDR when the
// corresponding flag was not set explicitly.
func loadMetricsEnvVars(cmd *cobra.Command, metricsConfig *MetricsConfig) {
	if !cmd.Flags().Changed("metrics-enabled") {
		switch os.Getenv("METRICS_ENABLED") {
		case "true":
			metricsConfig.Enabled = true
		case "false":
			metricsConfig.Enabled = false
		}
	}
	if !cmd.Flags().Changed("metrics-addr") {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			metricsConfig.Addr = addr
		}
	}
}

func runServe(opts serveOptions) error {
	logging.Setup(os.Stderr, opts.debug)

	if opts.transport != transportSSE && opts.transport != transportStdio {
		return fmt.Errorf("unsupported transport type: %s (supported: sse, stdio)", opts.transport)
	}

	// Nothing may listen before the configuration is known to be complete.
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return err
	}

	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			slog.Warn("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	var metricsServer *server.MetricsServer
	if opts.transport == transportSSE && opts.metrics.Enabled && provider.Enabled() && provider.ServesPrometheus() {
		metricsServer, err = startMetricsServer(opts.metrics, provider)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				slog.Warn("error during metrics server shutdown", logging.Err(err))
			}
		}()
	}

	serverContext, err := server.NewServerContext(shutdownCtx, cfg, twilio.NewClient(cfg, provider.Metrics()))
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(nil, instrConfig.AuditLogging))
	}

	mcpSrv := newMCPServer()
	if err := registerAll(mcpSrv, serverContext); err != nil {
		return err
	}

	slog.Info("starting smsbridge",
		"version", version,
		"transport", opts.transport,
		"sender", logging.MaskPhone(cfg.PhoneNumber))

	switch opts.transport {
	case transportStdio:
		return runStdioServer(mcpSrv)
	default:
		return runSSEServer(serverContext, mcpSrv)
	}
}

func newMCPServer() *mcpserver.MCPServer {
	return mcpserver.NewMCPServer("smsbridge", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithPromptCapabilities(true),
		mcpserver.WithRecovery(),
	)
}

func startMetricsServer(metricsConfig MetricsConfig, provider *instrumentation.Provider) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    metricsConfig.Addr,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	// Use ready channel to confirm metrics server started successfully
	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && !errors.Is(err, http.ErrServerClosed) {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	select {
	case <-metricsReady:
		slog.Info("metrics server started", "addr", metricsServer.Addr())
		return metricsServer, nil
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(5 * time.Second):
		return nil, errors.New("metrics server startup timed out")
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// runSSEServer serves until the server context is cancelled.
func runSSEServer(sc *server.ServerContext, mcpSrv *mcpserver.MCPServer) error {
	ctx := sc.Context()
	httpServer := server.NewHTTPServer(sc, mcpSrv)

	ln, err := httpServer.Listen()
	if err != nil {
		return err
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Serve(ctx, ln); err != nil {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	slog.Info("HTTP server gracefully stopped")
	return nil
}

// registerAll registers every tool group and the prompt templates.
func registerAll(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext) error {
	type registration struct {
		name     string
		register func() error
	}

	registrations := []registration{
		{
			name: "Messaging tools",
			register: func() error {
				return messaging_tools.RegisterMessagingTools(mcpSrv, sc)
			},
		},
		{
			name: "Prompts",
			register: func() error {
				return prompts.RegisterPrompts(mcpSrv, sc)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}
