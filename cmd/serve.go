package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/agentic/internal/instrumentation"
	"github.com/teemow/agentic/internal/logging"
	"github.com/teemow/agentic/internal/resources"
	"github.com/teemow/agentic/internal/server"
	"github.com/teemow/agentic/internal/tools/assistant_tools"
	"github.com/teemow/agentic/internal/tools/google_tools"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: false,
	// stdio clients usually start one server per session)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

func newServeCmd() *cobra.Command {
	var (
		readOnly       bool
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server on stdio to provide the
planning assistant tools to AI assistants.

Tools:
  - assistant_ask: plan, run one tool and answer
  - assistant_plan, assistant_extract_plan, assistant_normalize_args:
    the individual planning steps
  - assistant_dispatch: run calendar, mail or task directly
  - calendar_free_slots: free blocks inside the work window

Safety Mode:
  Use --read-only to leave out assistant_ask and assistant_dispatch, the
  tools that can create calendar events and tasks.

Logs are written to stderr; stdout carries the MCP protocol.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), readOnly, MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			})
		},
	}

	cmd.Flags().BoolVar(&readOnly, "read-only", false, "Only register tools that cannot create events or tasks")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", false, "Serve Prometheus metrics and health probes on a dedicated port")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address")

	return cmd
}

func runServe(ctx context.Context, readOnly bool, metricsConfig MetricsConfig) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	serverContext, err := newServerContext(ctx, cfg, logger, runtimeOptions{
		metrics: provider.Metrics(),
		audit:   provider.AuditLogger(logger),
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	mcpSrv := mcpserver.NewMCPServer("agentic", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)
	if err := registerAllTools(mcpSrv, serverContext, readOnly); err != nil {
		return err
	}

	if metricsConfig.Enabled && provider.Enabled() {
		metricsServer, err := startMetricsServer(metricsConfig, provider, server.NewHealthChecker(serverContext).WithVersion(version), logger)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}()
	}

	logger.Info("starting MCP server on stdio",
		slog.String("version", version),
		slog.Bool("read_only", readOnly),
		slog.String("account", serverContext.GoogleClients().Account()))

	return runStdioServer(ctx, mcpSrv, logger)
}

// startMetricsServer starts the metrics server and waits until it listens
func startMetricsServer(cfg MetricsConfig, provider *instrumentation.Provider, health *server.HealthChecker, logger *slog.Logger) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    cfg.Addr,
		Enabled:                 true,
		InstrumentationProvider: provider,
		Health:                  health,
		Logger:                  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	// Start only returns early on a bind failure
	select {
	case err := <-metricsErr:
		if err != nil {
			return nil, fmt.Errorf("metrics server failed to start: %w", err)
		}
	case <-time.After(200 * time.Millisecond):
	}

	logger.Info("metrics server started", slog.String("addr", metricsServer.Addr()))
	return metricsServer, nil
}

// runStdioServer serves MCP on stdin and stdout until the client closes
// stdin or ctx is cancelled
func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, logger *slog.Logger) error {
	stdio := mcpserver.NewStdioServer(mcpSrv)
	stdio.SetErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))

	err := stdio.Listen(ctx, os.Stdin, os.Stdout)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server stopped with error: %w", err)
	}

	logger.Info("MCP server stopped")
	return nil
}

// registerAllTools registers all MCP tools
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := assistant_tools.RegisterAssistantTools(mcpSrv, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register assistant tools: %w", err)
	}
	if err := google_tools.RegisterGoogleTools(mcpSrv, sc); err != nil {
		return fmt.Errorf("failed to register google tools: %w", err)
	}
	if err := resources.RegisterSettingsResources(mcpSrv, sc); err != nil {
		return fmt.Errorf("failed to register resources: %w", err)
	}
	return nil
}
