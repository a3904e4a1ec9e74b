package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/teemow/agentic/internal/config"
	"github.com/teemow/agentic/internal/google"
	"github.com/teemow/agentic/internal/instrumentation"
	"github.com/teemow/agentic/internal/llm"
	"github.com/teemow/agentic/internal/server"
)

// runtimeOptions carries the optional instrumentation of a server context
type runtimeOptions struct {
	metrics *instrumentation.Metrics
	audit   *instrumentation.AuditLogger
}

// newServerContext builds the planner, dispatcher and Google clients from
// the configuration. Tokens are read from the configured token directory.
func newServerContext(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts runtimeOptions) (*server.ServerContext, error) {
	completer := llm.NewClient(cfg.LLMClientConfig(), opts.metrics, logger)

	sc, err := server.NewServerContext(ctx, server.Dependencies{
		Config:    cfg,
		Completer: completer,
		Tokens:    google.NewFileTokenProvider(cfg.Google.TokenDir),
		Metrics:   opts.metrics,
		Audit:     opts.audit,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create server context: %w", err)
	}
	return sc, nil
}
