package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"

	"github.com/teemow/agentic/internal/assistant"
	"github.com/teemow/agentic/internal/config"
	"github.com/teemow/agentic/internal/dispatch"
	"github.com/teemow/agentic/internal/google"
	"github.com/teemow/agentic/internal/instrumentation"
	"github.com/teemow/agentic/internal/planner"
	"github.com/teemow/agentic/internal/temporal"
)

// Dependencies are the collaborators a ServerContext is built from
type Dependencies struct {
	// Config is the validated application configuration
	Config *config.Config

	// Completer answers planning and final answer prompts
	Completer planner.Completer

	// Tokens provides the stored Google OAuth tokens. Nil leaves the
	// Google backed tools unauthorized.
	Tokens google.TokenProvider

	Metrics *instrumentation.Metrics
	Audit   *instrumentation.AuditLogger
	Logger  *slog.Logger
}

// ServerContext wires the planner, the dispatcher and the Google clients
// together and owns their lifetime
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	config     *config.Config
	normalizer *temporal.Normalizer
	clients    *GoogleClients
	dispatcher *dispatch.Dispatcher
	planner    *planner.Planner
	assistant  *assistant.Assistant

	metrics *instrumentation.Metrics
	audit   *instrumentation.AuditLogger
	logger  *slog.Logger

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context
func NewServerContext(ctx context.Context, deps Dependencies) (*ServerContext, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if deps.Completer == nil {
		return nil, fmt.Errorf("completer is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	cfg := deps.Config

	normalizer := temporal.New(temporal.Config{Location: cfg.Location()})

	var oauthConf *oauth2.Config
	if cfg.RequireGoogle() == nil {
		oauthConf = google.NewOAuthConfig(cfg.OAuth())
	}

	clients := NewGoogleClients(shutdownCtx, GoogleClientsConfig{
		OAuth:      oauthConf,
		Tokens:     deps.Tokens,
		Account:    cfg.Google.Account,
		CalendarID: cfg.Google.CalendarID,
		Location:   cfg.Location(),
		Metrics:    deps.Metrics,
		Logger:     logger,
	})

	dispatcher := dispatch.New(dispatch.Config{
		Normalizer:   normalizer,
		Availability: cfg.Availability(),
		Calendar:     clients.CalendarProvider(),
		Mail:         clients.MailProvider(),
		Tasks:        clients.TaskProvider(),
		Metrics:      deps.Metrics,
		Audit:        deps.Audit,
		Logger:       logger,
	})

	p := planner.New(deps.Completer, normalizer,
		planner.WithAggressiveRepair(cfg.Planner.AggressiveRepair),
		planner.WithMetrics(deps.Metrics),
		planner.WithLogger(logger))

	if !clients.Authorized() {
		logger.Warn("google account not authorized, calendar, mail and task tools will fail until a token is saved",
			slog.String("account", clients.Account()))
	}

	return &ServerContext{
		ctx:        shutdownCtx,
		cancel:     cancel,
		config:     cfg,
		normalizer: normalizer,
		clients:    clients,
		dispatcher: dispatcher,
		planner:    p,
		assistant:  assistant.New(p, dispatcher, deps.Completer, logger),
		metrics:    deps.Metrics,
		audit:      deps.Audit,
		logger:     logger,
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the application configuration
func (sc *ServerContext) Config() *config.Config {
	return sc.config
}

// Normalizer returns the temporal normalizer
func (sc *ServerContext) Normalizer() *temporal.Normalizer {
	return sc.normalizer
}

// GoogleClients returns the lazily created Google API clients
func (sc *ServerContext) GoogleClients() *GoogleClients {
	return sc.clients
}

// Dispatcher returns the tool dispatcher
func (sc *ServerContext) Dispatcher() *dispatch.Dispatcher {
	return sc.dispatcher
}

// Planner returns the planner
func (sc *ServerContext) Planner() *planner.Planner {
	return sc.planner
}

// Assistant returns the request pipeline
func (sc *ServerContext) Assistant() *assistant.Assistant {
	return sc.assistant
}

// Metrics returns the metrics recorder, nil when instrumentation is off
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// AuditLogger returns the audit logger, nil when audit logging is off
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	return sc.audit
}

// Logger returns the application logger
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
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
