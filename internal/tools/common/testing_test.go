package common

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/teemow/agentic/internal/config"
	"github.com/teemow/agentic/internal/instrumentation"
	"github.com/teemow/agentic/internal/llm"
	"github.com/teemow/agentic/internal/server"
)

type nopCompleter struct{}

func (nopCompleter) Complete(context.Context, string, llm.Options) (string, error) {
	return `{"tool":"none","args":{}}`, nil
}

// newTestServerContext returns a server context with noop metrics and an
// audit logger writing JSON lines to the returned buffer
func newTestServerContext(t *testing.T) (*server.ServerContext, *bytes.Buffer) {
	t.Helper()

	cfg := &config.Config{
		Timezone:          "UTC",
		WorkWindow:        config.WorkWindowConfig{Start: "13:00", End: "19:00"},
		DefaultBlockHours: 2,
		LLM:               config.LLMConfig{Model: "test", MaxTokens: 100},
		Google:            config.GoogleConfig{Account: "work"},
	}
	require.NoError(t, cfg.Validate())

	metrics, err := instrumentation.NewMetrics(noop.NewMeterProvider().Meter("test"), false)
	require.NoError(t, err)

	var buf bytes.Buffer
	audit := instrumentation.NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	sc, err := server.NewServerContext(context.Background(), server.Dependencies{
		Config:    cfg,
		Completer: nopCompleter{},
		Metrics:   metrics,
		Audit:     audit,
		Logger:    slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	return sc, &buf
}
