package planner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/teemow/agentic/internal/instrumentation"
	"github.com/teemow/agentic/internal/llm"
	"github.com/teemow/agentic/internal/logging"
	"github.com/teemow/agentic/internal/temporal"
)

// Completer sends a prompt to a language model
type Completer interface {
	Complete(ctx context.Context, prompt string, opts llm.Options) (string, error)
}

// Result is the outcome of planning one user request
type Result struct {
	Plan Plan `json:"plan"`

	// PlanText is the raw model output the plan was extracted from
	PlanText string `json:"plan_text"`

	Source     Source `json:"source"`
	Reprompted bool   `json:"reprompted,omitempty"`
}

// Planner turns a user request into a single normalized tool plan
type Planner struct {
	completer  Completer
	extractor  Extractor
	normalizer *temporal.Normalizer
	metrics    *instrumentation.Metrics
	logger     *slog.Logger
}

// Option configures a Planner
type Option func(*Planner)

// WithAggressiveRepair enables the JSON repair library as a last
// extraction attempt
func WithAggressiveRepair(enabled bool) Option {
	return func(p *Planner) {
		p.extractor.AggressiveRepair = enabled
	}
}

// WithMetrics records extraction outcomes
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(p *Planner) {
		p.metrics = m
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Planner
func New(completer Completer, normalizer *temporal.Normalizer, opts ...Option) *Planner {
	p := &Planner{
		completer:  completer,
		normalizer: normalizer,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.WithOperation(p.logger, "planner.plan")
	return p
}

// extract is Extractor.Extract, except that an object naming no tool (such
// as {}) counts as no plan
func (p *Planner) extract(text string) (map[string]any, Source) {
	obj, src := p.extractor.Extract(text)
	if src == SourceFallback {
		return nil, src
	}
	if tool, _ := obj["tool"].(string); strings.TrimSpace(tool) == "" {
		return nil, SourceFallback
	}
	return obj, src
}

// Plan asks the model for a plan. When the answer holds no JSON object with a
// tool the model is asked once more with a stricter instruction, and after
// that the keyword fallback is used. Time arguments of the plan are normalized.
//
// Only a failing model call is returned as an error.
func (p *Planner) Plan(ctx context.Context, userInput string) (*Result, error) {
	now := p.normalizer.Now()
	prompt := BuildPrompt(userInput, now, p.normalizer.Location())

	text, err := p.completer.Complete(ctx, prompt, llm.Options{MaxTokens: 220, Temperature: llm.Temperature(0.1)})
	if err != nil {
		return nil, fmt.Errorf("plan completion failed: %w", err)
	}

	res := &Result{PlanText: text}
	obj, src := p.extract(text)

	if src == SourceFallback {
		res.Reprompted = true
		text, err = p.completer.Complete(ctx, prompt+strictSuffix, llm.Options{MaxTokens: 200, Temperature: llm.Temperature(0)})
		if err != nil {
			return nil, fmt.Errorf("plan completion failed: %w", err)
		}
		res.PlanText = text
		obj, src = p.extract(text)
	}

	if src == SourceFallback {
		res.Plan = Fallback(userInput, now)
	} else {
		res.Plan = FromObject(obj)
	}
	res.Source = src
	res.Plan.Args = p.normalizer.NormalizeArgs(res.Plan.Args)

	p.metrics.RecordPlanExtraction(ctx, string(src))
	p.logger.Debug("plan ready",
		logging.Tool(res.Plan.Tool),
		slog.String("source", string(src)),
		slog.Bool("reprompted", res.Reprompted))

	return res, nil
}
