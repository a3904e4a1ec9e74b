package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/teemow/agentic/internal/dispatch"
	"github.com/teemow/agentic/internal/instrumentation"
	"github.com/teemow/agentic/internal/llm"
	"github.com/teemow/agentic/internal/logging"
	"github.com/teemow/agentic/internal/planner"
)

// ErrEmptyInput is returned for blank requests
var ErrEmptyInput = errors.New("user input is empty")

const (
	answerInstruction = "Kısa ve eyleme dönük Türkçe yanıt ver. Maddeli yaz."
	answerMaxTokens   = 800
	answerTemperature = 0.3
)

// Planner produces a normalized tool plan for a request
type Planner interface {
	Plan(ctx context.Context, userInput string) (*planner.Result, error)
}

// Dispatcher executes a tool plan
type Dispatcher interface {
	Dispatch(ctx context.Context, tool string, args map[string]any) dispatch.Result
}

// Response is the full outcome of one request
type Response struct {
	PlanText   string         `json:"plan_text"`
	PlanSource planner.Source `json:"plan_source"`
	ToolCall   planner.Plan   `json:"tool_call"`

	// ToolOutput is nil when the plan asked for no tool
	ToolOutput *dispatch.Result `json:"tool_output"`

	// Summary is a plain rendering of ToolOutput that does not need the model
	Summary string `json:"summary"`

	FinalAnswer string `json:"final_answer"`
}

// Assistant runs the plan, dispatch and answer steps for a request
type Assistant struct {
	planner    Planner
	dispatcher Dispatcher
	completer  planner.Completer
	logger     *slog.Logger
}

// New creates an Assistant. The completer writes the final answer.
func New(p Planner, d Dispatcher, completer planner.Completer, logger *slog.Logger) *Assistant {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		planner:    p,
		dispatcher: d,
		completer:  completer,
		logger:     logging.WithOperation(logger, "assistant.handle"),
	}
}

// Handle plans the request, runs at most one tool and asks the model for a
// final answer that uses the tool output.
//
// Tool failures are reported inside ToolOutput. Only model failures and
// blank input return an error.
func (a *Assistant) Handle(ctx context.Context, userInput string) (*Response, error) {
	userInput = strings.TrimSpace(userInput)
	if userInput == "" {
		return nil, ErrEmptyInput
	}

	ctx, span := instrumentation.StartSpan(ctx, "assistant.handle")
	defer span.End()

	began := time.Now()
	logger := a.logger.With(logging.InputHash(userInput))

	planned, err := a.planner.Plan(ctx, userInput)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, err
	}

	resp := &Response{
		PlanText:   planned.PlanText,
		PlanSource: planned.Source,
		ToolCall:   planned.Plan,
	}

	if dispatch.CanonicalTool(planned.Plan.Tool) != dispatch.ToolNone {
		out := a.dispatcher.Dispatch(ctx, planned.Plan.Tool, planned.Plan.Args)
		resp.ToolOutput = &out
		resp.Summary = dispatch.Summarize(out)
	} else {
		resp.Summary = dispatch.NoOutputSummary
	}

	prompt, err := BuildAnswerPrompt(userInput, resp.ToolOutput)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, err
	}

	answer, err := a.completer.Complete(ctx, prompt, llm.Options{
		MaxTokens:   answerMaxTokens,
		Temperature: llm.Temperature(answerTemperature),
	})
	if err != nil {
		err = fmt.Errorf("final answer completion failed: %w", err)
		instrumentation.SetSpanError(span, err)
		return nil, err
	}
	resp.FinalAnswer = strings.TrimSpace(answer)

	instrumentation.SetSpanSuccess(span)
	logger.Info("request handled",
		logging.Tool(instrumentation.ToolLabel(planned.Plan.Tool)),
		slog.String("source", string(planned.Source)),
		slog.Duration(logging.KeyDuration, time.Since(began)))

	return resp, nil
}

// BuildAnswerPrompt renders the final answer prompt. The tool output is
// embedded as JSON when present.
func BuildAnswerPrompt(userInput string, output *dispatch.Result) (string, error) {
	var b strings.Builder
	b.WriteString(answerInstruction)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "User: Kullanıcı isteği: %s\n", userInput)

	if output != nil && output.Outcome != dispatch.OutcomeNone {
		data, err := json.Marshal(output)
		if err != nil {
			return "", fmt.Errorf("failed to encode tool output: %w", err)
		}
		fmt.Fprintf(&b, "User: Araç çıktısı (JSON): %s\n", data)
	}

	b.WriteString("Assistant:")
	return b.String(), nil
}
