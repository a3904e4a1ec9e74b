package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/teemow/agentic/internal/availability"
	"github.com/teemow/agentic/internal/calendar"
	"github.com/teemow/agentic/internal/gmail"
	"github.com/teemow/agentic/internal/instrumentation"
	"github.com/teemow/agentic/internal/logging"
	"github.com/teemow/agentic/internal/tasks"
	"github.com/teemow/agentic/internal/temporal"
)

// CalendarProvider reads busy times and creates events
type CalendarProvider interface {
	availability.BusyFinder
	CreateEvent(ctx context.Context, title string, start, end time.Time, zone string) (*calendar.EventRecord, error)
}

// MailProvider lists recent messages, newest first
type MailProvider interface {
	ListRecentImportant(ctx context.Context, days, limit int) ([]gmail.Message, error)
}

// TaskProvider creates tasks
type TaskProvider interface {
	CreateTask(ctx context.Context, title string, due *time.Time, project string) (*tasks.TaskRecord, error)
}

// Config configures a Dispatcher. Providers left nil make their tool fail
// with ErrProviderUnavailable.
type Config struct {
	Normalizer   *temporal.Normalizer
	Availability availability.Config

	Calendar CalendarProvider
	Mail     MailProvider
	Tasks    TaskProvider

	Metrics *instrumentation.Metrics
	Audit   *instrumentation.AuditLogger
	Logger  *slog.Logger
}

// Dispatcher routes a tool name and its arguments to the matching provider.
// It holds no per-request state and is safe for concurrent use.
type Dispatcher struct {
	normalizer *temporal.Normalizer
	engine     *availability.Engine

	calendar CalendarProvider
	mail     MailProvider
	tasks    TaskProvider

	metrics *instrumentation.Metrics
	audit   *instrumentation.AuditLogger
	logger  *slog.Logger
}

// New creates a Dispatcher
func New(cfg Config) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	normalizer := cfg.Normalizer
	if normalizer == nil {
		normalizer = temporal.New(temporal.Config{Location: cfg.Availability.Location})
	}

	avail := cfg.Availability
	if avail.Location == nil {
		avail.Location = normalizer.Location()
	}

	var busy availability.BusyFinder
	if cfg.Calendar != nil {
		busy = cfg.Calendar
	}

	return &Dispatcher{
		normalizer: normalizer,
		engine:     availability.NewEngine(avail, busy, logger),
		calendar:   cfg.Calendar,
		mail:       cfg.Mail,
		tasks:      cfg.Tasks,
		metrics:    cfg.Metrics,
		audit:      cfg.Audit,
		logger:     logging.WithOperation(logger, "dispatch"),
	}
}

// Engine returns the availability engine used for calendar queries
func (d *Dispatcher) Engine() *availability.Engine {
	return d.engine
}

// Normalizer returns the temporal normalizer used to parse arguments
func (d *Dispatcher) Normalizer() *temporal.Normalizer {
	return d.normalizer
}

// Dispatch runs tool with args and returns its result. It never panics and
// never returns an error: validation failures, provider failures and
// panics all become results with OutcomeError. Unknown tools yield
// OutcomeWarning and "none" yields OutcomeNone.
func (d *Dispatcher) Dispatch(ctx context.Context, tool string, args map[string]any) (res Result) {
	canonical := CanonicalTool(tool)
	ctx, span := instrumentation.StartDispatchSpan(ctx, canonical)
	defer span.End()

	invocation := instrumentation.NewToolInvocation(canonical).
		WithArgs(args).
		WithSpanContext(ctx)
	began := time.Now()

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("tool handler panicked",
				logging.Tool(canonical),
				slog.Any("panic", r))
			res = errorResult(tool, args, fmt.Errorf("%s: handler panicked: %v", canonical, r))
		}
		d.finish(ctx, span, invocation, res, time.Since(began))
	}()

	if !IsKnown(canonical) {
		return Result{
			Tool:    tool,
			Outcome: OutcomeWarning,
			Warning: fmt.Sprintf("Unknown tool '%s'", tool),
			Args:    args,
		}
	}

	parsed, err := d.ParseArgs(canonical, args)
	if err != nil {
		return errorResult(tool, args, err)
	}

	res, err = d.execute(ctx, parsed, invocation)
	if err != nil {
		return errorResult(tool, args, err)
	}
	res.Tool = tool
	res.Args = args
	return res
}

// execute calls the provider for a parsed argument variant
func (d *Dispatcher) execute(ctx context.Context, args Args, invocation *instrumentation.ToolInvocation) (Result, error) {
	switch a := args.(type) {
	case NoneArgs:
		return Result{Outcome: OutcomeNone}, nil

	case CalendarCreateArgs:
		invocation.WithService(instrumentation.ServiceCalendar, instrumentation.OperationCreate)
		if d.calendar == nil {
			return Result{}, fmt.Errorf("calendar: %w", ErrProviderUnavailable)
		}
		event, err := d.calendar.CreateEvent(ctx, a.Title, a.Start, a.End, a.TimeZone)
		if err != nil {
			return Result{}, err
		}
		return Result{Outcome: OutcomeOK, Created: event}, nil

	case CalendarQueryArgs:
		invocation.WithService(instrumentation.ServiceCalendar, instrumentation.OperationFreeBusy)
		if d.calendar == nil {
			return Result{}, fmt.Errorf("calendar: %w", ErrProviderUnavailable)
		}
		slots, err := d.engine.FreeSlotsBetween(ctx, a.Start, a.End, a.Block)
		if err != nil {
			return Result{}, err
		}
		if a.TopK > 0 && len(slots) > a.TopK {
			slots = slots[:a.TopK]
		}
		return Result{Outcome: OutcomeOK, FreeSlots: slots}, nil

	case MailArgs:
		invocation.WithService(instrumentation.ServiceGmail, instrumentation.OperationList)
		if d.mail == nil {
			return Result{}, fmt.Errorf("mail: %w", ErrProviderUnavailable)
		}
		emails, err := d.mail.ListRecentImportant(ctx, a.Days, a.Limit)
		if err != nil {
			return Result{}, err
		}
		if emails == nil {
			emails = []gmail.Message{}
		}
		return Result{Outcome: OutcomeOK, Emails: emails}, nil

	case TaskArgs:
		invocation.WithService(instrumentation.ServiceTasks, instrumentation.OperationCreate)
		if d.tasks == nil {
			return Result{}, fmt.Errorf("task: %w", ErrProviderUnavailable)
		}
		task, err := d.tasks.CreateTask(ctx, a.Title, a.Due, a.Project)
		if err != nil {
			return Result{}, err
		}
		return Result{Outcome: OutcomeOK, Task: task}, nil
	}

	return Result{}, fmt.Errorf("unsupported arguments %T", args)
}

func (d *Dispatcher) finish(ctx context.Context, span trace.Span, invocation *instrumentation.ToolInvocation, res Result, elapsed time.Duration) {
	outcome := string(res.Outcome)

	var err error
	if res.Outcome == OutcomeError {
		err = errors.New(res.Error)
		instrumentation.SetSpanError(span, err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	span.SetAttributes(instrumentation.NewSpanAttributeBuilder().WithOutcome(outcome).Build()...)

	d.metrics.RecordDispatch(ctx, invocation.Tool, outcome, elapsed)
	d.audit.LogToolInvocation(invocation.Complete(outcome, err))

	attrs := []any{
		logging.Tool(instrumentation.ToolLabel(invocation.Tool)),
		slog.String("outcome", outcome),
		slog.Duration(logging.KeyDuration, elapsed),
	}
	if traceID := instrumentation.GetTraceID(ctx); traceID != "" {
		attrs = append(attrs,
			slog.String(logging.KeyTraceID, traceID),
			slog.String(logging.KeySpanID, instrumentation.GetSpanID(ctx)))
	}
	switch res.Outcome {
	case OutcomeError:
		d.logger.Warn("tool dispatch failed", append(attrs, slog.String(logging.KeyError, res.Error))...)
	case OutcomeWarning:
		d.logger.Warn("unknown tool requested", attrs...)
	default:
		d.logger.Debug("tool dispatched", attrs...)
	}
}

func errorResult(tool string, args map[string]any, err error) Result {
	return Result{
		Tool:    tool,
		Outcome: OutcomeError,
		Error:   err.Error(),
		Args:    args,
	}
}
