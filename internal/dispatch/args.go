package dispatch

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/teemow/agentic/internal/temporal"
)

// Defaults applied when a plan omits an argument
const (
	DefaultEventTitle = "Yeni etkinlik"
	DefaultTaskTitle  = "Untitled task"
	DefaultMailDays   = 7
	DefaultMailLimit  = 10

	// DefaultQueryDays is how many days past today a calendar query covers
	// when the plan gives no range.
	DefaultQueryDays = 7
)

// Argument keys read from plans
const (
	keyAction     = "action"
	keyTitle      = "title"
	keyTimeZone   = "time_zone"
	keyTimezone   = "timezone"
	keyBlockHours = "block_hours"
	keyTopK       = "top_k"
	keyDays       = "days"
	keyLimit      = "limit"
	keyProject    = "project"
)

// Args is the typed form of a plan's arguments, one variant per tool
type Args interface {
	// Tool returns the canonical tool name the variant belongs to
	Tool() string
	isArgs()
}

// CalendarCreateArgs creates a single event
type CalendarCreateArgs struct {
	Title    string
	Start    time.Time
	End      time.Time
	TimeZone string
}

// CalendarQueryArgs asks for free slots in a range
type CalendarQueryArgs struct {
	Start time.Time
	End   time.Time
	Block time.Duration

	// TopK keeps only the first TopK slots when positive
	TopK int
}

// MailArgs lists recent important messages
type MailArgs struct {
	Days  int
	Limit int
}

// TaskArgs creates a task
type TaskArgs struct {
	Title   string
	Due     *time.Time
	Project string
}

// NoneArgs is the explicit no-op
type NoneArgs struct{}

func (CalendarCreateArgs) Tool() string { return ToolCalendar }
func (CalendarQueryArgs) Tool() string  { return ToolCalendar }
func (MailArgs) Tool() string           { return ToolMail }
func (TaskArgs) Tool() string           { return ToolTask }
func (NoneArgs) Tool() string           { return ToolNone }

func (CalendarCreateArgs) isArgs() {}
func (CalendarQueryArgs) isArgs()  {}
func (MailArgs) isArgs()           {}
func (TaskArgs) isArgs()           {}
func (NoneArgs) isArgs()           {}

// ValidationError reports an argument that is missing or unusable
type ValidationError struct {
	Tool   string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Tool, e.Reason)
	}
	return fmt.Sprintf("%s: invalid %s: %s", e.Tool, e.Field, e.Reason)
}

func invalid(tool, field, reason string) *ValidationError {
	return &ValidationError{Tool: tool, Field: field, Reason: reason}
}

// ParseArgs converts the loosely typed arguments of a plan into the variant
// for tool. Unknown tools yield ErrUnknownTool.
func (d *Dispatcher) ParseArgs(tool string, raw map[string]any) (Args, error) {
	switch CanonicalTool(tool) {
	case ToolCalendar:
		if isCreate(raw) {
			return d.parseCalendarCreate(raw)
		}
		return d.parseCalendarQuery(raw)
	case ToolMail:
		return parseMail(raw)
	case ToolTask:
		return d.parseTask(raw)
	case ToolNone:
		return NoneArgs{}, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownTool, tool)
}

func isCreate(raw map[string]any) bool {
	action, _ := raw[keyAction].(string)
	return strings.EqualFold(strings.TrimSpace(action), ActionCreate)
}

func (d *Dispatcher) parseCalendarCreate(raw map[string]any) (Args, error) {
	startRaw := stringArg(raw, temporal.KeyStartISO)
	endRaw := stringArg(raw, temporal.KeyEndISO)
	if startRaw == "" || endRaw == "" {
		return nil, &ValidationError{
			Tool:   ToolCalendar,
			Reason: fmt.Sprintf("create requires %q and %q", temporal.KeyStartISO, temporal.KeyEndISO),
		}
	}

	start, ok := d.normalizer.Parse(startRaw)
	if !ok {
		return nil, invalid(ToolCalendar, temporal.KeyStartISO, fmt.Sprintf("cannot parse %q", startRaw))
	}
	end, ok := d.normalizer.Parse(endRaw)
	if !ok {
		return nil, invalid(ToolCalendar, temporal.KeyEndISO, fmt.Sprintf("cannot parse %q", endRaw))
	}

	title := stringArg(raw, keyTitle)
	if title == "" {
		title = DefaultEventTitle
	}

	zone := stringArg(raw, keyTimeZone)
	if zone == "" {
		zone = stringArg(raw, keyTimezone)
	}

	return CalendarCreateArgs{Title: title, Start: start, End: end, TimeZone: zone}, nil
}

func (d *Dispatcher) parseCalendarQuery(raw map[string]any) (Args, error) {
	today := temporal.StartOfDay(d.normalizer.Now())
	args := CalendarQueryArgs{
		Start: today,
		End:   temporal.EndOfDay(today.AddDate(0, 0, DefaultQueryDays)),
		Block: d.engine.Config().DefaultBlock,
	}

	if s := stringArg(raw, temporal.KeyStartISO); s != "" {
		t, ok := d.normalizer.Parse(s)
		if !ok {
			return nil, invalid(ToolCalendar, temporal.KeyStartISO, fmt.Sprintf("cannot parse %q", s))
		}
		args.Start = t
	}
	if s := stringArg(raw, temporal.KeyEndISO); s != "" {
		t, ok := d.normalizer.ParseRangeEnd(s)
		if !ok {
			return nil, invalid(ToolCalendar, temporal.KeyEndISO, fmt.Sprintf("cannot parse %q", s))
		}
		args.End = t
	}

	if v, ok := raw[keyBlockHours]; ok && v != nil {
		block, err := blockDuration(v)
		if err != nil {
			return nil, err
		}
		args.Block = block
	}

	// top_k is optional and never fails the call
	if v, ok := raw[keyTopK]; ok {
		if k, ok := toInt(v); ok && k > 0 {
			args.TopK = k
		}
	}

	return args, nil
}

func parseMail(raw map[string]any) (Args, error) {
	days, err := positiveInt(raw, ToolMail, keyDays, DefaultMailDays)
	if err != nil {
		return nil, err
	}
	limit, err := positiveInt(raw, ToolMail, keyLimit, DefaultMailLimit)
	if err != nil {
		return nil, err
	}
	return MailArgs{Days: days, Limit: limit}, nil
}

func (d *Dispatcher) parseTask(raw map[string]any) (Args, error) {
	args := TaskArgs{Title: stringArg(raw, keyTitle)}
	if args.Title == "" {
		args.Title = DefaultTaskTitle
	}

	if s := stringArg(raw, temporal.KeyDue); s != "" {
		due, ok := d.normalizer.Parse(s)
		if !ok {
			return nil, invalid(ToolTask, temporal.KeyDue, fmt.Sprintf("cannot parse %q", s))
		}
		args.Due = &due
	}

	if v, ok := raw[keyProject]; ok && v != nil {
		project, ok := v.(string)
		if !ok {
			return nil, invalid(ToolTask, keyProject, fmt.Sprintf("must be a string, got %T", v))
		}
		args.Project = strings.TrimSpace(project)
	}

	return args, nil
}

// stringArg returns the trimmed string under key, or "" when absent or not a string
func stringArg(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return strings.TrimSpace(s)
}

func positiveInt(raw map[string]any, tool, key string, def int) (int, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return def, nil
	}
	n, ok := toInt(v)
	if !ok || n <= 0 {
		return 0, invalid(tool, key, fmt.Sprintf("must be a positive integer, got %v", v))
	}
	return n, nil
}

// maxBlockHours is the longest block a time.Duration can hold
var maxBlockHours = float64(math.MaxInt64) / float64(time.Hour)

// blockDuration converts block_hours to a duration of whole seconds. Blocks
// that overflow or round down below a second are rejected, so the engine
// never substitutes its default for a block the caller asked for.
func blockDuration(v any) (time.Duration, error) {
	hours, ok := toFloat(v)
	if !ok || hours <= 0 {
		return 0, invalid(ToolCalendar, keyBlockHours, fmt.Sprintf("must be a positive number, got %v", v))
	}
	if hours >= maxBlockHours {
		return 0, invalid(ToolCalendar, keyBlockHours, fmt.Sprintf("%v hours is too long", v))
	}
	block := time.Duration(hours * float64(time.Hour)).Truncate(time.Second)
	if block < time.Second {
		return 0, invalid(ToolCalendar, keyBlockHours, fmt.Sprintf("%v hours is shorter than a second", v))
	}
	return block, nil
}

// toInt accepts JSON numbers and numeric strings. Fractions are truncated.
func toInt(v any) (int, bool) {
	f, ok := toFloat(v)
	if !ok || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// toFloat accepts any numeric type, json.Number and numeric strings.
// Booleans, NaN and infinities are not numbers here.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case nil, bool:
		return 0, false
	case string:
		v = strings.TrimSpace(n)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
