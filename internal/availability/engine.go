package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/teemow/agentic/internal/interval"
	"github.com/teemow/agentic/internal/logging"
	"github.com/teemow/agentic/internal/temporal"
)

// DefaultBlock is the slot length used when none is requested
const DefaultBlock = 2 * time.Hour

// Clock is a time of day
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM"
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return Clock{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// String formats the clock as "HH:MM"
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// on returns the instant of the clock on the given day
func (c Clock) on(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, day.Location())
}

// Config holds the settings of the engine
type Config struct {
	// Location is the zone days and windows are computed in
	Location *time.Location

	// WindowStart and WindowEnd bound the daily work window
	WindowStart Clock
	WindowEnd   Clock

	// DefaultBlock is used when a caller passes a non-positive block
	DefaultBlock time.Duration
}

// DefaultConfig returns the 13:00-19:00 window with two hour blocks
func DefaultConfig(loc *time.Location) Config {
	return Config{
		Location:     loc,
		WindowStart:  Clock{Hour: 13},
		WindowEnd:    Clock{Hour: 19},
		DefaultBlock: DefaultBlock,
	}
}

// BusyFinder returns the busy intervals intersecting [start, end]
type BusyFinder interface {
	FindBusy(ctx context.Context, start, end time.Time) ([]interval.Interval, error)
}

// Slot is a free block of exactly the requested length
type Slot struct {
	Start time.Time
	End   time.Time
}

type slotJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// MarshalJSON renders the slot bounds as RFC3339 strings
func (s Slot) MarshalJSON() ([]byte, error) {
	return json.Marshal(slotJSON{
		Start: temporal.FormatInstant(s.Start),
		End:   temporal.FormatInstant(s.End),
	})
}

// Engine computes free slots from a busy calendar
type Engine struct {
	cfg        Config
	busy       BusyFinder
	normalizer *temporal.Normalizer
	logger     *slog.Logger
}

// NewEngine creates an engine. Zero values in cfg are replaced by defaults.
func NewEngine(cfg Config, busy BusyFinder, logger *slog.Logger) *Engine {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.WindowStart == (Clock{}) && cfg.WindowEnd == (Clock{}) {
		def := DefaultConfig(cfg.Location)
		cfg.WindowStart, cfg.WindowEnd = def.WindowStart, def.WindowEnd
	}
	if cfg.DefaultBlock <= 0 {
		cfg.DefaultBlock = DefaultBlock
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		cfg:        cfg,
		busy:       busy,
		normalizer: temporal.New(temporal.Config{Location: cfg.Location}),
		logger:     logging.WithOperation(logger, "availability.free_slots"),
	}
}

// Config returns the effective configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// FreeSlots parses a loosely formatted range and returns the free slots in
// it. A bare start date means the start of that day, a bare end date means
// the end of that day.
func (e *Engine) FreeSlots(ctx context.Context, rangeStart, rangeEnd string, block time.Duration) ([]Slot, error) {
	start, ok := e.normalizer.Parse(rangeStart)
	if !ok {
		return nil, fmt.Errorf("invalid range start %q", rangeStart)
	}
	end, ok := e.normalizer.ParseRangeEnd(rangeEnd)
	if !ok {
		return nil, fmt.Errorf("invalid range end %q", rangeEnd)
	}

	return e.FreeSlotsBetween(ctx, start, end, block)
}

// FreeSlotsBetween returns back-to-back blocks of the given length that fit
// inside the daily work window and outside every busy interval, for each day
// from start to end inclusive, in chronological order.
//
// Busy intervals are fetched once for the whole range. A lookup failure
// fails the whole call.
func (e *Engine) FreeSlotsBetween(ctx context.Context, start, end time.Time, block time.Duration) ([]Slot, error) {
	if block <= 0 {
		block = e.cfg.DefaultBlock
	}
	start = start.In(e.cfg.Location)
	end = end.In(e.cfg.Location)

	slots := []Slot{}
	if !start.Before(end) {
		return slots, nil
	}

	busy, err := e.busy.FindBusy(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query busy times: %w", err)
	}

	for day := temporal.StartOfDay(start); !day.After(end); day = day.AddDate(0, 0, 1) {
		window, ok := e.window(day, start, end)
		if !ok {
			continue
		}

		for _, seg := range interval.Subtract(window, busy) {
			slots = append(slots, pack(seg, block)...)
		}
	}

	e.logger.Debug("computed free slots",
		slog.Time("start", start),
		slog.Time("end", end),
		slog.Duration("block", block),
		slog.Int("busy", len(busy)),
		slog.Int("slots", len(slots)))

	return slots, nil
}

// window returns the work window of day clipped to [start, end]
func (e *Engine) window(day, start, end time.Time) (interval.Interval, bool) {
	ws := e.cfg.WindowStart.on(day)
	we := e.cfg.WindowEnd.on(day)

	if start.After(ws) {
		ws = start
	}
	if end.Before(we) {
		we = end
	}

	w := interval.Interval{Start: ws, End: we}
	return w, w.Valid()
}

// pack slices seg into contiguous blocks, dropping a shorter remainder
func pack(seg interval.Interval, block time.Duration) []Slot {
	var out []Slot
	for cursor := seg.Start; !cursor.Add(block).After(seg.End); cursor = cursor.Add(block) {
		out = append(out, Slot{Start: cursor, End: cursor.Add(block)})
	}
	return out
}
