package temporal

import (
	"strings"
	"time"
)

// Keys in tool arguments that carry instants and get normalized.
const (
	KeyDue      = "due"
	KeyStartISO = "start_iso"
	KeyEndISO   = "end_iso"
)

// DefaultTimezone is the zone used when no configuration is provided
const DefaultTimezone = "Europe/Istanbul"

// dateLayout is the bare calendar date form
const dateLayout = "2006-01-02"

// layouts lists the accepted input forms, most specific first.
// Inputs without an offset are interpreted in the normalizer's zone.
var layouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z0700",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	dateLayout,
}

// Config configures a Normalizer
type Config struct {
	// Location is the fixed zone every instant is converted to.
	Location *time.Location

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Normalizer parses loosely formatted date/time strings into instants in a
// single fixed zone, truncated to whole seconds.
type Normalizer struct {
	loc *time.Location
	now func() time.Time
}

// New creates a Normalizer. A nil Location falls back to UTC.
func New(cfg Config) *Normalizer {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Normalizer{loc: loc, now: now}
}

// Location returns the fixed zone of the normalizer
func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// Now returns the current time in the fixed zone
func (n *Normalizer) Now() time.Time {
	return n.now().In(n.loc)
}

// Parse converts s into an instant in the fixed zone.
// A bare date means midnight, missing seconds mean zero seconds.
// It reports false when s matches none of the accepted forms.
func (n *Normalizer) Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, s, n.loc)
		if err != nil {
			continue
		}
		return t.In(n.loc).Truncate(time.Second), true
	}

	return time.Time{}, false
}

// IsDateOnly reports whether s is a bare calendar date
func IsDateOnly(s string) bool {
	_, err := time.Parse(dateLayout, strings.TrimSpace(s))
	return err == nil
}

// ParseRangeEnd parses the upper bound of a range. A bare date means the
// last second of that day.
func (n *Normalizer) ParseRangeEnd(s string) (time.Time, bool) {
	t, ok := n.Parse(s)
	if !ok {
		return time.Time{}, false
	}
	if IsDateOnly(s) {
		return EndOfDay(t), true
	}
	return t, true
}

// NormalizeArgs returns a copy of args where the string values of due,
// start_iso and end_iso are rewritten as RFC3339 instants in the fixed zone.
// Values that cannot be parsed are passed through untouched. Instants in a
// year before the current one are moved to the current year.
//
// No attempt is made to reorder start_iso and end_iso.
func (n *Normalizer) NormalizeArgs(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = v
	}

	year := n.Now().Year()
	for _, key := range []string{KeyDue, KeyStartISO, KeyEndISO} {
		raw, ok := out[key].(string)
		if !ok {
			continue
		}
		t, ok := n.Parse(raw)
		if !ok {
			continue
		}
		out[key] = FormatInstant(CorrectYear(t, year))
	}

	return out
}

// CorrectYear moves t into year when t lies in an earlier year, keeping the
// month, day and clock time. Feb 29 moved into a non-leap year becomes Feb 28.
func CorrectYear(t time.Time, year int) time.Time {
	if t.Year() >= year {
		return t
	}

	day := t.Day()
	if last := daysIn(t.Month(), year); day > last {
		day = last
	}
	return time.Date(year, t.Month(), day, t.Hour(), t.Minute(), t.Second(), 0, t.Location())
}

// FormatInstant renders an instant in the canonical RFC3339 form
func FormatInstant(t time.Time) string {
	return t.Format(time.RFC3339)
}

// StartOfDay returns midnight of t's day in t's zone
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59 of t's day in t's zone
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
