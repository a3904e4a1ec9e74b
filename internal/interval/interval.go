package interval

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrInvalidInterval is returned when an interval does not start strictly before it ends.
var ErrInvalidInterval = errors.New("interval start must be before end")

// Interval represents a half-open time span [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// New creates an interval, rejecting empty and inverted spans.
// Bounds are never swapped.
func New(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, fmt.Errorf("%w: %s >= %s", ErrInvalidInterval,
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Interval{Start: start, End: end}, nil
}

// Valid reports whether the interval has a positive length
func (i Interval) Valid() bool {
	return i.Start.Before(i.End)
}

// Duration returns the length of the interval
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Contains reports whether t lies inside the interval (end excluded)
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.Start) && t.Before(i.End)
}

// In returns the interval with both bounds converted to loc
func (i Interval) In(loc *time.Location) Interval {
	return Interval{Start: i.Start.In(loc), End: i.End.In(loc)}
}

// String formats the interval for logs and error messages
func (i Interval) String() string {
	return fmt.Sprintf("[%s, %s)", i.Start.Format(time.RFC3339), i.End.Format(time.RFC3339))
}

// Overlaps reports whether a and b share any instant.
// Touching endpoints do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Intersect returns the common part of a and b, if any
func Intersect(a, b Interval) (Interval, bool) {
	if !Overlaps(a, b) {
		return Interval{}, false
	}
	start := a.Start
	if b.Start.After(start) {
		start = b.Start
	}
	end := a.End
	if b.End.Before(end) {
		end = b.End
	}
	return Interval{Start: start, End: end}, true
}

// Subtract removes every busy interval from free and returns the remaining
// segments in chronological order. Busy intervals may arrive in any order
// and may overlap each other; invalid ones are ignored.
func Subtract(free Interval, busy []Interval) []Interval {
	if !free.Valid() {
		return nil
	}

	segments := []Interval{free}
	for _, b := range busy {
		if !b.Valid() {
			continue
		}

		next := make([]Interval, 0, len(segments)+1)
		for _, seg := range segments {
			if !Overlaps(seg, b) {
				next = append(next, seg)
				continue
			}

			// Left remainder
			if seg.Start.Before(b.Start) {
				next = append(next, Interval{Start: seg.Start, End: b.Start})
			}
			// Right remainder
			if b.End.Before(seg.End) {
				next = append(next, Interval{Start: b.End, End: seg.End})
			}
		}
		segments = next
	}

	result := segments[:0]
	for _, seg := range segments {
		if seg.Valid() {
			result = append(result, seg)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Start.Before(result[j].Start)
	})

	return result
}

// Filter drops invalid intervals, keeping the input order
func Filter(in []Interval) []Interval {
	out := make([]Interval, 0, len(in))
	for _, i := range in {
		if i.Valid() {
			out = append(out, i)
		}
	}
	return out
}
