package interval

import (
	"errors"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 8, 21, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return base.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func iv(startHour, startMin, endHour, endMin int) Interval {
	return Interval{Start: at(startHour, startMin), End: at(endHour, endMin)}
}

func TestNew(t *testing.T) {
	got, err := New(at(13, 0), at(14, 0))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, got.Duration())

	_, err = New(at(14, 0), at(14, 0))
	assert.True(t, errors.Is(err, ErrInvalidInterval))

	_, err = New(at(15, 0), at(14, 0))
	assert.True(t, errors.Is(err, ErrInvalidInterval))
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Interval
		expected bool
	}{
		{"disjoint", iv(13, 0, 14, 0), iv(15, 0, 16, 0), false},
		{"touching endpoints", iv(13, 0, 14, 0), iv(14, 0, 15, 0), false},
		{"partial overlap", iv(13, 0, 14, 30), iv(14, 0, 15, 0), true},
		{"contained", iv(13, 0, 19, 0), iv(14, 0, 15, 0), true},
		{"identical", iv(13, 0, 14, 0), iv(13, 0, 14, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Overlaps(tt.a, tt.b))
			assert.Equal(t, tt.expected, Overlaps(tt.b, tt.a), "overlap must be symmetric")
		})
	}
}

func TestIntersect(t *testing.T) {
	got, ok := Intersect(iv(13, 0, 15, 0), iv(14, 0, 16, 0))
	require.True(t, ok)
	assert.Equal(t, iv(14, 0, 15, 0), got)

	_, ok = Intersect(iv(13, 0, 14, 0), iv(14, 0, 15, 0))
	assert.False(t, ok)
}

func TestSubtract(t *testing.T) {
	free := iv(13, 0, 19, 0)

	tests := []struct {
		name     string
		busy     []Interval
		expected []Interval
	}{
		{
			name:     "no busy",
			busy:     nil,
			expected: []Interval{free},
		},
		{
			name:     "busy in the middle",
			busy:     []Interval{iv(14, 0, 15, 0)},
			expected: []Interval{iv(13, 0, 14, 0), iv(15, 0, 19, 0)},
		},
		{
			name:     "busy covering start",
			busy:     []Interval{iv(12, 0, 13, 30)},
			expected: []Interval{iv(13, 30, 19, 0)},
		},
		{
			name:     "busy covering everything",
			busy:     []Interval{iv(10, 0, 20, 0)},
			expected: []Interval{},
		},
		{
			name:     "busy outside the window",
			busy:     []Interval{iv(9, 0, 10, 0), iv(19, 0, 20, 0)},
			expected: []Interval{free},
		},
		{
			name:     "overlapping and unordered busy",
			busy:     []Interval{iv(16, 0, 17, 0), iv(14, 0, 15, 30), iv(15, 0, 16, 30)},
			expected: []Interval{iv(13, 0, 14, 0), iv(17, 0, 19, 0)},
		},
		{
			name:     "duplicates",
			busy:     []Interval{iv(14, 0, 15, 0), iv(14, 0, 15, 0)},
			expected: []Interval{iv(13, 0, 14, 0), iv(15, 0, 19, 0)},
		},
		{
			name:     "inverted busy is ignored",
			busy:     []Interval{{Start: at(15, 0), End: at(14, 0)}},
			expected: []Interval{free},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Subtract(free, tt.busy)
			assert.Equal(t, len(tt.expected), len(got))
			for i := range tt.expected {
				assert.True(t, tt.expected[i].Start.Equal(got[i].Start), "segment %d start", i)
				assert.True(t, tt.expected[i].End.Equal(got[i].End), "segment %d end", i)
			}
		})
	}
}

func TestSubtract_InvalidFree(t *testing.T) {
	assert.Empty(t, Subtract(iv(15, 0, 14, 0), nil))
}

func TestSubtract_OrderIndependent(t *testing.T) {
	free := iv(13, 0, 19, 0)
	busy := []Interval{iv(13, 30, 14, 0), iv(18, 0, 20, 0), iv(15, 0, 16, 0), iv(15, 30, 16, 15)}

	reversed := make([]Interval, len(busy))
	for i := range busy {
		reversed[len(busy)-1-i] = busy[i]
	}

	assert.Equal(t, Subtract(free, busy), Subtract(free, reversed))
}

// mergedLength returns the total length covered by the union of the given intervals.
func mergedLength(in []Interval) time.Duration {
	sorted := append([]Interval(nil), in...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	var total time.Duration
	var cur Interval
	for i, s := range sorted {
		if i == 0 {
			cur = s
			continue
		}
		if !s.Start.After(cur.End) {
			if s.End.After(cur.End) {
				cur.End = s.End
			}
			continue
		}
		total += cur.Duration()
		cur = s
	}
	if len(sorted) > 0 {
		total += cur.Duration()
	}
	return total
}

func TestSubtract_CoversFreeExactly(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 200; run++ {
		free := iv(13, 0, 19, 0)

		var busy []Interval
		for n := rng.Intn(6); n > 0; n-- {
			startMin := rng.Intn(14 * 60)
			length := 1 + rng.Intn(180)
			start := base.Add(time.Duration(8*60+startMin) * time.Minute)
			busy = append(busy, Interval{Start: start, End: start.Add(time.Duration(length) * time.Minute)})
		}

		segments := Subtract(free, busy)

		for i, seg := range segments {
			require.True(t, seg.Valid())
			require.False(t, seg.Start.Before(free.Start), "segment outside free window")
			require.False(t, seg.End.After(free.End), "segment outside free window")
			for _, b := range busy {
				require.False(t, Overlaps(seg, b), "segment overlaps busy interval")
			}
			for j := i + 1; j < len(segments); j++ {
				require.False(t, Overlaps(seg, segments[j]), "segments overlap each other")
			}
		}

		var covered []Interval
		for _, b := range busy {
			if part, ok := Intersect(free, b); ok {
				covered = append(covered, part)
			}
		}

		var freeTotal time.Duration
		for _, seg := range segments {
			freeTotal += seg.Duration()
		}

		assert.Equal(t, free.Duration(), freeTotal+mergedLength(covered), "run %d", run)
	}
}

func TestFilter(t *testing.T) {
	in := []Interval{iv(13, 0, 14, 0), iv(15, 0, 15, 0), {Start: at(16, 0), End: at(15, 0)}}
	assert.Equal(t, []Interval{iv(13, 0, 14, 0)}, Filter(in))
}
