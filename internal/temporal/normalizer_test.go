package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var istanbul = time.FixedZone("+03", 3*60*60)

func newTestNormalizer(now time.Time) *Normalizer {
	return New(Config{
		Location: istanbul,
		Now:      func() time.Time { return now },
	})
}

func TestParse(t *testing.T) {
	n := newTestNormalizer(time.Date(2025, 8, 20, 9, 0, 0, 0, istanbul))

	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{"naive minutes", "2025-08-22T14:00", time.Date(2025, 8, 22, 14, 0, 0, 0, istanbul), true},
		{"naive seconds", "2025-08-22T14:00:30", time.Date(2025, 8, 22, 14, 0, 30, 0, istanbul), true},
		{"space separator", "2025-08-22 14:00", time.Date(2025, 8, 22, 14, 0, 0, 0, istanbul), true},
		{"bare date", "2025-08-22", time.Date(2025, 8, 22, 0, 0, 0, 0, istanbul), true},
		{"utc converted", "2025-08-22T11:00:00Z", time.Date(2025, 8, 22, 14, 0, 0, 0, istanbul), true},
		{"offset converted", "2025-08-22T13:00:00+02:00", time.Date(2025, 8, 22, 14, 0, 0, 0, istanbul), true},
		{"fraction dropped", "2025-08-22T14:00:00.987654", time.Date(2025, 8, 22, 14, 0, 0, 0, istanbul), true},
		{"surrounding spaces", "  2025-08-22T14:00  ", time.Date(2025, 8, 22, 14, 0, 0, 0, istanbul), true},
		{"empty", "", time.Time{}, false},
		{"garbage", "tomorrow afternoon", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := n.Parse(tt.input)
			require.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
			assert.Equal(t, 0, got.Nanosecond())
			assert.Equal(t, istanbul, got.Location())
		})
	}
}

func TestNormalizeArgs(t *testing.T) {
	n := newTestNormalizer(time.Date(2025, 8, 20, 9, 0, 0, 0, istanbul))

	in := map[string]any{
		"start_iso": "2025-08-22T14:00",
		"end_iso":   "2025-08-22",
		"due":       "not a date",
		"title":     "Standup",
		"top_k":     3,
	}

	out := n.NormalizeArgs(in)

	assert.Equal(t, "2025-08-22T14:00:00+03:00", out["start_iso"])
	assert.Equal(t, "2025-08-22T00:00:00+03:00", out["end_iso"])
	assert.Equal(t, "not a date", out["due"])
	assert.Equal(t, "Standup", out["title"])
	assert.Equal(t, 3, out["top_k"])

	// the input map is left untouched
	assert.Equal(t, "2025-08-22T14:00", in["start_iso"])
}

func TestNormalizeArgs_PastYear(t *testing.T) {
	n := newTestNormalizer(time.Date(2025, 8, 20, 9, 0, 0, 0, istanbul))

	out := n.NormalizeArgs(map[string]any{"due": "2021-05-01T10:00"})
	assert.Equal(t, "2025-05-01T10:00:00+03:00", out["due"])

	// future years are kept as they are
	out = n.NormalizeArgs(map[string]any{"due": "2027-01-03T10:00"})
	assert.Equal(t, "2027-01-03T10:00:00+03:00", out["due"])
}

func TestNormalizeArgs_Idempotent(t *testing.T) {
	n := newTestNormalizer(time.Date(2025, 8, 20, 9, 0, 0, 0, istanbul))

	once := n.NormalizeArgs(map[string]any{
		"start_iso": "2024-02-10 09:15",
		"end_iso":   "2025-08-22T11:00:00Z",
	})
	twice := n.NormalizeArgs(once)

	assert.Equal(t, once, twice)
}

func TestNormalizeArgs_NonStringValues(t *testing.T) {
	n := newTestNormalizer(time.Now())

	out := n.NormalizeArgs(map[string]any{"due": 12345, "start_iso": nil})
	assert.Equal(t, 12345, out["due"])
	assert.Nil(t, out["start_iso"])
}

func TestCorrectYear_LeapDay(t *testing.T) {
	leap := time.Date(2024, 2, 29, 10, 30, 0, 0, istanbul)

	got := CorrectYear(leap, 2025)
	assert.Equal(t, time.Date(2025, 2, 28, 10, 30, 0, 0, istanbul), got)

	got = CorrectYear(leap, 2028)
	assert.Equal(t, time.Date(2028, 2, 29, 10, 30, 0, 0, istanbul), got)
}

func TestParseRangeEnd(t *testing.T) {
	n := newTestNormalizer(time.Now())

	got, ok := n.ParseRangeEnd("2025-08-27")
	require.True(t, ok)
	assert.True(t, time.Date(2025, 8, 27, 23, 59, 59, 0, istanbul).Equal(got))

	got, ok = n.ParseRangeEnd("2025-08-27T18:00")
	require.True(t, ok)
	assert.True(t, time.Date(2025, 8, 27, 18, 0, 0, 0, istanbul).Equal(got))

	_, ok = n.ParseRangeEnd("soon")
	assert.False(t, ok)
}

func TestDayBounds(t *testing.T) {
	ts := time.Date(2025, 8, 22, 14, 12, 5, 0, istanbul)

	assert.Equal(t, time.Date(2025, 8, 22, 0, 0, 0, 0, istanbul), StartOfDay(ts))
	assert.Equal(t, time.Date(2025, 8, 22, 23, 59, 59, 0, istanbul), EndOfDay(ts))
}

func TestNew_Defaults(t *testing.T) {
	n := New(Config{})
	assert.Equal(t, time.UTC, n.Location())
	assert.WithinDuration(t, time.Now(), n.Now(), time.Minute)
}
