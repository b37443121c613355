package timex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func seoul(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	return loc
}

func TestParseSupportedLayouts(t *testing.T) {
	loc := seoul(t)
	r := NewResolver(loc)

	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{
			name: "rfc3339 fractional with offset",
			in:   "2025-09-25T13:45:30.123456+09:00",
			want: time.Date(2025, 9, 25, 13, 45, 30, 123456000, loc),
		},
		{
			name: "rfc3339 no fraction",
			in:   "2025-09-25T13:45:30+09:00",
			want: time.Date(2025, 9, 25, 13, 45, 30, 0, loc),
		},
		{
			name: "naive seconds",
			in:   "2025-09-25T13:45:30",
			want: time.Date(2025, 9, 25, 13, 45, 30, 0, loc),
		},
		{
			name: "naive minutes",
			in:   "2025-09-25T13:45",
			want: time.Date(2025, 9, 25, 13, 45, 0, 0, loc),
		},
		{
			name: "date only",
			in:   "2025-09-25",
			want: time.Date(2025, 9, 25, 0, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Parse(tt.in)
			require.True(t, ok)
			require.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
		})
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	r := NewResolver(time.UTC)

	for _, in := range []string{
		"",
		"tomorrow",
		"25/09/2025",
		"2025-09-25 13:45:30", // space separator is not in the vocabulary
		"2025-13-40",
	} {
		_, ok := r.Parse(in)
		require.False(t, ok, "input %q should not parse", in)
	}
}

func TestNormalizeEndOfDay(t *testing.T) {
	loc := seoul(t)
	r := NewResolver(loc)

	midnight := time.Date(2025, 9, 25, 0, 0, 0, 0, loc)
	next := r.NormalizeEndOfDay(midnight)
	require.Equal(t, time.Date(2025, 9, 26, 0, 0, 0, 0, loc), next)

	// Deterministic for the same input.
	require.Equal(t, next, r.NormalizeEndOfDay(midnight))

	afternoon := time.Date(2025, 9, 25, 14, 30, 0, 0, loc)
	require.Equal(t, afternoon, r.NormalizeEndOfDay(afternoon))

	oneSecondIn := time.Date(2025, 9, 25, 0, 0, 1, 0, loc)
	require.Equal(t, oneSecondIn, r.NormalizeEndOfDay(oneSecondIn))
}

func TestNormalizeEndOfDayRespectsResolverZone(t *testing.T) {
	loc := seoul(t)
	r := NewResolver(loc)

	// Midnight in Seoul expressed as a UTC instant must still shift a day.
	utcExpr := time.Date(2025, 9, 24, 15, 0, 0, 0, time.UTC) // 2025-09-25T00:00 KST
	got := r.NormalizeEndOfDay(utcExpr)
	require.True(t, got.Equal(time.Date(2025, 9, 26, 0, 0, 0, 0, loc)))
}
