// Package timex parses the timestamp formats the marketplace backend emits.
// Upstream systems disagree on formatting: some send RFC3339 with or without
// fractional seconds, some send zone-naive local timestamps, and some send a
// bare date meaning "through the end of that day".
package timex

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Layouts attempted by Parse, in fixed order. First success wins.
var layouts = []struct {
	layout string
	naive  bool // parsed in the resolver's location, no zone on the wire
}{
	{time.RFC3339Nano, false},
	{time.RFC3339, false},
	{"2006-01-02T15:04:05", true},
	{"2006-01-02T15:04", true},
	{"2006-01-02", true},
}

// Resolver parses heterogeneous timestamp strings. The location anchors the
// zone-naive formats so behavior is deterministic under test.
type Resolver struct {
	loc *time.Location
}

// NewResolver returns a Resolver anchored to loc. A nil loc means local time.
func NewResolver(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.Local
	}
	return &Resolver{loc: loc}
}

// Parse attempts the supported layouts in order and returns the first match.
// ok is false when no layout matches; callers must treat that as "unknown",
// never as now or the epoch.
func (r *Resolver) Parse(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range layouts {
		var (
			t   time.Time
			err error
		)
		if l.naive {
			t, err = time.ParseInLocation(l.layout, s, r.loc)
		} else {
			t, err = time.Parse(l.layout, s)
		}
		if err == nil {
			return t, true
		}
	}
	log.Debug().Str("value", s).Msg("timestamp matched no supported layout")
	return time.Time{}, false
}

// NormalizeEndOfDay maps an exact-midnight instant to the start of the next
// calendar day in the resolver's location. Date-only end timestamps mean
// "through the end of that day", not "at the midnight that starts it".
// Any instant with a non-zero hour, minute, or second passes through
// unchanged. Applied once per display-plan build, never re-applied to its
// own output.
func (r *Resolver) NormalizeEndOfDay(t time.Time) time.Time {
	local := t.In(r.loc)
	if local.Hour() != 0 || local.Minute() != 0 || local.Second() != 0 {
		return t
	}
	y, m, d := local.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, r.loc)
}
