// Package auction derives a finite auction lifecycle from the loosely-typed
// status strings the backend emits, merges the two auction data sources into
// one view, and decides what countdown (if any) a screen should display.
package auction

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Trade-Ever/tradeever-go/go/internal/models"
	"github.com/Trade-Ever/tradeever-go/go/internal/timex"
)

// State is the closed lifecycle of an auction.
type State string

const (
	StateUpcoming     State = "UPCOMING"
	StateActive       State = "ACTIVE"
	StateEnded        State = "ENDED"
	StatePendingClose State = "PENDING_CLOSE"
	StateCancelled    State = "CANCELLED"
	StateExpired      State = "EXPIRED"
	StateUnknown      State = "UNKNOWN"
)

// Terminal reports whether no further transition or countdown is expected.
// Unknown is never terminal.
func (s State) Terminal() bool {
	switch s {
	case StateEnded, StatePendingClose, StateCancelled, StateExpired:
		return true
	default:
		return false
	}
}

// Biddable reports whether bids may be submitted from this state.
// Active is the only biddable state.
func (s State) Biddable() bool { return s == StateActive }

// Classify maps a raw wire status onto the lifecycle. Anything outside the
// known vocabulary, including a missing status, classifies as Unknown; an
// unrecognized code is a diagnostics event, not a decoding failure.
func Classify(status *string) State {
	if status == nil {
		return StateUnknown
	}
	switch models.AuctionStatus(*status) {
	case models.AuctionStatusUpcoming:
		return StateUpcoming
	case models.AuctionStatusActive:
		return StateActive
	case models.AuctionStatusEnded:
		return StateEnded
	case models.AuctionStatusPendingClose:
		return StatePendingClose
	case models.AuctionStatusCancelled:
		return StateCancelled
	case models.AuctionStatusExpired:
		return StateExpired
	default:
		log.Debug().Str("status", *status).Msg("unrecognized auction status code")
		return StateUnknown
	}
}

// DisplayMode selects the presentation branch for a state.
type DisplayMode string

const (
	// DisplayCountdown counts down to Target.
	DisplayCountdown DisplayMode = "COUNTDOWN"
	// DisplayLabel shows a static label for State, no timer.
	DisplayLabel DisplayMode = "LABEL"
)

// DisplayPlan tells the presentation layer what to render for one
// reconciliation instant. Target is meaningful only for DisplayCountdown.
type DisplayPlan struct {
	State  State
	Mode   DisplayMode
	Target time.Time
}

// BuildDisplayPlan decides the countdown target for a state. Upcoming counts
// down to the start; Active counts down to the end, with exact-midnight ends
// normalized to the start of the next day. Terminal states, and non-terminal
// states whose timestamp fails to parse, degrade to a static label rather
// than a negative or garbage countdown.
func BuildDisplayPlan(res *timex.Resolver, state State, startAt, endAt string) DisplayPlan {
	switch state {
	case StateUpcoming:
		if t, ok := res.Parse(startAt); ok {
			return DisplayPlan{State: state, Mode: DisplayCountdown, Target: t}
		}
	case StateActive:
		if t, ok := res.Parse(endAt); ok {
			return DisplayPlan{State: state, Mode: DisplayCountdown, Target: res.NormalizeEndOfDay(t)}
		}
	}
	return DisplayPlan{State: state, Mode: DisplayLabel}
}
