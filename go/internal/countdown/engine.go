// Package countdown drives the one-second display timer for an auction
// screen. The engine only reads the latest display plan; it never triggers
// network calls, and the clock is injectable so ticking is testable.
package countdown

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Trade-Ever/tradeever-go/go/internal/auction"
)

// PlanProvider returns the most recent display plan. Called once per tick.
type PlanProvider func() auction.DisplayPlan

// Tick is one rendered countdown sample.
type Tick struct {
	Plan      auction.DisplayPlan
	Remaining time.Duration // zero in label mode and once the target has passed
}

// Engine samples the display plan once per interval and emits ticks. It holds
// no auction state of its own.
type Engine struct {
	clock    clockwork.Clock
	interval time.Duration
	provider PlanProvider
	onTick   func(Tick)
	wakeCh   chan struct{}
}

// NewEngine creates a countdown engine. clock is usually
// clockwork.NewRealClock(); tests pass a fake.
func NewEngine(clock clockwork.Clock, provider PlanProvider, onTick func(Tick)) *Engine {
	return &Engine{
		clock:    clock,
		interval: time.Second,
		provider: provider,
		onTick:   onTick,
		wakeCh:   make(chan struct{}, 1),
	}
}

// Resample forces an immediate tick outside the regular cadence. The app
// calls this on foreground transitions: a countdown that sat in the
// background must re-sample wall-clock time instead of silently drifting.
func (e *Engine) Resample() {
	select {
	case e.wakeCh <- struct{}{}:
	default:
	}
}

// Run emits ticks until ctx is cancelled. The first tick fires immediately so
// a freshly opened screen does not wait a full interval to render.
func (e *Engine) Run(ctx context.Context) {
	ticker := e.clock.NewTicker(e.interval)
	defer ticker.Stop()

	e.emit()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			e.emit()
		case <-e.wakeCh:
			e.emit()
		}
	}
}

func (e *Engine) emit() {
	plan := e.provider()

	var remaining time.Duration
	if plan.Mode == auction.DisplayCountdown {
		remaining = plan.Target.Sub(e.clock.Now())
		if remaining < 0 {
			remaining = 0
		}
	}
	e.onTick(Tick{Plan: plan, Remaining: remaining})
}
