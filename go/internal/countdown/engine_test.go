package countdown

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/Trade-Ever/tradeever-go/go/internal/auction"
)

// planHolder is a thread-safe stand-in for the viewer's latest plan.
type planHolder struct {
	mu   sync.Mutex
	plan auction.DisplayPlan
}

func (h *planHolder) set(p auction.DisplayPlan) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.plan = p
}

func (h *planHolder) get() auction.DisplayPlan {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.plan
}

func startEngine(t *testing.T, clock clockwork.Clock, holder *planHolder) (*Engine, <-chan Tick) {
	t.Helper()
	ticks := make(chan Tick, 64)
	engine := NewEngine(clock, holder.get, func(tick Tick) { ticks <- tick })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go engine.Run(ctx)
	return engine, ticks
}

func recvTick(t *testing.T, ticks <-chan Tick) Tick {
	t.Helper()
	select {
	case tick := <-ticks:
		return tick
	case <-time.After(time.Second):
		t.Fatal("no tick received")
		return Tick{}
	}
}

func TestEngineCountsDownEachSecond(t *testing.T) {
	fc := clockwork.NewFakeClock()
	holder := &planHolder{}
	holder.set(auction.DisplayPlan{
		State:  auction.StateActive,
		Mode:   auction.DisplayCountdown,
		Target: fc.Now().Add(10 * time.Second),
	})

	_, ticks := startEngine(t, fc, holder)

	first := recvTick(t, ticks)
	require.Equal(t, 10*time.Second, first.Remaining, "first tick fires immediately")

	fc.BlockUntil(1)
	fc.Advance(time.Second)
	second := recvTick(t, ticks)
	require.Equal(t, 9*time.Second, second.Remaining)
}

func TestEngineClampsElapsedTargetsAtZero(t *testing.T) {
	fc := clockwork.NewFakeClock()
	holder := &planHolder{}
	holder.set(auction.DisplayPlan{
		State:  auction.StateActive,
		Mode:   auction.DisplayCountdown,
		Target: fc.Now().Add(-time.Minute),
	})

	_, ticks := startEngine(t, fc, holder)

	tick := recvTick(t, ticks)
	require.Equal(t, time.Duration(0), tick.Remaining, "an elapsed target must never render negative")
}

func TestEngineLabelModeCarriesNoCountdown(t *testing.T) {
	fc := clockwork.NewFakeClock()
	holder := &planHolder{}
	holder.set(auction.DisplayPlan{State: auction.StateEnded, Mode: auction.DisplayLabel})

	_, ticks := startEngine(t, fc, holder)

	tick := recvTick(t, ticks)
	require.Equal(t, auction.DisplayLabel, tick.Plan.Mode)
	require.Equal(t, time.Duration(0), tick.Remaining)
}

func TestResampleResamplesWallClockAfterForeground(t *testing.T) {
	fc := clockwork.NewFakeClock()
	holder := &planHolder{}
	holder.set(auction.DisplayPlan{
		State:  auction.StateUpcoming,
		Mode:   auction.DisplayCountdown,
		Target: fc.Now().Add(time.Hour),
	})

	engine, ticks := startEngine(t, fc, holder)
	recvTick(t, ticks) // initial

	// Returning from background: wall-clock time jumped while no ticker fire
	// was processed. Resample must emit immediately with the current time,
	// not wait for the next cadence tick.
	fc.BlockUntil(1)
	fc.Advance(10 * time.Minute)
	recvTick(t, ticks) // cadence tick released by Advance

	engine.Resample()
	tick := recvTick(t, ticks)
	require.Equal(t, 50*time.Minute, tick.Remaining)
}

func TestResampleWakesWithoutClockMovement(t *testing.T) {
	fc := clockwork.NewFakeClock()
	holder := &planHolder{}
	holder.set(auction.DisplayPlan{State: auction.StateUnknown, Mode: auction.DisplayLabel})

	engine, ticks := startEngine(t, fc, holder)
	recvTick(t, ticks) // initial

	engine.Resample()
	tick := recvTick(t, ticks)
	require.Equal(t, auction.StateUnknown, tick.Plan.State)
}
