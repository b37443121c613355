package auction

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Trade-Ever/tradeever-go/go/internal/livefeed"
	"github.com/Trade-Ever/tradeever-go/go/internal/models"
	"github.com/Trade-Ever/tradeever-go/go/internal/timex"
)

// SnapshotFetcher pulls the vehicle detail snapshot. Implemented by the
// marketplace client.
type SnapshotFetcher interface {
	GetVehicleDetail(ctx context.Context, vehicleID string) (*models.VehicleDetailSnapshot, error)
}

// Viewer binds one screen's view of an auction: it owns a live-feed
// subscription and a snapshot slot, re-runs reconciliation on every inbound
// event from either source, and publishes the latest view and display plan.
// Close tears down the subscription together with the viewer, so a screen
// cannot leak its feed handle.
type Viewer struct {
	res       *timex.Resolver
	feed      *livefeed.Manager
	snapshots SnapshotFetcher
	vehicleID string
	key       livefeed.FeedKey

	// onChange, when set before Start, observes every recomputed view. It is
	// called from the feed delivery goroutine and must not block.
	onChange func(models.ReconciledAuctionView, DisplayPlan)

	mu           sync.Mutex
	snapshot     *models.VehicleDetailSnapshot
	live         *models.LiveAuctionUpdate
	view         models.ReconciledAuctionView
	plan         DisplayPlan
	statusSeen   bool
	terminalSeen bool

	sub       *livefeed.Subscription
	closeOnce sync.Once
}

// NewViewer creates a viewer for one vehicle. key selects the live feed
// document (by auction id when known, otherwise by vehicle id).
func NewViewer(res *timex.Resolver, feed *livefeed.Manager, snapshots SnapshotFetcher, vehicleID string, key livefeed.FeedKey) *Viewer {
	return &Viewer{
		res:       res,
		feed:      feed,
		snapshots: snapshots,
		vehicleID: vehicleID,
		key:       key,
		plan:      DisplayPlan{State: StateUnknown, Mode: DisplayLabel},
	}
}

// OnChange registers the view listener. Must be called before Start.
func (v *Viewer) OnChange(fn func(models.ReconciledAuctionView, DisplayPlan)) {
	v.onChange = fn
}

// Start opens the live subscription and fetches the initial snapshot. The
// snapshot fetch failing is not fatal: the live feed alone can still drive
// the view, and the screen may call RefreshSnapshot again.
func (v *Viewer) Start(ctx context.Context) error {
	sub, err := v.feed.Subscribe(ctx, v.key)
	if err != nil {
		return fmt.Errorf("subscribe live feed: %w", err)
	}
	v.mu.Lock()
	v.sub = sub
	v.mu.Unlock()

	go v.consume(sub)

	if err := v.RefreshSnapshot(ctx); err != nil {
		log.Warn().Err(err).Str("vehicle_id", v.vehicleID).Msg("initial snapshot fetch failed")
	}
	return nil
}

// RefreshSnapshot refetches the vehicle detail and replaces the stored
// snapshot wholesale.
func (v *Viewer) RefreshSnapshot(ctx context.Context) error {
	snapshot, err := v.snapshots.GetVehicleDetail(ctx, v.vehicleID)
	if err != nil {
		return fmt.Errorf("fetch vehicle detail: %w", err)
	}

	v.mu.Lock()
	v.snapshot = snapshot
	view, plan := v.recomputeLocked()
	v.mu.Unlock()

	v.notify(view, plan)
	return nil
}

// consume drains the subscription until it closes. A nil update is a valid
// delivery meaning no live record exists for the key.
func (v *Viewer) consume(sub *livefeed.Subscription) {
	for update := range sub.Updates() {
		v.mu.Lock()
		v.live = update
		view, plan := v.recomputeLocked()
		v.mu.Unlock()

		v.notify(view, plan)
	}
}

// recomputeLocked merges the current sources and derives the display plan.
// Caller holds v.mu.
func (v *Viewer) recomputeLocked() (models.ReconciledAuctionView, DisplayPlan) {
	view := Reconcile(v.snapshot, v.live)
	state := Classify(view.Status)
	if view.Status != nil {
		v.statusSeen = true
	}
	if state.Terminal() {
		v.terminalSeen = true
	}
	v.view = view
	v.plan = BuildDisplayPlan(v.res, state, view.StartAt, view.EndAt)
	return v.view, v.plan
}

func (v *Viewer) notify(view models.ReconciledAuctionView, plan DisplayPlan) {
	if v.onChange != nil {
		v.onChange(view, plan)
	}
}

// View returns the latest reconciled view and display plan.
func (v *Viewer) View() (models.ReconciledAuctionView, DisplayPlan) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.view, v.plan
}

// BidAllowed reports whether the screen may offer bidding right now. Active
// is the only biddable state; an Unknown state counts as biddable only before
// any status string has ever been observed, the first-render window before
// either source has answered. Once a terminal state has been seen the grace
// never applies again.
func (v *Viewer) BidAllowed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.plan.State.Biddable() {
		return true
	}
	return v.plan.State == StateUnknown && !v.statusSeen && !v.terminalSeen
}

// Close tears down the viewer and its feed subscription. Idempotent; screens
// call it unconditionally on teardown.
func (v *Viewer) Close() {
	v.closeOnce.Do(func() {
		v.mu.Lock()
		sub := v.sub
		v.mu.Unlock()
		if sub != nil {
			sub.Close()
		}
	})
}
