// Package livefeed manages push subscriptions to live auction documents.
// The underlying transport owns reconnection; this package owns handle
// bookkeeping and delivering the latest value to the one current listener
// per key. Stale values are replaced, never queued: consumers only ever need
// the most recent record.
package livefeed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Trade-Ever/tradeever-go/go/internal/models"
)

// FeedKey addresses a live auction document by auction id or by vehicle id.
// Exactly one of the two must be set.
type FeedKey struct {
	AuctionID string
	VehicleID string
}

func (k FeedKey) valid() bool {
	return (k.AuctionID != "") != (k.VehicleID != "")
}

// String returns a stable map key for the feed key.
func (k FeedKey) String() string {
	if k.AuctionID != "" {
		return "auction:" + k.AuctionID
	}
	return "vehicle:" + k.VehicleID
}

// ErrInvalidKey is returned when a key sets neither or both ids.
var ErrInvalidKey = errors.New("livefeed: key must set exactly one of auction id or vehicle id")

// Source is the transport that streams live auction documents. The returned
// channel yields the latest known record for the key, nil meaning no record
// exists (which is not an error), and closes once ctx is done. Reconnection
// is the source's responsibility.
type Source interface {
	Watch(ctx context.Context, key FeedKey) (<-chan *models.LiveAuctionUpdate, error)
}

// Manager tracks at most one subscription per key and hands out handles whose
// teardown is idempotent. Constructed once at app start and shared by all
// screens.
type Manager struct {
	source Source

	mu   sync.Mutex
	subs map[string]*Subscription
}

// NewManager creates a subscription manager over the given source.
func NewManager(source Source) *Manager {
	return &Manager{
		source: source,
		subs:   make(map[string]*Subscription),
	}
}

// Subscribe opens a live subscription for key. If a subscription for the same
// key already exists it is torn down first: the feed has exactly one current
// listener per key.
func (m *Manager) Subscribe(ctx context.Context, key FeedKey) (*Subscription, error) {
	if !key.valid() {
		return nil, ErrInvalidKey
	}

	subCtx, cancel := context.WithCancel(ctx)
	in, err := m.source.Watch(subCtx, key)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("watch %s: %w", key, err)
	}

	sub := &Subscription{
		id:      uuid.New().String(),
		key:     key,
		updates: make(chan *models.LiveAuctionUpdate, 1),
		cancel:  cancel,
		manager: m,
	}

	m.mu.Lock()
	prev := m.subs[key.String()]
	m.subs[key.String()] = sub
	m.mu.Unlock()

	if prev != nil {
		log.Warn().Str("key", key.String()).Msg("replacing existing live subscription for key")
		prev.Close()
	}

	go sub.pump(in)

	log.Debug().
		Str("subscription_id", sub.id).
		Str("key", key.String()).
		Msg("live subscription opened")
	return sub, nil
}

// drop removes sub from the registry if it is still the current holder of its
// key. A replacement subscription must not be evicted by the old handle.
func (m *Manager) drop(sub *Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subs[sub.key.String()] == sub {
		delete(m.subs, sub.key.String())
	}
}

// ActiveSubscriptions returns the number of open subscriptions.
func (m *Manager) ActiveSubscriptions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

// Subscription is one live-feed handle. Updates yields the latest record for
// the key, nil meaning no record exists. Close tears the handle down and is
// safe to call any number of times; screens call it unconditionally on
// teardown.
type Subscription struct {
	id      string
	key     FeedKey
	updates chan *models.LiveAuctionUpdate
	cancel  context.CancelFunc
	manager *Manager

	closeOnce sync.Once
}

// ID returns the handle's unique id, used for diagnostics.
func (s *Subscription) ID() string { return s.id }

// Key returns the key this subscription watches.
func (s *Subscription) Key() FeedKey { return s.key }

// Updates is the delivery channel. It carries the latest value only and is
// closed after Close (or context cancellation) once the source drains.
func (s *Subscription) Updates() <-chan *models.LiveAuctionUpdate { return s.updates }

// Close tears down the subscription. Idempotent.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.manager.drop(s)
		log.Debug().
			Str("subscription_id", s.id).
			Str("key", s.key.String()).
			Msg("live subscription closed")
	})
}

// pump forwards source deliveries into the handle channel with latest-wins
// conflation: a value the listener has not consumed yet is replaced, not
// queued. pump is the only sender on s.updates and closes it when the source
// channel closes.
func (s *Subscription) pump(in <-chan *models.LiveAuctionUpdate) {
	defer close(s.updates)
	for u := range in {
		select {
		case s.updates <- u:
		default:
			// Listener has not taken the previous value; replace it.
			select {
			case <-s.updates:
			default:
			}
			select {
			case s.updates <- u:
			default:
			}
		}
	}
}
