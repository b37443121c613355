// Package wsfeed streams live auction documents over a WebSocket connection.
// The server pushes one frame per document change; the source redials on any
// read or dial failure until its context is cancelled.
package wsfeed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Trade-Ever/tradeever-go/go/internal/livefeed"
	"github.com/Trade-Ever/tradeever-go/go/internal/models"
)

// Config holds connection settings for the WebSocket feed.
type Config struct {
	URL              string
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	RedialWait       time.Duration
}

// DefaultConfig returns the settings used against the production feed.
func DefaultConfig(url string) Config {
	return Config{
		URL:              url,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
		RedialWait:       2 * time.Second,
	}
}

// frame is the wire envelope for one feed message.
type frame struct {
	Type string          `json:"type"` // "record" or "absent"
	Data json.RawMessage `json:"data,omitempty"`
}

// subscribeRequest is the first frame written on every (re)connected socket.
type subscribeRequest struct {
	AuctionID string `json:"auctionId,omitempty"`
	VehicleID string `json:"vehicleId,omitempty"`
}

// Source implements livefeed.Source over a WebSocket endpoint.
type Source struct {
	cfg    Config
	dialer *websocket.Dialer
}

// New creates a WebSocket feed source.
func New(cfg Config) *Source {
	return &Source{
		cfg: cfg,
		dialer: &websocket.Dialer{
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
	}
}

// Watch opens a stream of documents for key. The channel closes when ctx is
// cancelled; transport errors redial rather than surface.
func (s *Source) Watch(ctx context.Context, key livefeed.FeedKey) (<-chan *models.LiveAuctionUpdate, error) {
	out := make(chan *models.LiveAuctionUpdate, 1)
	go s.run(ctx, key, out)
	return out, nil
}

func (s *Source) run(ctx context.Context, key livefeed.FeedKey, out chan<- *models.LiveAuctionUpdate) {
	defer close(out)

	for {
		if err := s.readSession(ctx, key, out); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn().
				Err(err).
				Str("key", key.String()).
				Dur("redial_wait", s.cfg.RedialWait).
				Msg("live feed connection lost, redialing")
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.cfg.RedialWait):
		}
	}
}

// readSession dials, subscribes, and forwards frames until the connection or
// the context dies.
func (s *Source) readSession(ctx context.Context, key livefeed.FeedKey, out chan<- *models.LiveAuctionUpdate) error {
	conn, _, err := s.dialer.DialContext(ctx, s.cfg.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Unblock ReadMessage when the subscription is torn down.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	req := subscribeRequest{AuctionID: key.AuctionID, VehicleID: key.VehicleID}
	if err := conn.WriteJSON(req); err != nil {
		return err
	}

	log.Debug().Str("key", key.String()).Msg("live feed connected")

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var f frame
		if err := json.Unmarshal(payload, &f); err != nil {
			log.Warn().Err(err).Str("key", key.String()).Msg("malformed live feed frame, skipping")
			continue
		}

		switch f.Type {
		case "record":
			var update models.LiveAuctionUpdate
			if err := json.Unmarshal(f.Data, &update); err != nil {
				log.Warn().Err(err).Str("key", key.String()).Msg("malformed live auction document, skipping")
				continue
			}
			select {
			case out <- &update:
			case <-ctx.Done():
				return ctx.Err()
			}
		case "absent":
			// No live record for this key. Delivered as nil so consumers can
			// fall back to snapshot data.
			select {
			case out <- nil:
			case <-ctx.Done():
				return ctx.Err()
			}
		default:
			log.Debug().Str("type", f.Type).Msg("ignoring unknown live feed frame type")
		}
	}
}
