// Package natsfeed streams live auction documents from a NATS JetStream
// stream. Each auction is one subject carrying its latest document; an empty
// payload is the tombstone for "no record".
package natsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/Trade-Ever/tradeever-go/go/internal/livefeed"
	"github.com/Trade-Ever/tradeever-go/go/internal/models"
)

// Config holds connection settings for the JetStream feed.
type Config struct {
	URL           string
	StreamName    string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultConfig returns the settings used against the production feed.
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		StreamName:    "AUCTIONS_LIVE",
		MaxReconnects: -1, // infinite, the feed must outlive broker restarts
		ReconnectWait: 2 * time.Second,
	}
}

// Source implements livefeed.Source over JetStream.
type Source struct {
	cfg Config
	nc  *nats.Conn
	js  jetstream.JetStream
}

// New connects to NATS and prepares the JetStream context. Reconnection is
// delegated to the NATS client options.
func New(cfg Config) (*Source, error) {
	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	return &Source{cfg: cfg, nc: nc, js: js}, nil
}

// Close releases the NATS connection.
func (s *Source) Close() {
	if s.nc != nil {
		s.nc.Close()
	}
}

// subjectFor maps a feed key onto the stream's subject space.
func subjectFor(key livefeed.FeedKey) string {
	if key.AuctionID != "" {
		return "auctions.live." + key.AuctionID
	}
	return "auctions.live.byvehicle." + key.VehicleID
}

// Watch consumes the latest document per subject for key. The channel starts
// with a nil delivery ("no record yet") which the first retained document
// supersedes, so consumers always observe a defined state.
func (s *Source) Watch(ctx context.Context, key livefeed.FeedKey) (<-chan *models.LiveAuctionUpdate, error) {
	stream, err := s.js.Stream(ctx, s.cfg.StreamName)
	if err != nil {
		return nil, fmt.Errorf("get stream %s: %w", s.cfg.StreamName, err)
	}

	consumer, err := stream.OrderedConsumer(ctx, jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{subjectFor(key)},
		DeliverPolicy:  jetstream.DeliverLastPerSubjectPolicy,
		ReplayPolicy:   jetstream.ReplayInstantPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("create consumer for %s: %w", key, err)
	}

	out := make(chan *models.LiveAuctionUpdate, 1)
	out <- nil

	// Guards out against a delivery callback racing the close below.
	var mu sync.Mutex
	closed := false
	send := func(u *models.LiveAuctionUpdate) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		// Latest-wins: replace an unconsumed value instead of blocking the
		// JetStream delivery goroutine.
		select {
		case out <- u:
		default:
			select {
			case <-out:
			default:
			}
			select {
			case out <- u:
			default:
			}
		}
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		if update, ok := decode(key, msg.Data()); ok {
			send(update)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("start consumer for %s: %w", key, err)
	}

	go func() {
		<-ctx.Done()
		cc.Stop()
		mu.Lock()
		closed = true
		close(out)
		mu.Unlock()
	}()

	return out, nil
}

// decode parses one retained document. Empty payload is the tombstone for a
// deleted record; malformed payloads are skipped, not fatal.
func decode(key livefeed.FeedKey, data []byte) (*models.LiveAuctionUpdate, bool) {
	if len(data) == 0 {
		return nil, true
	}
	var update models.LiveAuctionUpdate
	if err := json.Unmarshal(data, &update); err != nil {
		log.Warn().Err(err).Str("key", key.String()).Msg("malformed live auction document, skipping")
		return nil, false
	}
	return &update, true
}
