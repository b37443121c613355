// Command tradeever-watch opens the reconciled live view of one auction and
// prints the countdown a screen would render. It wires the same components a
// screen uses: session store, refresh coordinator, marketplace client, live
// feed manager, viewer, countdown engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Trade-Ever/tradeever-go/go/clients/marketplace"
	"github.com/Trade-Ever/tradeever-go/go/internal/auction"
	"github.com/Trade-Ever/tradeever-go/go/internal/authx"
	"github.com/Trade-Ever/tradeever-go/go/internal/bidding"
	"github.com/Trade-Ever/tradeever-go/go/internal/countdown"
	"github.com/Trade-Ever/tradeever-go/go/internal/livefeed"
	"github.com/Trade-Ever/tradeever-go/go/internal/livefeed/natsfeed"
	"github.com/Trade-Ever/tradeever-go/go/internal/livefeed/wsfeed"
	"github.com/Trade-Ever/tradeever-go/go/internal/models"
	"github.com/Trade-Ever/tradeever-go/go/internal/timex"
)

func main() {
	configPath := flag.String("config", "", "path to yaml config file")
	vehicleID := flag.String("vehicle", "", "vehicle id to watch")
	bidPrice := flag.Int64("bid", 0, "optional: submit this bid once the auction is active")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	if level, err := zerolog.ParseLevel(getEnv("TRADEEVER_LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	if *vehicleID == "" {
		fmt.Fprintln(os.Stderr, "usage: tradeever-watch -vehicle <id> [-bid <price>] [-config file.yaml]")
		os.Exit(2)
	}

	config, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config, *vehicleID, *bidPrice); err != nil {
		log.Fatal().Err(err).Msg("watch failed")
	}
}

func run(ctx context.Context, config *Config, vehicleID string, bidPrice int64) error {
	loc, err := config.location()
	if err != nil {
		return err
	}

	store := authx.NewSessionStore()
	store.Replace(models.AuthSession{
		AccessToken:  os.Getenv("TRADEEVER_ACCESS_TOKEN"),
		RefreshToken: os.Getenv("TRADEEVER_REFRESH_TOKEN"),
	})

	client := marketplace.NewClient(config.API.BaseURL, store)
	refresher := authx.NewRefreshCoordinator(store, client, func() {
		log.Warn().Msg("session expired, signed out")
	})
	bids := bidding.NewCoordinator(client, refresher)

	source, cleanup, err := buildSource(config)
	if err != nil {
		return err
	}
	defer cleanup()

	feed := livefeed.NewManager(source)
	resolver := timex.NewResolver(loc)

	viewer := auction.NewViewer(resolver, feed, client, vehicleID, livefeed.FeedKey{VehicleID: vehicleID})
	defer viewer.Close()

	bidOnce := false
	engine := countdown.NewEngine(clockwork.NewRealClock(), func() auction.DisplayPlan {
		_, plan := viewer.View()
		return plan
	}, func(tick countdown.Tick) {
		printTick(tick)
		if bidPrice > 0 && !bidOnce && viewer.BidAllowed() {
			view, _ := viewer.View()
			if view.AuctionID == "" {
				return
			}
			bidOnce = true
			result := bids.Submit(ctx, models.BidRequest{AuctionID: view.AuctionID, BidPrice: bidPrice})
			log.Info().
				Str("outcome", string(result.Outcome)).
				Str("message", result.Message).
				Msg("bid submitted")
		}
	})

	if err := viewer.Start(ctx); err != nil {
		return err
	}

	engine.Run(ctx)
	return nil
}

func buildSource(config *Config) (livefeed.Source, func(), error) {
	switch config.Feed.Kind {
	case "websocket":
		return wsfeed.New(wsfeed.DefaultConfig(config.Feed.WSURL)), func() {}, nil
	case "nats":
		cfg := natsfeed.DefaultConfig()
		if config.Feed.NATSURL != "" {
			cfg.URL = config.Feed.NATSURL
		}
		if config.Feed.StreamName != "" {
			cfg.StreamName = config.Feed.StreamName
		}
		source, err := natsfeed.New(cfg)
		if err != nil {
			return nil, nil, err
		}
		return source, source.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown feed kind %q", config.Feed.Kind)
	}
}

func printTick(tick countdown.Tick) {
	if tick.Plan.Mode == auction.DisplayCountdown {
		fmt.Printf("[%s] %s remaining\n", tick.Plan.State, tick.Remaining.Truncate(time.Second))
		return
	}
	fmt.Printf("[%s]\n", tick.Plan.State)
}
