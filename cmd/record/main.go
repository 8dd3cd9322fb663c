// Command record captures a live Binance trade stream and stores it as a
// replayable feed for the simulator.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/lehajam/cpamm/internal/config"
	"github.com/lehajam/cpamm/internal/feed"
	"github.com/lehajam/cpamm/internal/logging"
	"github.com/lehajam/cpamm/internal/sim"
	"github.com/lehajam/cpamm/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to config file")
	feedName := flag.String("feed", "", "name to store the feed under (default: lowercased symbol)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if cfg.Feed.Source != "binance" {
		return fmt.Errorf("recording requires feed source binance, got %q", cfg.Feed.Source)
	}
	if cfg.Store.Path == "" {
		return fmt.Errorf("recording requires a store path")
	}

	logger := logging.NewLogger(cfg.Logging.Level)
	slog.SetDefault(logger)

	name := *feedName
	if name == "" {
		name = strings.ToLower(cfg.Feed.Symbol)
	}

	store, err := storage.NewSimStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := make(chan sim.TradeEvent, 1024)
	stream := feed.NewBinanceTradeStream(cfg.Feed.Symbol, out, logger)
	stream.Start(ctx)
	defer stream.Stop()

	logger.Info("recording", "symbol", cfg.Feed.Symbol, "feed", name)

	var events []sim.TradeEvent
	for {
		select {
		case <-ctx.Done():
			logger.Info("recording stopped", "events", len(events))
			if len(events) == 0 {
				return nil
			}
			// ctx is done; persist with a fresh context.
			if err := store.SaveEvents(context.Background(), name, events); err != nil {
				return fmt.Errorf("failed to persist feed %s: %w", name, err)
			}
			logger.Info("feed persisted", "feed", name, "events", len(events))
			return nil
		case ev := <-out:
			events = append(events, ev)
			if len(events)%1000 == 0 {
				logger.Debug("recording progress", "events", len(events))
			}
		}
	}
}
