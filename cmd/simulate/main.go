package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lehajam/cpamm/internal/config"
	"github.com/lehajam/cpamm/internal/domain"
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
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	logger := logging.NewLogger(cfg.Logging.Level)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store *storage.SimStore
	if cfg.Store.Path != "" {
		store, err = storage.NewSimStore(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	events, err := loadEvents(ctx, cfg, store)
	if err != nil {
		return err
	}
	logger.Info("feed loaded", "source", cfg.Feed.Source, "events", len(events))

	mkt, err := newPair(cfg)
	if err != nil {
		return err
	}

	strategy, err := sim.GetStrategy(cfg.Sim.Strategy, cfg.Sim.ArbEnabled)
	if err != nil {
		return err
	}

	start := time.Now()
	results, err := sim.NewSimulator(mkt, strategy, cfg.Sim.Precision).Run(ctx, events)
	if err != nil {
		return err
	}
	logger.Info("simulation complete",
		"events", len(events),
		"executions", len(results.Records),
		"elapsed", time.Since(start))

	printSummary(results)

	if store != nil && cfg.Sim.RunName != "" {
		if err := store.SaveRecords(ctx, cfg.Sim.RunName, results.Records); err != nil {
			return fmt.Errorf("failed to persist run %s: %w", cfg.Sim.RunName, err)
		}
		logger.Info("run persisted", "run", cfg.Sim.RunName)
	}
	return nil
}

func loadEvents(ctx context.Context, cfg *config.Config, store *storage.SimStore) ([]sim.TradeEvent, error) {
	switch cfg.Feed.Source {
	case "csv":
		return feed.LoadCSVFile(cfg.Feed.Path)
	case "sqlite":
		if store == nil {
			return nil, fmt.Errorf("sqlite feed requires a store path")
		}
		return store.LoadEvents(ctx, cfg.Feed.Path)
	default:
		return nil, fmt.Errorf("feed source %q cannot drive a batch simulation", cfg.Feed.Source)
	}
}

func newPair(cfg *config.Config) (*domain.MarketPair, error) {
	name1, name2, err := domain.SplitTicker(cfg.Market.Ticker)
	if err != nil {
		return nil, err
	}
	pool1, err := domain.NewPool(name1, cfg.Market.Reserves[0])
	if err != nil {
		return nil, err
	}
	pool2, err := domain.NewPool(name2, cfg.Market.Reserves[1])
	if err != nil {
		return nil, err
	}
	return domain.NewMarketPair(pool1, pool2, cfg.Market.SwapFee)
}

func printSummary(r *sim.Results) {
	s := r.Summary
	fmt.Printf("buy:  count=%d volume_in=%.6f volume_out=%.6f avg_price=%.6f\n",
		s.Buy.Count, s.Buy.VolumeIn, s.Buy.VolumeOut, s.Buy.AvgPrice)
	fmt.Printf("sell: count=%d volume_in=%.6f volume_out=%.6f avg_price=%.6f\n",
		s.Sell.Count, s.Sell.VolumeIn, s.Sell.VolumeOut, s.Sell.AvgPrice)
	fmt.Printf("totals: volume1=%.6f volume2=%.6f fees1=%.6f fees2=%.6f arb_profit=%.6f\n",
		s.TotalVolume1, s.TotalVolume2, s.TotalFees1, s.TotalFees2, s.TotalArbProfit)
}
