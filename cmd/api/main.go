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

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"

	"github.com/lehajam/cpamm/internal/config"
	"github.com/lehajam/cpamm/internal/domain"
	"github.com/lehajam/cpamm/internal/handler"
	"github.com/lehajam/cpamm/internal/logging"
	"github.com/lehajam/cpamm/internal/onchain"
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

	source, closeSource, err := newPairSource(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSource()

	app := fiber.New()
	handler.NewPricingHandler(logger, source).Register(app)

	addr := cfg.API.Addr
	if addr == "" {
		addr = ":8080"
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(addr)
	}()
	logger.Info("pricing api listening", "addr", addr, "ticker", cfg.Market.Ticker)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			_ = app.Shutdown()
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = app.Shutdown()
	<-shutdownCtx.Done()
	return nil
}

// newPairSource returns the pricing pair factory. With an on-chain pair
// configured, every request reprices against the latest reserves;
// otherwise the configured static reserves are used.
func newPairSource(ctx context.Context, cfg *config.Config, logger *slog.Logger) (handler.PairSource, func(), error) {
	if cfg.Onchain.RPCURL != "" && cfg.Onchain.PairAddress != "" {
		client, err := onchain.Dial(ctx, cfg.Onchain.RPCURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to Ethereum node: %w", err)
		}
		reader := onchain.NewPairReader(client, logger)
		addr := common.HexToAddress(cfg.Onchain.PairAddress)

		source := func() (*domain.MarketPair, error) {
			return reader.ReadPair(ctx, addr, cfg.Market.Ticker,
				cfg.Onchain.Decimals1, cfg.Onchain.Decimals2, cfg.Market.SwapFee)
		}
		return source, client.Close, nil
	}

	source := func() (*domain.MarketPair, error) {
		return staticPair(cfg)
	}
	return source, func() {}, nil
}

func staticPair(cfg *config.Config) (*domain.MarketPair, error) {
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
