// Package config loads and validates the application configuration from
// a YAML file, with environment variable overrides for deploy-specific
// values.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Market struct {
		Ticker   string    `yaml:"ticker"`
		Reserves []float64 `yaml:"reserves"`
		SwapFee  float64   `yaml:"swap_fee"`
	} `yaml:"market"`

	Sim struct {
		Strategy   string  `yaml:"strategy"`
		ArbEnabled bool    `yaml:"arb_enabled"`
		Precision  float64 `yaml:"precision"`
		RunName    string  `yaml:"run_name"`
	} `yaml:"sim"`

	Feed struct {
		Source string `yaml:"source"` // csv | sqlite | binance
		Path   string `yaml:"path"`   // csv file or stored feed name
		Symbol string `yaml:"symbol"` // exchange symbol for live feeds
	} `yaml:"feed"`

	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`

	API struct {
		Addr string `yaml:"addr"`
	} `yaml:"api"`

	Onchain struct {
		RPCURL      string `yaml:"rpc_url"`
		PairAddress string `yaml:"pair_address"`
		Decimals1   int32  `yaml:"decimals_1"`
		Decimals2   int32  `yaml:"decimals_2"`
	} `yaml:"onchain"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads the YAML file at path, applies environment overrides
// and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if strings.Count(c.Market.Ticker, "/") != 1 {
		return fmt.Errorf("invalid market ticker: %q", c.Market.Ticker)
	}
	if len(c.Market.Reserves) != 2 {
		return fmt.Errorf("market reserves must list exactly two balances, got %d", len(c.Market.Reserves))
	}
	for _, r := range c.Market.Reserves {
		if r <= 0 {
			return fmt.Errorf("market reserves must be positive, got %v", r)
		}
	}
	if c.Market.SwapFee < 0 {
		return fmt.Errorf("swap fee must be non-negative, got %v", c.Market.SwapFee)
	}

	switch c.Feed.Source {
	case "csv", "sqlite":
		if c.Feed.Path == "" {
			return fmt.Errorf("feed source %q requires a path", c.Feed.Source)
		}
	case "binance":
		if c.Feed.Symbol == "" {
			return fmt.Errorf("feed source binance requires a symbol")
		}
	case "":
		return fmt.Errorf("feed source is required")
	default:
		return fmt.Errorf("unknown feed source: %q", c.Feed.Source)
	}

	if c.Feed.Source == "sqlite" && c.Store.Path == "" {
		return fmt.Errorf("sqlite feed requires a store path")
	}
	if c.Sim.Precision < 0 {
		return fmt.Errorf("precision must be non-negative, got %v", c.Sim.Precision)
	}
	return nil
}

// overrideWithEnv applies environment variables on top of file values.
// Deploy-specific endpoints never belong in the config file.
func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("CPAMM_ETH_RPC_URL"); v != "" {
		cfg.Onchain.RPCURL = v
	}
	if v := os.Getenv("CPAMM_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("CPAMM_API_ADDR"); v != "" {
		cfg.API.Addr = v
	}
	if v := os.Getenv("CPAMM_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
