package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config carries every tunable of the processor. The fee rate, batch page
// size and rate fallback are explicit configuration, not magic numbers.
type Config struct {
	Environment string `env:"ENVIRONMENT,default=development"`
	MetricsAddr string `env:"METRICS_ADDR,default=:9090"`

	// DatabaseURL selects the postgres repositories; when empty the process
	// runs on the in-memory store.
	DatabaseURL string `env:"DATABASE_URL"`

	// FeeRate is the fraction charged on cross-currency transfers.
	FeeRate float64 `env:"FEE_RATE,default=0.001"`

	// BatchPageSize bounds how many rows one batch pass selects.
	BatchPageSize int           `env:"BATCH_PAGE_SIZE,default=10"`
	BatchInterval time.Duration `env:"BATCH_INTERVAL,default=30s"`

	RateAPIURL   string        `env:"RATE_API_URL"`
	RateAPIKey   string        `env:"RATE_API_KEY"`
	RateTimeout  time.Duration `env:"RATE_TIMEOUT,default=5s"`
	RateFallback float64       `env:"RATE_FALLBACK,default=0.01"`

	// Currencies seeded at startup, comma separated.
	Currencies []string `env:"CURRENCIES,default=USD"`
}

func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.FeeRate < 0 {
		return nil, fmt.Errorf("fee rate must not be negative, got %f", cfg.FeeRate)
	}
	if cfg.RateFallback <= 0 {
		return nil, fmt.Errorf("rate fallback must be positive, got %f", cfg.RateFallback)
	}
	if cfg.BatchPageSize <= 0 {
		return nil, fmt.Errorf("batch page size must be positive, got %d", cfg.BatchPageSize)
	}

	return &cfg, nil
}
