package config

import (
	"context"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.FeeRate != 0.001 {
		t.Errorf("expected fee rate 0.001, got %f", cfg.FeeRate)
	}
	if cfg.RateFallback != 0.01 {
		t.Errorf("expected rate fallback 0.01, got %f", cfg.RateFallback)
	}
	if cfg.BatchPageSize != 10 {
		t.Errorf("expected batch page size 10, got %d", cfg.BatchPageSize)
	}
}

func TestLoad_RejectsInvalidPageSize(t *testing.T) {
	t.Setenv("BATCH_PAGE_SIZE", "0")

	if _, err := Load(context.Background()); err == nil {
		t.Error("expected error for zero page size")
	}
}

func TestLoad_RejectsNegativeFeeRate(t *testing.T) {
	t.Setenv("FEE_RATE", "-0.5")

	if _, err := Load(context.Background()); err == nil {
		t.Error("expected error for negative fee rate")
	}
}
