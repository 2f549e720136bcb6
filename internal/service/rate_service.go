package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// RateProvider supplies a conversion multiplier between two currency codes.
// Implementations never return an error: settlement must not block on an
// unreachable rate source, so lookups degrade to a configured fallback.
type RateProvider interface {
	GetRate(ctx context.Context, originCurrency, destinationCurrency string) float64
}

// Cache stores previously fetched rates keyed by an ordered currency pair.
// Caching infrastructure is owned by the caller; a process-local map is used
// when nothing else is injected.
type Cache interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

type RateService struct {
	client   *http.Client
	baseURL  string
	apiKey   string
	fallback float64
	cache    Cache
	logger   *slog.Logger
}

const DefaultRateBaseURL = "https://api.polygon.io/v2/aggs/ticker"

func NewRateService(baseURL, apiKey string, fallback float64, timeout time.Duration, cache Cache, logger *slog.Logger) *RateService {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultRateBaseURL
	}
	if cache == nil {
		cache = newMapCache()
	}

	return &RateService{
		client:   &http.Client{Timeout: timeout},
		baseURL:  baseURL,
		apiKey:   apiKey,
		fallback: fallback,
		cache:    cache,
		logger:   logger,
	}
}

// GetRate returns 1.0 for equal currencies without any lookup. Failed lookups
// return the fallback value instead of an error; only successful fetches are
// cached.
func (s *RateService) GetRate(ctx context.Context, originCurrency, destinationCurrency string) float64 {
	if originCurrency == destinationCurrency {
		return 1.0
	}

	key := fmt.Sprintf("C:%s%s", originCurrency, destinationCurrency)
	if cached, ok := s.cache.Get(key); ok {
		if rate, err := strconv.ParseFloat(cached, 64); err == nil {
			return rate
		}
	}

	return s.fetchRate(ctx, key)
}

type prevCloseResponse struct {
	Results []struct {
		Close float64 `json:"c"`
	} `json:"results"`
}

func (s *RateService) fetchRate(ctx context.Context, key string) float64 {
	url := fmt.Sprintf("%s/%s/prev?adjusted=true&apiKey=%s", s.baseURL, key, s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return s.fallbackRate(ctx, key, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return s.fallbackRate(ctx, key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return s.fallbackRate(ctx, key, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var body prevCloseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return s.fallbackRate(ctx, key, err)
	}
	if len(body.Results) == 0 || body.Results[0].Close <= 0 {
		return s.fallbackRate(ctx, key, fmt.Errorf("no usable rate in response"))
	}

	rate := body.Results[0].Close
	s.cache.Set(key, strconv.FormatFloat(rate, 'f', -1, 64))

	return rate
}

func (s *RateService) fallbackRate(ctx context.Context, key string, cause error) float64 {
	s.logger.WarnContext(ctx, "rate lookup failed, using fallback",
		slog.String("pair", key),
		slog.Float64("fallback", s.fallback),
		slog.String("error", cause.Error()))
	return s.fallback
}
