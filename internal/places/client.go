// TablePick - Preference-Driven Restaurant Recommendations
// Copyright 2026 TablePick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablepick/tablepick

// Package places implements the live restaurant supplier on top of the
// Google Places web service. Requests are rate limited and wrapped in
// a circuit breaker so a degraded upstream cannot stall recommendation
// rounds; callers treat any error as zero additional candidates.
package places

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tablepick/tablepick/internal/metrics"
	"github.com/tablepick/tablepick/internal/recommend"
)

const breakerName = "places-api"

// Config holds settings for the places client.
type Config struct {
	// APIKey authenticates against the places service. Empty disables
	// live search entirely.
	APIKey string `json:"api_key" koanf:"api_key"`

	// BaseURL is the service endpoint. Overridable for tests.
	BaseURL string `json:"base_url" koanf:"base_url"`

	// Timeout bounds a single search request.
	Timeout time.Duration `json:"timeout" koanf:"timeout"`

	// RequestsPerSecond throttles outbound calls.
	RequestsPerSecond float64 `json:"requests_per_second" koanf:"requests_per_second"`

	// Burst is the rate limiter burst allowance.
	Burst int `json:"burst" koanf:"burst"`
}

// DefaultConfig returns production defaults. The 10 rps ceiling stays
// well under the service's published quota.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:           "https://maps.googleapis.com/maps/api/place",
		Timeout:           10 * time.Second,
		RequestsPerSecond: 10,
		Burst:             5,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests_per_second must be positive, got %f", c.RequestsPerSecond)
	}
	if c.Burst < 1 {
		return fmt.Errorf("burst must be at least 1, got %d", c.Burst)
	}
	return nil
}

// Client talks to the places service. It implements recommend.Supplier.
type Client struct {
	config  *Config
	logger  zerolog.Logger
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]recommend.Candidate]
}

// NewClient creates a places client.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClient(cfg *Config, logger zerolog.Logger) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid places config: %w", err)
	}

	log := logger.With().Str("component", "places").Logger()
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	breaker := gobreaker.NewCircuitBreaker[[]recommend.Candidate](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("places circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &Client{
		config:  cfg,
		logger:  log,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		breaker: breaker,
	}, nil
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}

// placesResponse is the service's search response envelope.
type placesResponse struct {
	Status  string        `json:"status"`
	Results []placeResult `json:"results"`
}

type placeResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Types            []string `json:"types"`
	FormattedAddress string   `json:"formatted_address"`
	Vicinity         string   `json:"vicinity"`
	Rating           *float64 `json:"rating"`
	PriceLevel       *int     `json:"price_level"`
	Geometry         struct {
		Location struct {
			Lat *float64 `json:"lat"`
			Lng *float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	OpeningHours struct {
		OpenNow *bool `json:"open_now"`
	} `json:"opening_hours"`
}

// SearchNear finds restaurants around a point. Cuisine is an optional
// keyword filter. The service caps the radius at 50 km.
func (c *Client) SearchNear(ctx context.Context, lat, lng, radiusKM float64, cuisine string, limit int) ([]recommend.Candidate, error) {
	if radiusKM > 50 {
		radiusKM = 50
	}
	params := url.Values{
		"location": {fmt.Sprintf("%f,%f", lat, lng)},
		"radius":   {strconv.Itoa(int(radiusKM * 1000))},
		"type":     {"restaurant"},
	}
	if cuisine != "" {
		params.Set("keyword", cuisine)
	}
	return c.search(ctx, "nearby", "/nearbysearch/json", params, limit)
}

// SearchByText finds restaurants matching a free-text query, optionally
// biased by a location hint such as "Austin, TX".
func (c *Client) SearchByText(ctx context.Context, query, locationHint string, limit int) ([]recommend.Candidate, error) {
	q := query
	if locationHint != "" {
		q += " " + locationHint
	}
	params := url.Values{
		"query": {q},
		"type":  {"restaurant"},
	}
	return c.search(ctx, "text", "/textsearch/json", params, limit)
}

func (c *Client) search(ctx context.Context, operation, path string, params url.Values, limit int) ([]recommend.Candidate, error) {
	if c.config.APIKey == "" {
		return nil, fmt.Errorf("%w: no API key configured", recommend.ErrExternalUnavailable)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	start := time.Now()
	candidates, err := c.breaker.Execute(func() ([]recommend.Candidate, error) {
		return c.doSearch(ctx, path, params, limit)
	})
	metrics.LiveSearchDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.LiveSearchRequests.WithLabelValues(operation, "success").Inc()
		return candidates, nil
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.LiveSearchRequests.WithLabelValues(operation, "rejected").Inc()
		return nil, fmt.Errorf("%w: %w", recommend.ErrExternalUnavailable, err)
	default:
		metrics.LiveSearchRequests.WithLabelValues(operation, "error").Inc()
		return nil, fmt.Errorf("%w: %w", recommend.ErrExternalUnavailable, err)
	}
}

func (c *Client) doSearch(ctx context.Context, path string, params url.Values, limit int) ([]recommend.Candidate, error) {
	params.Set("key", c.config.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places request: unexpected status %d", resp.StatusCode)
	}

	var body placesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if body.Status != "OK" && body.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("places status %q", body.Status)
	}

	results := body.Results
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	candidates := make([]recommend.Candidate, 0, len(results))
	for _, r := range results {
		address := r.FormattedAddress
		if address == "" {
			address = r.Vicinity
		}
		candidates = append(candidates, recommend.Candidate{
			PlaceID:          r.PlaceID,
			Name:             r.Name,
			Types:            r.Types,
			Lat:              r.Geometry.Location.Lat,
			Lng:              r.Geometry.Location.Lng,
			FormattedAddress: address,
			Rating:           r.Rating,
			PriceLevel:       r.PriceLevel,
			OpenNow:          r.OpeningHours.OpenNow,
		})
	}

	c.logger.Debug().
		Str("path", path).
		Int("results", len(candidates)).
		Msg("live search completed")

	return candidates, nil
}
