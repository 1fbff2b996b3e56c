// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract fetches raw weather observations from the upstream API.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/pdiddy/weather-pipeline/internal/httputil"
	"github.com/pdiddy/weather-pipeline/pkg/types"
)

const (
	currentEndpoint  = "current.json"
	forecastEndpoint = "forecast.json"

	maxForecastDays = 10
)

// ErrCircuitOpen is returned when the upstream circuit breaker rejects a call.
var ErrCircuitOpen = errors.New("upstream circuit open")

// BatchResult holds the outcome of a multi-city extraction run.
type BatchResult struct {
	Observations []types.RawObservation
	Failed       int
	FailedCities []string
}

// Total returns the number of cities processed.
func (r BatchResult) Total() int {
	return len(r.Observations) + r.Failed
}

// Extractor owns one HTTP session against the upstream weather API for the
// duration of a run. Callers must release it with Close on every exit path.
type Extractor struct {
	cfg     types.ExtractConfig
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	closed  bool
}

// New creates an Extractor with its own HTTP client and circuit breaker.
func New(cfg types.ExtractConfig) *Extractor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "weather-upstream",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Extractor{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		circuit: cb,
	}
}

// Close releases the session's idle connections. Safe to call more than once.
func (e *Extractor) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.client.CloseIdleConnections()
}

// FetchOne fetches the current observation for a single city, retrying
// transient failures up to the configured attempt ceiling. The result is
// stamped with the capture time and the source tag.
func (e *Extractor) FetchOne(ctx context.Context, city string) (types.RawObservation, error) {
	return e.fetch(ctx, currentEndpoint, url.Values{"q": {city}})
}

// FetchForecast fetches the multi-day forecast for a city. Days is clamped
// to the upstream maximum of 10.
func (e *Extractor) FetchForecast(ctx context.Context, city string, days int) (types.RawObservation, error) {
	if days < 1 {
		days = 1
	}
	if days > maxForecastDays {
		days = maxForecastDays
	}
	return e.fetch(ctx, forecastEndpoint, url.Values{
		"q":    {city},
		"days": {fmt.Sprintf("%d", days)},
	})
}

// FetchMany fetches current observations for each city in order, writing
// per-city progress to w. Cities that exhaust their retries are dropped from
// the batch, never aborting it. A fixed delay is imposed between consecutive
// cities to stay within upstream rate limits.
func (e *Extractor) FetchMany(ctx context.Context, cities []string, w io.Writer) BatchResult {
	var result BatchResult
	for i, city := range cities {
		if i > 0 && e.cfg.RequestDelay > 0 {
			select {
			case <-ctx.Done():
				result.Failed += len(cities) - i
				result.FailedCities = append(result.FailedCities, cities[i:]...)
				return result
			case <-time.After(e.cfg.RequestDelay):
			}
		}

		obs, err := e.FetchOne(ctx, city)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", city, err)
			result.Failed++
			result.FailedCities = append(result.FailedCities, city)
			continue
		}
		fmt.Fprintf(w, "fetched: %s\n", city)
		result.Observations = append(result.Observations, obs)
	}

	fmt.Fprintf(w, "extracted %d/%d cities\n", len(result.Observations), len(cities))
	return result
}

func (e *Extractor) fetch(ctx context.Context, endpoint string, params url.Values) (types.RawObservation, error) {
	u := fmt.Sprintf("%s/%s?%s", e.cfg.BaseURL, endpoint, params.Encode())
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return types.RawObservation{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", e.cfg.APIKey)
	req.Header.Set("X-RapidAPI-Host", e.cfg.APIHost)
	if e.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", e.cfg.UserAgent)
	}

	result, err := e.circuit.Execute(func() (interface{}, error) {
		resp, err := httputil.DoWithRetry(ctx, e.client, req, e.cfg.RetryAttempts)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}
		return body, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return types.RawObservation{}, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		return types.RawObservation{}, err
	}

	body, ok := result.([]byte)
	if !ok || !json.Valid(body) {
		return types.RawObservation{}, fmt.Errorf("upstream returned invalid JSON")
	}

	return types.RawObservation{
		Source:      types.SourceWeatherAPI,
		APIHost:     e.cfg.APIHost,
		ExtractedAt: time.Now().UTC(),
		Payload:     body,
	}, nil
}
