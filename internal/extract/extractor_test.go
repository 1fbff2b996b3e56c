// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/weather-pipeline/internal/httputil"
	"github.com/pdiddy/weather-pipeline/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = 1 * time.Millisecond
}

const sampleCurrentJSON = `{
  "location": {"name": "London", "country": "United Kingdom", "lat": 51.52, "lon": -0.11},
  "current": {"temp_c": 11.0, "wind_kph": 18.0, "vis_km": 10.0, "humidity": 72}
}`

func testConfig(baseURL string) types.ExtractConfig {
	return types.ExtractConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   5 * time.Second,
			UserAgent: "weather-pipeline/test",
		},
		BaseURL:       baseURL,
		APIKey:        "test-key",
		APIHost:       "weatherapi-com.p.rapidapi.com",
		RetryAttempts: 3,
	}
}

func TestFetchOne_StampsMetadata(t *testing.T) {
	var gotKey, gotHost string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-RapidAPI-Key")
		gotHost = r.Header.Get("X-RapidAPI-Host")
		assert.Equal(t, "/current.json", r.URL.Path)
		assert.Equal(t, "London", r.URL.Query().Get("q"))
		w.Write([]byte(sampleCurrentJSON))
	}))
	defer ts.Close()

	e := New(testConfig(ts.URL))
	defer e.Close()

	before := time.Now().UTC()
	obs, err := e.FetchOne(context.Background(), "London")
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "weatherapi-com.p.rapidapi.com", gotHost)
	assert.Equal(t, types.SourceWeatherAPI, obs.Source)
	assert.False(t, obs.ExtractedAt.Before(before))
	assert.True(t, json.Valid(obs.Payload))
}

func TestFetchOne_RetriesTransientThenSucceeds(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(sampleCurrentJSON))
	}))
	defer ts.Close()

	e := New(testConfig(ts.URL))
	defer e.Close()

	_, err := e.FetchOne(context.Background(), "London")
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchOne_FailureAfterCeiling(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	e := New(testConfig(ts.URL))
	defer e.Close()

	_, err := e.FetchOne(context.Background(), "London")
	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchMany_PartialBatch(t *testing.T) {
	// 5 requested cities, 2 of which always fail all retry attempts.
	failing := map[string]bool{"Atlantis": true, "El Dorado": true}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing[r.URL.Query().Get("q")] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(sampleCurrentJSON))
	}))
	defer ts.Close()

	cfg := testConfig(ts.URL)
	cfg.RequestDelay = 1 * time.Millisecond
	e := New(cfg)
	defer e.Close()

	var out bytes.Buffer
	cities := []string{"London", "Atlantis", "New York", "El Dorado", "Tokyo"}
	result := e.FetchMany(context.Background(), cities, &out)

	assert.Len(t, result.Observations, 3)
	assert.Equal(t, 2, result.Failed)
	assert.ElementsMatch(t, []string{"Atlantis", "El Dorado"}, result.FailedCities)
	assert.Equal(t, 5, result.Total())
	assert.Contains(t, out.String(), "extracted 3/5 cities")
}

func TestFetchMany_InterRequestDelay(t *testing.T) {
	var arrivals []time.Time
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		arrivals = append(arrivals, time.Now())
		w.Write([]byte(sampleCurrentJSON))
	}))
	defer ts.Close()

	cfg := testConfig(ts.URL)
	cfg.RequestDelay = 40 * time.Millisecond
	e := New(cfg)
	defer e.Close()

	e.FetchMany(context.Background(), []string{"London", "Tokyo"}, io.Discard)

	require.Len(t, arrivals, 2)
	assert.GreaterOrEqual(t, arrivals[1].Sub(arrivals[0]), 40*time.Millisecond)
}

func TestFetchForecast_ClampsDays(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast.json", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("days"))
		w.Write([]byte(`{"forecast": {}}`))
	}))
	defer ts.Close()

	e := New(testConfig(ts.URL))
	defer e.Close()

	obs, err := e.FetchForecast(context.Background(), "London", 14)
	require.NoError(t, err)
	assert.Equal(t, types.SourceWeatherAPI, obs.Source)
}

func TestFetchOne_RejectsInvalidJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer ts.Close()

	e := New(testConfig(ts.URL))
	defer e.Close()

	_, err := e.FetchOne(context.Background(), "London")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid JSON"))
}
