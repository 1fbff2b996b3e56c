// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transform

import (
	"encoding/json"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/weather-pipeline/pkg/types"
)

func weatherAPIObs(t *testing.T, city string, epoch int64, windKph, visKm float64) types.RawObservation {
	t.Helper()
	payload := fmt.Sprintf(`{
		"location": {"name": %q, "country": "Testland", "lat": 1.5, "lon": 2.5, "tz_id": "UTC"},
		"current": {
			"last_updated_epoch": %d,
			"temp_c": 11.0, "feelslike_c": 9.5,
			"pressure_mb": 1012, "humidity": 72,
			"condition": {"text": "Partly cloudy", "code": 1003},
			"wind_kph": %g, "wind_degree": 210, "cloud": 25, "vis_km": %g
		}
	}`, city, epoch, windKph, visKm)
	return types.RawObservation{
		Source:      types.SourceWeatherAPI,
		ExtractedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Payload:     json.RawMessage(payload),
	}
}

func openWeatherObs(t *testing.T, city string, dt, sunrise, sunset int64) types.RawObservation {
	t.Helper()
	payload := fmt.Sprintf(`{
		"name": %q,
		"sys": {"country": "GB", "sunrise": %d, "sunset": %d},
		"coord": {"lat": 51.51, "lon": -0.13},
		"main": {"temp": 8.0, "feels_like": 6.0, "temp_min": 5.0, "temp_max": 10.0, "pressure": 1008, "humidity": 81},
		"weather": [{"id": 500, "main": "Rain", "description": "light rain"}],
		"wind": {"speed": 4.2, "deg": 180, "gust": 7.7},
		"clouds": {"all": 90},
		"visibility": 10000,
		"dt": %d
	}`, city, sunrise, sunset, dt)
	return types.RawObservation{
		Source:      types.SourceOpenWeather,
		ExtractedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Payload:     json.RawMessage(payload),
	}
}

func TestNormalize_UnitConversion(t *testing.T) {
	// SchemaA wind arrives in km/h, visibility in km.
	result := Normalize([]types.RawObservation{
		weatherAPIObs(t, "London", 1767225600, 18.0, 10.0),
	}, io.Discard)

	require.Len(t, result.Records, 1)
	rec := result.Records[0]
	assert.InDelta(t, 5.0, rec.WindSpeed, 0.001)
	assert.InDelta(t, 10000.0, rec.Visibility, 0.001)
	assert.Equal(t, "London", rec.City)
	assert.Equal(t, time.Unix(1767225600, 0).UTC(), rec.ObservedAt)
	assert.Nil(t, rec.Sunrise)
	assert.Nil(t, rec.Sunset)
}

func TestNormalize_OpenWeatherNativeUnits(t *testing.T) {
	result := Normalize([]types.RawObservation{
		openWeatherObs(t, "London", 1767225600, 1767200000, 1767240000),
	}, io.Discard)

	require.Len(t, result.Records, 1)
	rec := result.Records[0]
	assert.InDelta(t, 4.2, rec.WindSpeed, 0.001)
	assert.InDelta(t, 10000.0, rec.Visibility, 0.001)
	assert.Equal(t, "light rain", rec.ConditionText)
	assert.Equal(t, 500, rec.ConditionCode)
	require.NotNil(t, rec.Sunrise)
	require.NotNil(t, rec.Sunset)
	assert.Equal(t, time.Unix(1767200000, 0).UTC(), *rec.Sunrise)
	require.NotNil(t, rec.TempMin)
	assert.InDelta(t, 5.0, *rec.TempMin, 0.001)
}

func TestNormalize_EpochFallback(t *testing.T) {
	before := time.Now().UTC()
	result := Normalize([]types.RawObservation{
		weatherAPIObs(t, "London", 0, 18.0, 10.0),
	}, io.Discard)

	require.Len(t, result.Records, 1)
	assert.False(t, result.Records[0].ObservedAt.Before(before))
}

func TestNormalize_DedupKeepsLast(t *testing.T) {
	first := weatherAPIObs(t, "London", 1767225600, 18.0, 10.0)
	second := weatherAPIObs(t, "London", 1767225600, 36.0, 5.0) // same (city, timestamp)
	other := weatherAPIObs(t, "Tokyo", 1767225600, 18.0, 10.0)

	result := Normalize([]types.RawObservation{first, second, other}, io.Discard)

	require.Len(t, result.Records, 2)
	assert.Equal(t, 1, result.Duplicates)

	var london types.CanonicalRecord
	for _, rec := range result.Records {
		if rec.City == "London" {
			london = rec
		}
	}
	// Last occurrence in input order wins.
	assert.InDelta(t, 10.0, london.WindSpeed, 0.001)
}

func TestNormalize_SortsByTimestampDescending(t *testing.T) {
	result := Normalize([]types.RawObservation{
		weatherAPIObs(t, "A", 100, 18, 10),
		weatherAPIObs(t, "B", 300, 18, 10),
		weatherAPIObs(t, "C", 200, 18, 10),
	}, io.Discard)

	require.Len(t, result.Records, 3)
	assert.Equal(t, "B", result.Records[0].City)
	assert.Equal(t, "C", result.Records[1].City)
	assert.Equal(t, "A", result.Records[2].City)
}

func TestNormalize_DropsBadRowsWithoutAborting(t *testing.T) {
	bad := types.RawObservation{
		Source:      types.SourceWeatherAPI,
		ExtractedAt: time.Now().UTC(),
		Payload:     json.RawMessage(`{"location": {}, "current": {}}`), // no city
	}
	unknown := types.RawObservation{
		Source:  types.SourceTag("bogus"),
		Payload: json.RawMessage(`{}`),
	}
	good := weatherAPIObs(t, "London", 1767225600, 18, 10)

	result := Normalize([]types.RawObservation{bad, unknown, good}, io.Discard)

	assert.Len(t, result.Records, 1)
	assert.Equal(t, 2, result.Dropped)
	assert.Len(t, result.DropReasons, 2)
}

func TestNormalize_EmptyInput(t *testing.T) {
	result := Normalize(nil, io.Discard)
	assert.Empty(t, result.Records)
	assert.Zero(t, result.Dropped)
}
