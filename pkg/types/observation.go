// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data types shared across pipeline stages.
package types

import (
	"encoding/json"
	"time"
)

// SourceTag identifies the upstream field layout of a raw payload.
type SourceTag string

const (
	// SourceWeatherAPI is the RapidAPI WeatherAPI layout (wind in km/h,
	// visibility in km, single last-updated epoch).
	SourceWeatherAPI SourceTag = "rapidapi"

	// SourceOpenWeather is the OpenWeatherMap layout (SI units, separate
	// dt/sunrise/sunset epochs).
	SourceOpenWeather SourceTag = "openweathermap"
)

// RawObservation is one upstream payload for one city at one fetch instant,
// as received from the weather API. The payload is kept opaque; the
// transformer dispatches on Source to decode it. Raw observations are never
// persisted.
type RawObservation struct {
	Source      SourceTag       `json:"source"`
	APIHost     string          `json:"api_host,omitempty"`
	ExtractedAt time.Time       `json:"extracted_at"`
	Payload     json.RawMessage `json:"payload"`
}
