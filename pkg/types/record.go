// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// TimestampLayout is how timestamp columns are rendered in the flat-file,
// relational, and document sinks. Timestamps are always serialized as
// strings in this layout, never as a native datetime type.
const TimestampLayout = "2006-01-02 15:04:05"

// CanonicalRecord is the normalized, storage-ready representation of one
// observation. Wind speed is always m/s and visibility always meters,
// regardless of the upstream unit system. At most one record per
// (City, ObservedAt) pair survives transformation.
//
// Pointer fields are optional: absent in the upstream payload means nil here
// and an empty cell in the sinks.
type CanonicalRecord struct {
	City      string  `json:"city"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone,omitempty"`

	Temperature float64  `json:"temperature"`
	FeelsLike   float64  `json:"feels_like"`
	TempMin     *float64 `json:"temp_min"`
	TempMax     *float64 `json:"temp_max"`

	Pressure float64 `json:"pressure"`
	Humidity float64 `json:"humidity"`

	ConditionText string `json:"condition"`
	ConditionCode int    `json:"condition_code"`

	WindSpeed     float64  `json:"wind_speed"` // m/s
	WindDirection float64  `json:"wind_direction"`
	WindGust      *float64 `json:"wind_gust"` // m/s

	Cloudiness float64 `json:"cloudiness"`
	Visibility float64 `json:"visibility"` // meters

	ObservedAt  time.Time  `json:"-"`
	Sunrise     *time.Time `json:"-"`
	Sunset      *time.Time `json:"-"`
	ExtractedAt time.Time  `json:"-"`

	Source SourceTag `json:"source"`

	// Derived features, absent until the derivation stage runs.
	TempRange        *float64 `json:"temp_range"`
	TempCategory     string   `json:"temp_category,omitempty"`
	HumidityCategory string   `json:"humidity_category,omitempty"`
	WindCategory     string   `json:"wind_category,omitempty"`
}

// Columns is the canonical column order used by every sink.
var Columns = []string{
	"city", "country", "latitude", "longitude", "timezone",
	"temperature", "feels_like", "temp_min", "temp_max",
	"pressure", "humidity",
	"condition", "condition_code",
	"wind_speed", "wind_direction", "wind_gust",
	"cloudiness", "visibility",
	"data_timestamp", "sunrise", "sunset", "extracted_at",
	"source",
	"temp_range", "temp_category", "humidity_category", "wind_category",
}

// NumericColumns lists the columns the aggregation stage summarizes.
var NumericColumns = []string{
	"latitude", "longitude", "temperature", "feels_like", "temp_min",
	"temp_max", "pressure", "humidity", "wind_speed", "wind_direction",
	"wind_gust", "cloudiness", "visibility", "temp_range",
}
