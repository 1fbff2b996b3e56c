// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transform

import "github.com/pdiddy/weather-pipeline/pkg/types"

// DeriveFeatures returns a copy of records with the derived columns filled
// in: temperature range and the temperature, humidity, and wind categories.
// No row is ever discarded; an absent input leaves the derived field
// absent. Running it twice yields identical output.
func DeriveFeatures(records []types.CanonicalRecord) []types.CanonicalRecord {
	out := make([]types.CanonicalRecord, len(records))
	for i, rec := range records {
		if rec.TempMin != nil && rec.TempMax != nil {
			r := *rec.TempMax - *rec.TempMin
			rec.TempRange = &r
		} else {
			rec.TempRange = nil
		}
		rec.TempCategory = tempCategory(rec.Temperature)
		rec.HumidityCategory = humidityCategory(rec.Humidity)
		rec.WindCategory = windCategory(rec.WindSpeed)
		out[i] = rec
	}
	return out
}

// tempCategory bins a temperature in °C. Bins are right-inclusive:
// (-inf,0] Freezing, (0,10] Cold, (10,20] Moderate, (20,30] Warm, (30,inf) Hot.
func tempCategory(t float64) string {
	switch {
	case t <= 0:
		return "Freezing"
	case t <= 10:
		return "Cold"
	case t <= 20:
		return "Moderate"
	case t <= 30:
		return "Warm"
	default:
		return "Hot"
	}
}

// humidityCategory bins relative humidity in percent:
// [0,30] Low, (30,60] Moderate, (60,100] High. Out-of-range values get no
// category.
func humidityCategory(h float64) string {
	switch {
	case h < 0 || h > 100:
		return ""
	case h <= 30:
		return "Low"
	case h <= 60:
		return "Moderate"
	default:
		return "High"
	}
}

// windCategory bins a wind speed in m/s on a simplified Beaufort scale:
// [0,1] Calm, (1,5] Light, (5,10] Moderate, (10,20] Strong, (20,inf) Very Strong.
func windCategory(w float64) string {
	switch {
	case w < 0:
		return ""
	case w <= 1:
		return "Calm"
	case w <= 5:
		return "Light"
	case w <= 10:
		return "Moderate"
	case w <= 20:
		return "Strong"
	default:
		return "Very Strong"
	}
}
