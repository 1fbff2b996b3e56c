// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transform maps raw upstream payloads into the canonical record
// schema, cleans the batch, and derives categorical features.
package transform

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pdiddy/weather-pipeline/pkg/types"
)

// Result holds the outcome of normalizing one raw batch. Dropped rows never
// abort the batch; each drop is recorded with its reason.
type Result struct {
	Records     []types.CanonicalRecord
	Dropped     int
	DropReasons []string
	Duplicates  int
}

// payloadSchema is one upstream field layout. Adding support for a new
// upstream format means adding a type here and registering it in schemas.
type payloadSchema interface {
	toCanonical(obs types.RawObservation) (types.CanonicalRecord, error)
}

var schemas = map[types.SourceTag]func() payloadSchema{
	types.SourceWeatherAPI:  func() payloadSchema { return &weatherAPIPayload{} },
	types.SourceOpenWeather: func() payloadSchema { return &openWeatherPayload{} },
}

// Normalize maps each raw observation into the canonical schema, then cleans
// the batch: deduplicate on (city, observation timestamp) keeping the last
// occurrence in input order, then sort by observation timestamp descending.
// Rows that cannot be mapped are dropped with a reason written to w.
func Normalize(raw []types.RawObservation, w io.Writer) Result {
	var result Result

	for _, obs := range raw {
		factory, ok := schemas[obs.Source]
		if !ok {
			result.drop(w, fmt.Sprintf("unknown source tag %q", obs.Source))
			continue
		}

		p := factory()
		if err := json.Unmarshal(obs.Payload, p); err != nil {
			result.drop(w, fmt.Sprintf("decoding %s payload: %v", obs.Source, err))
			continue
		}

		rec, err := p.toCanonical(obs)
		if err != nil {
			result.drop(w, fmt.Sprintf("normalizing %s record: %v", obs.Source, err))
			continue
		}
		result.Records = append(result.Records, rec)
	}

	before := len(result.Records)
	result.Records = dedupe(result.Records)
	result.Duplicates = before - len(result.Records)
	if result.Duplicates > 0 {
		fmt.Fprintf(w, "removed %d duplicate record(s)\n", result.Duplicates)
	}

	sort.SliceStable(result.Records, func(i, j int) bool {
		return result.Records[i].ObservedAt.After(result.Records[j].ObservedAt)
	})

	return result
}

func (r *Result) drop(w io.Writer, reason string) {
	r.Dropped++
	r.DropReasons = append(r.DropReasons, reason)
	fmt.Fprintf(w, "dropped: %s\n", reason)
}

// dedupe keeps at most one record per (city, observation timestamp) pair,
// preferring the last occurrence in input order.
func dedupe(records []types.CanonicalRecord) []types.CanonicalRecord {
	type key struct {
		city string
		ts   time.Time
	}

	last := make(map[key]int, len(records))
	for i, rec := range records {
		last[key{rec.City, rec.ObservedAt}] = i
	}

	kept := records[:0:0]
	for i, rec := range records {
		if last[key{rec.City, rec.ObservedAt}] == i {
			kept = append(kept, rec)
		}
	}
	return kept
}

// weatherAPIPayload is the RapidAPI WeatherAPI current-conditions layout.
// Wind arrives in km/h and visibility in km; both are converted to SI on
// the way out. Sunrise and sunset are not part of this endpoint.
type weatherAPIPayload struct {
	Location struct {
		Name    string  `json:"name"`
		Country string  `json:"country"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
		TzID    string  `json:"tz_id"`
	} `json:"location"`
	Current struct {
		LastUpdatedEpoch int64   `json:"last_updated_epoch"`
		TempC            float64 `json:"temp_c"`
		FeelsLikeC       float64 `json:"feelslike_c"`
		PressureMb       float64 `json:"pressure_mb"`
		Humidity         float64 `json:"humidity"`
		Condition        struct {
			Text string `json:"text"`
			Code int    `json:"code"`
		} `json:"condition"`
		WindKph    float64  `json:"wind_kph"`
		WindDegree float64  `json:"wind_degree"`
		GustKph    *float64 `json:"gust_kph"`
		Cloud      float64  `json:"cloud"`
		VisKm      float64  `json:"vis_km"`
	} `json:"current"`
}

func (p *weatherAPIPayload) toCanonical(obs types.RawObservation) (types.CanonicalRecord, error) {
	if p.Location.Name == "" {
		return types.CanonicalRecord{}, fmt.Errorf("missing location name")
	}

	observedAt := time.Now().UTC()
	if p.Current.LastUpdatedEpoch != 0 {
		observedAt = time.Unix(p.Current.LastUpdatedEpoch, 0).UTC()
	}

	temp := p.Current.TempC
	var gust *float64
	if p.Current.GustKph != nil {
		g := *p.Current.GustKph / 3.6
		gust = &g
	}

	return types.CanonicalRecord{
		City:      p.Location.Name,
		Country:   p.Location.Country,
		Latitude:  p.Location.Lat,
		Longitude: p.Location.Lon,
		Timezone:  p.Location.TzID,

		Temperature: temp,
		FeelsLike:   p.Current.FeelsLikeC,
		// The current-conditions endpoint carries no daily extremes;
		// the current temperature stands in for both.
		TempMin: &temp,
		TempMax: &temp,

		Pressure: p.Current.PressureMb,
		Humidity: p.Current.Humidity,

		ConditionText: p.Current.Condition.Text,
		ConditionCode: p.Current.Condition.Code,

		WindSpeed:     p.Current.WindKph / 3.6,
		WindDirection: p.Current.WindDegree,
		WindGust:      gust,

		Cloudiness: p.Current.Cloud,
		Visibility: p.Current.VisKm * 1000,

		ObservedAt:  observedAt,
		ExtractedAt: obs.ExtractedAt,
		Source:      obs.Source,
	}, nil
}

// openWeatherPayload is the OpenWeatherMap current-conditions layout.
// Wind speed and visibility already arrive in SI units.
type openWeatherPayload struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Main struct {
		Temp      float64  `json:"temp"`
		FeelsLike float64  `json:"feels_like"`
		TempMin   *float64 `json:"temp_min"`
		TempMax   *float64 `json:"temp_max"`
		Pressure  float64  `json:"pressure"`
		Humidity  float64  `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64  `json:"speed"`
		Deg   float64  `json:"deg"`
		Gust  *float64 `json:"gust"`
	} `json:"wind"`
	Clouds struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Visibility float64 `json:"visibility"`
	Dt         int64   `json:"dt"`
}

func (p *openWeatherPayload) toCanonical(obs types.RawObservation) (types.CanonicalRecord, error) {
	if p.Name == "" {
		return types.CanonicalRecord{}, fmt.Errorf("missing city name")
	}

	rec := types.CanonicalRecord{
		City:      p.Name,
		Country:   p.Sys.Country,
		Latitude:  p.Coord.Lat,
		Longitude: p.Coord.Lon,

		Temperature: p.Main.Temp,
		FeelsLike:   p.Main.FeelsLike,
		TempMin:     p.Main.TempMin,
		TempMax:     p.Main.TempMax,

		Pressure: p.Main.Pressure,
		Humidity: p.Main.Humidity,

		WindSpeed:     p.Wind.Speed,
		WindDirection: p.Wind.Deg,
		WindGust:      p.Wind.Gust,

		Cloudiness: p.Clouds.All,
		Visibility: p.Visibility,

		ObservedAt:  time.Unix(p.Dt, 0).UTC(),
		ExtractedAt: obs.ExtractedAt,
		Source:      obs.Source,
	}

	if len(p.Weather) > 0 {
		rec.ConditionText = p.Weather[0].Description
		rec.ConditionCode = p.Weather[0].ID
	}
	if p.Sys.Sunrise != 0 {
		t := time.Unix(p.Sys.Sunrise, 0).UTC()
		rec.Sunrise = &t
	}
	if p.Sys.Sunset != 0 {
		t := time.Unix(p.Sys.Sunset, 0).UTC()
		rec.Sunset = &t
	}

	return rec, nil
}
