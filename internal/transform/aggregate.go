// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transform

import (
	"fmt"
	"math"
	"sort"

	"github.com/pdiddy/weather-pipeline/pkg/types"
)

// ColumnStats summarizes one numeric column within one group.
type ColumnStats struct {
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Std   float64 `json:"std"`
	Count int     `json:"count"`
}

// AggregateRow is the summary for one group key value.
type AggregateRow struct {
	Key     string                 `json:"key"`
	Count   int                    `json:"count"`
	Columns map[string]ColumnStats `json:"columns"`
}

// Aggregate groups records by the named key column and computes mean, min,
// max, and sample standard deviation for every numeric column. It is a
// read-only summary view; the input records are never mutated. Rows are
// returned sorted by key for deterministic output.
func Aggregate(records []types.CanonicalRecord, groupBy string) ([]AggregateRow, error) {
	keyFn, err := keyColumn(groupBy)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]types.CanonicalRecord)
	for _, rec := range records {
		k := keyFn(rec)
		groups[k] = append(groups[k], rec)
	}

	rows := make([]AggregateRow, 0, len(groups))
	for k, recs := range groups {
		row := AggregateRow{
			Key:     k,
			Count:   len(recs),
			Columns: make(map[string]ColumnStats, len(types.NumericColumns)),
		}
		for _, col := range types.NumericColumns {
			values := columnValues(recs, col)
			if len(values) == 0 {
				continue
			}
			row.Columns[col] = summarize(values)
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return rows, nil
}

func keyColumn(name string) (func(types.CanonicalRecord) string, error) {
	switch name {
	case "city":
		return func(r types.CanonicalRecord) string { return r.City }, nil
	case "country":
		return func(r types.CanonicalRecord) string { return r.Country }, nil
	case "source":
		return func(r types.CanonicalRecord) string { return string(r.Source) }, nil
	case "condition":
		return func(r types.CanonicalRecord) string { return r.ConditionText }, nil
	case "temp_category":
		return func(r types.CanonicalRecord) string { return r.TempCategory }, nil
	case "humidity_category":
		return func(r types.CanonicalRecord) string { return r.HumidityCategory }, nil
	case "wind_category":
		return func(r types.CanonicalRecord) string { return r.WindCategory }, nil
	default:
		return nil, fmt.Errorf("unsupported group-by column %q", name)
	}
}

// columnValues extracts the non-absent values of one numeric column.
func columnValues(records []types.CanonicalRecord, col string) []float64 {
	var values []float64
	for _, r := range records {
		switch col {
		case "latitude":
			values = append(values, r.Latitude)
		case "longitude":
			values = append(values, r.Longitude)
		case "temperature":
			values = append(values, r.Temperature)
		case "feels_like":
			values = append(values, r.FeelsLike)
		case "temp_min":
			if r.TempMin != nil {
				values = append(values, *r.TempMin)
			}
		case "temp_max":
			if r.TempMax != nil {
				values = append(values, *r.TempMax)
			}
		case "pressure":
			values = append(values, r.Pressure)
		case "humidity":
			values = append(values, r.Humidity)
		case "wind_speed":
			values = append(values, r.WindSpeed)
		case "wind_direction":
			values = append(values, r.WindDirection)
		case "wind_gust":
			if r.WindGust != nil {
				values = append(values, *r.WindGust)
			}
		case "cloudiness":
			values = append(values, r.Cloudiness)
		case "visibility":
			values = append(values, r.Visibility)
		case "temp_range":
			if r.TempRange != nil {
				values = append(values, *r.TempRange)
			}
		}
	}
	return values
}

func summarize(values []float64) ColumnStats {
	stats := ColumnStats{
		Min:   values[0],
		Max:   values[0],
		Count: len(values),
	}

	var sum float64
	for _, v := range values {
		sum += v
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
	}
	stats.Mean = sum / float64(len(values))

	// Sample standard deviation; zero for singleton groups.
	if len(values) > 1 {
		var ss float64
		for _, v := range values {
			d := v - stats.Mean
			ss += d * d
		}
		stats.Std = math.Sqrt(ss / float64(len(values)-1))
	}

	return stats
}
