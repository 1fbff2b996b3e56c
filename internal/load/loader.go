// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package load persists canonical record sets to the configured storage
// backends. Every writer converts its own failures into an error result;
// nothing in this package panics past its boundary.
package load

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pdiddy/weather-pipeline/pkg/types"
)

// Mode selects the flat-file write behavior.
type Mode string

const (
	// Append adds rows to an existing file without rewriting the header.
	Append Mode = "append"
	// Overwrite rewrites the full file including the header.
	Overwrite Mode = "overwrite"
)

// IfExists selects the relational write policy when the table already exists.
type IfExists string

const (
	Fail       IfExists = "fail"
	Replace    IfExists = "replace"
	AppendRows IfExists = "append"
)

// Loader writes canonical records to the sink selected in the storage
// configuration. The loader never mutates records, only serializes them.
type Loader struct {
	cfg types.StorageConfig
	w   io.Writer
}

// New creates a Loader writing progress output to w.
func New(cfg types.StorageConfig, w io.Writer) *Loader {
	return &Loader{cfg: cfg, w: w}
}

// Write persists records to the configured sink. A non-nil error means the
// load phase failed; the caller decides whether that is fatal to the run.
func (l *Loader) Write(records []types.CanonicalRecord) error {
	switch l.cfg.Sink {
	case types.SinkCSV, "":
		mode := Mode(l.cfg.CSVMode)
		if mode == "" {
			mode = Append
		}
		return l.WriteCSV(records, l.cfg.CSVPath, mode)
	case types.SinkSQLite:
		return l.WriteSQL(records, "sqlite3", l.cfg.SQLitePath, l.cfg.Table, IfExists(l.cfg.IfExists))
	case types.SinkPostgres:
		return l.WriteSQL(records, "postgres", l.cfg.PostgresDSN, l.cfg.Table, IfExists(l.cfg.IfExists))
	case types.SinkJSON:
		return l.WriteJSON(records, l.cfg.JSONPath)
	default:
		return fmt.Errorf("unknown storage sink %q", l.cfg.Sink)
	}
}

// rowStrings renders one record in the canonical column order. Absent
// optionals render as empty cells; timestamps are always strings.
func rowStrings(rec types.CanonicalRecord) []string {
	return []string{
		rec.City,
		rec.Country,
		formatFloat(rec.Latitude),
		formatFloat(rec.Longitude),
		rec.Timezone,
		formatFloat(rec.Temperature),
		formatFloat(rec.FeelsLike),
		formatOptFloat(rec.TempMin),
		formatOptFloat(rec.TempMax),
		formatFloat(rec.Pressure),
		formatFloat(rec.Humidity),
		rec.ConditionText,
		strconv.Itoa(rec.ConditionCode),
		formatFloat(rec.WindSpeed),
		formatFloat(rec.WindDirection),
		formatOptFloat(rec.WindGust),
		formatFloat(rec.Cloudiness),
		formatFloat(rec.Visibility),
		rec.ObservedAt.Format(types.TimestampLayout),
		formatOptTime(rec.Sunrise),
		formatOptTime(rec.Sunset),
		rec.ExtractedAt.Format(types.TimestampLayout),
		string(rec.Source),
		formatOptFloat(rec.TempRange),
		rec.TempCategory,
		rec.HumidityCategory,
		rec.WindCategory,
	}
}

// rowValues renders one record as typed SQL arguments in the canonical
// column order. Absent optionals bind as NULL; timestamps bind as strings.
func rowValues(rec types.CanonicalRecord) []any {
	return []any{
		rec.City,
		rec.Country,
		rec.Latitude,
		rec.Longitude,
		rec.Timezone,
		rec.Temperature,
		rec.FeelsLike,
		optFloatArg(rec.TempMin),
		optFloatArg(rec.TempMax),
		rec.Pressure,
		rec.Humidity,
		rec.ConditionText,
		rec.ConditionCode,
		rec.WindSpeed,
		rec.WindDirection,
		optFloatArg(rec.WindGust),
		rec.Cloudiness,
		rec.Visibility,
		rec.ObservedAt.Format(types.TimestampLayout),
		optTimeArg(rec.Sunrise),
		optTimeArg(rec.Sunset),
		rec.ExtractedAt.Format(types.TimestampLayout),
		string(rec.Source),
		optFloatArg(rec.TempRange),
		rec.TempCategory,
		rec.HumidityCategory,
		rec.WindCategory,
	}
}

func optFloatArg(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func optTimeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(types.TimestampLayout)
}

// rowMap renders one record as a flat object for the document sink.
// Timestamp-typed fields serialize as strings, never native datetimes.
func rowMap(rec types.CanonicalRecord) map[string]any {
	row := make(map[string]any, len(types.Columns))
	strs := rowStrings(rec)
	for i, col := range types.Columns {
		row[col] = strs[i]
	}
	// Keep numerics numeric in the document representation.
	row["latitude"] = rec.Latitude
	row["longitude"] = rec.Longitude
	row["temperature"] = rec.Temperature
	row["feels_like"] = rec.FeelsLike
	row["pressure"] = rec.Pressure
	row["humidity"] = rec.Humidity
	row["condition_code"] = rec.ConditionCode
	row["wind_speed"] = rec.WindSpeed
	row["wind_direction"] = rec.WindDirection
	row["cloudiness"] = rec.Cloudiness
	row["visibility"] = rec.Visibility
	if rec.TempMin != nil {
		row["temp_min"] = *rec.TempMin
	} else {
		row["temp_min"] = nil
	}
	if rec.TempMax != nil {
		row["temp_max"] = *rec.TempMax
	} else {
		row["temp_max"] = nil
	}
	if rec.WindGust != nil {
		row["wind_gust"] = *rec.WindGust
	} else {
		row["wind_gust"] = nil
	}
	if rec.TempRange != nil {
		row["temp_range"] = *rec.TempRange
	} else {
		row["temp_range"] = nil
	}
	return row
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatOptFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatOptTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(types.TimestampLayout)
}
