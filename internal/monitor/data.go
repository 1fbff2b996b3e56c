// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package monitor

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/pdiddy/weather-pipeline/pkg/types"
)

// DataSummary describes the persisted dataset for monitoring clients.
type DataSummary struct {
	TotalRecords   int      `json:"total_records"`
	Cities         []string `json:"cities"`
	AvgTemperature *float64 `json:"avg_temperature"`
	AvgHumidity    *float64 `json:"avg_humidity"`
	LastExtraction string   `json:"last_extraction,omitempty"`
}

// numericColumn reports whether values in col should be surfaced as numbers.
var numericColumn = func() map[string]bool {
	m := make(map[string]bool, len(types.NumericColumns)+1)
	for _, c := range types.NumericColumns {
		m[c] = true
	}
	m["condition_code"] = true
	return m
}()

// readRows loads the flat-file sink into row maps keyed by column name.
// Numeric columns are parsed to float64; empty cells become nil; everything
// else stays a string. Rows come back in file order.
func readRows(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, nil
	}

	header := all[0]
	rows := make([]map[string]any, 0, len(all)-1)
	for _, rec := range all[1:] {
		row := make(map[string]any, len(header))
		for i, col := range header {
			if i >= len(rec) {
				break
			}
			cell := rec[i]
			switch {
			case cell == "":
				row[col] = nil
			case numericColumn[col]:
				v, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					row[col] = cell
					continue
				}
				row[col] = v
			default:
				row[col] = cell
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// summarize computes the dataset summary from parsed rows.
func summarize(rows []map[string]any) DataSummary {
	s := DataSummary{TotalRecords: len(rows)}

	seen := map[string]bool{}
	var tempSum, humSum float64
	var tempN, humN int
	for _, row := range rows {
		if city, ok := row["city"].(string); ok && !seen[city] {
			seen[city] = true
			s.Cities = append(s.Cities, city)
		}
		if v, ok := row["temperature"].(float64); ok {
			tempSum += v
			tempN++
		}
		if v, ok := row["humidity"].(float64); ok {
			humSum += v
			humN++
		}
		if ts, ok := row["extracted_at"].(string); ok && ts > s.LastExtraction {
			s.LastExtraction = ts
		}
	}
	sort.Strings(s.Cities)
	if tempN > 0 {
		avg := tempSum / float64(tempN)
		s.AvgTemperature = &avg
	}
	if humN > 0 {
		avg := humSum / float64(humN)
		s.AvgHumidity = &avg
	}
	return s
}

// latestPerCity keeps the row with the greatest data_timestamp for each
// city. The timestamp layout sorts lexicographically, so string comparison
// is chronological comparison. Results are ordered by city name.
func latestPerCity(rows []map[string]any) []map[string]any {
	best := map[string]map[string]any{}
	for _, row := range rows {
		city, ok := row["city"].(string)
		if !ok {
			continue
		}
		ts, _ := row["data_timestamp"].(string)
		if cur, ok := best[city]; ok {
			curTS, _ := cur["data_timestamp"].(string)
			if ts <= curTS {
				continue
			}
		}
		best[city] = row
	}

	cities := make([]string, 0, len(best))
	for c := range best {
		cities = append(cities, c)
	}
	sort.Strings(cities)

	out := make([]map[string]any, 0, len(cities))
	for _, c := range cities {
		out = append(out, best[c])
	}
	return out
}
