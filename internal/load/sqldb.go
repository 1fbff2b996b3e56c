// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package load

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/weather-pipeline/pkg/types"
)

// columnDDL maps each canonical column to its SQL type. Timestamp columns
// are TEXT on purpose: values are stored as formatted strings for
// portability across drivers.
var columnDDL = map[string]string{
	"city": "TEXT", "country": "TEXT", "timezone": "TEXT",
	"condition": "TEXT", "source": "TEXT",
	"data_timestamp": "TEXT", "sunrise": "TEXT", "sunset": "TEXT",
	"extracted_at": "TEXT",
	"temp_category": "TEXT", "humidity_category": "TEXT", "wind_category": "TEXT",
	"condition_code": "INTEGER",
	"latitude":       "DOUBLE PRECISION", "longitude": "DOUBLE PRECISION",
	"temperature": "DOUBLE PRECISION", "feels_like": "DOUBLE PRECISION",
	"temp_min": "DOUBLE PRECISION", "temp_max": "DOUBLE PRECISION",
	"pressure": "DOUBLE PRECISION", "humidity": "DOUBLE PRECISION",
	"wind_speed": "DOUBLE PRECISION", "wind_direction": "DOUBLE PRECISION",
	"wind_gust": "DOUBLE PRECISION", "cloudiness": "DOUBLE PRECISION",
	"visibility": "DOUBLE PRECISION", "temp_range": "DOUBLE PRECISION",
}

// WriteSQL persists records to a relational table, computing the DDL from
// the canonical schema. The if-exists policy mirrors the original loader:
// fail errors when the table exists, replace drops and recreates it, and
// append creates it only when missing.
func (l *Loader) WriteSQL(records []types.CanonicalRecord, driver, dsn, table string, policy IfExists) error {
	if dsn == "" {
		return fmt.Errorf("%s sink: no connection string configured", driver)
	}
	if table == "" {
		table = "weather_data"
	}
	if policy == "" {
		policy = AppendRows
	}

	if driver == "sqlite3" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return fmt.Errorf("sqlite3 sink: creating directory: %w", err)
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("%s sink: opening database: %w", driver, err)
	}
	defer db.Close()

	if err := l.prepareTable(db, driver, table, policy); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("%s sink: beginning transaction: %w", driver, err)
	}

	stmt, err := tx.Prepare(insertStatement(driver, table))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("%s sink: preparing insert: %w", driver, err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.Exec(rowValues(rec)...); err != nil {
			tx.Rollback()
			return fmt.Errorf("%s sink: inserting row for %s: %w", driver, rec.City, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s sink: committing: %w", driver, err)
	}

	fmt.Fprintf(l.w, "loaded %d record(s) into table %s\n", len(records), table)
	return nil
}

func (l *Loader) prepareTable(db *sql.DB, driver, table string, policy IfExists) error {
	exists, err := tableExists(db, driver, table)
	if err != nil {
		return fmt.Errorf("%s sink: checking table: %w", driver, err)
	}

	switch policy {
	case Fail:
		if exists {
			return fmt.Errorf("%s sink: table %s already exists", driver, table)
		}
	case Replace:
		if exists {
			if _, err := db.Exec("DROP TABLE " + table); err != nil {
				return fmt.Errorf("%s sink: dropping table %s: %w", driver, table, err)
			}
			exists = false
		}
	case AppendRows:
		// Keep existing rows.
	default:
		return fmt.Errorf("%s sink: unknown if-exists policy %q", driver, policy)
	}

	if !exists {
		if _, err := db.Exec(createStatement(table)); err != nil {
			return fmt.Errorf("%s sink: creating table %s: %w", driver, table, err)
		}
	}
	return nil
}

func tableExists(db *sql.DB, driver, table string) (bool, error) {
	var query string
	switch driver {
	case "postgres":
		query = `SELECT count(*) FROM information_schema.tables WHERE table_name = $1`
	default:
		query = `SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
	}

	var n int
	if err := db.QueryRow(query, table).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func createStatement(table string) string {
	cols := make([]string, len(types.Columns))
	for i, col := range types.Columns {
		cols[i] = fmt.Sprintf("%s %s", col, columnDDL[col])
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(cols, ", "))
}

func insertStatement(driver, table string) string {
	placeholders := make([]string, len(types.Columns))
	for i := range types.Columns {
		if driver == "postgres" {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
		} else {
			placeholders[i] = "?"
		}
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(types.Columns, ", "), strings.Join(placeholders, ", "))
}
