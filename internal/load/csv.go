// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package load

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/weather-pipeline/pkg/types"
)

// WriteCSV persists records to a flat file in the canonical column order.
// Append mode adds rows without rewriting the header when the file already
// exists; Overwrite rewrites the full file including the header. Parent
// directories are created as needed.
func (l *Loader) WriteCSV(records []types.CanonicalRecord, path string, mode Mode) error {
	if path == "" {
		return fmt.Errorf("csv sink: no path configured")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("csv sink: creating directory: %w", err)
	}

	appendRows := false
	if mode == Append {
		if _, err := os.Stat(path); err == nil {
			appendRows = true
		}
	}

	flags := os.O_CREATE | os.O_WRONLY
	if appendRows {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("csv sink: opening %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if !appendRows {
		if err := cw.Write(types.Columns); err != nil {
			return fmt.Errorf("csv sink: writing header: %w", err)
		}
	}
	for _, rec := range records {
		if err := cw.Write(rowStrings(rec)); err != nil {
			return fmt.Errorf("csv sink: writing row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv sink: flushing %s: %w", path, err)
	}

	if appendRows {
		fmt.Fprintf(l.w, "appended %d record(s) to %s\n", len(records), path)
	} else {
		fmt.Fprintf(l.w, "wrote %d record(s) to %s\n", len(records), path)
	}
	return nil
}
