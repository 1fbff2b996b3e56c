// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package load

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/weather-pipeline/pkg/types"
)

// WriteJSON persists records as a JSON array of flat objects. Timestamp
// columns serialize as strings for format portability. The file is always
// rewritten whole; a JSON array has no meaningful append.
func (l *Loader) WriteJSON(records []types.CanonicalRecord, path string) error {
	if path == "" {
		return fmt.Errorf("json sink: no path configured")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("json sink: creating directory: %w", err)
	}

	rows := make([]map[string]any, len(records))
	for i, rec := range records {
		rows[i] = rowMap(rec)
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("json sink: marshaling: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("json sink: writing %s: %w", path, err)
	}

	fmt.Fprintf(l.w, "wrote %d record(s) to %s\n", len(records), path)
	return nil
}
