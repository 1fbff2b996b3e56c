// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package load

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/weather-pipeline/pkg/types"
)

// backupManifest is the sidecar written next to each backup file.
type backupManifest struct {
	CreatedAt   string `yaml:"created_at"`
	RecordCount int    `yaml:"record_count"`
	BackupFile  string `yaml:"backup_file"`
}

// Backup snapshots the full canonical set to a timestamped CSV in dir and
// writes a YAML manifest beside it. The filename carries second-granularity
// time, so successive backups never collide. Returns the backup path.
func (l *Loader) Backup(records []types.CanonicalRecord, dir string) (string, error) {
	if dir == "" {
		dir = "./backups"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("backup: creating directory: %w", err)
	}

	stamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("weather_backup_%s.csv", stamp))

	if err := l.WriteCSV(records, path, Overwrite); err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}
	if err := writeManifest(path, len(records)); err != nil {
		return "", err
	}

	fmt.Fprintf(l.w, "created backup %s\n", path)
	return path, nil
}

// BackupFile snapshots an existing flat-file dataset into dir, preserving
// its bytes exactly, and writes the manifest beside the copy. Returns the
// backup path.
func (l *Loader) BackupFile(src, dir string) (string, error) {
	if dir == "" {
		dir = "./backups"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("backup: creating directory: %w", err)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("backup: reading dataset: %w", err)
	}
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return "", fmt.Errorf("backup: parsing %s: %w", src, err)
	}
	count := len(rows)
	if count > 0 {
		count-- // header
	}

	stamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("weather_backup_%s.csv", stamp))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("backup: writing copy: %w", err)
	}
	if err := writeManifest(path, count); err != nil {
		return "", err
	}

	fmt.Fprintf(l.w, "created backup %s (%d record(s))\n", path, count)
	return path, nil
}

func writeManifest(backupPath string, count int) error {
	manifest := backupManifest{
		CreatedAt:   time.Now().UTC().Format(types.TimestampLayout),
		RecordCount: count,
		BackupFile:  filepath.Base(backupPath),
	}
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("backup: marshaling manifest: %w", err)
	}
	manifestPath := backupPath[:len(backupPath)-len(".csv")] + ".yaml"
	if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
		return fmt.Errorf("backup: writing manifest: %w", err)
	}
	return nil
}
