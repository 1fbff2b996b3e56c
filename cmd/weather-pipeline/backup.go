// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/weather-pipeline/internal/load"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot the flat-file dataset into the backup directory",
	Long: `Backup copies the current CSV dataset into a timestamped file under
the backup directory and writes a YAML manifest beside it.`,
	RunE: runBackup,
}

func init() {
	backupCmd.Flags().String("dir", "", "backup directory (default from config)")

	rootCmd.AddCommand(backupCmd)
}

func runBackup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = cfg.Storage.BackupDir
	}

	loader := load.New(cfg.Storage, os.Stdout)
	if _, err := loader.BackupFile(cfg.Storage.CSVPath, dir); err != nil {
		return fmt.Errorf("backing up dataset: %w", err)
	}
	return nil
}
