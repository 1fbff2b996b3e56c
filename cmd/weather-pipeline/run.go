// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pdiddy/weather-pipeline/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one full extract-transform-load pass",
	Long: `Run executes the pipeline once: fetch current weather for each
configured city, normalize and derive features, and persist to the
configured sink. Per-city failures are reported and skipped; a run fails
only when no data survives a stage or the sink write fails.`,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().StringSlice("cities", nil, "override the configured city list")
	runCmd.Flags().String("sink", "", "override the configured sink (csv, sqlite, postgresql, json)")

	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	orch := pipeline.New(*cfg, os.Stdout)
	return orch.Execute(ctx, nil)
}
