// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/weather-pipeline/internal/extract"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast <city>",
	Short: "Fetch the multi-day forecast for a city",
	Long: `Forecast fetches the upstream forecast payload for a single city and
prints it as indented JSON. Days are clamped to the upstream maximum of 10.`,
	Args: cobra.ExactArgs(1),
	RunE: runForecast,
}

func init() {
	forecastCmd.Flags().Int("days", 3, "number of forecast days (1-10)")

	rootCmd.AddCommand(forecastCmd)
}

func runForecast(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	days, _ := cmd.Flags().GetInt("days")

	extractor := extract.New(cfg.Extract)
	defer extractor.Close()

	obs, err := extractor.FetchForecast(context.Background(), args[0], days)
	if err != nil {
		return fmt.Errorf("fetching forecast for %s: %w", args[0], err)
	}

	var pretty map[string]any
	if err := json.Unmarshal(obs.Payload, &pretty); err != nil {
		return fmt.Errorf("decoding forecast payload: %w", err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(pretty)
}
