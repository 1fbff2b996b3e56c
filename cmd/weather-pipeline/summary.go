// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/weather-pipeline/internal/extract"
	"github.com/pdiddy/weather-pipeline/internal/transform"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Fetch current conditions and print a grouped summary",
	Long: `Summary fetches current weather for the configured cities, normalizes
it, and prints per-group statistics (mean, min, max, standard deviation of
every numeric column) without writing to any sink.`,
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().String("by", "city", "group-by column (city, country, source, condition, temp_category, humidity_category, wind_category)")
	summaryCmd.Flags().StringSlice("cities", nil, "override the configured city list")
	summaryCmd.Flags().Bool("json", false, "output the summary as JSON")

	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	groupBy, _ := cmd.Flags().GetString("by")
	asJSON, _ := cmd.Flags().GetBool("json")

	extractor := extract.New(cfg.Extract)
	defer extractor.Close()

	batch := extractor.FetchMany(context.Background(), cfg.Cities, os.Stderr)
	if len(batch.Observations) == 0 {
		return fmt.Errorf("no data extracted")
	}

	result := transform.Normalize(batch.Observations, os.Stderr)
	if len(result.Records) == 0 {
		return fmt.Errorf("no records after transformation")
	}
	records := transform.DeriveFeatures(result.Records)

	rows, err := transform.Aggregate(records, groupBy)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	for _, row := range rows {
		fmt.Printf("%s: %s (%d record(s))\n", groupBy, row.Key, row.Count)
		for _, col := range []string{"temperature", "humidity", "wind_speed", "pressure"} {
			stats, ok := row.Columns[col]
			if !ok {
				continue
			}
			fmt.Printf("  %-12s mean=%.2f min=%.2f max=%.2f std=%.2f\n",
				col, stats.Mean, stats.Min, stats.Max, stats.Std)
		}
	}
	return nil
}
