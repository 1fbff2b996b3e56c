// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the weather-pipeline CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/weather-pipeline/internal/config"
	"github.com/pdiddy/weather-pipeline/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// secretsDir is where credential key files are read from.
const secretsDir = ".secrets/"

// rootCmd is the base command for the weather-pipeline CLI.
var rootCmd = &cobra.Command{
	Use:   "weather-pipeline",
	Short: "ETL pipeline for current weather observations",
	Long: `weather-pipeline extracts current weather observations from upstream
APIs, normalizes them into a canonical record shape with derived features,
and loads them into CSV, SQLite, PostgreSQL, or JSON storage.

Each stage runs in sequence: run executes one full pass, serve exposes the
pipeline over HTTP with an interval scheduler, forecast and backup are
one-shot utilities.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real environments set variables directly.
		_ = godotenv.Load()
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./weather-pipeline.yaml or ~/.config/weather-pipeline/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("weather-pipeline")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "weather-pipeline"))
		}
	}

	viper.SetEnvPrefix("WEATHER_PIPELINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the validated pipeline configuration, applying
// shared flag overrides from cmd.
func loadConfig(cmd *cobra.Command) (*types.PipelineConfig, error) {
	if cmd.Flags().Changed("sink") {
		sink, _ := cmd.Flags().GetString("sink")
		viper.Set("storage.sink", sink)
	}
	if cmd.Flags().Changed("cities") {
		cities, _ := cmd.Flags().GetStringSlice("cities")
		viper.Set("cities", cities)
	}
	return config.Load(secretsDir)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
