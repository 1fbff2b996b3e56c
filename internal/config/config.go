// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config assembles the pipeline configuration from viper settings,
// environment variables, and the .secrets/ directory. Precedence is
// flags > environment > config file > secrets > defaults.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/weather-pipeline/internal/secrets"
	"github.com/pdiddy/weather-pipeline/pkg/types"
)

// Defaults applied when neither config file nor environment provides a value.
const (
	DefaultBaseURL       = "https://weatherapi-com.p.rapidapi.com"
	DefaultAPIHost       = "weatherapi-com.p.rapidapi.com"
	DefaultTimeout       = 30 * time.Second
	DefaultRetryAttempts = 3
	DefaultRequestDelay  = 500 * time.Millisecond
	DefaultUserAgent     = "weather-pipeline/0.1"
	DefaultTable         = "weather_data"
	DefaultCSVPath       = "./data/weather_data.csv"
	DefaultSQLitePath    = "./data/weather_data.db"
	DefaultJSONPath      = "./data/weather_data.json"
	DefaultBackupDir     = "./backups"
	DefaultInterval      = time.Hour
	DefaultPort          = "8080"
)

// DefaultCities is used when no city list is configured.
var DefaultCities = []string{"London", "New York", "Tokyo"}

// ConfigurationError indicates an invalid or incomplete configuration.
// The pipeline refuses to start a run with one of these outstanding.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Reason)
}

// Load builds the pipeline configuration. Viper must already have read the
// config file and bound the environment; secretsDir supplies credential
// fallbacks for values absent from both.
func Load(secretsDir string) (*types.PipelineConfig, error) {
	setDefaults()
	bindEnvAliases()

	sec, err := secrets.Load(secretsDir)
	if err != nil {
		return nil, fmt.Errorf("loading secrets: %w", err)
	}

	cfg := &types.PipelineConfig{
		Extract: types.ExtractConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("extract.timeout"),
				UserAgent: DefaultUserAgent,
			},
			BaseURL:       viper.GetString("extract.base_url"),
			APIKey:        firstNonEmpty(viper.GetString("extract.api_key"), sec["rapidapi-key"]),
			APIHost:       firstNonEmpty(viper.GetString("extract.api_host"), sec["rapidapi-host"]),
			RetryAttempts: viper.GetInt("extract.retry_attempts"),
			RequestDelay:  viper.GetDuration("extract.request_delay"),
		},
		Storage: types.StorageConfig{
			Sink:        types.SinkKind(viper.GetString("storage.sink")),
			CSVPath:     viper.GetString("storage.csv_path"),
			CSVMode:     viper.GetString("storage.csv_mode"),
			SQLitePath:  viper.GetString("storage.sqlite_path"),
			PostgresDSN: firstNonEmpty(viper.GetString("storage.postgres_dsn"), sec["postgres-dsn"]),
			Table:       viper.GetString("storage.table"),
			IfExists:    viper.GetString("storage.if_exists"),
			JSONPath:    viper.GetString("storage.json_path"),
			BackupDir:   viper.GetString("storage.backup_dir"),
		},
		Server: types.ServerConfig{
			Port: viper.GetString("server.port"),
		},
		Schedule: types.ScheduleConfig{
			Interval: viper.GetDuration("schedule.interval"),
		},
		Cities: viper.GetStringSlice("cities"),
	}

	if len(cfg.Cities) == 0 {
		cfg.Cities = append([]string(nil), DefaultCities...)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is runnable. A missing API key is
// fatal here rather than mid-run, so a misconfigured deployment fails fast.
func Validate(cfg *types.PipelineConfig) error {
	if cfg.Extract.APIKey == "" {
		return &ConfigurationError{
			Key:    "extract.api_key",
			Reason: "no API key found; set WEATHER_PIPELINE_EXTRACT_API_KEY or create .secrets/rapidapi-key",
		}
	}
	switch cfg.Storage.Sink {
	case types.SinkCSV, types.SinkSQLite, types.SinkPostgres, types.SinkJSON:
	default:
		return &ConfigurationError{
			Key:    "storage.sink",
			Reason: fmt.Sprintf("unknown sink %q", cfg.Storage.Sink),
		}
	}
	if cfg.Storage.Sink == types.SinkPostgres && cfg.Storage.PostgresDSN == "" {
		return &ConfigurationError{
			Key:    "storage.postgres_dsn",
			Reason: "postgresql sink selected but no DSN configured",
		}
	}
	if cfg.Extract.RetryAttempts < 1 {
		return &ConfigurationError{
			Key:    "extract.retry_attempts",
			Reason: "must be at least 1",
		}
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("extract.base_url", DefaultBaseURL)
	viper.SetDefault("extract.api_host", DefaultAPIHost)
	viper.SetDefault("extract.timeout", DefaultTimeout)
	viper.SetDefault("extract.retry_attempts", DefaultRetryAttempts)
	viper.SetDefault("extract.request_delay", DefaultRequestDelay)
	viper.SetDefault("storage.sink", string(types.SinkCSV))
	viper.SetDefault("storage.csv_path", DefaultCSVPath)
	viper.SetDefault("storage.csv_mode", "append")
	viper.SetDefault("storage.sqlite_path", DefaultSQLitePath)
	viper.SetDefault("storage.table", DefaultTable)
	viper.SetDefault("storage.if_exists", "append")
	viper.SetDefault("storage.json_path", DefaultJSONPath)
	viper.SetDefault("storage.backup_dir", DefaultBackupDir)
	viper.SetDefault("server.port", DefaultPort)
	viper.SetDefault("schedule.interval", DefaultInterval)
}

// bindEnvAliases accepts the upstream credential names alongside the
// WEATHER_PIPELINE_ prefixed forms.
func bindEnvAliases() {
	viper.BindEnv("extract.api_key", "WEATHER_PIPELINE_EXTRACT_API_KEY", "RAPIDAPI_KEY")
	viper.BindEnv("extract.api_host", "WEATHER_PIPELINE_EXTRACT_API_HOST", "RAPIDAPI_HOST")
	viper.BindEnv("extract.base_url", "WEATHER_PIPELINE_EXTRACT_BASE_URL", "WEATHER_API_BASE_URL")
	viper.BindEnv("storage.postgres_dsn", "WEATHER_PIPELINE_STORAGE_POSTGRES_DSN", "POSTGRES_DSN")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
