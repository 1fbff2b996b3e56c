package types

import "time"

// HTTPConfig holds shared HTTP settings for stages that call the upstream API.
type HTTPConfig struct {
	// Timeout is the per-request timeout (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ExtractConfig holds settings for the extraction stage.
type ExtractConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the upstream weather API base URL.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// APIKey authenticates against the upstream API (X-RapidAPI-Key).
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// APIHost identifies the upstream host (X-RapidAPI-Host).
	APIHost string `json:"api_host" yaml:"api_host"`

	// RetryAttempts is the per-request attempt ceiling (default 3).
	RetryAttempts int `json:"retry_attempts" yaml:"retry_attempts"`

	// RequestDelay is the unconditional delay between consecutive city
	// fetches (default 500ms).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`
}

// SinkKind selects a storage backend.
type SinkKind string

const (
	SinkCSV      SinkKind = "csv"
	SinkSQLite   SinkKind = "sqlite"
	SinkPostgres SinkKind = "postgresql"
	SinkJSON     SinkKind = "json"
)

// StorageConfig holds settings for the load stage.
type StorageConfig struct {
	// Sink selects the storage backend: csv, sqlite, postgresql, or json.
	Sink SinkKind `json:"sink" yaml:"sink"`

	// CSVPath is the flat-file destination.
	CSVPath string `json:"csv_path" yaml:"csv_path"`

	// CSVMode is append or overwrite.
	CSVMode string `json:"csv_mode" yaml:"csv_mode"`

	// SQLitePath is the SQLite database file destination.
	SQLitePath string `json:"sqlite_path" yaml:"sqlite_path"`

	// PostgresDSN is the PostgreSQL connection string.
	PostgresDSN string `json:"postgres_dsn,omitempty" yaml:"postgres_dsn,omitempty"`

	// Table is the relational table name (default weather_data).
	Table string `json:"table" yaml:"table"`

	// IfExists is the relational write policy: fail, replace, or append.
	IfExists string `json:"if_exists" yaml:"if_exists"`

	// JSONPath is the document-file destination.
	JSONPath string `json:"json_path" yaml:"json_path"`

	// BackupDir is where timestamped backups are written.
	BackupDir string `json:"backup_dir" yaml:"backup_dir"`
}

// ServerConfig holds settings for the monitoring HTTP surface.
type ServerConfig struct {
	// Port the monitoring server listens on (default 8080).
	Port string `json:"port" yaml:"port"`
}

// ScheduleConfig holds settings for the interval scheduler.
type ScheduleConfig struct {
	// Interval between scheduled pipeline runs (default 1h).
	Interval time.Duration `json:"interval" yaml:"interval"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Extract  ExtractConfig  `json:"extract" yaml:"extract"`
	Storage  StorageConfig  `json:"storage" yaml:"storage"`
	Server   ServerConfig   `json:"server" yaml:"server"`
	Schedule ScheduleConfig `json:"schedule" yaml:"schedule"`

	// Cities is the target city list for each run.
	Cities []string `json:"cities" yaml:"cities"`
}
