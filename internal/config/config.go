package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"ecoscan/internal/paths"
)

// EnvPrefix prefixes every environment override, e.g. ECOSCAN_DATASET_TOKEN.
const EnvPrefix = "ECOSCAN"

// Config represents the complete ecoscan configuration
type Config struct {
	Logging LoggingConfig `json:"logging" toml:"logging" mapstructure:"logging"`
	Server  ServerConfig  `json:"server" toml:"server" mapstructure:"server"`
	Storage StorageConfig `json:"storage" toml:"storage" mapstructure:"storage"`
	Dataset DatasetConfig `json:"dataset" toml:"dataset" mapstructure:"dataset"`
	Report  ReportConfig  `json:"report" toml:"report" mapstructure:"report"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" toml:"format" mapstructure:"format"`
	Level  string `json:"level" toml:"level" mapstructure:"level"`
}

// ServerConfig contains the HTTP front end configuration
type ServerConfig struct {
	Addr           string `json:"addr" toml:"addr" mapstructure:"addr"`
	UploadDir      string `json:"uploadDir" toml:"uploadDir" mapstructure:"uploadDir"`
	OptimizedDir   string `json:"optimizedDir" toml:"optimizedDir" mapstructure:"optimizedDir"`
	MaxUploadBytes int64  `json:"maxUploadBytes" toml:"maxUploadBytes" mapstructure:"maxUploadBytes"`
}

// StorageConfig contains run history configuration
type StorageConfig struct {
	Enabled bool   `json:"enabled" toml:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" toml:"path" mapstructure:"path"`
	// CacheTTLSeconds bounds how long analysis results are reused for
	// identical source. 0 disables the cache.
	CacheTTLSeconds int `json:"cacheTTLSeconds" toml:"cacheTTLSeconds" mapstructure:"cacheTTLSeconds"`
}

// DatasetConfig contains dataset pipeline configuration
type DatasetConfig struct {
	Query                 string `json:"query" toml:"query" mapstructure:"query"`
	MaxRepos              int    `json:"maxRepos" toml:"maxRepos" mapstructure:"maxRepos"`
	RawDir                string `json:"rawDir" toml:"rawDir" mapstructure:"rawDir"`
	CSVPath               string `json:"csvPath" toml:"csvPath" mapstructure:"csvPath"`
	FetchedLog            string `json:"fetchedLog" toml:"fetchedLog" mapstructure:"fetchedLog"`
	Token                 string `json:"-" toml:"token,omitempty" mapstructure:"token"`
	APIBaseURL            string `json:"apiBaseURL" toml:"apiBaseURL" mapstructure:"apiBaseURL"`
	Workers               int    `json:"workers" toml:"workers" mapstructure:"workers"`
	LongFunctionThreshold int    `json:"longFunctionThreshold" toml:"longFunctionThreshold" mapstructure:"longFunctionThreshold"`
}

// ReportConfig contains report output configuration
type ReportConfig struct {
	OutDir string `json:"outDir" toml:"outDir" mapstructure:"outDir"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
		Server: ServerConfig{
			Addr:           "localhost:5000",
			UploadDir:      "uploads",
			OptimizedDir:   "optimized",
			MaxUploadBytes: 4 << 20,
		},
		Storage: StorageConfig{
			Enabled: true,
			Path:    filepath.Join(paths.DataDirName, "ecoscan.db"),

			CacheTTLSeconds: 3600,
		},
		Dataset: DatasetConfig{
			Query:                 "language:python",
			MaxRepos:              50,
			RawDir:                filepath.Join("dataset", "raw_code_samples"),
			CSVPath:               filepath.Join("dataset", "labelled_dataset.csv"),
			FetchedLog:            filepath.Join("dataset", "fetched_repos.log"),
			APIBaseURL:            "https://api.github.com",
			Workers:               4,
			LongFunctionThreshold: 15,
		},
		Report: ReportConfig{
			OutDir: "reports",
		},
	}
}

// setDefaults registers every key so that environment overrides reach
// Unmarshal even when no config file sets them.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.uploadDir", d.Server.UploadDir)
	v.SetDefault("server.optimizedDir", d.Server.OptimizedDir)
	v.SetDefault("server.maxUploadBytes", d.Server.MaxUploadBytes)

	v.SetDefault("storage.enabled", d.Storage.Enabled)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.cacheTTLSeconds", d.Storage.CacheTTLSeconds)

	v.SetDefault("dataset.query", d.Dataset.Query)
	v.SetDefault("dataset.maxRepos", d.Dataset.MaxRepos)
	v.SetDefault("dataset.rawDir", d.Dataset.RawDir)
	v.SetDefault("dataset.csvPath", d.Dataset.CSVPath)
	v.SetDefault("dataset.fetchedLog", d.Dataset.FetchedLog)
	v.SetDefault("dataset.token", d.Dataset.Token)
	v.SetDefault("dataset.apiBaseURL", d.Dataset.APIBaseURL)
	v.SetDefault("dataset.workers", d.Dataset.Workers)
	v.SetDefault("dataset.longFunctionThreshold", d.Dataset.LongFunctionThreshold)

	v.SetDefault("report.outDir", d.Report.OutDir)
}

// LoadConfig loads configuration from <root>/.ecoscan/config.{toml,json,yaml}
// layered over the defaults, then applies ECOSCAN_* environment overrides.
// A missing config file is not an error.
func LoadConfig(root string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigName("config")
	v.AddConfigPath(paths.DataDir(root))
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.Dataset.Token == "" {
		cfg.Dataset.Token = os.Getenv("GITHUB_TOKEN")
	}

	return &cfg, nil
}

// Save writes the configuration to <root>/.ecoscan/config.toml and returns
// the path written. The API token is never persisted.
func (c *Config) Save(root string) (string, error) {
	if _, err := paths.EnsureDataDir(root); err != nil {
		return "", err
	}

	out := *c
	out.Dataset.Token = ""
	data, err := toml.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}

	path := paths.ConfigPath(root)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

var (
	validLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	validFormats = map[string]bool{"human": true, "json": true}
)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return &ConfigError{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", c.Logging.Level)}
	}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return &ConfigError{Field: "logging.format", Message: fmt.Sprintf("unknown format %q", c.Logging.Format)}
	}
	if c.Server.Addr == "" {
		return &ConfigError{Field: "server.addr", Message: "must not be empty"}
	}
	if c.Server.MaxUploadBytes <= 0 {
		return &ConfigError{Field: "server.maxUploadBytes", Message: "must be positive"}
	}
	if c.Storage.Enabled && c.Storage.Path == "" {
		return &ConfigError{Field: "storage.path", Message: "required when storage is enabled"}
	}
	if c.Storage.CacheTTLSeconds < 0 {
		return &ConfigError{Field: "storage.cacheTTLSeconds", Message: "must not be negative"}
	}
	if c.Dataset.MaxRepos < 1 {
		return &ConfigError{Field: "dataset.maxRepos", Message: "must be at least 1"}
	}
	if c.Dataset.Workers < 1 {
		return &ConfigError{Field: "dataset.workers", Message: "must be at least 1"}
	}
	if c.Dataset.LongFunctionThreshold < 1 {
		return &ConfigError{Field: "dataset.longFunctionThreshold", Message: "must be at least 1"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
