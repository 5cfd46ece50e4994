// Package config provides configuration loading and validation for the CLI
// and server. Values come from an optional JSON file, overridden by
// environment variables; missing values fall back to defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Environment variable names.
const (
	EnvCacheDir   = "DEFECTWATCH_CACHE_DIR"
	EnvAPIBase    = "DEFECTWATCH_API_BASE"
	EnvVINAPIBase = "DEFECTWATCH_VIN_API_BASE"
	EnvLogLevel   = "DEFECTWATCH_LOG_LEVEL"
	EnvPort       = "DEFECTWATCH_PORT"
)

// Config holds the runtime configuration. All fields are optional; zero
// values are replaced by defaults in Load.
type Config struct {
	CacheDir        string `json:"cache_dir,omitempty"`
	APIBase         string `json:"api_base,omitempty" validate:"omitempty,url"`
	VINAPIBase      string `json:"vin_api_base,omitempty" validate:"omitempty,url"`
	HTTPTimeoutSecs int    `json:"http_timeout_secs,omitempty" validate:"gte=0,lte=300"`
	MaxRecords      int    `json:"max_records,omitempty" validate:"gte=0,lte=5000"`
	Concurrency     int    `json:"concurrency,omitempty" validate:"gte=0,lte=64"`
	Port            int    `json:"port,omitempty" validate:"gte=0,lte=65535"`
	LogLevel        string `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	LogFormat       string `json:"log_format,omitempty" validate:"omitempty,oneof=json console"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		HTTPTimeoutSecs: 20,
		MaxRecords:      150,
		Concurrency:     6,
		Port:            8080,
		LogLevel:        "info",
		LogFormat:       "console",
	}
}

// Load reads configPath (when non-empty), applies environment overrides, fills
// defaults, and validates the result.
func Load(configPath string) (Config, error) {
	cfg := Defaults()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
		var fileCfg Config
		if err := json.Unmarshal(data, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config JSON: %w", err)
		}
		cfg = merge(cfg, fileCfg)
	}

	cfg = applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// HTTPTimeout returns the configured per-fetch timeout as a duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSecs) * time.Second
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges and formats.
func (c Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// merge overlays non-zero fields of over onto base.
func merge(base, over Config) Config {
	if over.CacheDir != "" {
		base.CacheDir = over.CacheDir
	}
	if over.APIBase != "" {
		base.APIBase = over.APIBase
	}
	if over.VINAPIBase != "" {
		base.VINAPIBase = over.VINAPIBase
	}
	if over.HTTPTimeoutSecs != 0 {
		base.HTTPTimeoutSecs = over.HTTPTimeoutSecs
	}
	if over.MaxRecords != 0 {
		base.MaxRecords = over.MaxRecords
	}
	if over.Concurrency != 0 {
		base.Concurrency = over.Concurrency
	}
	if over.Port != 0 {
		base.Port = over.Port
	}
	if over.LogLevel != "" {
		base.LogLevel = over.LogLevel
	}
	if over.LogFormat != "" {
		base.LogFormat = over.LogFormat
	}
	return base
}

func applyEnv(cfg Config) Config {
	if v := os.Getenv(EnvCacheDir); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv(EnvAPIBase); v != "" {
		cfg.APIBase = v
	}
	if v := os.Getenv(EnvVINAPIBase); v != "" {
		cfg.VINAPIBase = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	return cfg
}
