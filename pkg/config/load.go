package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path,
// applies defaults and validates the result. Environment variables are not
// consulted; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Variables follow the naming convention
// WARDEN_SECTION_FIELD (e.g. WARDEN_STORAGE_BACKEND) and always take
// precedence over file-based configuration.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("WARDEN_CHECKER_KIND"); val != "" {
		cfg.Checker.Kind = val
	}
	if val := os.Getenv("WARDEN_CHECKER_PATTERN_CACHE_SIZE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Checker.PatternCacheSize = n
		}
	}

	if val := os.Getenv("WARDEN_STORAGE_BACKEND"); val != "" {
		cfg.Storage.Backend = val
	}
	if val := os.Getenv("WARDEN_STORAGE_FILE_PATH"); val != "" {
		cfg.Storage.File.Path = val
	}
	if val := os.Getenv("WARDEN_STORAGE_FILE_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Storage.File.Watch = b
		}
	}
	if val := os.Getenv("WARDEN_STORAGE_FILE_DEBOUNCE_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Storage.File.DebounceInterval = d
		}
	}
	if val := os.Getenv("WARDEN_STORAGE_SQLITE_PATH"); val != "" {
		cfg.Storage.SQLite.Path = val
	}

	if val := os.Getenv("WARDEN_CACHE_ENFOLD_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Cache.Enfold.Enabled = b
		}
	}
	if val := os.Getenv("WARDEN_CACHE_ENFOLD_WARM_UP_BATCH"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Cache.Enfold.WarmUpBatch = n
		}
	}
	if val := os.Getenv("WARDEN_CACHE_ENFOLD_REFRESH_SCHEDULE"); val != "" {
		cfg.Cache.Enfold.RefreshSchedule = val
	}
	if val := os.Getenv("WARDEN_CACHE_GUARD_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Cache.Guard.Enabled = b
		}
	}
	if val := os.Getenv("WARDEN_CACHE_GUARD_CAPACITY"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Cache.Guard.Capacity = n
		}
	}

	if val := os.Getenv("WARDEN_TELEMETRY_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("WARDEN_TELEMETRY_LOG_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("WARDEN_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("WARDEN_TELEMETRY_METRICS_NAMESPACE"); val != "" {
		cfg.Telemetry.Metrics.Namespace = val
	}
}
