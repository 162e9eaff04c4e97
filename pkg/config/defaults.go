package config

import "time"

// Default values for configuration fields.
const (
	// Checker defaults
	DefaultCheckerKind      = "regex"
	DefaultPatternCacheSize = 512

	// Storage defaults
	DefaultStorageBackend  = "memory"
	DefaultFilePath        = "./policies.yaml"
	DefaultFileDebounceInt = 100 * time.Millisecond
	DefaultSQLitePath      = "data/policies.db"

	// Cache defaults
	DefaultEnfoldWarmUpBatch  = 10000
	DefaultGuardCacheCapacity = 1024

	// Telemetry defaults
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultMetricsNamespace = "warden"
)

// ApplyDefaults fills in default values for any unset configuration fields.
// It modifies the configuration in place.
func ApplyDefaults(cfg *Config) {
	if cfg.Checker.Kind == "" {
		cfg.Checker.Kind = DefaultCheckerKind
	}
	if cfg.Checker.PatternCacheSize == 0 {
		cfg.Checker.PatternCacheSize = DefaultPatternCacheSize
	}

	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = DefaultStorageBackend
	}
	if cfg.Storage.File.Path == "" {
		cfg.Storage.File.Path = DefaultFilePath
	}
	if cfg.Storage.File.DebounceInterval == 0 {
		cfg.Storage.File.DebounceInterval = DefaultFileDebounceInt
	}
	if cfg.Storage.SQLite.Path == "" {
		cfg.Storage.SQLite.Path = DefaultSQLitePath
	}

	if cfg.Cache.Enfold.WarmUpBatch == 0 {
		cfg.Cache.Enfold.WarmUpBatch = DefaultEnfoldWarmUpBatch
	}
	if cfg.Cache.Guard.Capacity == 0 {
		cfg.Cache.Guard.Capacity = DefaultGuardCacheCapacity
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
}
