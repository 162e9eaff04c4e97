package config

import "time"

// Config is the root configuration structure for a warden deployment. It
// covers the matching strategy, the policy storage backend, the caching
// tiers, and telemetry.
type Config struct {
	// Checker selects and tunes the policy matching strategy.
	Checker CheckerConfig `yaml:"checker"`

	// Storage selects and configures the policy storage backend.
	Storage StorageConfig `yaml:"storage"`

	// Cache configures the read-through policy cache and the decision cache.
	Cache CacheConfig `yaml:"cache"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// CheckerConfig selects the matching strategy applied by the guard.
type CheckerConfig struct {
	// Kind is the matching strategy.
	// Options: "exact", "fuzzy", "regex", "rules"
	// Default: "regex"
	Kind string `yaml:"kind"`

	// PatternCacheSize is the capacity of the compiled-template cache used
	// by the regex strategy. Zero or negative disables memoization.
	// Default: 512
	PatternCacheSize int `yaml:"pattern_cache_size"`
}

// StorageConfig selects the policy storage backend.
type StorageConfig struct {
	// Backend is the storage implementation.
	// Options: "memory", "file", "sqlite"
	// Default: "memory"
	Backend string `yaml:"backend"`

	// File configures the YAML file backend. Used when Backend is "file".
	File FileStorageConfig `yaml:"file"`

	// SQLite configures the SQLite backend. Used when Backend is "sqlite".
	SQLite SQLiteStorageConfig `yaml:"sqlite"`
}

// FileStorageConfig configures the YAML file backend.
type FileStorageConfig struct {
	// Path is the policy document location.
	// Default: "./policies.yaml"
	Path string `yaml:"path"`

	// Watch enables reloading the policy set when the file changes on disk.
	// Default: false
	Watch bool `yaml:"watch"`

	// DebounceInterval is how long the watcher waits after a change before
	// reloading.
	// Default: 100ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// SQLiteStorageConfig configures the SQLite backend.
type SQLiteStorageConfig struct {
	// Path is the database file location.
	// Default: "data/policies.db"
	Path string `yaml:"path"`
}

// CacheConfig configures the caching tiers in front of storage.
type CacheConfig struct {
	// Enfold enables the read-through policy cache that keeps the full
	// policy set in memory in front of the backend.
	Enfold EnfoldConfig `yaml:"enfold"`

	// Guard enables memoization of FindForInquiry results keyed by inquiry.
	Guard GuardCacheConfig `yaml:"guard"`
}

// EnfoldConfig configures the read-through policy cache.
type EnfoldConfig struct {
	// Enabled controls whether the cache tier is used at all.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// WarmUpBatch is the page size used when populating the cache from the
	// backend.
	// Default: 10000
	WarmUpBatch int `yaml:"warm_up_batch"`

	// RefreshSchedule is an optional cron expression (standard five-field
	// form) for periodic re-warming. Empty disables scheduled refresh.
	// Default: ""
	RefreshSchedule string `yaml:"refresh_schedule"`
}

// GuardCacheConfig configures the per-inquiry decision candidate cache.
type GuardCacheConfig struct {
	// Enabled controls whether FindForInquiry results are memoized.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Capacity is the maximum number of memoized inquiries.
	// Default: 1024
	Capacity int `yaml:"capacity"`
}

// TelemetryConfig contains logging and metrics configuration.
type TelemetryConfig struct {
	// Logging configures the structured logger.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures Prometheus metric collection.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is the minimum log level.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig configures Prometheus metric collection.
type MetricsConfig struct {
	// Enabled controls whether collectors are registered.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Namespace prefixes every metric name.
	// Default: "warden"
	Namespace string `yaml:"namespace"`
}
