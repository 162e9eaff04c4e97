package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g. "storage.backend").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate checks the configuration and returns a ValidationError collecting
// every rule that fails, or nil if the configuration is valid.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateChecker(&cfg.Checker)...)
	errs = append(errs, validateStorage(&cfg.Storage)...)
	errs = append(errs, validateCache(&cfg.Cache)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateChecker(cfg *CheckerConfig) []FieldError {
	var errs []FieldError

	switch cfg.Kind {
	case "exact", "fuzzy", "regex", "rules":
	default:
		errs = append(errs, FieldError{
			Field:   "checker.kind",
			Message: fmt.Sprintf("must be one of exact, fuzzy, regex, rules (got %q)", cfg.Kind),
		})
	}

	return errs
}

func validateStorage(cfg *StorageConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "memory":
	case "file":
		if cfg.File.Path == "" {
			errs = append(errs, FieldError{Field: "storage.file.path", Message: "must not be empty"})
		}
		if cfg.File.DebounceInterval < 0 {
			errs = append(errs, FieldError{Field: "storage.file.debounce_interval", Message: "must not be negative"})
		}
	case "sqlite":
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{Field: "storage.sqlite.path", Message: "must not be empty"})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("must be one of memory, file, sqlite (got %q)", cfg.Backend),
		})
	}

	return errs
}

func validateCache(cfg *CacheConfig) []FieldError {
	var errs []FieldError

	if cfg.Enfold.Enabled && cfg.Enfold.WarmUpBatch <= 0 {
		errs = append(errs, FieldError{Field: "cache.enfold.warm_up_batch", Message: "must be positive"})
	}
	if cfg.Enfold.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Enfold.RefreshSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "cache.enfold.refresh_schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}
	if cfg.Guard.Enabled && cfg.Guard.Capacity <= 0 {
		errs = append(errs, FieldError{Field: "cache.guard.capacity", Message: "must be positive"})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("must be one of debug, info, warn, error (got %q)", cfg.Logging.Level),
		})
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("must be json or text (got %q)", cfg.Logging.Format),
		})
	}

	return errs
}
