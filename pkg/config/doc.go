// Package config defines the YAML configuration for a warden deployment
// and its loading pipeline: parse, apply defaults, apply WARDEN_* environment
// overrides, validate.
package config
