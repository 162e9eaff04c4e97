package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"warden-hq/warden/pkg/config"
	"warden-hq/warden/pkg/policy"
)

func TestBuildLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		enabled slog.Level
		muted   slog.Level
	}{
		{name: "debug json", level: "debug", format: "json", enabled: slog.LevelDebug, muted: slog.LevelDebug - 1},
		{name: "warn text", level: "warn", format: "text", enabled: slog.LevelWarn, muted: slog.LevelInfo},
		{name: "unknown defaults to info", level: "chatty", format: "json", enabled: slog.LevelInfo, muted: slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := buildLogger(config.LoggingConfig{Level: tt.level, Format: tt.format})
			ctx := context.Background()
			if !logger.Enabled(ctx, tt.enabled) {
				t.Errorf("level %v should be enabled", tt.enabled)
			}
			if logger.Enabled(ctx, tt.muted) {
				t.Errorf("level %v should be muted", tt.muted)
			}
		})
	}
}

func TestBuildGuardEmptyMemoryBackendDenies(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	g, cleanup, err := buildGuard(context.Background(), cfg, slog.Default())
	if err != nil {
		t.Fatalf("buildGuard: %v", err)
	}
	defer cleanup()

	inquiry := &policy.Inquiry{Subject: "Max", Action: "read", Resource: "book"}
	if g.IsAllowed(context.Background(), inquiry) {
		t.Error("empty policy set must deny")
	}
}

func TestBuildGuardFileBackendWithCaches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policies.yaml")
	doc := `policies:
  - uid: readers
    effect: allow
    subjects: ["<Ben|Henry>"]
    resources: ["book"]
    actions: ["<read|get>"]
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write policies: %v", err)
	}

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Storage.Backend = "file"
	cfg.Storage.File.Path = path
	cfg.Cache.Enfold.Enabled = true
	cfg.Cache.Guard.Enabled = true
	cfg.Telemetry.Metrics.Enabled = true

	g, cleanup, err := buildGuard(context.Background(), cfg, slog.Default())
	if err != nil {
		t.Fatalf("buildGuard: %v", err)
	}
	defer cleanup()

	ctx := context.Background()
	allowed := &policy.Inquiry{Subject: "Henry", Action: "get", Resource: "book"}
	if !g.IsAllowed(ctx, allowed) {
		t.Error("Henry reading book should be allowed")
	}
	// Second evaluation hits the decision cache.
	if !g.IsAllowed(ctx, allowed) {
		t.Error("memoized decision should still allow")
	}
	denied := &policy.Inquiry{Subject: "Sally", Action: "get", Resource: "book"}
	if g.IsAllowed(ctx, denied) {
		t.Error("Sally is not covered by any policy")
	}
}

func TestBuildGuardRejectsUnknownBackend(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Storage.Backend = "etcd"

	if _, _, err := buildGuard(context.Background(), cfg, slog.Default()); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
