package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"warden-hq/warden/pkg/cache"
	"warden-hq/warden/pkg/checker"
	"warden-hq/warden/pkg/config"
	"warden-hq/warden/pkg/guard"
	"warden-hq/warden/pkg/pattern"
	"warden-hq/warden/pkg/policy"
	"warden-hq/warden/pkg/storage"
	filestorage "warden-hq/warden/pkg/storage/file"
	sqlitestorage "warden-hq/warden/pkg/storage/sqlite"
	"warden-hq/warden/pkg/telemetry/metrics"
)

var checkFlags struct {
	checkerKind string
	logLevel    string
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate inquiries against the configured policy set",
	Long: `Evaluate access inquiries against the configured policy set.

Inquiries are read from stdin as a stream of JSON objects, one decision
is printed per inquiry ("allow" or "deny"), and the command exits once
stdin is exhausted.

Examples:
  # Evaluate a single inquiry
  echo '{"subject":"Henry","action":"get","resource":"books"}' | warden check

  # Evaluate with the rule-based strategy regardless of config
  warden check --checker rules

  # Evaluate against a policy file
  warden check --config /etc/warden/config.yaml`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkFlags.checkerKind, "checker", "", "override matching strategy (exact, fuzzy, regex, rules)")
	checkCmd.Flags().StringVar(&checkFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if checkFlags.checkerKind != "" {
		cfg.Checker.Kind = checkFlags.checkerKind
	}
	if checkFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = checkFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := buildLogger(cfg.Telemetry.Logging)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, cleanup, err := buildGuard(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	decoder := json.NewDecoder(os.Stdin)
	for decoder.More() {
		var inquiry policy.Inquiry
		if err := decoder.Decode(&inquiry); err != nil {
			return fmt.Errorf("failed to decode inquiry: %w", err)
		}
		if g.IsAllowed(ctx, &inquiry) {
			fmt.Println("allow")
		} else {
			fmt.Println("deny")
		}
	}
	return nil
}

func buildLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

// buildGuard assembles the storage backend, caching tiers, checker, and
// guard described by cfg. The returned cleanup closes whatever the
// assembly opened.
func buildGuard(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*guard.Guard, func(), error) {
	cleanup := func() {}

	var st storage.Storage
	var fileBackend *filestorage.Storage
	switch cfg.Storage.Backend {
	case "memory":
		st = storage.NewMemoryStorage(logger)
	case "file":
		fs, err := filestorage.New(cfg.Storage.File.Path,
			filestorage.WithLogger(logger),
			filestorage.WithDebounceInterval(cfg.Storage.File.DebounceInterval),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open policy file: %w", err)
		}
		if cfg.Storage.File.Watch {
			go func() {
				if err := fs.Watch(ctx); err != nil {
					logger.Error("policy file watch failed", "error", err)
				}
			}()
		}
		fileBackend = fs
		st = fs
	case "sqlite":
		ss, err := sqlitestorage.New(cfg.Storage.SQLite.Path, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open policy database: %w", err)
		}
		cleanup = func() {
			if err := ss.Close(); err != nil {
				logger.Warn("failed to close policy database", "error", err)
			}
		}
		st = ss
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	var registry *prometheus.Registry
	var cacheMetrics *metrics.CacheMetrics
	if cfg.Telemetry.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		cacheMetrics = metrics.NewCacheMetrics(cfg.Telemetry.Metrics.Namespace, registry)
	}

	if cfg.Cache.Enfold.Enabled {
		enfoldOpts := []cache.EnfoldOption{
			cache.WithWarmUpBatch(cfg.Cache.Enfold.WarmUpBatch),
			cache.WithEnfoldLogger(logger),
		}
		if cacheMetrics != nil {
			enfoldOpts = append(enfoldOpts, cache.WithEnfoldMetrics(cacheMetrics))
		}
		enfold := cache.NewEnfoldCache(st, storage.NewMemoryStorage(logger), enfoldOpts...)
		if err := enfold.WarmUp(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to warm up policy cache: %w", err)
		}
		if cfg.Cache.Enfold.RefreshSchedule != "" {
			refresher := cache.NewRefresher(cfg.Cache.Enfold.RefreshSchedule, enfold.WarmUp, logger)
			if err := refresher.Start(ctx); err != nil {
				return nil, nil, fmt.Errorf("failed to start cache refresher: %w", err)
			}
			closeBackend := cleanup
			cleanup = func() {
				refresher.Stop()
				closeBackend()
			}
		}
		st = enfold
	}

	if cfg.Cache.Guard.Enabled {
		observable := storage.NewObservable(st)
		guardOpts := []cache.GuardOption{
			cache.WithCapacity(cfg.Cache.Guard.Capacity),
			cache.WithGuardLogger(logger),
		}
		if cacheMetrics != nil {
			guardOpts = append(guardOpts, cache.WithGuardMetrics(cacheMetrics))
		}
		gc := cache.NewGuardCache(observable, guardOpts...)
		observable.Subscribe(gc)
		if fileBackend != nil {
			fileBackend.Subscribe(gc)
		}
		gc.MarkFresh()
		st = gc
	}

	compiler := pattern.NewCompiler(cfg.Checker.PatternCacheSize)
	chk, err := checker.New(checker.Kind(cfg.Checker.Kind), compiler)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build checker: %w", err)
	}

	opts := []guard.Option{guard.WithLogger(logger)}
	if registry != nil {
		opts = append(opts,
			guard.WithMetrics(metrics.NewDecisionMetrics(cfg.Telemetry.Metrics.Namespace, registry)))
	}
	return guard.New(st, chk, opts...), cleanup, nil
}
