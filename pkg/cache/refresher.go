package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Refresher runs a refresh job on a cron schedule, typically re-warming an
// EnfoldCache's cache tier and marking a GuardCache fresh afterwards:
//
//	r := cache.NewRefresher("*/5 * * * *", func(ctx context.Context) error {
//		if err := enfold.WarmUp(ctx); err != nil {
//			return err
//		}
//		decisions.MarkFresh()
//		return nil
//	}, nil)
//
// It exists for deployments where other writers mutate the primary store
// behind the engine's back and no mutation notifications are available.
type Refresher struct {
	schedule string
	job      func(context.Context) error
	cron     *cron.Cron
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewRefresher creates a refresher. The schedule uses standard five-field
// cron syntax (e.g. "*/5 * * * *" for every five minutes).
func NewRefresher(schedule string, job func(context.Context) error, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		schedule: schedule,
		job:      job,
		cron:     cron.New(),
		logger:   logger.With("component", "cache.refresher"),
	}
}

// Start validates the schedule and begins running the job. The refresher
// stops when ctx is cancelled or Stop is called.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("cache: refresher already running")
	}

	if _, err := cron.ParseStandard(r.schedule); err != nil {
		return fmt.Errorf("cache: invalid refresh schedule %q: %w", r.schedule, err)
	}

	if _, err := r.cron.AddFunc(r.schedule, func() {
		r.runJob(ctx)
	}); err != nil {
		return fmt.Errorf("cache: schedule refresh job: %w", err)
	}

	r.cron.Start()
	r.running = true
	r.logger.Info("cache refresher started", "schedule", r.schedule)

	go func() {
		<-ctx.Done()
		r.Stop()
	}()

	return nil
}

// Stop halts the schedule. A run already in flight completes.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}
	r.cron.Stop()
	r.running = false
	r.logger.Info("cache refresher stopped")
}

func (r *Refresher) runJob(ctx context.Context) {
	if err := r.job(ctx); err != nil {
		r.logger.Error("cache refresh failed", "error", err)
		return
	}
	r.logger.Debug("cache refreshed")
}
