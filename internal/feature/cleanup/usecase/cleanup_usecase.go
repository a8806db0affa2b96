package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Task names, in execution order. Pending users go before codes so that codes
// owned by expired registrations are removed with their parent.
const (
	TaskPendingUsers      = "pending_users"
	TaskVerificationCodes = "verification_codes"
	TaskResetTokens       = "reset_tokens"
	TaskRateLimitLogs     = "rate_limit_logs"
	TaskSessions          = "sessions"
	TaskOrphanExpenses    = "orphan_expenses"
	TaskOrphanCategories  = "orphan_categories"
)

// taskFailed is the report entry for a failed sub-task.
const taskFailed = "failed"

// Config holds the retention windows and loop timing.
type Config struct {
	PendingUserTTL     time.Duration
	RateLimitRetention time.Duration
	Interval           time.Duration
	RetryInterval      time.Duration
}

// Report is the outcome of one RunAll pass.
type Report struct {
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Results    map[string]int64  `json:"results"`
	Errors     map[string]string `json:"errors,omitempty"`
}

// Failed reports whether any sub-task failed.
func (r *Report) Failed() bool {
	return len(r.Errors) > 0
}

// Total is the number of rows removed across all sub-tasks.
func (r *Report) Total() int64 {
	var n int64
	for _, c := range r.Results {
		n += c
	}
	return n
}

// invalidator is implemented by caching stats decorators.
type invalidator interface {
	Invalidate(ctx context.Context) error
}

type task struct {
	name string
	run  func(ctx context.Context, now time.Time) (int64, error)
}

// CleanupUsecase runs the purge sub-tasks.
type CleanupUsecase struct {
	store    Store
	sessions SessionPurger
	stats    StatsRepository
	cfg      Config
	now      func() time.Time
}

// NewCleanupUsecase creates a CleanupUsecase.
func NewCleanupUsecase(store Store, sessions SessionPurger, stats StatsRepository, cfg Config) *CleanupUsecase {
	return &CleanupUsecase{store: store, sessions: sessions, stats: stats, cfg: cfg, now: time.Now}
}

// WithClock replaces the time source.
func (u *CleanupUsecase) WithClock(now func() time.Time) *CleanupUsecase {
	u.now = now
	return u
}

func (u *CleanupUsecase) tasks() []task {
	return []task{
		{TaskPendingUsers, func(ctx context.Context, now time.Time) (int64, error) {
			return u.store.DeleteExpiredPendingUsers(ctx, now.Add(-u.cfg.PendingUserTTL))
		}},
		{TaskVerificationCodes, u.store.DeleteExpiredVerificationCodes},
		{TaskResetTokens, u.store.DeleteStaleResetTokens},
		{TaskRateLimitLogs, func(ctx context.Context, now time.Time) (int64, error) {
			return u.store.DeleteRateLimitLogsBefore(ctx, now.Add(-u.cfg.RateLimitRetention))
		}},
		{TaskSessions, func(ctx context.Context, _ time.Time) (int64, error) {
			return u.sessions.DeleteExpired(ctx)
		}},
		{TaskOrphanExpenses, func(ctx context.Context, _ time.Time) (int64, error) {
			return u.store.DeleteOrphanExpenses(ctx)
		}},
		{TaskOrphanCategories, func(ctx context.Context, _ time.Time) (int64, error) {
			return u.store.DeleteOrphanCategories(ctx)
		}},
	}
}

// RunAll runs every sub-task once. A failing sub-task is recorded in the report and
// does not stop the others.
func (u *CleanupUsecase) RunAll(ctx context.Context) *Report {
	report := &Report{
		StartedAt: u.now().UTC(),
		Results:   make(map[string]int64),
		Errors:    make(map[string]string),
	}

	for _, t := range u.tasks() {
		n, err := runIsolated(ctx, t, u.now().UTC())
		report.Results[t.name] = n
		if err != nil {
			// The cause stays in the log; reports are served to clients.
			report.Errors[t.name] = taskFailed
			slog.Error("cleanup task failed", "task", t.name, "error", err)
		}
	}

	report.FinishedAt = u.now().UTC()
	if inv, ok := u.stats.(invalidator); ok && report.Total() > 0 {
		if err := inv.Invalidate(ctx); err != nil {
			slog.Warn("failed to invalidate cached stats", "error", err)
		}
	}
	slog.Info("cleanup finished", "deleted", report.Total(), "failed_tasks", len(report.Errors))
	return report
}

func runIsolated(ctx context.Context, t task, now time.Time) (n int64, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("panic: %v", r)
		}
	}()
	return t.run(ctx, now)
}

// Run calls RunAll every Interval until ctx is cancelled. After a pass with any
// failed sub-task the next pass is scheduled after RetryInterval instead.
func (u *CleanupUsecase) Run(ctx context.Context) {
	slog.Info("cleanup loop started", "interval", u.cfg.Interval, "retry_interval", u.cfg.RetryInterval)
	timer := time.NewTimer(u.nextDelay(u.RunAll(ctx)))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup loop stopped")
			return
		case <-timer.C:
			timer.Reset(u.nextDelay(u.RunAll(ctx)))
		}
	}
}

func (u *CleanupUsecase) nextDelay(r *Report) time.Duration {
	if r.Failed() {
		return u.cfg.RetryInterval
	}
	return u.cfg.Interval
}

// Stats returns row counts per table.
func (u *CleanupUsecase) Stats(ctx context.Context) (map[string]int64, error) {
	counts, err := u.stats.TableCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}
	return counts, nil
}
