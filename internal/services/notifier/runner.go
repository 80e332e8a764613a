package notifier

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	mCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reminder_cycles_total", Help: "Notification cycles started",
	})
	mSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reminder_emails_sent_total", Help: "Reminders sent and recorded",
	})
	mDeduped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reminder_deduped_total", Help: "Ledger conflicts treated as success",
	})
	mFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reminder_unit_errors_total", Help: "Units that failed (send or storage)",
	})
	mReaped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reminder_assignments_reaped_total", Help: "Expired assignments deleted",
	})
	mCycleDur = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "reminder_cycle_duration_seconds", Help: "Full notify-then-reap cycle duration",
		Buckets: prometheus.DefBuckets,
	})
)

// RunnerConfig controls the fire interval and the per-cycle bound.
type RunnerConfig struct {
	Tick         time.Duration
	CycleTimeout time.Duration
}

// Runner fires the engine on a fixed interval. It owns no business
// state: all idempotence lives in the ledger, so a restarted process
// resumes correctly with no warm-up. Exactly one Runner should be
// active per process; across processes the ledger constraint keeps
// overlapping cycles safe.
type Runner struct {
	Log *zap.Logger
	Eng *Engine
	Cfg RunnerConfig
}

func NewRunner(log *zap.Logger, eng *Engine, cfg RunnerConfig) *Runner {
	if cfg.Tick <= 0 {
		cfg.Tick = time.Hour
	}
	return &Runner{Log: log, Eng: eng, Cfg: cfg}
}

func (r *Runner) tick(ctx context.Context) {
	if r.Cfg.CycleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Cfg.CycleTimeout)
		defer cancel()
	}

	start := time.Now()
	mCycles.Inc()

	stats, err := r.Eng.RunCycle(ctx)
	if err != nil {
		r.Log.Warn("cycle error", zap.Error(err))
	}

	mSent.Add(float64(stats.Sent))
	mDeduped.Add(float64(stats.Deduped))
	mFailed.Add(float64(stats.Failed))
	mReaped.Add(float64(stats.Reaped))
	mCycleDur.Observe(time.Since(start).Seconds())

	r.Log.Info("cycle complete",
		zap.Int("assignments", stats.Assignments),
		zap.Int("due", stats.Due),
		zap.Int("sent", stats.Sent),
		zap.Int("already", stats.Already),
		zap.Int("deduped", stats.Deduped),
		zap.Int("failed", stats.Failed),
		zap.Int64("reaped", stats.Reaped),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.Cfg.Tick)
	defer ticker.Stop()

	r.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}
