package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jafetfresenbet/TrueTime/internal/domain/assignment"
	"github.com/jafetfresenbet/TrueTime/internal/domain/deadline"
	"github.com/jafetfresenbet/TrueTime/internal/domain/reminder"
	"github.com/jafetfresenbet/TrueTime/internal/domain/roster"
	"github.com/jafetfresenbet/TrueTime/internal/obs"
	"github.com/jafetfresenbet/TrueTime/internal/obs/retry"
)

// Engine runs one notification cycle: scan every dated assignment,
// send the reminders whose threshold was crossed and is not yet in the
// ledger, then reap assignments whose deadline has passed. Both passes
// share a single captured "now" and the reap pass runs strictly after
// the notify pass, so a final-day reminder still goes out in the cycle
// that deletes its assignment.
//
// Every failure is scoped to one (assignment, recipient, threshold)
// unit; nothing the engine hits is fatal to the caller.
type Engine struct {
	log         *zap.Logger
	assignments assignment.Repo
	roster      roster.Repo
	ledger      reminder.Repo
	sender      reminder.EmailSender
	events      reminder.Events // optional
	clock       reminder.Clock

	sendConcurrency int
	sendAttempts    int
}

// EngineConfig bounds the work a single cycle may do.
type EngineConfig struct {
	SendConcurrency int
	SendAttempts    int
}

func NewEngine(
	log *zap.Logger,
	assignments assignment.Repo,
	rost roster.Repo,
	ledger reminder.Repo,
	sender reminder.EmailSender,
	events reminder.Events,
	clock reminder.Clock,
	cfg EngineConfig,
) *Engine {
	if clock == nil {
		clock = reminder.SystemClock{}
	}
	if cfg.SendConcurrency <= 0 {
		cfg.SendConcurrency = 8
	}
	if cfg.SendAttempts <= 0 {
		cfg.SendAttempts = 3
	}
	return &Engine{
		log:             log,
		assignments:     assignments,
		roster:          rost,
		ledger:          ledger,
		sender:          sender,
		events:          events,
		clock:           clock,
		sendConcurrency: cfg.SendConcurrency,
		sendAttempts:    cfg.SendAttempts,
	}
}

// CycleStats summarizes one cycle.
type CycleStats struct {
	Assignments int   // assignments scanned
	Due         int   // (assignment, recipient) units at a threshold
	Sent        int   // reminders sent and recorded
	Already     int   // units the ledger already held
	Deduped     int   // ledger conflicts lost to a concurrent cycle
	Failed      int   // units that errored (send or storage)
	Reaped      int64 // expired assignments deleted
}

// RunCycle is the engine's single entry point, invoked by the Runner on
// a timer or out-of-band by an operator. The returned error covers only
// cycle-level storage failures (listing or reaping); per-unit failures
// are counted in the stats and logged.
func (e *Engine) RunCycle(ctx context.Context) (CycleStats, error) {
	now := e.clock.Now().UTC()
	cycleID := uuid.NewString()

	tr := otel.Tracer("reminder.engine")
	ctx, span := tr.Start(ctx, "reminder.cycle",
		trace.WithAttributes(attribute.String("cycle.id", cycleID)),
	)
	defer span.End()

	log := obs.WithTrace(ctx, e.log.With(zap.String("cycle_id", cycleID)))

	stats, notifyErr := e.notify(ctx, now, log)
	reapErr := e.reap(ctx, now, log, &stats)

	span.SetAttributes(
		attribute.Int("cycle.assignments", stats.Assignments),
		attribute.Int("cycle.sent", stats.Sent),
		attribute.Int("cycle.failed", stats.Failed),
		attribute.Int64("cycle.reaped", stats.Reaped),
	)
	err := errors.Join(notifyErr, reapErr)
	if err != nil {
		span.RecordError(err)
	}
	return stats, err
}

func (e *Engine) notify(ctx context.Context, now time.Time, log *zap.Logger) (CycleStats, error) {
	var stats CycleStats

	list, err := e.assignments.ListWithDeadline(ctx)
	if err != nil {
		log.Warn("list assignments", zap.Error(err))
		return stats, fmt.Errorf("list assignments: %w", err)
	}
	stats.Assignments = len(list)

	var due, sent, already, deduped, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.sendConcurrency)

	for _, a := range list {
		if a.Deadline == nil {
			continue
		}
		th, ok := deadline.Threshold(deadline.DaysLeft(*a.Deadline, now))
		if !ok {
			continue
		}

		recipients, err := e.roster.Recipients(ctx, a.ID)
		if err != nil {
			log.Warn("resolve recipients",
				zap.Int64("assignment_id", a.ID), zap.Error(err))
			failed.Add(1)
			continue
		}

		for _, rcpt := range recipients {
			due.Add(1)
			g.Go(func() error {
				switch e.processUnit(gctx, a, rcpt, th, now, log) {
				case unitSent:
					sent.Add(1)
				case unitAlready:
					already.Add(1)
				case unitDeduped:
					deduped.Add(1)
				case unitFailed:
					failed.Add(1)
				}
				return nil
			})
		}
	}
	_ = g.Wait()

	stats.Due = int(due.Load())
	stats.Sent = int(sent.Load())
	stats.Already = int(already.Load())
	stats.Deduped = int(deduped.Load())
	stats.Failed = int(failed.Load())
	return stats, nil
}

type unitResult int

const (
	unitSent unitResult = iota
	unitAlready
	unitDeduped
	unitFailed
)

// processUnit handles one (assignment, recipient, threshold) triple:
// ledger check, send, record. The ledger insert happens only after a
// confirmed send; a conflict on insert means a concurrent cycle won the
// race and counts as success.
func (e *Engine) processUnit(
	ctx context.Context,
	a *assignment.Assignment,
	rcpt roster.Recipient,
	thresholdDays int,
	now time.Time,
	log *zap.Logger,
) unitResult {
	log = log.With(
		zap.Int64("assignment_id", a.ID),
		zap.Int64("user_id", rcpt.UserID),
		zap.Int("threshold_days", thresholdDays),
	)

	seen, err := e.ledger.Exists(ctx, a.ID, rcpt.UserID, thresholdDays)
	if err != nil {
		log.Warn("ledger lookup", zap.Error(err))
		return unitFailed
	}
	if seen {
		return unitAlready
	}

	subject, body := composeReminder(a, rcpt, thresholdDays)
	sendErr := retry.Do(ctx, func() error {
		return e.sender.Send(ctx, rcpt.Email, subject, body)
	}, retry.SendPolicy("smtp.send", e.sendAttempts, func(err error) bool {
		return err != nil && !reminder.IsPermanent(err)
	}, log))
	if sendErr != nil {
		if reminder.IsPermanent(sendErr) {
			log.Warn("permanent recipient failure, skipping",
				zap.String("email", rcpt.Email), zap.Error(sendErr))
		} else {
			log.Warn("transient send failure, retrying next cycle", zap.Error(sendErr))
		}
		return unitFailed
	}

	rec := &reminder.Record{
		AssignmentID:  a.ID,
		UserID:        rcpt.UserID,
		ThresholdDays: thresholdDays,
		SentAt:        now,
	}
	if err := e.ledger.Create(ctx, rec); err != nil {
		if errors.Is(err, reminder.ErrDuplicate) {
			log.Debug("reminder already recorded by a concurrent cycle")
			return unitDeduped
		}
		// The mail went out but the ledger write failed; the next cycle
		// may send this reminder again.
		log.Warn("reminder sent but not recorded", zap.Error(err))
		return unitFailed
	}

	if e.events != nil {
		if err := e.events.ReminderSent(ctx, rec, rcpt.Email); err != nil {
			log.Debug("publish reminder event", zap.Error(err))
		}
	}
	log.Info("reminder sent")
	return unitSent
}

// reap deletes assignments whose deadline is strictly before the same
// now the notify pass used. It must never run before notify: an
// assignment crossing its last threshold in this cycle gets that
// reminder first.
func (e *Engine) reap(ctx context.Context, now time.Time, log *zap.Logger, stats *CycleStats) error {
	reaped, err := e.assignments.DeleteExpired(ctx, now)
	if err != nil {
		log.Warn("reap expired assignments", zap.Error(err))
		return fmt.Errorf("reap expired assignments: %w", err)
	}
	stats.Reaped = reaped
	if reaped > 0 {
		log.Info("reaped expired assignments", zap.Int64("count", reaped))
		if e.events != nil {
			if err := e.events.AssignmentsReaped(ctx, reaped, now); err != nil {
				log.Debug("publish reap event", zap.Error(err))
			}
		}
	}
	return nil
}

func composeReminder(a *assignment.Assignment, rcpt roster.Recipient, thresholdDays int) (subject, body string) {
	kind := "assignment"
	if a.Kind == assignment.KindExam {
		kind = "exam"
	}
	subject = fmt.Sprintf("Reminder: %s", a.Title)
	body = fmt.Sprintf(
		"Hi %s!\n\n%d day(s) left until the %s %q is due (%s).\n\n— TrueTime",
		rcpt.Name, thresholdDays, kind, a.Title,
		a.Deadline.UTC().Format(time.RFC3339),
	)
	return subject, body
}
