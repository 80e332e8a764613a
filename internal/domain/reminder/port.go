package reminder

import (
	"context"
	"time"
)

// Repo is the dedup ledger. The at-most-once guarantee for the whole
// engine rests on Create's storage-level unique constraint; a prior
// Exists check is an optimization, never the mechanism.
type Repo interface {
	Exists(ctx context.Context, assignmentID, userID int64, thresholdDays int) (bool, error)

	// Create inserts a ledger record. Returns ErrDuplicate if the
	// (assignment, user, threshold) triple is already recorded.
	Create(ctx context.Context, rec *Record) error
}

// EmailSender delivers a single reminder message.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Events receives best-effort notifications about engine activity.
// Publish failures must not affect the cycle.
type Events interface {
	ReminderSent(ctx context.Context, rec *Record, email string) error
	AssignmentsReaped(ctx context.Context, count int64, at time.Time) error
}

type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock Clock used outside of tests.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
