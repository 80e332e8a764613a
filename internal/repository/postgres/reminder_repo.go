package postgres

import (
	"context"
	"fmt"

	"github.com/jafetfresenbet/TrueTime/internal/domain/reminder"
)

var _ reminder.Repo = (*ReminderRepo)(nil)

// ReminderRepo is the durable dedup ledger. The unique index on
// (assignment_id, user_id, threshold_days) is what makes reminders
// at-most-once; check-then-insert alone would double-send under
// overlapping cycles.
type ReminderRepo struct{ db *DB }

func NewReminderRepo(db *DB) *ReminderRepo { return &ReminderRepo{db: db} }

const (
	qLedgerInsert = `
INSERT INTO notifications (assignment_id, user_id, threshold_days, sent_at)
VALUES ($1, $2, $3, $4)
RETURNING id;
`

	qLedgerExists = `
SELECT EXISTS (
	SELECT 1 FROM notifications
	WHERE assignment_id = $1 AND user_id = $2 AND threshold_days = $3
);
`
)

func (r *ReminderRepo) Exists(ctx context.Context, assignmentID, userID int64, thresholdDays int) (bool, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var found bool
	if err := r.db.Pool.QueryRow(ctx, qLedgerExists, assignmentID, userID, thresholdDays).
		Scan(&found); err != nil {
		return false, fmt.Errorf("ledger exists: %w", err)
	}
	return found, nil
}

func (r *ReminderRepo) Create(ctx context.Context, rec *reminder.Record) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := r.db.Pool.QueryRow(ctx, qLedgerInsert,
		rec.AssignmentID,
		rec.UserID,
		rec.ThresholdDays,
		rec.SentAt,
	).Scan(&rec.ID); err != nil {
		if isUniqueViolation(err) {
			return reminder.ErrDuplicate
		}
		return fmt.Errorf("ledger insert: %w", err)
	}
	return nil
}
