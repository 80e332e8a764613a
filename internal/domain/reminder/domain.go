package reminder

import "time"

// Record is one row of the dedup ledger: proof that the reminder for a
// given (assignment, user, threshold) triple was sent. Rows are
// append-only; they disappear only when the assignment is deleted and
// the delete cascades.
type Record struct {
	ID            int64     `json:"id"`
	AssignmentID  int64     `json:"assignment_id"`
	UserID        int64     `json:"user_id"`
	ThresholdDays int       `json:"threshold_days"`
	SentAt        time.Time `json:"sent_at"`
}
