package kafka

import (
	"context"
	"time"

	"github.com/jafetfresenbet/TrueTime/internal/domain/reminder"
)

// ReminderEventsKafka publishes engine activity as JSON events. The
// stream is a best-effort audit feed; the ledger row, not the event, is
// the record of truth.
type ReminderEventsKafka struct {
	p *Producer
}

func NewReminderEventsKafka(p *Producer) *ReminderEventsKafka { return &ReminderEventsKafka{p: p} }

var _ reminder.Events = (*ReminderEventsKafka)(nil)

type reminderSentEvent struct {
	Event         string    `json:"event"`
	AssignmentID  int64     `json:"assignment_id"`
	UserID        int64     `json:"user_id"`
	ThresholdDays int       `json:"threshold_days"`
	Email         string    `json:"email"`
	SentAt        time.Time `json:"sent_at"`
}

type assignmentsReapedEvent struct {
	Event string    `json:"event"`
	Count int64     `json:"count"`
	At    time.Time `json:"at"`
}

func (e *ReminderEventsKafka) ReminderSent(ctx context.Context, rec *reminder.Record, email string) error {
	return e.p.PublishJSON(ctx, KeyFromInt64(rec.AssignmentID), reminderSentEvent{
		Event:         "reminder.sent",
		AssignmentID:  rec.AssignmentID,
		UserID:        rec.UserID,
		ThresholdDays: rec.ThresholdDays,
		Email:         email,
		SentAt:        rec.SentAt,
	})
}

func (e *ReminderEventsKafka) AssignmentsReaped(ctx context.Context, count int64, at time.Time) error {
	return e.p.PublishJSON(ctx, []byte("reaper"), assignmentsReapedEvent{
		Event: "assignment.reaped",
		Count: count,
		At:    at,
	})
}
