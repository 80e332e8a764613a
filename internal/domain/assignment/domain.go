package assignment

import "time"

// Kind distinguishes regular assignments from exams.
type Kind string

const (
	KindAssignment Kind = "assignment"
	KindExam       Kind = "exam"
)

// Assignment is a piece of schoolwork belonging to a subject. A nil
// Deadline means the assignment never produces reminders and is never
// reaped.
type Assignment struct {
	ID        int64      `json:"id"`
	SubjectID int64      `json:"subject_id"`
	Title     string     `json:"title"`
	Kind      Kind       `json:"kind"`
	Deadline  *time.Time `json:"deadline"`
	CreatedBy int64      `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
