package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jafetfresenbet/TrueTime/internal/domain/assignment"
)

var _ assignment.Repo = (*AssignmentRepo)(nil)

type AssignmentRepo struct{ db *DB }

func NewAssignmentRepo(db *DB) *AssignmentRepo { return &AssignmentRepo{db: db} }

const (
	qAssignListWithDeadline = `
SELECT id, subject_id, title, kind, deadline, created_by, created_at, updated_at
FROM assignments
WHERE deadline IS NOT NULL
ORDER BY deadline;
`

	qAssignDeleteExpired = `
DELETE FROM assignments
WHERE deadline IS NOT NULL AND deadline < $1;
`
)

func (r *AssignmentRepo) ListWithDeadline(ctx context.Context) ([]*assignment.Assignment, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qAssignListWithDeadline)
	if err != nil {
		return nil, fmt.Errorf("query assignments: %w", err)
	}
	defer rows.Close()

	var out []*assignment.Assignment
	for rows.Next() {
		var a assignment.Assignment
		if err := rows.Scan(
			&a.ID,
			&a.SubjectID,
			&a.Title,
			&a.Kind,
			&a.Deadline,
			&a.CreatedBy,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (r *AssignmentRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	cmd, err := r.db.Pool.Exec(ctx, qAssignDeleteExpired, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired assignments: %w", err)
	}
	return cmd.RowsAffected(), nil
}
