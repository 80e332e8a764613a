package postgres

import (
	"context"
	"fmt"

	"github.com/jafetfresenbet/TrueTime/internal/domain/roster"
)

var _ roster.Repo = (*RosterRepo)(nil)

type RosterRepo struct{ db *DB }

func NewRosterRepo(db *DB) *RosterRepo { return &RosterRepo{db: db} }

// Recipients walks assignment -> subject -> class -> members -> users.
// The notifications_enabled filter lives in the query so disabled users
// never even reach the engine.
const qRosterRecipients = `
SELECT u.id, u.name, u.email
FROM assignments a
JOIN subjects s ON s.id = a.subject_id
JOIN class_members cm ON cm.class_id = s.class_id
JOIN users u ON u.id = cm.user_id
WHERE a.id = $1 AND u.notifications_enabled
ORDER BY u.id;
`

func (r *RosterRepo) Recipients(ctx context.Context, assignmentID int64) ([]roster.Recipient, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qRosterRecipients, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("query recipients: %w", err)
	}
	defer rows.Close()

	var out []roster.Recipient
	for rows.Next() {
		var rc roster.Recipient
		if err := rows.Scan(&rc.UserID, &rc.Name, &rc.Email); err != nil {
			return nil, fmt.Errorf("scan recipient: %w", err)
		}
		out = append(out, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
