package assignment

import (
	"context"
	"time"
)

type Repo interface {
	// ListWithDeadline returns every assignment that has a deadline set,
	// regardless of whether it is due soon. The scan decides the rest.
	ListWithDeadline(ctx context.Context) ([]*Assignment, error)

	// DeleteExpired removes every assignment whose deadline is strictly
	// before now, cascading its reminder ledger rows, and returns how
	// many were removed. Destructive, no undo.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
