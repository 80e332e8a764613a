package roster

import "context"

type Repo interface {
	// Recipients resolves an assignment's owning class and returns its
	// members with notifications enabled.
	Recipients(ctx context.Context, assignmentID int64) ([]Recipient, error)
}
