package reminder

import "errors"

// ErrDuplicate reports that the ledger already holds a record for the
// triple. Callers treat it as success: another pass delivered first.
var ErrDuplicate = errors.New("reminder already recorded")

// PermanentError marks a send failure that will not succeed on retry
// (invalid address, hard bounce). The recipient is skipped for the
// cycle; disabling the user is an operator decision, not ours.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return "permanent send failure: " + e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

// IsPermanent reports whether err is (or wraps) a PermanentError.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}
