package app

import (
	"errors"
	"fmt"

	"github.com/dejobratic/snackbar/internal/pos/domain"
)

// KindPersistence marks a failure to load or save state. The in-memory state stays as it was after the
// domain operation; the next successful save writes it out.
const KindPersistence domain.Kind = "persistence"

var (
	ErrCartNotFound = &domain.Error{Kind: domain.KindNotFound, Message: "cart not found"}
)

// PersistenceError wraps a store failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// KindOf classifies err, including persistence failures.
func KindOf(err error) (domain.Kind, bool) {
	var persistErr *PersistenceError
	if errors.As(err, &persistErr) {
		return KindPersistence, true
	}
	return domain.KindOf(err)
}
