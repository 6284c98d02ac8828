package usecase

import (
	"errors"
	"fmt"

	crerr "github.com/cockroachdb/errors"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrConflict              = errors.New("conflict")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	ErrRoundNotOpen      = errors.New("round is not open for tickets")
	ErrResultsIncomplete = errors.New("results incomplete")
	ErrNoParticipants    = errors.New("round has no participants")

	// ErrStorage marks transient persistence failures. The whole operation is
	// safe to retry.
	ErrStorage = errors.New("storage unavailable")
)

// ResultsIncompleteError carries how many games still miss an official result.
type ResultsIncompleteError struct {
	Missing int
	Total   int
}

func (e *ResultsIncompleteError) Error() string {
	return fmt.Sprintf("results incomplete: %d of %d games missing a result", e.Missing, e.Total)
}

func (e *ResultsIncompleteError) Is(target error) bool {
	return target == ErrResultsIncomplete
}

func storageError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return crerr.Mark(crerr.Wrap(err, msg), ErrStorage)
}

// IsStorageError reports whether err was marked as a storage failure.
func IsStorageError(err error) bool {
	return crerr.Is(err, ErrStorage)
}

func isResultsIncomplete(err error) bool {
	return errors.Is(err, ErrResultsIncomplete)
}

func isNoParticipants(err error) bool {
	return errors.Is(err, ErrNoParticipants)
}
