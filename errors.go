package dictcol

import (
	"errors"
	"fmt"

	"github.com/hupe1980/dictcol/datum"
	"github.com/hupe1980/dictcol/keyset"
	"github.com/hupe1980/dictcol/queue"
	"github.com/hupe1980/dictcol/resource"
)

var (
	// ErrInvalidArgument is the class of misuse failures: wrong value
	// domain, non-dictionary input where a dictionary is required,
	// unsorted SetKeys key list, mismatched schemas in MatchTables.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAllocationFailure is the class of resource-exhaustion failures,
	// kept distinct from ErrInvalidArgument so callers can tell
	// exhaustion from misuse.
	ErrAllocationFailure = errors.New("allocation failure")

	// ErrAsyncExecution is the class of failures reported by a work queue
	// after submission. It is only observable when synchronizing on the
	// queue (queue.Wait / queue.Close) and is propagated undisturbed.
	ErrAsyncExecution = queue.ErrFailed

	// ErrNotDictionary indicates an operation received a column that is
	// not dictionary-encoded.
	ErrNotDictionary = fmt.Errorf("%w: column is not dictionary-encoded", ErrInvalidArgument)

	// ErrKeysNotSorted indicates a SetKeys key list that is not sorted
	// and unique.
	ErrKeysNotSorted = fmt.Errorf("%w: key list must be sorted and unique", ErrInvalidArgument)
)

// ErrTypeMismatch indicates a key list whose value domain differs from the
// dictionary's key domain.
type ErrTypeMismatch struct {
	Expected datum.Type
	Actual   datum.Type
}

func (e *ErrTypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch: expected %s keys, got %s", e.Expected, e.Actual)
}

func (e *ErrTypeMismatch) Unwrap() error { return ErrInvalidArgument }

// ErrSchemaMismatch indicates column groups passed to MatchTables that do
// not share a schema.
type ErrSchemaMismatch struct {
	Group    int
	Position int
	Reason   string
}

func (e *ErrSchemaMismatch) Error() string {
	return fmt.Sprintf("schema mismatch in group %d, column %d: %s", e.Group, e.Position, e.Reason)
}

func (e *ErrSchemaMismatch) Unwrap() error { return ErrInvalidArgument }

// translateError normalizes subpackage failures into the engine's error
// classes before they reach a caller or a work queue.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, resource.ErrMemoryLimit) {
		return fmt.Errorf("%w: %w", ErrAllocationFailure, err)
	}
	if errors.Is(err, keyset.ErrNotSorted) {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return err
}
