package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness or optimistic-concurrency violation.
	// Callers may retry the whole load-mutate-save cycle.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized indicates the caller does not own the entity.
	ErrUnauthorized = errors.New("unauthorized")
)

// InvalidTransitionError reports an illegal status jump. An aggregate is
// always left unchanged when this is returned.
type InvalidTransitionError struct {
	Aggregate string
	From      string
	To        string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: invalid transition from %s to %s", e.Aggregate, e.From, e.To)
}

// InvalidOperationError reports a business precondition that does not hold,
// e.g. deleting a coupon that is still applied to a cart.
type InvalidOperationError struct {
	Op     string
	Reason string
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}
