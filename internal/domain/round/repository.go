package round

import (
	"context"
	"time"
)

// Repository describes round persistence needs from use cases.
type Repository interface {
	// Create stores a new round. A zero Number is assigned as max(existing)+1.
	Create(ctx context.Context, item Round) (Round, error)
	GetByID(ctx context.Context, roundID string) (Round, bool, error)
	GetLatest(ctx context.Context, includeDrafts bool) (Round, bool, error)
	List(ctx context.Context, includeDrafts bool) ([]Round, error)
	// ListDueForLock returns active rounds past their deadline and locked rounds
	// whose autofill has not completed.
	ListDueForLock(ctx context.Context, now time.Time) ([]Round, error)
	// TransitionStatus is a conditional update: it only applies when the stored
	// status still equals from, and reports whether this caller won.
	TransitionStatus(ctx context.Context, roundID string, from, to Status, at time.Time) (bool, error)
	MarkAutofilled(ctx context.Context, roundID string, at time.Time) error
	Delete(ctx context.Context, roundID string) error
}
