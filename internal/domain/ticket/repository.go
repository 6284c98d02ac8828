package ticket

import "context"

// Repository describes ticket persistence needs from use cases.
type Repository interface {
	// Upsert creates the (round, user) ticket or replaces its predictions and
	// timestamp wholesale. It fails with ErrRoundNotAccepting when the round is
	// no longer active or its deadline passed at write time.
	Upsert(ctx context.Context, item Ticket) (Ticket, error)
	// CreateIfAbsent inserts the ticket only when the user has none for the round.
	CreateIfAbsent(ctx context.Context, item Ticket) (bool, error)
	GetByRoundAndUser(ctx context.Context, roundID, userID string) (Ticket, bool, error)
	ListByRound(ctx context.Context, roundID string) ([]Ticket, error)
	CountByRound(ctx context.Context, roundID string) (int, error)
}
