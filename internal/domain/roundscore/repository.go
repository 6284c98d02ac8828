package roundscore

import "context"

// Repository describes round score persistence needs from use cases.
type Repository interface {
	// Publish replaces every score row of the round, refreshes the prediction
	// correctness cache and marks the round finished, all in one unit.
	Publish(ctx context.Context, publication Publication) error
	ListByRound(ctx context.Context, roundID string) ([]RoundScore, error)
	ListAll(ctx context.Context) ([]RoundScore, error)
}
