package game

import (
	"context"
	"time"

	"github.com/riskibarqy/toto/internal/domain/outcome"
)

// Repository describes game persistence needs from use cases.
type Repository interface {
	ListByRound(ctx context.Context, roundID string) ([]Game, error)
	GetByID(ctx context.Context, gameID string) (Game, bool, error)
	// ReplaceForRound atomically swaps the round's whole slate.
	ReplaceForRound(ctx context.Context, roundID string, games []Game) error
	// SetResult stores the official result and flags the owning round as having
	// updated results.
	SetResult(ctx context.Context, gameID string, result outcome.Symbol, at time.Time) error
}
