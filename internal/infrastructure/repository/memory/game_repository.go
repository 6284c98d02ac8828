package memory

import (
	"context"
	"sort"
	"time"

	"github.com/riskibarqy/toto/internal/domain/game"
	"github.com/riskibarqy/toto/internal/domain/outcome"
)

type GameRepository struct {
	store *Store
}

func NewGameRepository(store *Store) *GameRepository {
	return &GameRepository{store: store}
}

func (r *GameRepository) ListByRound(_ context.Context, roundID string) ([]game.Game, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]game.Game, 0)
	for _, g := range r.store.games {
		if g.RoundID == roundID {
			out = append(out, cloneGame(g))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *GameRepository) GetByID(_ context.Context, gameID string) (game.Game, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	g, ok := r.store.games[gameID]
	if !ok {
		return game.Game{}, false, nil
	}
	return cloneGame(g), true, nil
}

func (r *GameRepository) ReplaceForRound(_ context.Context, roundID string, games []game.Game) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, t := range r.store.tickets {
		if t.RoundID == roundID && len(t.Predictions) > 0 {
			return game.ErrInUse
		}
	}
	for id, g := range r.store.games {
		if g.RoundID == roundID {
			delete(r.store.games, id)
		}
	}
	for _, g := range games {
		g.RoundID = roundID
		r.store.games[g.ID] = cloneGame(g)
	}
	return nil
}

func (r *GameRepository) SetResult(_ context.Context, gameID string, result outcome.Symbol, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	g, ok := r.store.games[gameID]
	if !ok {
		return nil
	}
	g.Result = &result
	g.UpdatedAt = at
	r.store.games[gameID] = g

	if owner, ok := r.store.rounds[g.RoundID]; ok {
		owner.ResultsUpdated = true
		owner.UpdatedAt = at
		r.store.rounds[owner.ID] = owner
	}
	return nil
}
