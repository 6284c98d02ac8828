package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/toto/internal/domain/round"
	"github.com/riskibarqy/toto/internal/domain/roundscore"
	"github.com/riskibarqy/toto/internal/domain/ticket"
)

type RoundScoreRepository struct {
	store *Store
}

func NewRoundScoreRepository(store *Store) *RoundScoreRepository {
	return &RoundScoreRepository{store: store}
}

func (r *RoundScoreRepository) Publish(_ context.Context, publication roundscore.Publication) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	owner, ok := r.store.rounds[publication.RoundID]
	if !ok {
		return nil
	}

	r.store.scores[publication.RoundID] = append([]roundscore.RoundScore(nil), publication.Scores...)

	byTicket := make(map[string]map[string]*bool)
	for _, c := range publication.Correctness {
		if byTicket[c.TicketID] == nil {
			byTicket[c.TicketID] = make(map[string]*bool)
		}
		byTicket[c.TicketID][c.GameID] = c.IsCorrect
	}
	for key, t := range r.store.tickets {
		marks, ok := byTicket[t.ID]
		if !ok {
			continue
		}
		t = ticket.Clone(t)
		for i, p := range t.Predictions {
			if v, ok := marks[p.GameID]; ok {
				t.Predictions[i].IsCorrect = v
			}
		}
		r.store.tickets[key] = t
	}

	at := publication.ComputedAt
	owner.Status = round.StatusFinished
	owner.ResultsUpdated = false
	owner.FinishedAt = &at
	owner.UpdatedAt = at
	r.store.rounds[owner.ID] = owner
	return nil
}

func (r *RoundScoreRepository) ListByRound(_ context.Context, roundID string) ([]roundscore.RoundScore, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return append([]roundscore.RoundScore(nil), r.store.scores[roundID]...), nil
}

func (r *RoundScoreRepository) ListAll(_ context.Context) ([]roundscore.RoundScore, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]roundscore.RoundScore, 0)
	for _, scores := range r.store.scores {
		out = append(out, scores...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RoundID != out[j].RoundID {
			return out[i].RoundID < out[j].RoundID
		}
		return out[i].Rank < out[j].Rank
	})
	return out, nil
}
