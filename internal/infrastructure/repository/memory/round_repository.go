package memory

import (
	"context"
	"sort"
	"time"

	"github.com/riskibarqy/toto/internal/domain/round"
)

type RoundRepository struct {
	store *Store
}

func NewRoundRepository(store *Store) *RoundRepository {
	return &RoundRepository{store: store}
}

func (r *RoundRepository) Create(_ context.Context, item round.Round) (round.Round, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	maxNumber := 0
	for _, existing := range r.store.rounds {
		if item.Number > 0 && existing.Number == item.Number {
			return round.Round{}, round.ErrDuplicateNumber
		}
		if existing.Number > maxNumber {
			maxNumber = existing.Number
		}
	}
	if item.Number == 0 {
		item.Number = maxNumber + 1
	}

	r.store.rounds[item.ID] = cloneRound(item)
	return cloneRound(item), nil
}

func (r *RoundRepository) GetByID(_ context.Context, roundID string) (round.Round, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.rounds[roundID]
	if !ok {
		return round.Round{}, false, nil
	}
	return cloneRound(item), true, nil
}

func (r *RoundRepository) GetLatest(ctx context.Context, includeDrafts bool) (round.Round, bool, error) {
	items, _ := r.List(ctx, includeDrafts)
	if len(items) == 0 {
		return round.Round{}, false, nil
	}
	return items[0], true, nil
}

// List returns rounds newest first.
func (r *RoundRepository) List(_ context.Context, includeDrafts bool) ([]round.Round, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]round.Round, 0, len(r.store.rounds))
	for _, item := range r.store.rounds {
		if item.Status == round.StatusDraft && !includeDrafts {
			continue
		}
		out = append(out, cloneRound(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	return out, nil
}

func (r *RoundRepository) ListDueForLock(_ context.Context, now time.Time) ([]round.Round, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]round.Round, 0)
	for _, item := range r.store.rounds {
		if (item.Status == round.StatusActive && item.DeadlinePassed(now)) || item.NeedsAutofill() {
			out = append(out, cloneRound(item))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *RoundRepository) TransitionStatus(_ context.Context, roundID string, from, to round.Status, at time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.rounds[roundID]
	if !ok || item.Status != from {
		return false, nil
	}

	item.Status = to
	item.UpdatedAt = at
	if to == round.StatusLocked {
		item.LockedAt = &at
	}
	r.store.rounds[roundID] = item
	return true, nil
}

func (r *RoundRepository) MarkAutofilled(_ context.Context, roundID string, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.rounds[roundID]
	if !ok {
		return nil
	}
	item.AutofilledAt = &at
	item.UpdatedAt = at
	r.store.rounds[roundID] = item
	return nil
}

// Delete cascades to games and scores and is blocked by tickets.
func (r *RoundRepository) Delete(_ context.Context, roundID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, t := range r.store.tickets {
		if t.RoundID == roundID {
			return round.ErrHasTickets
		}
	}
	for id, g := range r.store.games {
		if g.RoundID == roundID {
			delete(r.store.games, id)
		}
	}
	delete(r.store.scores, roundID)
	delete(r.store.rounds, roundID)
	return nil
}
