package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/toto/internal/domain/ticket"
)

type TicketRepository struct {
	store *Store
}

func NewTicketRepository(store *Store) *TicketRepository {
	return &TicketRepository{store: store}
}

// Upsert keeps the id of an existing ticket and replaces its predictions.
func (r *TicketRepository) Upsert(_ context.Context, item ticket.Ticket) (ticket.Ticket, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	owner, ok := r.store.rounds[item.RoundID]
	if !ok || !owner.OpenForTickets(r.store.now()) {
		return ticket.Ticket{}, ticket.ErrRoundNotAccepting
	}

	item = ticket.Clone(item)
	key := ticketKey(item.RoundID, item.UserID)
	if existing, ok := r.store.tickets[key]; ok {
		item.ID = existing.ID
	}
	item.Autofilled = false
	for i := range item.Predictions {
		item.Predictions[i].TicketID = item.ID
		item.Predictions[i].IsCorrect = nil
	}

	r.store.tickets[key] = item
	return ticket.Clone(item), nil
}

func (r *TicketRepository) CreateIfAbsent(_ context.Context, item ticket.Ticket) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := ticketKey(item.RoundID, item.UserID)
	if _, ok := r.store.tickets[key]; ok {
		return false, nil
	}
	r.store.tickets[key] = ticket.Clone(item)
	return true, nil
}

func (r *TicketRepository) GetByRoundAndUser(_ context.Context, roundID, userID string) (ticket.Ticket, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.tickets[ticketKey(roundID, userID)]
	if !ok {
		return ticket.Ticket{}, false, nil
	}
	return ticket.Clone(item), true, nil
}

func (r *TicketRepository) ListByRound(_ context.Context, roundID string) ([]ticket.Ticket, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]ticket.Ticket, 0)
	for _, item := range r.store.tickets {
		if item.RoundID == roundID {
			out = append(out, ticket.Clone(item))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *TicketRepository) CountByRound(_ context.Context, roundID string) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	n := 0
	for _, item := range r.store.tickets {
		if item.RoundID == roundID {
			n++
		}
	}
	return n, nil
}
