package memory

import (
	"sync"
	"time"

	"github.com/riskibarqy/toto/internal/domain/game"
	"github.com/riskibarqy/toto/internal/domain/member"
	"github.com/riskibarqy/toto/internal/domain/round"
	"github.com/riskibarqy/toto/internal/domain/roundscore"
	"github.com/riskibarqy/toto/internal/domain/ticket"
)

// Store holds every table behind one lock so multi-table writes (score
// publication, slate replacement, ticket replacement) are atomic, like the
// postgres transactions they stand in for.
type Store struct {
	mu      sync.RWMutex
	now     func() time.Time
	members map[string]member.Member
	rounds  map[string]round.Round
	games   map[string]game.Game
	tickets map[string]ticket.Ticket
	scores  map[string][]roundscore.RoundScore
}

func NewStore() *Store {
	return &Store{
		now:     time.Now,
		members: make(map[string]member.Member),
		rounds:  make(map[string]round.Round),
		games:   make(map[string]game.Game),
		tickets: make(map[string]ticket.Ticket),
		scores:  make(map[string][]roundscore.RoundScore),
	}
}

// SetClock replaces the clock used for write-time deadline checks.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func ticketKey(roundID, userID string) string {
	return roundID + "::" + userID
}

func cloneRound(r round.Round) round.Round {
	out := r
	out.LockedAt = cloneTime(r.LockedAt)
	out.AutofilledAt = cloneTime(r.AutofilledAt)
	out.FinishedAt = cloneTime(r.FinishedAt)
	return out
}

func cloneGame(g game.Game) game.Game {
	out := g
	out.KickoffAt = cloneTime(g.KickoffAt)
	if g.Result != nil {
		v := *g.Result
		out.Result = &v
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
