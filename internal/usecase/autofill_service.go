package usecase

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/toto/internal/domain/game"
	"github.com/riskibarqy/toto/internal/domain/member"
	"github.com/riskibarqy/toto/internal/domain/outcome"
	"github.com/riskibarqy/toto/internal/domain/round"
	"github.com/riskibarqy/toto/internal/domain/ticket"
	"github.com/riskibarqy/toto/internal/platform/id"
	"github.com/riskibarqy/toto/internal/platform/logging"
	"github.com/riskibarqy/toto/internal/platform/metrics"
	"github.com/sourcegraph/conc/pool"
)

const defaultAutofillWorkers = 4

var (
	autofillSinglePick = outcome.PickOf(outcome.HomeWin)
	autofillDoublePick = outcome.PickOf(outcome.HomeWin, outcome.Draw)
)

type AutofillResult struct {
	RoundID      string
	CreatedCount int
}

type AutofillService struct {
	roundRepo  round.Repository
	gameRepo   game.Repository
	ticketRepo ticket.Repository
	memberRepo member.Repository
	ids        id.Generator
	rules      ticket.Rules
	doubles    *doublesPicker
	workers    int
	logger     *logging.Logger
	now        func() time.Time
}

// NewAutofillService builds the coordinator. A zero seed draws the doubles
// subset from a randomly seeded source.
func NewAutofillService(
	roundRepo round.Repository,
	gameRepo game.Repository,
	ticketRepo ticket.Repository,
	memberRepo member.Repository,
	ids id.Generator,
	rules ticket.Rules,
	seed uint64,
	logger *logging.Logger,
) *AutofillService {
	if logger == nil {
		logger = logging.Default()
	}
	return &AutofillService{
		roundRepo:  roundRepo,
		gameRepo:   gameRepo,
		ticketRepo: ticketRepo,
		memberRepo: memberRepo,
		ids:        ids,
		rules:      rules,
		doubles:    newDoublesPicker(seed),
		workers:    defaultAutofillWorkers,
		logger:     logger,
		now:        time.Now,
	}
}

// AutofillMissing creates a default ticket for every active member without
// one. Running it again creates nothing new.
func (s *AutofillService) AutofillMissing(ctx context.Context, roundID string) (AutofillResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AutofillService.AutofillMissing", roundAttr(roundID))
	defer span.End()

	result := AutofillResult{RoundID: roundID}

	item, exists, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return result, storageError(err, "get round")
	}
	if !exists {
		return result, fmt.Errorf("%w: round=%s", ErrNotFound, roundID)
	}
	if item.Status != round.StatusLocked {
		return result, fmt.Errorf("%w: autofill needs a locked round, round %s is %s", ErrConflict, roundID, item.Status)
	}

	games, err := s.gameRepo.ListByRound(ctx, roundID)
	if err != nil {
		return result, storageError(err, "list games")
	}
	gameIDs := game.IDs(games)

	roster, err := s.memberRepo.ListActive(ctx)
	if err != nil {
		return result, storageError(err, "list active members")
	}
	existing, err := s.ticketRepo.ListByRound(ctx, roundID)
	if err != nil {
		return result, storageError(err, "list tickets")
	}

	covered := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		covered[t.UserID] = struct{}{}
	}

	missing := make([]string, 0, len(roster))
	for _, m := range roster {
		if _, ok := covered[m.UserID]; !ok {
			missing = append(missing, m.UserID)
		}
	}
	sort.Strings(missing)
	if len(missing) == 0 {
		return result, nil
	}

	now := s.now().UTC()
	tickets := make([]ticket.Ticket, 0, len(missing))
	for _, userID := range missing {
		t, err := s.defaultTicket(roundID, userID, gameIDs, now)
		if err != nil {
			return result, err
		}
		tickets = append(tickets, t)
	}

	var created atomic.Int32
	p := pool.New().WithMaxGoroutines(s.workers).WithContext(ctx)
	for _, t := range tickets {
		t := t
		p.Go(func(ctx context.Context) error {
			ok, err := s.ticketRepo.CreateIfAbsent(ctx, t)
			if err != nil {
				return storageError(err, "create autofill ticket for user "+t.UserID)
			}
			if ok {
				created.Add(1)
			}
			return nil
		})
	}
	err = p.Wait()

	result.CreatedCount = int(created.Load())
	metrics.AutofillCreated(result.CreatedCount)
	if err != nil {
		return result, err
	}

	s.logger.InfoContext(ctx, "autofill completed",
		"round_id", roundID,
		"roster_size", len(roster),
		"created_count", result.CreatedCount,
	)
	return result, nil
}

func (s *AutofillService) defaultTicket(roundID, userID string, gameIDs []string, now time.Time) (ticket.Ticket, error) {
	doubles := s.doubles.pick(len(gameIDs), s.rules.DoublesPerTicket)

	entries := make([]ticket.Entry, 0, len(gameIDs))
	for i, gameID := range gameIDs {
		pick := autofillSinglePick
		if _, ok := doubles[i]; ok {
			pick = autofillDoublePick
		}
		entries = append(entries, ticket.Entry{GameID: gameID, Symbols: pick.Strings()})
	}

	predictions, err := ticket.ValidatePredictions(entries, gameIDs, s.rules)
	if err != nil {
		return ticket.Ticket{}, fmt.Errorf("%w: autofill ticket for user %s is invalid: %w", ErrConflict, userID, err)
	}

	ticketID, err := s.ids.NewID()
	if err != nil {
		return ticket.Ticket{}, fmt.Errorf("generate ticket id: %w", err)
	}
	for i := range predictions {
		predictions[i].TicketID = ticketID
	}

	return ticket.Ticket{
		ID:          ticketID,
		RoundID:     roundID,
		UserID:      userID,
		SubmittedAt: now,
		Autofilled:  true,
		Predictions: predictions,
	}, nil
}

// doublesPicker chooses which slate positions get a double. rand.Rand is not
// safe for concurrent use, hence the mutex.
type doublesPicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newDoublesPicker(seed uint64) *doublesPicker {
	if seed == 0 {
		return &doublesPicker{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
	}
	return &doublesPicker{rng: rand.New(rand.NewPCG(seed, seed))}
}

// pick returns exactly k distinct indexes in [0, n).
func (p *doublesPicker) pick(n, k int) map[int]struct{} {
	if k > n {
		k = n
	}
	if k <= 0 {
		return map[int]struct{}{}
	}

	p.mu.Lock()
	perm := p.rng.Perm(n)
	p.mu.Unlock()

	out := make(map[int]struct{}, k)
	for _, idx := range perm[:k] {
		out[idx] = struct{}{}
	}
	return out
}
