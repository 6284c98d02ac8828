package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/toto/internal/domain/game"
	"github.com/riskibarqy/toto/internal/domain/member"
	"github.com/riskibarqy/toto/internal/domain/round"
	"github.com/riskibarqy/toto/internal/domain/ticket"
	"github.com/riskibarqy/toto/internal/platform/id"
	"github.com/riskibarqy/toto/internal/platform/logging"
	"github.com/riskibarqy/toto/internal/platform/metrics"
)

type TicketService struct {
	roundRepo  round.Repository
	gameRepo   game.Repository
	ticketRepo ticket.Repository
	memberRepo member.Repository
	ids        id.Generator
	rules      ticket.Rules
	logger     *logging.Logger
	now        func() time.Time
}

type SubmitTicketInput struct {
	RoundID string
	UserID  string
	Entries []ticket.Entry
}

func NewTicketService(
	roundRepo round.Repository,
	gameRepo game.Repository,
	ticketRepo ticket.Repository,
	memberRepo member.Repository,
	ids id.Generator,
	rules ticket.Rules,
	logger *logging.Logger,
) *TicketService {
	if logger == nil {
		logger = logging.Default()
	}
	return &TicketService{
		roundRepo:  roundRepo,
		gameRepo:   gameRepo,
		ticketRepo: ticketRepo,
		memberRepo: memberRepo,
		ids:        ids,
		rules:      rules,
		logger:     logger,
		now:        time.Now,
	}
}

// SubmitOrUpdate validates a full submission and replaces the caller's ticket
// for the round. Concurrent submissions by the same user are last write wins.
func (s *TicketService) SubmitOrUpdate(ctx context.Context, input SubmitTicketInput) (ticket.Ticket, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TicketService.SubmitOrUpdate", roundAttr(input.RoundID))
	defer span.End()

	out, err := s.submit(ctx, input)
	metrics.TicketSubmitted(submissionOutcome(err))
	return out, err
}

func (s *TicketService) submit(ctx context.Context, input SubmitTicketInput) (ticket.Ticket, error) {
	roundID := strings.TrimSpace(input.RoundID)
	userID := strings.TrimSpace(input.UserID)
	if roundID == "" || userID == "" {
		return ticket.Ticket{}, fmt.Errorf("%w: round id and user id are required", ErrInvalidInput)
	}

	m, exists, err := s.memberRepo.GetByUserID(ctx, userID)
	if err != nil {
		return ticket.Ticket{}, storageError(err, "get member")
	}
	if !exists || !m.Active {
		return ticket.Ticket{}, ErrForbidden
	}

	item, exists, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return ticket.Ticket{}, storageError(err, "get round")
	}
	// Drafts are invisible to players.
	if !exists || item.Status == round.StatusDraft {
		return ticket.Ticket{}, fmt.Errorf("%w: round=%s", ErrNotFound, roundID)
	}

	now := s.now().UTC()
	if !item.OpenForTickets(now) {
		return ticket.Ticket{}, fmt.Errorf("%w: round %s is %s, deadline %s",
			ErrRoundNotOpen, roundID, item.Status, item.DeadlineAt.UTC().Format(time.RFC3339))
	}

	games, err := s.gameRepo.ListByRound(ctx, roundID)
	if err != nil {
		return ticket.Ticket{}, storageError(err, "list games")
	}

	predictions, err := ticket.ValidatePredictions(input.Entries, game.IDs(games), s.rules)
	if err != nil {
		return ticket.Ticket{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	ticketID, err := s.ids.NewID()
	if err != nil {
		return ticket.Ticket{}, fmt.Errorf("generate ticket id: %w", err)
	}

	saved, err := s.ticketRepo.Upsert(ctx, ticket.Ticket{
		ID:          ticketID,
		RoundID:     roundID,
		UserID:      userID,
		SubmittedAt: now,
		Predictions: predictions,
	})
	if err != nil {
		if errors.Is(err, ticket.ErrRoundNotAccepting) {
			return ticket.Ticket{}, fmt.Errorf("%w: round %s closed while submitting", ErrRoundNotOpen, roundID)
		}
		return ticket.Ticket{}, storageError(err, "upsert ticket")
	}

	s.logger.InfoContext(ctx, "ticket submitted",
		"round_id", roundID,
		"user_id", userID,
		"ticket_id", saved.ID,
		"doubles", saved.Doubles(),
	)
	return saved, nil
}

// GetTicket returns the caller's ticket for the round.
func (s *TicketService) GetTicket(ctx context.Context, roundID, userID string) (ticket.Ticket, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TicketService.GetTicket", roundAttr(roundID))
	defer span.End()

	roundID = strings.TrimSpace(roundID)
	userID = strings.TrimSpace(userID)
	if roundID == "" || userID == "" {
		return ticket.Ticket{}, fmt.Errorf("%w: round id and user id are required", ErrInvalidInput)
	}

	item, exists, err := s.ticketRepo.GetByRoundAndUser(ctx, roundID, userID)
	if err != nil {
		return ticket.Ticket{}, storageError(err, "get ticket")
	}
	if !exists {
		return ticket.Ticket{}, fmt.Errorf("%w: ticket round=%s", ErrNotFound, roundID)
	}
	return item, nil
}

func submissionOutcome(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, ticket.ErrIncompleteCoverage):
		return "incomplete_coverage"
	case errors.Is(err, ticket.ErrInvalidOutcomeSymbol):
		return "invalid_outcome_symbol"
	case errors.Is(err, ticket.ErrEmptyPick):
		return "empty_pick"
	case errors.Is(err, ticket.ErrTooManySymbols):
		return "too_many_symbols"
	case errors.Is(err, ticket.ErrWrongDoubleCount):
		return "wrong_double_count"
	case errors.Is(err, ErrRoundNotOpen):
		return "round_not_open"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	default:
		return "error"
	}
}
