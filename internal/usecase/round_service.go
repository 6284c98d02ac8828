package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/toto/internal/domain/game"
	"github.com/riskibarqy/toto/internal/domain/outcome"
	"github.com/riskibarqy/toto/internal/domain/round"
	"github.com/riskibarqy/toto/internal/domain/ticket"
	"github.com/riskibarqy/toto/internal/platform/id"
	"github.com/riskibarqy/toto/internal/platform/logging"
	"github.com/riskibarqy/toto/internal/platform/metrics"
)

const defaultSweepWorkers = 4

// FixtureSource supplies a slate of fixtures from an upstream feed.
type FixtureSource interface {
	FetchSlate(ctx context.Context, ref string) ([]game.Fixture, error)
}

// SlateCache serves public slate reads from a per-process cache. Invalidate
// drops every cached slate after a local write.
type SlateCache interface {
	ListByRound(ctx context.Context, roundID string) ([]game.Game, error)
	Invalidate(ctx context.Context)
}

type RoundServiceConfig struct {
	Rules         ticket.Rules
	InitialStatus round.Status
	SweepWorkers  int
}

type ProvisionRoundInput struct {
	Number     int
	StartDate  time.Time
	DeadlineAt time.Time
	Games      []game.Fixture
}

type LockResult struct {
	Round      round.Round
	Locked     bool
	Autofilled int
}

type SweepResult struct {
	Processed  int      `json:"processed"`
	Locked     int      `json:"locked"`
	Autofilled int      `json:"autofilled"`
	Failed     int      `json:"failed"`
	FailedIDs  []string `json:"failed_round_ids,omitempty"`
}

type RoundService struct {
	roundRepo  round.Repository
	gameRepo   game.Repository
	slates     SlateCache
	ticketRepo ticket.Repository
	autofill   *AutofillService
	authz      Authorizer
	fixtures   FixtureSource
	ids        id.Generator
	cfg        RoundServiceConfig
	logger     *logging.Logger
	now        func() time.Time
}

func NewRoundService(
	roundRepo round.Repository,
	gameRepo game.Repository,
	ticketRepo ticket.Repository,
	autofill *AutofillService,
	authz Authorizer,
	fixtures FixtureSource,
	ids id.Generator,
	cfg RoundServiceConfig,
	logger *logging.Logger,
) *RoundService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.InitialStatus == "" {
		cfg.InitialStatus = round.StatusDraft
	}
	if cfg.SweepWorkers <= 0 {
		cfg.SweepWorkers = defaultSweepWorkers
	}
	return &RoundService{
		roundRepo:  roundRepo,
		gameRepo:   gameRepo,
		ticketRepo: ticketRepo,
		autofill:   autofill,
		authz:      authz,
		fixtures:   fixtures,
		ids:        ids,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// SetSlateCache routes public ListGames reads through cache. Every other read
// and all writes keep using the game repository.
func (s *RoundService) SetSlateCache(cache SlateCache) {
	s.slates = cache
}

func (s *RoundService) invalidateSlates(ctx context.Context) {
	if s.slates != nil {
		s.slates.Invalidate(ctx)
	}
}

// ProvisionRound creates a round in draft, optionally with its slate, and
// activates it right away when the deployment skips the draft stage.
func (s *RoundService) ProvisionRound(ctx context.Context, actorID string, input ProvisionRoundInput) (round.Round, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.ProvisionRound")
	defer span.End()

	if err := requireRole(ctx, s.authz, actorID, editorRoles...); err != nil {
		return round.Round{}, err
	}
	if len(input.Games) > 0 {
		if err := game.ValidateSlate(input.Games, s.cfg.Rules.GamesPerRound); err != nil {
			return round.Round{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}
	if s.cfg.InitialStatus == round.StatusActive && len(input.Games) == 0 {
		return round.Round{}, fmt.Errorf("%w: games are required when rounds start active", ErrInvalidInput)
	}

	roundID, err := s.ids.NewID()
	if err != nil {
		return round.Round{}, fmt.Errorf("generate round id: %w", err)
	}

	now := s.now().UTC()
	item := round.Round{
		ID:         roundID,
		Number:     input.Number,
		StartDate:  input.StartDate.UTC(),
		DeadlineAt: input.DeadlineAt.UTC(),
		Status:     round.StatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := item.Validate(); err != nil {
		return round.Round{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	created, err := s.roundRepo.Create(ctx, item)
	if err != nil {
		if errors.Is(err, round.ErrDuplicateNumber) {
			return round.Round{}, fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return round.Round{}, storageError(err, "create round")
	}

	if len(input.Games) > 0 {
		if _, err := s.storeSlate(ctx, created.ID, input.Games); err != nil {
			s.discardRound(ctx, created.ID, err)
			return round.Round{}, err
		}
	}

	if s.cfg.InitialStatus == round.StatusActive {
		if _, err := s.roundRepo.TransitionStatus(ctx, created.ID, round.StatusDraft, round.StatusActive, now); err != nil {
			s.discardRound(ctx, created.ID, err)
			return round.Round{}, storageError(err, "activate round")
		}
		created.Status = round.StatusActive
	}

	s.logger.InfoContext(ctx, "round provisioned",
		"round_id", created.ID,
		"round_number", created.Number,
		"status", string(created.Status),
		"games", len(input.Games),
		"actor_id", actorID,
	)
	return created, nil
}

// discardRound removes a round whose provisioning failed halfway, so a retry
// does not leave an empty draft behind under the auto-assigned number.
func (s *RoundService) discardRound(ctx context.Context, roundID string, cause error) {
	if err := s.roundRepo.Delete(context.WithoutCancel(ctx), roundID); err != nil {
		s.logger.ErrorContext(ctx, "discard partially provisioned round failed",
			"round_id", roundID,
			"cause", cause.Error(),
			"error", err.Error(),
		)
		return
	}
	s.invalidateSlates(ctx)
}

// ReplaceGames swaps the whole slate. It is legal in draft, and in active only
// while no ticket references the games.
func (s *RoundService) ReplaceGames(ctx context.Context, actorID, roundID string, fixtures []game.Fixture) ([]game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.ReplaceGames", roundAttr(roundID))
	defer span.End()

	if err := requireRole(ctx, s.authz, actorID, editorRoles...); err != nil {
		return nil, err
	}
	return s.replaceGames(ctx, roundID, fixtures)
}

// ImportGames pulls a slate from the fixture feed and replaces the round's games.
func (s *RoundService) ImportGames(ctx context.Context, actorID, roundID, ref string) ([]game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.ImportGames", roundAttr(roundID))
	defer span.End()

	if err := requireRole(ctx, s.authz, actorID, editorRoles...); err != nil {
		return nil, err
	}
	if s.fixtures == nil {
		return nil, fmt.Errorf("%w: fixture feed is not configured", ErrDependencyUnavailable)
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: slate reference is required", ErrInvalidInput)
	}

	fixtures, err := s.fixtures.FetchSlate(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("fetch slate %s: %w", ref, err)
	}
	return s.replaceGames(ctx, roundID, fixtures)
}

func (s *RoundService) replaceGames(ctx context.Context, roundID string, fixtures []game.Fixture) ([]game.Game, error) {
	if err := game.ValidateSlate(fixtures, s.cfg.Rules.GamesPerRound); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	item, err := s.mustGetRound(ctx, roundID)
	if err != nil {
		return nil, err
	}

	switch item.Status {
	case round.StatusDraft:
	case round.StatusActive:
		count, err := s.ticketRepo.CountByRound(ctx, roundID)
		if err != nil {
			return nil, storageError(err, "count tickets")
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: round %s already has %d tickets", ErrConflict, roundID, count)
		}
	default:
		return nil, fmt.Errorf("%w: games of a %s round cannot be replaced", ErrConflict, item.Status)
	}

	return s.storeSlate(ctx, roundID, fixtures)
}

func (s *RoundService) storeSlate(ctx context.Context, roundID string, fixtures []game.Fixture) ([]game.Game, error) {
	now := s.now().UTC()
	games := make([]game.Game, 0, len(fixtures))
	for i, f := range fixtures {
		gameID, err := s.ids.NewID()
		if err != nil {
			return nil, fmt.Errorf("generate game id: %w", err)
		}
		games = append(games, game.Game{
			ID:        gameID,
			RoundID:   roundID,
			Number:    i + 1,
			HomeTeam:  strings.TrimSpace(f.HomeTeam),
			AwayTeam:  strings.TrimSpace(f.AwayTeam),
			League:    strings.TrimSpace(f.League),
			KickoffAt: f.KickoffAt,
			UpdatedAt: now,
		})
	}

	if err := s.gameRepo.ReplaceForRound(ctx, roundID, games); err != nil {
		if errors.Is(err, game.ErrInUse) {
			return nil, fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return nil, storageError(err, "replace games")
	}
	s.invalidateSlates(ctx)
	return games, nil
}

// ActivateRound opens a draft round for tickets. Activating an active round is
// a no-op.
func (s *RoundService) ActivateRound(ctx context.Context, actorID, roundID string) (round.Round, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.ActivateRound", roundAttr(roundID))
	defer span.End()

	if err := requireRole(ctx, s.authz, actorID, editorRoles...); err != nil {
		return round.Round{}, err
	}

	item, err := s.mustGetRound(ctx, roundID)
	if err != nil {
		return round.Round{}, err
	}
	if item.Status == round.StatusActive {
		return item, nil
	}
	if !round.CanTransition(item.Status, round.StatusActive) {
		return round.Round{}, fmt.Errorf("%w: %w: %s -> %s", ErrConflict, round.ErrInvalidTransition, item.Status, round.StatusActive)
	}

	games, err := s.gameRepo.ListByRound(ctx, roundID)
	if err != nil {
		return round.Round{}, storageError(err, "list games")
	}
	if len(games) != s.cfg.Rules.GamesPerRound {
		return round.Round{}, fmt.Errorf("%w: %d games required, round has %d", ErrConflict, s.cfg.Rules.GamesPerRound, len(games))
	}

	now := s.now().UTC()
	if _, err := s.roundRepo.TransitionStatus(ctx, roundID, round.StatusDraft, round.StatusActive, now); err != nil {
		return round.Round{}, storageError(err, "activate round")
	}

	item, err = s.mustGetRound(ctx, roundID)
	if err != nil {
		return round.Round{}, err
	}
	if item.Status != round.StatusActive {
		return round.Round{}, fmt.Errorf("%w: round %s moved to %s concurrently", ErrConflict, roundID, item.Status)
	}

	s.logger.InfoContext(ctx, "round activated", "round_id", roundID, "actor_id", actorID)
	return item, nil
}

// LockRound closes submissions immediately, ignoring the deadline.
func (s *RoundService) LockRound(ctx context.Context, actorID, roundID string) (LockResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.LockRound", roundAttr(roundID))
	defer span.End()

	if err := requireRole(ctx, s.authz, actorID, editorRoles...); err != nil {
		return LockResult{}, err
	}
	return s.Lock(ctx, roundID, true)
}

// Lock moves an active round past its deadline to locked and autofills missing
// tickets. The status change is a conditional update, so among concurrent
// callers only the winner autofills. A round found locked without a completed
// autofill is autofilled again; autofill itself is idempotent.
func (s *RoundService) Lock(ctx context.Context, roundID string, force bool) (LockResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.Lock", roundAttr(roundID))
	defer span.End()

	item, err := s.mustGetRound(ctx, roundID)
	if err != nil {
		return LockResult{}, err
	}

	result := LockResult{Round: item}
	now := s.now().UTC()

	switch item.Status {
	case round.StatusDraft:
		return result, fmt.Errorf("%w: draft round %s cannot be locked", ErrConflict, roundID)
	case round.StatusFinished:
		return result, nil
	case round.StatusActive:
		if !force && !item.DeadlinePassed(now) {
			return result, fmt.Errorf("%w: round %s deadline %s not reached", ErrConflict, roundID, item.DeadlineAt.UTC().Format(time.RFC3339))
		}

		won, err := s.roundRepo.TransitionStatus(ctx, roundID, round.StatusActive, round.StatusLocked, now)
		if err != nil {
			return result, storageError(err, "lock round")
		}
		if !won {
			latest, err := s.mustGetRound(ctx, roundID)
			if err != nil {
				return result, err
			}
			result.Round = latest
			return result, nil
		}

		result.Locked = true
		item.Status = round.StatusLocked
		item.LockedAt = &now
		trigger := "deadline"
		if force {
			trigger = "manual"
		}
		metrics.RoundLocked(trigger)
		s.logger.InfoContext(ctx, "round locked", "round_id", roundID, "trigger", trigger)
	}

	if !item.NeedsAutofill() {
		result.Round = item
		return result, nil
	}

	filled, err := s.autofill.AutofillMissing(ctx, roundID)
	result.Autofilled = filled.CreatedCount
	if err != nil {
		return result, fmt.Errorf("autofill round %s: %w", roundID, err)
	}
	if err := s.roundRepo.MarkAutofilled(ctx, roundID, now); err != nil {
		return result, storageError(err, "mark round autofilled")
	}
	item.AutofilledAt = &now
	result.Round = item
	return result, nil
}

// SweepDueRounds locks every overdue active round and finishes interrupted
// autofills. Failures of one round do not stop the others.
func (s *RoundService) SweepDueRounds(ctx context.Context) (SweepResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.SweepDueRounds")
	defer span.End()

	started := s.now()
	defer metrics.SweepFinished(started)

	due, err := s.roundRepo.ListDueForLock(ctx, s.now().UTC())
	if err != nil {
		return SweepResult{}, storageError(err, "list rounds due for lock")
	}

	result := SweepResult{Processed: len(due)}
	if len(due) == 0 {
		return result, nil
	}

	var lockedCount atomic.Int32
	var autofilledCount atomic.Int32
	var failedMu sync.Mutex

	pool, err := ants.NewPool(s.cfg.SweepWorkers)
	if err != nil {
		return SweepResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, item := range due {
		item := item
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			res, err := s.Lock(ctx, item.ID, false)
			if res.Locked {
				lockedCount.Add(1)
			}
			autofilledCount.Add(int32(res.Autofilled))
			if err != nil {
				s.logger.WarnContext(ctx, "lock sweep failed for round", "round_id", item.ID, "error", err)
				failedMu.Lock()
				result.FailedIDs = append(result.FailedIDs, item.ID)
				failedMu.Unlock()
			}
		}); err != nil {
			workers.Done()
			return SweepResult{}, fmt.Errorf("submit lock task to worker pool: %w", err)
		}
	}
	workers.Wait()

	sort.Strings(result.FailedIDs)
	result.Locked = int(lockedCount.Load())
	result.Autofilled = int(autofilledCount.Load())
	result.Failed = len(result.FailedIDs)

	s.logger.InfoContext(ctx, "lock sweep finished",
		"processed", result.Processed,
		"locked", result.Locked,
		"autofilled", result.Autofilled,
		"failed", result.Failed,
	)
	return result, nil
}

// SetGameResult records the official result of a game. Results are accepted
// once the round is locked; editing a finished round flags its standings as
// stale until scores are recomputed.
func (s *RoundService) SetGameResult(ctx context.Context, actorID, gameID, rawSymbol string) (game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.SetGameResult", gameAttr(gameID))
	defer span.End()

	if err := requireRole(ctx, s.authz, actorID, editorRoles...); err != nil {
		return game.Game{}, err
	}

	symbol, err := outcome.ParseSymbol(rawSymbol)
	if err != nil {
		return game.Game{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	item, exists, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return game.Game{}, storageError(err, "get game")
	}
	if !exists {
		return game.Game{}, fmt.Errorf("%w: game=%s", ErrNotFound, gameID)
	}

	owner, err := s.mustGetRound(ctx, item.RoundID)
	if err != nil {
		return game.Game{}, err
	}
	if !owner.Status.AcceptsResults() {
		return game.Game{}, fmt.Errorf("%w: results cannot be entered while round %s is %s", ErrConflict, owner.ID, owner.Status)
	}

	now := s.now().UTC()
	if err := s.gameRepo.SetResult(ctx, item.ID, symbol, now); err != nil {
		return game.Game{}, storageError(err, "set game result")
	}
	s.invalidateSlates(ctx)
	item.Result = &symbol
	item.UpdatedAt = now

	if owner.Status == round.StatusFinished {
		s.logger.WarnContext(ctx, "result changed on finished round, standings are stale until scores are recomputed",
			"round_id", owner.ID,
			"game_id", item.ID,
			"result", symbol.String(),
		)
	}
	return item, nil
}

// DeleteRound removes a round and its games. Rounds with tickets are kept.
func (s *RoundService) DeleteRound(ctx context.Context, actorID, roundID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.DeleteRound", roundAttr(roundID))
	defer span.End()

	if err := requireRole(ctx, s.authz, actorID, editorRoles...); err != nil {
		return err
	}
	if _, err := s.mustGetRound(ctx, roundID); err != nil {
		return err
	}

	count, err := s.ticketRepo.CountByRound(ctx, roundID)
	if err != nil {
		return storageError(err, "count tickets")
	}
	if count > 0 {
		return fmt.Errorf("%w: %w: %d tickets", ErrConflict, round.ErrHasTickets, count)
	}

	if err := s.roundRepo.Delete(ctx, roundID); err != nil {
		if errors.Is(err, round.ErrHasTickets) {
			return fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return storageError(err, "delete round")
	}
	s.invalidateSlates(ctx)

	s.logger.InfoContext(ctx, "round deleted", "round_id", roundID, "actor_id", actorID)
	return nil
}

func (s *RoundService) GetRound(ctx context.Context, roundID string, includeDrafts bool) (round.Round, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.GetRound", roundAttr(roundID))
	defer span.End()

	item, err := s.mustGetRound(ctx, roundID)
	if err != nil {
		return round.Round{}, err
	}
	if item.Status == round.StatusDraft && !includeDrafts {
		return round.Round{}, fmt.Errorf("%w: round=%s", ErrNotFound, roundID)
	}
	return item, nil
}

// LatestRound returns the round with the highest number.
func (s *RoundService) LatestRound(ctx context.Context, includeDrafts bool) (round.Round, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.LatestRound")
	defer span.End()

	item, exists, err := s.roundRepo.GetLatest(ctx, includeDrafts)
	if err != nil {
		return round.Round{}, storageError(err, "get latest round")
	}
	if !exists {
		return round.Round{}, fmt.Errorf("%w: no rounds yet", ErrNotFound)
	}
	return item, nil
}

func (s *RoundService) ListRounds(ctx context.Context, includeDrafts bool) ([]round.Round, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.ListRounds")
	defer span.End()

	items, err := s.roundRepo.List(ctx, includeDrafts)
	if err != nil {
		return nil, storageError(err, "list rounds")
	}
	return items, nil
}

// ListAllRounds is the editor view of ListRounds, drafts included.
func (s *RoundService) ListAllRounds(ctx context.Context, actorID string) ([]round.Round, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.ListAllRounds")
	defer span.End()

	if err := requireRole(ctx, s.authz, actorID, editorRoles...); err != nil {
		return nil, err
	}
	return s.ListRounds(ctx, true)
}

func (s *RoundService) ListGames(ctx context.Context, roundID string, includeDrafts bool) ([]game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoundService.ListGames", roundAttr(roundID))
	defer span.End()

	if _, err := s.GetRound(ctx, roundID, includeDrafts); err != nil {
		return nil, err
	}
	var games []game.Game
	var err error
	if s.slates != nil && !includeDrafts {
		games, err = s.slates.ListByRound(ctx, roundID)
	} else {
		games, err = s.gameRepo.ListByRound(ctx, roundID)
	}
	if err != nil {
		return nil, storageError(err, "list games")
	}
	return games, nil
}

func (s *RoundService) mustGetRound(ctx context.Context, roundID string) (round.Round, error) {
	roundID = strings.TrimSpace(roundID)
	if roundID == "" {
		return round.Round{}, fmt.Errorf("%w: round id is required", ErrInvalidInput)
	}

	item, exists, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return round.Round{}, storageError(err, "get round")
	}
	if !exists {
		return round.Round{}, fmt.Errorf("%w: round=%s", ErrNotFound, roundID)
	}
	return item, nil
}
