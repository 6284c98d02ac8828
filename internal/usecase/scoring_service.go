package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/toto/internal/domain/game"
	"github.com/riskibarqy/toto/internal/domain/outcome"
	"github.com/riskibarqy/toto/internal/domain/round"
	"github.com/riskibarqy/toto/internal/domain/roundscore"
	"github.com/riskibarqy/toto/internal/domain/ticket"
	"github.com/riskibarqy/toto/internal/platform/logging"
	"github.com/riskibarqy/toto/internal/platform/metrics"
	"github.com/sourcegraph/conc/iter"
)

type ScoringService struct {
	roundRepo  round.Repository
	gameRepo   game.Repository
	ticketRepo ticket.Repository
	scoreRepo  roundscore.Repository
	authz      Authorizer
	policy     roundscore.PayerPolicy
	logger     *logging.Logger
	now        func() time.Time
}

type ScoreSummary struct {
	RoundID      string
	Policy       roundscore.PayerPolicy
	Extremum     int
	PayerUserIDs []string
	TotalPlayers int
}

type UserSeasonSummary struct {
	UserID       string
	RoundsPlayed int
	TotalHits    int
	AverageHits  float64
	BestHits     int
	PayerCount   int
}

type evaluatedTicket struct {
	tally       roundscore.Tally
	correctness []roundscore.Correctness
}

func NewScoringService(
	roundRepo round.Repository,
	gameRepo game.Repository,
	ticketRepo ticket.Repository,
	scoreRepo roundscore.Repository,
	authz Authorizer,
	policy roundscore.PayerPolicy,
	logger *logging.Logger,
) *ScoringService {
	if logger == nil {
		logger = logging.Default()
	}
	if policy == "" {
		policy = roundscore.DefaultPayerPolicy
	}
	return &ScoringService{
		roundRepo:  roundRepo,
		gameRepo:   gameRepo,
		ticketRepo: ticketRepo,
		scoreRepo:  scoreRepo,
		authz:      authz,
		policy:     policy,
		logger:     logger,
		now:        time.Now,
	}
}

// ComputeScores evaluates every ticket of a fully resulted round, replaces the
// round's standings and marks it finished. Running it again on unchanged
// inputs writes the same rows.
func (s *ScoringService) ComputeScores(ctx context.Context, actorID, roundID string) (ScoreSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ComputeScores", roundAttr(roundID))
	defer span.End()

	if err := requireRole(ctx, s.authz, actorID, editorRoles...); err != nil {
		return ScoreSummary{}, err
	}

	started := s.now()
	summary, err := s.computeScores(ctx, roundID)
	metrics.ScoresComputed(scoreOutcome(err), started)
	if err != nil {
		return ScoreSummary{}, err
	}

	s.logger.InfoContext(ctx, "round scores computed",
		"round_id", roundID,
		"policy", string(summary.Policy),
		"extremum", summary.Extremum,
		"payers", len(summary.PayerUserIDs),
		"players", summary.TotalPlayers,
		"actor_id", actorID,
	)
	return summary, nil
}

func (s *ScoringService) computeScores(ctx context.Context, roundID string) (ScoreSummary, error) {
	item, exists, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return ScoreSummary{}, storageError(err, "get round")
	}
	if !exists {
		return ScoreSummary{}, fmt.Errorf("%w: round=%s", ErrNotFound, roundID)
	}
	if !item.Status.AcceptsResults() {
		return ScoreSummary{}, fmt.Errorf("%w: round %s is %s, scores need a locked round", ErrConflict, roundID, item.Status)
	}

	games, err := s.gameRepo.ListByRound(ctx, roundID)
	if err != nil {
		return ScoreSummary{}, storageError(err, "list games")
	}
	if missing := game.CountMissingResults(games); missing > 0 || len(games) == 0 {
		return ScoreSummary{}, &ResultsIncompleteError{Missing: missing, Total: len(games)}
	}

	tickets, err := s.ticketRepo.ListByRound(ctx, roundID)
	if err != nil {
		return ScoreSummary{}, storageError(err, "list tickets")
	}
	if len(tickets) == 0 {
		return ScoreSummary{}, fmt.Errorf("%w: round=%s", ErrNoParticipants, roundID)
	}

	results := make(map[string]*outcome.Symbol, len(games))
	for _, g := range games {
		results[g.ID] = g.Result
	}

	evaluated := iter.Map(tickets, func(t *ticket.Ticket) evaluatedTicket {
		return evaluateTicket(*t, results)
	})

	tallies := make([]roundscore.Tally, 0, len(evaluated))
	correctness := make([]roundscore.Correctness, 0, len(evaluated)*len(games))
	for _, e := range evaluated {
		tallies = append(tallies, e.tally)
		correctness = append(correctness, e.correctness...)
	}

	ranking := roundscore.Rank(roundID, tallies, s.policy)
	if err := s.scoreRepo.Publish(ctx, roundscore.Publication{
		RoundID:     roundID,
		Scores:      ranking.Scores,
		Correctness: correctness,
		ComputedAt:  s.now().UTC(),
	}); err != nil {
		return ScoreSummary{}, storageError(err, "publish round scores")
	}

	return ScoreSummary{
		RoundID:      roundID,
		Policy:       s.policy,
		Extremum:     ranking.Extremum,
		PayerUserIDs: ranking.Payers,
		TotalPlayers: len(ranking.Scores),
	}, nil
}

// evaluateTicket counts hits. Pending never counts as a hit.
func evaluateTicket(t ticket.Ticket, results map[string]*outcome.Symbol) evaluatedTicket {
	out := evaluatedTicket{
		tally:       roundscore.Tally{UserID: t.UserID},
		correctness: make([]roundscore.Correctness, 0, len(t.Predictions)),
	}
	for _, p := range t.Predictions {
		evaluation := outcome.Evaluate(p.Pick, results[p.GameID])
		if evaluation == outcome.Hit {
			out.tally.Hits++
		}
		out.correctness = append(out.correctness, roundscore.Correctness{
			TicketID:  t.ID,
			GameID:    p.GameID,
			IsCorrect: evaluation.Correct(),
		})
	}
	return out
}

// ListRoundScores returns the standings of a round ordered by rank, then user.
func (s *ScoringService) ListRoundScores(ctx context.Context, roundID string) ([]roundscore.RoundScore, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ListRoundScores", roundAttr(roundID))
	defer span.End()

	item, exists, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		return nil, storageError(err, "get round")
	}
	if !exists || item.Status == round.StatusDraft {
		return nil, fmt.Errorf("%w: round=%s", ErrNotFound, roundID)
	}

	scores, err := s.scoreRepo.ListByRound(ctx, roundID)
	if err != nil {
		return nil, storageError(err, "list round scores")
	}

	out := append([]roundscore.RoundScore(nil), scores...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

// SeasonSummary aggregates published standings per user across all rounds,
// ordered by total hits.
func (s *ScoringService) SeasonSummary(ctx context.Context) ([]UserSeasonSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.SeasonSummary")
	defer span.End()

	scores, err := s.scoreRepo.ListAll(ctx)
	if err != nil {
		return nil, storageError(err, "list all round scores")
	}

	byUser := make(map[string]*UserSeasonSummary)
	for _, score := range scores {
		row, ok := byUser[score.UserID]
		if !ok {
			row = &UserSeasonSummary{UserID: score.UserID}
			byUser[score.UserID] = row
		}
		row.RoundsPlayed++
		row.TotalHits += score.Hits
		if score.Hits > row.BestHits {
			row.BestHits = score.Hits
		}
		if score.IsPayer {
			row.PayerCount++
		}
	}

	out := make([]UserSeasonSummary, 0, len(byUser))
	for _, row := range byUser {
		row.AverageHits = float64(row.TotalHits) / float64(row.RoundsPlayed)
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalHits != out[j].TotalHits {
			return out[i].TotalHits > out[j].TotalHits
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func scoreOutcome(err error) string {
	switch {
	case err == nil:
		return "published"
	case isResultsIncomplete(err):
		return "results_incomplete"
	case isNoParticipants(err):
		return "no_participants"
	default:
		return "error"
	}
}
