package httpapi

import (
	"time"

	"github.com/riskibarqy/toto/internal/domain/game"
	"github.com/riskibarqy/toto/internal/domain/member"
	"github.com/riskibarqy/toto/internal/domain/round"
	"github.com/riskibarqy/toto/internal/domain/roundscore"
	"github.com/riskibarqy/toto/internal/domain/ticket"
	"github.com/riskibarqy/toto/internal/usecase"
)

type fixtureRequest struct {
	League    string `json:"league" validate:"max=100"`
	HomeTeam  string `json:"home_team" validate:"required,max=100"`
	AwayTeam  string `json:"away_team" validate:"required,max=100"`
	KickoffAt string `json:"kickoff_at"`
}

type provisionRoundRequest struct {
	Number     int              `json:"number" validate:"gte=0"`
	StartDate  string           `json:"start_date" validate:"required"`
	DeadlineAt string           `json:"deadline_at" validate:"required"`
	Games      []fixtureRequest `json:"games" validate:"omitempty,dive"`
}

type replaceGamesRequest struct {
	Games []fixtureRequest `json:"games" validate:"required,dive"`
}

type importGamesRequest struct {
	Ref string `json:"ref" validate:"required,max=100"`
}

// Symbols are not validated here so the domain can report the exact rule broken.
type predictionRequest struct {
	GameID  string   `json:"game_id" validate:"required"`
	Symbols []string `json:"symbols"`
}

type submitTicketRequest struct {
	Predictions []predictionRequest `json:"predictions" validate:"dive"`
}

type setGameResultRequest struct {
	Result string `json:"result" validate:"required,max=1"`
}

type upsertMemberRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=100"`
	Role        string `json:"role" validate:"required"`
	Active      *bool  `json:"active" validate:"required"`
}

type roundDTO struct {
	ID             string     `json:"id"`
	Number         int        `json:"number"`
	StartDate      time.Time  `json:"start_date"`
	DeadlineAt     time.Time  `json:"deadline_at"`
	Status         string     `json:"status"`
	ResultsUpdated bool       `json:"results_updated"`
	LockedAt       *time.Time `json:"locked_at,omitempty"`
	AutofilledAt   *time.Time `json:"autofilled_at,omitempty"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
}

type gameDTO struct {
	ID        string     `json:"id"`
	RoundID   string     `json:"round_id"`
	Number    int        `json:"number"`
	League    string     `json:"league,omitempty"`
	HomeTeam  string     `json:"home_team"`
	AwayTeam  string     `json:"away_team"`
	KickoffAt *time.Time `json:"kickoff_at,omitempty"`
	Result    *string    `json:"result,omitempty"`
}

type predictionDTO struct {
	GameID    string   `json:"game_id"`
	Symbols   []string `json:"symbols"`
	IsDouble  bool     `json:"is_double"`
	IsCorrect *bool    `json:"is_correct,omitempty"`
}

type ticketDTO struct {
	ID          string          `json:"id"`
	RoundID     string          `json:"round_id"`
	UserID      string          `json:"user_id"`
	SubmittedAt time.Time       `json:"submitted_at"`
	Autofilled  bool            `json:"autofilled"`
	Doubles     int             `json:"doubles"`
	Predictions []predictionDTO `json:"predictions"`
}

type roundScoreDTO struct {
	UserID  string `json:"user_id"`
	Hits    int    `json:"hits"`
	Rank    int    `json:"rank"`
	IsPayer bool   `json:"is_payer"`
}

type scoreSummaryDTO struct {
	RoundID      string   `json:"round_id"`
	Policy       string   `json:"payer_policy"`
	Extremum     int      `json:"payer_hits"`
	PayerUserIDs []string `json:"payer_user_ids"`
	TotalPlayers int      `json:"total_players"`
}

type seasonSummaryDTO struct {
	UserID       string  `json:"user_id"`
	RoundsPlayed int     `json:"rounds_played"`
	TotalHits    int     `json:"total_hits"`
	AverageHits  float64 `json:"average_hits"`
	BestHits     int     `json:"best_hits"`
	PayerCount   int     `json:"payer_count"`
}

type lockResultDTO struct {
	Round      roundDTO `json:"round"`
	Locked     bool     `json:"locked"`
	Autofilled int      `json:"autofilled"`
}

type memberDTO struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	Active      bool      `json:"active"`
	JoinedAt    time.Time `json:"joined_at"`
}

func fixturesFromRequest(items []fixtureRequest) ([]game.Fixture, error) {
	out := make([]game.Fixture, 0, len(items))
	for _, item := range items {
		kickoff, err := parseOptionalTimestamp("kickoff_at", item.KickoffAt)
		if err != nil {
			return nil, err
		}
		out = append(out, game.Fixture{
			League:    item.League,
			HomeTeam:  item.HomeTeam,
			AwayTeam:  item.AwayTeam,
			KickoffAt: kickoff,
		})
	}
	return out, nil
}

func entriesFromRequest(items []predictionRequest) []ticket.Entry {
	out := make([]ticket.Entry, 0, len(items))
	for _, item := range items {
		out = append(out, ticket.Entry{GameID: item.GameID, Symbols: item.Symbols})
	}
	return out
}

func roundToDTO(item round.Round) roundDTO {
	return roundDTO{
		ID:             item.ID,
		Number:         item.Number,
		StartDate:      item.StartDate,
		DeadlineAt:     item.DeadlineAt,
		Status:         string(item.Status),
		ResultsUpdated: item.ResultsUpdated,
		LockedAt:       item.LockedAt,
		AutofilledAt:   item.AutofilledAt,
		FinishedAt:     item.FinishedAt,
	}
}

func roundsToDTO(items []round.Round) []roundDTO {
	out := make([]roundDTO, 0, len(items))
	for _, item := range items {
		out = append(out, roundToDTO(item))
	}
	return out
}

func gameToDTO(item game.Game) gameDTO {
	dto := gameDTO{
		ID:        item.ID,
		RoundID:   item.RoundID,
		Number:    item.Number,
		League:    item.League,
		HomeTeam:  item.HomeTeam,
		AwayTeam:  item.AwayTeam,
		KickoffAt: item.KickoffAt,
	}
	if item.Result != nil {
		result := item.Result.String()
		dto.Result = &result
	}
	return dto
}

func gamesToDTO(items []game.Game) []gameDTO {
	out := make([]gameDTO, 0, len(items))
	for _, item := range items {
		out = append(out, gameToDTO(item))
	}
	return out
}

func ticketToDTO(item ticket.Ticket) ticketDTO {
	predictions := make([]predictionDTO, 0, len(item.Predictions))
	for _, p := range item.Predictions {
		predictions = append(predictions, predictionDTO{
			GameID:    p.GameID,
			Symbols:   p.Pick.Strings(),
			IsDouble:  p.IsDouble(),
			IsCorrect: p.IsCorrect,
		})
	}
	return ticketDTO{
		ID:          item.ID,
		RoundID:     item.RoundID,
		UserID:      item.UserID,
		SubmittedAt: item.SubmittedAt,
		Autofilled:  item.Autofilled,
		Doubles:     item.Doubles(),
		Predictions: predictions,
	}
}

func roundScoresToDTO(items []roundscore.RoundScore) []roundScoreDTO {
	out := make([]roundScoreDTO, 0, len(items))
	for _, item := range items {
		out = append(out, roundScoreDTO{
			UserID:  item.UserID,
			Hits:    item.Hits,
			Rank:    item.Rank,
			IsPayer: item.IsPayer,
		})
	}
	return out
}

func scoreSummaryToDTO(item usecase.ScoreSummary) scoreSummaryDTO {
	payers := item.PayerUserIDs
	if payers == nil {
		payers = []string{}
	}
	return scoreSummaryDTO{
		RoundID:      item.RoundID,
		Policy:       string(item.Policy),
		Extremum:     item.Extremum,
		PayerUserIDs: payers,
		TotalPlayers: item.TotalPlayers,
	}
}

func seasonSummaryToDTO(items []usecase.UserSeasonSummary) []seasonSummaryDTO {
	out := make([]seasonSummaryDTO, 0, len(items))
	for _, item := range items {
		out = append(out, seasonSummaryDTO(item))
	}
	return out
}

func memberToDTO(item member.Member) memberDTO {
	return memberDTO{
		UserID:      item.UserID,
		DisplayName: item.DisplayName,
		Role:        string(item.Role),
		Active:      item.Active,
		JoinedAt:    item.JoinedAt,
	}
}
