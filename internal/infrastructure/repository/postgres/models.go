package postgres

import (
	"time"
)

var (
	memberColumns     = []string{"user_id", "display_name", "role", "active", "joined_at", "updated_at"}
	roundColumns      = []string{"id", "round_number", "start_date", "deadline_at", "status", "results_updated", "locked_at", "autofilled_at", "finished_at", "created_at", "updated_at"}
	gameColumns       = []string{"id", "round_id", "game_number", "home_team", "away_team", "league", "kickoff_at", "result", "updated_at"}
	ticketColumns     = []string{"id", "round_id", "user_id", "submitted_at", "autofilled"}
	roundScoreColumns = []string{"round_id", "user_id", "hits", "rank", "is_payer"}
)

type memberTableModel struct {
	UserID      string    `db:"user_id"`
	DisplayName string    `db:"display_name"`
	Role        string    `db:"role"`
	Active      bool      `db:"active"`
	JoinedAt    time.Time `db:"joined_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type roundTableModel struct {
	ID             string     `db:"id"`
	Number         int        `db:"round_number"`
	StartDate      time.Time  `db:"start_date"`
	DeadlineAt     time.Time  `db:"deadline_at"`
	Status         string     `db:"status"`
	ResultsUpdated bool       `db:"results_updated"`
	LockedAt       *time.Time `db:"locked_at"`
	AutofilledAt   *time.Time `db:"autofilled_at"`
	FinishedAt     *time.Time `db:"finished_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

type gameTableModel struct {
	ID        string     `db:"id"`
	RoundID   string     `db:"round_id"`
	Number    int        `db:"game_number"`
	HomeTeam  string     `db:"home_team"`
	AwayTeam  string     `db:"away_team"`
	League    string     `db:"league"`
	KickoffAt *time.Time `db:"kickoff_at"`
	Result    *string    `db:"result"`
	UpdatedAt time.Time  `db:"updated_at"`
}

type ticketTableModel struct {
	ID          string    `db:"id"`
	RoundID     string    `db:"round_id"`
	UserID      string    `db:"user_id"`
	SubmittedAt time.Time `db:"submitted_at"`
	Autofilled  bool      `db:"autofilled"`
}

type predictionTableModel struct {
	TicketID  string `db:"ticket_id"`
	GameID    string `db:"game_id"`
	Pick      string `db:"pick"`
	IsCorrect *bool  `db:"is_correct"`
}

type roundScoreTableModel struct {
	RoundID string `db:"round_id"`
	UserID  string `db:"user_id"`
	Hits    int    `db:"hits"`
	Rank    int    `db:"rank"`
	IsPayer bool   `db:"is_payer"`
}
