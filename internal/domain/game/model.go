package game

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/toto/internal/domain/outcome"
)

var (
	ErrWrongSlateSize = errors.New("wrong number of games")
	ErrMissingTeam    = errors.New("home and away team are required")
	ErrInUse          = errors.New("games are referenced by tickets")
)

// Game is one fixture within a round.
type Game struct {
	ID        string
	RoundID   string
	Number    int
	HomeTeam  string
	AwayTeam  string
	League    string
	KickoffAt *time.Time
	Result    *outcome.Symbol
	UpdatedAt time.Time
}

func (g Game) HasResult() bool {
	return g.Result != nil
}

// Fixture is the provisioner-facing shape of a game before it is numbered.
type Fixture struct {
	League    string
	HomeTeam  string
	AwayTeam  string
	KickoffAt *time.Time
}

// ValidateSlate requires exactly size fixtures, each with both teams named.
func ValidateSlate(fixtures []Fixture, size int) error {
	if len(fixtures) != size {
		return fmt.Errorf("%w: expected %d, got %d", ErrWrongSlateSize, size, len(fixtures))
	}
	for i, f := range fixtures {
		if strings.TrimSpace(f.HomeTeam) == "" || strings.TrimSpace(f.AwayTeam) == "" {
			return fmt.Errorf("%w: game %d", ErrMissingTeam, i+1)
		}
	}
	return nil
}

// CountMissingResults returns how many games still have no official result.
func CountMissingResults(games []Game) int {
	missing := 0
	for _, g := range games {
		if !g.HasResult() {
			missing++
		}
	}
	return missing
}

// IDs returns game ids in slate order.
func IDs(games []Game) []string {
	out := make([]string, 0, len(games))
	for _, g := range games {
		out = append(out, g.ID)
	}
	return out
}
