package ticket

import (
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/toto/internal/domain/outcome"
)

var (
	ErrIncompleteCoverage   = errors.New("incomplete coverage")
	ErrInvalidOutcomeSymbol = errors.New("invalid outcome symbol")
	ErrEmptyPick            = errors.New("empty pick")
	ErrTooManySymbols       = errors.New("too many symbols")
	ErrWrongDoubleCount     = errors.New("wrong double count")
)

const maxSymbolsPerPick = 2

// Rules stores ticket validation parameters.
type Rules struct {
	GamesPerRound    int
	DoublesPerTicket int
}

func DefaultRules() Rules {
	return Rules{
		GamesPerRound:    16,
		DoublesPerTicket: 3,
	}
}

func (r Rules) Validate() error {
	if r.GamesPerRound < 1 {
		return fmt.Errorf("games per round must be >= 1")
	}
	if r.DoublesPerTicket < 0 || r.DoublesPerTicket > r.GamesPerRound {
		return fmt.Errorf("doubles per ticket must be between 0 and %d", r.GamesPerRound)
	}
	return nil
}

// Entry is one raw submitted pick before normalization.
type Entry struct {
	GameID  string
	Symbols []string
}

// ValidatePredictions checks a submission against the round's game ids and
// returns normalized predictions in slate order. It has no side effects.
func ValidatePredictions(entries []Entry, gameIDs []string, rules Rules) ([]Prediction, error) {
	known := make(map[string]struct{}, len(gameIDs))
	for _, id := range gameIDs {
		known[id] = struct{}{}
	}

	byGame := make(map[string]outcome.Pick, len(entries))
	for _, entry := range entries {
		gameID := strings.TrimSpace(entry.GameID)
		if _, ok := known[gameID]; !ok {
			return nil, fmt.Errorf("%w: game %q is not part of the round", ErrIncompleteCoverage, entry.GameID)
		}
		if _, dup := byGame[gameID]; dup {
			return nil, fmt.Errorf("%w: game %s picked more than once", ErrIncompleteCoverage, gameID)
		}
		if len(entry.Symbols) == 0 {
			return nil, fmt.Errorf("%w: game %s has no symbols", ErrEmptyPick, gameID)
		}

		pick, err := outcome.NewPick(entry.Symbols)
		if err != nil {
			return nil, fmt.Errorf("%w: game %s: %v", ErrInvalidOutcomeSymbol, gameID, err)
		}
		if len(pick) > maxSymbolsPerPick {
			return nil, fmt.Errorf("%w: game %s has %d symbols, at most %d allowed", ErrTooManySymbols, gameID, len(pick), maxSymbolsPerPick)
		}
		byGame[gameID] = pick
	}

	if len(byGame) != len(gameIDs) {
		return nil, fmt.Errorf("%w: expected %d games, found %d", ErrIncompleteCoverage, len(gameIDs), len(byGame))
	}

	out := make([]Prediction, 0, len(gameIDs))
	doubles := 0
	for _, id := range gameIDs {
		pick := byGame[id]
		if pick.IsDouble() {
			doubles++
		}
		out = append(out, Prediction{GameID: id, Pick: pick})
	}

	if doubles != rules.DoublesPerTicket {
		return nil, fmt.Errorf("%w: %d doubles required, found %d", ErrWrongDoubleCount, rules.DoublesPerTicket, doubles)
	}

	return out, nil
}

// IsValidationError reports whether err is one of the ticket rule failures.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrIncompleteCoverage) ||
		errors.Is(err, ErrInvalidOutcomeSymbol) ||
		errors.Is(err, ErrEmptyPick) ||
		errors.Is(err, ErrTooManySymbols) ||
		errors.Is(err, ErrWrongDoubleCount)
}
