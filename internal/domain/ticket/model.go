package ticket

import (
	"errors"
	"time"

	"github.com/riskibarqy/toto/internal/domain/outcome"
)

// ErrRoundNotAccepting is returned by storage when the round stopped accepting
// tickets between the caller's check and the write.
var ErrRoundNotAccepting = errors.New("round is not accepting tickets")

// Ticket is one user's full set of predictions for a round.
type Ticket struct {
	ID          string
	RoundID     string
	UserID      string
	SubmittedAt time.Time
	Autofilled  bool
	Predictions []Prediction
}

// Prediction is the pick for one game of the ticket's round.
type Prediction struct {
	TicketID  string
	GameID    string
	Pick      outcome.Pick
	IsCorrect *bool
}

func (p Prediction) IsDouble() bool {
	return p.Pick.IsDouble()
}

// Doubles counts predictions covering two symbols.
func (t Ticket) Doubles() int {
	n := 0
	for _, p := range t.Predictions {
		if p.IsDouble() {
			n++
		}
	}
	return n
}

// PredictionFor returns the prediction for a game, if any.
func (t Ticket) PredictionFor(gameID string) (Prediction, bool) {
	for _, p := range t.Predictions {
		if p.GameID == gameID {
			return p, true
		}
	}
	return Prediction{}, false
}

func Clone(t Ticket) Ticket {
	out := t
	out.Predictions = make([]Prediction, 0, len(t.Predictions))
	for _, p := range t.Predictions {
		cp := p
		cp.Pick = append(outcome.Pick(nil), p.Pick...)
		if p.IsCorrect != nil {
			v := *p.IsCorrect
			cp.IsCorrect = &v
		}
		out.Predictions = append(out.Predictions, cp)
	}
	return out
}
