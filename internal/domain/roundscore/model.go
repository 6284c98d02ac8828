package roundscore

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// PayerPolicy selects which score extremum carries the payer label.
type PayerPolicy string

const (
	// PayerAtMaxHits flags everyone tied at the highest hit count.
	PayerAtMaxHits PayerPolicy = "max_hits"
	// PayerAtMinHits flags everyone tied at the lowest hit count.
	PayerAtMinHits PayerPolicy = "min_hits"

	DefaultPayerPolicy = PayerAtMaxHits
)

var ErrUnknownPayerPolicy = errors.New("unknown payer policy")

func ParsePayerPolicy(raw string) (PayerPolicy, error) {
	switch PayerPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case PayerAtMaxHits, "max":
		return PayerAtMaxHits, nil
	case PayerAtMinHits, "min":
		return PayerAtMinHits, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPayerPolicy, raw)
	}
}

// Extremum returns the max or min of hits depending on the policy.
func (p PayerPolicy) Extremum(hits []int) int {
	if len(hits) == 0 {
		return 0
	}
	out := hits[0]
	for _, h := range hits[1:] {
		if p == PayerAtMinHits {
			if h < out {
				out = h
			}
			continue
		}
		if h > out {
			out = h
		}
	}
	return out
}

// RoundScore is the materialized ranking row of one user in one round.
type RoundScore struct {
	RoundID string
	UserID  string
	Hits    int
	Rank    int
	IsPayer bool
}

// Tally is a user's hit count before ranking.
type Tally struct {
	UserID string
	Hits   int
}

// Ranking is the result of ranking a round's tallies.
type Ranking struct {
	Scores   []RoundScore
	Extremum int
	Payers   []string
}

// Rank applies competition ranking (rank = 1 + number of users with strictly
// more hits) and flags payers at the policy's extremum. Scores are ordered by
// rank, then user id.
func Rank(roundID string, tallies []Tally, policy PayerPolicy) Ranking {
	sorted := append([]Tally(nil), tallies...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Hits != sorted[j].Hits {
			return sorted[i].Hits > sorted[j].Hits
		}
		return sorted[i].UserID < sorted[j].UserID
	})

	hits := make([]int, 0, len(sorted))
	for _, t := range sorted {
		hits = append(hits, t.Hits)
	}
	extremum := policy.Extremum(hits)

	out := Ranking{
		Scores:   make([]RoundScore, 0, len(sorted)),
		Extremum: extremum,
	}
	rank := 0
	for i, t := range sorted {
		if i == 0 || t.Hits != sorted[i-1].Hits {
			rank = i + 1
		}
		isPayer := t.Hits == extremum
		if isPayer {
			out.Payers = append(out.Payers, t.UserID)
		}
		out.Scores = append(out.Scores, RoundScore{
			RoundID: roundID,
			UserID:  t.UserID,
			Hits:    t.Hits,
			Rank:    rank,
			IsPayer: isPayer,
		})
	}
	return out
}

// Correctness is the cached evaluation of one prediction.
type Correctness struct {
	TicketID  string
	GameID    string
	IsCorrect *bool
}

// Publication is everything written when a round's scores are computed.
type Publication struct {
	RoundID     string
	Scores      []RoundScore
	Correctness []Correctness
	ComputedAt  time.Time
}
