package roundscore

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRank_CompetitionRankingWithTies(t *testing.T) {
	tallies := []Tally{
		{UserID: "dina", Hits: 9},
		{UserID: "budi", Hits: 10},
		{UserID: "ani", Hits: 12},
		{UserID: "citra", Hits: 10},
	}

	got := Rank("r1", tallies, PayerAtMaxHits)

	want := []RoundScore{
		{RoundID: "r1", UserID: "ani", Hits: 12, Rank: 1, IsPayer: true},
		{RoundID: "r1", UserID: "budi", Hits: 10, Rank: 2},
		{RoundID: "r1", UserID: "citra", Hits: 10, Rank: 2},
		{RoundID: "r1", UserID: "dina", Hits: 9, Rank: 4},
	}
	if diff := cmp.Diff(want, got.Scores); diff != "" {
		t.Fatalf("unexpected scores (-want +got):\n%s", diff)
	}
	if got.Extremum != 12 {
		t.Fatalf("unexpected extremum: %d", got.Extremum)
	}
}

func TestRank_PayerPolicies(t *testing.T) {
	tallies := []Tally{
		{UserID: "a", Hits: 7},
		{UserID: "b", Hits: 3},
		{UserID: "c", Hits: 7},
		{UserID: "d", Hits: 3},
		{UserID: "e", Hits: 5},
	}

	tests := []struct {
		name         string
		policy       PayerPolicy
		wantExtremum int
		wantPayers   []string
	}{
		{name: "max hits", policy: PayerAtMaxHits, wantExtremum: 7, wantPayers: []string{"a", "c"}},
		{name: "min hits", policy: PayerAtMinHits, wantExtremum: 3, wantPayers: []string{"b", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rank("r1", tallies, tt.policy)
			if got.Extremum != tt.wantExtremum {
				t.Fatalf("extremum=%d want=%d", got.Extremum, tt.wantExtremum)
			}
			if diff := cmp.Diff(tt.wantPayers, got.Payers); diff != "" {
				t.Fatalf("unexpected payers (-want +got):\n%s", diff)
			}
			for _, s := range got.Scores {
				if s.IsPayer != (s.Hits == tt.wantExtremum) {
					t.Fatalf("user %s payer flag=%v with hits=%d", s.UserID, s.IsPayer, s.Hits)
				}
			}
		})
	}
}

func TestRank_IsDeterministic(t *testing.T) {
	tallies := []Tally{{UserID: "x", Hits: 4}, {UserID: "y", Hits: 4}, {UserID: "z", Hits: 1}}
	first := Rank("r1", tallies, PayerAtMinHits)
	second := Rank("r1", []Tally{tallies[2], tallies[1], tallies[0]}, PayerAtMinHits)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("ranking depends on input order (-first +second):\n%s", diff)
	}
}

func TestRank_AllTied(t *testing.T) {
	got := Rank("r1", []Tally{{UserID: "a", Hits: 0}, {UserID: "b", Hits: 0}}, PayerAtMaxHits)
	for _, s := range got.Scores {
		if s.Rank != 1 || !s.IsPayer {
			t.Fatalf("expected shared rank 1 and payer for %s, got rank=%d payer=%v", s.UserID, s.Rank, s.IsPayer)
		}
	}
}

func TestParsePayerPolicy(t *testing.T) {
	tests := map[string]PayerPolicy{
		"max_hits": PayerAtMaxHits,
		"MAX":      PayerAtMaxHits,
		"min_hits": PayerAtMinHits,
		" min ":    PayerAtMinHits,
	}
	for in, want := range tests {
		got, err := ParsePayerPolicy(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParsePayerPolicy(%q)=%s want=%s", in, got, want)
		}
	}

	if _, err := ParsePayerPolicy("median"); !errors.Is(err, ErrUnknownPayerPolicy) {
		t.Fatalf("expected ErrUnknownPayerPolicy, got %v", err)
	}
}
