package game

import (
	"errors"
	"testing"

	"github.com/riskibarqy/toto/internal/domain/outcome"
)

func TestValidateSlate(t *testing.T) {
	valid := []Fixture{
		{HomeTeam: "Ajax", AwayTeam: "PSV"},
		{HomeTeam: "Feyenoord", AwayTeam: "AZ", League: "Eredivisie"},
	}

	tests := []struct {
		name    string
		in      []Fixture
		size    int
		wantErr error
	}{
		{name: "valid", in: valid, size: 2},
		{name: "too few", in: valid[:1], size: 2, wantErr: ErrWrongSlateSize},
		{name: "too many", in: valid, size: 1, wantErr: ErrWrongSlateSize},
		{name: "blank away", in: []Fixture{{HomeTeam: "Ajax", AwayTeam: " "}}, size: 1, wantErr: ErrMissingTeam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSlate(tt.in, tt.size)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCountMissingResults(t *testing.T) {
	draw := outcome.Draw
	games := []Game{{ID: "g1", Result: &draw}, {ID: "g2"}, {ID: "g3"}}

	if got := CountMissingResults(games); got != 2 {
		t.Fatalf("CountMissingResults=%d want=2", got)
	}
}
