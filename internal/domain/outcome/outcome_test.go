package outcome

import (
	"errors"
	"testing"
)

func TestNewPick_NormalizesOrderAndDuplicates(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want string
	}{
		{name: "single", in: []string{"x"}, want: "X"},
		{name: "reversed double", in: []string{"2", "1"}, want: "12"},
		{name: "draw away", in: []string{"2", "X"}, want: "X2"},
		{name: "duplicate collapses", in: []string{"1", "1"}, want: "1"},
		{name: "whitespace", in: []string{" X ", "1"}, want: "1X"},
		{name: "empty", in: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewPick(tt.in)
			if err != nil {
				t.Fatalf("new pick: %v", err)
			}
			if got.String() != tt.want {
				t.Fatalf("NewPick(%v)=%q want=%q", tt.in, got.String(), tt.want)
			}
		})
	}
}

func TestNewPick_RejectsUnknownSymbol(t *testing.T) {
	_, err := NewPick([]string{"1", "3"})
	if !errors.Is(err, ErrUnknownSymbol) {
		t.Fatalf("expected ErrUnknownSymbol, got %v", err)
	}
}

func TestPick_EqualIgnoresEntryOrder(t *testing.T) {
	a, _ := NewPick([]string{"X", "1"})
	b, _ := NewPick([]string{"1", "X"})
	if !a.Equal(b) {
		t.Fatalf("expected %q to equal %q", a, b)
	}
	if !a.IsDouble() {
		t.Fatalf("expected double pick")
	}
}

func TestEvaluate_IsTotal(t *testing.T) {
	home := HomeWin
	draw := Draw
	away := AwayWin

	tests := []struct {
		name   string
		pick   Pick
		result *Symbol
		want   Evaluation
	}{
		{name: "empty pick and no result", pick: nil, result: nil, want: Pending},
		{name: "empty pick with result", pick: Pick{}, result: &home, want: Pending},
		{name: "pick without result", pick: PickOf(HomeWin), result: nil, want: Pending},
		{name: "single hit", pick: PickOf(HomeWin), result: &home, want: Hit},
		{name: "single miss", pick: PickOf(HomeWin), result: &away, want: Miss},
		{name: "double hit", pick: PickOf(HomeWin, Draw), result: &draw, want: Hit},
		{name: "double miss", pick: PickOf(HomeWin, Draw), result: &away, want: Miss},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.pick, tt.result); got != tt.want {
				t.Fatalf("Evaluate(%q)=%s want=%s", tt.pick, got, tt.want)
			}
		})
	}
}

func TestEvaluation_Correct(t *testing.T) {
	if Pending.Correct() != nil {
		t.Fatalf("expected nil for pending")
	}
	if v := Hit.Correct(); v == nil || !*v {
		t.Fatalf("expected true for hit")
	}
	if v := Miss.Correct(); v == nil || *v {
		t.Fatalf("expected false for miss")
	}
}
