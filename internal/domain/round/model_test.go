package round

import (
	"errors"
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{from: StatusDraft, to: StatusActive, want: true},
		{from: StatusActive, to: StatusLocked, want: true},
		{from: StatusLocked, to: StatusFinished, want: true},
		{from: StatusFinished, to: StatusFinished, want: true},
		{from: StatusDraft, to: StatusLocked, want: false},
		{from: StatusActive, to: StatusFinished, want: false},
		{from: StatusLocked, to: StatusActive, want: false},
		{from: StatusFinished, to: StatusActive, want: false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Fatalf("CanTransition(%s, %s)=%v want=%v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestParseStatus(t *testing.T) {
	got, err := ParseStatus(" Active ")
	if err != nil {
		t.Fatalf("parse status: %v", err)
	}
	if got != StatusActive {
		t.Fatalf("unexpected status: %s", got)
	}

	if _, err := ParseStatus("open"); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
}

func TestRound_OpenForTickets(t *testing.T) {
	deadline := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	r := Round{Status: StatusActive, DeadlineAt: deadline}

	if !r.OpenForTickets(deadline.Add(-time.Second)) {
		t.Fatalf("expected round to be open before the deadline")
	}
	if r.OpenForTickets(deadline) {
		t.Fatalf("expected round to be closed exactly at the deadline")
	}

	r.Status = StatusDraft
	if r.OpenForTickets(deadline.Add(-time.Hour)) {
		t.Fatalf("expected draft round to reject tickets")
	}
}

func TestRound_NeedsAutofill(t *testing.T) {
	now := time.Now()
	if !(Round{Status: StatusLocked}).NeedsAutofill() {
		t.Fatalf("expected locked round without autofill to need autofill")
	}
	if (Round{Status: StatusLocked, AutofilledAt: &now}).NeedsAutofill() {
		t.Fatalf("expected autofilled round to be done")
	}
	if (Round{Status: StatusActive}).NeedsAutofill() {
		t.Fatalf("expected active round to not need autofill")
	}
}

func TestRound_Validate(t *testing.T) {
	start := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	valid := Round{ID: "r1", StartDate: start, DeadlineAt: start.Add(48 * time.Hour), Status: StatusDraft}
	if err := valid.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	invalid := valid
	invalid.DeadlineAt = start.Add(-time.Hour)
	if err := invalid.Validate(); err == nil {
		t.Fatalf("expected error for deadline before start")
	}
}
