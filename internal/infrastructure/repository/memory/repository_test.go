package memory

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/toto/internal/domain/game"
	"github.com/riskibarqy/toto/internal/domain/outcome"
	"github.com/riskibarqy/toto/internal/domain/round"
	"github.com/riskibarqy/toto/internal/domain/roundscore"
	"github.com/riskibarqy/toto/internal/domain/ticket"
)

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func newActiveRound(t *testing.T, store *Store, id string) round.Round {
	t.Helper()

	created, err := NewRoundRepository(store).Create(t.Context(), round.Round{
		ID:         id,
		StartDate:  testNow.Add(-24 * time.Hour),
		DeadlineAt: testNow.Add(time.Hour),
		Status:     round.StatusActive,
	})
	if err != nil {
		t.Fatalf("create round: %v", err)
	}
	return created
}

func TestRoundRepository_CreateAssignsNextNumber(t *testing.T) {
	store := NewStore()
	repo := NewRoundRepository(store)

	first := newActiveRound(t, store, "r1")
	second := newActiveRound(t, store, "r2")
	if first.Number != 1 || second.Number != 2 {
		t.Fatalf("unexpected numbers: %d, %d", first.Number, second.Number)
	}

	_, err := repo.Create(t.Context(), round.Round{ID: "r3", Number: 2})
	if !errors.Is(err, round.ErrDuplicateNumber) {
		t.Fatalf("expected ErrDuplicateNumber, got %v", err)
	}
}

func TestRoundRepository_TransitionStatusIsConditional(t *testing.T) {
	store := NewStore()
	repo := NewRoundRepository(store)
	newActiveRound(t, store, "r1")

	won, err := repo.TransitionStatus(t.Context(), "r1", round.StatusActive, round.StatusLocked, testNow)
	if err != nil || !won {
		t.Fatalf("expected first transition to win, won=%v err=%v", won, err)
	}
	won, err = repo.TransitionStatus(t.Context(), "r1", round.StatusActive, round.StatusLocked, testNow)
	if err != nil || won {
		t.Fatalf("expected second transition to lose, won=%v err=%v", won, err)
	}

	due, _ := repo.ListDueForLock(t.Context(), testNow)
	if len(due) != 1 || !due[0].NeedsAutofill() {
		t.Fatalf("expected locked round awaiting autofill to be due, got %+v", due)
	}
}

func TestTicketRepository_UpsertReplacesPredictions(t *testing.T) {
	store := NewStore()
	store.SetClock(func() time.Time { return testNow })
	newActiveRound(t, store, "r1")
	repo := NewTicketRepository(store)

	first, err := repo.Upsert(t.Context(), ticket.Ticket{
		ID: "t1", RoundID: "r1", UserID: "u1",
		Predictions: []ticket.Prediction{
			{GameID: "g1", Pick: outcome.PickOf(outcome.HomeWin)},
			{GameID: "g2", Pick: outcome.PickOf(outcome.Draw)},
		},
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second, err := repo.Upsert(t.Context(), ticket.Ticket{
		ID: "t2", RoundID: "r1", UserID: "u1",
		Predictions: []ticket.Prediction{{GameID: "g3", Pick: outcome.PickOf(outcome.AwayWin)}},
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected ticket id to be kept, got %s want %s", second.ID, first.ID)
	}

	stored, _, _ := repo.GetByRoundAndUser(t.Context(), "r1", "u1")
	if len(stored.Predictions) != 1 || stored.Predictions[0].GameID != "g3" {
		t.Fatalf("expected only the latest predictions, got %+v", stored.Predictions)
	}
}

func TestTicketRepository_UpsertRejectsAfterDeadline(t *testing.T) {
	store := NewStore()
	store.SetClock(func() time.Time { return testNow.Add(2 * time.Hour) })
	newActiveRound(t, store, "r1")

	_, err := NewTicketRepository(store).Upsert(t.Context(), ticket.Ticket{ID: "t1", RoundID: "r1", UserID: "u1"})
	if !errors.Is(err, ticket.ErrRoundNotAccepting) {
		t.Fatalf("expected ErrRoundNotAccepting, got %v", err)
	}
}

func TestRoundRepository_DeleteBlockedByTickets(t *testing.T) {
	store := NewStore()
	newActiveRound(t, store, "r1")
	if err := NewGameRepository(store).ReplaceForRound(t.Context(), "r1", []game.Game{{ID: "g1", Number: 1}}); err != nil {
		t.Fatalf("replace games: %v", err)
	}
	if _, err := NewTicketRepository(store).CreateIfAbsent(t.Context(), ticket.Ticket{ID: "t1", RoundID: "r1", UserID: "u1"}); err != nil {
		t.Fatalf("create ticket: %v", err)
	}

	repo := NewRoundRepository(store)
	if err := repo.Delete(t.Context(), "r1"); !errors.Is(err, round.ErrHasTickets) {
		t.Fatalf("expected ErrHasTickets, got %v", err)
	}
}

func TestRoundScoreRepository_PublishFinishesRound(t *testing.T) {
	store := NewStore()
	newActiveRound(t, store, "r1")
	games := NewGameRepository(store)
	_ = games.ReplaceForRound(t.Context(), "r1", []game.Game{{ID: "g1", Number: 1}})
	_ = games.SetResult(t.Context(), "g1", outcome.HomeWin, testNow)
	_, _ = NewTicketRepository(store).CreateIfAbsent(t.Context(), ticket.Ticket{
		ID: "t1", RoundID: "r1", UserID: "u1",
		Predictions: []ticket.Prediction{{TicketID: "t1", GameID: "g1", Pick: outcome.PickOf(outcome.HomeWin)}},
	})

	rounds := NewRoundRepository(store)
	before, _, _ := rounds.GetByID(t.Context(), "r1")
	if !before.ResultsUpdated {
		t.Fatalf("expected results_updated after setting a result")
	}

	hit := true
	err := NewRoundScoreRepository(store).Publish(t.Context(), roundscore.Publication{
		RoundID:     "r1",
		Scores:      []roundscore.RoundScore{{RoundID: "r1", UserID: "u1", Hits: 1, Rank: 1, IsPayer: true}},
		Correctness: []roundscore.Correctness{{TicketID: "t1", GameID: "g1", IsCorrect: &hit}},
		ComputedAt:  testNow,
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	after, _, _ := rounds.GetByID(t.Context(), "r1")
	if after.Status != round.StatusFinished || after.ResultsUpdated || after.FinishedAt == nil {
		t.Fatalf("unexpected round after publish: %+v", after)
	}
	stored, _, _ := NewTicketRepository(store).GetByRoundAndUser(t.Context(), "r1", "u1")
	if c := stored.Predictions[0].IsCorrect; c == nil || !*c {
		t.Fatalf("expected prediction to be marked correct, got %v", c)
	}
}
