package usecase

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/toto/internal/domain/game"
	"github.com/riskibarqy/toto/internal/domain/member"
	"github.com/riskibarqy/toto/internal/domain/round"
	"github.com/riskibarqy/toto/internal/domain/ticket"
	"github.com/riskibarqy/toto/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/toto/internal/platform/id"
	"github.com/riskibarqy/toto/internal/platform/logging"
)

const testAdminID = "admin"

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	clock      *testClock
	store      *memory.Store
	rules      ticket.Rules
	memberRepo *memory.MemberRepository
	games      *memory.GameRepository
	tickets    *memory.TicketRepository
	rounds     *memory.RoundRepository
	roundSvc   *RoundService
	ticketSv   *TicketService
	autofill   *AutofillService
	scoring    *ScoringService
	members    *MemberService
}

func newTestEnv(t *testing.T, players ...string) *testEnv {
	t.Helper()

	clock := &testClock{now: time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)}
	store := memory.NewStore()
	store.SetClock(clock.Now)

	roster := []member.Member{{UserID: testAdminID, DisplayName: "Admin", Role: member.RoleAdmin, Active: true}}
	for _, p := range players {
		roster = append(roster, member.Member{UserID: p, DisplayName: p, Role: member.RolePlayer, Active: true})
	}

	memberRepo := memory.NewMemberRepository(store, roster)
	roundRepo := memory.NewRoundRepository(store)
	gameRepo := memory.NewGameRepository(store)
	ticketRepo := memory.NewTicketRepository(store)
	scoreRepo := memory.NewRoundScoreRepository(store)
	authz := NewMemberAuthorizer(memberRepo)
	rules := ticket.DefaultRules()
	logger := logging.NewNop()

	autofill := NewAutofillService(roundRepo, gameRepo, ticketRepo, memberRepo, id.NewSequenceGenerator("auto"), rules, 42, logger)
	autofill.now = clock.Now

	roundSvc := NewRoundService(roundRepo, gameRepo, ticketRepo, autofill, authz, nil, id.NewSequenceGenerator("id"),
		RoundServiceConfig{Rules: rules, InitialStatus: round.StatusDraft, SweepWorkers: 2}, logger)
	roundSvc.now = clock.Now

	ticketSvc := NewTicketService(roundRepo, gameRepo, ticketRepo, memberRepo, id.NewSequenceGenerator("ticket"), rules, logger)
	ticketSvc.now = clock.Now

	scoring := NewScoringService(roundRepo, gameRepo, ticketRepo, scoreRepo, authz, "", logger)
	scoring.now = clock.Now

	members := NewMemberService(memberRepo, authz, logger)
	members.now = clock.Now

	return &testEnv{
		clock:      clock,
		store:      store,
		rules:      rules,
		memberRepo: memberRepo,
		games:      gameRepo,
		tickets:    ticketRepo,
		rounds:     roundRepo,
		roundSvc:   roundSvc,
		ticketSv:   ticketSvc,
		autofill:   autofill,
		scoring:    scoring,
		members:    members,
	}
}

func testFixtures(n int) []game.Fixture {
	out := make([]game.Fixture, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, game.Fixture{
			League:   "Liga 1",
			HomeTeam: fmt.Sprintf("Home %02d", i),
			AwayTeam: fmt.Sprintf("Away %02d", i),
		})
	}
	return out
}

// activeRound provisions a full slate and activates it with the deadline one
// hour ahead of the test clock.
func (e *testEnv) activeRound(t *testing.T) (round.Round, []game.Game) {
	t.Helper()

	now := e.clock.Now()
	created, err := e.roundSvc.ProvisionRound(t.Context(), testAdminID, ProvisionRoundInput{
		StartDate:  now.Add(-24 * time.Hour),
		DeadlineAt: now.Add(time.Hour),
		Games:      testFixtures(e.rules.GamesPerRound),
	})
	if err != nil {
		t.Fatalf("provision round: %v", err)
	}
	activated, err := e.roundSvc.ActivateRound(t.Context(), testAdminID, created.ID)
	if err != nil {
		t.Fatalf("activate round: %v", err)
	}
	games, err := e.games.ListByRound(t.Context(), created.ID)
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	return activated, games
}

// entriesFor picks "1" everywhere and "1X" on the first doubles games.
func entriesFor(games []game.Game, doubles int) []ticket.Entry {
	out := make([]ticket.Entry, 0, len(games))
	for i, g := range games {
		symbols := []string{"1"}
		if i < doubles {
			symbols = []string{"X", "1"}
		}
		out = append(out, ticket.Entry{GameID: g.ID, Symbols: symbols})
	}
	return out
}
