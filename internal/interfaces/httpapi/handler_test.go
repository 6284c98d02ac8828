package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/toto/internal/domain/member"
	"github.com/riskibarqy/toto/internal/domain/round"
	"github.com/riskibarqy/toto/internal/domain/ticket"
	"github.com/riskibarqy/toto/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/toto/internal/platform/id"
	"github.com/riskibarqy/toto/internal/platform/logging"
	"github.com/riskibarqy/toto/internal/usecase"
)

const testJobToken = "job-secret"

type stubVerifier map[string]string

func (s stubVerifier) VerifyAccessToken(_ context.Context, token string) (member.Principal, error) {
	userID, ok := s[token]
	if !ok {
		return member.Principal{}, fmt.Errorf("%w: unknown token", usecase.ErrUnauthorized)
	}
	return member.Principal{UserID: userID}, nil
}

type envelope[T any] struct {
	APIVersion string           `json:"apiVersion"`
	Data       T                `json:"data"`
	Error      *googleErrorBody `json:"error"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	joined := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	memberRepo := memory.NewMemberRepository(store, []member.Member{
		{UserID: "admin", DisplayName: "Admin", Role: member.RoleAdmin, Active: true, JoinedAt: joined},
		{UserID: "p1", DisplayName: "Player One", Role: member.RolePlayer, Active: true, JoinedAt: joined},
		{UserID: "p2", DisplayName: "Player Two", Role: member.RolePlayer, Active: true, JoinedAt: joined},
	})
	roundRepo := memory.NewRoundRepository(store)
	gameRepo := memory.NewGameRepository(store)
	ticketRepo := memory.NewTicketRepository(store)
	scoreRepo := memory.NewRoundScoreRepository(store)
	authz := usecase.NewMemberAuthorizer(memberRepo)
	rules := ticket.DefaultRules()
	logger := logging.NewNop()

	autofill := usecase.NewAutofillService(roundRepo, gameRepo, ticketRepo, memberRepo, id.NewSequenceGenerator("auto"), rules, 7, logger)
	roundSvc := usecase.NewRoundService(roundRepo, gameRepo, ticketRepo, autofill, authz, nil, id.NewSequenceGenerator("id"),
		usecase.RoundServiceConfig{Rules: rules, InitialStatus: round.StatusDraft}, logger)
	ticketSvc := usecase.NewTicketService(roundRepo, gameRepo, ticketRepo, memberRepo, id.NewSequenceGenerator("ticket"), rules, logger)
	scoringSvc := usecase.NewScoringService(roundRepo, gameRepo, ticketRepo, scoreRepo, authz, "", logger)
	memberSvc := usecase.NewMemberService(memberRepo, authz, logger)

	handler := NewHandler(roundSvc, ticketSvc, scoringSvc, memberSvc, logger)
	verifier := stubVerifier{"admin-token": "admin", "p1-token": "p1", "p2-token": "p2"}
	return NewRouter(handler, verifier, logger, RouterConfig{InternalJobToken: testJobToken})
}

func doRequest[T any](t *testing.T, router http.Handler, method, path, token string, body any) (int, envelope[T]) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := sonic.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var out envelope[T]
	if err := sonic.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("%s %s: unmarshal response %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, out
}

func errorReason(body *googleErrorBody) string {
	if body == nil || len(body.Errors) == 0 {
		return ""
	}
	return body.Errors[0].Reason
}

func fixturePayload(n int) []map[string]string {
	out := make([]map[string]string, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, map[string]string{
			"league":    "Liga 1",
			"home_team": fmt.Sprintf("Home %02d", i),
			"away_team": fmt.Sprintf("Away %02d", i),
		})
	}
	return out
}

func ticketPayload(games []gameDTO, doubles int) map[string]any {
	predictions := make([]map[string]any, 0, len(games))
	for i, g := range games {
		symbols := []string{"1"}
		if i < doubles {
			symbols = []string{"1", "X"}
		}
		predictions = append(predictions, map[string]any{"game_id": g.ID, "symbols": symbols})
	}
	return map[string]any{"predictions": predictions}
}

// provisionActiveRound returns an active round and its slate.
func provisionActiveRound(t *testing.T, router http.Handler) (roundDTO, []gameDTO) {
	t.Helper()

	now := time.Now().UTC()
	status, created := doRequest[roundDTO](t, router, http.MethodPost, "/v1/admin/rounds", "admin-token", map[string]any{
		"start_date":  now.Add(-24 * time.Hour).Format(time.RFC3339),
		"deadline_at": now.Add(time.Hour).Format(time.RFC3339),
		"games":       fixturePayload(ticket.DefaultRules().GamesPerRound),
	})
	if status != http.StatusCreated {
		t.Fatalf("provision round status=%d error=%+v", status, created.Error)
	}
	if created.Data.Status != string(round.StatusDraft) || created.Data.Number != 1 {
		t.Fatalf("unexpected provisioned round: %+v", created.Data)
	}

	status, publicView := doRequest[roundDTO](t, router, http.MethodGet, "/v1/rounds/"+created.Data.ID, "", nil)
	if status != http.StatusNotFound {
		t.Fatalf("draft round visible publicly: status=%d data=%+v", status, publicView.Data)
	}

	status, activated := doRequest[roundDTO](t, router, http.MethodPost, "/v1/admin/rounds/"+created.Data.ID+"/activate", "admin-token", nil)
	if status != http.StatusOK || activated.Data.Status != string(round.StatusActive) {
		t.Fatalf("activate status=%d round=%+v error=%+v", status, activated.Data, activated.Error)
	}

	status, games := doRequest[[]gameDTO](t, router, http.MethodGet, "/v1/rounds/"+created.Data.ID+"/games", "", nil)
	if status != http.StatusOK || len(games.Data) != ticket.DefaultRules().GamesPerRound {
		t.Fatalf("list games status=%d count=%d", status, len(games.Data))
	}
	return activated.Data, games.Data
}

func TestRouter_RoundLifecycle(t *testing.T) {
	router := newTestRouter(t)
	item, games := provisionActiveRound(t, router)
	roundPath := "/v1/rounds/" + item.ID

	status, submitted := doRequest[ticketDTO](t, router, http.MethodPut, roundPath+"/ticket", "p1-token", ticketPayload(games, 3))
	if status != http.StatusOK {
		t.Fatalf("submit ticket status=%d error=%+v", status, submitted.Error)
	}
	if submitted.Data.Doubles != 3 || submitted.Data.Autofilled {
		t.Fatalf("unexpected ticket: %+v", submitted.Data)
	}

	status, rejected := doRequest[ticketDTO](t, router, http.MethodPut, roundPath+"/ticket", "p1-token", ticketPayload(games, 2))
	if status != http.StatusBadRequest || errorReason(rejected.Error) != "wrongDoubleCount" {
		t.Fatalf("expected wrongDoubleCount, got status=%d error=%+v", status, rejected.Error)
	}

	status, forbidden := doRequest[lockResultDTO](t, router, http.MethodPost, "/v1/admin/rounds/"+item.ID+"/lock", "p1-token", nil)
	if status != http.StatusForbidden || errorReason(forbidden.Error) != "forbidden" {
		t.Fatalf("expected forbidden lock, got status=%d error=%+v", status, forbidden.Error)
	}

	status, locked := doRequest[lockResultDTO](t, router, http.MethodPost, "/v1/admin/rounds/"+item.ID+"/lock", "admin-token", nil)
	if status != http.StatusOK {
		t.Fatalf("lock status=%d error=%+v", status, locked.Error)
	}
	if !locked.Data.Locked || locked.Data.Autofilled != 2 || locked.Data.Round.Status != string(round.StatusLocked) {
		t.Fatalf("unexpected lock result: %+v", locked.Data)
	}

	status, late := doRequest[ticketDTO](t, router, http.MethodPut, roundPath+"/ticket", "p2-token", ticketPayload(games, 3))
	if status != http.StatusConflict || errorReason(late.Error) != "roundNotOpen" {
		t.Fatalf("expected roundNotOpen after lock, got status=%d error=%+v", status, late.Error)
	}

	status, early := doRequest[scoreSummaryDTO](t, router, http.MethodPost, "/v1/admin/rounds/"+item.ID+"/scores", "admin-token", nil)
	if status != http.StatusConflict || errorReason(early.Error) != "resultsIncomplete" {
		t.Fatalf("expected resultsIncomplete, got status=%d error=%+v", status, early.Error)
	}

	for _, g := range games {
		status, resulted := doRequest[gameDTO](t, router, http.MethodPut, "/v1/admin/games/"+g.ID+"/result", "admin-token", map[string]string{"result": "1"})
		if status != http.StatusOK || resulted.Data.Result == nil || *resulted.Data.Result != "1" {
			t.Fatalf("set result status=%d game=%+v error=%+v", status, resulted.Data, resulted.Error)
		}
	}

	status, summary := doRequest[scoreSummaryDTO](t, router, http.MethodPost, "/v1/admin/rounds/"+item.ID+"/scores", "admin-token", nil)
	if status != http.StatusOK {
		t.Fatalf("compute scores status=%d error=%+v", status, summary.Error)
	}
	if summary.Data.TotalPlayers != 3 || len(summary.Data.PayerUserIDs) == 0 {
		t.Fatalf("unexpected score summary: %+v", summary.Data)
	}

	status, scores := doRequest[[]roundScoreDTO](t, router, http.MethodGet, roundPath+"/scores", "", nil)
	if status != http.StatusOK || len(scores.Data) != 3 {
		t.Fatalf("list scores status=%d scores=%+v", status, scores.Data)
	}
	for _, s := range scores.Data {
		if s.UserID == "p1" && (s.Hits != len(games) || s.Rank != 1) {
			t.Fatalf("p1 should hit every game and rank first, got %+v", s)
		}
	}

	status, mine := doRequest[ticketDTO](t, router, http.MethodGet, roundPath+"/ticket", "p1-token", nil)
	if status != http.StatusOK {
		t.Fatalf("get ticket status=%d error=%+v", status, mine.Error)
	}
	for _, p := range mine.Data.Predictions {
		if p.IsCorrect == nil || !*p.IsCorrect {
			t.Fatalf("expected every prediction marked correct, got %+v", p)
		}
	}

	status, season := doRequest[[]seasonSummaryDTO](t, router, http.MethodGet, "/v1/season/summary", "", nil)
	if status != http.StatusOK || len(season.Data) != 3 {
		t.Fatalf("season summary status=%d data=%+v", status, season.Data)
	}
}

func TestRouter_AuthFailures(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
		wantReason string
	}{
		{name: "missing token", method: http.MethodGet, path: "/v1/rounds/r1/ticket", wantStatus: http.StatusUnauthorized, wantReason: "unauthorized"},
		{name: "unknown token", method: http.MethodGet, path: "/v1/rounds/r1/ticket", token: "nope", wantStatus: http.StatusUnauthorized, wantReason: "unauthorized"},
		{name: "player lists drafts", method: http.MethodGet, path: "/v1/admin/rounds", token: "p1-token", wantStatus: http.StatusForbidden, wantReason: "forbidden"},
		{name: "player deletes unknown round", method: http.MethodDelete, path: "/v1/admin/rounds/missing", token: "p1-token", wantStatus: http.StatusForbidden, wantReason: "forbidden"},
		{name: "admin deletes unknown round", method: http.MethodDelete, path: "/v1/admin/rounds/missing", token: "admin-token", wantStatus: http.StatusNotFound, wantReason: "notFound"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doRequest[any](t, router, tt.method, tt.path, tt.token, nil)
			if status != tt.wantStatus || errorReason(body.Error) != tt.wantReason {
				t.Fatalf("status=%d reason=%q want=%d/%q", status, errorReason(body.Error), tt.wantStatus, tt.wantReason)
			}
		})
	}
}

func TestRouter_RejectsUnknownFields(t *testing.T) {
	router := newTestRouter(t)
	_, games := provisionActiveRound(t, router)

	payload := ticketPayload(games, 3)
	payload["bonus"] = true
	status, body := doRequest[any](t, router, http.MethodPut, "/v1/rounds/"+games[0].RoundID+"/ticket", "p1-token", payload)
	if status != http.StatusBadRequest || errorReason(body.Error) != "invalidInput" {
		t.Fatalf("status=%d reason=%q", status, errorReason(body.Error))
	}
}

func TestRouter_InternalJobs(t *testing.T) {
	router := newTestRouter(t)
	item, _ := provisionActiveRound(t, router)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/lock-sweep", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without job token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/lock-sweep", nil)
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("sweep status=%d body=%s", rec.Code, rec.Body.String())
	}
	var sweep envelope[usecase.SweepResult]
	if err := sonic.Unmarshal(rec.Body.Bytes(), &sweep); err != nil {
		t.Fatalf("unmarshal sweep: %v", err)
	}
	if sweep.Data.Locked != 0 {
		t.Fatalf("round before its deadline must not be locked: %+v", sweep.Data)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/rounds/"+item.ID+"/lock", nil)
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("lock job must respect the deadline, got status=%d body=%s", rec.Code, rec.Body.String())
	}

	status, still := doRequest[roundDTO](t, router, http.MethodGet, "/v1/rounds/"+item.ID, "", nil)
	if status != http.StatusOK || still.Data.Status != string(round.StatusActive) {
		t.Fatalf("round should stay active: status=%d round=%+v", status, still.Data)
	}
}

func TestRouter_UpsertMemberAdminOnly(t *testing.T) {
	router := newTestRouter(t)
	body := map[string]any{"display_name": "Player Three", "role": "player", "active": true}

	status, denied := doRequest[memberDTO](t, router, http.MethodPut, "/v1/admin/members/p3", "p1-token", body)
	if status != http.StatusForbidden {
		t.Fatalf("expected forbidden, got status=%d error=%+v", status, denied.Error)
	}

	status, created := doRequest[memberDTO](t, router, http.MethodPut, "/v1/admin/members/p3", "admin-token", body)
	if status != http.StatusOK || created.Data.UserID != "p3" || !created.Data.Active {
		t.Fatalf("upsert status=%d member=%+v error=%+v", status, created.Data, created.Error)
	}

	status, invalid := doRequest[memberDTO](t, router, http.MethodPut, "/v1/admin/members/p3", "admin-token", map[string]any{"display_name": "P3", "role": "player"})
	if status != http.StatusBadRequest {
		t.Fatalf("missing active flag should be rejected, got status=%d error=%+v", status, invalid.Error)
	}
}
