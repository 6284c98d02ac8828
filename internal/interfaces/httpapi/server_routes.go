package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, cfg RouterConfig) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if cfg.MetricsHandler != nil {
		mux.Handle("GET /metrics", cfg.MetricsHandler)
	}
	if !cfg.SwaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicRoundRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/rounds", handler.ListRounds)
	mux.HandleFunc("GET /v1/rounds/latest", handler.GetLatestRound)
	mux.HandleFunc("GET /v1/rounds/{roundID}", handler.GetRound)
	mux.HandleFunc("GET /v1/rounds/{roundID}/games", handler.ListRoundGames)
	mux.HandleFunc("GET /v1/rounds/{roundID}/scores", handler.ListRoundScores)
	mux.HandleFunc("GET /v1/season/summary", handler.GetSeasonSummary)
}

func registerPlayerRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/rounds/{roundID}/ticket", RequireAuth(verifier, http.HandlerFunc(handler.GetMyTicket)))
	mux.Handle("PUT /v1/rounds/{roundID}/ticket", RequireAuth(verifier, http.HandlerFunc(handler.SubmitMyTicket)))
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/admin/rounds", RequireAuth(verifier, http.HandlerFunc(handler.ListAllRounds)))
	mux.Handle("POST /v1/admin/rounds", RequireAuth(verifier, http.HandlerFunc(handler.ProvisionRound)))
	mux.Handle("DELETE /v1/admin/rounds/{roundID}", RequireAuth(verifier, http.HandlerFunc(handler.DeleteRound)))
	mux.Handle("PUT /v1/admin/rounds/{roundID}/games", RequireAuth(verifier, http.HandlerFunc(handler.ReplaceRoundGames)))
	mux.Handle("POST /v1/admin/rounds/{roundID}/games/import", RequireAuth(verifier, http.HandlerFunc(handler.ImportRoundGames)))
	mux.Handle("POST /v1/admin/rounds/{roundID}/activate", RequireAuth(verifier, http.HandlerFunc(handler.ActivateRound)))
	mux.Handle("POST /v1/admin/rounds/{roundID}/lock", RequireAuth(verifier, http.HandlerFunc(handler.LockRound)))
	mux.Handle("POST /v1/admin/rounds/{roundID}/scores", RequireAuth(verifier, http.HandlerFunc(handler.ComputeRoundScores)))
	mux.Handle("PUT /v1/admin/games/{gameID}/result", RequireAuth(verifier, http.HandlerFunc(handler.SetGameResult)))
	mux.Handle("PUT /v1/admin/members/{userID}", RequireAuth(verifier, http.HandlerFunc(handler.UpsertMember)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/lock-sweep", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunLockSweepJob)))
	mux.Handle("POST /v1/internal/jobs/rounds/{roundID}/lock", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRoundLockJob)))
}
