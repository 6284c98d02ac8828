package httpapi

import (
	"net/http"

	"github.com/riskibarqy/toto/internal/usecase"
)

func (h *Handler) ListRounds(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRounds")
	defer span.End()

	items, err := h.roundService.ListRounds(ctx, false)
	if err != nil {
		h.logFailure(ctx, "list rounds failed", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, roundsToDTO(items))
}

func (h *Handler) GetLatestRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLatestRound")
	defer span.End()

	item, err := h.roundService.LatestRound(ctx, false)
	if err != nil {
		h.logFailure(ctx, "get latest round failed", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, roundToDTO(item))
}

func (h *Handler) GetRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRound")
	defer span.End()

	roundID := r.PathValue("roundID")
	item, err := h.roundService.GetRound(ctx, roundID, false)
	if err != nil {
		h.logFailure(ctx, "get round failed", err, "round_id", roundID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, roundToDTO(item))
}

func (h *Handler) ListRoundGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRoundGames")
	defer span.End()

	roundID := r.PathValue("roundID")
	items, err := h.roundService.ListGames(ctx, roundID, false)
	if err != nil {
		h.logFailure(ctx, "list round games failed", err, "round_id", roundID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gamesToDTO(items))
}

func (h *Handler) ListAllRounds(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAllRounds")
	defer span.End()

	items, err := h.roundService.ListAllRounds(ctx, actorID(ctx))
	if err != nil {
		h.logFailure(ctx, "list all rounds failed", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, roundsToDTO(items))
}

func (h *Handler) ProvisionRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ProvisionRound")
	defer span.End()

	var req provisionRoundRequest
	if err := h.decodeAndValidate(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	startDate, err := parseTimestamp("start_date", req.StartDate)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	deadline, err := parseTimestamp("deadline_at", req.DeadlineAt)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	fixtures, err := fixturesFromRequest(req.Games)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.roundService.ProvisionRound(ctx, actorID(ctx), usecase.ProvisionRoundInput{
		Number:     req.Number,
		StartDate:  startDate,
		DeadlineAt: deadline,
		Games:      fixtures,
	})
	if err != nil {
		h.logFailure(ctx, "provision round failed", err, "number", req.Number)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, roundToDTO(item))
}

func (h *Handler) DeleteRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteRound")
	defer span.End()

	roundID := r.PathValue("roundID")
	if err := h.roundService.DeleteRound(ctx, actorID(ctx), roundID); err != nil {
		h.logFailure(ctx, "delete round failed", err, "round_id", roundID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"round_id": roundID, "status": "deleted"})
}

func (h *Handler) ReplaceRoundGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReplaceRoundGames")
	defer span.End()

	roundID := r.PathValue("roundID")
	var req replaceGamesRequest
	if err := h.decodeAndValidate(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	fixtures, err := fixturesFromRequest(req.Games)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.roundService.ReplaceGames(ctx, actorID(ctx), roundID, fixtures)
	if err != nil {
		h.logFailure(ctx, "replace round games failed", err, "round_id", roundID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gamesToDTO(items))
}

func (h *Handler) ImportRoundGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ImportRoundGames")
	defer span.End()

	roundID := r.PathValue("roundID")
	var req importGamesRequest
	if err := h.decodeAndValidate(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.roundService.ImportGames(ctx, actorID(ctx), roundID, req.Ref)
	if err != nil {
		h.logFailure(ctx, "import round games failed", err, "round_id", roundID, "ref", req.Ref)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gamesToDTO(items))
}

func (h *Handler) ActivateRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ActivateRound")
	defer span.End()

	roundID := r.PathValue("roundID")
	item, err := h.roundService.ActivateRound(ctx, actorID(ctx), roundID)
	if err != nil {
		h.logFailure(ctx, "activate round failed", err, "round_id", roundID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, roundToDTO(item))
}

func (h *Handler) LockRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LockRound")
	defer span.End()

	roundID := r.PathValue("roundID")
	result, err := h.roundService.LockRound(ctx, actorID(ctx), roundID)
	if err != nil {
		h.logFailure(ctx, "lock round failed", err, "round_id", roundID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, lockResultDTO{
		Round:      roundToDTO(result.Round),
		Locked:     result.Locked,
		Autofilled: result.Autofilled,
	})
}

func (h *Handler) SetGameResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetGameResult")
	defer span.End()

	gameID := r.PathValue("gameID")
	var req setGameResultRequest
	if err := h.decodeAndValidate(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.roundService.SetGameResult(ctx, actorID(ctx), gameID, req.Result)
	if err != nil {
		h.logFailure(ctx, "set game result failed", err, "game_id", gameID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gameToDTO(item))
}
