package httpapi

import (
	"net/http"
)

func (h *Handler) ListRoundScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRoundScores")
	defer span.End()

	roundID := r.PathValue("roundID")
	items, err := h.scoringService.ListRoundScores(ctx, roundID)
	if err != nil {
		h.logFailure(ctx, "list round scores failed", err, "round_id", roundID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, roundScoresToDTO(items))
}

func (h *Handler) GetSeasonSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSeasonSummary")
	defer span.End()

	items, err := h.scoringService.SeasonSummary(ctx)
	if err != nil {
		h.logFailure(ctx, "get season summary failed", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, seasonSummaryToDTO(items))
}

// ComputeRoundScores finalizes a locked round and publishes its standings.
func (h *Handler) ComputeRoundScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ComputeRoundScores")
	defer span.End()

	roundID := r.PathValue("roundID")
	summary, err := h.scoringService.ComputeScores(ctx, actorID(ctx), roundID)
	if err != nil {
		h.logFailure(ctx, "compute round scores failed", err, "round_id", roundID)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "round scores computed",
		"round_id", roundID,
		"players", summary.TotalPlayers,
		"payers", len(summary.PayerUserIDs),
	)
	writeSuccess(ctx, w, http.StatusOK, scoreSummaryToDTO(summary))
}
