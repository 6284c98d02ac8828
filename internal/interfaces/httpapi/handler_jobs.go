package httpapi

import (
	"net/http"
)

// RunLockSweepJob locks every active round whose deadline has passed.
func (h *Handler) RunLockSweepJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunLockSweepJob")
	defer span.End()

	result, err := h.roundService.SweepDueRounds(ctx)
	if err != nil {
		h.logFailure(ctx, "run lock sweep job failed", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "lock sweep job finished",
		"processed", result.Processed,
		"locked", result.Locked,
		"autofilled", result.Autofilled,
		"failed", result.Failed,
	)
	writeSuccess(ctx, w, http.StatusOK, result)
}

// RunRoundLockJob locks one round when its deadline has passed.
func (h *Handler) RunRoundLockJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRoundLockJob")
	defer span.End()

	roundID := r.PathValue("roundID")
	result, err := h.roundService.Lock(ctx, roundID, false)
	if err != nil {
		h.logFailure(ctx, "run round lock job failed", err, "round_id", roundID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, lockResultDTO{
		Round:      roundToDTO(result.Round),
		Locked:     result.Locked,
		Autofilled: result.Autofilled,
	})
}
