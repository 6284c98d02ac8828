package httpapi

import (
	"net/http"

	"github.com/riskibarqy/toto/internal/usecase"
)

func (h *Handler) GetMyTicket(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyTicket")
	defer span.End()

	roundID := r.PathValue("roundID")
	userID := actorID(ctx)
	item, err := h.ticketService.GetTicket(ctx, roundID, userID)
	if err != nil {
		h.logFailure(ctx, "get ticket failed", err, "round_id", roundID, "user_id", userID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, ticketToDTO(item))
}

// SubmitMyTicket creates or replaces the caller's ticket for an open round.
func (h *Handler) SubmitMyTicket(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitMyTicket")
	defer span.End()

	roundID := r.PathValue("roundID")
	userID := actorID(ctx)

	var req submitTicketRequest
	if err := h.decodeAndValidate(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.ticketService.SubmitOrUpdate(ctx, usecase.SubmitTicketInput{
		RoundID: roundID,
		UserID:  userID,
		Entries: entriesFromRequest(req.Predictions),
	})
	if err != nil {
		h.logFailure(ctx, "submit ticket failed", err, "round_id", roundID, "user_id", userID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, ticketToDTO(item))
}
