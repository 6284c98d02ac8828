package httpapi

import (
	"net/http"

	"github.com/riskibarqy/toto/internal/usecase"
)

func (h *Handler) UpsertMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpsertMember")
	defer span.End()

	userID := r.PathValue("userID")
	var req upsertMemberRequest
	if err := h.decodeAndValidate(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.memberService.UpsertMember(ctx, actorID(ctx), usecase.UpsertMemberInput{
		UserID:      userID,
		DisplayName: req.DisplayName,
		Role:        req.Role,
		Active:      *req.Active,
	})
	if err != nil {
		h.logFailure(ctx, "upsert member failed", err, "user_id", userID)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, memberToDTO(item))
}
