package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/toto/internal/platform/logging"
	"github.com/riskibarqy/toto/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

type Handler struct {
	roundService   *usecase.RoundService
	ticketService  *usecase.TicketService
	scoringService *usecase.ScoringService
	memberService  *usecase.MemberService
	logger         *logging.Logger
	validator      *validator.Validate
}

func NewHandler(
	roundService *usecase.RoundService,
	ticketService *usecase.TicketService,
	scoringService *usecase.ScoringService,
	memberService *usecase.MemberService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		roundService:   roundService,
		ticketService:  ticketService,
		scoringService: scoringService,
		memberService:  memberService,
		logger:         logger,
		validator:      validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeAndValidate reads a JSON body that must match target exactly.
// An empty body decodes to the zero value when allowEmpty is set.
func (h *Handler) decodeAndValidate(ctx context.Context, r *http.Request, target any, allowEmpty bool) error {
	decoder := sonic.ConfigDefault.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(target); err != nil {
		if !errors.Is(err, io.EOF) || !allowEmpty {
			return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
		}
	}
	return h.validateRequest(ctx, target)
}

// actorID returns the authenticated caller; RequireAuth guarantees one.
func actorID(ctx context.Context) string {
	principal, ok := principalFromContext(ctx)
	if !ok {
		return ""
	}
	return principal.UserID
}

func parseTimestamp(field, raw string) (time.Time, error) {
	value, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be RFC3339: %q", usecase.ErrInvalidInput, field, raw)
	}
	return value.UTC(), nil
}

func parseOptionalTimestamp(field, raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	value, err := parseTimestamp(field, raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// logFailure logs client-caused failures at warn and everything else at error.
func (h *Handler) logFailure(ctx context.Context, msg string, err error, args ...any) {
	args = append(args, "error", err)
	if mapError(ctx, err).HTTPStatus >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, args...)
		return
	}
	h.logger.WarnContext(ctx, msg, args...)
}
