package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/toto/internal/domain/member"
	"github.com/riskibarqy/toto/internal/platform/logging"
)

type MemberService struct {
	memberRepo member.Repository
	authz      Authorizer
	logger     *logging.Logger
	now        func() time.Time
}

type UpsertMemberInput struct {
	UserID      string
	DisplayName string
	Role        string
	Active      bool
}

func NewMemberService(memberRepo member.Repository, authz Authorizer, logger *logging.Logger) *MemberService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MemberService{
		memberRepo: memberRepo,
		authz:      authz,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *MemberService) ListActive(ctx context.Context) ([]member.Member, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MemberService.ListActive")
	defer span.End()

	items, err := s.memberRepo.ListActive(ctx)
	if err != nil {
		return nil, storageError(err, "list active members")
	}
	return items, nil
}

// UpsertMember creates or updates a roster entry. Only admins manage members.
func (s *MemberService) UpsertMember(ctx context.Context, actorID string, input UpsertMemberInput) (member.Member, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MemberService.UpsertMember")
	defer span.End()

	if err := requireRole(ctx, s.authz, actorID, member.RoleAdmin); err != nil {
		return member.Member{}, err
	}

	role, err := member.ParseRole(input.Role)
	if err != nil {
		return member.Member{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	userID := strings.TrimSpace(input.UserID)
	existing, exists, err := s.memberRepo.GetByUserID(ctx, userID)
	if err != nil {
		return member.Member{}, storageError(err, "get member")
	}

	now := s.now().UTC()
	item := member.Member{
		UserID:      userID,
		DisplayName: strings.TrimSpace(input.DisplayName),
		Role:        role,
		Active:      input.Active,
		JoinedAt:    now,
		UpdatedAt:   now,
	}
	if exists {
		item.JoinedAt = existing.JoinedAt
	}
	if err := item.Validate(); err != nil {
		return member.Member{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := s.memberRepo.Upsert(ctx, item); err != nil {
		return member.Member{}, storageError(err, "upsert member")
	}

	s.logger.InfoContext(ctx, "member upserted",
		"user_id", item.UserID,
		"role", string(item.Role),
		"active", item.Active,
		"actor_id", actorID,
	)
	return item, nil
}
