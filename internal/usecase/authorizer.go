package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/toto/internal/domain/member"
)

// Authorizer is the capability check injected into privileged operations.
type Authorizer interface {
	HasRole(ctx context.Context, userID string, roles ...member.Role) (bool, error)
}

// MemberAuthorizer resolves roles from the member roster. Inactive members hold
// no role.
type MemberAuthorizer struct {
	memberRepo member.Repository
}

func NewMemberAuthorizer(memberRepo member.Repository) *MemberAuthorizer {
	return &MemberAuthorizer{memberRepo: memberRepo}
}

func (a *MemberAuthorizer) HasRole(ctx context.Context, userID string, roles ...member.Role) (bool, error) {
	item, exists, err := a.memberRepo.GetByUserID(ctx, userID)
	if err != nil {
		return false, storageError(err, "get member")
	}
	if !exists || !item.Active {
		return false, nil
	}
	return item.HasAnyRole(roles...), nil
}

var editorRoles = []member.Role{member.RoleEditor, member.RoleAdmin}

// requireRole fails with ErrForbidden without revealing whether the target
// resource exists, so it must run before any lookup.
func requireRole(ctx context.Context, authz Authorizer, actorID string, roles ...member.Role) error {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return fmt.Errorf("%w: actor is required", ErrUnauthorized)
	}

	ok, err := authz.HasRole(ctx, actorID, roles...)
	if err != nil {
		return fmt.Errorf("check role: %w", err)
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}
