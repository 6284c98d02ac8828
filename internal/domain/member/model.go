package member

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Role is a member capability level.
type Role string

const (
	RolePlayer Role = "player"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

var ErrUnknownRole = errors.New("unknown member role")

func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RolePlayer:
		return RolePlayer, nil
	case RoleEditor:
		return RoleEditor, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, raw)
	}
}

// Member is a participant of the pool. Active members form the autofill roster.
type Member struct {
	UserID      string
	DisplayName string
	Role        Role
	Active      bool
	JoinedAt    time.Time
	UpdatedAt   time.Time
}

func (m Member) Validate() error {
	if strings.TrimSpace(m.UserID) == "" {
		return fmt.Errorf("member user id is required")
	}
	if strings.TrimSpace(m.DisplayName) == "" {
		return fmt.Errorf("member display name is required")
	}
	if _, err := ParseRole(string(m.Role)); err != nil {
		return err
	}
	return nil
}

func (m Member) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if m.Role == r {
			return true
		}
	}
	return false
}

// Principal is the authenticated caller resolved from an access token.
type Principal struct {
	UserID string
	Email  string
}
