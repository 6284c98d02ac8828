package memory

import (
	"time"

	"github.com/riskibarqy/toto/internal/domain/member"
)

const (
	SeedAdminUserID  = "dev-admin"
	SeedEditorUserID = "dev-editor"
)

// SeedMembers is the roster used when the service runs without a database.
func SeedMembers() []member.Member {
	joined := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return []member.Member{
		{UserID: SeedAdminUserID, DisplayName: "Admin", Role: member.RoleAdmin, Active: true, JoinedAt: joined, UpdatedAt: joined},
		{UserID: SeedEditorUserID, DisplayName: "Editor", Role: member.RoleEditor, Active: true, JoinedAt: joined, UpdatedAt: joined},
		{UserID: "dev-player-1", DisplayName: "Player One", Role: member.RolePlayer, Active: true, JoinedAt: joined, UpdatedAt: joined},
		{UserID: "dev-player-2", DisplayName: "Player Two", Role: member.RolePlayer, Active: true, JoinedAt: joined, UpdatedAt: joined},
	}
}
