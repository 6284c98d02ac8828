package member

import "context"

// Repository describes member persistence needs from use cases.
type Repository interface {
	ListActive(ctx context.Context) ([]Member, error)
	GetByUserID(ctx context.Context, userID string) (Member, bool, error)
	Upsert(ctx context.Context, item Member) error
}
