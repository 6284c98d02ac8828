package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/toto/internal/domain/member"
)

type MemberRepository struct {
	store *Store
}

func NewMemberRepository(store *Store, seed []member.Member) *MemberRepository {
	store.mu.Lock()
	for _, m := range seed {
		store.members[m.UserID] = m
	}
	store.mu.Unlock()
	return &MemberRepository{store: store}
}

func (r *MemberRepository) ListActive(_ context.Context) ([]member.Member, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]member.Member, 0, len(r.store.members))
	for _, m := range r.store.members {
		if m.Active {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *MemberRepository) GetByUserID(_ context.Context, userID string) (member.Member, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	m, ok := r.store.members[userID]
	return m, ok, nil
}

func (r *MemberRepository) Upsert(_ context.Context, item member.Member) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.members[item.UserID] = item
	return nil
}
