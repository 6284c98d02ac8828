package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/toto/internal/domain/member"
	qb "github.com/riskibarqy/toto/internal/platform/querybuilder"
)

type MemberRepository struct {
	db *sqlx.DB
}

func NewMemberRepository(db *sqlx.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) ListActive(ctx context.Context) ([]member.Member, error) {
	query, args, err := qb.Select(memberColumns...).From("members").
		Where(qb.Eq("active", true)).
		OrderBy("user_id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list active members query: %w", err)
	}

	var rows []memberTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list active members: %w", err)
	}

	out := make([]member.Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, memberFromRow(row))
	}
	return out, nil
}

func (r *MemberRepository) GetByUserID(ctx context.Context, userID string) (member.Member, bool, error) {
	query, args, err := qb.Select(memberColumns...).From("members").
		Where(qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return member.Member{}, false, fmt.Errorf("build get member query: %w", err)
	}

	var row memberTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return member.Member{}, false, nil
		}
		return member.Member{}, false, fmt.Errorf("get member: %w", err)
	}
	return memberFromRow(row), true, nil
}

func (r *MemberRepository) Upsert(ctx context.Context, item member.Member) error {
	query, args, err := qb.InsertInto("members").
		Columns(memberColumns...).
		Values(item.UserID, item.DisplayName, string(item.Role), item.Active, item.JoinedAt, item.UpdatedAt).
		OnConflict("user_id").
		DoUpdate("display_name", "role", "active", "updated_at").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert member query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert member: %w", err)
	}
	return nil
}

func memberFromRow(row memberTableModel) member.Member {
	return member.Member{
		UserID:      row.UserID,
		DisplayName: row.DisplayName,
		Role:        member.Role(row.Role),
		Active:      row.Active,
		JoinedAt:    row.JoinedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
