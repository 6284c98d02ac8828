package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/toto/internal/domain/round"
	qb "github.com/riskibarqy/toto/internal/platform/querybuilder"
)

type RoundRepository struct {
	db *sqlx.DB
}

func NewRoundRepository(db *sqlx.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

// createRoundQuery assigns max(round_number)+1 when no number is supplied.
// Concurrent creates race on the unique index instead of producing duplicates.
const createRoundQuery = `INSERT INTO rounds (id, round_number, start_date, deadline_at, status, results_updated, created_at, updated_at)
SELECT $1, COALESCE(NULLIF($2::int, 0), COALESCE(MAX(round_number), 0) + 1), $3, $4, $5, FALSE, $6, $7 FROM rounds
RETURNING round_number`

func (r *RoundRepository) Create(ctx context.Context, item round.Round) (round.Round, error) {
	var number int
	err := r.db.GetContext(ctx, &number, createRoundQuery,
		item.ID,
		item.Number,
		item.StartDate,
		item.DeadlineAt,
		string(item.Status),
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return round.Round{}, fmt.Errorf("%w: %d", round.ErrDuplicateNumber, item.Number)
		}
		return round.Round{}, fmt.Errorf("create round: %w", err)
	}

	item.Number = number
	return item, nil
}

func (r *RoundRepository) GetByID(ctx context.Context, roundID string) (round.Round, bool, error) {
	query, args, err := qb.Select(roundColumns...).From("rounds").
		Where(qb.Eq("id", roundID)).
		ToSQL()
	if err != nil {
		return round.Round{}, false, fmt.Errorf("build get round query: %w", err)
	}

	var row roundTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return round.Round{}, false, nil
		}
		return round.Round{}, false, fmt.Errorf("get round: %w", err)
	}
	return roundFromRow(row), true, nil
}

func (r *RoundRepository) GetLatest(ctx context.Context, includeDrafts bool) (round.Round, bool, error) {
	query, args, err := qb.Select(roundColumns...).From("rounds").
		Where(visibilityConditions(includeDrafts)...).
		OrderBy("round_number DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return round.Round{}, false, fmt.Errorf("build get latest round query: %w", err)
	}

	var row roundTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return round.Round{}, false, nil
		}
		return round.Round{}, false, fmt.Errorf("get latest round: %w", err)
	}
	return roundFromRow(row), true, nil
}

func (r *RoundRepository) List(ctx context.Context, includeDrafts bool) ([]round.Round, error) {
	query, args, err := qb.Select(roundColumns...).From("rounds").
		Where(visibilityConditions(includeDrafts)...).
		OrderBy("round_number DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list rounds query: %w", err)
	}
	return r.selectRounds(ctx, "list rounds", query, args)
}

func (r *RoundRepository) ListDueForLock(ctx context.Context, now time.Time) ([]round.Round, error) {
	query, args, err := qb.Select(roundColumns...).From("rounds").
		Where(qb.Expr("((status = ? AND deadline_at <= ?) OR (status = ? AND autofilled_at IS NULL))",
			string(round.StatusActive), now, string(round.StatusLocked))).
		OrderBy("round_number ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list rounds due for lock query: %w", err)
	}
	return r.selectRounds(ctx, "list rounds due for lock", query, args)
}

func (r *RoundRepository) TransitionStatus(ctx context.Context, roundID string, from, to round.Status, at time.Time) (bool, error) {
	builder := qb.Update("rounds").
		Set("status", string(to)).
		Set("updated_at", at)
	if to == round.StatusLocked {
		builder = builder.Set("locked_at", at)
	}
	query, args, err := builder.
		Where(qb.Eq("id", roundID), qb.Eq("status", string(from))).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build transition round status query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("transition round status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected transition round status: %w", err)
	}
	return affected == 1, nil
}

func (r *RoundRepository) MarkAutofilled(ctx context.Context, roundID string, at time.Time) error {
	query, args, err := qb.Update("rounds").
		Set("autofilled_at", at).
		Set("updated_at", at).
		Where(qb.Eq("id", roundID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark round autofilled query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark round autofilled: %w", err)
	}
	return nil
}

// Delete relies on the schema: games and scores cascade, tickets restrict.
func (r *RoundRepository) Delete(ctx context.Context, roundID string) error {
	query, args, err := qb.DeleteFrom("rounds").
		Where(qb.Eq("id", roundID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete round query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isForeignKeyViolation(err) {
			return round.ErrHasTickets
		}
		return fmt.Errorf("delete round: %w", err)
	}
	return nil
}

func (r *RoundRepository) selectRounds(ctx context.Context, op, query string, args []any) ([]round.Round, error) {
	var rows []roundTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]round.Round, 0, len(rows))
	for _, row := range rows {
		out = append(out, roundFromRow(row))
	}
	return out, nil
}

func visibilityConditions(includeDrafts bool) []qb.Condition {
	if includeDrafts {
		return nil
	}
	return []qb.Condition{qb.Expr("status <> ?", string(round.StatusDraft))}
}

func roundFromRow(row roundTableModel) round.Round {
	return round.Round{
		ID:             row.ID,
		Number:         row.Number,
		StartDate:      row.StartDate,
		DeadlineAt:     row.DeadlineAt,
		Status:         round.Status(row.Status),
		ResultsUpdated: row.ResultsUpdated,
		LockedAt:       row.LockedAt,
		AutofilledAt:   row.AutofilledAt,
		FinishedAt:     row.FinishedAt,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}
