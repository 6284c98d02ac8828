package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/toto/internal/domain/game"
	"github.com/riskibarqy/toto/internal/domain/outcome"
	qb "github.com/riskibarqy/toto/internal/platform/querybuilder"
)

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) ListByRound(ctx context.Context, roundID string) ([]game.Game, error) {
	query, args, err := qb.Select(gameColumns...).From("games").
		Where(qb.Eq("round_id", roundID)).
		OrderBy("game_number ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list games by round query: %w", err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list games by round: %w", err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, gameFromRow(row))
	}
	return out, nil
}

func (r *GameRepository) GetByID(ctx context.Context, gameID string) (game.Game, bool, error) {
	query, args, err := qb.Select(gameColumns...).From("games").
		Where(qb.Eq("id", gameID)).
		ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build get game query: %w", err)
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("get game: %w", err)
	}
	return gameFromRow(row), true, nil
}

// ReplaceForRound deletes and re-inserts the slate in one transaction.
// Predictions restrict the delete once tickets exist.
func (r *GameRepository) ReplaceForRound(ctx context.Context, roundID string, games []game.Game) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace games: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	deleteQuery, deleteArgs, err := qb.DeleteFrom("games").
		Where(qb.Eq("round_id", roundID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete games query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		if isForeignKeyViolation(err) {
			return game.ErrInUse
		}
		return fmt.Errorf("delete games: %w", err)
	}

	if len(games) > 0 {
		insert := qb.InsertInto("games").Columns(gameColumns...)
		for _, g := range games {
			insert = insert.Values(g.ID, roundID, g.Number, g.HomeTeam, g.AwayTeam, g.League, g.KickoffAt, resultValue(g.Result), g.UpdatedAt)
		}
		insertQuery, insertArgs, err := insert.ToSQL()
		if err != nil {
			return fmt.Errorf("build insert games query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
			return fmt.Errorf("insert games: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace games tx: %w", err)
	}
	return nil
}

// SetResult stores the result and flags the owning round in one transaction.
func (r *GameRepository) SetResult(ctx context.Context, gameID string, result outcome.Symbol, at time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx set game result: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	gameQuery, gameArgs, err := qb.Update("games").
		Set("result", string(result)).
		Set("updated_at", at).
		Where(qb.Eq("id", gameID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set game result query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, gameQuery, gameArgs...); err != nil {
		return fmt.Errorf("set game result: %w", err)
	}

	roundQuery, roundArgs, err := qb.Update("rounds").
		Set("results_updated", true).
		Set("updated_at", at).
		Where(qb.Expr("id = (SELECT round_id FROM games WHERE id = ?)", gameID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build flag round results query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, roundQuery, roundArgs...); err != nil {
		return fmt.Errorf("flag round results updated: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit set game result tx: %w", err)
	}
	return nil
}

func resultValue(result *outcome.Symbol) any {
	if result == nil {
		return nil
	}
	return string(*result)
}

func gameFromRow(row gameTableModel) game.Game {
	out := game.Game{
		ID:        row.ID,
		RoundID:   row.RoundID,
		Number:    row.Number,
		HomeTeam:  row.HomeTeam,
		AwayTeam:  row.AwayTeam,
		League:    row.League,
		KickoffAt: row.KickoffAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.Result != nil {
		if symbol, err := outcome.ParseSymbol(*row.Result); err == nil {
			out.Result = &symbol
		}
	}
	return out
}
