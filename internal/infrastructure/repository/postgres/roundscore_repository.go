package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/toto/internal/domain/round"
	"github.com/riskibarqy/toto/internal/domain/roundscore"
	qb "github.com/riskibarqy/toto/internal/platform/querybuilder"
)

type RoundScoreRepository struct {
	db *sqlx.DB
}

func NewRoundScoreRepository(db *sqlx.DB) *RoundScoreRepository {
	return &RoundScoreRepository{db: db}
}

const updateCorrectnessQuery = `
UPDATE predictions AS p
SET is_correct = u.is_correct
FROM UNNEST($1::text[], $2::text[], $3::boolean[]) AS u(ticket_id, game_id, is_correct)
WHERE p.ticket_id = u.ticket_id AND p.game_id = u.game_id`

// Publish writes scores, correctness and the finished status in one transaction.
func (r *RoundScoreRepository) Publish(ctx context.Context, publication roundscore.Publication) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx publish round scores: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	deleteQuery, deleteArgs, err := qb.DeleteFrom("round_scores").
		Where(qb.Eq("round_id", publication.RoundID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete round scores query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("delete round scores: %w", err)
	}

	if len(publication.Scores) > 0 {
		insert := qb.InsertInto("round_scores").Columns(roundScoreColumns...)
		for _, s := range publication.Scores {
			insert = insert.Values(publication.RoundID, s.UserID, s.Hits, s.Rank, s.IsPayer)
		}
		insertQuery, insertArgs, err := insert.ToSQL()
		if err != nil {
			return fmt.Errorf("build insert round scores query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
			return fmt.Errorf("insert round scores: %w", err)
		}
	}

	if len(publication.Correctness) > 0 {
		ticketIDs := make([]string, 0, len(publication.Correctness))
		gameIDs := make([]string, 0, len(publication.Correctness))
		marks := make([]sql.NullBool, 0, len(publication.Correctness))
		for _, c := range publication.Correctness {
			ticketIDs = append(ticketIDs, c.TicketID)
			gameIDs = append(gameIDs, c.GameID)
			mark := sql.NullBool{}
			if c.IsCorrect != nil {
				mark = sql.NullBool{Bool: *c.IsCorrect, Valid: true}
			}
			marks = append(marks, mark)
		}
		if _, err := tx.ExecContext(ctx, updateCorrectnessQuery, pq.Array(ticketIDs), pq.Array(gameIDs), pq.Array(marks)); err != nil {
			return fmt.Errorf("update prediction correctness: %w", err)
		}
	}

	roundQuery, roundArgs, err := qb.Update("rounds").
		Set("status", string(round.StatusFinished)).
		Set("results_updated", false).
		Set("finished_at", publication.ComputedAt).
		Set("updated_at", publication.ComputedAt).
		Where(qb.Eq("id", publication.RoundID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build finish round query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, roundQuery, roundArgs...); err != nil {
		return fmt.Errorf("finish round: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit publish round scores tx: %w", err)
	}
	return nil
}

func (r *RoundScoreRepository) ListByRound(ctx context.Context, roundID string) ([]roundscore.RoundScore, error) {
	query, args, err := qb.Select(roundScoreColumns...).From("round_scores").
		Where(qb.Eq("round_id", roundID)).
		OrderBy("rank ASC", "user_id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list round scores query: %w", err)
	}
	return r.selectScores(ctx, query, args)
}

func (r *RoundScoreRepository) ListAll(ctx context.Context) ([]roundscore.RoundScore, error) {
	query, args, err := qb.Select(roundScoreColumns...).From("round_scores").
		OrderBy("round_id ASC", "rank ASC", "user_id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list all round scores query: %w", err)
	}
	return r.selectScores(ctx, query, args)
}

func (r *RoundScoreRepository) selectScores(ctx context.Context, query string, args []any) ([]roundscore.RoundScore, error) {
	var rows []roundScoreTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list round scores: %w", err)
	}

	out := make([]roundscore.RoundScore, 0, len(rows))
	for _, row := range rows {
		out = append(out, roundscore.RoundScore{
			RoundID: row.RoundID,
			UserID:  row.UserID,
			Hits:    row.Hits,
			Rank:    row.Rank,
			IsPayer: row.IsPayer,
		})
	}
	return out, nil
}
