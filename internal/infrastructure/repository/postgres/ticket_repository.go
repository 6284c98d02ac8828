package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/toto/internal/domain/outcome"
	"github.com/riskibarqy/toto/internal/domain/round"
	"github.com/riskibarqy/toto/internal/domain/ticket"
	qb "github.com/riskibarqy/toto/internal/platform/querybuilder"
)

type TicketRepository struct {
	db *sqlx.DB
}

func NewTicketRepository(db *sqlx.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

const predictionSelect = "p.ticket_id, p.game_id, p.pick, p.is_correct"

// Upsert replaces the ticket of (round, user) in one transaction. The round
// row is read FOR SHARE so a concurrent lock waits for this write, and the
// ticket row lock serializes submissions of the same user. The last write wins.
func (r *TicketRepository) Upsert(ctx context.Context, item ticket.Ticket) (ticket.Ticket, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return ticket.Ticket{}, fmt.Errorf("begin tx upsert ticket: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	roundQuery, roundArgs, err := qb.Select("status", "deadline_at").From("rounds").
		Where(qb.Eq("id", item.RoundID)).
		ForShare().
		ToSQL()
	if err != nil {
		return ticket.Ticket{}, fmt.Errorf("build lock round for ticket query: %w", err)
	}
	var state struct {
		Status     string    `db:"status"`
		DeadlineAt time.Time `db:"deadline_at"`
	}
	if err := tx.GetContext(ctx, &state, roundQuery, roundArgs...); err != nil {
		if isNotFound(err) {
			return ticket.Ticket{}, ticket.ErrRoundNotAccepting
		}
		return ticket.Ticket{}, fmt.Errorf("lock round for ticket: %w", err)
	}
	if !round.Status(state.Status).AcceptsTickets() || !item.SubmittedAt.Before(state.DeadlineAt) {
		return ticket.Ticket{}, ticket.ErrRoundNotAccepting
	}

	upsertQuery, upsertArgs, err := qb.InsertInto("tickets").
		Columns(ticketColumns...).
		Values(item.ID, item.RoundID, item.UserID, item.SubmittedAt, false).
		OnConflict("round_id", "user_id").
		DoUpdate("submitted_at").
		DoUpdateExpr("autofilled", "FALSE").
		Returning("id").
		ToSQL()
	if err != nil {
		return ticket.Ticket{}, fmt.Errorf("build upsert ticket query: %w", err)
	}
	var ticketID string
	if err := tx.GetContext(ctx, &ticketID, upsertQuery, upsertArgs...); err != nil {
		return ticket.Ticket{}, fmt.Errorf("upsert ticket: %w", err)
	}

	deleteQuery, deleteArgs, err := qb.DeleteFrom("predictions").
		Where(qb.Eq("ticket_id", ticketID)).
		ToSQL()
	if err != nil {
		return ticket.Ticket{}, fmt.Errorf("build delete predictions query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return ticket.Ticket{}, fmt.Errorf("delete predictions: %w", err)
	}

	out := ticket.Clone(item)
	out.ID = ticketID
	out.Autofilled = false
	for i := range out.Predictions {
		out.Predictions[i].TicketID = ticketID
		out.Predictions[i].IsCorrect = nil
	}
	if err := insertPredictions(ctx, tx, out.Predictions); err != nil {
		return ticket.Ticket{}, err
	}

	if err := tx.Commit(); err != nil {
		return ticket.Ticket{}, fmt.Errorf("commit upsert ticket tx: %w", err)
	}
	return out, nil
}

func (r *TicketRepository) CreateIfAbsent(ctx context.Context, item ticket.Ticket) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx create ticket: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	insertQuery, insertArgs, err := qb.InsertInto("tickets").
		Columns(ticketColumns...).
		Values(item.ID, item.RoundID, item.UserID, item.SubmittedAt, item.Autofilled).
		OnConflict("round_id", "user_id").
		DoNothing().
		Returning("id").
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build create ticket query: %w", err)
	}
	var ticketID string
	if err := tx.GetContext(ctx, &ticketID, insertQuery, insertArgs...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("create ticket: %w", err)
	}

	if err := insertPredictions(ctx, tx, item.Predictions); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit create ticket tx: %w", err)
	}
	return true, nil
}

func (r *TicketRepository) GetByRoundAndUser(ctx context.Context, roundID, userID string) (ticket.Ticket, bool, error) {
	query, args, err := qb.Select(ticketColumns...).From("tickets").
		Where(qb.Eq("round_id", roundID), qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return ticket.Ticket{}, false, fmt.Errorf("build get ticket query: %w", err)
	}

	var row ticketTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return ticket.Ticket{}, false, nil
		}
		return ticket.Ticket{}, false, fmt.Errorf("get ticket: %w", err)
	}

	predictions, err := r.listPredictions(ctx, []string{row.ID})
	if err != nil {
		return ticket.Ticket{}, false, err
	}
	return ticketFromRow(row, predictions[row.ID]), true, nil
}

func (r *TicketRepository) ListByRound(ctx context.Context, roundID string) ([]ticket.Ticket, error) {
	query, args, err := qb.Select(ticketColumns...).From("tickets").
		Where(qb.Eq("round_id", roundID)).
		OrderBy("user_id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list tickets by round query: %w", err)
	}

	var rows []ticketTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list tickets by round: %w", err)
	}
	if len(rows) == 0 {
		return []ticket.Ticket{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	predictions, err := r.listPredictions(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]ticket.Ticket, 0, len(rows))
	for _, row := range rows {
		out = append(out, ticketFromRow(row, predictions[row.ID]))
	}
	return out, nil
}

func (r *TicketRepository) CountByRound(ctx context.Context, roundID string) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From("tickets").
		Where(qb.Eq("round_id", roundID)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count tickets query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count tickets: %w", err)
	}
	return count, nil
}

func (r *TicketRepository) listPredictions(ctx context.Context, ticketIDs []string) (map[string][]predictionTableModel, error) {
	query, args, err := qb.Select(predictionSelect).
		From("predictions p JOIN games g ON g.id = p.game_id").
		Where(qb.InStrings("p.ticket_id", ticketIDs)).
		OrderBy("p.ticket_id ASC", "g.game_number ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list predictions query: %w", err)
	}

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}

	out := make(map[string][]predictionTableModel, len(ticketIDs))
	for _, row := range rows {
		out[row.TicketID] = append(out[row.TicketID], row)
	}
	return out, nil
}

func insertPredictions(ctx context.Context, tx *sqlx.Tx, predictions []ticket.Prediction) error {
	if len(predictions) == 0 {
		return nil
	}

	insert := qb.InsertInto("predictions").Columns("ticket_id", "game_id", "pick", "is_correct")
	for _, p := range predictions {
		insert = insert.Values(p.TicketID, p.GameID, p.Pick.String(), p.IsCorrect)
	}
	query, args, err := insert.ToSQL()
	if err != nil {
		return fmt.Errorf("build insert predictions query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert predictions: %w", err)
	}
	return nil
}

func ticketFromRow(row ticketTableModel, predictions []predictionTableModel) ticket.Ticket {
	out := ticket.Ticket{
		ID:          row.ID,
		RoundID:     row.RoundID,
		UserID:      row.UserID,
		SubmittedAt: row.SubmittedAt,
		Autofilled:  row.Autofilled,
		Predictions: make([]ticket.Prediction, 0, len(predictions)),
	}
	for _, p := range predictions {
		out.Predictions = append(out.Predictions, ticket.Prediction{
			TicketID:  p.TicketID,
			GameID:    p.GameID,
			Pick:      pickFromColumn(p.Pick),
			IsCorrect: p.IsCorrect,
		})
	}
	return out
}

// pickFromColumn decodes the canonical pick string written by Pick.String.
func pickFromColumn(raw string) outcome.Pick {
	symbols := strings.Split(raw, "")
	pick, err := outcome.NewPick(symbols)
	if err != nil {
		return nil
	}
	return pick
}
