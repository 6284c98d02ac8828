package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "round_number").
		From("rounds").
		Where(Eq("status", "active"), IsNull("autofilled_at")).
		OrderBy("round_number DESC").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, round_number FROM rounds WHERE status = $1 AND autofilled_at IS NULL ORDER BY round_number DESC LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "active" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_ForShare(t *testing.T) {
	query, args, err := Select("status", "deadline_at").
		From("rounds").
		Where(Eq("id", "r1")).
		ForShare().
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT status, deadline_at FROM rounds WHERE id = $1 FOR SHARE"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "r1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_InStringsAndExpr(t *testing.T) {
	query, args, err := Select("*").
		From("predictions").
		Where(
			InStrings("ticket_id", []string{"t1", "t2"}),
			Expr("(status = ? OR deadline_at <= ?)", "locked", "2026-10-18"),
		).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT * FROM predictions WHERE ticket_id IN ($1, $2) AND (status = $3 OR deadline_at <= $4)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[3] != "2026-10-18" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_EmptyInMatchesNothing(t *testing.T) {
	query, _, err := Select("*").From("tickets").Where(InStrings("id", nil)).ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	if query != "SELECT * FROM tickets WHERE 1=0" {
		t.Fatalf("unexpected query: %s", query)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("tickets").
		Columns("id", "round_id").
		Values("t1", "r1").
		OnConflict("round_id", "user_id").
		DoNothing().
		Returning("id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO tickets (id, round_id) VALUES ($1, $2) ON CONFLICT (round_id, user_id) DO NOTHING RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "t1" || args[1] != "r1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder_OnConflictDoUpdate(t *testing.T) {
	query, _, err := InsertInto("tickets").
		Columns("id", "round_id", "user_id", "submitted_at", "autofilled").
		Values("t1", "r1", "u1", "2026-10-18", false).
		OnConflict("round_id", "user_id").
		DoUpdate("submitted_at").
		DoUpdateExpr("autofilled", "FALSE").
		Returning("id").
		ToSQL()
	if err != nil {
		t.Fatalf("build upsert query: %v", err)
	}

	wantQuery := "INSERT INTO tickets (id, round_id, user_id, submitted_at, autofilled) VALUES ($1, $2, $3, $4, $5) " +
		"ON CONFLICT (round_id, user_id) DO UPDATE SET submitted_at = EXCLUDED.submitted_at, autofilled = FALSE RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
}

func TestInsertBuilder_OnConflictRejectsIncompleteClause(t *testing.T) {
	tests := []struct {
		name    string
		builder *InsertBuilder
	}{
		{
			name:    "missing action",
			builder: InsertInto("members").Columns("user_id").Values("u1").OnConflict("user_id"),
		},
		{
			name:    "update without target",
			builder: InsertInto("members").Columns("user_id").Values("u1").DoUpdate("user_id"),
		},
		{
			name:    "both actions",
			builder: InsertInto("members").Columns("user_id").Values("u1").OnConflict("user_id").DoNothing().DoUpdate("user_id"),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := tc.builder.ToSQL(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestInsertBuilder_MultiRow(t *testing.T) {
	query, args, err := InsertInto("games").
		Columns("id", "game_number").
		Values("g1", 1).
		Values("g2", 2).
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO games (id, game_number) VALUES ($1, $2), ($3, $4)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("rounds").
		Set("status", "locked").
		SetExpr("updated_at", "NOW()").
		Where(Eq("id", "r1"), Eq("status", "active")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE rounds SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "locked" || args[1] != "r1" || args[2] != "active" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("games").
		Where(Eq("round_id", "r1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM games WHERE round_id = $1"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "r1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder_RequiresWhere(t *testing.T) {
	if _, _, err := DeleteFrom("games").ToSQL(); err == nil {
		t.Fatalf("expected error for unconditional delete")
	}
}
