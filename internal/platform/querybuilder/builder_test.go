package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "name").
		From("events").
		Where(Eq("format", "STANDARD"), Expr("LOWER(status) = ?", "complete")).
		OrderBy("id").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, name FROM events WHERE format = $1 AND LOWER(status) = $2 ORDER BY id LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "STANDARD" || args[1] != "complete" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_DistinctAndComparisons(t *testing.T) {
	query, args, err := SelectDistinct("champion").
		From("standings").
		Where(Gte("rank", 1), In("event_id", []any{7, 8}), Expr("champion <> ''")).
		OrderBy("champion").
		Limit(20).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT DISTINCT champion FROM standings WHERE rank >= $1 AND event_id IN ($2, $3) AND champion <> '' ORDER BY champion LIMIT 20"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != 1 || args[2] != 8 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_EmptyInMatchesNothing(t *testing.T) {
	query, args, err := Select("*").From("events").Where(In("id", nil)).ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	if query != "SELECT * FROM events WHERE 1=0" {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 0 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("crawler_state").
		Columns("last_event_id", "crawl_type").
		Values(17, "incremental").
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO crawler_state (last_event_id, crawl_type) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != 17 || args[1] != "incremental" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModels(t *testing.T) {
	type row struct {
		EventID  int64  `db:"event_id"`
		PlayerID string `db:"player_id"`
		skipped  string
		Ignored  string `db:"-"`
	}

	query, args, err := InsertModels("standings", []row{
		{EventID: 1, PlayerID: "p1"},
		{EventID: 1, PlayerID: "p2"},
	}, "ON CONFLICT (event_id, player_id) DO NOTHING")
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO standings (event_id, player_id) VALUES ($1, $2), ($3, $4) ON CONFLICT (event_id, player_id) DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[3] != "p2" {
		t.Fatalf("unexpected args: %+v", args)
	}
}
