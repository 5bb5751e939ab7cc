package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/ga-meta/internal/domain/standing"
	qb "github.com/riskibarqy/ga-meta/internal/platform/querybuilder"
)

const standingColumns = "event_id, player_id, player_name, rank, champion, wins, losses, draws, match_win_rate, has_decklist, updated_at"

type StandingRepository struct {
	db *sqlx.DB
}

func NewStandingRepository(db *sqlx.DB) *StandingRepository {
	return &StandingRepository{db: db}
}

// UpsertMany writes standings in batches inside one transaction. A player
// repeated within items keeps its last row.
func (r *StandingRepository) UpsertMany(ctx context.Context, items []standing.Standing) error {
	if len(items) == 0 {
		return nil
	}

	now := time.Now().UTC()
	seen := make(map[string]int, len(items))
	rows := make([]standingTableModel, 0, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		key := fmt.Sprintf("%d|%s", item.EventID, item.PlayerID)
		if idx, ok := seen[key]; ok {
			rows[idx] = toStandingTableModel(item, now)
			continue
		}
		seen[key] = len(rows)
		rows = append(rows, toStandingTableModel(item, now))
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for standings upsert: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	suffix := onConflictUpdate([]string{"event_id", "player_id"}, standingUpdateColumns...)
	for _, batch := range batches(rows, upsertBatchSize) {
		query, args, err := qb.InsertModels("standings", batch, suffix)
		if err != nil {
			return fmt.Errorf("build upsert standings query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert standings event_id=%d: %w", batch[0].EventID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit standings upsert: %w", err)
	}
	return nil
}

func (r *StandingRepository) ListByEvent(ctx context.Context, eventID int64) ([]standing.Standing, error) {
	return r.ListByEvents(ctx, []int64{eventID})
}

func (r *StandingRepository) ListByEvents(ctx context.Context, eventIDs []int64) ([]standing.Standing, error) {
	if len(eventIDs) == 0 {
		return []standing.Standing{}, nil
	}

	query, args, err := qb.Select(standingColumns).From("standings").
		Where(qb.In("event_id", int64sToAny(eventIDs))).
		OrderBy("event_id DESC", "rank ASC", "player_id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list standings query: %w", err)
	}

	var rows []standingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select standings by events: %w", err)
	}

	out := make([]standing.Standing, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *StandingRepository) DistinctChampions(ctx context.Context) ([]string, error) {
	query, args, err := qb.SelectDistinct("champion").From("standings").
		Where(qb.Expr("champion <> ''")).
		OrderBy("champion").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build distinct champions query: %w", err)
	}

	var out []string
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("select distinct champions: %w", err)
	}
	return out, nil
}
