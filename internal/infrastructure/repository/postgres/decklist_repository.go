package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/ga-meta/internal/domain/decklist"
	qb "github.com/riskibarqy/ga-meta/internal/platform/querybuilder"
)

const decklistColumns = "event_id, player_id, player_name, champion, rank, main_deck, sideboard, main_deck_count, sideboard_count, card_frequencies, updated_at"

type DecklistRepository struct {
	db *sqlx.DB
}

func NewDecklistRepository(db *sqlx.DB) *DecklistRepository {
	return &DecklistRepository{db: db}
}

func (r *DecklistRepository) UpsertMany(ctx context.Context, items []decklist.Decklist) error {
	if len(items) == 0 {
		return nil
	}

	now := time.Now().UTC()
	seen := make(map[string]int, len(items))
	rows := make([]decklistTableModel, 0, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		key := fmt.Sprintf("%d|%s", item.EventID, item.PlayerID)
		if idx, ok := seen[key]; ok {
			rows[idx] = toDecklistTableModel(item, now)
			continue
		}
		seen[key] = len(rows)
		rows = append(rows, toDecklistTableModel(item, now))
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for decklists upsert: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	suffix := onConflictUpdate([]string{"event_id", "player_id"}, decklistUpdateColumns...)
	for _, batch := range batches(rows, upsertBatchSize) {
		query, args, err := qb.InsertModels("decklists", batch, suffix)
		if err != nil {
			return fmt.Errorf("build upsert decklists query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert decklists event_id=%d: %w", batch[0].EventID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit decklists upsert: %w", err)
	}
	return nil
}

func (r *DecklistRepository) List(ctx context.Context, filter decklist.Filter) ([]decklist.Decklist, error) {
	conditions := make([]qb.Condition, 0, 2)
	if filter.EventIDs != nil {
		conditions = append(conditions, qb.In("event_id", int64sToAny(filter.EventIDs)))
	}
	if filter.Champion != "" {
		conditions = append(conditions, qb.Eq("champion", filter.Champion))
	}

	query, args, err := qb.Select(decklistColumns).From("decklists").
		Where(conditions...).
		OrderBy("rank ASC", "event_id DESC", "player_id ASC").
		Limit(filter.Limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list decklists query: %w", err)
	}
	return r.selectDecklists(ctx, query, args)
}

func (r *DecklistRepository) ListByPlayer(ctx context.Context, playerID string, eventID *int64) ([]decklist.Decklist, error) {
	conditions := []qb.Condition{qb.Eq("player_id", playerID)}
	if eventID != nil {
		conditions = append(conditions, qb.Eq("event_id", *eventID))
	}

	query, args, err := qb.Select(decklistColumns).From("decklists").
		Where(conditions...).
		OrderBy("event_id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list decklists by player query: %w", err)
	}
	return r.selectDecklists(ctx, query, args)
}

// DistinctCardSlugs unnests both JSONB card arrays so the sync job sees every
// card, sideboard included.
func (r *DecklistRepository) DistinctCardSlugs(ctx context.Context) ([]string, error) {
	const query = `
SELECT DISTINCT card ->> 'slug' AS slug
FROM decklists,
     LATERAL jsonb_array_elements(main_deck || sideboard) AS card
WHERE COALESCE(card ->> 'slug', '') <> ''
ORDER BY slug`

	var out []string
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("select distinct card slugs: %w", err)
	}
	return out, nil
}

func (r *DecklistRepository) selectDecklists(ctx context.Context, query string, args []any) ([]decklist.Decklist, error) {
	var rows []decklistTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select decklists: %w", err)
	}

	out := make([]decklist.Decklist, 0, len(rows))
	for _, row := range rows {
		item, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("map decklist event_id=%d player_id=%s: %w", row.EventID, row.PlayerID, err)
		}
		out = append(out, item)
	}
	return out, nil
}
