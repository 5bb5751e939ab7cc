package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/ga-meta/internal/domain/card"
	qb "github.com/riskibarqy/ga-meta/internal/platform/querybuilder"
)

const cardColumns = "slug, name, type, element, classes, subtypes, cost, reserve_cost, power, life_modifier, effect_text, flavor_text, image_url, set_name, collector_number, rarity, artist, updated_at"

type CardRepository struct {
	db *sqlx.DB
}

func NewCardRepository(db *sqlx.DB) *CardRepository {
	return &CardRepository{db: db}
}

func (r *CardRepository) Upsert(ctx context.Context, item card.Card) error {
	if err := item.Validate(); err != nil {
		return err
	}

	query, args, err := qb.InsertModel("cards", toCardTableModel(item, time.Now().UTC()),
		onConflictUpdate([]string{"slug"}, cardUpdateColumns...))
	if err != nil {
		return fmt.Errorf("build upsert card query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert card slug=%s: %w", item.Slug, err)
	}
	return nil
}

func (r *CardRepository) GetBySlug(ctx context.Context, slug string) (card.Card, bool, error) {
	query, args, err := qb.Select(cardColumns).From("cards").
		Where(qb.Eq("slug", slug)).
		Limit(1).
		ToSQL()
	if err != nil {
		return card.Card{}, false, fmt.Errorf("build select card by slug query: %w", err)
	}

	var row cardTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return card.Card{}, false, nil
		}
		return card.Card{}, false, fmt.Errorf("select card by slug: %w", err)
	}

	item, err := row.toDomain()
	if err != nil {
		return card.Card{}, false, fmt.Errorf("map card slug=%s: %w", slug, err)
	}
	return item, true, nil
}

func (r *CardRepository) NamesBySlugs(ctx context.Context, slugs []string) (map[string]string, error) {
	out := make(map[string]string, len(slugs))
	if len(slugs) == 0 {
		return out, nil
	}

	query, args, err := qb.Select("slug", "name").From("cards").
		Where(qb.In("slug", stringsToAny(slugs))).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build card names query: %w", err)
	}

	var rows []struct {
		Slug string `db:"slug"`
		Name string `db:"name"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select card names: %w", err)
	}
	for _, row := range rows {
		out[row.Slug] = row.Name
	}
	return out, nil
}
