package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/ga-meta/internal/domain/champion"
	qb "github.com/riskibarqy/ga-meta/internal/platform/querybuilder"
)

const championColumns = "slug, name, element, class, image_url, ability_text, life, updated_at"

type ChampionRepository struct {
	db *sqlx.DB
}

func NewChampionRepository(db *sqlx.DB) *ChampionRepository {
	return &ChampionRepository{db: db}
}

func (r *ChampionRepository) Upsert(ctx context.Context, item champion.Champion) error {
	if strings.TrimSpace(item.Slug) == "" {
		return fmt.Errorf("champion slug is required")
	}

	query, args, err := qb.InsertModel("champions", toChampionTableModel(item, time.Now().UTC()),
		onConflictUpdate([]string{"slug"}, championUpdateColumns...))
	if err != nil {
		return fmt.Errorf("build upsert champion query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert champion slug=%s: %w", item.Slug, err)
	}
	return nil
}

func (r *ChampionRepository) List(ctx context.Context) ([]champion.Champion, error) {
	query, args, err := qb.Select(championColumns).From("champions").
		OrderBy("name", "slug").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list champions query: %w", err)
	}

	var rows []championTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select champions: %w", err)
	}

	out := make([]champion.Champion, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ChampionRepository) GetBySlug(ctx context.Context, slug string) (champion.Champion, bool, error) {
	query, args, err := qb.Select(championColumns).From("champions").
		Where(qb.Eq("slug", slug)).
		Limit(1).
		ToSQL()
	if err != nil {
		return champion.Champion{}, false, fmt.Errorf("build select champion by slug query: %w", err)
	}

	var row championTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return champion.Champion{}, false, nil
		}
		return champion.Champion{}, false, fmt.Errorf("select champion by slug: %w", err)
	}
	return row.toDomain(), true, nil
}
