package card

import "context"

type Repository interface {
	Upsert(ctx context.Context, item Card) error
	GetBySlug(ctx context.Context, slug string) (Card, bool, error)
	// NamesBySlugs returns display names for the slugs present in the catalog.
	NamesBySlugs(ctx context.Context, slugs []string) (map[string]string, error)
}
