package champion

import "context"

type Repository interface {
	Upsert(ctx context.Context, item Champion) error
	// List returns every champion ordered by name.
	List(ctx context.Context) ([]Champion, error)
	GetBySlug(ctx context.Context, slug string) (Champion, bool, error)
}
