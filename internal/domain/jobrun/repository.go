package jobrun

import "context"

type Repository interface {
	Upsert(ctx context.Context, run Run) error
	// List returns runs, most recently started first.
	List(ctx context.Context, filter Filter) ([]Run, error)
}
