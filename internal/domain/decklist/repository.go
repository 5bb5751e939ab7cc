package decklist

import "context"

// Filter narrows decklist listings. A nil EventIDs means any event; an empty
// non-nil slice matches nothing.
type Filter struct {
	EventIDs []int64
	Champion string
	Limit    int
}

type Repository interface {
	UpsertMany(ctx context.Context, items []Decklist) error
	// List returns matches ordered by rank, then event id descending.
	List(ctx context.Context, filter Filter) ([]Decklist, error)
	// ListByPlayer returns a player's decklists, newest event first.
	ListByPlayer(ctx context.Context, playerID string, eventID *int64) ([]Decklist, error)
	DistinctCardSlugs(ctx context.Context) ([]string, error)
}
