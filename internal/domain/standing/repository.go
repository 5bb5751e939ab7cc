package standing

import "context"

type Repository interface {
	UpsertMany(ctx context.Context, items []Standing) error
	// ListByEvent returns an event's standings ordered by rank.
	ListByEvent(ctx context.Context, eventID int64) ([]Standing, error)
	ListByEvents(ctx context.Context, eventIDs []int64) ([]Standing, error)
	DistinctChampions(ctx context.Context) ([]string, error)
}
