package crawlerstate

import "context"

type Repository interface {
	Append(ctx context.Context, state State) error
	// Latest returns the checkpoint with the most recent LastCrawl.
	Latest(ctx context.Context) (State, bool, error)
}
