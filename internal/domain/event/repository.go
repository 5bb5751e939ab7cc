package event

import (
	"context"
	"time"
)

// Filter narrows event listings. Zero values mean "no constraint".
type Filter struct {
	Format       *Format
	Since        *time.Time
	MinPlayers   int
	CompleteOnly bool
	RankedOnly   bool
	Limit        int
}

// Repository describes event persistence needs from use cases.
type Repository interface {
	Upsert(ctx context.Context, item Event) error
	GetByID(ctx context.Context, eventID int64) (Event, bool, error)
	// List returns matches ordered by start date, newest first.
	List(ctx context.Context, filter Filter) ([]Event, error)
}
