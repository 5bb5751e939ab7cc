package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/ga-meta/internal/domain/event"
)

type EventRepository struct {
	mu    sync.RWMutex
	items map[int64]event.Event
}

func NewEventRepository(events ...event.Event) *EventRepository {
	items := make(map[int64]event.Event, len(events))
	for _, e := range events {
		items[e.ID] = e
	}

	return &EventRepository{items: items}
}

func (r *EventRepository) Upsert(_ context.Context, item event.Event) error {
	if err := item.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	r.items[item.ID] = item
	r.mu.Unlock()
	return nil
}

func (r *EventRepository) GetByID(_ context.Context, eventID int64) (event.Event, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.items[eventID]
	return e, ok, nil
}

func (r *EventRepository) List(_ context.Context, filter event.Filter) ([]event.Event, error) {
	r.mu.RLock()
	out := make([]event.Event, 0, len(r.items))
	for _, e := range r.items {
		if matchesEventFilter(e, filter) {
			out = append(out, e)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		left, right := out[i].StartDate, out[j].StartDate
		switch {
		case left != nil && right != nil && !left.Equal(*right):
			return left.After(*right)
		case left != nil && right == nil:
			return true
		case left == nil && right != nil:
			return false
		}
		return out[i].ID > out[j].ID
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func matchesEventFilter(e event.Event, filter event.Filter) bool {
	if filter.CompleteOnly && !e.IsComplete() {
		return false
	}
	if filter.RankedOnly && !e.Ranked {
		return false
	}
	if filter.Format != nil && e.Format != *filter.Format {
		return false
	}
	if filter.Since != nil && (e.StartDate == nil || e.StartDate.Before(*filter.Since)) {
		return false
	}
	if filter.MinPlayers > 0 && e.PlayerCount < filter.MinPlayers {
		return false
	}
	return true
}
