package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/ga-meta/internal/domain/decklist"
)

type DecklistRepository struct {
	mu    sync.RWMutex
	items map[participantKey]decklist.Decklist
}

func NewDecklistRepository() *DecklistRepository {
	return &DecklistRepository{items: make(map[participantKey]decklist.Decklist)}
}

func (r *DecklistRepository) UpsertMany(_ context.Context, items []decklist.Decklist) error {
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}

	r.mu.Lock()
	for _, item := range items {
		r.items[participantKey{eventID: item.EventID, playerID: item.PlayerID}] = item
	}
	r.mu.Unlock()
	return nil
}

func (r *DecklistRepository) List(_ context.Context, filter decklist.Filter) ([]decklist.Decklist, error) {
	var wanted map[int64]struct{}
	if filter.EventIDs != nil {
		wanted = int64Set(filter.EventIDs)
	}

	r.mu.RLock()
	out := make([]decklist.Decklist, 0)
	for key, item := range r.items {
		if wanted != nil {
			if _, ok := wanted[key.eventID]; !ok {
				continue
			}
		}
		if filter.Champion != "" && item.Champion != filter.Champion {
			continue
		}
		out = append(out, item)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		if out[i].EventID != out[j].EventID {
			return out[i].EventID > out[j].EventID
		}
		return out[i].PlayerID < out[j].PlayerID
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *DecklistRepository) ListByPlayer(_ context.Context, playerID string, eventID *int64) ([]decklist.Decklist, error) {
	r.mu.RLock()
	out := make([]decklist.Decklist, 0)
	for key, item := range r.items {
		if key.playerID != playerID {
			continue
		}
		if eventID != nil && key.eventID != *eventID {
			continue
		}
		out = append(out, item)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].EventID > out[j].EventID })
	return out, nil
}

func (r *DecklistRepository) DistinctCardSlugs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	seen := make(map[string]struct{})
	for _, item := range r.items {
		for _, slug := range item.CardSlugs() {
			seen[slug] = struct{}{}
		}
	}
	r.mu.RUnlock()

	return sortedKeys(seen), nil
}
