package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/ga-meta/internal/domain/standing"
)

type participantKey struct {
	eventID  int64
	playerID string
}

type StandingRepository struct {
	mu    sync.RWMutex
	items map[participantKey]standing.Standing
}

func NewStandingRepository() *StandingRepository {
	return &StandingRepository{items: make(map[participantKey]standing.Standing)}
}

func (r *StandingRepository) UpsertMany(_ context.Context, items []standing.Standing) error {
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

func (r *StandingRepository) ListByEvent(ctx context.Context, eventID int64) ([]standing.Standing, error) {
	return r.ListByEvents(ctx, []int64{eventID})
}

func (r *StandingRepository) ListByEvents(_ context.Context, eventIDs []int64) ([]standing.Standing, error) {
	wanted := int64Set(eventIDs)

	r.mu.RLock()
	out := make([]standing.Standing, 0)
	for key, item := range r.items {
		if _, ok := wanted[key.eventID]; ok {
			out = append(out, item)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].EventID != out[j].EventID {
			return out[i].EventID > out[j].EventID
		}
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out, nil
}

func (r *StandingRepository) DistinctChampions(_ context.Context) ([]string, error) {
	r.mu.RLock()
	seen := make(map[string]struct{})
	for _, item := range r.items {
		if item.Champion != "" {
			seen[item.Champion] = struct{}{}
		}
	}
	r.mu.RUnlock()

	return sortedKeys(seen), nil
}

func int64Set(values []int64) map[int64]struct{} {
	out := make(map[int64]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
