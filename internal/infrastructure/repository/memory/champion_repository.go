package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/ga-meta/internal/domain/champion"
)

type ChampionRepository struct {
	mu    sync.RWMutex
	items map[string]champion.Champion
}

func NewChampionRepository() *ChampionRepository {
	return &ChampionRepository{items: make(map[string]champion.Champion)}
}

func (r *ChampionRepository) Upsert(_ context.Context, item champion.Champion) error {
	r.mu.Lock()
	r.items[item.Slug] = item
	r.mu.Unlock()
	return nil
}

func (r *ChampionRepository) List(_ context.Context) ([]champion.Champion, error) {
	r.mu.RLock()
	out := make([]champion.Champion, 0, len(r.items))
	for _, c := range r.items {
		out = append(out, c)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Slug < out[j].Slug
	})
	return out, nil
}

func (r *ChampionRepository) GetBySlug(_ context.Context, slug string) (champion.Champion, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[slug]
	return c, ok, nil
}
