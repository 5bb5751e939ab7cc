package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/ga-meta/internal/domain/card"
)

type CardRepository struct {
	mu    sync.RWMutex
	items map[string]card.Card
}

func NewCardRepository(cards ...card.Card) *CardRepository {
	items := make(map[string]card.Card, len(cards))
	for _, c := range cards {
		items[c.Slug] = c
	}
	return &CardRepository{items: items}
}

func (r *CardRepository) Upsert(_ context.Context, item card.Card) error {
	if err := item.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	r.items[item.Slug] = item
	r.mu.Unlock()
	return nil
}

func (r *CardRepository) GetBySlug(_ context.Context, slug string) (card.Card, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[slug]
	return c, ok, nil
}

func (r *CardRepository) NamesBySlugs(_ context.Context, slugs []string) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(slugs))
	for _, slug := range slugs {
		if c, ok := r.items[slug]; ok {
			out[slug] = c.Name
		}
	}
	return out, nil
}
