package cache

import (
	"context"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/riskibarqy/ga-meta/internal/domain/card"
	"github.com/riskibarqy/ga-meta/internal/domain/champion"
	"github.com/riskibarqy/ga-meta/internal/domain/event"
	basecache "github.com/riskibarqy/ga-meta/internal/platform/cache"
)

const (
	championListKey = "champion:list"
	championSlugKey = "champion:slug:"
	cardSlugKey     = "card:slug:"
	cardNamesPrefix = "card:names:"
	eventByIDPrefix = "event:id:"
)

type ChampionRepository struct {
	next  champion.Repository
	cache *basecache.Store
}

func NewChampionRepository(next champion.Repository, cache *basecache.Store) *ChampionRepository {
	return &ChampionRepository{next: next, cache: cache}
}

func (r *ChampionRepository) Upsert(ctx context.Context, item champion.Champion) error {
	if err := r.next.Upsert(ctx, item); err != nil {
		return err
	}

	r.cache.Delete(ctx, championListKey)
	r.cache.Delete(ctx, championSlugKey+item.Slug)
	return nil
}

func (r *ChampionRepository) List(ctx context.Context) ([]champion.Champion, error) {
	v, err := r.cache.GetOrLoad(ctx, championListKey, func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]champion.Champion(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]champion.Champion)
	return append([]champion.Champion(nil), items...), nil
}

func (r *ChampionRepository) GetBySlug(ctx context.Context, slug string) (champion.Champion, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, championSlugKey+slug, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		return cachedChampionBySlug{value: item, exists: exists}, nil
	})
	if err != nil {
		return champion.Champion{}, false, err
	}

	cached, _ := v.(cachedChampionBySlug)
	return cached.value, cached.exists, nil
}

type cachedChampionBySlug struct {
	value  champion.Champion
	exists bool
}

type CardRepository struct {
	next  card.Repository
	cache *basecache.Store
}

func NewCardRepository(next card.Repository, cache *basecache.Store) *CardRepository {
	return &CardRepository{next: next, cache: cache}
}

func (r *CardRepository) Upsert(ctx context.Context, item card.Card) error {
	if err := r.next.Upsert(ctx, item); err != nil {
		return err
	}

	r.cache.Delete(ctx, cardSlugKey+item.Slug)
	r.cache.DeletePrefix(ctx, cardNamesPrefix)
	return nil
}

func (r *CardRepository) GetBySlug(ctx context.Context, slug string) (card.Card, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, cardSlugKey+slug, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		return cachedCardBySlug{value: item, exists: exists}, nil
	})
	if err != nil {
		return card.Card{}, false, err
	}

	cached, _ := v.(cachedCardBySlug)
	return cached.value, cached.exists, nil
}

func (r *CardRepository) NamesBySlugs(ctx context.Context, slugs []string) (map[string]string, error) {
	keys := append([]string(nil), slugs...)
	slices.Sort(keys)
	keys = slices.Compact(keys)

	v, err := r.cache.GetOrLoad(ctx, cardNamesPrefix+strings.Join(keys, ","), func(ctx context.Context) (any, error) {
		return r.next.NamesBySlugs(ctx, keys)
	})
	if err != nil {
		return nil, err
	}

	names, _ := v.(map[string]string)
	return maps.Clone(names), nil
}

type cachedCardBySlug struct {
	value  card.Card
	exists bool
}

// EventRepository caches single-event lookups. Listings always hit the store
// because their filters carry a moving time window.
type EventRepository struct {
	next  event.Repository
	cache *basecache.Store
}

func NewEventRepository(next event.Repository, cache *basecache.Store) *EventRepository {
	return &EventRepository{next: next, cache: cache}
}

func (r *EventRepository) Upsert(ctx context.Context, item event.Event) error {
	if err := r.next.Upsert(ctx, item); err != nil {
		return err
	}

	r.cache.Delete(ctx, eventKey(item.ID))
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, eventID int64) (event.Event, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, eventKey(eventID), func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, eventID)
		if err != nil {
			return nil, err
		}
		return cachedEventByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return event.Event{}, false, err
	}

	cached, _ := v.(cachedEventByID)
	return cached.value, cached.exists, nil
}

func (r *EventRepository) List(ctx context.Context, filter event.Filter) ([]event.Event, error) {
	return r.next.List(ctx, filter)
}

type cachedEventByID struct {
	value  event.Event
	exists bool
}

func eventKey(eventID int64) string {
	return eventByIDPrefix + strconv.FormatInt(eventID, 10)
}
