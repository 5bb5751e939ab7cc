package cache

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/ga-meta/internal/domain/card"
	"github.com/riskibarqy/ga-meta/internal/domain/champion"
	"github.com/riskibarqy/ga-meta/internal/domain/event"
	"github.com/riskibarqy/ga-meta/internal/infrastructure/repository/memory"
	cardmock "github.com/riskibarqy/ga-meta/internal/mocks/domain/card"
	championmock "github.com/riskibarqy/ga-meta/internal/mocks/domain/champion"
	basecache "github.com/riskibarqy/ga-meta/internal/platform/cache"
	"github.com/stretchr/testify/mock"
)

func TestChampionRepository_ListIsCachedUntilUpsert(t *testing.T) {
	t.Parallel()

	next := championmock.NewRepository(t)
	repo := NewChampionRepository(next, basecache.NewStore(time.Minute))

	next.On("List", mock.Anything).Return([]champion.Champion{{Slug: "lorraine", Name: "Lorraine"}}, nil).Twice()
	next.On("Upsert", mock.Anything, mock.Anything).Return(nil).Once()

	for i := 0; i < 3; i++ {
		items, err := repo.List(context.Background())
		if err != nil || len(items) != 1 {
			t.Fatalf("expected cached list, got=%v err=%v", items, err)
		}
	}

	if err := repo.Upsert(context.Background(), champion.Champion{Slug: "silvie", Name: "Silvie"}); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}
	if _, err := repo.List(context.Background()); err != nil {
		t.Fatalf("List after upsert error: %v", err)
	}
}

func TestChampionRepository_CachesMisses(t *testing.T) {
	t.Parallel()

	next := championmock.NewRepository(t)
	repo := NewChampionRepository(next, basecache.NewStore(time.Minute))
	next.On("GetBySlug", mock.Anything, "unknown").Return(champion.Champion{}, false, nil).Once()

	for i := 0; i < 2; i++ {
		if _, ok, err := repo.GetBySlug(context.Background(), "unknown"); ok || err != nil {
			t.Fatalf("expected cached miss, got ok=%v err=%v", ok, err)
		}
	}
}

func TestCardRepository_NamesBySlugsKeyIgnoresOrder(t *testing.T) {
	t.Parallel()

	next := cardmock.NewRepository(t)
	repo := NewCardRepository(next, basecache.NewStore(time.Minute))
	next.
		On("NamesBySlugs", mock.Anything, []string{"firebolt", "slice-and-dice"}).
		Return(map[string]string{"firebolt": "Firebolt"}, nil).
		Once()

	first, err := repo.NamesBySlugs(context.Background(), []string{"slice-and-dice", "firebolt", "firebolt"})
	if err != nil {
		t.Fatalf("NamesBySlugs error: %v", err)
	}
	first["firebolt"] = "mutated"

	second, err := repo.NamesBySlugs(context.Background(), []string{"firebolt", "slice-and-dice"})
	if err != nil {
		t.Fatalf("NamesBySlugs error: %v", err)
	}
	if second["firebolt"] != "Firebolt" {
		t.Fatalf("expected cached names to be isolated from callers, got=%v", second)
	}
}

func TestCardRepository_UpsertDropsNameLookups(t *testing.T) {
	t.Parallel()

	store := basecache.NewStore(time.Minute)
	repo := NewCardRepository(memory.NewCardRepository(), store)

	names, err := repo.NamesBySlugs(context.Background(), []string{"firebolt"})
	if err != nil || len(names) != 0 {
		t.Fatalf("expected empty names, got=%v err=%v", names, err)
	}
	if err := repo.Upsert(context.Background(), card.Card{Slug: "firebolt", Name: "Firebolt"}); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}

	names, err = repo.NamesBySlugs(context.Background(), []string{"firebolt"})
	if err != nil {
		t.Fatalf("NamesBySlugs error: %v", err)
	}
	if names["firebolt"] != "Firebolt" {
		t.Fatalf("expected fresh names after upsert, got=%v", names)
	}
}

func TestEventRepository_GetByIDInvalidatedOnUpsert(t *testing.T) {
	t.Parallel()

	repo := NewEventRepository(memory.NewEventRepository(event.Event{ID: 3, Name: "Store Championship"}), basecache.NewStore(time.Minute))

	got, ok, err := repo.GetByID(context.Background(), 3)
	if err != nil || !ok || got.Name != "Store Championship" {
		t.Fatalf("unexpected lookup: %+v ok=%v err=%v", got, ok, err)
	}
	if err := repo.Upsert(context.Background(), event.Event{ID: 3, Name: "Store Championship Finals"}); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}

	got, _, _ = repo.GetByID(context.Background(), 3)
	if got.Name != "Store Championship Finals" {
		t.Fatalf("expected refreshed event, got=%+v", got)
	}
}
