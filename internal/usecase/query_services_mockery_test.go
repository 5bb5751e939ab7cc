package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/ga-meta/internal/domain/champion"
	"github.com/riskibarqy/ga-meta/internal/domain/crawlerstate"
	"github.com/riskibarqy/ga-meta/internal/domain/decklist"
	"github.com/riskibarqy/ga-meta/internal/domain/event"
	"github.com/riskibarqy/ga-meta/internal/domain/standing"
	championmock "github.com/riskibarqy/ga-meta/internal/mocks/domain/champion"
	crawlerstatemock "github.com/riskibarqy/ga-meta/internal/mocks/domain/crawlerstate"
	decklistmock "github.com/riskibarqy/ga-meta/internal/mocks/domain/decklist"
	eventmock "github.com/riskibarqy/ga-meta/internal/mocks/domain/event"
	standingmock "github.com/riskibarqy/ga-meta/internal/mocks/domain/standing"
	"github.com/stretchr/testify/mock"
)

func TestEventService_ListEvents_BuildsFilterUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), "trace_id", "trace-123")
	eventRepo := eventmock.NewRepository(t)
	service := NewEventService(eventRepo, standingmock.NewRepository(t))
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	limited := event.FormatLimited
	days := 7
	eventRepo.
		On("List", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), mock.MatchedBy(func(f event.Filter) bool {
			return f.CompleteOnly &&
				!f.RankedOnly &&
				f.Format != nil && *f.Format == event.FormatLimited &&
				f.Since != nil && f.Since.Equal(now.AddDate(0, 0, -7)) &&
				f.MinPlayers == 32 &&
				f.Limit == maxListLimit
		})).
		Return([]event.Event{{ID: 9, Name: "Limited Clash"}}, nil).
		Once()

	got, err := service.ListEvents(ctx, EventQuery{Format: &limited, Days: &days, MinPlayers: 32, Limit: 9000})
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(got) != 1 || got[0].ID != 9 {
		t.Fatalf("unexpected events: %+v", got)
	}
}

func TestEventService_ListEvents_RejectsNegativeLimit(t *testing.T) {
	t.Parallel()

	service := NewEventService(eventmock.NewRepository(t), standingmock.NewRepository(t))
	if _, err := service.ListEvents(context.Background(), EventQuery{Limit: -1}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEventService_ListStandings_EventNotFoundUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	eventRepo := eventmock.NewRepository(t)
	standingRepo := standingmock.NewRepository(t)
	service := NewEventService(eventRepo, standingRepo)

	eventRepo.
		On("GetByID", mock.Anything, int64(404)).
		Return(event.Event{}, false, nil).
		Once()

	_, err := service.ListStandings(ctx, 404)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEventService_ListStandings_SuccessUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	eventRepo := eventmock.NewRepository(t)
	standingRepo := standingmock.NewRepository(t)
	service := NewEventService(eventRepo, standingRepo)

	eventRepo.
		On("GetByID", mock.Anything, int64(7)).
		Return(event.Event{ID: 7, Name: "Regional"}, true, nil).
		Once()
	standingRepo.
		On("ListByEvent", mock.Anything, int64(7)).
		Return([]standing.Standing{{EventID: 7, PlayerID: "p1", Rank: 1}, {EventID: 7, PlayerID: "p2", Rank: 2}}, nil).
		Once()

	got, err := service.ListStandings(ctx, 7)
	if err != nil {
		t.Fatalf("list standings: %v", err)
	}
	if len(got) != 2 || got[0].Rank != 1 {
		t.Fatalf("unexpected standings: %+v", got)
	}
}

func TestDecklistService_ListDecklists_RestrictsToSelectedEventsUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	eventRepo := eventmock.NewRepository(t)
	decklistRepo := decklistmock.NewRepository(t)
	service := NewDecklistService(eventRepo, decklistRepo)

	standard := event.FormatStandard
	eventRepo.
		On("List", mock.Anything, mock.MatchedBy(func(f event.Filter) bool {
			return f.CompleteOnly && f.RankedOnly && f.Format != nil && *f.Format == event.FormatStandard && f.Since == nil
		})).
		Return([]event.Event{{ID: 3}, {ID: 5}}, nil).
		Once()
	decklistRepo.
		On("List", mock.Anything, mock.MatchedBy(func(f decklist.Filter) bool {
			return len(f.EventIDs) == 2 && f.EventIDs[0] == 3 && f.EventIDs[1] == 5 &&
				f.Champion == "lorraine-crux-knight" &&
				f.Limit == defaultDecklistListLimit
		})).
		Return([]decklist.Decklist{{EventID: 3, PlayerID: "p1"}}, nil).
		Once()

	got, err := service.ListDecklists(ctx, DecklistQuery{Champion: "Lorraine, Crux Knight", Format: &standard})
	if err != nil {
		t.Fatalf("list decklists: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 decklist, got=%d", len(got))
	}
}

func TestDecklistService_ListDecklists_EmptySelectionMatchesNothingUsingMockery(t *testing.T) {
	t.Parallel()

	eventRepo := eventmock.NewRepository(t)
	decklistRepo := decklistmock.NewRepository(t)
	service := NewDecklistService(eventRepo, decklistRepo)

	days := 30
	eventRepo.
		On("List", mock.Anything, mock.Anything).
		Return([]event.Event{}, nil).
		Once()
	decklistRepo.
		On("List", mock.Anything, mock.MatchedBy(func(f decklist.Filter) bool {
			return f.EventIDs != nil && len(f.EventIDs) == 0
		})).
		Return([]decklist.Decklist{}, nil).
		Once()

	got, err := service.ListDecklists(context.Background(), DecklistQuery{Days: &days})
	if err != nil {
		t.Fatalf("list decklists: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no decklists, got=%d", len(got))
	}
}

func TestDecklistService_ListPlayerDecklists_RequiresPlayer(t *testing.T) {
	t.Parallel()

	service := NewDecklistService(eventmock.NewRepository(t), decklistmock.NewRepository(t))
	if _, err := service.ListPlayerDecklists(context.Background(), "  ", nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestChampionService_GetChampion_NormalisesSlugUsingMockery(t *testing.T) {
	t.Parallel()

	championRepo := championmock.NewRepository(t)
	service := NewChampionService(championRepo)

	championRepo.
		On("GetBySlug", mock.Anything, "silvie-loved-by-all").
		Return(champion.Champion{Slug: "silvie-loved-by-all", Name: "Silvie, Loved by All"}, true, nil).
		Once()
	championRepo.
		On("GetBySlug", mock.Anything, "nobody").
		Return(champion.Champion{}, false, nil).
		Once()

	got, err := service.GetChampion(context.Background(), "Silvie, Loved by All")
	if err != nil {
		t.Fatalf("get champion: %v", err)
	}
	if got.Name != "Silvie, Loved by All" {
		t.Fatalf("unexpected champion: %+v", got)
	}

	if _, err := service.GetChampion(context.Background(), "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCrawlerStateService_Latest_NoCheckpointUsingMockery(t *testing.T) {
	t.Parallel()

	stateRepo := crawlerstatemock.NewRepository(t)
	service := NewCrawlerStateService(stateRepo)

	stateRepo.
		On("Latest", mock.Anything).
		Return(crawlerstate.State{}, false, nil).
		Once()

	if _, err := service.Latest(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
