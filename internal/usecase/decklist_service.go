package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/ga-meta/internal/domain/card"
	"github.com/riskibarqy/ga-meta/internal/domain/decklist"
	"github.com/riskibarqy/ga-meta/internal/domain/event"
)

const defaultDecklistListLimit = 50

type DecklistQuery struct {
	Champion string
	Format   *event.Format
	Days     *int
	Limit    int
}

type DecklistService struct {
	eventRepo    event.Repository
	decklistRepo decklist.Repository
	now          func() time.Time
}

func NewDecklistService(eventRepo event.Repository, decklistRepo decklist.Repository) *DecklistService {
	return &DecklistService{
		eventRepo:    eventRepo,
		decklistRepo: decklistRepo,
		now:          time.Now,
	}
}

// ListDecklists returns decklists ordered by placement. Format and Days
// restrict the result to decklists from matching complete, ranked events.
func (s *DecklistService) ListDecklists(ctx context.Context, q DecklistQuery) ([]decklist.Decklist, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DecklistService.ListDecklists")
	defer span.End()

	if q.Days != nil && *q.Days < 1 {
		return nil, fmt.Errorf("%w: days must be >= 1", ErrInvalidInput)
	}
	limit, err := normalizeLimit(q.Limit, defaultDecklistListLimit)
	if err != nil {
		return nil, err
	}

	filter := decklist.Filter{
		Champion: card.NormalizeSlug(q.Champion),
		Limit:    limit,
	}
	if q.Format != nil || q.Days != nil {
		events, err := s.eventRepo.List(ctx, eventSelection(q.Format, q.Days, s.now()))
		if err != nil {
			return nil, fmt.Errorf("select events for decklists: %w", err)
		}
		filter.EventIDs = make([]int64, 0, len(events))
		for _, e := range events {
			filter.EventIDs = append(filter.EventIDs, e.ID)
		}
	}

	items, err := s.decklistRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list decklists: %w", err)
	}
	return items, nil
}

// ListPlayerDecklists returns a player's decklists, newest event first.
func (s *DecklistService) ListPlayerDecklists(ctx context.Context, playerID string, eventID *int64) ([]decklist.Decklist, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	if eventID != nil && *eventID < 1 {
		return nil, fmt.Errorf("%w: event id must be >= 1", ErrInvalidInput)
	}

	items, err := s.decklistRepo.ListByPlayer(ctx, playerID, eventID)
	if err != nil {
		return nil, fmt.Errorf("list decklists by player: %w", err)
	}
	return items, nil
}
