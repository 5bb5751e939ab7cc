package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/ga-meta/internal/domain/event"
	"github.com/riskibarqy/ga-meta/internal/domain/standing"
)

const (
	defaultEventListLimit = 100
	maxListLimit          = 500
)

type EventQuery struct {
	Format     *event.Format
	Days       *int
	MinPlayers int
	Limit      int
}

type EventService struct {
	eventRepo    event.Repository
	standingRepo standing.Repository
	now          func() time.Time
}

func NewEventService(eventRepo event.Repository, standingRepo standing.Repository) *EventService {
	return &EventService{
		eventRepo:    eventRepo,
		standingRepo: standingRepo,
		now:          time.Now,
	}
}

// ListEvents returns complete events, newest first.
func (s *EventService) ListEvents(ctx context.Context, q EventQuery) ([]event.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventService.ListEvents")
	defer span.End()

	if q.Days != nil && *q.Days < 1 {
		return nil, fmt.Errorf("%w: days must be >= 1", ErrInvalidInput)
	}
	if q.MinPlayers < 0 {
		return nil, fmt.Errorf("%w: min players must be >= 0", ErrInvalidInput)
	}
	limit, err := normalizeLimit(q.Limit, defaultEventListLimit)
	if err != nil {
		return nil, err
	}

	filter := event.Filter{
		Format:       q.Format,
		MinPlayers:   q.MinPlayers,
		CompleteOnly: true,
		Limit:        limit,
	}
	if q.Days != nil {
		since := s.now().UTC().AddDate(0, 0, -*q.Days)
		filter.Since = &since
	}

	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *EventService) GetEvent(ctx context.Context, eventID int64) (event.Event, error) {
	if eventID < 1 {
		return event.Event{}, fmt.Errorf("%w: event id must be >= 1", ErrInvalidInput)
	}

	item, exists, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return event.Event{}, fmt.Errorf("get event: %w", err)
	}
	if !exists {
		return event.Event{}, fmt.Errorf("%w: event=%d", ErrNotFound, eventID)
	}
	return item, nil
}

// ListStandings returns an event's final standings, best rank first.
func (s *EventService) ListStandings(ctx context.Context, eventID int64) ([]standing.Standing, error) {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}

	items, err := s.standingRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list standings by event: %w", err)
	}
	return items, nil
}

func normalizeLimit(limit, fallback int) (int, error) {
	switch {
	case limit < 0:
		return 0, fmt.Errorf("%w: limit must be >= 0", ErrInvalidInput)
	case limit == 0:
		return fallback, nil
	case limit > maxListLimit:
		return maxListLimit, nil
	default:
		return limit, nil
	}
}
