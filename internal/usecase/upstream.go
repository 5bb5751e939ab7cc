package usecase

import (
	"context"

	"github.com/riskibarqy/ga-meta/internal/domain/card"
	"github.com/riskibarqy/ga-meta/internal/domain/decklist"
	"github.com/riskibarqy/ga-meta/internal/domain/event"
	"github.com/riskibarqy/ga-meta/internal/domain/standing"
	"github.com/riskibarqy/ga-meta/internal/platform/fetch"
)

// EventSource is the omnidex surface the crawler probes.
type EventSource interface {
	FetchEvent(ctx context.Context, eventID int64) fetch.Outcome[event.Event]
	FetchStandings(ctx context.Context, eventID int64) fetch.Outcome[[]standing.Standing]
	FetchStatistics(ctx context.Context, eventID int64) fetch.Outcome[event.Statistics]
}

type DecklistSource interface {
	FetchDecklist(ctx context.Context, eventID int64, playerID string) fetch.Outcome[decklist.Decklist]
}

type CardSource interface {
	FetchCard(ctx context.Context, slug string) fetch.Outcome[card.Card]
}
