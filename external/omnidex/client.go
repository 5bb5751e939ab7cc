package omnidex

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/ga-meta/internal/domain/event"
	"github.com/riskibarqy/ga-meta/internal/domain/standing"
	"github.com/riskibarqy/ga-meta/internal/platform/fetch"
	"github.com/riskibarqy/ga-meta/internal/platform/logging"
)

const defaultBaseURL = "https://api.gatcg.com/omnidex"

type ClientConfig struct {
	Requester *fetch.Requester
	BaseURL   string
	Logger    *logging.Logger
}

// Client reads events, standings and statistics from the omnidex API.
type Client struct {
	requester *fetch.Requester
	baseURL   string
	logger    *logging.Logger
	now       func() time.Time
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	requester := cfg.Requester
	if requester == nil {
		requester = fetch.NewRequester(fetch.Config{Logger: logger})
	}
	requester = requester.ForUpstream("omnidex")
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		requester: requester,
		baseURL:   baseURL,
		logger:    logger.Named("omnidex"),
		now:       time.Now,
	}
}

func (c *Client) FetchEvent(ctx context.Context, eventID int64) fetch.Outcome[event.Event] {
	out := fetch.GetJSON[eventDTO](ctx, c.requester, fmt.Sprintf("%s/events/%d", c.baseURL, eventID))
	if out.Status == fetch.StatusError {
		c.logger.DebugContext(ctx, "fetch event failed", "event_id", eventID, "kind", out.Kind, "error", out.Err)
	}
	return fetch.Map(out, c.toEvent)
}

// FetchStandings reports a missing standings page as NotFound; callers treat
// NotFound and Empty alike.
func (c *Client) FetchStandings(ctx context.Context, eventID int64) fetch.Outcome[[]standing.Standing] {
	out := fetch.GetJSON[[]standingDTO](ctx, c.requester, fmt.Sprintf("%s/events/%d/standings", c.baseURL, eventID))
	return fetch.Map(out, func(rows []standingDTO) []standing.Standing {
		items := make([]standing.Standing, 0, len(rows))
		for _, row := range rows {
			items = append(items, toStanding(eventID, row))
		}
		return items
	})
}

func (c *Client) FetchStatistics(ctx context.Context, eventID int64) fetch.Outcome[event.Statistics] {
	out := fetch.GetJSON[statisticsDTO](ctx, c.requester, fmt.Sprintf("%s/events/%d/statistics", c.baseURL, eventID))
	return fetch.Map(out, func(dto statisticsDTO) event.Statistics {
		return event.Statistics{TotalPlayers: dto.TotalPlayers, HasDecklists: dto.HasDecklists}
	})
}

func (c *Client) toEvent(dto eventDTO) event.Event {
	now := c.now().UTC()
	return event.Event{
		ID:          dto.ID,
		Name:        strings.TrimSpace(dto.Name),
		Format:      event.ParseFormat(dto.Format),
		Status:      strings.TrimSpace(dto.Status),
		Ranked:      dto.Ranked,
		PlayerCount: dto.PlayerCount,
		StartDate:   parseTimestamp(dto.StartDate),
		EndDate:     parseTimestamp(dto.EndDate),
		Location:    deref(dto.Location),
		Organizer:   deref(dto.Organizer),
		Rounds:      derefInt(dto.Rounds),
		Tier:        deref(dto.Tier),
		UpdatedAt:   now,
		CrawledAt:   now,
	}
}

func toStanding(eventID int64, dto standingDTO) standing.Standing {
	item := standing.Standing{
		EventID:     eventID,
		PlayerID:    strings.TrimSpace(dto.PlayerID),
		PlayerName:  strings.TrimSpace(dto.PlayerName),
		Rank:        dto.Rank,
		Champion:    dto.Champion,
		Wins:        dto.Wins,
		Losses:      dto.Losses,
		Draws:       dto.Draws,
		HasDecklist: dto.HasDecklist != nil && *dto.HasDecklist,
	}
	item.Derive()
	return item
}

// parseTimestamp returns nil for absent or unparseable dates.
func parseTimestamp(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if parsed, err := time.Parse(layout, value); err == nil {
			utc := parsed.UTC()
			return &utc
		}
	}
	return nil
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
