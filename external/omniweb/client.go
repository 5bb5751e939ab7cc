package omniweb

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/riskibarqy/ga-meta/internal/domain/decklist"
	"github.com/riskibarqy/ga-meta/internal/platform/fetch"
	"github.com/riskibarqy/ga-meta/internal/platform/logging"
)

const defaultBaseURL = "https://omni.gatcg.com/api"

type ClientConfig struct {
	Requester *fetch.Requester
	BaseURL   string
	Logger    *logging.Logger
}

// Client reads registered decklists from the omni web API.
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
	requester = requester.ForUpstream("omniweb")
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		requester: requester,
		baseURL:   baseURL,
		logger:    logger.Named("omniweb"),
		now:       time.Now,
	}
}

func (c *Client) FetchDecklist(ctx context.Context, eventID int64, playerID string) fetch.Outcome[decklist.Decklist] {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return fetch.Failed[decklist.Decklist](fetch.ErrorFatal, fmt.Errorf("player id is required"))
	}

	endpoint := fmt.Sprintf("%s/events/%d/decklist?player=%s", c.baseURL, eventID, url.QueryEscape(playerID))
	out := fetch.GetJSON[decklistDTO](ctx, c.requester, endpoint)
	if out.Status == fetch.StatusError {
		c.logger.DebugContext(ctx, "fetch decklist failed", "event_id", eventID, "player_id", playerID, "kind", out.Kind, "error", out.Err)
	}
	return fetch.Map(out, func(dto decklistDTO) decklist.Decklist {
		return c.toDecklist(eventID, dto)
	})
}

func (c *Client) toDecklist(eventID int64, dto decklistDTO) decklist.Decklist {
	item := decklist.Decklist{
		EventID:    eventID,
		PlayerID:   strings.TrimSpace(dto.PlayerID),
		PlayerName: strings.TrimSpace(dto.PlayerName),
		Champion:   dto.Champion,
		Rank:       dto.Rank,
		MainDeck:   toCards(dto.MainDeck),
		Sideboard:  toCards(dto.Sideboard),
		UpdatedAt:  c.now().UTC(),
	}
	item.Finalize()
	return item
}

func toCards(rows []deckCardDTO) []decklist.Card {
	out := make([]decklist.Card, 0, len(rows))
	for _, row := range rows {
		line := decklist.Card{
			Slug:     row.Slug,
			Name:     strings.TrimSpace(row.Name),
			Quantity: row.Quantity,
			Cost:     row.Cost,
		}
		if row.Type != nil {
			line.Type = strings.TrimSpace(*row.Type)
		}
		if row.Element != nil {
			line.Element = strings.TrimSpace(*row.Element)
		}
		out = append(out, line)
	}
	return out
}
