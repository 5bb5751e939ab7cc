package gatcg

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/riskibarqy/ga-meta/internal/domain/card"
	"github.com/riskibarqy/ga-meta/internal/platform/fetch"
	"github.com/riskibarqy/ga-meta/internal/platform/logging"
	"github.com/riskibarqy/ga-meta/internal/platform/resilience"
)

const defaultBaseURL = "https://api.gatcg.com"

type ClientConfig struct {
	Requester *fetch.Requester
	BaseURL   string
	Logger    *logging.Logger
}

// Client reads card catalog entries from api.gatcg.com.
type Client struct {
	requester *fetch.Requester
	baseURL   string
	logger    *logging.Logger
	flight    resilience.SingleFlight
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
	requester = requester.ForUpstream("gatcg")
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		requester: requester,
		baseURL:   baseURL,
		logger:    logger.Named("gatcg"),
		now:       time.Now,
	}
}

// FetchCard looks a card up by slug. Concurrent lookups of the same slug share
// one upstream request.
func (c *Client) FetchCard(ctx context.Context, slug string) fetch.Outcome[card.Card] {
	slug = card.NormalizeSlug(slug)
	if slug == "" {
		return fetch.Failed[card.Card](fetch.ErrorFatal, fmt.Errorf("card slug is required"))
	}

	v, _, _ := c.flight.Do(slug, func() (any, error) {
		out := fetch.GetJSON[cardDTO](ctx, c.requester, fmt.Sprintf("%s/cards/%s", c.baseURL, url.PathEscape(slug)))
		return fetch.Map(out, func(dto cardDTO) card.Card { return c.toCard(slug, dto) }), nil
	})
	out, _ := v.(fetch.Outcome[card.Card])
	if out.Status == fetch.StatusError {
		c.logger.DebugContext(ctx, "fetch card failed", "slug", slug, "kind", out.Kind, "error", out.Err)
	}
	return out
}

func (c *Client) toCard(requested string, dto cardDTO) card.Card {
	slug := card.NormalizeSlug(dto.Slug)
	if slug == "" {
		slug = requested
	}
	return card.Card{
		Slug:            slug,
		Name:            strings.TrimSpace(dto.Name),
		Type:            deref(dto.Type),
		Element:         deref(dto.Element),
		Classes:         trimAll(dto.Classes),
		Subtypes:        trimAll(dto.Subtypes),
		Cost:            dto.Cost,
		ReserveCost:     dto.ReserveCost,
		Power:           dto.Power,
		LifeModifier:    dto.LifeModifier,
		EffectText:      deref(dto.EffectText),
		FlavorText:      deref(dto.FlavorText),
		ImageURL:        deref(dto.ImageURL),
		SetName:         deref(dto.Set),
		CollectorNumber: deref(dto.CollectorNumber),
		Rarity:          deref(dto.Rarity),
		Artist:          deref(dto.Artist),
		UpdatedAt:       c.now().UTC(),
	}
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
