package httpapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/ga-meta/internal/domain/event"
	"github.com/riskibarqy/ga-meta/internal/platform/logging"
	"github.com/riskibarqy/ga-meta/internal/usecase"
)

type Handler struct {
	eventService        *usecase.EventService
	decklistService     *usecase.DecklistService
	championService     *usecase.ChampionService
	metaService         *usecase.MetaAnalysisService
	crawlerStateService *usecase.CrawlerStateService
	jobService          *usecase.JobService
	logger              *logging.Logger
	validator           *validator.Validate
}

func NewHandler(
	eventService *usecase.EventService,
	decklistService *usecase.DecklistService,
	championService *usecase.ChampionService,
	metaService *usecase.MetaAnalysisService,
	crawlerStateService *usecase.CrawlerStateService,
	jobService *usecase.JobService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		eventService:        eventService,
		decklistService:     decklistService,
		championService:     championService,
		metaService:         metaService,
		crawlerStateService: crawlerStateService,
		jobService:          jobService,
		logger:              logger.Named("httpapi"),
		validator:           validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// listParams holds the query parameters shared by the list and meta routes.
type listParams struct {
	Format     string `validate:"omitempty,oneof=STANDARD LIMITED SEALED DRAFT"`
	Days       *int   `validate:"omitempty,min=1,max=3650"`
	Limit      *int   `validate:"omitempty,min=1,max=500"`
	MinPlayers *int   `validate:"omitempty,min=0"`
	Champion   string `validate:"omitempty,max=200"`
	EventID    *int64 `validate:"omitempty,min=1"`
}

func (h *Handler) parseListParams(ctx context.Context, query url.Values) (listParams, error) {
	var (
		params listParams
		err    error
	)
	params.Format = strings.ToUpper(strings.TrimSpace(query.Get("format")))
	params.Champion = strings.TrimSpace(query.Get("champion"))
	if params.Days, err = optionalInt(query, "days"); err != nil {
		return listParams{}, err
	}
	if params.Limit, err = optionalInt(query, "limit"); err != nil {
		return listParams{}, err
	}
	if params.MinPlayers, err = optionalInt(query, "minPlayers"); err != nil {
		return listParams{}, err
	}
	if params.EventID, err = optionalInt64(query, "event"); err != nil {
		return listParams{}, err
	}

	if err := h.validateRequest(ctx, params); err != nil {
		return listParams{}, err
	}
	return params, nil
}

func (p listParams) format() *event.Format {
	if p.Format == "" {
		return nil
	}
	f := event.ParseFormat(p.Format)
	return &f
}

func (p listParams) limit() int {
	if p.Limit == nil {
		return 0
	}
	return *p.Limit
}

func optionalInt(query url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(query.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, key)
	}
	return &v, nil
}

func optionalInt64(query url.Values, key string) (*int64, error) {
	raw := strings.TrimSpace(query.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, key)
	}
	return &v, nil
}

func parseEventID(raw string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: event id must be a positive integer", usecase.ErrInvalidInput)
	}
	return v, nil
}
