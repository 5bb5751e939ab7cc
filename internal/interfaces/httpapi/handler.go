package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/ga-meta/internal/usecase"
)

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListEvents")
	defer span.End()

	params, err := h.parseListParams(ctx, r.URL.Query())
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	q := usecase.EventQuery{Format: params.format(), Days: params.Days, Limit: params.limit()}
	if params.MinPlayers != nil {
		q.MinPlayers = *params.MinPlayers
	}
	events, err := h.eventService.ListEvents(ctx, q)
	if err != nil {
		h.logger.ErrorContext(ctx, "list events failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeList(ctx, w, mapSlice(events, eventToDTO))
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetEvent")
	defer span.End()

	eventID, err := parseEventID(r.PathValue("eventID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.eventService.GetEvent(ctx, eventID)
	if err != nil {
		h.logger.WarnContext(ctx, "get event failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, eventToDTO(item))
}

func (h *Handler) ListEventStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListEventStandings")
	defer span.End()

	eventID, err := parseEventID(r.PathValue("eventID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.eventService.ListStandings(ctx, eventID)
	if err != nil {
		h.logger.WarnContext(ctx, "list standings failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeList(ctx, w, mapSlice(items, standingToDTO))
}

func (h *Handler) ListDecklists(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListDecklists")
	defer span.End()

	params, err := h.parseListParams(ctx, r.URL.Query())
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.decklistService.ListDecklists(ctx, usecase.DecklistQuery{
		Champion: params.Champion,
		Format:   params.format(),
		Days:     params.Days,
		Limit:    params.limit(),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "list decklists failed", "champion", params.Champion, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeList(ctx, w, mapSlice(items, decklistToDTO))
}

func (h *Handler) ListPlayerDecklists(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayerDecklists")
	defer span.End()

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	params, err := h.parseListParams(ctx, r.URL.Query())
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.decklistService.ListPlayerDecklists(ctx, playerID, params.EventID)
	if err != nil {
		h.logger.WarnContext(ctx, "list player decklists failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeList(ctx, w, mapSlice(items, decklistToDTO))
}

func (h *Handler) ListChampions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListChampions")
	defer span.End()

	items, err := h.championService.ListChampions(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list champions failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeList(ctx, w, mapSlice(items, championToDTO))
}

func (h *Handler) GetChampion(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetChampion")
	defer span.End()

	slug := r.PathValue("slug")
	item, err := h.championService.GetChampion(ctx, slug)
	if err != nil {
		h.logger.WarnContext(ctx, "get champion failed", "slug", slug, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, championToDTO(item))
}

func (h *Handler) GetMetaBreakdown(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMetaBreakdown")
	defer span.End()

	params, err := h.parseListParams(ctx, r.URL.Query())
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rows, err := h.metaService.Breakdown(ctx, usecase.MetaQuery{Format: params.format(), Days: params.Days})
	if err != nil {
		h.logger.ErrorContext(ctx, "meta breakdown failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeList(ctx, w, mapSlice(rows, breakdownToDTO))
}

func (h *Handler) GetChampionPerformance(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetChampionPerformance")
	defer span.End()

	params, err := h.parseListParams(ctx, r.URL.Query())
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rows, err := h.metaService.ChampionPerformance(ctx, usecase.MetaQuery{Format: params.format(), Days: params.Days})
	if err != nil {
		h.logger.ErrorContext(ctx, "champion performance failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeList(ctx, w, mapSlice(rows, championPerformanceToDTO))
}

func (h *Handler) GetCardPerformance(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCardPerformance")
	defer span.End()

	params, err := h.parseListParams(ctx, r.URL.Query())
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rows, err := h.metaService.CardPerformance(ctx, usecase.MetaQuery{
		Format: params.format(),
		Days:   params.Days,
		Limit:  params.limit(),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "card performance failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeList(ctx, w, mapSlice(rows, cardPerformanceToDTO))
}

func (h *Handler) GetCrawlerState(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCrawlerState")
	defer span.End()

	state, err := h.crawlerStateService.Latest(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, crawlerStateToDTO(state))
}
