package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/events", handler.ListEvents)
	mux.HandleFunc("GET /v1/events/{eventID}", handler.GetEvent)
	mux.HandleFunc("GET /v1/events/{eventID}/standings", handler.ListEventStandings)
	mux.HandleFunc("GET /v1/decklists", handler.ListDecklists)
	mux.HandleFunc("GET /v1/decklists/{playerID}", handler.ListPlayerDecklists)
	mux.HandleFunc("GET /v1/champions", handler.ListChampions)
	mux.HandleFunc("GET /v1/champions/{slug}", handler.GetChampion)
	mux.HandleFunc("GET /v1/meta/breakdown", handler.GetMetaBreakdown)
	mux.HandleFunc("GET /v1/meta/champion-performance", handler.GetChampionPerformance)
	mux.HandleFunc("GET /v1/cards/performance", handler.GetCardPerformance)
	mux.HandleFunc("GET /v1/crawler/state", handler.GetCrawlerState)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/crawl", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunCrawlJob)))
	mux.Handle("POST /v1/internal/jobs/card-sync", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunCardSyncJob)))
	mux.Handle("POST /v1/internal/jobs/meta", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunMetaJob)))
	mux.Handle("GET /v1/internal/jobs/runs", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ListJobRuns)))
}
