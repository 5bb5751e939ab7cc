package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/ga-meta/external/gatcg"
	"github.com/riskibarqy/ga-meta/external/omnidex"
	"github.com/riskibarqy/ga-meta/external/omniweb"
	"github.com/riskibarqy/ga-meta/internal/config"
	"github.com/riskibarqy/ga-meta/internal/domain/card"
	"github.com/riskibarqy/ga-meta/internal/domain/champion"
	"github.com/riskibarqy/ga-meta/internal/domain/crawlerstate"
	"github.com/riskibarqy/ga-meta/internal/domain/decklist"
	"github.com/riskibarqy/ga-meta/internal/domain/event"
	"github.com/riskibarqy/ga-meta/internal/domain/jobrun"
	"github.com/riskibarqy/ga-meta/internal/domain/standing"
	cacherepo "github.com/riskibarqy/ga-meta/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/ga-meta/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/ga-meta/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/ga-meta/internal/interfaces/httpapi"
	"github.com/riskibarqy/ga-meta/internal/interfaces/scheduler"
	basecache "github.com/riskibarqy/ga-meta/internal/platform/cache"
	"github.com/riskibarqy/ga-meta/internal/platform/fetch"
	idgen "github.com/riskibarqy/ga-meta/internal/platform/id"
	"github.com/riskibarqy/ga-meta/internal/platform/logging"
	"github.com/riskibarqy/ga-meta/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type repositories struct {
	events    event.Repository
	standings standing.Repository
	decklists decklist.Repository
	states    crawlerstate.Repository
	cards     card.Repository
	champions champion.Repository
	runs      jobrun.Repository
}

// Container holds the wired services shared by the api and crawler binaries.
type Container struct {
	Config config.Config
	Logger *logging.Logger

	Events       *usecase.EventService
	Decklists    *usecase.DecklistService
	Champions    *usecase.ChampionService
	CrawlerState *usecase.CrawlerStateService
	Crawler      *usecase.EventCrawler
	CardSync     *usecase.CardSyncService
	Meta         *usecase.MetaAnalysisService
	Jobs         *usecase.JobService

	responseCache *basecache.Store
	db            *sqlx.DB
}

func Build(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Container, error) {
	if logger == nil {
		logger = logging.Default()
	}

	c := &Container{Config: cfg, Logger: logger}

	repos, err := c.buildRepositories(ctx)
	if err != nil {
		return nil, err
	}

	var purger storePurger
	if cfg.CacheEnabled {
		dataCache := basecache.NewStore(cfg.CacheTTL)
		c.responseCache = basecache.NewStore(cfg.CacheTTL)
		purger = storePurger{dataCache, c.responseCache}

		repos.events = cacherepo.NewEventRepository(repos.events, dataCache)
		repos.cards = cacherepo.NewCardRepository(repos.cards, dataCache)
		repos.champions = cacherepo.NewChampionRepository(repos.champions, dataCache)
	}

	requester := fetch.NewRequester(fetch.Config{
		HTTPClient:     &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		Delay:          cfg.Upstream.RequestDelay,
		Timeout:        cfg.Upstream.RequestTimeout,
		MaxRetries:     cfg.Upstream.MaxRetries,
		UserAgent:      cfg.ServiceName + "/" + cfg.ServiceVersion,
		Logger:         logger,
		CircuitBreaker: cfg.Upstream.Circuit,
	})
	omnidexClient := omnidex.NewClient(omnidex.ClientConfig{Requester: requester, BaseURL: cfg.Upstream.OmnidexBaseURL, Logger: logger})
	omniwebClient := omniweb.NewClient(omniweb.ClientConfig{Requester: requester, BaseURL: cfg.Upstream.OmniwebBaseURL, Logger: logger})
	gatcgClient := gatcg.NewClient(gatcg.ClientConfig{Requester: requester, BaseURL: cfg.Upstream.GATCGBaseURL, Logger: logger})

	c.Events = usecase.NewEventService(repos.events, repos.standings)
	c.Decklists = usecase.NewDecklistService(repos.events, repos.decklists)
	c.Champions = usecase.NewChampionService(repos.champions)
	c.CrawlerState = usecase.NewCrawlerStateService(repos.states)
	c.Crawler = usecase.NewEventCrawler(usecase.EventCrawlerDeps{
		Events:       omnidexClient,
		Decklists:    omniwebClient,
		EventRepo:    repos.events,
		StandingRepo: repos.standings,
		DecklistRepo: repos.decklists,
		StateRepo:    repos.states,
	}, usecase.CrawlerConfig{
		MaxConsecutiveMisses: cfg.Crawler.MaxConsecutiveMisses,
		CheckpointEvery:      cfg.Crawler.CheckpointEvery,
		DefaultStartID:       cfg.Crawler.StartID,
		Policy:               usecase.MissPolicy{RequeueTransient: cfg.Crawler.RequeueTransient},
	}, logger)
	c.CardSync = usecase.NewCardSyncService(gatcgClient, repos.standings, repos.decklists, repos.cards, repos.champions, cfg.Jobs.CardSyncWorkers, logger)
	c.Meta = usecase.NewMetaAnalysisService(repos.events, repos.standings, repos.decklists, repos.cards, logger)

	var invalidator usecase.CacheInvalidator
	if len(purger) > 0 {
		invalidator = purger
	}
	c.Jobs = usecase.NewJobService(c.Crawler, c.CardSync, c.Meta, repos.runs, invalidator, idgen.NewPrefixedGenerator("run_"),
		usecase.JobServiceConfig{MetaWindowDays: cfg.Jobs.MetaWindowDays}, logger)

	return c, nil
}

func (c *Container) buildRepositories(ctx context.Context) (repositories, error) {
	switch c.Config.StoreBackend {
	case config.StoreBackendMemory:
		c.Logger.Warn("using in-memory store, data is lost on exit")
		return repositories{
			events:    memory.NewEventRepository(),
			standings: memory.NewStandingRepository(),
			decklists: memory.NewDecklistRepository(),
			states:    memory.NewCrawlerStateRepository(),
			cards:     memory.NewCardRepository(),
			champions: memory.NewChampionRepository(),
			runs:      memory.NewJobRunRepository(),
		}, nil
	case config.StoreBackendPostgres:
		db, err := openDB(ctx, c.Config)
		if err != nil {
			return repositories{}, err
		}
		c.db = db
		return repositories{
			events:    postgres.NewEventRepository(db),
			standings: postgres.NewStandingRepository(db),
			decklists: postgres.NewDecklistRepository(db),
			states:    postgres.NewCrawlerStateRepository(db),
			cards:     postgres.NewCardRepository(db),
			champions: postgres.NewChampionRepository(db),
			runs:      postgres.NewJobRunRepository(db),
		}, nil
	default:
		return repositories{}, fmt.Errorf("unsupported store backend %q", c.Config.StoreBackend)
	}
}

func NewHTTPServer(c *Container) (*http.Server, error) {
	if c.Config.HTTPAddr == "" {
		return nil, errors.New("http server addr cannot be empty")
	}

	handler := httpapi.NewHandler(c.Events, c.Decklists, c.Champions, c.Meta, c.CrawlerState, c.Jobs, c.Logger)
	router := httpapi.NewRouter(
		handler,
		c.Logger,
		c.Config.SwaggerEnabled,
		c.Config.CORSAllowedOrigins,
		c.Config.InternalJobToken,
		c.responseCache,
	)

	return &http.Server{
		Addr:         c.Config.HTTPAddr,
		Handler:      router,
		ReadTimeout:  c.Config.ReadTimeout,
		WriteTimeout: c.Config.WriteTimeout,
	}, nil
}

// NewScheduler returns nil when SCHEDULER_ENABLED=false.
func NewScheduler(c *Container) (*scheduler.Scheduler, error) {
	if !c.Config.Jobs.SchedulerEnabled {
		c.Logger.Info("scheduler disabled", "reason", "SCHEDULER_ENABLED=false")
		return nil, nil
	}

	return scheduler.New(c.Jobs, scheduler.Config{
		CrawlSchedule:    c.Config.Jobs.CrawlSchedule,
		CardSyncSchedule: c.Config.Jobs.CardSyncSchedule,
		MetaSchedule:     c.Config.Jobs.MetaSchedule,
	}, c.Logger)
}

// Close waits for background jobs, then releases the database.
func (c *Container) Close() error {
	c.Jobs.Wait()
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// storePurger drops every cached entry once a job lands new data.
type storePurger []*basecache.Store

func (p storePurger) Purge(ctx context.Context) int {
	total := 0
	for _, store := range p {
		total += store.Purge(ctx)
	}
	return total
}
