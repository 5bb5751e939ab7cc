package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/ga-meta/internal/domain/crawlerstate"
	"github.com/riskibarqy/ga-meta/internal/domain/decklist"
	"github.com/riskibarqy/ga-meta/internal/domain/event"
	"github.com/riskibarqy/ga-meta/internal/domain/standing"
	"github.com/riskibarqy/ga-meta/internal/platform/fetch"
	"github.com/riskibarqy/ga-meta/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const finalCheckpointTimeout = 10 * time.Second

type CrawlerConfig struct {
	// MaxConsecutiveMisses halts the loop once this many ids in a row miss.
	MaxConsecutiveMisses int
	CheckpointEvery      int
	// DefaultStartID is where an incremental crawl begins when no checkpoint exists.
	DefaultStartID int64
	Policy         MissPolicy
}

type EventCrawlerDeps struct {
	Events       EventSource
	Decklists    DecklistSource
	EventRepo    event.Repository
	StandingRepo standing.Repository
	DecklistRepo decklist.Repository
	StateRepo    crawlerstate.Repository
}

type CrawlResult struct {
	CrawlType      crawlerstate.CrawlType `json:"crawl_type"`
	StartID        int64                  `json:"start_id"`
	LastEventID    int64                  `json:"last_event_id"`
	EventsFound    int                    `json:"events_found"`
	Probed         int                    `json:"probed"`
	Ingested       int                    `json:"ingested"`
	Skipped        int                    `json:"skipped"`
	StandingsSaved int                    `json:"standings_saved"`
	DecklistsSaved int                    `json:"decklists_saved"`
	Requeued       int                    `json:"requeued"`
	Recovered      int                    `json:"recovered"`
	Checkpoints    int                    `json:"checkpoints"`
	Halted         bool                   `json:"halted"`
}

// EventCrawler discovers events by probing omnidex ids in increasing order.
// Omnidex has no listing endpoint, so the loop stops only after a run of
// consecutive misses.
type EventCrawler struct {
	events       EventSource
	decklists    DecklistSource
	eventRepo    event.Repository
	standingRepo standing.Repository
	decklistRepo decklist.Repository
	stateRepo    crawlerstate.Repository
	cfg          CrawlerConfig
	logger       *logging.Logger
	now          func() time.Time
}

func NewEventCrawler(deps EventCrawlerDeps, cfg CrawlerConfig, logger *logging.Logger) *EventCrawler {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.MaxConsecutiveMisses < 1 {
		cfg.MaxConsecutiveMisses = 10
	}
	if cfg.CheckpointEvery < 1 {
		cfg.CheckpointEvery = 10
	}
	if cfg.DefaultStartID < 1 {
		cfg.DefaultStartID = 1
	}

	return &EventCrawler{
		events:       deps.Events,
		decklists:    deps.Decklists,
		eventRepo:    deps.EventRepo,
		standingRepo: deps.StandingRepo,
		decklistRepo: deps.DecklistRepo,
		stateRepo:    deps.StateRepo,
		cfg:          cfg,
		logger:       logger.Named("crawler"),
		now:          time.Now,
	}
}

// CrawlIncremental resumes after the most recent checkpoint.
func (c *EventCrawler) CrawlIncremental(ctx context.Context) (CrawlResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventCrawler.CrawlIncremental")
	defer span.End()

	startID := c.cfg.DefaultStartID
	latest, ok, err := c.stateRepo.Latest(ctx)
	if err != nil {
		return CrawlResult{}, fmt.Errorf("load latest checkpoint: %w", err)
	}
	if ok {
		startID = latest.ResumeID()
		c.logger.InfoContext(ctx, "resuming crawl from checkpoint",
			"last_event_id", latest.LastEventID,
			"last_crawl", latest.LastCrawl,
			"start_id", startID,
		)
	}

	return c.crawl(ctx, startID, crawlerstate.CrawlIncremental)
}

// CrawlHistorical runs the same loop from an explicit id, for backfills.
func (c *EventCrawler) CrawlHistorical(ctx context.Context, startID int64) (CrawlResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventCrawler.CrawlHistorical")
	defer span.End()

	if startID < 1 {
		return CrawlResult{}, fmt.Errorf("%w: start id must be >= 1", ErrInvalidInput)
	}
	return c.crawl(ctx, startID, crawlerstate.CrawlHistorical)
}

func (c *EventCrawler) crawl(ctx context.Context, startID int64, crawlType crawlerstate.CrawlType) (CrawlResult, error) {
	result := CrawlResult{
		CrawlType:   crawlType,
		StartID:     startID,
		LastEventID: startID - 1,
	}
	c.logger.InfoContext(ctx, "crawl started", "crawl_type", crawlType, "start_id", startID, "max_misses", c.cfg.MaxConsecutiveMisses)

	var requeued []int64
	misses := 0
	for id := startID; misses < c.cfg.MaxConsecutiveMisses; id++ {
		if err := ctx.Err(); err != nil {
			c.finalCheckpoint(ctx, &result)
			return result, err
		}

		action, err := c.probe(ctx, id, &result)
		if err != nil {
			c.finalCheckpoint(ctx, &result)
			return result, err
		}

		result.LastEventID = id
		result.Probed++

		switch action {
		case ProbeReset:
			misses = 0
		case ProbeMissRequeue:
			requeued = append(requeued, id)
			misses++
		default:
			misses++
		}

		if result.Probed%c.cfg.CheckpointEvery == 0 {
			if err := c.checkpoint(ctx, &result); err != nil {
				return result, err
			}
		}
	}

	result.Halted = true
	c.logger.InfoContext(ctx, "crawl halted",
		"last_event_id", result.LastEventID,
		"consecutive_misses", misses,
		"events_found", result.EventsFound,
	)

	if err := c.retryRequeued(ctx, requeued, &result); err != nil {
		c.finalCheckpoint(ctx, &result)
		return result, err
	}

	if err := c.checkpoint(ctx, &result); err != nil {
		return result, err
	}

	c.logger.InfoContext(ctx, "crawl finished",
		"crawl_type", crawlType,
		"start_id", startID,
		"last_event_id", result.LastEventID,
		"probed", result.Probed,
		"events_found", result.EventsFound,
		"ingested", result.Ingested,
		"requeued", result.Requeued,
		"recovered", result.Recovered,
	)
	return result, nil
}

// probe fetches one id and ingests it when found. The returned error is
// always a store failure; upstream failures only shape the action.
func (c *EventCrawler) probe(ctx context.Context, id int64, result *CrawlResult) (ProbeAction, error) {
	out := c.events.FetchEvent(ctx, id)
	action := c.cfg.Policy.Action(out.Status, out.Kind)

	switch out.Status {
	case fetch.StatusFound:
		result.EventsFound++
		c.logger.InfoContext(ctx, "event found", "event_id", id, "name", out.Value.Name)
		if err := c.ingest(ctx, out.Value, result); err != nil {
			return action, err
		}
	case fetch.StatusError:
		c.logger.WarnContext(ctx, "event fetch failed", "event_id", id, "kind", out.Kind, "action", action, "error", out.Err)
	default:
		c.logger.DebugContext(ctx, "event miss", "event_id", id, "status", out.Status)
	}

	if action == ProbeMissRequeue {
		result.Requeued++
	}
	return action, nil
}

// retryRequeued gives each transiently failed id one more attempt. It never
// moves the cursor or changes the halting decision.
func (c *EventCrawler) retryRequeued(ctx context.Context, ids []int64, result *CrawlResult) error {
	if len(ids) == 0 {
		return nil
	}
	c.logger.InfoContext(ctx, "retrying requeued event ids", "count", len(ids))

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}

		out := c.events.FetchEvent(ctx, id)
		if !out.IsFound() {
			c.logger.WarnContext(ctx, "requeued event still unavailable", "event_id", id, "outcome", out.String())
			continue
		}

		result.EventsFound++
		result.Recovered++
		c.logger.InfoContext(ctx, "requeued event recovered", "event_id", id, "name", out.Value.Name)
		if err := c.ingest(ctx, out.Value, result); err != nil {
			return err
		}
	}
	return nil
}

func (c *EventCrawler) ingest(ctx context.Context, e event.Event, result *CrawlResult) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventCrawler.ingest")
	defer span.End()
	span.SetAttributes(attribute.Int64("event.id", e.ID))
	e.CrawledAt = c.now().UTC()

	stats := c.events.FetchStatistics(ctx, e.ID)
	if stats.IsFound() {
		e.ApplyStatistics(stats.Value)
	} else {
		c.logger.DebugContext(ctx, "event statistics unavailable", "event_id", e.ID, "outcome", stats.String())
	}

	if e.IsInteresting() {
		result.Ingested++
		if err := c.cascade(ctx, e, result); err != nil {
			return err
		}
	} else {
		result.Skipped++
		c.logger.DebugContext(ctx, "event not interesting, skipping details",
			"event_id", e.ID,
			"status", e.Status,
			"ranked", e.Ranked,
			"player_count", e.PlayerCount,
		)
	}

	if err := c.eventRepo.Upsert(ctx, e); err != nil {
		return fmt.Errorf("upsert event event_id=%d: %w", e.ID, err)
	}
	return nil
}

func (c *EventCrawler) cascade(ctx context.Context, e event.Event, result *CrawlResult) error {
	standingsOut := c.events.FetchStandings(ctx, e.ID)
	switch standingsOut.Status {
	case fetch.StatusFound:
	case fetch.StatusError:
		c.logger.WarnContext(ctx, "fetch standings failed", "event_id", e.ID, "kind", standingsOut.Kind, "error", standingsOut.Err)
		return nil
	default:
		c.logger.DebugContext(ctx, "no standings for event", "event_id", e.ID, "status", standingsOut.Status)
		return nil
	}

	standings := standingsOut.Value
	if len(standings) == 0 {
		return nil
	}
	if err := c.standingRepo.UpsertMany(ctx, standings); err != nil {
		return fmt.Errorf("upsert standings event_id=%d: %w", e.ID, err)
	}
	result.StandingsSaved += len(standings)
	c.logger.InfoContext(ctx, "standings saved", "event_id", e.ID, "count", len(standings))

	if !e.HasDecklists {
		return nil
	}

	decklists := make([]decklist.Decklist, 0, len(standings))
	for _, s := range standings {
		if !s.HasDecklist {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		out := c.decklists.FetchDecklist(ctx, e.ID, s.PlayerID)
		switch out.Status {
		case fetch.StatusFound:
			d := out.Value
			if d.PlayerID == "" {
				d.PlayerID = s.PlayerID
			}
			if d.Champion == "" {
				d.Champion = s.Champion
			}
			if d.Rank == 0 {
				d.Rank = s.Rank
			}
			if d.PlayerName == "" {
				d.PlayerName = s.PlayerName
			}
			decklists = append(decklists, d)
		case fetch.StatusError:
			c.logger.WarnContext(ctx, "fetch decklist failed", "event_id", e.ID, "player_id", s.PlayerID, "kind", out.Kind, "error", out.Err)
		default:
			c.logger.DebugContext(ctx, "no decklist for player", "event_id", e.ID, "player_id", s.PlayerID, "status", out.Status)
		}
	}

	if len(decklists) == 0 {
		return nil
	}
	if err := c.decklistRepo.UpsertMany(ctx, decklists); err != nil {
		return fmt.Errorf("upsert decklists event_id=%d: %w", e.ID, err)
	}
	result.DecklistsSaved += len(decklists)
	c.logger.InfoContext(ctx, "decklists saved", "event_id", e.ID, "count", len(decklists))
	return nil
}

func (c *EventCrawler) checkpoint(ctx context.Context, result *CrawlResult) error {
	if result.LastEventID < 1 {
		return nil
	}

	state := crawlerstate.State{
		LastEventID: result.LastEventID,
		TotalEvents: result.EventsFound,
		LastCrawl:   c.now().UTC(),
		CrawlType:   result.CrawlType,
	}
	if err := c.stateRepo.Append(ctx, state); err != nil {
		return fmt.Errorf("append checkpoint last_event_id=%d: %w", state.LastEventID, err)
	}
	result.Checkpoints++
	c.logger.InfoContext(ctx, "checkpoint saved", "last_event_id", state.LastEventID, "events_found", state.TotalEvents)
	return nil
}

// finalCheckpoint records progress on the way out of a failed run. It uses a
// detached context so a cancelled crawl still persists its last probed id.
func (c *EventCrawler) finalCheckpoint(ctx context.Context, result *CrawlResult) {
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalCheckpointTimeout)
	defer cancel()

	if err := c.checkpoint(saveCtx, result); err != nil {
		c.logger.ErrorContext(ctx, "final checkpoint failed", "last_event_id", result.LastEventID, "error", err)
	}
}
