package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/ga-meta/internal/domain/jobrun"
	"github.com/riskibarqy/ga-meta/internal/platform/id"
	"github.com/riskibarqy/ga-meta/internal/platform/logging"
	"go.opentelemetry.io/otel/trace"
)

const defaultJobRunListLimit = 20

type Crawler interface {
	CrawlIncremental(ctx context.Context) (CrawlResult, error)
	CrawlHistorical(ctx context.Context, startID int64) (CrawlResult, error)
}

type CardSyncer interface {
	FullSync(ctx context.Context) (CardSyncResult, error)
}

type MetaSnapshotter interface {
	Snapshot(ctx context.Context, days int) (MetaSnapshot, error)
}

// CacheInvalidator drops cached API responses once new data lands.
type CacheInvalidator interface {
	Purge(ctx context.Context) int
}

type noopCacheInvalidator struct{}

func (noopCacheInvalidator) Purge(context.Context) int { return 0 }

type JobServiceConfig struct {
	MetaWindowDays int
}

// JobService runs the crawl, card sync and meta jobs and records each
// execution as a jobrun.Run.
type JobService struct {
	crawler  Crawler
	cardSync CardSyncer
	meta     MetaSnapshotter
	runRepo  jobrun.Repository
	cache    CacheInvalidator
	ids      id.Generator
	cfg      JobServiceConfig
	logger   *logging.Logger
	now      func() time.Time

	mu      sync.Mutex
	active  map[string]struct{}
	pending sync.WaitGroup
}

func NewJobService(
	crawler Crawler,
	cardSync CardSyncer,
	meta MetaSnapshotter,
	runRepo jobrun.Repository,
	cache CacheInvalidator,
	ids id.Generator,
	cfg JobServiceConfig,
	logger *logging.Logger,
) *JobService {
	if cache == nil {
		cache = noopCacheInvalidator{}
	}
	if ids == nil {
		ids = id.NewPrefixedGenerator("run_")
	}
	if cfg.MetaWindowDays < 1 {
		cfg.MetaWindowDays = 30
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &JobService{
		crawler:  crawler,
		cardSync: cardSync,
		meta:     meta,
		runRepo:  runRepo,
		cache:    cache,
		ids:      ids,
		cfg:      cfg,
		logger:   logger.Named("jobs"),
		now:      time.Now,
		active:   make(map[string]struct{}),
	}
}

// RunCrawl runs an incremental crawl, or a historical one when startID is set.
func (s *JobService) RunCrawl(ctx context.Context, startID *int64) (jobrun.Run, error) {
	jobName := jobrun.JobCrawlIncremental
	if startID != nil {
		jobName = jobrun.JobCrawlHistorical
	}
	return s.runJob(ctx, jobName, startID)
}

func (s *JobService) RunCardSync(ctx context.Context) (jobrun.Run, error) {
	return s.runJob(ctx, jobrun.JobCardSync, nil)
}

func (s *JobService) RunMetaSnapshot(ctx context.Context) (jobrun.Run, error) {
	return s.runJob(ctx, jobrun.JobMetaSnapshot, nil)
}

func (s *JobService) runJob(ctx context.Context, jobName string, startID *int64) (jobrun.Run, error) {
	fn, err := s.jobFunc(jobName, startID)
	if err != nil {
		return jobrun.Run{}, err
	}
	return s.run(ctx, jobName, fn)
}

func (s *JobService) ListRuns(ctx context.Context, filter jobrun.Filter) ([]jobrun.Run, error) {
	filter.JobName = strings.TrimSpace(filter.JobName)
	limit, err := normalizeLimit(filter.Limit, defaultJobRunListLimit)
	if err != nil {
		return nil, err
	}
	filter.Limit = limit

	runs, err := s.runRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list job runs: %w", err)
	}
	return runs, nil
}

// Trigger records a running job and executes it in the background. The
// returned run is still in the running state; Wait blocks until it finishes.
func (s *JobService) Trigger(ctx context.Context, jobName string, startID *int64) (jobrun.Run, error) {
	fn, err := s.jobFunc(jobName, startID)
	if err != nil {
		return jobrun.Run{}, err
	}
	if startID != nil {
		jobName = jobrun.JobCrawlHistorical
	}

	run, release, err := s.begin(ctx, jobName)
	if err != nil {
		return jobrun.Run{}, err
	}

	bg := context.WithoutCancel(ctx)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer release()
		_, _ = s.finish(bg, run, fn)
	}()
	return run, nil
}

// Wait blocks until every triggered job has finished.
func (s *JobService) Wait() {
	s.pending.Wait()
}

func (s *JobService) jobFunc(jobName string, startID *int64) (func(ctx context.Context) (any, error), error) {
	if startID != nil && *startID < 1 {
		return nil, fmt.Errorf("%w: start id must be >= 1", ErrInvalidInput)
	}

	switch jobName {
	case jobrun.JobCrawlIncremental, jobrun.JobCrawlHistorical:
		if startID != nil {
			return func(ctx context.Context) (any, error) { return s.crawler.CrawlHistorical(ctx, *startID) }, nil
		}
		if jobName == jobrun.JobCrawlHistorical {
			return nil, fmt.Errorf("%w: historical crawl requires a start id", ErrInvalidInput)
		}
		return func(ctx context.Context) (any, error) { return s.crawler.CrawlIncremental(ctx) }, nil
	case jobrun.JobCardSync:
		return func(ctx context.Context) (any, error) { return s.cardSync.FullSync(ctx) }, nil
	case jobrun.JobMetaSnapshot:
		return func(ctx context.Context) (any, error) {
			snap, err := s.meta.Snapshot(ctx, s.cfg.MetaWindowDays)
			if err != nil {
				return nil, err
			}
			return metaSnapshotSummary(snap), nil
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown job %q", ErrInvalidInput, jobName)
	}
}

func (s *JobService) run(ctx context.Context, jobName string, fn func(ctx context.Context) (any, error)) (jobrun.Run, error) {
	run, release, err := s.begin(ctx, jobName)
	if err != nil {
		return jobrun.Run{}, err
	}
	defer release()

	return s.finish(ctx, run, fn)
}

// begin claims the job slot and records the running state. A job never runs
// concurrently with itself.
func (s *JobService) begin(ctx context.Context, jobName string) (jobrun.Run, func(), error) {
	s.mu.Lock()
	if _, busy := s.active[jobName]; busy {
		s.mu.Unlock()
		return jobrun.Run{}, nil, fmt.Errorf("%w: job %s is already running", ErrConflict, jobName)
	}
	s.active[jobName] = struct{}{}
	s.mu.Unlock()

	release := func() {
		s.mu.Lock()
		delete(s.active, jobName)
		s.mu.Unlock()
	}

	runID, err := s.ids.NewID()
	if err != nil {
		release()
		return jobrun.Run{}, nil, fmt.Errorf("generate job run id: %w", err)
	}

	run := jobrun.Run{
		ID:        runID,
		JobName:   jobName,
		Status:    jobrun.StatusRunning,
		TraceID:   traceIDFromContext(ctx),
		StartedAt: s.now().UTC(),
	}
	if err := s.runRepo.Upsert(ctx, run); err != nil {
		release()
		return jobrun.Run{}, nil, fmt.Errorf("record job run start job=%s: %w", jobName, err)
	}
	s.logger.InfoContext(ctx, "job started", "job", jobName, "run_id", runID)
	return run, release, nil
}

func (s *JobService) finish(ctx context.Context, run jobrun.Run, fn func(ctx context.Context) (any, error)) (jobrun.Run, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobService."+run.JobName)
	defer span.End()

	result, jobErr := fn(ctx)

	finished := s.now().UTC()
	run.FinishedAt = &finished
	run.Summary = summaryOf(result)
	run.Status = jobrun.StatusCompleted
	if jobErr != nil {
		run.Status = jobrun.StatusFailed
		run.LastError = jobErr.Error()
	}

	purged := s.cache.Purge(ctx)

	saveCtx := context.WithoutCancel(ctx)
	if err := s.runRepo.Upsert(saveCtx, run); err != nil {
		s.logger.ErrorContext(ctx, "record job run finish failed", "job", run.JobName, "run_id", run.ID, "error", err)
		if jobErr == nil {
			jobErr = fmt.Errorf("record job run finish job=%s: %w", run.JobName, err)
		}
	}

	if jobErr != nil {
		s.logger.ErrorContext(ctx, "job failed",
			"job", run.JobName,
			"run_id", run.ID,
			"duration", finished.Sub(run.StartedAt),
			"error", jobErr,
		)
		return run, jobErr
	}

	s.logger.InfoContext(ctx, "job completed",
		"job", run.JobName,
		"run_id", run.ID,
		"duration", finished.Sub(run.StartedAt),
		"cache_purged", purged,
	)
	return run, nil
}

// summaryOf flattens a job result into its JSON object form for storage.
func summaryOf(result any) map[string]any {
	if result == nil {
		return map[string]any{}
	}
	raw, err := sonic.Marshal(result)
	if err != nil {
		return map[string]any{"error": "summary unavailable"}
	}
	out := make(map[string]any)
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return map[string]any{"error": "summary unavailable"}
	}
	return out
}

type formatSummary struct {
	Format      string `json:"format"`
	Events      int    `json:"events"`
	Champions   int    `json:"champions"`
	Cards       int    `json:"cards"`
	TopChampion string `json:"top_champion,omitempty"`
}

func metaSnapshotSummary(snap MetaSnapshot) map[string]any {
	formats := make([]formatSummary, 0, len(snap.Formats))
	for _, row := range snap.Formats {
		item := formatSummary{
			Format:    row.Format,
			Events:    row.Events,
			Champions: len(row.ChampionPerformance),
			Cards:     len(row.CardPerformance),
		}
		if len(row.Breakdown) > 0 {
			item.TopChampion = row.Breakdown[0].Champion
		}
		formats = append(formats, item)
	}
	return map[string]any{
		"days":         snap.Days,
		"generated_at": snap.GeneratedAt,
		"formats":      formats,
	}
}

func traceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
