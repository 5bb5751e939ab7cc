package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/ga-meta/internal/domain/jobrun"
	"github.com/riskibarqy/ga-meta/internal/infrastructure/repository/memory"
	jobrunmock "github.com/riskibarqy/ga-meta/internal/mocks/domain/jobrun"
	"github.com/stretchr/testify/mock"
)

type stubCrawler struct {
	historicalFrom int64
	err            error
}

func (s *stubCrawler) CrawlIncremental(context.Context) (CrawlResult, error) {
	return CrawlResult{StartID: 11, LastEventID: 20, EventsFound: 2}, s.err
}

func (s *stubCrawler) CrawlHistorical(_ context.Context, startID int64) (CrawlResult, error) {
	s.historicalFrom = startID
	return CrawlResult{StartID: startID, LastEventID: startID + 9}, s.err
}

type stubCardSyncer struct{}

func (stubCardSyncer) FullSync(context.Context) (CardSyncResult, error) {
	return CardSyncResult{ChampionsSynced: 3, CardsSynced: 40}, nil
}

type stubSnapshotter struct {
	days int
}

func (s *stubSnapshotter) Snapshot(_ context.Context, days int) (MetaSnapshot, error) {
	s.days = days
	return MetaSnapshot{Days: days, Formats: []FormatSnapshot{{Format: AllFormats, Events: 4}}}, nil
}

type countingCache struct {
	purges atomic.Int32
}

func (c *countingCache) Purge(context.Context) int {
	c.purges.Add(1)
	return 5
}

type sequenceIDs struct {
	next atomic.Int32
}

func (g *sequenceIDs) NewID() (string, error) {
	return fmt.Sprintf("run_%d", g.next.Add(1)), nil
}

func newJobServiceFixture(crawler *stubCrawler) (*JobService, *memory.JobRunRepository, *countingCache, *stubSnapshotter) {
	runs := memory.NewJobRunRepository()
	cache := &countingCache{}
	snap := &stubSnapshotter{}
	svc := NewJobService(crawler, stubCardSyncer{}, snap, runs, cache, &sequenceIDs{}, JobServiceConfig{MetaWindowDays: 14}, nil)

	tick := time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return svc, runs, cache, snap
}

func TestJobService_RunCrawl_RecordsCompletedRun(t *testing.T) {
	t.Parallel()

	svc, runs, cache, _ := newJobServiceFixture(&stubCrawler{})

	run, err := svc.RunCrawl(context.Background(), nil)
	if err != nil {
		t.Fatalf("RunCrawl error: %v", err)
	}
	if run.JobName != jobrun.JobCrawlIncremental || run.Status != jobrun.StatusCompleted {
		t.Fatalf("unexpected run: %+v", run)
	}
	if run.FinishedAt == nil || !run.FinishedAt.After(run.StartedAt) {
		t.Fatalf("expected finished_at after started_at, got=%+v", run)
	}
	if got := run.Summary["events_found"]; got != float64(2) {
		t.Fatalf("expected events_found=2 in summary, got=%v", got)
	}
	if cache.purges.Load() != 1 {
		t.Fatalf("expected one cache purge, got=%d", cache.purges.Load())
	}

	stored, err := runs.List(context.Background(), jobrun.Filter{})
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(stored) != 1 || stored[0].Status != jobrun.StatusCompleted {
		t.Fatalf("expected a single completed run, got=%+v", stored)
	}
}

func TestJobService_RunCrawl_HistoricalStart(t *testing.T) {
	t.Parallel()

	crawler := &stubCrawler{}
	svc, _, _, _ := newJobServiceFixture(crawler)

	start := int64(500)
	run, err := svc.RunCrawl(context.Background(), &start)
	if err != nil {
		t.Fatalf("RunCrawl error: %v", err)
	}
	if run.JobName != jobrun.JobCrawlHistorical || crawler.historicalFrom != 500 {
		t.Fatalf("expected historical crawl from 500, got job=%s from=%d", run.JobName, crawler.historicalFrom)
	}

	bad := int64(0)
	if _, err := svc.RunCrawl(context.Background(), &bad); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got=%v", err)
	}
}

func TestJobService_RunCrawl_FailureIsRecorded(t *testing.T) {
	t.Parallel()

	svc, runs, _, _ := newJobServiceFixture(&stubCrawler{err: errors.New("upsert event event_id=12: connection reset")})

	run, err := svc.RunCrawl(context.Background(), nil)
	if err == nil {
		t.Fatalf("expected crawl error")
	}
	if run.Status != jobrun.StatusFailed || run.LastError == "" {
		t.Fatalf("expected failed run with last error, got=%+v", run)
	}

	stored, _ := runs.List(context.Background(), jobrun.Filter{JobName: jobrun.JobCrawlIncremental})
	if len(stored) != 1 || stored[0].Status != jobrun.StatusFailed {
		t.Fatalf("expected failed run persisted, got=%+v", stored)
	}
}

func TestJobService_RunMetaSnapshot_UsesConfiguredWindow(t *testing.T) {
	t.Parallel()

	svc, _, _, snap := newJobServiceFixture(&stubCrawler{})

	run, err := svc.RunMetaSnapshot(context.Background())
	if err != nil {
		t.Fatalf("RunMetaSnapshot error: %v", err)
	}
	if snap.days != 14 {
		t.Fatalf("expected 14 day window, got=%d", snap.days)
	}
	formats, ok := run.Summary["formats"].([]any)
	if !ok || len(formats) != 1 {
		t.Fatalf("expected one format row in summary, got=%v", run.Summary["formats"])
	}
}

func TestJobService_RunCardSync(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newJobServiceFixture(&stubCrawler{})

	run, err := svc.RunCardSync(context.Background())
	if err != nil {
		t.Fatalf("RunCardSync error: %v", err)
	}
	if run.Summary["cards_synced"] != float64(40) {
		t.Fatalf("expected cards_synced=40, got=%v", run.Summary["cards_synced"])
	}
}

func TestJobService_StartRecordFailureSkipsJobUsingMockery(t *testing.T) {
	t.Parallel()

	runRepo := jobrunmock.NewRepository(t)
	crawler := &stubCrawler{}
	svc := NewJobService(crawler, stubCardSyncer{}, &stubSnapshotter{}, runRepo, nil, &sequenceIDs{}, JobServiceConfig{}, nil)

	runRepo.
		On("Upsert", mock.Anything, mock.MatchedBy(func(r jobrun.Run) bool { return r.Status == jobrun.StatusRunning })).
		Return(errors.New("db down")).
		Once()

	start := int64(3)
	if _, err := svc.RunCrawl(context.Background(), &start); err == nil {
		t.Fatalf("expected error when run start cannot be recorded")
	}
	if crawler.historicalFrom != 0 {
		t.Fatalf("expected crawl not to run")
	}
}

func TestJobService_ListRuns_AppliesDefaultLimitUsingMockery(t *testing.T) {
	t.Parallel()

	runRepo := jobrunmock.NewRepository(t)
	svc := NewJobService(&stubCrawler{}, stubCardSyncer{}, &stubSnapshotter{}, runRepo, nil, nil, JobServiceConfig{}, nil)

	runRepo.
		On("List", mock.Anything, jobrun.Filter{JobName: jobrun.JobCardSync, Limit: defaultJobRunListLimit}).
		Return([]jobrun.Run{{ID: "run_1", JobName: jobrun.JobCardSync}}, nil).
		Once()

	got, err := svc.ListRuns(context.Background(), jobrun.Filter{JobName: " card_sync "})
	if err != nil {
		t.Fatalf("ListRuns error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 run, got=%d", len(got))
	}
}

type blockingCrawler struct {
	stubCrawler
	started chan struct{}
	release chan struct{}
}

func (b *blockingCrawler) CrawlIncremental(ctx context.Context) (CrawlResult, error) {
	close(b.started)
	<-b.release
	return b.stubCrawler.CrawlIncremental(ctx)
}

func TestJobService_TriggerRunsInBackgroundAndRejectsOverlap(t *testing.T) {
	t.Parallel()

	crawler := &blockingCrawler{started: make(chan struct{}), release: make(chan struct{})}
	runs := memory.NewJobRunRepository()
	svc := NewJobService(crawler, stubCardSyncer{}, &stubSnapshotter{}, runs, nil, &sequenceIDs{}, JobServiceConfig{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	run, err := svc.Trigger(ctx, jobrun.JobCrawlIncremental, nil)
	if err != nil {
		t.Fatalf("Trigger error: %v", err)
	}
	if run.Status != jobrun.StatusRunning {
		t.Fatalf("expected running status from trigger, got=%s", run.Status)
	}
	cancel()
	<-crawler.started

	if _, err := svc.RunCrawl(context.Background(), nil); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict while crawl is running, got=%v", err)
	}
	if _, err := svc.RunCardSync(context.Background()); err != nil {
		t.Fatalf("expected a different job to run concurrently, got=%v", err)
	}

	close(crawler.release)
	svc.Wait()

	stored, err := runs.List(context.Background(), jobrun.Filter{JobName: jobrun.JobCrawlIncremental})
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(stored) != 1 || stored[0].Status != jobrun.StatusCompleted {
		t.Fatalf("expected triggered run completed despite caller cancel, got=%+v", stored)
	}
}

func TestJobService_TriggerValidatesJob(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newJobServiceFixture(&stubCrawler{})

	if _, err := svc.Trigger(context.Background(), "reindex", nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown job, got=%v", err)
	}
	if _, err := svc.Trigger(context.Background(), jobrun.JobCrawlHistorical, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for historical crawl without start, got=%v", err)
	}
}
