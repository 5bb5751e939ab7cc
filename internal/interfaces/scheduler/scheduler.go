package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/riskibarqy/ga-meta/internal/domain/jobrun"
	"github.com/riskibarqy/ga-meta/internal/platform/logging"
	"github.com/riskibarqy/ga-meta/internal/usecase"
)

// Runner executes a job and records its run.
type Runner interface {
	RunCrawl(ctx context.Context, startID *int64) (jobrun.Run, error)
	RunCardSync(ctx context.Context) (jobrun.Run, error)
	RunMetaSnapshot(ctx context.Context) (jobrun.Run, error)
}

type Config struct {
	CrawlSchedule    string
	CardSyncSchedule string
	MetaSchedule     string
	Location         *time.Location
}

// Scheduler triggers the crawl, card sync and meta jobs on cron schedules.
// Each job runs in singleton mode; a tick that fires while the previous run
// is still going is rescheduled.
type Scheduler struct {
	sched  gocron.Scheduler
	runner Runner
	logger *logging.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func New(runner Runner, cfg Config, logger *logging.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("scheduler")

	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	sched, err := gocron.NewScheduler(
		gocron.WithLocation(loc),
		gocron.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		sched:  sched,
		runner: runner,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}

	jobs := []struct {
		name     string
		schedule string
		run      func(ctx context.Context) (jobrun.Run, error)
	}{
		{jobrun.JobCrawlIncremental, cfg.CrawlSchedule, func(ctx context.Context) (jobrun.Run, error) { return runner.RunCrawl(ctx, nil) }},
		{jobrun.JobCardSync, cfg.CardSyncSchedule, runner.RunCardSync},
		{jobrun.JobMetaSnapshot, cfg.MetaSchedule, runner.RunMetaSnapshot},
	}
	for _, job := range jobs {
		schedule := strings.TrimSpace(job.schedule)
		if schedule == "" {
			logger.Info("job schedule disabled", "job", job.name)
			continue
		}

		if _, err := sched.NewJob(
			gocron.CronJob(schedule, false),
			gocron.NewTask(s.execute, job.name, job.run),
			gocron.WithName(job.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		); err != nil {
			cancel()
			_ = sched.Shutdown()
			return nil, fmt.Errorf("register job=%s schedule=%q: %w", job.name, schedule, err)
		}
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.sched.Start()
	for _, job := range s.sched.Jobs() {
		next, _ := job.NextRun()
		s.logger.Info("job scheduled", "job", job.Name(), "next_run", next)
	}
}

// Shutdown stops new ticks, cancels running jobs and waits for them to return.
func (s *Scheduler) Shutdown() error {
	s.cancel()
	if err := s.sched.Shutdown(); err != nil {
		return fmt.Errorf("shutdown scheduler: %w", err)
	}
	return nil
}

// JobNames lists the registered jobs.
func (s *Scheduler) JobNames() []string {
	jobs := s.sched.Jobs()
	names := make([]string, 0, len(jobs))
	for _, job := range jobs {
		names = append(names, job.Name())
	}
	return names
}

func (s *Scheduler) execute(name string, run func(ctx context.Context) (jobrun.Run, error)) {
	result, err := run(s.ctx)
	switch {
	case errors.Is(err, usecase.ErrConflict):
		s.logger.Info("scheduled job skipped, already running", "job", name)
	case err != nil:
		s.logger.Error("scheduled job failed", "job", name, "run_id", result.ID, "error", err)
	default:
		s.logger.Info("scheduled job finished", "job", name, "run_id", result.ID, "status", result.Status)
	}
}
