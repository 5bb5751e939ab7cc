package jobrun

import "time"

type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

const (
	JobCrawlIncremental = "crawl_incremental"
	JobCrawlHistorical  = "crawl_historical"
	JobCardSync         = "card_sync"
	JobMetaSnapshot     = "meta_snapshot"
)

// Run records one execution of a scheduled or manually triggered job.
type Run struct {
	ID         string
	JobName    string
	Status     Status
	Summary    map[string]any
	LastError  string
	TraceID    string
	StartedAt  time.Time
	FinishedAt *time.Time
}

type Filter struct {
	JobName string
	Limit   int
}
