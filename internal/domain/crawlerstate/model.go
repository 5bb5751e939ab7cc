package crawlerstate

import "time"

type CrawlType string

const (
	CrawlIncremental CrawlType = "incremental"
	CrawlHistorical  CrawlType = "historical"
)

// State is an append-only checkpoint. The record with the latest LastCrawl
// is the resume point, regardless of LastEventID.
type State struct {
	ID          int64
	LastEventID int64
	TotalEvents int
	LastCrawl   time.Time
	CrawlType   CrawlType
}

// ResumeID is the first id a follow-up incremental crawl should probe.
func (s State) ResumeID() int64 {
	return s.LastEventID + 1
}
