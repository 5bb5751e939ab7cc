package postgres

import (
	"time"

	"github.com/riskibarqy/ga-meta/internal/domain/crawlerstate"
)

type crawlerStateTableModel struct {
	ID          int64     `db:"id"`
	LastEventID int64     `db:"last_event_id"`
	TotalEvents int       `db:"total_events"`
	LastCrawl   time.Time `db:"last_crawl"`
	CrawlType   string    `db:"crawl_type"`
}

// crawlerStateInsertModel omits the serial id.
type crawlerStateInsertModel struct {
	LastEventID int64     `db:"last_event_id"`
	TotalEvents int       `db:"total_events"`
	LastCrawl   time.Time `db:"last_crawl"`
	CrawlType   string    `db:"crawl_type"`
}

func (m crawlerStateTableModel) toDomain() crawlerstate.State {
	return crawlerstate.State{
		ID:          m.ID,
		LastEventID: m.LastEventID,
		TotalEvents: m.TotalEvents,
		LastCrawl:   m.LastCrawl,
		CrawlType:   crawlerstate.CrawlType(m.CrawlType),
	}
}
