package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/ga-meta/internal/domain/crawlerstate"
	qb "github.com/riskibarqy/ga-meta/internal/platform/querybuilder"
)

type CrawlerStateRepository struct {
	db *sqlx.DB
}

func NewCrawlerStateRepository(db *sqlx.DB) *CrawlerStateRepository {
	return &CrawlerStateRepository{db: db}
}

func (r *CrawlerStateRepository) Append(ctx context.Context, state crawlerstate.State) error {
	query, args, err := qb.InsertModel("crawler_state", crawlerStateInsertModel{
		LastEventID: state.LastEventID,
		TotalEvents: state.TotalEvents,
		LastCrawl:   state.LastCrawl.UTC(),
		CrawlType:   string(state.CrawlType),
	}, "")
	if err != nil {
		return fmt.Errorf("build insert crawler state query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert crawler state last_event_id=%d: %w", state.LastEventID, err)
	}
	return nil
}

func (r *CrawlerStateRepository) Latest(ctx context.Context) (crawlerstate.State, bool, error) {
	query, args, err := qb.Select("id", "last_event_id", "total_events", "last_crawl", "crawl_type").
		From("crawler_state").
		OrderBy("last_crawl DESC", "id DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return crawlerstate.State{}, false, fmt.Errorf("build latest crawler state query: %w", err)
	}

	var row crawlerStateTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return crawlerstate.State{}, false, nil
		}
		return crawlerstate.State{}, false, fmt.Errorf("select latest crawler state: %w", err)
	}
	return row.toDomain(), true, nil
}
