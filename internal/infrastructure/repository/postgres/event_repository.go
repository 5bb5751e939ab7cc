package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/ga-meta/internal/domain/event"
	qb "github.com/riskibarqy/ga-meta/internal/platform/querybuilder"
)

const eventColumns = "event_id, name, format, status, ranked, player_count, start_date, end_date, location, organizer, rounds, tier, has_decklists, crawled_at, updated_at"

type EventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Upsert(ctx context.Context, item event.Event) error {
	if err := item.Validate(); err != nil {
		return err
	}

	query, args, err := qb.InsertModel("events", toEventTableModel(item, time.Now().UTC()),
		onConflictUpdate([]string{"event_id"}, eventUpdateColumns...))
	if err != nil {
		return fmt.Errorf("build upsert event query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert event event_id=%d: %w", item.ID, err)
	}
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, eventID int64) (event.Event, bool, error) {
	query, args, err := qb.Select(eventColumns).From("events").
		Where(qb.Eq("event_id", eventID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return event.Event{}, false, fmt.Errorf("build select event by id query: %w", err)
	}

	var row eventTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return event.Event{}, false, nil
		}
		return event.Event{}, false, fmt.Errorf("select event by id: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *EventRepository) List(ctx context.Context, filter event.Filter) ([]event.Event, error) {
	conditions := make([]qb.Condition, 0, 5)
	if filter.CompleteOnly {
		conditions = append(conditions, qb.Expr("LOWER(status) = ?", event.StatusComplete))
	}
	if filter.RankedOnly {
		conditions = append(conditions, qb.Eq("ranked", true))
	}
	if filter.Format != nil {
		conditions = append(conditions, qb.Eq("format", string(*filter.Format)))
	}
	if filter.Since != nil {
		conditions = append(conditions, qb.Gte("start_date", *filter.Since))
	}
	if filter.MinPlayers > 0 {
		conditions = append(conditions, qb.Gte("player_count", filter.MinPlayers))
	}

	query, args, err := qb.Select(eventColumns).From("events").
		Where(conditions...).
		OrderBy("start_date DESC NULLS LAST", "event_id DESC").
		Limit(filter.Limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list events query: %w", err)
	}

	var rows []eventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select events: %w", err)
	}

	out := make([]event.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
