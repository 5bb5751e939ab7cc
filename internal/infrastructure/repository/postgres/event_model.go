package postgres

import (
	"time"

	"github.com/riskibarqy/ga-meta/internal/domain/event"
)

type eventTableModel struct {
	EventID      int64      `db:"event_id"`
	Name         string     `db:"name"`
	Format       string     `db:"format"`
	Status       string     `db:"status"`
	Ranked       bool       `db:"ranked"`
	PlayerCount  int        `db:"player_count"`
	StartDate    *time.Time `db:"start_date"`
	EndDate      *time.Time `db:"end_date"`
	Location     string     `db:"location"`
	Organizer    string     `db:"organizer"`
	Rounds       int        `db:"rounds"`
	Tier         string     `db:"tier"`
	HasDecklists bool       `db:"has_decklists"`
	CrawledAt    time.Time  `db:"crawled_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

var eventUpdateColumns = []string{
	"name", "format", "status", "ranked", "player_count", "start_date", "end_date",
	"location", "organizer", "rounds", "tier", "has_decklists", "crawled_at",
}

func toEventTableModel(e event.Event, now time.Time) eventTableModel {
	return eventTableModel{
		EventID:      e.ID,
		Name:         e.Name,
		Format:       string(e.Format),
		Status:       e.Status,
		Ranked:       e.Ranked,
		PlayerCount:  e.PlayerCount,
		StartDate:    e.StartDate,
		EndDate:      e.EndDate,
		Location:     e.Location,
		Organizer:    e.Organizer,
		Rounds:       e.Rounds,
		Tier:         e.Tier,
		HasDecklists: e.HasDecklists,
		CrawledAt:    e.CrawledAt,
		UpdatedAt:    now,
	}
}

func (m eventTableModel) toDomain() event.Event {
	return event.Event{
		ID:           m.EventID,
		Name:         m.Name,
		Format:       event.ParseFormat(m.Format),
		Status:       m.Status,
		Ranked:       m.Ranked,
		PlayerCount:  m.PlayerCount,
		StartDate:    m.StartDate,
		EndDate:      m.EndDate,
		Location:     m.Location,
		Organizer:    m.Organizer,
		Rounds:       m.Rounds,
		Tier:         m.Tier,
		HasDecklists: m.HasDecklists,
		CrawledAt:    m.CrawledAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
