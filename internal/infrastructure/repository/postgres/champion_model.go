package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/ga-meta/internal/domain/champion"
)

type championTableModel struct {
	Slug        string        `db:"slug"`
	Name        string        `db:"name"`
	Element     string        `db:"element"`
	Class       string        `db:"class"`
	ImageURL    string        `db:"image_url"`
	AbilityText string        `db:"ability_text"`
	Life        sql.NullInt64 `db:"life"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

var championUpdateColumns = []string{"name", "element", "class", "image_url", "ability_text", "life"}

func toChampionTableModel(c champion.Champion, now time.Time) championTableModel {
	return championTableModel{
		Slug:        c.Slug,
		Name:        c.Name,
		Element:     c.Element,
		Class:       c.Class,
		ImageURL:    c.ImageURL,
		AbilityText: c.AbilityText,
		Life:        toNullInt(c.Life),
		UpdatedAt:   now,
	}
}

func (m championTableModel) toDomain() champion.Champion {
	return champion.Champion{
		Slug:        m.Slug,
		Name:        m.Name,
		Element:     m.Element,
		Class:       m.Class,
		ImageURL:    m.ImageURL,
		AbilityText: m.AbilityText,
		Life:        nullableInt(m.Life),
		UpdatedAt:   m.UpdatedAt,
	}
}
