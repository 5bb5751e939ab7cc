package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/riskibarqy/ga-meta/internal/domain/card"
)

type cardTableModel struct {
	Slug            string        `db:"slug"`
	Name            string        `db:"name"`
	Type            string        `db:"type"`
	Element         string        `db:"element"`
	Classes         string        `db:"classes"`
	Subtypes        string        `db:"subtypes"`
	Cost            sql.NullInt64 `db:"cost"`
	ReserveCost     sql.NullInt64 `db:"reserve_cost"`
	Power           sql.NullInt64 `db:"power"`
	LifeModifier    sql.NullInt64 `db:"life_modifier"`
	EffectText      string        `db:"effect_text"`
	FlavorText      string        `db:"flavor_text"`
	ImageURL        string        `db:"image_url"`
	SetName         string        `db:"set_name"`
	CollectorNumber string        `db:"collector_number"`
	Rarity          string        `db:"rarity"`
	Artist          string        `db:"artist"`
	UpdatedAt       time.Time     `db:"updated_at"`
}

var cardUpdateColumns = []string{
	"name", "type", "element", "classes", "subtypes", "cost", "reserve_cost", "power",
	"life_modifier", "effect_text", "flavor_text", "image_url", "set_name",
	"collector_number", "rarity", "artist",
}

func toCardTableModel(c card.Card, now time.Time) cardTableModel {
	return cardTableModel{
		Slug:            c.Slug,
		Name:            c.Name,
		Type:            c.Type,
		Element:         c.Element,
		Classes:         encodeJSON(nonNilStrings(c.Classes), "[]"),
		Subtypes:        encodeJSON(nonNilStrings(c.Subtypes), "[]"),
		Cost:            toNullInt(c.Cost),
		ReserveCost:     toNullInt(c.ReserveCost),
		Power:           toNullInt(c.Power),
		LifeModifier:    toNullInt(c.LifeModifier),
		EffectText:      c.EffectText,
		FlavorText:      c.FlavorText,
		ImageURL:        c.ImageURL,
		SetName:         c.SetName,
		CollectorNumber: c.CollectorNumber,
		Rarity:          c.Rarity,
		Artist:          c.Artist,
		UpdatedAt:       now,
	}
}

func (m cardTableModel) toDomain() (card.Card, error) {
	classes, err := decodeJSON[[]string](m.Classes)
	if err != nil {
		return card.Card{}, fmt.Errorf("decode classes: %w", err)
	}
	subtypes, err := decodeJSON[[]string](m.Subtypes)
	if err != nil {
		return card.Card{}, fmt.Errorf("decode subtypes: %w", err)
	}

	return card.Card{
		Slug:            m.Slug,
		Name:            m.Name,
		Type:            m.Type,
		Element:         m.Element,
		Classes:         classes,
		Subtypes:        subtypes,
		Cost:            nullableInt(m.Cost),
		ReserveCost:     nullableInt(m.ReserveCost),
		Power:           nullableInt(m.Power),
		LifeModifier:    nullableInt(m.LifeModifier),
		EffectText:      m.EffectText,
		FlavorText:      m.FlavorText,
		ImageURL:        m.ImageURL,
		SetName:         m.SetName,
		CollectorNumber: m.CollectorNumber,
		Rarity:          m.Rarity,
		Artist:          m.Artist,
		UpdatedAt:       m.UpdatedAt,
	}, nil
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
