package champion

import (
	"time"

	"github.com/riskibarqy/ga-meta/internal/domain/card"
)

type Champion struct {
	Slug        string
	Name        string
	Element     string
	Class       string
	ImageURL    string
	AbilityText string
	Life        *int
	UpdatedAt   time.Time
}

// FromCard projects a champion card onto the champion catalog. Life comes
// from the card's life modifier.
func FromCard(c card.Card) Champion {
	return Champion{
		Slug:        c.Slug,
		Name:        c.Name,
		Element:     c.Element,
		Class:       c.PrimaryClass(),
		ImageURL:    c.ImageURL,
		AbilityText: c.EffectText,
		Life:        c.LifeModifier,
		UpdatedAt:   c.UpdatedAt,
	}
}
