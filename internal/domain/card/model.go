package card

import (
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// Card is catalog reference data from api.gatcg.com, keyed by slug.
type Card struct {
	Slug            string
	Name            string
	Type            string
	Element         string
	Classes         []string
	Subtypes        []string
	Cost            *int
	ReserveCost     *int
	Power           *int
	LifeModifier    *int
	EffectText      string
	FlavorText      string
	ImageURL        string
	SetName         string
	CollectorNumber string
	Rarity          string
	Artist          string
	UpdatedAt       time.Time
}

func (c Card) Validate() error {
	if strings.TrimSpace(c.Slug) == "" {
		return fmt.Errorf("card slug is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("card name is required")
	}
	return nil
}

// PrimaryClass returns the first listed class, or "" when the card has none.
func (c Card) PrimaryClass() string {
	if len(c.Classes) == 0 {
		return ""
	}
	return c.Classes[0]
}

// NormalizeSlug turns a display name or upstream slug into the canonical
// lower-case hyphenated form used as a key across events, decklists and the catalog.
func NormalizeSlug(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	return slug.Make(raw)
}
