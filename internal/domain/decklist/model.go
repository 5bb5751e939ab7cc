package decklist

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/ga-meta/internal/domain/card"
)

const (
	MinMainDeckCards  = 60
	MaxSideboardCards = 15
)

// Card is one line of a decklist.
type Card struct {
	Slug     string
	Name     string
	Quantity int
	Type     string
	Element  string
	Cost     *int
}

// Decklist is a player's registered deck at an event, keyed by (EventID, PlayerID).
// The count and frequency fields are set once by Finalize at ingestion.
type Decklist struct {
	EventID         int64
	PlayerID        string
	PlayerName      string
	Champion        string
	Rank            int
	MainDeck        []Card
	Sideboard       []Card
	MainDeckCount   int
	SideboardCount  int
	CardFrequencies map[string]int
	UpdatedAt       time.Time
}

func (d Decklist) Validate() error {
	if d.EventID <= 0 {
		return fmt.Errorf("decklist event id must be greater than zero")
	}
	if strings.TrimSpace(d.PlayerID) == "" {
		return fmt.Errorf("decklist player id is required")
	}
	return nil
}

// Finalize normalises slugs and computes MainDeckCount, SideboardCount and
// CardFrequencies from the card lines.
func (d *Decklist) Finalize() {
	d.Champion = card.NormalizeSlug(d.Champion)
	d.MainDeckCount = 0
	d.SideboardCount = 0
	d.CardFrequencies = make(map[string]int, len(d.MainDeck)+len(d.Sideboard))

	for i := range d.MainDeck {
		d.MainDeck[i].Slug = card.NormalizeSlug(d.MainDeck[i].Slug)
		d.MainDeckCount += d.MainDeck[i].Quantity
		d.CardFrequencies[d.MainDeck[i].Slug] += d.MainDeck[i].Quantity
	}
	for i := range d.Sideboard {
		d.Sideboard[i].Slug = card.NormalizeSlug(d.Sideboard[i].Slug)
		d.SideboardCount += d.Sideboard[i].Quantity
		d.CardFrequencies[d.Sideboard[i].Slug] += d.Sideboard[i].Quantity
	}
}

// IsValid reports tournament legality of the deck size. Advisory only.
func (d Decklist) IsValid() bool {
	return d.MainDeckCount >= MinMainDeckCards && d.SideboardCount <= MaxSideboardCards
}

// CardSlugs returns the distinct slugs across main deck and sideboard, sorted.
func (d Decklist) CardSlugs() []string {
	seen := make(map[string]struct{}, len(d.MainDeck)+len(d.Sideboard))
	out := make([]string, 0, len(d.MainDeck)+len(d.Sideboard))
	for _, lines := range [][]Card{d.MainDeck, d.Sideboard} {
		for _, line := range lines {
			if line.Slug == "" {
				continue
			}
			if _, ok := seen[line.Slug]; ok {
				continue
			}
			seen[line.Slug] = struct{}{}
			out = append(out, line.Slug)
		}
	}
	sort.Strings(out)
	return out
}
