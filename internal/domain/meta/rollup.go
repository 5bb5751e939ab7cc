package meta

import (
	"sort"

	"github.com/riskibarqy/ga-meta/internal/domain/decklist"
	"github.com/riskibarqy/ga-meta/internal/domain/standing"
)

func percentage(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}

// placement maps a missing rank (<= 0) to UnrankedPlacement so it never
// counts as a top finish.
func placement(rank int) int {
	if rank <= 0 {
		return UnrankedPlacement
	}
	return rank
}

// BuildBreakdown groups decklists by champion, most played first.
func BuildBreakdown(decklists []decklist.Decklist) []Breakdown {
	type acc struct {
		decks   int
		rankSum int
		top8    int
	}

	byChampion := make(map[string]*acc)
	for _, d := range decklists {
		a := byChampion[d.Champion]
		if a == nil {
			a = &acc{}
			byChampion[d.Champion] = a
		}
		rank := placement(d.Rank)
		a.decks++
		a.rankSum += rank
		if rank <= 8 {
			a.top8++
		}
	}

	total := len(decklists)
	out := make([]Breakdown, 0, len(byChampion))
	for champion, a := range byChampion {
		out = append(out, Breakdown{
			Champion:       champion,
			DeckCount:      a.decks,
			MetaPercentage: percentage(a.decks, total),
			AvgPlacement:   float64(a.rankSum) / float64(a.decks),
			Top8Count:      a.top8,
			Top8Percentage: percentage(a.top8, a.decks),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DeckCount != out[j].DeckCount {
			return out[i].DeckCount > out[j].DeckCount
		}
		return out[i].Champion < out[j].Champion
	})
	return out
}

// BuildChampionPerformance groups standings by champion. WinRate averages the
// standings that have a match win rate and is 0 when none do.
func BuildChampionPerformance(standings []standing.Standing, totalEvents int) []ChampionPerformance {
	type acc struct {
		appearances int
		rankSum     int
		rateSum     float64
		rated       int
		top8        int
		top16       int
	}

	byChampion := make(map[string]*acc)
	for _, s := range standings {
		a := byChampion[s.Champion]
		if a == nil {
			a = &acc{}
			byChampion[s.Champion] = a
		}
		rank := placement(s.Rank)
		a.appearances++
		a.rankSum += rank
		if s.MatchWinRate != nil {
			a.rateSum += *s.MatchWinRate
			a.rated++
		}
		if rank <= 8 {
			a.top8++
		}
		if rank <= 16 {
			a.top16++
		}
	}

	out := make([]ChampionPerformance, 0, len(byChampion))
	for champion, a := range byChampion {
		winRate := 0.0
		if a.rated > 0 {
			winRate = a.rateSum / float64(a.rated)
		}
		top8Rate := percentage(a.top8, a.appearances)
		out = append(out, ChampionPerformance{
			Champion:         champion,
			TotalAppearances: a.appearances,
			TotalEvents:      totalEvents,
			AvgPlacement:     float64(a.rankSum) / float64(a.appearances),
			WinRate:          winRate,
			Top8Rate:         top8Rate,
			Top16Rate:        percentage(a.top16, a.appearances),
			ConversionRate:   top8Rate,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalAppearances != out[j].TotalAppearances {
			return out[i].TotalAppearances > out[j].TotalAppearances
		}
		return out[i].Champion < out[j].Champion
	})
	return out
}

// BuildCardPerformance accumulates card_frequencies across decklists. names
// supplies display names; a slug missing from it is shown as the slug. A
// limit <= 0 returns every card.
func BuildCardPerformance(decklists []decklist.Decklist, names map[string]string, limit int) []CardPerformance {
	type acc struct {
		decks    int
		quantity int
		rankSum  int
	}

	bySlug := make(map[string]*acc)
	for _, d := range decklists {
		rank := placement(d.Rank)
		for slug, qty := range d.CardFrequencies {
			a := bySlug[slug]
			if a == nil {
				a = &acc{}
				bySlug[slug] = a
			}
			a.decks++
			a.quantity += qty
			a.rankSum += rank
		}
	}

	total := len(decklists)
	out := make([]CardPerformance, 0, len(bySlug))
	for slug, a := range bySlug {
		name := names[slug]
		if name == "" {
			name = slug
		}
		out = append(out, CardPerformance{
			Slug:           slug,
			Name:           name,
			DeckCount:      a.decks,
			TotalQuantity:  a.quantity,
			MetaPercentage: percentage(a.decks, total),
			AvgQuantity:    float64(a.quantity) / float64(a.decks),
			AvgPlacement:   float64(a.rankSum) / float64(a.decks),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DeckCount != out[j].DeckCount {
			return out[i].DeckCount > out[j].DeckCount
		}
		return out[i].Slug < out[j].Slug
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// CardSlugs returns the distinct slugs across the decklists' frequencies.
func CardSlugs(decklists []decklist.Decklist) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, d := range decklists {
		for slug := range d.CardFrequencies {
			if _, ok := seen[slug]; ok {
				continue
			}
			seen[slug] = struct{}{}
			out = append(out, slug)
		}
	}
	sort.Strings(out)
	return out
}
