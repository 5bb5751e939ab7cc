package meta

// Breakdown is one champion's share of the decklists in a selection.
type Breakdown struct {
	Champion       string
	DeckCount      int
	MetaPercentage float64
	AvgPlacement   float64
	Top8Count      int
	Top8Percentage float64
}

// ChampionPerformance aggregates standings, not decklists, so it covers
// every player whether or not a deck was published.
type ChampionPerformance struct {
	Champion         string
	TotalAppearances int
	TotalEvents      int
	AvgPlacement     float64
	WinRate          float64
	Top8Rate         float64
	Top16Rate        float64
	ConversionRate   float64
}

type CardPerformance struct {
	Slug           string
	Name           string
	DeckCount      int
	TotalQuantity  int
	MetaPercentage float64
	AvgQuantity    float64
	AvgPlacement   float64
}

// UnrankedPlacement stands in for a missing rank in every rollup.
const UnrankedPlacement = 999
