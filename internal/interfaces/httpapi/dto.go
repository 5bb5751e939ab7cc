package httpapi

import (
	"time"

	"github.com/riskibarqy/ga-meta/internal/domain/champion"
	"github.com/riskibarqy/ga-meta/internal/domain/crawlerstate"
	"github.com/riskibarqy/ga-meta/internal/domain/decklist"
	"github.com/riskibarqy/ga-meta/internal/domain/event"
	"github.com/riskibarqy/ga-meta/internal/domain/jobrun"
	"github.com/riskibarqy/ga-meta/internal/domain/meta"
	"github.com/riskibarqy/ga-meta/internal/domain/standing"
)

type eventDTO struct {
	EventID      int64      `json:"event_id"`
	Name         string     `json:"name"`
	Format       string     `json:"format"`
	Status       string     `json:"status"`
	Ranked       bool       `json:"ranked"`
	PlayerCount  int        `json:"player_count"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	Location     string     `json:"location,omitempty"`
	Organizer    string     `json:"organizer,omitempty"`
	Rounds       int        `json:"rounds,omitempty"`
	Tier         string     `json:"tier,omitempty"`
	HasDecklists bool       `json:"has_decklists"`
	CrawledAt    time.Time  `json:"crawled_at"`
}

type standingDTO struct {
	EventID      int64    `json:"event_id"`
	PlayerID     string   `json:"player_id"`
	PlayerName   string   `json:"player_name"`
	Rank         int      `json:"rank"`
	Champion     string   `json:"champion"`
	Wins         int      `json:"wins"`
	Losses       int      `json:"losses"`
	Draws        int      `json:"draws"`
	MatchWinRate *float64 `json:"match_win_rate"`
	HasDecklist  bool     `json:"has_decklist"`
}

type deckCardDTO struct {
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Type     string `json:"type,omitempty"`
	Element  string `json:"element,omitempty"`
	Cost     *int   `json:"cost,omitempty"`
}

type decklistDTO struct {
	EventID         int64          `json:"event_id"`
	PlayerID        string         `json:"player_id"`
	PlayerName      string         `json:"player_name"`
	Champion        string         `json:"champion"`
	Rank            int            `json:"rank"`
	MainDeck        []deckCardDTO  `json:"main_deck"`
	Sideboard       []deckCardDTO  `json:"sideboard"`
	MainDeckCount   int            `json:"main_deck_count"`
	SideboardCount  int            `json:"sideboard_count"`
	CardFrequencies map[string]int `json:"card_frequencies"`
	Valid           bool           `json:"valid"`
}

type championDTO struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Element     string `json:"element,omitempty"`
	Class       string `json:"class,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	AbilityText string `json:"ability_text,omitempty"`
	Life        *int   `json:"life,omitempty"`
}

type breakdownDTO struct {
	Champion       string  `json:"champion"`
	DeckCount      int     `json:"deck_count"`
	MetaPercentage float64 `json:"meta_percentage"`
	AvgPlacement   float64 `json:"avg_placement"`
	Top8Count      int     `json:"top8_count"`
	Top8Percentage float64 `json:"top8_percentage"`
}

type championPerformanceDTO struct {
	Champion         string  `json:"champion"`
	TotalAppearances int     `json:"total_appearances"`
	TotalEvents      int     `json:"total_events"`
	AvgPlacement     float64 `json:"avg_placement"`
	WinRate          float64 `json:"win_rate"`
	Top8Rate         float64 `json:"top8_rate"`
	Top16Rate        float64 `json:"top16_rate"`
	ConversionRate   float64 `json:"conversion_rate"`
}

type cardPerformanceDTO struct {
	Slug           string  `json:"slug"`
	Name           string  `json:"name"`
	DeckCount      int     `json:"deck_count"`
	TotalQuantity  int     `json:"total_quantity"`
	MetaPercentage float64 `json:"meta_percentage"`
	AvgQuantity    float64 `json:"avg_quantity"`
	AvgPlacement   float64 `json:"avg_placement"`
}

type crawlerStateDTO struct {
	LastEventID int64     `json:"last_event_id"`
	TotalEvents int       `json:"total_events"`
	LastCrawl   time.Time `json:"last_crawl"`
	CrawlType   string    `json:"crawl_type"`
}

type jobRunDTO struct {
	ID         string         `json:"id"`
	JobName    string         `json:"job_name"`
	Status     string         `json:"status"`
	Summary    map[string]any `json:"summary,omitempty"`
	LastError  string         `json:"last_error,omitempty"`
	TraceID    string         `json:"trace_id,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
}

func eventToDTO(v event.Event) eventDTO {
	return eventDTO{
		EventID:      v.ID,
		Name:         v.Name,
		Format:       string(v.Format),
		Status:       v.Status,
		Ranked:       v.Ranked,
		PlayerCount:  v.PlayerCount,
		StartDate:    v.StartDate,
		EndDate:      v.EndDate,
		Location:     v.Location,
		Organizer:    v.Organizer,
		Rounds:       v.Rounds,
		Tier:         v.Tier,
		HasDecklists: v.HasDecklists,
		CrawledAt:    v.CrawledAt,
	}
}

func standingToDTO(v standing.Standing) standingDTO {
	return standingDTO{
		EventID:      v.EventID,
		PlayerID:     v.PlayerID,
		PlayerName:   v.PlayerName,
		Rank:         v.Rank,
		Champion:     v.Champion,
		Wins:         v.Wins,
		Losses:       v.Losses,
		Draws:        v.Draws,
		MatchWinRate: v.MatchWinRate,
		HasDecklist:  v.HasDecklist,
	}
}

func decklistToDTO(v decklist.Decklist) decklistDTO {
	freq := v.CardFrequencies
	if freq == nil {
		freq = map[string]int{}
	}
	return decklistDTO{
		EventID:         v.EventID,
		PlayerID:        v.PlayerID,
		PlayerName:      v.PlayerName,
		Champion:        v.Champion,
		Rank:            v.Rank,
		MainDeck:        deckCardsToDTO(v.MainDeck),
		Sideboard:       deckCardsToDTO(v.Sideboard),
		MainDeckCount:   v.MainDeckCount,
		SideboardCount:  v.SideboardCount,
		CardFrequencies: freq,
		Valid:           v.IsValid(),
	}
}

func deckCardsToDTO(lines []decklist.Card) []deckCardDTO {
	out := make([]deckCardDTO, 0, len(lines))
	for _, line := range lines {
		out = append(out, deckCardDTO{
			Slug:     line.Slug,
			Name:     line.Name,
			Quantity: line.Quantity,
			Type:     line.Type,
			Element:  line.Element,
			Cost:     line.Cost,
		})
	}
	return out
}

func championToDTO(v champion.Champion) championDTO {
	return championDTO{
		Slug:        v.Slug,
		Name:        v.Name,
		Element:     v.Element,
		Class:       v.Class,
		ImageURL:    v.ImageURL,
		AbilityText: v.AbilityText,
		Life:        v.Life,
	}
}

func breakdownToDTO(v meta.Breakdown) breakdownDTO {
	return breakdownDTO(v)
}

func championPerformanceToDTO(v meta.ChampionPerformance) championPerformanceDTO {
	return championPerformanceDTO(v)
}

func cardPerformanceToDTO(v meta.CardPerformance) cardPerformanceDTO {
	return cardPerformanceDTO(v)
}

func crawlerStateToDTO(v crawlerstate.State) crawlerStateDTO {
	return crawlerStateDTO{
		LastEventID: v.LastEventID,
		TotalEvents: v.TotalEvents,
		LastCrawl:   v.LastCrawl,
		CrawlType:   string(v.CrawlType),
	}
}

func jobRunToDTO(v jobrun.Run) jobRunDTO {
	return jobRunDTO{
		ID:         v.ID,
		JobName:    v.JobName,
		Status:     string(v.Status),
		Summary:    v.Summary,
		LastError:  v.LastError,
		TraceID:    v.TraceID,
		StartedAt:  v.StartedAt,
		FinishedAt: v.FinishedAt,
	}
}

func mapSlice[T, U any](items []T, fn func(T) U) []U {
	out := make([]U, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}
