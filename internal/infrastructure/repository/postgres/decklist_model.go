package postgres

import (
	"fmt"
	"time"

	"github.com/riskibarqy/ga-meta/internal/domain/decklist"
)

type decklistTableModel struct {
	EventID         int64     `db:"event_id"`
	PlayerID        string    `db:"player_id"`
	PlayerName      string    `db:"player_name"`
	Champion        string    `db:"champion"`
	Rank            int       `db:"rank"`
	MainDeck        string    `db:"main_deck"`
	Sideboard       string    `db:"sideboard"`
	MainDeckCount   int       `db:"main_deck_count"`
	SideboardCount  int       `db:"sideboard_count"`
	CardFrequencies string    `db:"card_frequencies"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// deckCardJSON is the JSONB shape of one main deck or sideboard line.
type deckCardJSON struct {
	Slug     string `json:"slug"`
	Name     string `json:"name,omitempty"`
	Quantity int    `json:"quantity"`
	Type     string `json:"type,omitempty"`
	Element  string `json:"element,omitempty"`
	Cost     *int   `json:"cost,omitempty"`
}

var decklistUpdateColumns = []string{
	"player_name", "champion", "rank", "main_deck", "sideboard",
	"main_deck_count", "sideboard_count", "card_frequencies",
}

func encodeDeckCards(cards []decklist.Card) string {
	out := make([]deckCardJSON, 0, len(cards))
	for _, c := range cards {
		out = append(out, deckCardJSON(c))
	}
	return encodeJSON(out, "[]")
}

func decodeDeckCards(raw string) ([]decklist.Card, error) {
	rows, err := decodeJSON[[]deckCardJSON](raw)
	if err != nil {
		return nil, err
	}
	out := make([]decklist.Card, 0, len(rows))
	for _, row := range rows {
		out = append(out, decklist.Card(row))
	}
	return out, nil
}

func toDecklistTableModel(d decklist.Decklist, now time.Time) decklistTableModel {
	frequencies := d.CardFrequencies
	if frequencies == nil {
		frequencies = map[string]int{}
	}
	return decklistTableModel{
		EventID:         d.EventID,
		PlayerID:        d.PlayerID,
		PlayerName:      d.PlayerName,
		Champion:        d.Champion,
		Rank:            d.Rank,
		MainDeck:        encodeDeckCards(d.MainDeck),
		Sideboard:       encodeDeckCards(d.Sideboard),
		MainDeckCount:   d.MainDeckCount,
		SideboardCount:  d.SideboardCount,
		CardFrequencies: encodeJSON(frequencies, "{}"),
		UpdatedAt:       now,
	}
}

func (m decklistTableModel) toDomain() (decklist.Decklist, error) {
	mainDeck, err := decodeDeckCards(m.MainDeck)
	if err != nil {
		return decklist.Decklist{}, fmt.Errorf("decode main deck: %w", err)
	}
	sideboard, err := decodeDeckCards(m.Sideboard)
	if err != nil {
		return decklist.Decklist{}, fmt.Errorf("decode sideboard: %w", err)
	}
	frequencies, err := decodeJSON[map[string]int](m.CardFrequencies)
	if err != nil {
		return decklist.Decklist{}, fmt.Errorf("decode card frequencies: %w", err)
	}
	if frequencies == nil {
		frequencies = map[string]int{}
	}

	return decklist.Decklist{
		EventID:         m.EventID,
		PlayerID:        m.PlayerID,
		PlayerName:      m.PlayerName,
		Champion:        m.Champion,
		Rank:            m.Rank,
		MainDeck:        mainDeck,
		Sideboard:       sideboard,
		MainDeckCount:   m.MainDeckCount,
		SideboardCount:  m.SideboardCount,
		CardFrequencies: frequencies,
		UpdatedAt:       m.UpdatedAt,
	}, nil
}
