package omniweb

type decklistDTO struct {
	PlayerID   string        `json:"player_id"`
	PlayerName string        `json:"player_name"`
	Champion   string        `json:"champion"`
	Rank       int           `json:"rank"`
	MainDeck   []deckCardDTO `json:"main_deck"`
	Sideboard  []deckCardDTO `json:"sideboard"`
}

type deckCardDTO struct {
	Slug     string  `json:"slug"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Type     *string `json:"type"`
	Element  *string `json:"element"`
	Cost     *int    `json:"cost"`
}
