package omnidex

type eventDTO struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Format      string  `json:"format"`
	Status      string  `json:"status"`
	Ranked      bool    `json:"ranked"`
	PlayerCount int     `json:"player_count"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	Location    *string `json:"location"`
	Organizer   *string `json:"organizer"`
	Rounds      *int    `json:"rounds"`
	Tier        *string `json:"tier"`
}

type standingDTO struct {
	PlayerID    string `json:"player_id"`
	PlayerName  string `json:"player_name"`
	Rank        int    `json:"rank"`
	Champion    string `json:"champion"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	Draws       int    `json:"draws"`
	HasDecklist *bool  `json:"has_decklist"`
}

type statisticsDTO struct {
	TotalPlayers int  `json:"total_players"`
	HasDecklists bool `json:"has_decklists"`
}
