package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/ga-meta/internal/domain/standing"
)

type standingTableModel struct {
	EventID      int64           `db:"event_id"`
	PlayerID     string          `db:"player_id"`
	PlayerName   string          `db:"player_name"`
	Rank         int             `db:"rank"`
	Champion     string          `db:"champion"`
	Wins         int             `db:"wins"`
	Losses       int             `db:"losses"`
	Draws        int             `db:"draws"`
	MatchWinRate sql.NullFloat64 `db:"match_win_rate"`
	HasDecklist  bool            `db:"has_decklist"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

var standingUpdateColumns = []string{
	"player_name", "rank", "champion", "wins", "losses", "draws", "match_win_rate", "has_decklist",
}

func toStandingTableModel(s standing.Standing, now time.Time) standingTableModel {
	return standingTableModel{
		EventID:      s.EventID,
		PlayerID:     s.PlayerID,
		PlayerName:   s.PlayerName,
		Rank:         s.Rank,
		Champion:     s.Champion,
		Wins:         s.Wins,
		Losses:       s.Losses,
		Draws:        s.Draws,
		MatchWinRate: toNullFloat(s.MatchWinRate),
		HasDecklist:  s.HasDecklist,
		UpdatedAt:    now,
	}
}

func (m standingTableModel) toDomain() standing.Standing {
	return standing.Standing{
		EventID:      m.EventID,
		PlayerID:     m.PlayerID,
		PlayerName:   m.PlayerName,
		Rank:         m.Rank,
		Champion:     m.Champion,
		Wins:         m.Wins,
		Losses:       m.Losses,
		Draws:        m.Draws,
		MatchWinRate: nullableFloat(m.MatchWinRate),
		HasDecklist:  m.HasDecklist,
		UpdatedAt:    m.UpdatedAt,
	}
}
