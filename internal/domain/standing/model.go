package standing

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/ga-meta/internal/domain/card"
)

// Standing is one player's final placement at an event, keyed by (EventID, PlayerID).
type Standing struct {
	EventID      int64
	PlayerID     string
	PlayerName   string
	Rank         int
	Champion     string
	Wins         int
	Losses       int
	Draws        int
	MatchWinRate *float64
	HasDecklist  bool
	UpdatedAt    time.Time
}

func (s Standing) Validate() error {
	if s.EventID <= 0 {
		return fmt.Errorf("standing event id must be greater than zero")
	}
	if strings.TrimSpace(s.PlayerID) == "" {
		return fmt.Errorf("standing player id is required")
	}
	return nil
}

func (s Standing) TotalMatches() int {
	return s.Wins + s.Losses + s.Draws
}

// Derive normalises the champion slug and computes the match win rate. The
// rate stays nil for players with no recorded matches.
func (s *Standing) Derive() {
	s.Champion = card.NormalizeSlug(s.Champion)
	s.MatchWinRate = nil
	if total := s.TotalMatches(); total > 0 {
		rate := float64(s.Wins) / float64(total)
		s.MatchWinRate = &rate
	}
}
