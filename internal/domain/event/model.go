package event

import (
	"fmt"
	"strings"
	"time"
)

type Format string

const (
	FormatStandard Format = "STANDARD"
	FormatLimited  Format = "LIMITED"
	FormatSealed   Format = "SEALED"
	FormatDraft    Format = "DRAFT"
	FormatUnknown  Format = "UNKNOWN"
)

// KnownFormats lists every concrete format, in display order.
var KnownFormats = []Format{FormatStandard, FormatLimited, FormatSealed, FormatDraft}

// ParseFormat maps upstream format strings case-insensitively. Anything
// unrecognised becomes FormatUnknown.
func ParseFormat(raw string) Format {
	switch Format(strings.ToUpper(strings.TrimSpace(raw))) {
	case FormatStandard:
		return FormatStandard
	case FormatLimited:
		return FormatLimited
	case FormatSealed:
		return FormatSealed
	case FormatDraft:
		return FormatDraft
	default:
		return FormatUnknown
	}
}

const StatusComplete = "complete"

// interestingPlayerCount is the field size above which an event without
// published decklists is still worth a standings fetch.
const interestingPlayerCount = 60

// Event is a Grand Archive tournament as reported by omnidex.
type Event struct {
	ID           int64
	Name         string
	Format       Format
	Status       string
	Ranked       bool
	PlayerCount  int
	StartDate    *time.Time
	EndDate      *time.Time
	Location     string
	Organizer    string
	Rounds       int
	Tier         string
	HasDecklists bool
	UpdatedAt    time.Time
	CrawledAt    time.Time
}

// Statistics is the best-effort supplement from the statistics endpoint.
type Statistics struct {
	TotalPlayers int
	HasDecklists bool
}

func (e Event) Validate() error {
	if e.ID <= 0 {
		return fmt.Errorf("event id must be greater than zero")
	}
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("event name is required")
	}
	return nil
}

func (e Event) IsComplete() bool {
	return strings.EqualFold(strings.TrimSpace(e.Status), StatusComplete)
}

// IsInteresting reports whether standings and decklists should be fetched.
func (e Event) IsInteresting() bool {
	return e.IsComplete() && e.Ranked && (e.HasDecklists || e.PlayerCount > interestingPlayerCount)
}

// ApplyStatistics overwrites player count and decklist availability.
func (e *Event) ApplyStatistics(stats Statistics) {
	e.PlayerCount = stats.TotalPlayers
	e.HasDecklists = stats.HasDecklists
}
