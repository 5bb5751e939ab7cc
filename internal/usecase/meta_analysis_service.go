package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/ga-meta/internal/domain/card"
	"github.com/riskibarqy/ga-meta/internal/domain/decklist"
	"github.com/riskibarqy/ga-meta/internal/domain/event"
	"github.com/riskibarqy/ga-meta/internal/domain/meta"
	"github.com/riskibarqy/ga-meta/internal/domain/standing"
	"github.com/riskibarqy/ga-meta/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

// AllFormats labels snapshot rows computed without a format filter.
const AllFormats = "ALL"

// MetaQuery selects the base event set: complete, ranked events, optionally
// restricted to one format and to events started within the last Days days.
type MetaQuery struct {
	Format *event.Format
	Days   *int
	Limit  int
}

func (q MetaQuery) validate() error {
	if q.Days != nil && *q.Days < 1 {
		return fmt.Errorf("%w: days must be >= 1", ErrInvalidInput)
	}
	if q.Limit < 0 {
		return fmt.Errorf("%w: limit must be >= 0", ErrInvalidInput)
	}
	return nil
}

type FormatSnapshot struct {
	Format              string                     `json:"format"`
	Events              int                        `json:"events"`
	Breakdown           []meta.Breakdown           `json:"breakdown"`
	ChampionPerformance []meta.ChampionPerformance `json:"champion_performance"`
	CardPerformance     []meta.CardPerformance     `json:"card_performance"`
}

type MetaSnapshot struct {
	Days        int              `json:"days"`
	GeneratedAt time.Time        `json:"generated_at"`
	Formats     []FormatSnapshot `json:"formats"`
}

type MetaAnalysisService struct {
	eventRepo    event.Repository
	standingRepo standing.Repository
	decklistRepo decklist.Repository
	cardRepo     card.Repository
	logger       *logging.Logger
	now          func() time.Time
}

func NewMetaAnalysisService(
	eventRepo event.Repository,
	standingRepo standing.Repository,
	decklistRepo decklist.Repository,
	cardRepo card.Repository,
	logger *logging.Logger,
) *MetaAnalysisService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MetaAnalysisService{
		eventRepo:    eventRepo,
		standingRepo: standingRepo,
		decklistRepo: decklistRepo,
		cardRepo:     cardRepo,
		logger:       logger.Named("meta"),
		now:          time.Now,
	}
}

func (s *MetaAnalysisService) Breakdown(ctx context.Context, q MetaQuery) ([]meta.Breakdown, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MetaAnalysisService.Breakdown")
	defer span.End()

	decks, err := s.selectDecklists(ctx, q)
	if err != nil {
		return nil, err
	}
	return meta.BuildBreakdown(decks), nil
}

func (s *MetaAnalysisService) ChampionPerformance(ctx context.Context, q MetaQuery) ([]meta.ChampionPerformance, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MetaAnalysisService.ChampionPerformance")
	defer span.End()

	if err := q.validate(); err != nil {
		return nil, err
	}
	eventIDs, err := s.selectEventIDs(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(eventIDs) == 0 {
		return []meta.ChampionPerformance{}, nil
	}

	standings, err := s.standingRepo.ListByEvents(ctx, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("list standings for meta: %w", err)
	}
	return meta.BuildChampionPerformance(standings, len(eventIDs)), nil
}

func (s *MetaAnalysisService) CardPerformance(ctx context.Context, q MetaQuery) ([]meta.CardPerformance, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MetaAnalysisService.CardPerformance")
	defer span.End()

	decks, err := s.selectDecklists(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(decks) == 0 {
		return []meta.CardPerformance{}, nil
	}

	names, err := s.cardRepo.NamesBySlugs(ctx, meta.CardSlugs(decks))
	if err != nil {
		return nil, fmt.Errorf("load card names: %w", err)
	}
	return meta.BuildCardPerformance(decks, names, q.Limit), nil
}

// Snapshot computes every rollup for each known format and for all formats
// combined. Formats run concurrently; the first failure cancels the rest.
func (s *MetaAnalysisService) Snapshot(ctx context.Context, days int) (MetaSnapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MetaAnalysisService.Snapshot")
	defer span.End()

	if days < 1 {
		return MetaSnapshot{}, fmt.Errorf("%w: days must be >= 1", ErrInvalidInput)
	}

	formats := make([]*event.Format, 0, len(event.KnownFormats)+1)
	formats = append(formats, nil)
	for i := range event.KnownFormats {
		formats = append(formats, &event.KnownFormats[i])
	}

	p := pool.NewWithResults[FormatSnapshot]().
		WithContext(ctx).
		WithCancelOnError().
		WithMaxGoroutines(len(formats))
	for _, format := range formats {
		q := MetaQuery{Format: format, Days: &days}
		p.Go(func(ctx context.Context) (FormatSnapshot, error) {
			return s.formatSnapshot(ctx, q)
		})
	}

	rows, err := p.Wait()
	if err != nil {
		return MetaSnapshot{}, err
	}
	sort.Slice(rows, func(i, j int) bool { return formatOrder(rows[i].Format) < formatOrder(rows[j].Format) })

	for _, row := range rows {
		top := ""
		if len(row.Breakdown) > 0 {
			top = row.Breakdown[0].Champion
		}
		s.logger.InfoContext(ctx, "meta snapshot computed",
			"format", row.Format,
			"days", days,
			"events", row.Events,
			"champions", len(row.ChampionPerformance),
			"cards", len(row.CardPerformance),
			"top_champion", top,
		)
	}

	return MetaSnapshot{
		Days:        days,
		GeneratedAt: s.now().UTC(),
		Formats:     rows,
	}, nil
}

func (s *MetaAnalysisService) formatSnapshot(ctx context.Context, q MetaQuery) (FormatSnapshot, error) {
	label := AllFormats
	if q.Format != nil {
		label = string(*q.Format)
	}

	eventIDs, err := s.selectEventIDs(ctx, q)
	if err != nil {
		return FormatSnapshot{}, err
	}
	row := FormatSnapshot{
		Format:              label,
		Events:              len(eventIDs),
		Breakdown:           []meta.Breakdown{},
		ChampionPerformance: []meta.ChampionPerformance{},
		CardPerformance:     []meta.CardPerformance{},
	}
	if len(eventIDs) == 0 {
		return row, nil
	}

	decks, err := s.decklistRepo.List(ctx, decklist.Filter{EventIDs: eventIDs})
	if err != nil {
		return FormatSnapshot{}, fmt.Errorf("list decklists for %s snapshot: %w", label, err)
	}
	standings, err := s.standingRepo.ListByEvents(ctx, eventIDs)
	if err != nil {
		return FormatSnapshot{}, fmt.Errorf("list standings for %s snapshot: %w", label, err)
	}
	names, err := s.cardRepo.NamesBySlugs(ctx, meta.CardSlugs(decks))
	if err != nil {
		return FormatSnapshot{}, fmt.Errorf("load card names for %s snapshot: %w", label, err)
	}

	row.Breakdown = meta.BuildBreakdown(decks)
	row.ChampionPerformance = meta.BuildChampionPerformance(standings, len(eventIDs))
	row.CardPerformance = meta.BuildCardPerformance(decks, names, q.Limit)
	return row, nil
}

func (s *MetaAnalysisService) selectDecklists(ctx context.Context, q MetaQuery) ([]decklist.Decklist, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	eventIDs, err := s.selectEventIDs(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(eventIDs) == 0 {
		return nil, nil
	}

	decks, err := s.decklistRepo.List(ctx, decklist.Filter{EventIDs: eventIDs})
	if err != nil {
		return nil, fmt.Errorf("list decklists for meta: %w", err)
	}
	return decks, nil
}

func (s *MetaAnalysisService) selectEventIDs(ctx context.Context, q MetaQuery) ([]int64, error) {
	events, err := s.eventRepo.List(ctx, eventSelection(q.Format, q.Days, s.now()))
	if err != nil {
		return nil, fmt.Errorf("select events for meta: %w", err)
	}

	ids := make([]int64, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	return ids, nil
}

// eventSelection is the base filter shared by every aggregate: complete,
// ranked events in an optional format and rolling window.
func eventSelection(format *event.Format, days *int, now time.Time) event.Filter {
	filter := event.Filter{
		Format:       format,
		CompleteOnly: true,
		RankedOnly:   true,
	}
	if days != nil {
		since := now.UTC().AddDate(0, 0, -*days)
		filter.Since = &since
	}
	return filter
}

func formatOrder(label string) int {
	if label == AllFormats {
		return -1
	}
	for i, f := range event.KnownFormats {
		if string(f) == label {
			return i
		}
	}
	return len(event.KnownFormats)
}
