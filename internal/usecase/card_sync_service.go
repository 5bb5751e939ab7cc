package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/ga-meta/internal/domain/card"
	"github.com/riskibarqy/ga-meta/internal/domain/champion"
	"github.com/riskibarqy/ga-meta/internal/domain/decklist"
	"github.com/riskibarqy/ga-meta/internal/domain/standing"
	"github.com/riskibarqy/ga-meta/internal/platform/fetch"
	"github.com/riskibarqy/ga-meta/internal/platform/logging"
)

const defaultCardSyncWorkers = 2

type CardSyncResult struct {
	ChampionsSynced int `json:"champions_synced"`
	CardsSynced     int `json:"cards_synced"`
	Missing         int `json:"missing"`
	Failed          int `json:"failed"`
}

func (r *CardSyncResult) add(other CardSyncResult) {
	r.ChampionsSynced += other.ChampionsSynced
	r.CardsSynced += other.CardsSynced
	r.Missing += other.Missing
	r.Failed += other.Failed
}

// CardSyncService refreshes the card and champion catalogs for every slug the
// crawler has seen in standings and decklists.
type CardSyncService struct {
	source       CardSource
	standingRepo standing.Repository
	decklistRepo decklist.Repository
	cardRepo     card.Repository
	championRepo champion.Repository
	workers      int
	logger       *logging.Logger
}

func NewCardSyncService(
	source CardSource,
	standingRepo standing.Repository,
	decklistRepo decklist.Repository,
	cardRepo card.Repository,
	championRepo champion.Repository,
	workers int,
	logger *logging.Logger,
) *CardSyncService {
	if workers < 1 {
		workers = defaultCardSyncWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CardSyncService{
		source:       source,
		standingRepo: standingRepo,
		decklistRepo: decklistRepo,
		cardRepo:     cardRepo,
		championRepo: championRepo,
		workers:      workers,
		logger:       logger.Named("card_sync"),
	}
}

// SyncChampions fetches every champion referenced by a standing and stores it
// both as a card and as a champion.
func (s *CardSyncService) SyncChampions(ctx context.Context) (CardSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CardSyncService.SyncChampions")
	defer span.End()

	slugs, err := s.standingRepo.DistinctChampions(ctx)
	if err != nil {
		return CardSyncResult{}, fmt.Errorf("list distinct champions: %w", err)
	}
	s.logger.InfoContext(ctx, "syncing champions", "count", len(slugs))

	synced, missing, failed, err := s.syncSlugs(ctx, slugs, func(ctx context.Context, c card.Card) error {
		if err := s.cardRepo.Upsert(ctx, c); err != nil {
			return fmt.Errorf("upsert champion card slug=%s: %w", c.Slug, err)
		}
		if err := s.championRepo.Upsert(ctx, champion.FromCard(c)); err != nil {
			return fmt.Errorf("upsert champion slug=%s: %w", c.Slug, err)
		}
		return nil
	})
	result := CardSyncResult{ChampionsSynced: synced, Missing: missing, Failed: failed}
	if err != nil {
		return result, err
	}

	s.logger.InfoContext(ctx, "champion sync finished", "synced", synced, "missing", missing, "failed", failed)
	return result, nil
}

// SyncCardsFromDecklists fetches every card that appears in a stored decklist.
func (s *CardSyncService) SyncCardsFromDecklists(ctx context.Context) (CardSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CardSyncService.SyncCardsFromDecklists")
	defer span.End()

	slugs, err := s.decklistRepo.DistinctCardSlugs(ctx)
	if err != nil {
		return CardSyncResult{}, fmt.Errorf("list distinct card slugs: %w", err)
	}
	s.logger.InfoContext(ctx, "syncing decklist cards", "count", len(slugs))

	synced, missing, failed, err := s.syncSlugs(ctx, slugs, func(ctx context.Context, c card.Card) error {
		if err := s.cardRepo.Upsert(ctx, c); err != nil {
			return fmt.Errorf("upsert card slug=%s: %w", c.Slug, err)
		}
		return nil
	})
	result := CardSyncResult{CardsSynced: synced, Missing: missing, Failed: failed}
	if err != nil {
		return result, err
	}

	s.logger.InfoContext(ctx, "card sync finished", "synced", synced, "missing", missing, "failed", failed)
	return result, nil
}

// FullSync runs the champion sync, then the decklist card sync.
func (s *CardSyncService) FullSync(ctx context.Context) (CardSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CardSyncService.FullSync")
	defer span.End()

	var result CardSyncResult
	champions, err := s.SyncChampions(ctx)
	result.add(champions)
	if err != nil {
		return result, err
	}

	cards, err := s.SyncCardsFromDecklists(ctx)
	result.add(cards)
	if err != nil {
		return result, err
	}
	return result, nil
}

// syncSlugs fetches slugs on a bounded worker pool. Upstream failures are
// counted; the first store error is returned once all workers finish.
func (s *CardSyncService) syncSlugs(
	ctx context.Context,
	slugs []string,
	store func(ctx context.Context, c card.Card) error,
) (synced, missing, failed int, err error) {
	if len(slugs) == 0 {
		return 0, 0, 0, nil
	}

	pool, err := ants.NewPool(min(s.workers, len(slugs)))
	if err != nil {
		return 0, 0, 0, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		syncedCount  atomic.Int32
		missingCount atomic.Int32
		failedCount  atomic.Int32
		storeErrOnce sync.Once
		storeErr     error
		workers      sync.WaitGroup
	)

	for _, slug := range slugs {
		if ctx.Err() != nil {
			break
		}

		workers.Add(1)
		if submitErr := pool.Submit(func() {
			defer workers.Done()

			out := s.source.FetchCard(ctx, slug)
			switch out.Status {
			case fetch.StatusFound:
			case fetch.StatusError:
				failedCount.Add(1)
				s.logger.WarnContext(ctx, "fetch card failed", "slug", slug, "kind", out.Kind, "error", out.Err)
				return
			default:
				missingCount.Add(1)
				s.logger.DebugContext(ctx, "card not in catalog", "slug", slug, "status", out.Status)
				return
			}

			if err := store(ctx, out.Value); err != nil {
				failedCount.Add(1)
				storeErrOnce.Do(func() { storeErr = err })
				return
			}
			syncedCount.Add(1)
		}); submitErr != nil {
			workers.Done()
			workers.Wait()
			return int(syncedCount.Load()), int(missingCount.Load()), int(failedCount.Load()),
				fmt.Errorf("submit card sync task: %w", submitErr)
		}
	}
	workers.Wait()

	synced, missing, failed = int(syncedCount.Load()), int(missingCount.Load()), int(failedCount.Load())
	if storeErr != nil {
		return synced, missing, failed, storeErr
	}
	if err := ctx.Err(); err != nil {
		return synced, missing, failed, err
	}
	return synced, missing, failed, nil
}
