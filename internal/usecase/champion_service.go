package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/ga-meta/internal/domain/card"
	"github.com/riskibarqy/ga-meta/internal/domain/champion"
)

type ChampionService struct {
	championRepo champion.Repository
}

func NewChampionService(championRepo champion.Repository) *ChampionService {
	return &ChampionService{championRepo: championRepo}
}

func (s *ChampionService) ListChampions(ctx context.Context) ([]champion.Champion, error) {
	items, err := s.championRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list champions: %w", err)
	}
	return items, nil
}

// GetChampion accepts either a slug or a display name.
func (s *ChampionService) GetChampion(ctx context.Context, slug string) (champion.Champion, error) {
	slug = card.NormalizeSlug(slug)
	if slug == "" {
		return champion.Champion{}, fmt.Errorf("%w: champion slug is required", ErrInvalidInput)
	}

	item, exists, err := s.championRepo.GetBySlug(ctx, slug)
	if err != nil {
		return champion.Champion{}, fmt.Errorf("get champion: %w", err)
	}
	if !exists {
		return champion.Champion{}, fmt.Errorf("%w: champion=%s", ErrNotFound, slug)
	}
	return item, nil
}
