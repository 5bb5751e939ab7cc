package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/ga-meta/internal/domain/crawlerstate"
)

type CrawlerStateService struct {
	stateRepo crawlerstate.Repository
}

func NewCrawlerStateService(stateRepo crawlerstate.Repository) *CrawlerStateService {
	return &CrawlerStateService{stateRepo: stateRepo}
}

// Latest returns the checkpoint the next incremental crawl will resume from.
func (s *CrawlerStateService) Latest(ctx context.Context) (crawlerstate.State, error) {
	state, exists, err := s.stateRepo.Latest(ctx)
	if err != nil {
		return crawlerstate.State{}, fmt.Errorf("get latest crawler state: %w", err)
	}
	if !exists {
		return crawlerstate.State{}, fmt.Errorf("%w: no crawler checkpoint recorded", ErrNotFound)
	}
	return state, nil
}
