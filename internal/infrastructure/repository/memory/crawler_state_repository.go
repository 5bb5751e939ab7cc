package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/ga-meta/internal/domain/crawlerstate"
)

// CrawlerStateRepository keeps checkpoints in append order.
type CrawlerStateRepository struct {
	mu     sync.RWMutex
	states []crawlerstate.State
	nextID int64
}

func NewCrawlerStateRepository(seed ...crawlerstate.State) *CrawlerStateRepository {
	r := &CrawlerStateRepository{}
	for _, s := range seed {
		_ = r.Append(context.Background(), s)
	}
	return r
}

func (r *CrawlerStateRepository) Append(_ context.Context, state crawlerstate.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	state.ID = r.nextID
	r.states = append(r.states, state)
	return nil
}

func (r *CrawlerStateRepository) Latest(_ context.Context) (crawlerstate.State, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.states) == 0 {
		return crawlerstate.State{}, false, nil
	}

	latest := r.states[0]
	for _, s := range r.states[1:] {
		if s.LastCrawl.After(latest.LastCrawl) || (s.LastCrawl.Equal(latest.LastCrawl) && s.ID > latest.ID) {
			latest = s
		}
	}
	return latest, true, nil
}

// All returns every checkpoint in append order.
func (r *CrawlerStateRepository) All() []crawlerstate.State {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]crawlerstate.State(nil), r.states...)
}
