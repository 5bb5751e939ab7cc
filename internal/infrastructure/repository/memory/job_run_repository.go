package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/ga-meta/internal/domain/jobrun"
)

type JobRunRepository struct {
	mu    sync.RWMutex
	items map[string]jobrun.Run
}

func NewJobRunRepository() *JobRunRepository {
	return &JobRunRepository{items: make(map[string]jobrun.Run)}
}

func (r *JobRunRepository) Upsert(_ context.Context, run jobrun.Run) error {
	r.mu.Lock()
	r.items[run.ID] = run
	r.mu.Unlock()
	return nil
}

func (r *JobRunRepository) List(_ context.Context, filter jobrun.Filter) ([]jobrun.Run, error) {
	r.mu.RLock()
	out := make([]jobrun.Run, 0, len(r.items))
	for _, run := range r.items {
		if filter.JobName != "" && run.JobName != filter.JobName {
			continue
		}
		out = append(out, run)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].ID > out[j].ID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}
