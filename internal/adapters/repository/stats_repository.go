package repository

import (
	"context"
	"sync"

	"github.com/tasktrail/core/internal/domain/entities"
	"github.com/tasktrail/core/internal/ports"
)

// StatsRepository keeps the single user's statistics in memory and writes
// them back to the state store after every mutation.
type StatsRepository struct {
	mu    sync.RWMutex
	stats entities.UserStats
	store ports.StateStore
}

// NewStatsRepository creates a repository seeded with the given stats.
// The store may be nil, in which case mutations are not persisted.
func NewStatsRepository(seed entities.UserStats, store ports.StateStore) *StatsRepository {
	return &StatsRepository{
		stats: seed,
		store: store,
	}
}

func (r *StatsRepository) Get(ctx context.Context) (entities.UserStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats, nil
}

func (r *StatsRepository) Save(ctx context.Context, stats entities.UserStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats = stats
	if r.store == nil {
		return nil
	}
	return r.store.SaveStats(ctx, stats)
}
