package services

import (
	"context"
	"fmt"

	"github.com/tasktrail/core/internal/domain/entities"
	"github.com/tasktrail/core/internal/infrastructure/logger"
	"github.com/tasktrail/core/internal/ports"
)

// StatsService exposes the single user's statistics and settings.
type StatsService struct {
	statsRepo ports.StatsRepository
	logger    *logger.Logger
}

// NewStatsService creates a new stats service
func NewStatsService(statsRepo ports.StatsRepository, appLogger *logger.Logger) *StatsService {
	return &StatsService{
		statsRepo: statsRepo,
		logger:    appLogger,
	}
}

// GetStats returns the current user statistics.
func (s *StatsService) GetStats(ctx context.Context) (entities.UserStats, error) {
	return s.statsRepo.Get(ctx)
}

// UpdateSettings applies the user-configurable fields: the streak goal and
// the auto-delete toggle.
func (s *StatsService) UpdateSettings(ctx context.Context, req ports.UpdateSettingsRequest) (entities.UserStats, error) {
	stats, err := s.statsRepo.Get(ctx)
	if err != nil {
		return entities.UserStats{}, fmt.Errorf("failed to load user stats: %w", err)
	}

	if req.StreakGoal != nil {
		if *req.StreakGoal < 1 {
			return entities.UserStats{}, entities.ErrInvalidStreakGoal
		}
		stats.StreakGoal = *req.StreakGoal
	}
	if req.AutoDeleteEnabled != nil {
		stats.AutoDeleteEnabled = *req.AutoDeleteEnabled
	}

	if err := s.statsRepo.Save(ctx, stats); err != nil {
		return entities.UserStats{}, fmt.Errorf("failed to save user stats: %w", err)
	}

	s.logger.Info("Settings updated",
		"streak_goal", stats.StreakGoal,
		"auto_delete_enabled", stats.AutoDeleteEnabled,
	)

	return stats, nil
}
