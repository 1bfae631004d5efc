package services

import (
	"context"
	"time"

	"github.com/tasktrail/core/internal/infrastructure/config"
	"github.com/tasktrail/core/internal/infrastructure/logger"
	"github.com/tasktrail/core/internal/ports"
)

// RetentionSweeper periodically purges completed tasks older than the
// retention window, when the user has auto-delete enabled. The purge is
// destructive; there is no soft delete or undo.
type RetentionSweeper struct {
	taskRepo  ports.TaskRepository
	statsRepo ports.StatsRepository
	interval  time.Duration
	window    time.Duration
	logger    *logger.Logger
	now       func() time.Time
	stop      chan struct{}
	done      chan struct{}
}

// NewRetentionSweeper creates a new retention sweeper
func NewRetentionSweeper(taskRepo ports.TaskRepository, statsRepo ports.StatsRepository, cfg config.RetentionConfig, appLogger *logger.Logger) *RetentionSweeper {
	return &RetentionSweeper{
		taskRepo:  taskRepo,
		statsRepo: statsRepo,
		interval:  cfg.Interval,
		window:    cfg.Window,
		logger:    appLogger.WithComponent("retention"),
		now:       time.Now,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the sweep loop. The exact cadence is not a correctness
// requirement; the purge just has to happen eventually.
func (s *RetentionSweeper) Start(ctx context.Context) {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if _, err := s.SweepOnce(ctx); err != nil {
					s.logger.Errorw("Retention sweep failed", "error", err.Error())
				}
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop terminates the sweep loop and waits for it to exit.
func (s *RetentionSweeper) Stop() {
	close(s.stop)
	<-s.done
}

// SweepOnce runs a single purge pass and returns how many tasks were
// removed. When auto-delete is disabled it removes nothing.
func (s *RetentionSweeper) SweepOnce(ctx context.Context) (int, error) {
	stats, err := s.statsRepo.Get(ctx)
	if err != nil {
		return 0, err
	}
	if !stats.AutoDeleteEnabled {
		return 0, nil
	}

	cutoff := s.now().Add(-s.window)
	removed, err := s.taskRepo.DeleteCompletedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		s.logger.Infow("Purged completed tasks past retention window",
			"removed", removed,
			"window", s.window.String(),
		)
	}

	return removed, nil
}
