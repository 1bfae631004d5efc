package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tasktrail/core/internal/domain/entities"
	"github.com/tasktrail/core/internal/infrastructure/logger"
	"github.com/tasktrail/core/internal/ports"
)

// TaskService handles task-related operations and drives streak updates on
// completion toggles.
type TaskService struct {
	taskRepo  ports.TaskRepository
	statsRepo ports.StatsRepository
	logger    *logger.Logger
	now       func() time.Time
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo ports.TaskRepository, statsRepo ports.StatsRepository, appLogger *logger.Logger) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		statsRepo: statsRepo,
		logger:    appLogger,
		now:       time.Now,
	}
}

// CreateTask creates a new task
func (s *TaskService) CreateTask(ctx context.Context, req ports.CreateTaskRequest) (*entities.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, entities.ErrEmptyTitle
	}
	if !req.Importance.IsValid() {
		return nil, entities.ErrInvalidImportance
	}

	task := &entities.Task{
		ID:          uuid.New(),
		Title:       title,
		Description: req.Description,
		Goal:        req.Goal,
		Importance:  req.Importance,
		Deadline:    req.Deadline,
		Completed:   false,
		CreatedAt:   s.now(),
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Info("Task created", "task_id", task.ID, "title", task.Title)

	return task, nil
}

// GetTask retrieves a task by ID
func (s *TaskService) GetTask(ctx context.Context, id uuid.UUID) (*entities.Task, error) {
	return s.taskRepo.GetByID(ctx, id)
}

// UpdateTask replaces the task with a matching id wholesale. The id and
// creation timestamp stay immutable.
func (s *TaskService) UpdateTask(ctx context.Context, id uuid.UUID, req ports.UpdateTaskRequest) (*entities.Task, error) {
	existing, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, entities.ErrEmptyTitle
	}
	if !req.Importance.IsValid() {
		return nil, entities.ErrInvalidImportance
	}

	updated := &entities.Task{
		ID:          existing.ID,
		Title:       title,
		Description: req.Description,
		Goal:        req.Goal,
		Importance:  req.Importance,
		Deadline:    req.Deadline,
		Completed:   req.Completed,
		CompletedAt: req.CompletedAt,
		CreatedAt:   existing.CreatedAt,
	}

	// Keep the completion invariant even when the caller sends a stale or
	// inconsistent pair.
	if updated.Completed && updated.CompletedAt == nil {
		now := s.now()
		updated.CompletedAt = &now
	}
	if !updated.Completed {
		updated.CompletedAt = nil
	}

	if err := s.taskRepo.Update(ctx, updated); err != nil {
		return nil, err
	}

	s.logger.Info("Task updated", "task_id", updated.ID, "title", updated.Title)

	return updated, nil
}

// DeleteTask deletes a task. Deleting an absent id is treated as already
// satisfied.
func (s *TaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.logger.Info("Task deleted", "task_id", id)

	return nil
}

// ToggleCompletion flips a task's completed state, stamps or clears
// CompletedAt, and applies the resulting streak/star update.
func (s *TaskService) ToggleCompletion(ctx context.Context, id uuid.UUID) (*ports.ToggleResult, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	wasCompleted := task.Completed
	if wasCompleted {
		task.MarkActive()
	} else {
		task.MarkCompleted(now)
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	stats, err := s.statsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load user stats: %w", err)
	}

	newStats, goalReached := ApplyCompletionToggle(stats, wasCompleted, task.Completed, now)
	if err := s.statsRepo.Save(ctx, newStats); err != nil {
		return nil, fmt.Errorf("failed to save user stats: %w", err)
	}

	s.logger.Info("Task completion toggled",
		"task_id", task.ID,
		"completed", task.Completed,
		"current_streak", newStats.CurrentStreak,
		"total_stars", newStats.TotalStars,
	)

	return &ports.ToggleResult{
		Task:              task,
		JustCompleted:     !wasCompleted && task.Completed,
		StreakGoalReached: goalReached,
		Stats:             newStats,
	}, nil
}

// ListTasks retrieves tasks matching the filter, in insertion order.
func (s *TaskService) ListTasks(ctx context.Context, filter entities.FilterOptions) ([]*entities.Task, error) {
	return s.taskRepo.List(ctx, filter)
}
