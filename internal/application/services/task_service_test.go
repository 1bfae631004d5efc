package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktrail/core/internal/adapters/repository"
	"github.com/tasktrail/core/internal/domain/entities"
	"github.com/tasktrail/core/internal/infrastructure/logger"
	"github.com/tasktrail/core/internal/ports"
)

func newTestTask(title string, importance entities.ImportanceLevel, goal *string) entities.Task {
	return entities.Task{
		ID:         uuid.New(),
		Title:      title,
		Goal:       goal,
		Importance: importance,
		CreatedAt:  time.Now(),
	}
}

func newTaskServiceForTest(seed []entities.Task) (*TaskService, *repository.TaskRepository, *repository.StatsRepository) {
	taskRepo := repository.NewTaskRepository(seed, nil)
	statsRepo := repository.NewStatsRepository(entities.DefaultUserStats(), nil)
	return NewTaskService(taskRepo, statsRepo, logger.NewNop()), taskRepo, statsRepo
}

func TestCreateTask(t *testing.T) {
	svc, _, _ := newTaskServiceForTest(nil)

	task, err := svc.CreateTask(context.Background(), ports.CreateTaskRequest{
		Title:      "  Write report  ",
		Importance: entities.ImportanceFocused,
	})
	require.NoError(t, err)

	assert.Equal(t, "Write report", task.Title)
	assert.False(t, task.Completed)
	assert.Nil(t, task.CompletedAt)
	assert.NotEqual(t, uuid.Nil, task.ID)

	stored, err := svc.GetTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Title, stored.Title)
}

func TestCreateTask_Validation(t *testing.T) {
	svc, _, _ := newTaskServiceForTest(nil)

	_, err := svc.CreateTask(context.Background(), ports.CreateTaskRequest{
		Title:      "   ",
		Importance: entities.ImportanceChill,
	})
	assert.ErrorIs(t, err, entities.ErrEmptyTitle)

	_, err = svc.CreateTask(context.Background(), ports.CreateTaskRequest{
		Title:      "Valid title",
		Importance: "urgent",
	})
	assert.ErrorIs(t, err, entities.ErrInvalidImportance)
}

func TestUpdateTask_RepairsCompletionInvariant(t *testing.T) {
	task := newTestTask("Write report", entities.ImportanceFocused, nil)
	svc, _, _ := newTaskServiceForTest([]entities.Task{task})

	// Completed without a timestamp: the service stamps one.
	updated, err := svc.UpdateTask(context.Background(), task.ID, ports.UpdateTaskRequest{
		Title:      "Write report",
		Importance: entities.ImportanceFocused,
		Completed:  true,
	})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.NotNil(t, updated.CompletedAt)

	// Active with a stale timestamp: the service clears it.
	stale := time.Now()
	updated, err = svc.UpdateTask(context.Background(), task.ID, ports.UpdateTaskRequest{
		Title:       "Write report",
		Importance:  entities.ImportanceFocused,
		Completed:   false,
		CompletedAt: &stale,
	})
	require.NoError(t, err)
	assert.False(t, updated.Completed)
	assert.Nil(t, updated.CompletedAt)
}

func TestUpdateTask_PreservesIdentity(t *testing.T) {
	task := newTestTask("Write report", entities.ImportanceFocused, nil)
	svc, _, _ := newTaskServiceForTest([]entities.Task{task})

	updated, err := svc.UpdateTask(context.Background(), task.ID, ports.UpdateTaskRequest{
		Title:      "Renamed",
		Importance: entities.ImportanceSteady,
	})
	require.NoError(t, err)

	assert.Equal(t, task.ID, updated.ID)
	assert.Equal(t, task.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "Renamed", updated.Title)
}

func TestUpdateTask_NotFound(t *testing.T) {
	svc, _, _ := newTaskServiceForTest(nil)

	_, err := svc.UpdateTask(context.Background(), uuid.New(), ports.UpdateTaskRequest{
		Title:      "Anything",
		Importance: entities.ImportanceChill,
	})
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)
}

func TestDeleteTask_AbsentIDIsNoError(t *testing.T) {
	svc, _, _ := newTaskServiceForTest(nil)

	assert.NoError(t, svc.DeleteTask(context.Background(), uuid.New()))
}

func TestToggleCompletion_CompleteThenUncomplete(t *testing.T) {
	task := newTestTask("Write report", entities.ImportanceFocused, nil)
	svc, _, statsRepo := newTaskServiceForTest([]entities.Task{task})

	result, err := svc.ToggleCompletion(context.Background(), task.ID)
	require.NoError(t, err)

	assert.True(t, result.Task.Completed)
	assert.NotNil(t, result.Task.CompletedAt)
	assert.True(t, result.JustCompleted)
	assert.Equal(t, 1, result.Stats.CurrentStreak)
	assert.Equal(t, 1, result.Stats.TotalStars)

	result, err = svc.ToggleCompletion(context.Background(), task.ID)
	require.NoError(t, err)

	assert.False(t, result.Task.Completed)
	assert.Nil(t, result.Task.CompletedAt)
	assert.False(t, result.JustCompleted)
	// Stars roll back, the streak does not.
	assert.Equal(t, 0, result.Stats.TotalStars)
	assert.Equal(t, 1, result.Stats.CurrentStreak)

	stats, err := statsRepo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalStars)
}

func TestToggleCompletion_StreakGoalReached(t *testing.T) {
	task := newTestTask("Write report", entities.ImportanceFocused, nil)
	svc, _, statsRepo := newTaskServiceForTest([]entities.Task{task})

	yesterday := time.Now().AddDate(0, 0, -1)
	require.NoError(t, statsRepo.Save(context.Background(), entities.UserStats{
		StreakGoal:        7,
		CurrentStreak:     6,
		LastCompletedDate: &yesterday,
		TotalStars:        6,
		AutoDeleteEnabled: true,
	}))

	result, err := svc.ToggleCompletion(context.Background(), task.ID)
	require.NoError(t, err)

	assert.True(t, result.StreakGoalReached)
	assert.Equal(t, 7, result.Stats.CurrentStreak)
}

func TestToggleCompletion_NotFound(t *testing.T) {
	svc, _, _ := newTaskServiceForTest(nil)

	_, err := svc.ToggleCompletion(context.Background(), uuid.New())
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)
}
