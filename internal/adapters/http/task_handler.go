package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tasktrail/core/internal/domain/entities"
	"github.com/tasktrail/core/internal/infrastructure/logger"
	"github.com/tasktrail/core/internal/ports"
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskService ports.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService ports.TaskService, appLogger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      appLogger,
	}
}

// CreateTask handles task creation
func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req ports.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), req)
	if err != nil {
		return mapTaskError(err)
	}

	return c.JSON(http.StatusCreated, task)
}

// GetTask handles getting a task by ID
func (h *TaskHandler) GetTask(c echo.Context) error {
	id, err := parseTaskID(c)
	if err != nil {
		return err
	}

	task, err := h.taskService.GetTask(c.Request().Context(), id)
	if err != nil {
		return mapTaskError(err)
	}

	return c.JSON(http.StatusOK, task)
}

// UpdateTask handles wholesale task replacement
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	id, err := parseTaskID(c)
	if err != nil {
		return err
	}

	var req ports.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), id, req)
	if err != nil {
		return mapTaskError(err)
	}

	return c.JSON(http.StatusOK, task)
}

// DeleteTask handles task deletion; absent ids return success.
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	id, err := parseTaskID(c)
	if err != nil {
		return err
	}

	if err := h.taskService.DeleteTask(c.Request().Context(), id); err != nil {
		return mapTaskError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ToggleCompletion handles the completion flip and returns the streak
// outcome so the UI can drive its celebration states.
func (h *TaskHandler) ToggleCompletion(c echo.Context) error {
	id, err := parseTaskID(c)
	if err != nil {
		return err
	}

	result, err := h.taskService.ToggleCompletion(c.Request().Context(), id)
	if err != nil {
		return mapTaskError(err)
	}

	return c.JSON(http.StatusOK, result)
}

// ListTasks handles filtered task listing
func (h *TaskHandler) ListTasks(c echo.Context) error {
	filter := entities.DefaultFilter()

	if status := c.QueryParam("status"); status != "" {
		filter.Status = entities.StatusFilter(status)
		if !filter.Status.IsValid() {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid status filter")
		}
	}
	if importance := c.QueryParam("importance"); importance != "" {
		filter.Importance = entities.ImportanceLevel(importance)
		if filter.Importance != entities.ImportanceAll && !filter.Importance.IsValid() {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid importance filter")
		}
	}
	if deadline := c.QueryParam("deadline"); deadline != "" {
		filter.Deadline = entities.DeadlineFilter(deadline)
		if !filter.Deadline.IsValid() {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid deadline filter")
		}
	}

	tasks, err := h.taskService.ListTasks(c.Request().Context(), filter)
	if err != nil {
		h.logger.Error("List tasks failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve tasks")
	}

	return c.JSON(http.StatusOK, tasks)
}

// StatsHandler handles user statistics and settings requests
type StatsHandler struct {
	statsService ports.StatsService
	logger       *logger.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService ports.StatsService, appLogger *logger.Logger) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
		logger:       appLogger,
	}
}

// GetStats handles getting the current user statistics
func (h *StatsHandler) GetStats(c echo.Context) error {
	stats, err := h.statsService.GetStats(c.Request().Context())
	if err != nil {
		h.logger.Error("Get stats failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve stats")
	}

	return c.JSON(http.StatusOK, stats)
}

// UpdateSettings handles streak goal / auto-delete changes
func (h *StatsHandler) UpdateSettings(c echo.Context) error {
	var req ports.UpdateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	stats, err := h.statsService.UpdateSettings(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, entities.ErrInvalidStreakGoal) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		h.logger.Error("Update settings failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update settings")
	}

	return c.JSON(http.StatusOK, stats)
}

// Utility functions and helper types

func parseTaskID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}
	return id, nil
}

func mapTaskError(err error) error {
	switch {
	case errors.Is(err, entities.ErrTaskNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Task not found")
	case errors.Is(err, entities.ErrEmptyTitle), errors.Is(err, entities.ErrInvalidImportance):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}

// Response types
type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
