package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasktrail/core/internal/adapters/repository"
	"github.com/tasktrail/core/internal/application/services"
	"github.com/tasktrail/core/internal/domain/entities"
	"github.com/tasktrail/core/internal/infrastructure/logger"
	"github.com/tasktrail/core/internal/ports"
)

type taskHandlerFixture struct {
	echo         *echo.Echo
	taskHandler  *TaskHandler
	statsHandler *StatsHandler
	taskRepo     *repository.TaskRepository
}

func newTaskHandlerFixture(seed []entities.Task) *taskHandlerFixture {
	taskRepo := repository.NewTaskRepository(seed, nil)
	statsRepo := repository.NewStatsRepository(entities.DefaultUserStats(), nil)
	nop := logger.NewNop()

	return &taskHandlerFixture{
		echo:         newTestEcho(),
		taskHandler:  NewTaskHandler(services.NewTaskService(taskRepo, statsRepo, nop), nop),
		statsHandler: NewStatsHandler(services.NewStatsService(statsRepo, nop), nop),
		taskRepo:     taskRepo,
	}
}

func (f *taskHandlerFixture) do(method, target, body string, handler echo.HandlerFunc, pathParams ...string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := f.echo.NewContext(req, rec)
	for i := 0; i+1 < len(pathParams); i += 2 {
		c.SetParamNames(pathParams[i])
		c.SetParamValues(pathParams[i+1])
	}
	if err := handler(c); err != nil {
		f.echo.HTTPErrorHandler(err, c)
	}
	return rec
}

func seedTask(title string, importance entities.ImportanceLevel) entities.Task {
	return entities.Task{
		ID:         uuid.New(),
		Title:      title,
		Importance: importance,
		CreatedAt:  time.Now(),
	}
}

func TestCreateTaskHandler(t *testing.T) {
	f := newTaskHandlerFixture(nil)

	rec := f.do(http.MethodPost, "/api/v1/tasks", `{"title":"Write report","importance":"Focused"}`, f.taskHandler.CreateTask)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var task entities.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, entities.ImportanceFocused, task.Importance)
	assert.False(t, task.Completed)
}

func TestCreateTaskHandler_InvalidImportance(t *testing.T) {
	f := newTaskHandlerFixture(nil)

	rec := f.do(http.MethodPost, "/api/v1/tasks", `{"title":"Write report","importance":"urgent"}`, f.taskHandler.CreateTask)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTaskHandler_NotFound(t *testing.T) {
	f := newTaskHandlerFixture(nil)

	rec := f.do(http.MethodGet, "/api/v1/tasks/"+uuid.NewString(), "", f.taskHandler.GetTask, "id", uuid.NewString())

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetTaskHandler_InvalidID(t *testing.T) {
	f := newTaskHandlerFixture(nil)

	rec := f.do(http.MethodGet, "/api/v1/tasks/not-a-uuid", "", f.taskHandler.GetTask, "id", "not-a-uuid")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteTaskHandler_AbsentIDSucceeds(t *testing.T) {
	f := newTaskHandlerFixture(nil)

	rec := f.do(http.MethodDelete, "/api/v1/tasks/"+uuid.NewString(), "", f.taskHandler.DeleteTask, "id", uuid.NewString())

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestToggleCompletionHandler(t *testing.T) {
	task := seedTask("Write report", entities.ImportanceFocused)
	f := newTaskHandlerFixture([]entities.Task{task})

	rec := f.do(http.MethodPost, fmt.Sprintf("/api/v1/tasks/%s/toggle", task.ID), "", f.taskHandler.ToggleCompletion, "id", task.ID.String())

	assert.Equal(t, http.StatusOK, rec.Code)

	var result ports.ToggleResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Task.Completed)
	assert.True(t, result.JustCompleted)
	assert.Equal(t, 1, result.Stats.CurrentStreak)
	assert.Equal(t, 1, result.Stats.TotalStars)
}

func TestListTasksHandler_FilterValidation(t *testing.T) {
	active := seedTask("active one", entities.ImportanceSteady)
	done := seedTask("done one", entities.ImportanceChill)
	now := time.Now()
	done.Completed = true
	done.CompletedAt = &now
	f := newTaskHandlerFixture([]entities.Task{active, done})

	rec := f.do(http.MethodGet, "/api/v1/tasks?status=active", "", f.taskHandler.ListTasks)
	assert.Equal(t, http.StatusOK, rec.Code)

	var tasks []entities.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "active one", tasks[0].Title)

	rec = f.do(http.MethodGet, "/api/v1/tasks?status=bogus", "", f.taskHandler.ListTasks)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/api/v1/tasks?deadline=yesterday", "", f.taskHandler.ListTasks)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetStatsHandler(t *testing.T) {
	f := newTaskHandlerFixture(nil)

	rec := f.do(http.MethodGet, "/api/v1/stats", "", f.statsHandler.GetStats)

	assert.Equal(t, http.StatusOK, rec.Code)

	var stats entities.UserStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 7, stats.StreakGoal)
	assert.True(t, stats.AutoDeleteEnabled)
}

func TestUpdateSettingsHandler(t *testing.T) {
	f := newTaskHandlerFixture(nil)

	rec := f.do(http.MethodPut, "/api/v1/settings", `{"streak_goal":21,"auto_delete_enabled":false}`, f.statsHandler.UpdateSettings)

	assert.Equal(t, http.StatusOK, rec.Code)

	var stats entities.UserStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 21, stats.StreakGoal)
	assert.False(t, stats.AutoDeleteEnabled)
}

func TestUpdateSettingsHandler_RejectsZeroGoal(t *testing.T) {
	f := newTaskHandlerFixture(nil)

	rec := f.do(http.MethodPut, "/api/v1/settings", `{"streak_goal":0}`, f.statsHandler.UpdateSettings)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
