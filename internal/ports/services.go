package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tasktrail/core/internal/domain/entities"
)

// TaskService interface for task management operations.
type TaskService interface {
	CreateTask(ctx context.Context, req CreateTaskRequest) (*entities.Task, error)
	GetTask(ctx context.Context, id uuid.UUID) (*entities.Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, req UpdateTaskRequest) (*entities.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
	ToggleCompletion(ctx context.Context, id uuid.UUID) (*ToggleResult, error)
	ListTasks(ctx context.Context, filter entities.FilterOptions) ([]*entities.Task, error)
}

// StatsService interface for user statistics and settings operations.
type StatsService interface {
	GetStats(ctx context.Context) (entities.UserStats, error)
	UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (entities.UserStats, error)
}

// ChatService interface for the chat request orchestration.
type ChatService interface {
	SendMessage(ctx context.Context, req SendMessageRequest) (*SendMessageResult, error)
}

// Request/Response Types

// Task related types
type CreateTaskRequest struct {
	Title       string                   `json:"title" validate:"required"`
	Description *string                  `json:"description"`
	Goal        *string                  `json:"goal"`
	Importance  entities.ImportanceLevel `json:"importance" validate:"required"`
	Deadline    *time.Time               `json:"deadline"`
}

type UpdateTaskRequest struct {
	Title       string                   `json:"title" validate:"required"`
	Description *string                  `json:"description"`
	Goal        *string                  `json:"goal"`
	Importance  entities.ImportanceLevel `json:"importance" validate:"required"`
	Deadline    *time.Time               `json:"deadline"`
	Completed   bool                     `json:"completed"`
	CompletedAt *time.Time               `json:"completed_at"`
}

// ToggleResult reports a completion flip. JustCompleted is true only on the
// false-to-true transition; StreakGoalReached fires at most once, when the
// streak first hits the configured goal.
type ToggleResult struct {
	Task              *entities.Task `json:"task"`
	JustCompleted     bool           `json:"just_completed"`
	StreakGoalReached bool           `json:"streak_goal_reached"`
	Stats             entities.UserStats `json:"stats"`
}

// Settings related types
type UpdateSettingsRequest struct {
	StreakGoal        *int  `json:"streak_goal" validate:"omitempty,min=1"`
	AutoDeleteEnabled *bool `json:"auto_delete_enabled"`
}

// Chat related types. The optional fields mirror the wire contract of the
// chat endpoint: a caller may supply its own prompt, context, hint or
// conversation window, and the orchestrator fills in whatever is absent.
type SendMessageRequest struct {
	SystemPrompt string                  `json:"systemPrompt"`
	TasksContext []entities.TaskSummary  `json:"tasksContext"`
	TaskHint     *entities.TaskSummary   `json:"taskHint"`
	Conversation []entities.ChatMessage  `json:"conversation"`
	UserMessage  string                  `json:"userMessage"`
}

type SendMessageResult struct {
	Reply    string `json:"reply"`
	Provider string `json:"provider"`
}
