package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tasktrail/core/internal/domain/entities"
)

// TaskRepository defines the interface for task data operations.
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Task, error)
	Update(ctx context.Context, task *entities.Task) error
	// Delete is idempotent: removing an absent id is treated as already
	// satisfied, not an error.
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter entities.FilterOptions) ([]*entities.Task, error)
	// DeleteCompletedBefore removes completed tasks whose CompletedAt is
	// older than the cutoff and returns how many were purged.
	DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// StatsRepository defines the interface for user statistics operations.
type StatsRepository interface {
	Get(ctx context.Context) (entities.UserStats, error)
	Save(ctx context.Context, stats entities.UserStats) error
}

// StateStore is the persistence contract: two named records (the task
// collection and the user stats) serialized as JSON, loaded at startup and
// written back after every mutation.
type StateStore interface {
	Load(ctx context.Context) ([]entities.Task, entities.UserStats, error)
	SaveTasks(ctx context.Context, tasks []entities.Task) error
	SaveStats(ctx context.Context, stats entities.UserStats) error
}

// CompletionClient performs one chat-completion call against one named
// provider. Implementations must not retry; fallback is the orchestrator's
// responsibility.
type CompletionClient interface {
	Complete(ctx context.Context, cfg entities.ProviderConfig, messages []entities.ChatMessage) (string, error)
}
