package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tasktrail/core/internal/domain/entities"
	"github.com/tasktrail/core/internal/ports"
)

// TaskRepository keeps the task collection in memory and writes it back to
// the state store after every mutation. A mutex guards access because the
// HTTP server and the retention sweeper run on separate goroutines.
type TaskRepository struct {
	mu    sync.RWMutex
	tasks []entities.Task
	store ports.StateStore
	now   func() time.Time
}

// NewTaskRepository creates a repository seeded with the given tasks.
// The store may be nil, in which case mutations are not persisted.
func NewTaskRepository(seed []entities.Task, store ports.StateStore) *TaskRepository {
	tasks := make([]entities.Task, len(seed))
	copy(tasks, seed)
	return &TaskRepository{
		tasks: tasks,
		store: store,
		now:   time.Now,
	}
}

// Create appends a new task to the collection.
func (r *TaskRepository) Create(ctx context.Context, task *entities.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks = append(r.tasks, *task)
	return r.persist(ctx)
}

// GetByID returns a copy of the task with the given id.
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.tasks {
		if r.tasks[i].ID == id {
			task := r.tasks[i]
			return &task, nil
		}
	}
	return nil, entities.ErrTaskNotFound
}

// Update replaces the task with a matching id wholesale.
func (r *TaskRepository) Update(ctx context.Context, task *entities.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.tasks {
		if r.tasks[i].ID == task.ID {
			r.tasks[i] = *task
			return r.persist(ctx)
		}
	}
	return entities.ErrTaskNotFound
}

// Delete removes the task with the given id. Deleting an absent id is a
// no-op, not an error.
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.tasks {
		if r.tasks[i].ID == id {
			r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
			return r.persist(ctx)
		}
	}
	return nil
}

// List returns the tasks matching the filter, in insertion order.
func (r *TaskRepository) List(ctx context.Context, filter entities.FilterOptions) ([]*entities.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.now()
	result := make([]*entities.Task, 0, len(r.tasks))
	for i := range r.tasks {
		if r.tasks[i].Matches(filter, now) {
			task := r.tasks[i]
			result = append(result, &task)
		}
	}
	return result, nil
}

// DeleteCompletedBefore purges completed tasks whose CompletedAt is older
// than the cutoff and returns how many were removed.
func (r *TaskRepository) DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.tasks[:0]
	removed := 0
	for _, task := range r.tasks {
		if task.Completed && task.CompletedAt != nil && task.CompletedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, task)
	}
	r.tasks = kept

	if removed == 0 {
		return 0, nil
	}
	return removed, r.persist(ctx)
}

// persist writes the collection back to the state store. Caller holds the lock.
func (r *TaskRepository) persist(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	snapshot := make([]entities.Task, len(r.tasks))
	copy(snapshot, r.tasks)
	return r.store.SaveTasks(ctx, snapshot)
}
