package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tasktrail/core/internal/domain/entities"
	"github.com/tasktrail/core/internal/infrastructure/config"
)

// state is the on-disk document: two named records, the task collection and
// the user stats, in a single versioned JSON file.
type state struct {
	Version int                `json:"version"`
	Tasks   []entities.Task    `json:"tasks"`
	Stats   entities.UserStats `json:"user_stats"`
}

// JSONStore persists application state to a local JSON file. It satisfies
// ports.StateStore. Writes happen after every mutation, so they are kept
// cheap: marshal and atomically swap the file.
type JSONStore struct {
	mu   sync.Mutex
	path string
}

// New creates a store backed by the configured file path.
func New(cfg config.StorageConfig) *JSONStore {
	return &JSONStore{path: cfg.Path}
}

// Load reads both records from disk. A missing file is not an error: it
// yields an empty task list and default user stats, matching first start.
func (s *JSONStore) Load(ctx context.Context) ([]entities.Task, entities.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, entities.DefaultUserStats(), nil
		}
		return nil, entities.UserStats{}, fmt.Errorf("failed to read state file: %w", err)
	}

	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, entities.UserStats{}, fmt.Errorf("failed to parse state file: %w", err)
	}

	if st.Stats.StreakGoal == 0 {
		st.Stats.StreakGoal = entities.DefaultUserStats().StreakGoal
	}

	return st.Tasks, st.Stats, nil
}

// SaveTasks replaces the task record, preserving the stats record.
func (s *JSONStore) SaveTasks(ctx context.Context, tasks []entities.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.read()
	if err != nil {
		return err
	}
	st.Tasks = tasks
	return s.write(st)
}

// SaveStats replaces the stats record, preserving the task record.
func (s *JSONStore) SaveStats(ctx context.Context, stats entities.UserStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.read()
	if err != nil {
		return err
	}
	st.Stats = stats
	return s.write(st)
}

// Ping reports whether the state file location is usable.
func (s *JSONStore) Ping() error {
	dir := filepath.Dir(s.path)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("state directory unavailable: %w", err)
	}
	return nil
}

func (s *JSONStore) read() (state, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return state{Version: 1, Stats: entities.DefaultUserStats()}, nil
		}
		return state{}, fmt.Errorf("failed to read state file: %w", err)
	}

	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return state{}, fmt.Errorf("failed to parse state file: %w", err)
	}
	return st, nil
}

func (s *JSONStore) write(st state) error {
	if st.Version == 0 {
		st.Version = 1
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize state: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	return nil
}
