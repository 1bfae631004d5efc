package entities

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrEmptyTitle        = errors.New("task title is required")
	ErrInvalidImportance = errors.New("invalid importance level")
	ErrEmptyMessage      = errors.New("user message is required")
	ErrInvalidStreakGoal = errors.New("streak goal must be a positive integer")
)

// ImportanceLevel is the priority a task carries, All-Out being the highest.
type ImportanceLevel string

const (
	ImportanceAllOut  ImportanceLevel = "All-Out"
	ImportanceFocused ImportanceLevel = "Focused"
	ImportanceSteady  ImportanceLevel = "Steady"
	ImportanceChill   ImportanceLevel = "Chill"
)

// StatusFilter narrows a task listing by completion state.
type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusActive    StatusFilter = "active"
	StatusCompleted StatusFilter = "completed"
)

// DeadlineFilter narrows a task listing by deadline proximity. Tasks without
// a deadline only match DeadlineAll.
type DeadlineFilter string

const (
	DeadlineAll      DeadlineFilter = "all"
	DeadlineOverdue  DeadlineFilter = "overdue"
	DeadlineToday    DeadlineFilter = "today"
	DeadlineUpcoming DeadlineFilter = "upcoming"
)

// ImportanceAll is the wildcard value for the importance filter.
const ImportanceAll ImportanceLevel = "all"

// FilterOptions selects a subset of the task collection.
type FilterOptions struct {
	Status     StatusFilter    `json:"status"`
	Importance ImportanceLevel `json:"importance"`
	Deadline   DeadlineFilter  `json:"deadline"`
}

// DefaultFilter matches every task.
func DefaultFilter() FilterOptions {
	return FilterOptions{
		Status:     StatusAll,
		Importance: ImportanceAll,
		Deadline:   DeadlineAll,
	}
}

// Task represents a single tracked task.
//
// Invariant: CompletedAt is set if and only if Completed is true.
type Task struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	Goal        *string         `json:"goal,omitempty"`
	Importance  ImportanceLevel `json:"importance"`
	Deadline    *time.Time      `json:"deadline,omitempty"`
	Completed   bool            `json:"completed"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// UserStats holds the streak and star counters for the single local user.
//
// Invariant: TotalStars never goes below zero.
type UserStats struct {
	StreakGoal        int        `json:"streak_goal"`
	CurrentStreak     int        `json:"current_streak"`
	LastCompletedDate *time.Time `json:"last_completed_date,omitempty"`
	TotalStars        int        `json:"total_stars"`
	AutoDeleteEnabled bool       `json:"auto_delete_enabled"`
}

// DefaultUserStats is the state created at first application start.
func DefaultUserStats() UserStats {
	return UserStats{
		StreakGoal:        7,
		AutoDeleteEnabled: true,
	}
}

// Business logic methods for Task

func (t *Task) IsActive() bool {
	return !t.Completed
}

func (t *Task) IsOverdue(now time.Time) bool {
	if t.Deadline == nil {
		return false
	}
	return t.Deadline.Before(now)
}

func (t *Task) IsDueToday(now time.Time) bool {
	if t.Deadline == nil {
		return false
	}
	return SameCalendarDay(*t.Deadline, now)
}

func (t *Task) IsUpcoming(now time.Time) bool {
	if t.Deadline == nil {
		return false
	}
	return t.Deadline.After(now) && !SameCalendarDay(*t.Deadline, now)
}

// MarkCompleted flips the task to completed and stamps CompletedAt.
func (t *Task) MarkCompleted(now time.Time) {
	t.Completed = true
	t.CompletedAt = &now
}

// MarkActive flips the task back to active and clears CompletedAt.
func (t *Task) MarkActive() {
	t.Completed = false
	t.CompletedAt = nil
}

// PurgeEligible reports whether a completed task has aged past the retention
// window and may be removed by the sweeper.
func (t *Task) PurgeEligible(now time.Time, window time.Duration) bool {
	if !t.Completed || t.CompletedAt == nil {
		return false
	}
	return now.Sub(*t.CompletedAt) > window
}

// MentionedIn reports whether the task's title or goal appears as a
// case-insensitive substring of the given message. This is a best-effort
// heuristic, not an intent classifier.
func (t *Task) MentionedIn(message string) bool {
	lowered := strings.ToLower(message)
	if t.Title != "" && strings.Contains(lowered, strings.ToLower(t.Title)) {
		return true
	}
	if t.Goal != nil && *t.Goal != "" && strings.Contains(lowered, strings.ToLower(*t.Goal)) {
		return true
	}
	return false
}

// Summarize reduces the task to the shape sent as chat context.
func (t *Task) Summarize() TaskSummary {
	summary := TaskSummary{
		Title:      t.Title,
		Importance: t.Importance,
		Status:     "pending",
	}
	if t.Completed {
		summary.Status = "completed"
	}
	if t.Goal != nil {
		summary.Goal = *t.Goal
	}
	if t.Description != nil {
		summary.Description = *t.Description
	}
	return summary
}

// Matches reports whether the task passes the given filter.
func (t *Task) Matches(filter FilterOptions, now time.Time) bool {
	switch filter.Status {
	case StatusActive:
		if t.Completed {
			return false
		}
	case StatusCompleted:
		if !t.Completed {
			return false
		}
	}

	if filter.Importance != "" && filter.Importance != ImportanceAll && t.Importance != filter.Importance {
		return false
	}

	switch filter.Deadline {
	case DeadlineOverdue:
		return t.IsOverdue(now)
	case DeadlineToday:
		return t.IsDueToday(now)
	case DeadlineUpcoming:
		return t.IsUpcoming(now)
	}

	return true
}

// SameCalendarDay compares two instants at day granularity in local time.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Utility methods

func (il ImportanceLevel) IsValid() bool {
	switch il {
	case ImportanceAllOut, ImportanceFocused, ImportanceSteady, ImportanceChill:
		return true
	default:
		return false
	}
}

// Rank orders importance levels for sorting, All-Out first.
func (il ImportanceLevel) Rank() int {
	switch il {
	case ImportanceAllOut:
		return 0
	case ImportanceFocused:
		return 1
	case ImportanceSteady:
		return 2
	case ImportanceChill:
		return 3
	default:
		return 4
	}
}

func (sf StatusFilter) IsValid() bool {
	switch sf {
	case StatusAll, StatusActive, StatusCompleted:
		return true
	default:
		return false
	}
}

func (df DeadlineFilter) IsValid() bool {
	switch df {
	case DeadlineAll, DeadlineOverdue, DeadlineToday, DeadlineUpcoming:
		return true
	default:
		return false
	}
}
