package services

import (
	"time"

	"github.com/tasktrail/core/internal/domain/entities"
)

// ApplyCompletionToggle computes the streak and star updates caused by one
// completion-state transition. It is pure: no I/O, no clock access beyond
// the supplied today.
//
// On a false-to-true transition the star count grows by one, and the streak
// advances only on the first qualifying completion of the day: consecutive
// with yesterday extends it, anything else restarts it at one. On a
// true-to-false transition one star is removed (never below zero) while the
// streak and last completed date are left alone, since another completion
// that day may already have satisfied it.
//
// The returned bool fires when the streak becomes exactly equal to the goal
// as a result of this transition.
func ApplyCompletionToggle(stats entities.UserStats, wasCompleted, nowCompleted bool, today time.Time) (entities.UserStats, bool) {
	if wasCompleted == nowCompleted {
		return stats, false
	}

	if !nowCompleted {
		stats.TotalStars--
		if stats.TotalStars < 0 {
			stats.TotalStars = 0
		}
		return stats, false
	}

	stats.TotalStars++

	if stats.LastCompletedDate != nil && entities.SameCalendarDay(*stats.LastCompletedDate, today) {
		// Already counted a completion today; only stars change.
		return stats, false
	}

	switch {
	case stats.LastCompletedDate == nil:
		stats.CurrentStreak = 1
	case entities.SameCalendarDay(stats.LastCompletedDate.AddDate(0, 0, 1), today):
		stats.CurrentStreak++
	default:
		stats.CurrentStreak = 1
	}

	day := today
	stats.LastCompletedDate = &day

	return stats, stats.CurrentStreak == stats.StreakGoal
}
