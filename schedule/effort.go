package schedule

import (
	"time"

	"github.com/GoCodeAlone/planner/task"
)

// Default durations per effort level.
const (
	simpleDuration   = 24 * time.Hour
	moderateDuration = 3 * 24 * time.Hour
	complexDuration  = 5 * 24 * time.Hour
)

// EffortDuration maps an effort level to its fixed default duration.
// Unknown levels map to zero.
func EffortDuration(level task.EffortLevel) time.Duration {
	switch level {
	case task.EffortSimple:
		return simpleDuration
	case task.EffortModerate:
		return moderateDuration
	case task.EffortComplex:
		return complexDuration
	default:
		return 0
	}
}

// ResolveEstimate returns the task's duration in milliseconds. A positive
// explicit estimate is sticky; otherwise the effort level decides.
func ResolveEstimate(t *task.Task) int64 {
	if t.TimeEstimate > 0 {
		return t.TimeEstimate
	}
	return EffortDuration(t.EffortLevel).Milliseconds()
}

// NormalizeEnd clamps an instant to the last moment of its calendar day,
// 23:59:59.999. Every end-date computation in the engine goes through this.
func NormalizeEnd(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999_000_000, t.Location())
}

// endDateFor computes a task's end date from a start instant and its
// resolved estimate. The estimate is applied exclusive of its final instant
// so a duration landing exactly on midnight ends on the preceding day: a
// 5-day task starting Jan 1 00:00 ends Jan 5 23:59:59.999, not Jan 6.
func endDateFor(t *task.Task, start time.Time) time.Time {
	est := time.Duration(ResolveEstimate(t)) * time.Millisecond
	return NormalizeEnd(start.Add(est - time.Millisecond))
}
