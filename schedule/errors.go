package schedule

import "errors"

// Sentinel errors for the scheduling engine. Callers classify failures with
// errors.Is; wrapped messages always carry the offending task or project id.
var (
	// ErrCycleDetected means the dependency graph contains a cycle. The
	// scheduling pass aborts before any date is written.
	ErrCycleDetected = errors.New("cycle detected")

	// ErrInvalidHierarchy means a parent reassignment would create a cycle,
	// a self-parent, or cross a project boundary.
	ErrInvalidHierarchy = errors.New("invalid hierarchy")

	// ErrInvalidState means a status transition is blocked by incomplete
	// subtasks.
	ErrInvalidState = errors.New("invalid state")
)
