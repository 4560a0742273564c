package schedule

import (
	"fmt"

	"github.com/GoCodeAlone/planner/task"
)

// CanStart reports whether a task may transition to IN_PROGRESS or DONE:
// every direct, non-deleted subtask must be DONE. A task with no subtasks
// can always start. The check is shallow; it never inspects grandchildren.
func (e *Engine) CanStart(taskID string) (bool, error) {
	if _, err := e.tasks.Get(taskID); err != nil {
		return false, err
	}
	children, err := e.tasks.ListChildren(taskID)
	if err != nil {
		return false, fmt.Errorf("gate check %s: %w", taskID, err)
	}
	for _, c := range children {
		if c.Deleted() {
			continue
		}
		if c.Status != task.StatusDone {
			return false, nil
		}
	}
	return true, nil
}
