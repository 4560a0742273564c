package schedule

import (
	"fmt"

	"github.com/GoCodeAlone/planner/task"
)

// ValidateReparent checks whether t may take newParentID as its parent.
// It rejects self-parents, cross-project parents, and candidates that are
// descendants of t (which would close a cycle). The ancestor walk is
// visited-bounded so a pre-existing corrupt chain fails instead of spinning.
func (e *Engine) ValidateReparent(t *task.Task, newParentID string) error {
	if newParentID == t.ID {
		return fmt.Errorf("task %s cannot be its own parent: %w", t.ID, ErrInvalidHierarchy)
	}

	parent, err := e.tasks.Get(newParentID)
	if err != nil {
		return fmt.Errorf("parent: %w", err)
	}
	if parent.ProjectID != t.ProjectID {
		return fmt.Errorf("parent %s belongs to another project: %w", parent.ID, ErrInvalidHierarchy)
	}

	// Walk the candidate's parent chain upward; finding t means the
	// candidate is a descendant of t.
	visited := map[string]struct{}{parent.ID: {}}
	for cur := parent; cur.ParentID != ""; {
		if cur.ParentID == t.ID {
			return fmt.Errorf("task %s is an ancestor of candidate parent %s: %w",
				t.ID, newParentID, ErrInvalidHierarchy)
		}
		next, err := e.tasks.Get(cur.ParentID)
		if err != nil {
			return fmt.Errorf("ancestor walk: %w", err)
		}
		if _, ok := visited[next.ID]; ok {
			return fmt.Errorf("ancestor chain of %s: %w", newParentID, ErrCycleDetected)
		}
		visited[next.ID] = struct{}{}
		cur = next
	}
	return nil
}
