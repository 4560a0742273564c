package schedule

import (
	"fmt"
	"time"
)

// PropagateUp walks a single ancestor chain starting at parentID, pushing
// each ancestor's start date past its subtasks' latest end date and
// recomputing its end date. The walk is an explicit loop over parent ids
// with a visited set; revisiting an id means the acyclicity invariant was
// violated and fails with ErrCycleDetected instead of looping forever.
func (e *Engine) PropagateUp(parentID string) error {
	visited := make(map[string]struct{})

	for id := parentID; id != ""; {
		if _, ok := visited[id]; ok {
			return fmt.Errorf("rollup revisited task %s: %w", id, ErrCycleDetected)
		}
		visited[id] = struct{}{}

		parent, err := e.tasks.Get(id)
		if err != nil {
			return fmt.Errorf("rollup: %w", err)
		}
		if parent.Deleted() {
			// Deleted ancestors are not adjusted, but the walk continues past them.
			id = parent.ParentID
			continue
		}

		children, err := e.tasks.ListChildren(id)
		if err != nil {
			return fmt.Errorf("rollup: %w", err)
		}

		var maxEnd *time.Time
		for _, c := range children {
			if c.Deleted() || c.EndDate == nil {
				continue
			}
			if maxEnd == nil || c.EndDate.After(*maxEnd) {
				maxEnd = c.EndDate
			}
		}

		startChanged := false
		if maxEnd != nil && (parent.StartDate == nil || parent.StartDate.Before(*maxEnd)) {
			start := maxEnd.AddDate(0, 0, 1)
			parent.StartDate = &start
			startChanged = true
		}

		if parent.EndDate == nil || startChanged {
			// Nothing anchors the end date if neither the parent nor any
			// subtask has a resolved start.
			if parent.StartDate != nil {
				end := endDateFor(parent, *parent.StartDate)
				parent.EndDate = &end
			}
		}

		if err := e.tasks.Update(parent); err != nil {
			return fmt.Errorf("rollup save %s: %w", parent.ID, err)
		}

		id = parent.ParentID
	}
	return nil
}
