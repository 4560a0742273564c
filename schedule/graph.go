package schedule

import "github.com/GoCodeAlone/planner/task"

// BuildGraph derives the prerequisite map for a project's task snapshot.
// Every non-deleted task gets an entry; a task has its parent as a
// prerequisite iff the parent is present in the snapshot and not deleted.
// The graph is derived fresh per invocation and never persisted.
func BuildGraph(tasks []*task.Task) map[string][]string {
	byID := make(map[string]*task.Task, len(tasks))
	for _, t := range tasks {
		if t.Deleted() {
			continue
		}
		byID[t.ID] = t
	}

	prereqs := make(map[string][]string, len(byID))
	for id, t := range byID {
		prereqs[id] = nil
		if t.ParentID == "" {
			continue
		}
		if parent, ok := byID[t.ParentID]; ok && !parent.Deleted() {
			prereqs[id] = append(prereqs[id], parent.ID)
		}
	}
	return prereqs
}
