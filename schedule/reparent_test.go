package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/GoCodeAlone/planner/task"
)

func TestValidateReparent(t *testing.T) {
	engine, tasks, projects := newTestEngine(t, fakeClock{now: time.Now()})
	projID := createProject(t, projects, nil)
	otherProjID := createProject(t, projects, nil)

	root := createTask(t, tasks, &task.Task{ProjectID: projID, Title: "root", EffortLevel: task.EffortSimple})
	mid := createTask(t, tasks, &task.Task{ProjectID: projID, Title: "mid", ParentID: root.ID, EffortLevel: task.EffortSimple})
	leaf := createTask(t, tasks, &task.Task{ProjectID: projID, Title: "leaf", ParentID: mid.ID, EffortLevel: task.EffortSimple})
	stranger := createTask(t, tasks, &task.Task{ProjectID: otherProjID, Title: "stranger", EffortLevel: task.EffortSimple})
	sibling := createTask(t, tasks, &task.Task{ProjectID: projID, Title: "sibling", EffortLevel: task.EffortSimple})

	if err := engine.ValidateReparent(root, root.ID); !errors.Is(err, ErrInvalidHierarchy) {
		t.Errorf("self-parent err = %v, want ErrInvalidHierarchy", err)
	}

	if err := engine.ValidateReparent(root, stranger.ID); !errors.Is(err, ErrInvalidHierarchy) {
		t.Errorf("cross-project err = %v, want ErrInvalidHierarchy", err)
	}

	// leaf is a descendant of root; accepting it would close a cycle.
	if err := engine.ValidateReparent(root, leaf.ID); !errors.Is(err, ErrInvalidHierarchy) {
		t.Errorf("descendant-as-parent err = %v, want ErrInvalidHierarchy", err)
	}

	if err := engine.ValidateReparent(root, "missing"); !errors.Is(err, task.ErrNotFound) {
		t.Errorf("missing parent err = %v, want task.ErrNotFound", err)
	}

	// Unrelated same-project task is fine, either direction.
	if err := engine.ValidateReparent(mid, sibling.ID); err != nil {
		t.Errorf("unrelated parent rejected: %v", err)
	}
	if err := engine.ValidateReparent(sibling, mid.ID); err != nil {
		t.Errorf("reparent under mid rejected: %v", err)
	}
}
