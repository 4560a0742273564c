package schedule

import (
	"errors"
	"reflect"
	"testing"

	"github.com/GoCodeAlone/planner/task"
)

func TestBuildGraph(t *testing.T) {
	tasks := []*task.Task{
		{ID: "a", Status: task.StatusNotStarted},
		{ID: "b", ParentID: "a", Status: task.StatusNotStarted},
		{ID: "c", ParentID: "gone", Status: task.StatusNotStarted},
		{ID: "d", ParentID: "a", Status: task.StatusDeleted},
	}
	g := BuildGraph(tasks)

	if len(g) != 3 {
		t.Fatalf("graph has %d entries, want 3 (deleted excluded)", len(g))
	}
	if _, ok := g["a"]; !ok {
		t.Error("isolated task a missing from graph")
	}
	if _, ok := g["d"]; ok {
		t.Error("deleted task d present in graph")
	}
	if !reflect.DeepEqual(g["b"], []string{"a"}) {
		t.Errorf("prereqs of b = %v, want [a]", g["b"])
	}
	if len(g["c"]) != 0 {
		t.Errorf("prereqs of c = %v, want none (parent absent)", g["c"])
	}
}

func TestBuildGraph_DeletedParentIsNoPrereq(t *testing.T) {
	tasks := []*task.Task{
		{ID: "p", Status: task.StatusDeleted},
		{ID: "c", ParentID: "p", Status: task.StatusNotStarted},
	}
	g := BuildGraph(tasks)
	if len(g["c"]) != 0 {
		t.Errorf("prereqs of c = %v, want none (parent deleted)", g["c"])
	}
}

func TestTopoSort_PrereqsFirst(t *testing.T) {
	g := map[string][]string{
		"d": {"b", "c"},
		"b": {"a"},
		"c": {"a"},
		"a": nil,
	}
	order, err := topoSort(g)
	if err != nil {
		t.Fatalf("topoSort: %v", err)
	}
	if len(order) != 4 {
		t.Fatalf("order has %d nodes, want 4", len(order))
	}

	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	for id, deps := range g {
		for _, dep := range deps {
			if pos[dep] >= pos[id] {
				t.Errorf("%s at %d not before dependent %s at %d", dep, pos[dep], id, pos[id])
			}
		}
	}
}

func TestTopoSort_Deterministic(t *testing.T) {
	g := map[string][]string{"c": nil, "a": nil, "b": nil}
	want := []string{"a", "b", "c"}
	for i := 0; i < 5; i++ {
		order, err := topoSort(g)
		if err != nil {
			t.Fatalf("topoSort: %v", err)
		}
		if !reflect.DeepEqual(order, want) {
			t.Fatalf("run %d: order = %v, want %v", i, order, want)
		}
	}
}

func TestTopoSort_Cycle(t *testing.T) {
	g := map[string][]string{"a": {"b"}, "b": {"a"}}
	_, err := topoSort(g)
	if !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("err = %v, want ErrCycleDetected", err)
	}
}

func TestTopoSort_PartialCycle(t *testing.T) {
	// Acyclic nodes still cannot rescue a cyclic component.
	g := map[string][]string{
		"ok":  nil,
		"a":   {"b"},
		"b":   {"a"},
		"dep": {"ok"},
	}
	_, err := topoSort(g)
	if !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("err = %v, want ErrCycleDetected", err)
	}
}
