package schedule

import (
	"fmt"
	"sort"
)

// topoSort orders task ids so every id appears after all of its
// prerequisites (Kahn's algorithm). Ties among ready nodes break by
// ascending task id so the order is reproducible. Returns ErrCycleDetected
// if the graph cannot be fully ordered.
func topoSort(prereqs map[string][]string) ([]string, error) {
	// Node set is the union of keys and values.
	nodes := make(map[string]struct{}, len(prereqs))
	for id, deps := range prereqs {
		nodes[id] = struct{}{}
		for _, dep := range deps {
			nodes[dep] = struct{}{}
		}
	}

	// In-degree of a node is the number of prerequisites it has. The
	// dependents index inverts the map so emitting a node decrements its
	// dependents rather than rescanning the whole graph.
	inDegree := make(map[string]int, len(nodes))
	dependents := make(map[string][]string, len(nodes))
	for id := range nodes {
		inDegree[id] = 0
	}
	for id, deps := range prereqs {
		inDegree[id] = len(deps)
		for _, dep := range deps {
			dependents[dep] = append(dependents[dep], id)
		}
	}

	ready := make([]string, 0, len(nodes))
	for id, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}

	order := make([]string, 0, len(nodes))
	for len(ready) > 0 {
		sort.Strings(ready)
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)

		for _, dep := range dependents[n] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(order) != len(nodes) {
		var stuck []string
		emitted := make(map[string]struct{}, len(order))
		for _, id := range order {
			emitted[id] = struct{}{}
		}
		for id := range nodes {
			if _, ok := emitted[id]; !ok {
				stuck = append(stuck, id)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("tasks %v: %w", stuck, ErrCycleDetected)
	}
	return order, nil
}
