// Package schedule implements the task scheduling engine: dependency graph
// construction, topological ordering, gap-filling date assignment, upward
// rollup of schedule changes, and the status/hierarchy guards.
package schedule

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/GoCodeAlone/planner/project"
	"github.com/GoCodeAlone/planner/task"
)

// Engine computes project schedules over a task store snapshot. It is
// logically single-threaded per invocation and holds no internal locks;
// callers serialize concurrent passes for the same project.
type Engine struct {
	tasks    task.Store
	projects project.Store
	clock    Clock
	logger   *slog.Logger
}

// NewEngine creates a scheduling engine over the given stores.
func NewEngine(tasks task.Store, projects project.Store, clock Clock, logger *slog.Logger) *Engine {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{tasks: tasks, projects: projects, clock: clock, logger: logger}
}

// SubtaskSummary is the child view carried by a scheduled task.
type SubtaskSummary struct {
	ID     string      `json:"id"`
	Title  string      `json:"title"`
	Status task.Status `json:"status"`
}

// ScheduledTask is a task with its resolved dates and direct children.
type ScheduledTask struct {
	task.Task
	Subtasks []SubtaskSummary `json:"subtasks"`
}

// Result is the outcome of a scheduling pass: tasks ordered by resolved
// start date (unresolved last) and the whole-day span of the project.
type Result struct {
	Tasks         []ScheduledTask `json:"tasks"`
	TotalSpanDays int64           `json:"total_days"`
}

// Generate computes start/end dates for every task in the project whose
// dates are unset and returns the resulting schedule. The batch pass orders
// children strictly after their parents; the upward rollup runs only on
// individual task mutations, never here, so the two orderings cannot fight
// over the same hierarchy within one pass. If the dependency graph has a
// cycle, no task is modified and ErrCycleDetected is returned.
func (e *Engine) Generate(projectID string) (*Result, error) {
	proj, err := e.projects.Get(projectID)
	if err != nil {
		return nil, err
	}

	projectStart := e.clock.Now()
	if proj.StartDate != nil {
		projectStart = *proj.StartDate
	}

	all, err := e.tasks.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("schedule project %s: %w", projectID, err)
	}

	snapshot := make([]*task.Task, 0, len(all))
	byID := make(map[string]*task.Task, len(all))
	for _, t := range all {
		if t.Deleted() {
			continue
		}
		snapshot = append(snapshot, t)
		byID[t.ID] = t
	}

	prereqs := BuildGraph(snapshot)
	order, err := topoSort(prereqs)
	if err != nil {
		return nil, fmt.Errorf("schedule project %s: %w", projectID, err)
	}

	// Fill unset dates in topological order. Already-fixed dates are never
	// moved, so a second pass over a fully-dated set is a no-op.
	for _, id := range order {
		t, ok := byID[id]
		if !ok {
			continue
		}

		changed := false
		if t.StartDate == nil {
			start := projectStart
			if latest := latestPrereqEnd(prereqs[id], byID); latest != nil {
				start = *latest
			}
			s := start
			t.StartDate = &s
			changed = true
		}
		if t.EndDate == nil {
			t.TimeEstimate = ResolveEstimate(t)
			end := endDateFor(t, *t.StartDate)
			t.EndDate = &end
			changed = true
		}

		if changed {
			if err := e.tasks.Update(t); err != nil {
				return nil, fmt.Errorf("schedule save %s: %w", t.ID, err)
			}
		}
	}

	result, err := e.buildResult(projectID, projectStart)
	if err != nil {
		return nil, err
	}

	e.logger.Info("schedule generated",
		slog.String("project", projectID),
		slog.Int("tasks", len(result.Tasks)),
		slog.Int64("span_days", result.TotalSpanDays),
	)
	return result, nil
}

// latestPrereqEnd returns the maximum resolved end date among prerequisites,
// or nil if none has one.
func latestPrereqEnd(deps []string, byID map[string]*task.Task) *time.Time {
	var latest *time.Time
	for _, depID := range deps {
		dep, ok := byID[depID]
		if !ok || dep.EndDate == nil {
			continue
		}
		if latest == nil || dep.EndDate.After(*latest) {
			latest = dep.EndDate
		}
	}
	return latest
}

// buildResult re-reads the project so the returned view reflects exactly
// what was persisted, then assembles the ordered schedule.
func (e *Engine) buildResult(projectID string, projectStart time.Time) (*Result, error) {
	all, err := e.tasks.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("schedule project %s: %w", projectID, err)
	}

	live := make([]*task.Task, 0, len(all))
	for _, t := range all {
		if !t.Deleted() {
			live = append(live, t)
		}
	}
	sortByStart(live)

	scheduled := make([]ScheduledTask, 0, len(live))
	for _, t := range live {
		children, err := e.tasks.ListChildren(t.ID)
		if err != nil {
			return nil, fmt.Errorf("schedule project %s: %w", projectID, err)
		}
		kept := make([]*task.Task, 0, len(children))
		for _, c := range children {
			if !c.Deleted() {
				kept = append(kept, c)
			}
		}
		sortByStart(kept)

		summaries := make([]SubtaskSummary, 0, len(kept))
		for _, c := range kept {
			summaries = append(summaries, SubtaskSummary{ID: c.ID, Title: c.Title, Status: c.Status})
		}
		scheduled = append(scheduled, ScheduledTask{Task: *t, Subtasks: summaries})
	}

	return &Result{
		Tasks:         scheduled,
		TotalSpanDays: spanDays(live, projectStart),
	}, nil
}

// sortByStart orders tasks by resolved start date, unresolved-start last,
// ties broken by id.
func sortByStart(tasks []*task.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i].StartDate, tasks[j].StartDate
		switch {
		case a == nil && b == nil:
			return tasks[i].ID < tasks[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Equal(*b):
			return tasks[i].ID < tasks[j].ID
		default:
			return a.Before(*b)
		}
	})
}

// spanDays is the inclusive whole-day count between the earliest resolved
// start and the latest resolved end. With no resolved dates both bounds
// collapse to the project start, giving a span of 1.
func spanDays(tasks []*task.Task, projectStart time.Time) int64 {
	var minStart, maxEnd *time.Time
	for _, t := range tasks {
		if t.StartDate != nil && (minStart == nil || t.StartDate.Before(*minStart)) {
			minStart = t.StartDate
		}
		if t.EndDate != nil && (maxEnd == nil || t.EndDate.After(*maxEnd)) {
			maxEnd = t.EndDate
		}
	}
	if minStart == nil {
		minStart = &projectStart
	}
	if maxEnd == nil {
		maxEnd = &projectStart
	}
	return daysBetween(*minStart, *maxEnd) + 1
}

// daysBetween counts calendar days from the date of a to the date of b.
func daysBetween(a, b time.Time) int64 {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	floorA := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	floorB := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int64(floorB.Sub(floorA) / (24 * time.Hour))
}
