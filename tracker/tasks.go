package tracker

import (
	"fmt"
	"strings"
	"time"

	"github.com/GoCodeAlone/planner/schedule"
	"github.com/GoCodeAlone/planner/task"
)

// TaskDetail is a task together with summaries of its direct subtasks.
type TaskDetail struct {
	task.Task
	Subtasks []schedule.SubtaskSummary `json:"subtasks"`
}

// CreateTask validates and persists a new task, resolves its time estimate,
// records the creation, and rolls the change up to its parent chain.
func (s *Service) CreateTask(t *task.Task, creatorID string) (*task.Task, error) {
	creator, err := s.users.Get(creatorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.projects.Get(t.ProjectID); err != nil {
		return nil, err
	}
	if t.EffortLevel == "" {
		return nil, fmt.Errorf("effort level is required: %w", ErrInvalidInput)
	}

	if t.ParentID != "" {
		parent, err := s.tasks.Get(t.ParentID)
		if err != nil {
			return nil, fmt.Errorf("parent: %w", err)
		}
		if parent.ProjectID != t.ProjectID {
			return nil, fmt.Errorf("parent %s belongs to another project: %w",
				parent.ID, schedule.ErrInvalidHierarchy)
		}
	}

	t.CreatedByID = creatorID
	t.Status = task.StatusNotStarted
	t.TimeEstimate = schedule.ResolveEstimate(t)

	if _, err := s.tasks.Create(t); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("%s created task %q at %s with effort level %s",
		creator.Name, t.Title, s.clock.Now().Format(activityTimeFormat), t.EffortLevel)
	s.logActivity(t.ID, creatorID, "created_task", msg)

	if t.ParentID != "" {
		if err := s.engine.PropagateUp(t.ParentID); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// UpdateTask applies field changes to a task. Transitions to IN_PROGRESS or
// DONE are gated on subtask completion; parent reassignments go through the
// cycle guard. The change set is recorded in the activity log and the
// parent chain is rolled up afterwards.
func (s *Service) UpdateTask(taskID string, upd *task.Task, updaterID string) (*task.Task, error) {
	existing, err := s.tasks.Get(taskID)
	if err != nil {
		return nil, err
	}

	if upd.Status == task.StatusInProgress || upd.Status == task.StatusDone {
		ok, err := s.engine.CanStart(taskID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("task %s cannot start until all subtasks are completed: %w",
				taskID, schedule.ErrInvalidState)
		}
	}

	updater, err := s.users.Get(updaterID)
	if err != nil {
		return nil, err
	}

	var changes strings.Builder

	if upd.ParentID == "" {
		if existing.ParentID != "" {
			old, err := s.tasks.Get(existing.ParentID)
			oldTitle := existing.ParentID
			if err == nil {
				oldTitle = old.Title
			}
			fmt.Fprintf(&changes, "removed parent (was %s); ", oldTitle)
			existing.ParentID = ""
		}
	} else {
		if err := s.engine.ValidateReparent(existing, upd.ParentID); err != nil {
			return nil, err
		}
		if existing.ParentID != upd.ParentID {
			newParent, err := s.tasks.Get(upd.ParentID)
			if err != nil {
				return nil, fmt.Errorf("parent: %w", err)
			}
			fmt.Fprintf(&changes, "parent changed to %q; ", newParent.Title)
			existing.ParentID = upd.ParentID
		}
	}

	if existing.Title != upd.Title {
		fmt.Fprintf(&changes, "title from %q to %q; ", existing.Title, upd.Title)
		existing.Title = upd.Title
	}
	if existing.Description != upd.Description {
		changes.WriteString("description updated; ")
		existing.Description = upd.Description
	}
	if !equalTimePtr(existing.StartDate, upd.StartDate) {
		fmt.Fprintf(&changes, "start date from %s to %s; ",
			formatTimePtr(existing.StartDate), formatTimePtr(upd.StartDate))
		existing.StartDate = upd.StartDate
	}
	if !equalTimePtr(existing.EndDate, upd.EndDate) {
		fmt.Fprintf(&changes, "end date from %s to %s; ",
			formatTimePtr(existing.EndDate), formatTimePtr(upd.EndDate))
		existing.EndDate = upd.EndDate
	}
	if upd.Status != "" && existing.Status != upd.Status {
		fmt.Fprintf(&changes, "status from %s to %s; ", existing.Status, upd.Status)
		existing.Status = upd.Status
	}
	if upd.EffortLevel != "" && existing.EffortLevel != upd.EffortLevel {
		fmt.Fprintf(&changes, "effort level from %s to %s; ", existing.EffortLevel, upd.EffortLevel)
		existing.EffortLevel = upd.EffortLevel
	}

	existing.TimeEstimate = schedule.ResolveEstimate(existing)

	if err := s.tasks.Update(existing); err != nil {
		return nil, err
	}

	timestamp := s.clock.Now().Format(activityTimeFormat)
	var msg string
	if changes.Len() == 0 {
		msg = fmt.Sprintf("%s updated task %q at %s (no fields changed)",
			updater.Name, existing.Title, timestamp)
	} else {
		msg = fmt.Sprintf("%s updated task %q at %s: %s",
			updater.Name, existing.Title, timestamp, changes.String())
	}
	s.logActivity(existing.ID, updaterID, "updated_task", msg)

	if existing.ParentID != "" {
		if err := s.engine.PropagateUp(existing.ParentID); err != nil {
			return nil, err
		}
	}
	return existing, nil
}

// DeleteTask soft-deletes a task (deletion is a status transition, not
// removal) and rolls the change up to its parent chain.
func (s *Service) DeleteTask(taskID, userID string) error {
	t, err := s.tasks.Get(taskID)
	if err != nil {
		return err
	}
	u, err := s.users.Get(userID)
	if err != nil {
		return err
	}

	t.Status = task.StatusDeleted
	if err := s.tasks.Update(t); err != nil {
		return err
	}

	msg := fmt.Sprintf("%s deleted task %q at %s",
		u.Name, t.Title, s.clock.Now().Format(activityTimeFormat))
	s.logActivity(taskID, userID, "deleted_task", msg)

	if t.ParentID != "" {
		return s.engine.PropagateUp(t.ParentID)
	}
	return nil
}

// GetTask returns a task with its direct subtask summaries.
func (s *Service) GetTask(taskID string) (*TaskDetail, error) {
	t, err := s.tasks.Get(taskID)
	if err != nil {
		return nil, err
	}
	children, err := s.tasks.ListChildren(taskID)
	if err != nil {
		return nil, err
	}
	detail := &TaskDetail{Task: *t, Subtasks: make([]schedule.SubtaskSummary, 0, len(children))}
	for _, c := range children {
		detail.Subtasks = append(detail.Subtasks,
			schedule.SubtaskSummary{ID: c.ID, Title: c.Title, Status: c.Status})
	}
	return detail, nil
}

// TasksByProject returns every task in a project, each with its subtask
// summaries.
func (s *Service) TasksByProject(projectID string) ([]*TaskDetail, error) {
	tasks, err := s.tasks.ListByProject(projectID)
	if err != nil {
		return nil, err
	}
	details := make([]*TaskDetail, 0, len(tasks))
	for _, t := range tasks {
		children, err := s.tasks.ListChildren(t.ID)
		if err != nil {
			return nil, err
		}
		d := &TaskDetail{Task: *t, Subtasks: make([]schedule.SubtaskSummary, 0, len(children))}
		for _, c := range children {
			d.Subtasks = append(d.Subtasks,
				schedule.SubtaskSummary{ID: c.ID, Title: c.Title, Status: c.Status})
		}
		details = append(details, d)
	}
	return details, nil
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return "<unset>"
	}
	return t.Format(time.RFC3339)
}
