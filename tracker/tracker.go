// Package tracker is the application service layer: it glues the stores and
// the scheduling engine together and enforces the mutation-time rules
// (status gating, reparent validation, rollup triggers, activity logging).
package tracker

import (
	"errors"
	"log/slog"

	"github.com/GoCodeAlone/planner/project"
	"github.com/GoCodeAlone/planner/schedule"
	"github.com/GoCodeAlone/planner/task"
	"github.com/GoCodeAlone/planner/user"
)

var (
	// ErrForbidden means the acting user lacks the required role or
	// membership for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput means a request failed validation before touching
	// any state.
	ErrInvalidInput = errors.New("invalid input")
)

// activityTimeFormat matches the human-readable timestamps embedded in
// activity-log messages.
const activityTimeFormat = "Jan 2, 2006 15:04"

// Service exposes the tracker's operations over its stores.
type Service struct {
	tasks    task.Store
	projects project.Store
	users    user.Store
	engine   *schedule.Engine
	clock    schedule.Clock
	logger   *slog.Logger
}

// NewService creates the service layer. The engine must share the same
// task and project stores.
func NewService(tasks task.Store, projects project.Store, users user.Store,
	engine *schedule.Engine, clock schedule.Clock, logger *slog.Logger) *Service {
	if clock == nil {
		clock = schedule.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		tasks:    tasks,
		projects: projects,
		users:    users,
		engine:   engine,
		clock:    clock,
		logger:   logger,
	}
}

// GenerateSchedule runs a full scheduling pass for the project on behalf of
// the given user.
func (s *Service) GenerateSchedule(projectID, userID string) (*schedule.Result, error) {
	if _, err := s.users.Get(userID); err != nil {
		return nil, err
	}
	return s.engine.Generate(projectID)
}

// CanStart reports whether the task's direct subtasks allow it to start.
func (s *Service) CanStart(taskID string) (bool, error) {
	return s.engine.CanStart(taskID)
}

// logActivity records an audit entry; failures are logged, never fatal to
// the mutation that triggered them.
func (s *Service) logActivity(taskID, userID, action, details string) {
	err := s.tasks.LogActivity(&task.Activity{
		TaskID:  taskID,
		UserID:  userID,
		Action:  action,
		Details: details,
	})
	if err != nil {
		s.logger.Error("log activity", slog.String("task", taskID), slog.Any("err", err))
	}
}
