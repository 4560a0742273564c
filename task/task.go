// Package task defines the task model and persistence for project work items.
package task

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a referenced task does not exist.
var ErrNotFound = errors.New("task not found")

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
	StatusOnHold     Status = "ON_HOLD"
	StatusDeleted    Status = "DELETED"
)

// EffortLevel is a qualitative size tag mapped to a default duration.
type EffortLevel string

const (
	EffortSimple   EffortLevel = "SIMPLE"
	EffortModerate EffortLevel = "MODERATE"
	EffortComplex  EffortLevel = "COMPLEX"
)

// EffortLevels lists all valid effort levels.
func EffortLevels() []EffortLevel {
	return []EffortLevel{EffortSimple, EffortModerate, EffortComplex}
}

// Task is a unit of work within a project. The parent relation is a plain id,
// never an embedded reference; relations are resolved by store lookup.
type Task struct {
	ID          string      `json:"id"`
	ProjectID   string      `json:"project_id"`
	ParentID    string      `json:"parent_id,omitempty"`
	CreatedByID string      `json:"created_by_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Status      Status      `json:"status"`
	EffortLevel EffortLevel `json:"effort_level"`
	// TimeEstimate is the task duration in milliseconds. A positive value is
	// sticky and never recomputed from the effort level.
	TimeEstimate int64      `json:"time_estimate"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Deleted reports whether the task has been soft-deleted.
func (t *Task) Deleted() bool { return t.Status == StatusDeleted }

// Store persists and retrieves tasks and their collaborator records.
type Store interface {
	// Create persists a new task and returns its assigned ID.
	Create(t *Task) (string, error)

	// Get retrieves a task by ID.
	Get(id string) (*Task, error)

	// Update saves changes to an existing task.
	Update(t *Task) error

	// ListByProject returns every task belonging to a project, including
	// soft-deleted ones. Callers filter by status.
	ListByProject(projectID string) ([]*Task, error)

	// ListChildren returns the direct subtasks of a task.
	ListChildren(parentID string) ([]*Task, error)

	// Collaborator records attached to tasks.
	AddComment(c *Comment) (string, error)
	DeleteComment(commentID string) (*Comment, error)
	ListComments(taskID string) ([]*Comment, error)
	AddTag(taskID, tag string) error
	RemoveTag(taskID, tag string) error
	ListTags(taskID string) ([]string, error)
	AssignUser(taskID, userID string) error
	UnassignUser(taskID, userID string) error
	ListAssignees(taskID string) ([]string, error)
	LogActivity(a *Activity) error
	ListActivity(taskID string) ([]*Activity, error)
}

// Comment is a free-text note attached to a task.
type Comment struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	UserID    string    `json:"user_id"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Activity is an audit-log entry recorded against a task.
type Activity struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}
