// Package project defines the project model and persistence.
package project

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a referenced project does not exist.
var ErrNotFound = errors.New("project not found")

// Project status values. Deletion is a status transition, not removal.
const (
	StatusActive  = 1
	StatusDeleted = 2
)

// Member roles within a project.
const (
	RoleOwner  = "OWNER"
	RoleMember = "MEMBER"
)

// Project groups tasks under a shared schedule.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	InviteCode  string `json:"invite_code"`
	CreatedByID string `json:"created_by_id"`
	Status      int    `json:"status"`
	// StartDate is the configured schedule anchor. Nil means the scheduler
	// falls back to the current instant.
	StartDate *time.Time `json:"start_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Member is a user's membership record in a project.
type Member struct {
	ProjectID string    `json:"project_id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
}

// Store persists and retrieves projects and memberships.
type Store interface {
	Create(p *Project) (string, error)
	Get(id string) (*Project, error)
	Update(p *Project) error
	FindByInviteCode(code string) (*Project, error)
	ListForUser(userID string) ([]*Project, error)

	AddMember(m *Member) error
	Members(projectID string) ([]*Member, error)
	IsMember(projectID, userID string) (bool, error)
}
