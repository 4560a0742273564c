package tracker

import (
	"fmt"
	"time"

	"github.com/GoCodeAlone/planner/project"
	"github.com/GoCodeAlone/planner/user"
)

// MemberInfo is a project member with its resolved display name.
type MemberInfo struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// ProjectDetail is a project with its member list.
type ProjectDetail struct {
	project.Project
	Members []MemberInfo `json:"members"`
}

// CreateProject creates a project with a fresh invite code and records the
// creator as its owner.
func (s *Service) CreateProject(name, description string, startDate *time.Time, userID string) (*ProjectDetail, error) {
	if _, err := s.users.Get(userID); err != nil {
		return nil, err
	}

	p := &project.Project{
		Name:        name,
		Description: description,
		StartDate:   startDate,
		CreatedByID: userID,
		Status:      project.StatusActive,
	}
	if _, err := s.projects.Create(p); err != nil {
		return nil, err
	}

	err := s.projects.AddMember(&project.Member{
		ProjectID: p.ID,
		UserID:    userID,
		Role:      project.RoleOwner,
	})
	if err != nil {
		return nil, err
	}
	return s.projectDetail(p)
}

// JoinProject adds the user to the project matching the invite code.
func (s *Service) JoinProject(inviteCode, userID string) (*ProjectDetail, error) {
	p, err := s.projects.FindByInviteCode(inviteCode)
	if err != nil {
		return nil, err
	}
	if p.Status == project.StatusDeleted {
		return nil, fmt.Errorf("project %s: %w", p.ID, project.ErrNotFound)
	}
	if _, err := s.users.Get(userID); err != nil {
		return nil, err
	}

	member, err := s.projects.IsMember(p.ID, userID)
	if err != nil {
		return nil, err
	}
	if member {
		return nil, fmt.Errorf("user %s already in project %s: %w", userID, p.ID, ErrInvalidInput)
	}

	err = s.projects.AddMember(&project.Member{
		ProjectID: p.ID,
		UserID:    userID,
		Role:      project.RoleMember,
	})
	if err != nil {
		return nil, err
	}
	return s.projectDetail(p)
}

// UpdateProject applies non-empty fields; only the owner may update.
func (s *Service) UpdateProject(projectID string, name, description string, startDate *time.Time, userID string) (*ProjectDetail, error) {
	p, err := s.projects.Get(projectID)
	if err != nil {
		return nil, err
	}
	if p.CreatedByID != userID {
		return nil, fmt.Errorf("only the owner can update project %s: %w", projectID, ErrForbidden)
	}

	if name != "" {
		p.Name = name
	}
	if description != "" {
		p.Description = description
	}
	if startDate != nil {
		p.StartDate = startDate
	}
	if err := s.projects.Update(p); err != nil {
		return nil, err
	}
	return s.projectDetail(p)
}

// DeleteProject soft-deletes a project; only the owner may delete.
func (s *Service) DeleteProject(projectID, userID string) error {
	p, err := s.projects.Get(projectID)
	if err != nil {
		return err
	}
	if p.CreatedByID != userID {
		return fmt.Errorf("only the owner can delete project %s: %w", projectID, ErrForbidden)
	}
	p.Status = project.StatusDeleted
	return s.projects.Update(p)
}

// GetProject returns a project with members; the caller must be a member.
func (s *Service) GetProject(projectID, userID string) (*ProjectDetail, error) {
	p, err := s.projects.Get(projectID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(projectID, userID); err != nil {
		return nil, err
	}
	return s.projectDetail(p)
}

// ProjectMembers lists a project's members; the caller must be a member.
func (s *Service) ProjectMembers(projectID, userID string) ([]MemberInfo, error) {
	if _, err := s.projects.Get(projectID); err != nil {
		return nil, err
	}
	if err := s.requireMember(projectID, userID); err != nil {
		return nil, err
	}
	return s.memberInfos(projectID)
}

// ProjectsForUser lists the active projects the user belongs to.
func (s *Service) ProjectsForUser(userID string) ([]*ProjectDetail, error) {
	projects, err := s.projects.ListForUser(userID)
	if err != nil {
		return nil, err
	}
	details := make([]*ProjectDetail, 0, len(projects))
	for _, p := range projects {
		d, err := s.projectDetail(p)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}

// RegisterUser creates a user account with a bcrypt-hashed password.
func (s *Service) RegisterUser(name, email, password string) (*user.User, error) {
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("name, email, and password are required: %w", ErrInvalidInput)
	}
	hash, err := user.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &user.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         user.RoleUser,
	}
	if _, err := s.users.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}

// AuthenticateUser verifies email/password credentials.
func (s *Service) AuthenticateUser(email, password string) (*user.User, error) {
	u, err := s.users.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if !u.CheckPassword(password) {
		return nil, fmt.Errorf("bad credentials for %s: %w", email, ErrForbidden)
	}
	return u, nil
}

// GetUser retrieves a user by id.
func (s *Service) GetUser(userID string) (*user.User, error) {
	return s.users.Get(userID)
}

func (s *Service) requireMember(projectID, userID string) error {
	member, err := s.projects.IsMember(projectID, userID)
	if err != nil {
		return err
	}
	if !member {
		return fmt.Errorf("user %s is not a member of project %s: %w", userID, projectID, ErrForbidden)
	}
	return nil
}

func (s *Service) projectDetail(p *project.Project) (*ProjectDetail, error) {
	infos, err := s.memberInfos(p.ID)
	if err != nil {
		return nil, err
	}
	return &ProjectDetail{Project: *p, Members: infos}, nil
}

func (s *Service) memberInfos(projectID string) ([]MemberInfo, error) {
	members, err := s.projects.Members(projectID)
	if err != nil {
		return nil, err
	}
	infos := make([]MemberInfo, 0, len(members))
	for _, m := range members {
		name := "Unknown"
		if u, err := s.users.Get(m.UserID); err == nil {
			name = u.Name
		}
		infos = append(infos, MemberInfo{UserID: m.UserID, Name: name, Role: m.Role})
	}
	return infos, nil
}
