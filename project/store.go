package project

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	invite_code   TEXT NOT NULL UNIQUE,
	created_by_id TEXT NOT NULL,
	status        INTEGER NOT NULL DEFAULT 1,
	start_date    DATETIME,
	created_at    DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS project_users (
	project_id TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	role       TEXT NOT NULL,
	joined_at  DATETIME NOT NULL,
	PRIMARY KEY (project_id, user_id)
);
`

// SQLiteStore persists projects in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the project tables exist. The caller is responsible for calling Close.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1) // prevent SQLITE_BUSY
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database connection.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// NewInviteCode generates a short shareable project invite code.
func NewInviteCode() string {
	return uuid.NewString()[:8]
}

const projectColumns = `id, name, description, invite_code, created_by_id, status,
	start_date, created_at, updated_at`

// Create persists a new project and sets its ID, InviteCode, and timestamps.
func (s *SQLiteStore) Create(p *Project) (string, error) {
	p.ID = uuid.NewString()
	if p.InviteCode == "" {
		p.InviteCode = NewInviteCode()
	}
	if p.Status == 0 {
		p.Status = StatusActive
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.Exec(`
		INSERT INTO projects
			(id, name, description, invite_code, created_by_id, status, start_date, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		p.ID, p.Name, p.Description, p.InviteCode, p.CreatedByID, p.Status,
		nullTime(p.StartDate), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert project: %w", err)
	}
	return p.ID, nil
}

// Get retrieves a project by ID.
func (s *SQLiteStore) Get(id string) (*Project, error) {
	row := s.db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE id=?`, id)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return p, err
}

// Update saves changes to an existing project, updating UpdatedAt automatically.
func (s *SQLiteStore) Update(p *Project) error {
	p.UpdatedAt = time.Now().UTC()

	res, err := s.db.Exec(`
		UPDATE projects SET
			name=?, description=?, invite_code=?, status=?, start_date=?, updated_at=?
		WHERE id=?`,
		p.Name, p.Description, p.InviteCode, p.Status,
		nullTime(p.StartDate), p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("project %s: %w", p.ID, ErrNotFound)
	}
	return nil
}

// FindByInviteCode retrieves a project by its invite code.
func (s *SQLiteStore) FindByInviteCode(code string) (*Project, error) {
	row := s.db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE invite_code=?`, code)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("invite code %s: %w", code, ErrNotFound)
	}
	return p, err
}

// ListForUser returns all active projects the user is a member of.
func (s *SQLiteStore) ListForUser(userID string) ([]*Project, error) {
	rows, err := s.db.Query(`
		SELECT `+projectColumns+` FROM projects
		WHERE status=? AND id IN (SELECT project_id FROM project_users WHERE user_id=?)
		ORDER BY created_at ASC`,
		StatusActive, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects for user %s: %w", userID, err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// AddMember records a user's membership. Re-adding is an error via the
// primary key; callers check IsMember first.
func (s *SQLiteStore) AddMember(m *Member) error {
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(`
		INSERT INTO project_users (project_id, user_id, role, joined_at) VALUES (?,?,?,?)`,
		m.ProjectID, m.UserID, m.Role, m.JoinedAt)
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

// Members returns all membership records for a project.
func (s *SQLiteStore) Members(projectID string) ([]*Member, error) {
	rows, err := s.db.Query(`
		SELECT project_id, user_id, role, joined_at FROM project_users
		WHERE project_id=? ORDER BY joined_at ASC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list members of %s: %w", projectID, err)
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ProjectID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, &m)
	}
	return members, rows.Err()
}

// IsMember reports whether the user belongs to the project.
func (s *SQLiteStore) IsMember(projectID, userID string) (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM project_users WHERE project_id=? AND user_id=?`,
		projectID, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*Project, error) {
	var p Project
	var startDate sql.NullTime

	err := s.Scan(
		&p.ID, &p.Name, &p.Description, &p.InviteCode, &p.CreatedByID, &p.Status,
		&startDate, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if startDate.Valid {
		p.StartDate = &startDate.Time
	}
	return &p, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
