package task

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id            TEXT PRIMARY KEY,
	project_id    TEXT NOT NULL,
	parent_id     TEXT NOT NULL DEFAULT '',
	created_by_id TEXT NOT NULL DEFAULT '',
	title         TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL,
	effort_level  TEXT NOT NULL,
	time_estimate INTEGER NOT NULL DEFAULT 0,
	start_date    DATETIME,
	end_date      DATETIME,
	created_at    DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);
CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_id);

CREATE TABLE IF NOT EXISTS task_comments (
	id         TEXT PRIMARY KEY,
	task_id    TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	comment    TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS task_tags (
	task_id TEXT NOT NULL,
	tag     TEXT NOT NULL,
	PRIMARY KEY (task_id, tag)
);

CREATE TABLE IF NOT EXISTS task_assignees (
	task_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	PRIMARY KEY (task_id, user_id)
);

CREATE TABLE IF NOT EXISTS task_activity (
	id         TEXT PRIMARY KEY,
	task_id    TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	action     TEXT NOT NULL,
	details    TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);
`

// SQLiteStore persists tasks in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the task tables exist. The caller is responsible for calling Close.
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

const taskColumns = `id, project_id, parent_id, created_by_id, title, description,
	status, effort_level, time_estimate, start_date, end_date, created_at, updated_at`

// Create persists a new task and sets its ID, CreatedAt, and UpdatedAt.
func (s *SQLiteStore) Create(t *Task) (string, error) {
	t.ID = uuid.NewString()
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := s.db.Exec(`
		INSERT INTO tasks
			(id, project_id, parent_id, created_by_id, title, description,
			 status, effort_level, time_estimate, start_date, end_date, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		t.ID, t.ProjectID, t.ParentID, t.CreatedByID, t.Title, t.Description,
		string(t.Status), string(t.EffortLevel), t.TimeEstimate,
		nullTime(t.StartDate), nullTime(t.EndDate),
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert task: %w", err)
	}
	return t.ID, nil
}

// Get retrieves a task by ID.
func (s *SQLiteStore) Get(id string) (*Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return t, err
}

// Update saves changes to an existing task, updating UpdatedAt automatically.
func (s *SQLiteStore) Update(t *Task) error {
	t.UpdatedAt = time.Now().UTC()

	res, err := s.db.Exec(`
		UPDATE tasks SET
			project_id=?, parent_id=?, created_by_id=?, title=?, description=?,
			status=?, effort_level=?, time_estimate=?, start_date=?, end_date=?, updated_at=?
		WHERE id=?`,
		t.ProjectID, t.ParentID, t.CreatedByID, t.Title, t.Description,
		string(t.Status), string(t.EffortLevel), t.TimeEstimate,
		nullTime(t.StartDate), nullTime(t.EndDate), t.UpdatedAt,
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("task %s: %w", t.ID, ErrNotFound)
	}
	return nil
}

// ListByProject returns every task in a project ordered by creation time.
func (s *SQLiteStore) ListByProject(projectID string) ([]*Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskColumns+` FROM tasks WHERE project_id=? ORDER BY created_at ASC, id ASC`,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks for project %s: %w", projectID, err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// ListChildren returns the direct subtasks of parentID.
func (s *SQLiteStore) ListChildren(parentID string) ([]*Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskColumns+` FROM tasks WHERE parent_id=? ORDER BY created_at ASC, id ASC`,
		parentID)
	if err != nil {
		return nil, fmt.Errorf("list children of %s: %w", parentID, err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

func collectTasks(rows *sql.Rows) ([]*Task, error) {
	var tasks []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// scanner abstracts sql.Row and sql.Rows for scanTask.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*Task, error) {
	var t Task
	var status, effort string
	var startDate, endDate sql.NullTime

	err := s.Scan(
		&t.ID, &t.ProjectID, &t.ParentID, &t.CreatedByID, &t.Title, &t.Description,
		&status, &effort, &t.TimeEstimate,
		&startDate, &endDate,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Status = Status(status)
	t.EffortLevel = EffortLevel(effort)
	if startDate.Valid {
		t.StartDate = &startDate.Time
	}
	if endDate.Valid {
		t.EndDate = &endDate.Time
	}
	return &t, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
