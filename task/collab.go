package task

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AddComment persists a new comment and sets its ID and timestamps.
func (s *SQLiteStore) AddComment(c *Comment) (string, error) {
	c.ID = uuid.NewString()
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := s.db.Exec(`
		INSERT INTO task_comments (id, task_id, user_id, comment, created_at, updated_at)
		VALUES (?,?,?,?,?,?)`,
		c.ID, c.TaskID, c.UserID, c.Comment, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert comment: %w", err)
	}
	return c.ID, nil
}

// DeleteComment removes a comment and returns the deleted record.
func (s *SQLiteStore) DeleteComment(commentID string) (*Comment, error) {
	row := s.db.QueryRow(
		`SELECT id, task_id, user_id, comment, created_at, updated_at
		 FROM task_comments WHERE id=?`, commentID)
	var c Comment
	err := row.Scan(&c.ID, &c.TaskID, &c.UserID, &c.Comment, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("comment %s: %w", commentID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if _, err := s.db.Exec(`DELETE FROM task_comments WHERE id=?`, commentID); err != nil {
		return nil, fmt.Errorf("delete comment: %w", err)
	}
	return &c, nil
}

// ListComments returns all comments on a task, oldest first.
func (s *SQLiteStore) ListComments(taskID string) ([]*Comment, error) {
	rows, err := s.db.Query(
		`SELECT id, task_id, user_id, comment, created_at, updated_at
		 FROM task_comments WHERE task_id=? ORDER BY created_at ASC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list comments for %s: %w", taskID, err)
	}
	defer rows.Close()

	var comments []*Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.UserID, &c.Comment, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}

// AddTag attaches a tag to a task. Adding an existing tag is a no-op.
func (s *SQLiteStore) AddTag(taskID, tag string) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO task_tags (task_id, tag) VALUES (?,?)`, taskID, tag)
	if err != nil {
		return fmt.Errorf("add tag: %w", err)
	}
	return nil
}

// RemoveTag detaches a tag from a task.
func (s *SQLiteStore) RemoveTag(taskID, tag string) error {
	_, err := s.db.Exec(`DELETE FROM task_tags WHERE task_id=? AND tag=?`, taskID, tag)
	if err != nil {
		return fmt.Errorf("remove tag: %w", err)
	}
	return nil
}

// ListTags returns all tags on a task.
func (s *SQLiteStore) ListTags(taskID string) ([]string, error) {
	rows, err := s.db.Query(`SELECT tag FROM task_tags WHERE task_id=? ORDER BY tag ASC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list tags for %s: %w", taskID, err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// AssignUser adds a user to the task's assignees. Re-assigning is a no-op.
func (s *SQLiteStore) AssignUser(taskID, userID string) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO task_assignees (task_id, user_id) VALUES (?,?)`, taskID, userID)
	if err != nil {
		return fmt.Errorf("assign user: %w", err)
	}
	return nil
}

// UnassignUser removes a user from the task's assignees.
func (s *SQLiteStore) UnassignUser(taskID, userID string) error {
	_, err := s.db.Exec(`DELETE FROM task_assignees WHERE task_id=? AND user_id=?`, taskID, userID)
	if err != nil {
		return fmt.Errorf("unassign user: %w", err)
	}
	return nil
}

// ListAssignees returns the user ids assigned to a task.
func (s *SQLiteStore) ListAssignees(taskID string) ([]string, error) {
	rows, err := s.db.Query(`SELECT user_id FROM task_assignees WHERE task_id=?`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list assignees for %s: %w", taskID, err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

// LogActivity appends an audit-log entry for a task.
func (s *SQLiteStore) LogActivity(a *Activity) error {
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now().UTC()

	_, err := s.db.Exec(`
		INSERT INTO task_activity (id, task_id, user_id, action, details, created_at)
		VALUES (?,?,?,?,?,?)`,
		a.ID, a.TaskID, a.UserID, a.Action, a.Details, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("log activity: %w", err)
	}
	return nil
}

// ListActivity returns the audit log for a task, oldest first.
func (s *SQLiteStore) ListActivity(taskID string) ([]*Activity, error) {
	rows, err := s.db.Query(
		`SELECT id, task_id, user_id, action, details, created_at
		 FROM task_activity WHERE task_id=? ORDER BY created_at ASC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list activity for %s: %w", taskID, err)
	}
	defer rows.Close()

	var entries []*Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.TaskID, &a.UserID, &a.Action, &a.Details, &a.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &a)
	}
	return entries, rows.Err()
}
