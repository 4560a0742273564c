package tracker

import (
	"fmt"

	"github.com/GoCodeAlone/planner/task"
)

// AssignUser adds a user to a task's assignees. Assigning an existing
// assignee is a no-op.
func (s *Service) AssignUser(taskID, userID, actorID string) error {
	if _, err := s.tasks.Get(taskID); err != nil {
		return err
	}
	actor, err := s.users.Get(actorID)
	if err != nil {
		return fmt.Errorf("actor: %w", err)
	}
	assigned, err := s.users.Get(userID)
	if err != nil {
		return fmt.Errorf("assigned user: %w", err)
	}

	if err := s.tasks.AssignUser(taskID, userID); err != nil {
		return err
	}
	s.logActivity(taskID, actorID, "assigned_user",
		fmt.Sprintf("%s added %s as a task assignee", actor.Name, assigned.Name))
	return nil
}

// UnassignUser removes a user from a task's assignees.
func (s *Service) UnassignUser(taskID, userID, actorID string) error {
	actor, err := s.users.Get(actorID)
	if err != nil {
		return fmt.Errorf("actor: %w", err)
	}
	removed, err := s.users.Get(userID)
	if err != nil {
		return fmt.Errorf("removed user: %w", err)
	}

	if err := s.tasks.UnassignUser(taskID, userID); err != nil {
		return err
	}
	s.logActivity(taskID, actorID, "removed_user",
		fmt.Sprintf("%s removed %s from task assignees", actor.Name, removed.Name))
	return nil
}

// Assignees returns the user ids assigned to a task.
func (s *Service) Assignees(taskID string) ([]string, error) {
	return s.tasks.ListAssignees(taskID)
}

// AddTag attaches a tag to a task.
func (s *Service) AddTag(taskID, tag, actorID string) error {
	actor, err := s.users.Get(actorID)
	if err != nil {
		return err
	}
	t, err := s.tasks.Get(taskID)
	if err != nil {
		return err
	}

	if err := s.tasks.AddTag(taskID, tag); err != nil {
		return err
	}
	s.logActivity(taskID, actorID, "added_tag",
		fmt.Sprintf("%s added tag %q to task %q at %s",
			actor.Name, tag, t.Title, s.clock.Now().Format(activityTimeFormat)))
	return nil
}

// RemoveTag detaches a tag from a task.
func (s *Service) RemoveTag(taskID, tag, actorID string) error {
	actor, err := s.users.Get(actorID)
	if err != nil {
		return err
	}
	t, err := s.tasks.Get(taskID)
	if err != nil {
		return err
	}

	if err := s.tasks.RemoveTag(taskID, tag); err != nil {
		return err
	}
	s.logActivity(taskID, actorID, "removed_tag",
		fmt.Sprintf("%s removed tag %q from task %q at %s",
			actor.Name, tag, t.Title, s.clock.Now().Format(activityTimeFormat)))
	return nil
}

// Tags returns all tags on a task.
func (s *Service) Tags(taskID string) ([]string, error) {
	return s.tasks.ListTags(taskID)
}

// AddComment records a comment on a task.
func (s *Service) AddComment(taskID, userID, comment string) (*task.Comment, error) {
	u, err := s.users.Get(userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.tasks.Get(taskID); err != nil {
		return nil, err
	}

	c := &task.Comment{TaskID: taskID, UserID: userID, Comment: comment}
	if _, err := s.tasks.AddComment(c); err != nil {
		return nil, err
	}

	s.logActivity(taskID, userID, "added_comment",
		fmt.Sprintf("%s added a comment: %q at %s",
			u.Name, comment, c.CreatedAt.Format(activityTimeFormat)))
	return c, nil
}

// DeleteComment removes a comment.
func (s *Service) DeleteComment(commentID, userID string) error {
	u, err := s.users.Get(userID)
	if err != nil {
		return err
	}
	c, err := s.tasks.DeleteComment(commentID)
	if err != nil {
		return err
	}
	s.logActivity(c.TaskID, userID, "deleted_comment",
		fmt.Sprintf("%s deleted a comment %q at %s",
			u.Name, c.Comment, s.clock.Now().Format(activityTimeFormat)))
	return nil
}

// Comments returns the comments on a task.
func (s *Service) Comments(taskID string) ([]*task.Comment, error) {
	return s.tasks.ListComments(taskID)
}

// Activity returns the audit log of a task.
func (s *Service) Activity(taskID string) ([]*task.Activity, error) {
	return s.tasks.ListActivity(taskID)
}
