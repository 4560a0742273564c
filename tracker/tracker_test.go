package tracker

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/GoCodeAlone/planner/project"
	"github.com/GoCodeAlone/planner/schedule"
	"github.com/GoCodeAlone/planner/task"
	"github.com/GoCodeAlone/planner/user"
)

// fakeClock returns a fixed instant.
type fakeClock struct{ now time.Time }

func (c fakeClock) Now() time.Time { return c.now }

func tempDB(t *testing.T, pattern string) string {
	t.Helper()
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })
	return f.Name()
}

func newTestService(t *testing.T) *Service {
	t.Helper()

	tasks, err := task.NewSQLiteStore(tempDB(t, "planner-tasks-*.db"))
	if err != nil {
		t.Fatalf("task store: %v", err)
	}
	t.Cleanup(func() { tasks.Close() })

	projects, err := project.NewSQLiteStore(tempDB(t, "planner-projects-*.db"))
	if err != nil {
		t.Fatalf("project store: %v", err)
	}
	t.Cleanup(func() { projects.Close() })

	users, err := user.NewSQLiteStore(tempDB(t, "planner-users-*.db"))
	if err != nil {
		t.Fatalf("user store: %v", err)
	}
	t.Cleanup(func() { users.Close() })

	clock := fakeClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	engine := schedule.NewEngine(tasks, projects, clock, nil)
	return NewService(tasks, projects, users, engine, clock, nil)
}

func registerUser(t *testing.T, svc *Service, name, email string) *user.User {
	t.Helper()
	u, err := svc.RegisterUser(name, email, "password")
	if err != nil {
		t.Fatalf("RegisterUser %s: %v", email, err)
	}
	return u
}

func createProject(t *testing.T, svc *Service, owner *user.User) *ProjectDetail {
	t.Helper()
	p, err := svc.CreateProject("proj", "", nil, owner.ID)
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	return p
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := newTestService(t)

	u := registerUser(t, svc, "Alice", "alice@example.com")
	if u.Role != user.RoleUser {
		t.Errorf("Role = %q, want USER", u.Role)
	}

	got, err := svc.AuthenticateUser("alice@example.com", "password")
	if err != nil {
		t.Fatalf("AuthenticateUser: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("authenticated %q, want %q", got.ID, u.ID)
	}

	if _, err := svc.AuthenticateUser("alice@example.com", "wrong"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("bad password err = %v, want ErrForbidden", err)
	}
	if _, err := svc.RegisterUser("", "", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty register err = %v, want ErrInvalidInput", err)
	}
}

func TestProjectMembership(t *testing.T) {
	svc := newTestService(t)
	owner := registerUser(t, svc, "Owner", "owner@example.com")
	joiner := registerUser(t, svc, "Joiner", "joiner@example.com")

	p := createProject(t, svc, owner)
	if len(p.Members) != 1 || p.Members[0].Role != project.RoleOwner {
		t.Fatalf("members = %+v, want one OWNER", p.Members)
	}

	joined, err := svc.JoinProject(p.InviteCode, joiner.ID)
	if err != nil {
		t.Fatalf("JoinProject: %v", err)
	}
	if len(joined.Members) != 2 {
		t.Errorf("members after join = %d, want 2", len(joined.Members))
	}

	// Joining twice is rejected.
	if _, err := svc.JoinProject(p.InviteCode, joiner.ID); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("double join err = %v, want ErrInvalidInput", err)
	}

	// Non-owner cannot update or delete.
	if _, err := svc.UpdateProject(p.ID, "new", "", nil, joiner.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-owner update err = %v, want ErrForbidden", err)
	}
	if err := svc.DeleteProject(p.ID, joiner.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-owner delete err = %v, want ErrForbidden", err)
	}

	// Deleted project's invite code stops working.
	if err := svc.DeleteProject(p.ID, owner.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	outsider := registerUser(t, svc, "Late", "late@example.com")
	if _, err := svc.JoinProject(p.InviteCode, outsider.ID); !errors.Is(err, project.ErrNotFound) {
		t.Fatalf("join deleted err = %v, want project.ErrNotFound", err)
	}
}

func TestGetProject_RequiresMembership(t *testing.T) {
	svc := newTestService(t)
	owner := registerUser(t, svc, "Owner", "owner@example.com")
	outsider := registerUser(t, svc, "Out", "out@example.com")
	p := createProject(t, svc, owner)

	if _, err := svc.GetProject(p.ID, outsider.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("outsider get err = %v, want ErrForbidden", err)
	}
	if _, err := svc.GetProject(p.ID, owner.ID); err != nil {
		t.Fatalf("owner get: %v", err)
	}
}

func TestCreateTask_Validation(t *testing.T) {
	svc := newTestService(t)
	owner := registerUser(t, svc, "Owner", "owner@example.com")
	p := createProject(t, svc, owner)
	other := createProject(t, svc, owner)

	_, err := svc.CreateTask(&task.Task{ProjectID: p.ID, Title: "no effort"}, owner.ID)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing effort err = %v, want ErrInvalidInput", err)
	}

	foreign, err := svc.CreateTask(&task.Task{
		ProjectID: other.ID, Title: "foreign", EffortLevel: task.EffortSimple,
	}, owner.ID)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	_, err = svc.CreateTask(&task.Task{
		ProjectID: p.ID, ParentID: foreign.ID, Title: "cross", EffortLevel: task.EffortSimple,
	}, owner.ID)
	if !errors.Is(err, schedule.ErrInvalidHierarchy) {
		t.Fatalf("cross-project parent err = %v, want ErrInvalidHierarchy", err)
	}
}

func TestCreateTask_ResolvesEstimateAndLogs(t *testing.T) {
	svc := newTestService(t)
	owner := registerUser(t, svc, "Alice", "alice@example.com")
	p := createProject(t, svc, owner)

	created, err := svc.CreateTask(&task.Task{
		ProjectID: p.ID, Title: "work", EffortLevel: task.EffortModerate,
	}, owner.ID)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if created.Status != task.StatusNotStarted {
		t.Errorf("Status = %q, want NOT_STARTED", created.Status)
	}
	if want := (72 * time.Hour).Milliseconds(); created.TimeEstimate != want {
		t.Errorf("TimeEstimate = %d, want %d", created.TimeEstimate, want)
	}

	entries, err := svc.Activity(created.ID)
	if err != nil {
		t.Fatalf("Activity: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != "created_task" {
		t.Fatalf("activity = %+v, want one created_task entry", entries)
	}
	if !strings.Contains(entries[0].Details, "Alice created task") {
		t.Errorf("details = %q, want creator name and action", entries[0].Details)
	}
}

func TestCreateTask_RollsUpParent(t *testing.T) {
	svc := newTestService(t)
	owner := registerUser(t, svc, "Owner", "owner@example.com")
	p := createProject(t, svc, owner)

	parent, err := svc.CreateTask(&task.Task{
		ProjectID: p.ID, Title: "parent", EffortLevel: task.EffortSimple,
	}, owner.ID)
	if err != nil {
		t.Fatalf("CreateTask parent: %v", err)
	}

	childStart := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	childEnd := time.Date(2024, 1, 10, 23, 59, 59, 999_000_000, time.UTC)
	_, err = svc.CreateTask(&task.Task{
		ProjectID: p.ID, ParentID: parent.ID, Title: "child", EffortLevel: task.EffortSimple,
		StartDate: &childStart, EndDate: &childEnd,
	}, owner.ID)
	if err != nil {
		t.Fatalf("CreateTask child: %v", err)
	}

	got, err := svc.GetTask(parent.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	wantStart := childEnd.AddDate(0, 0, 1)
	if got.StartDate == nil || !got.StartDate.Equal(wantStart) {
		t.Errorf("parent start = %v, want child end + 1 day %v", got.StartDate, wantStart)
	}
	if got.EndDate == nil {
		t.Error("parent end not recomputed")
	}
	if len(got.Subtasks) != 1 || got.Subtasks[0].Title != "child" {
		t.Errorf("subtasks = %+v, want [child]", got.Subtasks)
	}
}

func TestUpdateTask_GateBlocksStart(t *testing.T) {
	svc := newTestService(t)
	owner := registerUser(t, svc, "Owner", "owner@example.com")
	p := createProject(t, svc, owner)

	parent, err := svc.CreateTask(&task.Task{
		ProjectID: p.ID, Title: "parent", EffortLevel: task.EffortSimple,
	}, owner.ID)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	child, err := svc.CreateTask(&task.Task{
		ProjectID: p.ID, ParentID: parent.ID, Title: "child", EffortLevel: task.EffortSimple,
	}, owner.ID)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	upd := *parent
	upd.Status = task.StatusInProgress
	if _, err := svc.UpdateTask(parent.ID, &upd, owner.ID); !errors.Is(err, schedule.ErrInvalidState) {
		t.Fatalf("gated update err = %v, want ErrInvalidState", err)
	}

	// ON_HOLD is not gated.
	upd.Status = task.StatusOnHold
	if _, err := svc.UpdateTask(parent.ID, &upd, owner.ID); err != nil {
		t.Fatalf("ON_HOLD update: %v", err)
	}

	// Completing the child opens the gate.
	cupd := *child
	cupd.Status = task.StatusDone
	if _, err := svc.UpdateTask(child.ID, &cupd, owner.ID); err != nil {
		t.Fatalf("complete child: %v", err)
	}
	upd.Status = task.StatusDone
	got, err := svc.UpdateTask(parent.ID, &upd, owner.ID)
	if err != nil {
		t.Fatalf("DONE update after children complete: %v", err)
	}
	if got.Status != task.StatusDone {
		t.Errorf("Status = %q, want DONE", got.Status)
	}
}

func TestUpdateTask_ReparentGuard(t *testing.T) {
	svc := newTestService(t)
	owner := registerUser(t, svc, "Owner", "owner@example.com")
	p := createProject(t, svc, owner)

	root, err := svc.CreateTask(&task.Task{ProjectID: p.ID, Title: "root", EffortLevel: task.EffortSimple}, owner.ID)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	leaf, err := svc.CreateTask(&task.Task{
		ProjectID: p.ID, ParentID: root.ID, Title: "leaf", EffortLevel: task.EffortSimple,
	}, owner.ID)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	upd := *root
	upd.ParentID = leaf.ID
	if _, err := svc.UpdateTask(root.ID, &upd, owner.ID); !errors.Is(err, schedule.ErrInvalidHierarchy) {
		t.Fatalf("descendant parent err = %v, want ErrInvalidHierarchy", err)
	}

	// Removing the parent is always allowed.
	lupd := *leaf
	lupd.ParentID = ""
	got, err := svc.UpdateTask(leaf.ID, &lupd, owner.ID)
	if err != nil {
		t.Fatalf("remove parent: %v", err)
	}
	if got.ParentID != "" {
		t.Errorf("ParentID = %q, want empty", got.ParentID)
	}
}

func TestUpdateTask_RecordsChanges(t *testing.T) {
	svc := newTestService(t)
	owner := registerUser(t, svc, "Alice", "alice@example.com")
	p := createProject(t, svc, owner)

	created, err := svc.CreateTask(&task.Task{
		ProjectID: p.ID, Title: "before", EffortLevel: task.EffortSimple,
	}, owner.ID)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	upd := *created
	upd.Title = "after"
	if _, err := svc.UpdateTask(created.ID, &upd, owner.ID); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	entries, err := svc.Activity(created.ID)
	if err != nil {
		t.Fatalf("Activity: %v", err)
	}
	last := entries[len(entries)-1]
	if last.Action != "updated_task" {
		t.Fatalf("last action = %q, want updated_task", last.Action)
	}
	if !strings.Contains(last.Details, `title from "before" to "after"`) {
		t.Errorf("details = %q, want title change recorded", last.Details)
	}
}

func TestDeleteTask_SoftDelete(t *testing.T) {
	svc := newTestService(t)
	owner := registerUser(t, svc, "Owner", "owner@example.com")
	p := createProject(t, svc, owner)

	created, err := svc.CreateTask(&task.Task{
		ProjectID: p.ID, Title: "doomed", EffortLevel: task.EffortSimple,
	}, owner.ID)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if err := svc.DeleteTask(created.ID, owner.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}

	got, err := svc.GetTask(created.ID)
	if err != nil {
		t.Fatalf("GetTask after delete: %v", err)
	}
	if got.Status != task.StatusDeleted {
		t.Errorf("Status = %q, want DELETED (soft delete, not removal)", got.Status)
	}
}

func TestGenerateSchedule_UnknownUser(t *testing.T) {
	svc := newTestService(t)
	owner := registerUser(t, svc, "Owner", "owner@example.com")
	p := createProject(t, svc, owner)

	if _, err := svc.GenerateSchedule(p.ID, "nobody"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("err = %v, want user.ErrNotFound", err)
	}
	if _, err := svc.GenerateSchedule(p.ID, owner.ID); err != nil {
		t.Fatalf("GenerateSchedule: %v", err)
	}
}

func TestAssignAndTag(t *testing.T) {
	svc := newTestService(t)
	owner := registerUser(t, svc, "Owner", "owner@example.com")
	helper := registerUser(t, svc, "Helper", "helper@example.com")
	p := createProject(t, svc, owner)

	created, err := svc.CreateTask(&task.Task{
		ProjectID: p.ID, Title: "shared", EffortLevel: task.EffortSimple,
	}, owner.ID)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if err := svc.AssignUser(created.ID, helper.ID, owner.ID); err != nil {
		t.Fatalf("AssignUser: %v", err)
	}
	assignees, err := svc.Assignees(created.ID)
	if err != nil {
		t.Fatalf("Assignees: %v", err)
	}
	if len(assignees) != 1 || assignees[0] != helper.ID {
		t.Errorf("assignees = %v, want [%s]", assignees, helper.ID)
	}

	if err := svc.AddTag(created.ID, "backend", owner.ID); err != nil {
		t.Fatalf("AddTag: %v", err)
	}
	tags, err := svc.Tags(created.ID)
	if err != nil {
		t.Fatalf("Tags: %v", err)
	}
	if len(tags) != 1 || tags[0] != "backend" {
		t.Errorf("tags = %v, want [backend]", tags)
	}

	c, err := svc.AddComment(created.ID, helper.ID, "looks good")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	comments, err := svc.Comments(created.ID)
	if err != nil {
		t.Fatalf("Comments: %v", err)
	}
	if len(comments) != 1 || comments[0].ID != c.ID {
		t.Errorf("comments = %+v, want the one added", comments)
	}
	if err := svc.DeleteComment(c.ID, helper.ID); err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}
}
