// Package api implements the Planner REST API handlers.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/GoCodeAlone/planner/project"
	"github.com/GoCodeAlone/planner/schedule"
	"github.com/GoCodeAlone/planner/task"
	"github.com/GoCodeAlone/planner/tracker"
	"github.com/GoCodeAlone/planner/user"
)

// Handlers bundles all REST API handler dependencies.
type Handlers struct {
	Svc     *tracker.Service
	Logger  *slog.Logger
	Version string
	StartAt int64 // unix timestamp of server start
}

// RegisterRoutes registers all API routes on the given mux.
func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/projects", h.createProject)
	mux.HandleFunc("POST /api/projects/join", h.joinProject)
	mux.HandleFunc("GET /api/projects", h.listProjects)
	mux.HandleFunc("GET /api/projects/{id}", h.getProject)
	mux.HandleFunc("PATCH /api/projects/{id}", h.updateProject)
	mux.HandleFunc("POST /api/projects/{id}/delete", h.deleteProject)
	mux.HandleFunc("GET /api/projects/{id}/members", h.projectMembers)
	mux.HandleFunc("POST /api/projects/{id}/schedule", h.generateSchedule)

	mux.HandleFunc("POST /api/tasks", h.createTask)
	mux.HandleFunc("GET /api/tasks", h.listTasks)
	mux.HandleFunc("GET /api/tasks/effort-levels", h.effortLevels)
	mux.HandleFunc("GET /api/tasks/{id}", h.getTask)
	mux.HandleFunc("PUT /api/tasks/{id}", h.updateTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", h.deleteTask)
	mux.HandleFunc("GET /api/tasks/{id}/can-start", h.canStart)

	mux.HandleFunc("GET /api/tasks/{id}/assignees", h.listAssignees)
	mux.HandleFunc("POST /api/tasks/{id}/assign/{userID}", h.assignUser)
	mux.HandleFunc("DELETE /api/tasks/{id}/assign/{userID}", h.unassignUser)

	mux.HandleFunc("GET /api/tasks/{id}/tags", h.listTags)
	mux.HandleFunc("POST /api/tasks/{id}/tags", h.addTag)
	mux.HandleFunc("DELETE /api/tasks/{id}/tags", h.removeTag)

	mux.HandleFunc("GET /api/tasks/{id}/comments", h.listComments)
	mux.HandleFunc("POST /api/tasks/{id}/comments", h.addComment)
	mux.HandleFunc("DELETE /api/comments/{commentID}", h.deleteComment)

	mux.HandleFunc("GET /api/tasks/{id}/activity", h.listActivity)

	mux.HandleFunc("GET /api/version", h.version)
}

// StatusFromError maps service errors to HTTP status codes.
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, task.ErrNotFound),
		errors.Is(err, project.ErrNotFound),
		errors.Is(err, user.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, schedule.ErrCycleDetected),
		errors.Is(err, schedule.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, schedule.ErrInvalidHierarchy),
		errors.Is(err, tracker.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, tracker.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handlers) fail(w http.ResponseWriter, err error) {
	status := StatusFromError(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error("request failed", slog.Any("err", err))
	}
	writeError(w, status, err.Error())
}

// --- Project handlers ---

type createProjectRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date,omitempty"`
}

func (h *Handlers) createProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	p, err := h.Svc.CreateProject(req.Name, req.Description, req.StartDate, UserIDFrom(r.Context()))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

type joinProjectRequest struct {
	InviteCode string `json:"invite_code"`
}

func (h *Handlers) joinProject(w http.ResponseWriter, r *http.Request) {
	var req joinProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	p, err := h.Svc.JoinProject(req.InviteCode, UserIDFrom(r.Context()))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Svc.ProjectsForUser(UserIDFrom(r.Context()))
	if err != nil {
		h.fail(w, err)
		return
	}
	if projects == nil {
		projects = []*tracker.ProjectDetail{}
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *Handlers) getProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.Svc.GetProject(r.PathValue("id"), UserIDFrom(r.Context()))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) updateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	p, err := h.Svc.UpdateProject(r.PathValue("id"), req.Name, req.Description, req.StartDate, UserIDFrom(r.Context()))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.DeleteProject(r.PathValue("id"), UserIDFrom(r.Context())); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) projectMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.Svc.ProjectMembers(r.PathValue("id"), UserIDFrom(r.Context()))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *Handlers) generateSchedule(w http.ResponseWriter, r *http.Request) {
	result, err := h.Svc.GenerateSchedule(r.PathValue("id"), UserIDFrom(r.Context()))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- Task handlers ---

func (h *Handlers) createTask(w http.ResponseWriter, r *http.Request) {
	var t task.Task
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	created, err := h.Svc.CreateTask(&t, UserIDFrom(r.Context()))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handlers) listTasks(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("project_id")
	if projectID == "" {
		writeError(w, http.StatusBadRequest, "project_id is required")
		return
	}
	tasks, err := h.Svc.TasksByProject(projectID)
	if err != nil {
		h.fail(w, err)
		return
	}
	if tasks == nil {
		tasks = []*tracker.TaskDetail{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *Handlers) getTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.Svc.GetTask(r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handlers) updateTask(w http.ResponseWriter, r *http.Request) {
	var t task.Task
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	updated, err := h.Svc.UpdateTask(r.PathValue("id"), &t, UserIDFrom(r.Context()))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handlers) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.DeleteTask(r.PathValue("id"), UserIDFrom(r.Context())); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) canStart(w http.ResponseWriter, r *http.Request) {
	ok, err := h.Svc.CanStart(r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"can_start": ok})
}

func (h *Handlers) effortLevels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, task.EffortLevels())
}

// --- Assignee handlers ---

func (h *Handlers) listAssignees(w http.ResponseWriter, r *http.Request) {
	users, err := h.Svc.Assignees(r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	if users == nil {
		users = []string{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handlers) assignUser(w http.ResponseWriter, r *http.Request) {
	err := h.Svc.AssignUser(r.PathValue("id"), r.PathValue("userID"), UserIDFrom(r.Context()))
	if err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) unassignUser(w http.ResponseWriter, r *http.Request) {
	err := h.Svc.UnassignUser(r.PathValue("id"), r.PathValue("userID"), UserIDFrom(r.Context()))
	if err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Tag handlers ---

func (h *Handlers) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.Svc.Tags(r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	if tags == nil {
		tags = []string{}
	}
	writeJSON(w, http.StatusOK, tags)
}

type tagRequest struct {
	Tag string `json:"tag"`
}

func (h *Handlers) addTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := h.Svc.AddTag(r.PathValue("id"), req.Tag, UserIDFrom(r.Context())); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) removeTag(w http.ResponseWriter, r *http.Request) {
	tag := r.URL.Query().Get("tag")
	if tag == "" {
		writeError(w, http.StatusBadRequest, "tag is required")
		return
	}
	if err := h.Svc.RemoveTag(r.PathValue("id"), tag, UserIDFrom(r.Context())); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Comment handlers ---

func (h *Handlers) listComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.Svc.Comments(r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	if comments == nil {
		comments = []*task.Comment{}
	}
	writeJSON(w, http.StatusOK, comments)
}

type commentRequest struct {
	Comment string `json:"comment"`
}

func (h *Handlers) addComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	c, err := h.Svc.AddComment(r.PathValue("id"), UserIDFrom(r.Context()), req.Comment)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handlers) deleteComment(w http.ResponseWriter, r *http.Request) {
	err := h.Svc.DeleteComment(r.PathValue("commentID"), UserIDFrom(r.Context()))
	if err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Activity handlers ---

func (h *Handlers) listActivity(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Svc.Activity(r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	if entries == nil {
		entries = []*task.Activity{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// --- Status ---

type statusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  int64  `json:"uptime_seconds"`
}

// StatusHandler returns a handler for the public status endpoint.
func (h *Handlers) StatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, statusResponse{
			Status:  "ok",
			Version: h.Version,
			Uptime:  time.Now().Unix() - h.StartAt,
		})
	}
}

func (h *Handlers) version(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": h.Version})
}
