// Package tasks serves a project's tasks: the partitioned board/upcoming
// view, the drop dispatcher for drag-and-drop, and the task mutation
// commands.
//
// Task mutations (create, save, delete) run through the commands registry
// rather than ad-hoc endpoints, so every mutation shares one permission
// and normalization path.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	uierrors "github.com/boardhub/boardhub/internal/app/features/errors"
	"github.com/boardhub/boardhub/internal/app/policy/projectpolicy"
	boardstore "github.com/boardhub/boardhub/internal/app/store/boards"
	projectstore "github.com/boardhub/boardhub/internal/app/store/projects"
	taskstore "github.com/boardhub/boardhub/internal/app/store/tasks"
	"github.com/boardhub/boardhub/internal/app/system/authz"
	"github.com/boardhub/boardhub/internal/app/system/commands"
	"github.com/boardhub/boardhub/internal/app/system/dragdrop"
	"github.com/boardhub/boardhub/internal/app/system/events"
	"github.com/boardhub/boardhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Permission errors surfaced by command handlers.
var (
	errForbidden = errors.New("you don't have permission to edit tasks")
	errNotMember = errors.New("project not found")
)

type Handler struct {
	Tasks    *taskstore.Store
	Boards   *boardstore.Store
	Projects *projectstore.Store
	Commands *commands.Registry
	Events   *events.Publisher
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

// NewHandler builds the tasks handler and registers the task commands on
// the shared registry.
func NewHandler(tasks *taskstore.Store, boards *boardstore.Store, projects *projectstore.Store, reg *commands.Registry, pub *events.Publisher, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	h := &Handler{
		Tasks:    tasks,
		Boards:   boards,
		Projects: projects,
		Commands: reg,
		Events:   pub,
		ErrLog:   errLog,
		Log:      logger,
	}
	reg.Register(commands.TaskCreate, h.taskCreate)
	reg.Register(commands.TaskSave, h.taskSave)
	reg.Register(commands.TaskDelete, h.taskDelete)
	return h
}

type taskView struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Priority    string     `json:"priority,omitempty"`
}

func toView(t models.Task) taskView {
	return taskView{
		ID:          t.ID.Hex(),
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Deadline:    t.Deadline,
		Priority:    t.Priority,
	}
}

// loadProject resolves {projectID} and checks membership.
func (h *Handler) loadProject(w http.ResponseWriter, r *http.Request) (*models.Project, projectpolicy.Role, bool) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.Unauthorized(w)
		return nil, "", false
	}
	projectID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "projectID"))
	if err != nil {
		uierrors.BadRequest(w, "invalid project id")
		return nil, "", false
	}

	p, err := h.Projects.GetByID(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			uierrors.NotFound(w, "project not found")
			return nil, "", false
		}
		h.ErrLog.LogServerError(w, r, "load project failed", err, "Unable to load project.")
		return nil, "", false
	}

	role := projectpolicy.GetUserRole(p, userID)
	if !projectpolicy.Valid(role) {
		uierrors.NotFound(w, "project not found")
		return nil, "", false
	}
	return p, role, true
}

// firstBoardStatus returns the status tasks land on when they surface from
// upcoming: the leftmost column's name.
func (h *Handler) firstBoardStatus(ctx context.Context, projectID primitive.ObjectID) (string, []models.Board, error) {
	boards, err := h.Boards.ListByProject(ctx, projectID)
	if err != nil {
		return "", nil, err
	}
	if len(boards) == 0 {
		return models.DefaultBoards[0].Name, nil, nil
	}
	return boards[0].Name, boards, nil
}

func (h *Handler) publish(ctx context.Context, kind string, p *models.Project) {
	h.Events.Publish(ctx, events.Event{
		Kind:      kind,
		ProjectID: p.ID,
		Members:   p.Members,
	})
}

// ServeList handles GET /projects/{projectID}/tasks. Tasks come back
// partitioned: board tasks under "current", future-dated upcoming tasks
// under "upcoming". An upcoming task whose deadline has passed shows under
// the first column.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p, _, ok := h.loadProject(w, r)
	if !ok {
		return
	}

	first, _, err := h.firstBoardStatus(r.Context(), p.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list boards failed", err, "Unable to load tasks.")
		return
	}
	all, err := h.Tasks.ListByProject(r.Context(), p.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list tasks failed", err, "Unable to load tasks.")
		return
	}

	current, upcoming := taskstore.Partition(all, first, time.Now())
	resp := struct {
		Current  []taskView `json:"current"`
		Upcoming []taskView `json:"upcoming"`
	}{Current: []taskView{}, Upcoming: []taskView{}}
	for _, t := range current {
		resp.Current = append(resp.Current, toView(t))
	}
	for _, t := range upcoming {
		resp.Upcoming = append(resp.Upcoming, toView(t))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// dropRequest mirrors the browser drop: the drag-data payload plus the
// drop target.
type dropRequest struct {
	Payload   map[string]string `json:"payload"`
	Status    string            `json:"status,omitempty"`
	DropIndex int               `json:"drop_index"`
}

// HandleDrop handles POST /projects/{projectID}/tasks/drop, the single
// dispatch point for drops on a board column. Which action runs depends on
// the drag-data keys, and a column drag wins over a task drag.
func (h *Handler) HandleDrop(w http.ResponseWriter, r *http.Request) {
	p, role, ok := h.loadProject(w, r)
	if !ok {
		return
	}

	var req dropRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid request body")
		return
	}

	drop := dragdrop.Resolve(req.Payload)
	switch drop.Kind {
	case dragdrop.TaskMove:
		if !projectpolicy.CanEditProject(role) {
			uierrors.Forbidden(w, "You don't have permission to move tasks")
			return
		}
		taskID, err := primitive.ObjectIDFromHex(drop.TaskID)
		if err != nil {
			uierrors.BadRequest(w, "invalid task id")
			return
		}
		if req.Status == "" {
			uierrors.BadRequest(w, "target status is required")
			return
		}
		if err := h.Tasks.SetStatus(r.Context(), taskID, req.Status); err != nil {
			if errors.Is(err, taskstore.ErrNotFound) {
				uierrors.NotFound(w, "task not found")
				return
			}
			h.ErrLog.LogServerError(w, r, "move task failed", err, "Unable to move task.")
			return
		}
		h.publish(r.Context(), events.TaskChanged, p)
		w.WriteHeader(http.StatusNoContent)

	case dragdrop.ColumnReorder:
		if !projectpolicy.CanEditProject(role) {
			uierrors.Forbidden(w, "You don't have permission to reorder boards")
			return
		}
		boards, err := h.Boards.ListByProject(r.Context(), p.ID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "list boards failed", err, "Unable to reorder boards.")
			return
		}
		reordered := dragdrop.Reorder(boards, drop.SourceIndex, req.DropIndex)
		ids := make([]primitive.ObjectID, len(reordered))
		for i, b := range reordered {
			ids[i] = b.ID
		}
		if err := h.Boards.UpdateOrder(r.Context(), p.ID, ids); err != nil {
			h.ErrLog.LogServerError(w, r, "reorder boards failed", err, "Unable to reorder boards.")
			return
		}
		h.publish(r.Context(), events.BoardChanged, p)
		w.WriteHeader(http.StatusNoContent)

	default:
		uierrors.BadRequest(w, "unrecognized drop payload")
	}
}

// HandleCommand handles POST /projects/{projectID}/tasks/commands.
func (h *Handler) HandleCommand(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.Unauthorized(w)
		return
	}

	var cmd commands.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		uierrors.BadRequest(w, "invalid request body")
		return
	}
	// The route's project scopes the command.
	cmd.Payload.ProjectID = chi.URLParam(r, "projectID")

	if err := h.Commands.Dispatch(r.Context(), userID.Hex(), cmd); err != nil {
		switch {
		case errors.Is(err, commands.ErrUnknownCommand):
			uierrors.BadRequest(w, err.Error())
		case errors.Is(err, errForbidden):
			uierrors.Forbidden(w, errForbidden.Error())
		case errors.Is(err, errNotMember):
			uierrors.NotFound(w, errNotMember.Error())
		case errors.Is(err, taskstore.ErrNotFound):
			uierrors.NotFound(w, "task not found")
		default:
			h.ErrLog.LogServerError(w, r, "task command failed", err, "Unable to apply change.")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleMoveToCurrent handles POST /projects/{projectID}/tasks/{taskID}/move-to-current.
// Pulls an upcoming task onto the first board immediately, dropping its
// deadline.
func (h *Handler) HandleMoveToCurrent(w http.ResponseWriter, r *http.Request) {
	p, role, ok := h.loadProject(w, r)
	if !ok {
		return
	}
	if !projectpolicy.CanEditProject(role) {
		uierrors.Forbidden(w, "you don't have permission to edit tasks")
		return
	}
	taskID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "taskID"))
	if err != nil {
		uierrors.BadRequest(w, "invalid task id")
		return
	}

	first, _, err := h.firstBoardStatus(r.Context(), p.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list boards failed", err, "Unable to move task.")
		return
	}
	if err := h.Tasks.MoveToCurrent(r.Context(), taskID, first); err != nil {
		if errors.Is(err, taskstore.ErrNotFound) {
			uierrors.NotFound(w, "task not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "move task to current failed", err, "Unable to move task.")
		return
	}
	h.publish(r.Context(), events.TaskChanged, p)
	w.WriteHeader(http.StatusNoContent)
}

// checkEdit loads the payload's project and verifies the acting user may
// edit tasks in it.
func (h *Handler) checkEdit(ctx context.Context, userID string, projectID string) (*models.Project, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, errNotMember
	}
	pid, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, errNotMember
	}

	p, err := h.Projects.GetByID(ctx, pid)
	if err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			return nil, errNotMember
		}
		return nil, err
	}
	role := projectpolicy.GetUserRole(p, uid)
	if !projectpolicy.Valid(role) {
		return nil, errNotMember
	}
	if !projectpolicy.CanEditProject(role) {
		return nil, errForbidden
	}
	return p, nil
}

// taskCreate implements the task-create command.
func (h *Handler) taskCreate(ctx context.Context, userID string, pl commands.TaskPayload) error {
	p, err := h.checkEdit(ctx, userID, pl.ProjectID)
	if err != nil {
		return err
	}
	first, _, err := h.firstBoardStatus(ctx, p.ID)
	if err != nil {
		return err
	}

	t := models.Task{ProjectID: p.ID, Status: first}
	if pl.Title != nil {
		t.Title = *pl.Title
	}
	if t.Title == "" {
		return errors.New("task title is required")
	}
	if pl.Description != nil {
		t.Description = *pl.Description
	}
	if pl.Status != nil {
		t.Status = *pl.Status
	}
	if pl.Deadline != nil {
		t.Deadline = pl.Deadline
	}
	if pl.Priority != nil {
		t.Priority = *pl.Priority
	}

	if _, err := h.Tasks.Create(ctx, t, first); err != nil {
		return err
	}
	h.publish(ctx, events.TaskChanged, p)
	return nil
}

// taskSave implements the task-save command.
func (h *Handler) taskSave(ctx context.Context, userID string, pl commands.TaskPayload) error {
	p, err := h.checkEdit(ctx, userID, pl.ProjectID)
	if err != nil {
		return err
	}
	taskID, err := primitive.ObjectIDFromHex(pl.TaskID)
	if err != nil {
		return taskstore.ErrNotFound
	}
	first, _, err := h.firstBoardStatus(ctx, p.ID)
	if err != nil {
		return err
	}

	patch := taskstore.Patch{
		Title:         pl.Title,
		Description:   pl.Description,
		Status:        pl.Status,
		Deadline:      pl.Deadline,
		ClearDeadline: pl.ClearDeadline,
		Priority:      pl.Priority,
	}
	if err := h.Tasks.Update(ctx, taskID, patch, first); err != nil {
		return err
	}
	h.publish(ctx, events.TaskChanged, p)
	return nil
}

// taskDelete implements the task-delete command.
func (h *Handler) taskDelete(ctx context.Context, userID string, pl commands.TaskPayload) error {
	p, err := h.checkEdit(ctx, userID, pl.ProjectID)
	if err != nil {
		return err
	}
	taskID, err := primitive.ObjectIDFromHex(pl.TaskID)
	if err != nil {
		return taskstore.ErrNotFound
	}

	if err := h.Tasks.Delete(ctx, taskID); err != nil {
		return err
	}
	h.publish(ctx, events.TaskChanged, p)
	return nil
}
