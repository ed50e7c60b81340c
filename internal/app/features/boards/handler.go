// Package boards serves the board columns of a project: listing, adding,
// editing, deleting, and reordering.
//
// A board's position is its explicit order field, dense 0..n-1 within the
// project. New boards always append; reorders rewrite every order in one
// batch.
package boards

import (
	"encoding/json"
	"errors"
	"net/http"

	uierrors "github.com/boardhub/boardhub/internal/app/features/errors"
	"github.com/boardhub/boardhub/internal/app/policy/projectpolicy"
	boardstore "github.com/boardhub/boardhub/internal/app/store/boards"
	projectstore "github.com/boardhub/boardhub/internal/app/store/projects"
	"github.com/boardhub/boardhub/internal/app/system/authz"
	"github.com/boardhub/boardhub/internal/app/system/events"
	"github.com/boardhub/boardhub/internal/app/system/normalize"
	"github.com/boardhub/boardhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Boards   *boardstore.Store
	Projects *projectstore.Store
	Events   *events.Publisher
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(boards *boardstore.Store, projects *projectstore.Store, pub *events.Publisher, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Boards: boards, Projects: projects, Events: pub, ErrLog: errLog, Log: logger}
}

type boardView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Order int    `json:"order"`
}

func toView(b models.Board) boardView {
	return boardView{ID: b.ID.Hex(), Name: b.Name, Color: b.Color, Order: b.Order}
}

// loadProject resolves {projectID} and checks membership. Mutating
// endpoints additionally require the editor role.
func (h *Handler) loadProject(w http.ResponseWriter, r *http.Request, needEdit bool) (*models.Project, bool) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.Unauthorized(w)
		return nil, false
	}
	projectID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "projectID"))
	if err != nil {
		uierrors.BadRequest(w, "invalid project id")
		return nil, false
	}

	p, err := h.Projects.GetByID(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			uierrors.NotFound(w, "project not found")
			return nil, false
		}
		h.ErrLog.LogServerError(w, r, "load project failed", err, "Unable to load project.")
		return nil, false
	}

	role := projectpolicy.GetUserRole(p, userID)
	if !projectpolicy.Valid(role) {
		uierrors.NotFound(w, "project not found")
		return nil, false
	}
	if needEdit && !projectpolicy.CanEditProject(role) {
		uierrors.Forbidden(w, "you don't have permission to edit boards")
		return nil, false
	}
	return p, true
}

func (h *Handler) publish(r *http.Request, p *models.Project) {
	h.Events.Publish(r.Context(), events.Event{
		Kind:      events.BoardChanged,
		ProjectID: p.ID,
		Members:   p.Members,
	})
}

// ServeList handles GET /projects/{projectID}/boards.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadProject(w, r, false)
	if !ok {
		return
	}

	boards, err := h.Boards.ListByProject(r.Context(), p.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list boards failed", err, "Unable to load boards.")
		return
	}

	views := make([]boardView, 0, len(boards))
	for _, b := range boards {
		views = append(views, toView(b))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(views)
}

type addRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// HandleAdd handles POST /projects/{projectID}/boards. The new board lands
// after every existing one.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadProject(w, r, true)
	if !ok {
		return
	}

	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid request body")
		return
	}
	if normalize.Name(req.Name) == "" {
		uierrors.BadRequest(w, "board name is required")
		return
	}

	b, err := h.Boards.Add(r.Context(), p.ID, req.Name, req.Color)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "add board failed", err, "Unable to add board.")
		return
	}

	h.publish(r, p)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toView(b))
}

type updateRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// HandleUpdate handles PUT /projects/{projectID}/boards/{boardID}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadProject(w, r, true)
	if !ok {
		return
	}
	boardID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "boardID"))
	if err != nil {
		uierrors.BadRequest(w, "invalid board id")
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid request body")
		return
	}
	if normalize.Name(req.Name) == "" {
		uierrors.BadRequest(w, "board name is required")
		return
	}

	if err := h.Boards.Update(r.Context(), boardID, req.Name, req.Color); err != nil {
		if errors.Is(err, boardstore.ErrNotFound) {
			uierrors.NotFound(w, "board not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "update board failed", err, "Unable to update board.")
		return
	}
	h.publish(r, p)
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete handles DELETE /projects/{projectID}/boards/{boardID}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadProject(w, r, true)
	if !ok {
		return
	}
	boardID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "boardID"))
	if err != nil {
		uierrors.BadRequest(w, "invalid board id")
		return
	}

	if err := h.Boards.Delete(r.Context(), boardID); err != nil {
		if errors.Is(err, boardstore.ErrNotFound) {
			uierrors.NotFound(w, "board not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "delete board failed", err, "Unable to delete board.")
		return
	}
	h.publish(r, p)
	w.WriteHeader(http.StatusNoContent)
}

type orderRequest struct {
	OrderedIDs []string `json:"ordered_ids"`
}

// HandleOrder handles POST /projects/{projectID}/boards/order. The body
// carries the full column order left to right; each board's order becomes
// its index.
func (h *Handler) HandleOrder(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadProject(w, r, true)
	if !ok {
		return
	}

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid request body")
		return
	}

	ids := make([]primitive.ObjectID, 0, len(req.OrderedIDs))
	for _, raw := range req.OrderedIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			uierrors.BadRequest(w, "invalid board id")
			return
		}
		ids = append(ids, id)
	}

	if err := h.Boards.UpdateOrder(r.Context(), p.ID, ids); err != nil {
		h.ErrLog.LogServerError(w, r, "reorder boards failed", err, "Unable to reorder boards.")
		return
	}
	h.publish(r, p)
	w.WriteHeader(http.StatusNoContent)
}
