// Package projects serves the project list and project management:
// creation, renaming, membership, ordering, activation, and deletion.
//
// Authorization is role-based per project (viewer < editor < admin <
// owner). The sidebar ordering and the active selection are client-local
// preferences kept in a signed cookie, never written to Mongo.
package projects

import (
	"encoding/json"
	"errors"
	"net/http"

	uierrors "github.com/boardhub/boardhub/internal/app/features/errors"
	"github.com/boardhub/boardhub/internal/app/policy/projectpolicy"
	projectstore "github.com/boardhub/boardhub/internal/app/store/projects"
	userstore "github.com/boardhub/boardhub/internal/app/store/users"
	"github.com/boardhub/boardhub/internal/app/system/authz"
	"github.com/boardhub/boardhub/internal/app/system/clientprefs"
	"github.com/boardhub/boardhub/internal/app/system/dragdrop"
	"github.com/boardhub/boardhub/internal/app/system/events"
	"github.com/boardhub/boardhub/internal/app/system/normalize"
	"github.com/boardhub/boardhub/internal/app/system/projectsync"
	"github.com/boardhub/boardhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Projects *projectstore.Store
	Users    *userstore.Store
	Prefs    *clientprefs.Codec
	Sync     *projectsync.Manager
	Events   *events.Publisher
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(projects *projectstore.Store, users *userstore.Store, prefs *clientprefs.Codec, sync *projectsync.Manager, pub *events.Publisher, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Projects: projects, Users: users, Prefs: prefs, Sync: sync, Events: pub, ErrLog: errLog, Log: logger}
}

// memberView is a membership entry with its role metadata resolved.
type memberView struct {
	UserID    string `json:"user_id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Role      string `json:"role"`
	RoleLabel string `json:"role_label"`
	RoleColor string `json:"role_color"`
}

type projectView struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Owner   string       `json:"owner"`
	MyRole  string       `json:"my_role"`
	Members []memberView `json:"members,omitempty"`
}

func (h *Handler) toView(p models.Project, userID primitive.ObjectID) projectView {
	return projectView{
		ID:     p.ID.Hex(),
		Name:   p.Name,
		Owner:  p.Owner.Hex(),
		MyRole: string(projectpolicy.GetUserRole(&p, userID)),
	}
}

// loadWithRole resolves {projectID}, loads the project, and checks the
// caller is a member. Non-members get a 404 rather than a 403 so project
// ids leak nothing.
func (h *Handler) loadWithRole(w http.ResponseWriter, r *http.Request) (*models.Project, projectpolicy.Role, primitive.ObjectID, bool) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.Unauthorized(w)
		return nil, "", primitive.NilObjectID, false
	}
	projectID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "projectID"))
	if err != nil {
		uierrors.BadRequest(w, "invalid project id")
		return nil, "", primitive.NilObjectID, false
	}

	p, err := h.Projects.GetByID(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			uierrors.NotFound(w, "project not found")
			return nil, "", primitive.NilObjectID, false
		}
		h.ErrLog.LogServerError(w, r, "load project failed", err, "Unable to load project.")
		return nil, "", primitive.NilObjectID, false
	}

	role := projectpolicy.GetUserRole(p, userID)
	if !projectpolicy.Valid(role) {
		uierrors.NotFound(w, "project not found")
		return nil, "", primitive.NilObjectID, false
	}
	return p, role, userID, true
}

func (h *Handler) publish(r *http.Request, p *models.Project, extra ...primitive.ObjectID) {
	h.Events.Publish(r.Context(), events.Event{
		Kind:      events.ProjectChanged,
		ProjectID: p.ID,
		Members:   append(append([]primitive.ObjectID(nil), p.Members...), extra...),
	})
}

// ServeList handles GET /projects. The list comes back in the caller's
// persisted order with the remembered active project id attached.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.Unauthorized(w)
		return
	}

	fetched, err := h.Projects.ListForUser(r.Context(), userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list projects failed", err, "Unable to load projects.")
		return
	}

	prefs := h.Prefs.Read(r)
	ordered := projectsync.ApplyOrder(fetched, prefs.ProjectOrder)

	views := make([]projectView, 0, len(ordered))
	for _, p := range ordered {
		views = append(views, h.toView(p, userID))
	}
	resp := struct {
		Projects        []projectView `json:"projects"`
		ActiveProjectID string        `json:"active_project_id,omitempty"`
	}{Projects: views, ActiveProjectID: projectsync.ChooseActive(ordered, prefs.ActiveProjectID)}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

type createRequest struct {
	Name      string   `json:"name"`
	FriendIDs []string `json:"friend_ids"`
}

// HandleCreate handles POST /projects. Invited friends join as editors;
// ids that are not actually friends of the creator are dropped.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.Unauthorized(w)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid request body")
		return
	}
	if normalize.Name(req.Name) == "" {
		uierrors.BadRequest(w, "project name is required")
		return
	}

	me, err := h.Users.GetByID(r.Context(), userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load user failed", err, "Unable to create project.")
		return
	}
	var friendIDs []primitive.ObjectID
	for _, raw := range req.FriendIDs {
		fid, err := primitive.ObjectIDFromHex(raw)
		if err != nil || !me.Friends[raw] {
			continue
		}
		friendIDs = append(friendIDs, fid)
	}

	p, err := h.Projects.Create(r.Context(), userID, req.Name, friendIDs)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create project failed", err, "Unable to create project.")
		return
	}

	h.publish(r, &p)
	h.Log.Info("project created",
		zap.String("project_id", p.ID.Hex()),
		zap.String("owner", userID.Hex()))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(h.toView(p, userID))
}

type activateRequest struct {
	ProjectID string `json:"project_id"`
}

// HandleActivate handles POST /projects/activate. Remembers the active
// project in the preferences cookie; membership is verified first.
func (h *Handler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.Unauthorized(w)
		return
	}

	var req activateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid request body")
		return
	}
	projectID, err := primitive.ObjectIDFromHex(req.ProjectID)
	if err != nil {
		uierrors.BadRequest(w, "invalid project id")
		return
	}

	p, err := h.Projects.GetByID(r.Context(), projectID)
	if err != nil || !projectpolicy.Valid(projectpolicy.GetUserRole(p, userID)) {
		uierrors.NotFound(w, "project not found")
		return
	}

	prefs := h.Prefs.Read(r)
	prefs.ActiveProjectID = req.ProjectID
	if err := h.Prefs.Write(w, prefs); err != nil {
		h.ErrLog.LogServerError(w, r, "write prefs cookie failed", err, "Unable to switch project.")
		return
	}

	// An open stream follows the switch immediately; without a live syncer
	// the cookie alone carries it to the next connect.
	if s := h.Sync.Get(userID); s != nil {
		if _, err := s.SelectProject(r.Context(), req.ProjectID); err != nil {
			h.Log.Warn("live project switch failed",
				zap.String("project_id", req.ProjectID),
				zap.Error(err))
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

type reorderRequest struct {
	DraggedIndex int `json:"draggedProjectIndex"`
	DropIndex    int `json:"dropIndex"`
}

// HandleReorder handles POST /projects/reorder. Splices the dragged
// project to the drop position within the caller's displayed order and
// persists the result to the preferences cookie only.
func (h *Handler) HandleReorder(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.Unauthorized(w)
		return
	}

	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid request body")
		return
	}

	// The live syncer, when present, is the authoritative displayed order;
	// otherwise reorder over the cookie's view of the list.
	var order []string
	if s := h.Sync.Get(userID); s != nil {
		order = s.Reorder(req.DraggedIndex, req.DropIndex)
	} else {
		fetched, err := h.Projects.ListForUser(r.Context(), userID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "list projects failed", err, "Unable to reorder projects.")
			return
		}
		ordered := dragdrop.Reorder(projectsync.ApplyOrder(fetched, h.Prefs.Read(r).ProjectOrder), req.DraggedIndex, req.DropIndex)
		order = make([]string, len(ordered))
		for i, p := range ordered {
			order[i] = p.ID.Hex()
		}
	}

	prefs := h.Prefs.Read(r)
	prefs.ProjectOrder = order
	if err := h.Prefs.Write(w, prefs); err != nil {
		h.ErrLog.LogServerError(w, r, "write prefs cookie failed", err, "Unable to reorder projects.")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		ProjectOrder []string `json:"projectOrder"`
	}{ProjectOrder: order})
}

// roleOption is an assignable role with its picker metadata.
type roleOption struct {
	Role        string `json:"role"`
	Label       string `json:"label"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// ServeMembers handles GET /projects/{projectID}/members.
func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
	p, role, _, ok := h.loadWithRole(w, r)
	if !ok {
		return
	}

	users, err := h.Users.GetMany(r.Context(), p.Members)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load members failed", err, "Unable to load members.")
		return
	}
	byID := make(map[primitive.ObjectID]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	views := make([]memberView, 0, len(p.MemberRoles))
	for _, m := range p.MemberRoles {
		u, found := byID[m.UserID]
		if !found {
			continue
		}
		mr := projectpolicy.Role(m.Role)
		views = append(views, memberView{
			UserID:    u.ID.Hex(),
			FullName:  u.FullName,
			Email:     u.Email,
			AvatarURL: u.AvatarURL,
			Role:      m.Role,
			RoleLabel: projectpolicy.Labels[mr],
			RoleColor: projectpolicy.Colors[mr],
		})
	}

	available := projectpolicy.AvailableRoles(role)
	options := make([]roleOption, 0, len(available))
	for _, ar := range available {
		options = append(options, roleOption{
			Role:        string(ar),
			Label:       projectpolicy.Labels[ar],
			Color:       projectpolicy.Colors[ar],
			Description: projectpolicy.Descriptions[ar],
		})
	}

	resp := struct {
		Members        []memberView `json:"members"`
		AvailableRoles []roleOption `json:"available_roles"`
	}{Members: views, AvailableRoles: options}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

type renameRequest struct {
	Name string `json:"name"`
}

// HandleRename handles PUT /projects/{projectID}. Project settings are
// admin territory.
func (h *Handler) HandleRename(w http.ResponseWriter, r *http.Request) {
	p, role, _, ok := h.loadWithRole(w, r)
	if !ok {
		return
	}
	if !projectpolicy.CanManageMembers(role) {
		uierrors.Forbidden(w, "only admins can rename a project")
		return
	}

	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid request body")
		return
	}
	if normalize.Name(req.Name) == "" {
		uierrors.BadRequest(w, "project name is required")
		return
	}

	if err := h.Projects.Rename(r.Context(), p.ID, req.Name); err != nil {
		h.ErrLog.LogServerError(w, r, "rename project failed", err, "Unable to rename project.")
		return
	}
	h.publish(r, p)
	w.WriteHeader(http.StatusNoContent)
}

type addMembersRequest struct {
	UserIDs []string `json:"user_ids"`
	Role    string   `json:"role"`
}

// HandleAddMembers handles POST /projects/{projectID}/members. Only an
// owner may grant the owner role.
func (h *Handler) HandleAddMembers(w http.ResponseWriter, r *http.Request) {
	p, role, _, ok := h.loadWithRole(w, r)
	if !ok {
		return
	}
	if !projectpolicy.CanManageMembers(role) {
		uierrors.Forbidden(w, "only admins can add members")
		return
	}

	var req addMembersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid request body")
		return
	}
	if !grantable(role, projectpolicy.Role(req.Role)) {
		uierrors.BadRequest(w, "invalid role")
		return
	}

	var ids []primitive.ObjectID
	for _, raw := range req.UserIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			uierrors.BadRequest(w, "invalid user id")
			return
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		uierrors.BadRequest(w, "no users given")
		return
	}

	if err := h.Projects.AddMembers(r.Context(), p.ID, ids, req.Role); err != nil {
		h.ErrLog.LogServerError(w, r, "add members failed", err, "Unable to add members.")
		return
	}
	h.publish(r, p, ids...)
	w.WriteHeader(http.StatusNoContent)
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// HandleSetMemberRole handles PUT /projects/{projectID}/members/{userID}.
func (h *Handler) HandleSetMemberRole(w http.ResponseWriter, r *http.Request) {
	p, role, _, ok := h.loadWithRole(w, r)
	if !ok {
		return
	}
	if !projectpolicy.CanManageMembers(role) {
		uierrors.Forbidden(w, "only admins can change member roles")
		return
	}
	targetID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		uierrors.BadRequest(w, "invalid user id")
		return
	}

	var req setRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid request body")
		return
	}
	if !grantable(role, projectpolicy.Role(req.Role)) {
		uierrors.BadRequest(w, "invalid role")
		return
	}

	if err := h.Projects.SetMemberRole(r.Context(), p.ID, targetID, req.Role); err != nil {
		switch {
		case errors.Is(err, projectstore.ErrOwnerImmutable):
			uierrors.Forbidden(w, "the owner's role cannot be changed")
		case errors.Is(err, projectstore.ErrNotMember):
			uierrors.NotFound(w, "user is not a member")
		default:
			h.ErrLog.LogServerError(w, r, "set member role failed", err, "Unable to change role.")
		}
		return
	}
	h.publish(r, p)
	w.WriteHeader(http.StatusNoContent)
}

// HandleRemoveMember handles DELETE /projects/{projectID}/members/{userID}.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	p, role, _, ok := h.loadWithRole(w, r)
	if !ok {
		return
	}
	if !projectpolicy.CanManageMembers(role) {
		uierrors.Forbidden(w, "only admins can remove members")
		return
	}
	targetID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		uierrors.BadRequest(w, "invalid user id")
		return
	}

	if err := h.Projects.RemoveMember(r.Context(), p.ID, targetID); err != nil {
		switch {
		case errors.Is(err, projectstore.ErrOwnerImmutable):
			uierrors.Forbidden(w, "the owner cannot be removed")
		default:
			h.ErrLog.LogServerError(w, r, "remove member failed", err, "Unable to remove member.")
		}
		return
	}
	h.publish(r, p)
	w.WriteHeader(http.StatusNoContent)
}

// HandleLeave handles POST /projects/{projectID}/leave. Any member except
// the owner may leave.
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	p, role, userID, ok := h.loadWithRole(w, r)
	if !ok {
		return
	}
	if !projectpolicy.CanLeaveProject(role) {
		uierrors.Forbidden(w, "the owner cannot leave the project")
		return
	}

	if err := h.Projects.RemoveMember(r.Context(), p.ID, userID); err != nil {
		h.ErrLog.LogServerError(w, r, "leave project failed", err, "Unable to leave project.")
		return
	}
	h.publish(r, p)
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete handles DELETE /projects/{projectID}. Owner only; boards
// and tasks go with the project.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	p, role, userID, ok := h.loadWithRole(w, r)
	if !ok {
		return
	}
	if !projectpolicy.CanDeleteProject(role) {
		uierrors.Forbidden(w, "only the owner can delete a project")
		return
	}

	if err := h.Projects.Delete(r.Context(), p.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "delete project failed", err, "Unable to delete project.")
		return
	}
	h.publish(r, p)
	h.Log.Info("project deleted",
		zap.String("project_id", p.ID.Hex()),
		zap.String("by", userID.Hex()))
	w.WriteHeader(http.StatusNoContent)
}

// grantable reports whether current may assign target to another member.
func grantable(current, target projectpolicy.Role) bool {
	if !projectpolicy.Valid(target) {
		return false
	}
	for _, a := range projectpolicy.AvailableRoles(current) {
		if a == target {
			return true
		}
	}
	return false
}
