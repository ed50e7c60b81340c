// Package friends serves the friends list and the friend-request flow.
//
// A friendship is mutual: accepting a request writes the entry on both
// users. Requests are addressed by email, so the sender does not need to
// know the recipient's id.
package friends

import (
	"encoding/json"
	"errors"
	"net/http"

	uierrors "github.com/boardhub/boardhub/internal/app/features/errors"
	friendrequeststore "github.com/boardhub/boardhub/internal/app/store/friendrequests"
	userstore "github.com/boardhub/boardhub/internal/app/store/users"
	"github.com/boardhub/boardhub/internal/app/system/authz"
	"github.com/boardhub/boardhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Users    *userstore.Store
	Requests *friendrequeststore.Store
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(users *userstore.Store, requests *friendrequeststore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Requests: requests, ErrLog: errLog, Log: logger}
}

// friendView is how another user appears in lists.
type friendView struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func toFriendView(u models.User) friendView {
	return friendView{
		ID:        u.ID.Hex(),
		FullName:  u.FullName,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
	}
}

// ServeList handles GET /friends.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.Unauthorized(w)
		return
	}

	u, err := h.Users.GetByID(r.Context(), userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load user failed", err, "Unable to load friends.")
		return
	}

	friends, err := h.Users.GetMany(r.Context(), u.FriendIDs())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load friends failed", err, "Unable to load friends.")
		return
	}

	views := make([]friendView, 0, len(friends))
	for _, f := range friends {
		views = append(views, toFriendView(f))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(views)
}

// ServeSearch handles GET /friends/search?email=…. Exact-match lookup by
// email; a miss is a 404, not an empty list, because the UI distinguishes
// "no such user" from "no results".
func (h *Handler) ServeSearch(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := authz.UserCtx(r); !ok {
		uierrors.Unauthorized(w)
		return
	}

	email := r.URL.Query().Get("email")
	if email == "" {
		uierrors.BadRequest(w, "email query parameter is required")
		return
	}

	u, err := h.Users.GetByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			uierrors.NotFound(w, "no user with this email")
			return
		}
		h.ErrLog.LogServerError(w, r, "search user failed", err, "Unable to search.")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toFriendView(*u))
}

// HandleRemove handles DELETE /friends/{friendID}. Removes the friendship
// entries on both sides; a pending request between the two is unaffected.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.Unauthorized(w)
		return
	}
	friendID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "friendID"))
	if err != nil {
		uierrors.BadRequest(w, "invalid friend id")
		return
	}

	me, err := h.Users.GetByID(r.Context(), userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load user failed", err, "Unable to remove friend.")
		return
	}
	if !me.Friends[friendID.Hex()] {
		uierrors.NotFound(w, "friend not found")
		return
	}

	if err := h.Users.RemoveMutualFriends(r.Context(), userID, friendID); err != nil {
		h.ErrLog.LogServerError(w, r, "remove friend failed", err, "Unable to remove friend.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type sendRequest struct {
	Email string `json:"email"`
}

// requestView is a pending request with the counterpart user resolved.
type requestView struct {
	ID   string     `json:"id"`
	User friendView `json:"user"`
}

// HandleSend handles POST /friends/requests.
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.Unauthorized(w)
		return
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid request body")
		return
	}

	to, err := h.Users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			uierrors.NotFound(w, "no user with this email")
			return
		}
		h.ErrLog.LogServerError(w, r, "lookup recipient failed", err, "Unable to send request.")
		return
	}

	me, err := h.Users.GetByID(r.Context(), userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load user failed", err, "Unable to send request.")
		return
	}
	if me.Friends[to.ID.Hex()] {
		uierrors.Conflict(w, "you are already friends")
		return
	}

	fr, err := h.Requests.Create(r.Context(), userID, to.ID)
	if err != nil {
		switch {
		case errors.Is(err, friendrequeststore.ErrSelf):
			uierrors.BadRequest(w, "cannot send a friend request to yourself")
		case errors.Is(err, friendrequeststore.ErrDuplicate):
			uierrors.Conflict(w, "a pending request already exists")
		default:
			h.ErrLog.LogServerError(w, r, "create friend request failed", err, "Unable to send request.")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(requestView{ID: fr.ID.Hex(), User: toFriendView(*to)})
}

// ServeRequests handles GET /friends/requests. Returns pending requests
// split into incoming and outgoing, with the counterpart user resolved for
// display.
func (h *Handler) ServeRequests(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.Unauthorized(w)
		return
	}

	incoming, outgoing, err := h.Requests.ListPendingFor(r.Context(), userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list friend requests failed", err, "Unable to load requests.")
		return
	}

	counterparts := make([]primitive.ObjectID, 0, len(incoming)+len(outgoing))
	for _, fr := range incoming {
		counterparts = append(counterparts, fr.From)
	}
	for _, fr := range outgoing {
		counterparts = append(counterparts, fr.To)
	}
	users, err := h.Users.GetMany(r.Context(), counterparts)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load request users failed", err, "Unable to load requests.")
		return
	}
	byID := make(map[primitive.ObjectID]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	resp := struct {
		Incoming []requestView `json:"incoming"`
		Outgoing []requestView `json:"outgoing"`
	}{Incoming: []requestView{}, Outgoing: []requestView{}}

	for _, fr := range incoming {
		if u, ok := byID[fr.From]; ok {
			resp.Incoming = append(resp.Incoming, requestView{ID: fr.ID.Hex(), User: toFriendView(u)})
		}
	}
	for _, fr := range outgoing {
		if u, ok := byID[fr.To]; ok {
			resp.Outgoing = append(resp.Outgoing, requestView{ID: fr.ID.Hex(), User: toFriendView(u)})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// HandleAccept handles POST /friends/requests/{requestID}/accept.
func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.Unauthorized(w)
		return
	}
	reqID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "requestID"))
	if err != nil {
		uierrors.BadRequest(w, "invalid request id")
		return
	}

	fr, err := h.Requests.Accept(r.Context(), reqID, userID)
	if err != nil {
		switch {
		case errors.Is(err, friendrequeststore.ErrNotFound):
			uierrors.NotFound(w, "request not found")
		case errors.Is(err, friendrequeststore.ErrNotRecipient):
			uierrors.Forbidden(w, "only the recipient can accept a request")
		default:
			h.ErrLog.LogServerError(w, r, "accept friend request failed", err, "Unable to accept request.")
		}
		return
	}

	h.Log.Info("friend request accepted",
		zap.String("request_id", fr.ID.Hex()),
		zap.String("from", fr.From.Hex()),
		zap.String("to", fr.To.Hex()))
	w.WriteHeader(http.StatusNoContent)
}

// HandleReject handles POST /friends/requests/{requestID}/reject.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.Unauthorized(w)
		return
	}
	reqID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "requestID"))
	if err != nil {
		uierrors.BadRequest(w, "invalid request id")
		return
	}

	if err := h.Requests.Reject(r.Context(), reqID, userID); err != nil {
		switch {
		case errors.Is(err, friendrequeststore.ErrNotFound):
			uierrors.NotFound(w, "request not found")
		case errors.Is(err, friendrequeststore.ErrNotRecipient):
			uierrors.Forbidden(w, "only the recipient can reject a request")
		default:
			h.ErrLog.LogServerError(w, r, "reject friend request failed", err, "Unable to reject request.")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleCancel handles POST /friends/requests/{requestID}/cancel.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.Unauthorized(w)
		return
	}
	reqID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "requestID"))
	if err != nil {
		uierrors.BadRequest(w, "invalid request id")
		return
	}

	if err := h.Requests.Cancel(r.Context(), reqID, userID); err != nil {
		switch {
		case errors.Is(err, friendrequeststore.ErrNotFound):
			uierrors.NotFound(w, "request not found")
		case errors.Is(err, friendrequeststore.ErrNotSender):
			uierrors.Forbidden(w, "only the sender can cancel a request")
		default:
			h.ErrLog.LogServerError(w, r, "cancel friend request failed", err, "Unable to cancel request.")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
