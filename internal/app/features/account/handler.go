// Package account serves the signed-in user's own profile.
package account

import (
	"encoding/json"
	"errors"
	"net/http"

	uierrors "github.com/boardhub/boardhub/internal/app/features/errors"
	userstore "github.com/boardhub/boardhub/internal/app/store/users"
	"github.com/boardhub/boardhub/internal/app/system/authz"
	"github.com/boardhub/boardhub/internal/app/system/normalize"
	"go.uber.org/zap"
)

type Handler struct {
	Users  *userstore.Store
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(users *userstore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Users: users, ErrLog: errLog, Log: logger}
}

type profileResponse struct {
	ID         string `json:"id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	AuthMethod string `json:"auth_method"`
	AvatarURL  string `json:"avatar_url,omitempty"`
}

// ServeProfile handles GET /account.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.Unauthorized(w)
		return
	}

	u, err := h.Users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			uierrors.NotFound(w, "account not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "load profile failed", err, "Unable to load profile.")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(profileResponse{
		ID:         u.ID.Hex(),
		FullName:   u.FullName,
		Email:      u.Email,
		AuthMethod: u.AuthMethod,
		AvatarURL:  u.AvatarURL,
	})
}

type updateRequest struct {
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

// HandleUpdate handles PUT /account. Email and auth method are fixed at
// registration; only the display fields are editable.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.Unauthorized(w)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid request body")
		return
	}
	if normalize.Name(req.FullName) == "" {
		uierrors.BadRequest(w, "full name is required")
		return
	}

	err := h.Users.UpdateProfile(r.Context(), userID, userstore.ProfileUpdate{
		FullName:  req.FullName,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			uierrors.NotFound(w, "account not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "update profile failed", err, "Unable to update profile.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
