// Package login handles email+password sign-in.
package login

import (
	"encoding/json"
	"errors"
	"net/http"

	uierrors "github.com/boardhub/boardhub/internal/app/features/errors"
	userstore "github.com/boardhub/boardhub/internal/app/store/users"
	"github.com/boardhub/boardhub/internal/app/system/auth"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(users *userstore.Store, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Users: users, SessionMgr: sessionMgr, ErrLog: errLog, Log: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// HandleLogin handles POST /login.
//
// An unknown email and a wrong password both return the same 401 body, so
// the endpoint cannot be used to probe which emails have accounts.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid request body")
		return
	}

	u, err := h.Users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			uierrors.JSON(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.ErrLog.LogServerError(w, r, "lookup user failed", err, "Unable to sign in.")
		return
	}

	if u.AuthMethod != "internal" || u.PasswordHash == "" {
		uierrors.JSON(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		uierrors.JSON(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
	}); err != nil {
		h.ErrLog.LogServerError(w, r, "sign in failed", err, "Unable to sign in.")
		return
	}

	h.Log.Info("user signed in", zap.String("user_id", u.ID.Hex()))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(userResponse{
		ID:        u.ID.Hex(),
		FullName:  u.FullName,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
	})
}
