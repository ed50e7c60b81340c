// Package register creates internal (email+password) accounts.
package register

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/boardhub/boardhub/internal/app/features/errors"
	userstore "github.com/boardhub/boardhub/internal/app/store/users"
	"github.com/boardhub/boardhub/internal/app/system/auth"
	"github.com/boardhub/boardhub/internal/app/system/normalize"
	"github.com/boardhub/boardhub/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the cost used everywhere passwords are hashed.
const bcryptCost = 12

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(users *userstore.Store, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Users: users, SessionMgr: sessionMgr, ErrLog: errLog, Log: logger}
}

type registerRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// HandleRegister handles POST /register.
//
// Creates the account, signs the user in, and returns the user as JSON.
// A duplicate email yields 409.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		uierrors.BadRequest(w, "invalid request body")
		return
	}

	req.FullName = normalize.Name(req.FullName)
	req.Email = normalize.Email(req.Email)
	if req.FullName == "" || req.Email == "" {
		uierrors.BadRequest(w, "full name and email are required")
		return
	}
	if !strings.Contains(req.Email, "@") {
		uierrors.BadRequest(w, "invalid email address")
		return
	}
	if len(req.Password) < 8 {
		uierrors.BadRequest(w, "password must be at least 8 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "hash password failed", err, "Unable to create account.")
		return
	}

	u, err := h.Users.Create(r.Context(), models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: string(hash),
		AuthMethod:   "internal",
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			uierrors.Conflict(w, "an account with this email already exists")
			return
		}
		h.ErrLog.LogServerError(w, r, "create user failed", err, "Unable to create account.")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
	}); err != nil {
		h.ErrLog.LogServerError(w, r, "sign in after register failed", err, "Account created; please sign in.")
		return
	}

	h.Log.Info("user registered", zap.String("user_id", u.ID.Hex()))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(userResponse{
		ID:        u.ID.Hex(),
		FullName:  u.FullName,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
	})
}
