// Package authgoogle implements sign-in with Google.
//
// Accounts created here carry auth_method "google" and no password hash;
// a Google account and an internal account with the same email resolve to
// the same user record.
package authgoogle

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	uierrors "github.com/boardhub/boardhub/internal/app/features/errors"
	userstore "github.com/boardhub/boardhub/internal/app/store/users"
	"github.com/boardhub/boardhub/internal/app/system/auth"
	"github.com/boardhub/boardhub/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	stateCookie = "oauth_state"
	userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// Handler handles Google OAuth authentication.
type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger

	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g. "https://boardhub.example/auth/google/callback"
	Secure       bool
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(users *userstore.Store, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, clientID, clientSecret, baseURL string, secure bool, logger *zap.Logger) *Handler {
	return &Handler{
		Users:        users,
		SessionMgr:   sessionMgr,
		ErrLog:       errLog,
		Log:          logger,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
		Secure:       secure,
	}
}

// oauth2Config returns the Google OAuth2 configuration.
func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

// ServeLogin handles GET /auth/google. Redirects to Google's consent
// screen with a random state pinned in a short-lived cookie.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		uierrors.JSON(w, http.StatusServiceUnavailable, "Google sign-in is not available")
		return
	}

	state, err := generateState()
	if err != nil {
		h.ErrLog.LogServerError(w, r, "generate OAuth state failed", err, "Unable to start Google sign-in.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth/google",
		Secure:   h.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(10 * time.Minute),
	})

	http.Redirect(w, r, h.oauth2Config().AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// googleUserInfo is the subset of the userinfo response we use.
type googleUserInfo struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// ServeCallback handles GET /auth/google/callback. Exchanges the code,
// fetches the profile, upserts the user, and signs them in.
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		http.Redirect(w, r, "/?error=google_denied", http.StatusSeeOther)
		return
	}

	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(stateCookie)
	if state == "" || err != nil || cookie.Value != state {
		h.Log.Warn("invalid or missing OAuth state")
		http.Redirect(w, r, "/?error=invalid_state", http.StatusSeeOther)
		return
	}
	// State is single use.
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/auth/google", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, "/?error=google_denied", http.StatusSeeOther)
		return
	}

	cfg := h.oauth2Config()
	token, err := cfg.Exchange(r.Context(), code)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "OAuth code exchange failed", err, "Unable to complete Google sign-in.")
		return
	}

	info, err := fetchUserInfo(r, cfg, token)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "fetch Google userinfo failed", err, "Unable to complete Google sign-in.")
		return
	}
	if info.Email == "" {
		uierrors.BadRequest(w, "Google account has no email address")
		return
	}

	u, err := h.Users.GetByEmail(r.Context(), info.Email)
	switch {
	case err == nil:
		// Existing account; Google identity attaches to it.
	case errors.Is(err, userstore.ErrNotFound):
		created, cerr := h.Users.Create(r.Context(), models.User{
			FullName:   info.Name,
			Email:      info.Email,
			AuthMethod: "google",
			AvatarURL:  info.Picture,
		})
		if cerr != nil {
			h.ErrLog.LogServerError(w, r, "create Google user failed", cerr, "Unable to complete Google sign-in.")
			return
		}
		u = &created
	default:
		h.ErrLog.LogServerError(w, r, "lookup Google user failed", err, "Unable to complete Google sign-in.")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
	}); err != nil {
		h.ErrLog.LogServerError(w, r, "sign in after Google auth failed", err, "Unable to complete Google sign-in.")
		return
	}

	h.Log.Info("user signed in via Google", zap.String("user_id", u.ID.Hex()))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func fetchUserInfo(r *http.Request, cfg *oauth2.Config, token *oauth2.Token) (googleUserInfo, error) {
	client := cfg.Client(r.Context(), token)
	resp, err := client.Get(userInfoURL)
	if err != nil {
		return googleUserInfo{}, err
	}
	defer resp.Body.Close()

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return googleUserInfo{}, err
	}
	return info, nil
}

// generateState returns a cryptographically random URL-safe string.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
