// Package logout clears the session and the client preferences cookie.
package logout

import (
	"net/http"

	"github.com/boardhub/boardhub/internal/app/system/auth"
	"github.com/boardhub/boardhub/internal/app/system/clientprefs"
	"go.uber.org/zap"
)

type Handler struct {
	SessionMgr *auth.SessionManager
	Prefs      *clientprefs.Codec
	Log        *zap.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, prefs *clientprefs.Codec, logger *zap.Logger) *Handler {
	return &Handler{SessionMgr: sessionMgr, Prefs: prefs, Log: logger}
}

// HandleLogout handles POST /logout. Board preferences are per-browser and
// belong to whoever signs in next, so they are cleared along with the
// session.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("sign out failed", zap.Error(err))
	}
	h.Prefs.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}
