// Package stream serves the live project snapshot over server-sent events.
//
// Each connection owns the user's Syncer for its lifetime: connecting
// replaces any previous stream for the same user, and every relevant
// mutation pushes a fresh snapshot down the wire.
package stream

import (
	"encoding/json"
	"net/http"
	"time"

	uierrors "github.com/boardhub/boardhub/internal/app/features/errors"
	"github.com/boardhub/boardhub/internal/app/system/authz"
	"github.com/boardhub/boardhub/internal/app/system/clientprefs"
	"github.com/boardhub/boardhub/internal/app/system/projectsync"
	"go.uber.org/zap"
)

// heartbeatInterval keeps proxies from reaping idle connections.
const heartbeatInterval = 25 * time.Second

type Handler struct {
	Manager *projectsync.Manager
	Prefs   *clientprefs.Codec
	Log     *zap.Logger
}

func NewHandler(manager *projectsync.Manager, prefs *clientprefs.Codec, logger *zap.Logger) *Handler {
	return &Handler{Manager: manager, Prefs: prefs, Log: logger}
}

// Serve handles GET /stream.
//
// Emits "snapshot" events carrying the projectsync.Snapshot JSON. The
// first snapshot arrives as soon as the initial load completes; comment
// heartbeats fill the gaps.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.Unauthorized(w)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		uierrors.JSON(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// Buffered so a push during a slow write replaces nothing; the latest
	// snapshot always wins on the next loop turn.
	snapshots := make(chan projectsync.Snapshot, 4)
	syncer := h.Manager.Acquire(r.Context(), userID, h.Prefs.Read(r), func(snap projectsync.Snapshot) {
		select {
		case snapshots <- snap:
		default:
		}
	})
	defer h.Manager.Release(userID, syncer)

	h.Log.Info("stream opened", zap.String("user_id", userID.Hex()))

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.Log.Info("stream closed", zap.String("user_id", userID.Hex()))
			return
		case snap := <-snapshots:
			payload, err := json.Marshal(snap)
			if err != nil {
				h.Log.Error("marshal snapshot failed", zap.Error(err))
				continue
			}
			if _, err := w.Write([]byte("event: snapshot\ndata: " + string(payload) + "\n\n")); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
