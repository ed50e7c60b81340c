package tasks

import (
	"github.com/boardhub/boardhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted under /projects/{projectID}/tasks.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/", h.ServeList)
	r.Post("/drop", h.HandleDrop)
	r.Post("/commands", h.HandleCommand)
	r.Post("/{taskID}/move-to-current", h.HandleMoveToCurrent)
	return r
}
