package boards

import (
	"github.com/boardhub/boardhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted under /projects/{projectID}/boards.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleAdd)
	r.Post("/order", h.HandleOrder)
	r.Put("/{boardID}", h.HandleUpdate)
	r.Delete("/{boardID}", h.HandleDelete)
	return r
}
