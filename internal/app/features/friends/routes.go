package friends

import (
	"github.com/boardhub/boardhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/", h.ServeList)
	r.Delete("/{friendID}", h.HandleRemove)
	r.Get("/search", h.ServeSearch)
	r.Get("/requests", h.ServeRequests)
	r.Post("/requests", h.HandleSend)
	r.Post("/requests/{requestID}/accept", h.HandleAccept)
	r.Post("/requests/{requestID}/reject", h.HandleReject)
	r.Post("/requests/{requestID}/cancel", h.HandleCancel)
	return r
}
