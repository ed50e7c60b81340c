package projects

import (
	"github.com/boardhub/boardhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the project endpoints plus the per-project board and task
// subrouters, which read {projectID} from the route context.
func Routes(h *Handler, boardsRouter, tasksRouter chi.Router) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Post("/activate", h.HandleActivate)
	r.Post("/reorder", h.HandleReorder)
	r.Put("/{projectID}", h.HandleRename)
	r.Delete("/{projectID}", h.HandleDelete)
	r.Get("/{projectID}/members", h.ServeMembers)
	r.Post("/{projectID}/members", h.HandleAddMembers)
	r.Put("/{projectID}/members/{userID}", h.HandleSetMemberRole)
	r.Delete("/{projectID}/members/{userID}", h.HandleRemoveMember)
	r.Post("/{projectID}/leave", h.HandleLeave)
	r.Mount("/{projectID}/boards", boardsRouter)
	r.Mount("/{projectID}/tasks", tasksRouter)
	return r
}
