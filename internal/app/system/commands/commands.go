// Package commands is the mutation-dispatch layer for task edits. Task
// mutations arrive as named commands (task-create, task-save, task-delete)
// dispatched through a registry of handlers, so every mutation funnels
// through one dispatch point that the HTTP layer, tests, and future
// surfaces share.
package commands

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Command names.
const (
	TaskCreate = "task-create"
	TaskSave   = "task-save"
	TaskDelete = "task-delete"
)

// ErrUnknownCommand is returned when dispatching a name with no handler.
var ErrUnknownCommand = errors.New("unknown command")

// TaskPayload carries the task fields a command may set. Nil pointers mean
// "leave untouched"; ClearDeadline removes the deadline.
type TaskPayload struct {
	TaskID        string     `json:"task_id,omitempty"`
	ProjectID     string     `json:"project_id"`
	Title         *string    `json:"title,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Status        *string    `json:"status,omitempty"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	ClearDeadline bool       `json:"clear_deadline,omitempty"`
	Priority      *string    `json:"priority,omitempty"`
}

// Command pairs a name with its payload.
type Command struct {
	Name    string      `json:"name"`
	Payload TaskPayload `json:"payload"`
}

// HandlerFunc executes one command on behalf of userID (hex ObjectID).
type HandlerFunc func(ctx context.Context, userID string, p TaskPayload) error

// Registry maps command names to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]HandlerFunc)}
}

// Register binds a handler to a command name, replacing any previous one.
func (r *Registry) Register(name string, fn HandlerFunc) {
	r.mu.Lock()
	r.handlers[name] = fn
	r.mu.Unlock()
}

// Dispatch runs the handler registered for cmd.Name.
func (r *Registry) Dispatch(ctx context.Context, userID string, cmd Command) error {
	r.mu.RLock()
	fn, ok := r.handlers[cmd.Name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Name)
	}
	return fn(ctx, userID, cmd.Payload)
}
