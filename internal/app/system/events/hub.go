// Package events carries mutation notifications from the write paths to the
// live-sync layer. Every committed project/board/task mutation publishes an
// Event; stream subscribers rebuild their snapshot on receipt. Streams for
// different collections are independent: no cross-stream ordering is
// guaranteed, and a slow subscriber coalesces events rather than blocking
// the publisher.
package events

import (
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event kinds.
const (
	ProjectChanged = "project-changed"
	BoardChanged   = "board-changed"
	TaskChanged    = "task-changed"
)

// Event describes one committed mutation. Members carries the project's
// member ids at publish time so the hub can route to affected users without
// a DB round trip.
type Event struct {
	Kind      string
	ProjectID primitive.ObjectID
	Members   []primitive.ObjectID
}

type subscriber struct {
	userID primitive.ObjectID
	ch     chan Event
}

// Hub fans events out to per-user subscribers. Sends never block: a
// subscriber whose buffer is full misses the event and catches up on its
// next rebuild.
type Hub struct {
	mu   sync.Mutex
	subs map[string]subscriber
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]subscriber)}
}

// Subscribe registers a listener for events affecting userID. The returned
// id is the handle for Unsubscribe.
func (h *Hub) Subscribe(userID primitive.ObjectID) (id string, ch <-chan Event) {
	c := make(chan Event, 16)
	id = uuid.NewString()
	h.mu.Lock()
	h.subs[id] = subscriber{userID: userID, ch: c}
	h.mu.Unlock()
	return id, c
}

// Unsubscribe removes a listener and closes its channel.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	sub, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
	}
	h.mu.Unlock()
	if ok {
		close(sub.ch)
	}
}

// Publish delivers ev to every subscriber whose user is a member of the
// event's project. Non-blocking.
func (h *Hub) Publish(ev Event) {
	affected := make(map[primitive.ObjectID]bool, len(ev.Members))
	for _, m := range ev.Members {
		affected[m] = true
	}

	h.mu.Lock()
	for _, sub := range h.subs {
		if !affected[sub.userID] {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
		}
	}
	h.mu.Unlock()
}
