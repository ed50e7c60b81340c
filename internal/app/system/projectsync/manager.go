package projectsync

import (
	"context"
	"sync"

	boardstore "github.com/boardhub/boardhub/internal/app/store/boards"
	projectstore "github.com/boardhub/boardhub/internal/app/store/projects"
	"github.com/boardhub/boardhub/internal/app/system/clientprefs"
	"github.com/boardhub/boardhub/internal/app/system/events"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Manager guarantees at most one live Syncer per user. Starting a stream
// for a user who already has one (a second tab, or a different account in
// the same browser session) tears the existing Syncer down first, so a
// user switch never leaks the previous account's subscription.
type Manager struct {
	projects *projectstore.Store
	boards   *boardstore.Store
	hub      *events.Hub
	log      *zap.Logger

	mu     sync.Mutex
	active map[primitive.ObjectID]*Syncer
}

func NewManager(projects *projectstore.Store, boards *boardstore.Store, hub *events.Hub, logger *zap.Logger) *Manager {
	return &Manager{
		projects: projects,
		boards:   boards,
		hub:      hub,
		log:      logger,
		active:   make(map[primitive.ObjectID]*Syncer),
	}
}

// Acquire builds and starts a Syncer for userID, replacing any existing
// one. onSnapshot receives every rebuilt snapshot, the initial one
// included.
func (m *Manager) Acquire(ctx context.Context, userID primitive.ObjectID, prefs clientprefs.Prefs, onSnapshot func(Snapshot)) *Syncer {
	m.mu.Lock()
	prev := m.active[userID]
	m.mu.Unlock()
	if prev != nil {
		prev.Stop()
	}

	s := New(userID, m.projects, m.boards, m.hub, prefs, m.log)
	s.OnSnapshot(onSnapshot)

	m.mu.Lock()
	m.active[userID] = s
	m.mu.Unlock()

	s.Start(ctx)
	return s
}

// Release stops s and forgets it, unless a newer Syncer has already
// replaced it for the same user.
func (m *Manager) Release(userID primitive.ObjectID, s *Syncer) {
	m.mu.Lock()
	if m.active[userID] == s {
		delete(m.active, userID)
	}
	m.mu.Unlock()
	s.Stop()
}

// Get returns the live Syncer for userID, or nil.
func (m *Manager) Get(userID primitive.ObjectID) *Syncer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active[userID]
}
