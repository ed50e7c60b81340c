// Package projectsync maintains, per signed-in user, a live view of the
// projects the user belongs to and the currently active project. Each
// Syncer subscribes to the events hub and rebuilds its snapshot from Mongo
// on every relevant event, so connected clients always see the current
// project list. Exactly one Syncer is live per user;
// starting a new one (user switch, reconnect) tears the previous one down
// first.
package projectsync

import (
	"context"
	"sync"

	boardstore "github.com/boardhub/boardhub/internal/app/store/boards"
	projectstore "github.com/boardhub/boardhub/internal/app/store/projects"
	"github.com/boardhub/boardhub/internal/app/system/clientprefs"
	"github.com/boardhub/boardhub/internal/app/system/dragdrop"
	"github.com/boardhub/boardhub/internal/app/system/events"
	"github.com/boardhub/boardhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Snapshot is the state pushed to stream subscribers.
type Snapshot struct {
	Projects      []models.ProjectWithBoards `json:"projects"`
	ActiveProject *models.ProjectWithBoards  `json:"active_project"`
	IsLoading     bool                       `json:"is_loading"`
	IsInitialized bool                       `json:"is_initialized"`
	Error         string                     `json:"error,omitempty"`
}

// Syncer tracks one user's project list and active project.
type Syncer struct {
	userID   primitive.ObjectID
	projects *projectstore.Store
	boards   *boardstore.Store
	hub      *events.Hub
	log      *zap.Logger

	mu          sync.Mutex
	prefs       clientprefs.Prefs
	list        []models.ProjectWithBoards
	active      *models.ProjectWithBoards
	loading     bool
	initialized bool
	lastErr     error

	subID  string
	cancel context.CancelFunc
	done   chan struct{}

	// onSnapshot receives every rebuilt snapshot; set before Start.
	onSnapshot func(Snapshot)
}

// New builds a Syncer for userID. prefs carries the client's remembered
// active project id and project ordering.
func New(userID primitive.ObjectID, projects *projectstore.Store, boards *boardstore.Store, hub *events.Hub, prefs clientprefs.Prefs, logger *zap.Logger) *Syncer {
	return &Syncer{
		userID:   userID,
		projects: projects,
		boards:   boards,
		hub:      hub,
		log:      logger,
		prefs:    prefs,
		loading:  true,
	}
}

// OnSnapshot registers the push callback. Must be called before Start.
func (s *Syncer) OnSnapshot(fn func(Snapshot)) { s.onSnapshot = fn }

// Start performs the initial rebuild and then follows hub events until ctx
// is cancelled or Stop is called.
func (s *Syncer) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	subID, ch := s.hub.Subscribe(s.userID)
	s.subID = subID

	s.rebuild(ctx)

	go func() {
		defer close(s.done)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				s.rebuild(ctx)
			}
		}
	}()
}

// Stop tears down the subscription. Teardown is the only cancellation
// primitive; it runs on user switch and on stream disconnect.
func (s *Syncer) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.subID != "" {
		s.hub.Unsubscribe(s.subID)
	}
	if s.done != nil {
		<-s.done
	}
}

// rebuild refetches the project list, applies the client ordering, and
// reselects the active project: last-remembered id first, then the first
// project, then none.
func (s *Syncer) rebuild(ctx context.Context) {
	fetched, err := s.projects.ListForUser(ctx, s.userID)

	s.mu.Lock()
	if err != nil {
		s.lastErr = err
		s.loading = false
		s.initialized = true
		s.mu.Unlock()
		s.log.Error("project list refresh failed", zap.Error(err))
		s.push()
		return
	}

	ordered := ApplyOrder(fetched, s.prefs.ProjectOrder)
	s.list = make([]models.ProjectWithBoards, len(ordered))
	for i, p := range ordered {
		s.list[i] = models.ProjectWithBoards{Project: p}
	}

	activeID := ChooseActive(ordered, s.prefs.ActiveProjectID)
	s.lastErr = nil
	s.loading = false
	s.initialized = true
	s.mu.Unlock()

	if activeID != "" {
		if err := s.selectLocked(ctx, activeID); err != nil {
			s.log.Error("active project board fetch failed", zap.Error(err))
		}
	} else {
		s.mu.Lock()
		s.active = nil
		s.mu.Unlock()
	}
	s.push()
}

// SelectProject makes the given project active and loads its boards. The
// caller persists the id to client prefs.
func (s *Syncer) SelectProject(ctx context.Context, id string) (*models.ProjectWithBoards, error) {
	if err := s.selectLocked(ctx, id); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.prefs.ActiveProjectID = id
	active := s.active
	s.mu.Unlock()
	s.push()
	return active, nil
}

func (s *Syncer) selectLocked(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	boards, err := s.boards.ListByProject(ctx, oid)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.list {
		if s.list[i].ID == oid {
			s.list[i].Boards = boards
			p := s.list[i]
			s.active = &p
			return nil
		}
	}
	return projectstore.ErrNotFound
}

// Reorder splices the dragged project to the drop position and returns the
// resulting id order for the client to persist. Client-local only; no
// remote write.
func (s *Syncer) Reorder(draggedIndex, dropIndex int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = dragdrop.Reorder(s.list, draggedIndex, dropIndex)
	order := make([]string, len(s.list))
	for i, p := range s.list {
		order[i] = p.ID.Hex()
	}
	s.prefs.ProjectOrder = order
	return order
}

// Snapshot returns a copy of the current state.
func (s *Syncer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Projects:      append([]models.ProjectWithBoards(nil), s.list...),
		ActiveProject: s.active,
		IsLoading:     s.loading,
		IsInitialized: s.initialized,
	}
	if s.lastErr != nil {
		snap.Error = s.lastErr.Error()
	}
	return snap
}

func (s *Syncer) push() {
	if s.onSnapshot != nil {
		s.onSnapshot(s.Snapshot())
	}
}

// ApplyOrder rearranges fetched projects to match the persisted id order.
// Ids in the order that no longer exist are dropped; projects not in the
// order (new ones) are appended in fetch order.
func ApplyOrder(fetched []models.Project, order []string) []models.Project {
	if len(order) == 0 {
		return fetched
	}
	byID := make(map[string]models.Project, len(fetched))
	for _, p := range fetched {
		byID[p.ID.Hex()] = p
	}

	seen := make(map[string]bool, len(order))
	out := make([]models.Project, 0, len(fetched))
	for _, id := range order {
		if p, ok := byID[id]; ok && !seen[id] {
			out = append(out, p)
			seen[id] = true
		}
	}
	for _, p := range fetched {
		if !seen[p.ID.Hex()] {
			out = append(out, p)
		}
	}
	return out
}

// ChooseActive picks the active project id: the remembered id when still
// accessible, else the first project, else "".
func ChooseActive(projects []models.Project, rememberedID string) string {
	if len(projects) == 0 {
		return ""
	}
	for _, p := range projects {
		if p.ID.Hex() == rememberedID {
			return rememberedID
		}
	}
	return projects[0].ID.Hex()
}
