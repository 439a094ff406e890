// Package session scopes the dashboard coordination state. Every browser
// dashboard instance gets its own synchronizer, camera controller, selection
// and overlay state, so concurrent operators never share mutable flags.
package session

import (
	"log"
	"sync"
	"time"

	"landguard/internal/camera"
	"landguard/internal/config"
	"landguard/internal/model"
	"landguard/internal/overlay"
	"landguard/internal/selection"
	"landguard/internal/service/plot"
	"landguard/internal/service/storage"
	"landguard/internal/util"
	"landguard/internal/viewsync"
)

// Session holds one dashboard instance's coordination state
type Session struct {
	ID        string
	CreatedAt time.Time

	Sync      *viewsync.Synchronizer
	Camera    *camera.Controller
	Selection *selection.State
	Overlay   *overlay.Selector

	panels map[viewsync.Panel]*PanelState

	mu       sync.Mutex
	lastSeen time.Time
}

// Touch marks the session as recently used
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
}

// IdleFor returns how long the session has been untouched
func (s *Session) IdleFor() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.lastSeen)
}

// Panel returns the state of one map panel
func (s *Session) Panel(p viewsync.Panel) *PanelState {
	return s.panels[p]
}

// PushCameraCommand mirrors a flight onto both panels; selection-driven
// flights move the pair together, outside the interaction sync path.
func (s *Session) PushCameraCommand(cmd camera.Command) {
	for _, panel := range s.panels {
		panel.pushCamera(cmd)
	}
}

// SessionService manages the live dashboard sessions
type SessionService struct {
	sessions storage.Storage[string, *Session]
	plots    *plot.PlotService
}

var (
	sessionServiceInstance *SessionService
	sessionServiceOnce     sync.Once
)

// GetSessionService returns the singleton instance of the SessionService
func GetSessionService() *SessionService {
	sessionServiceOnce.Do(func() {
		sessionServiceInstance = NewSessionService(plot.GetPlotService())
	})
	return sessionServiceInstance
}

// NewSessionService creates an isolated service instance
func NewSessionService(plots *plot.PlotService) *SessionService {
	return &SessionService{
		sessions: storage.NewMemoryStorage[string, *Session](),
		plots:    plots,
	}
}

// Create builds a new dashboard session. Both panels start on the default
// view and the camera records the all-regions frame as its mount target, so
// the initial render issues no animation.
func (s *SessionService) Create() *Session {
	now := time.Now()

	initial := viewsync.View{
		Center: [2]float64{config.DefaultViewLng, config.DefaultViewLat},
		Zoom:   config.DefaultViewZoom,
	}

	sess := &Session{
		ID:        util.ShortUUID(),
		CreatedAt: now,
		Sync:      viewsync.NewSynchronizer(config.SyncGuardRelease),
		Camera:    camera.NewController(),
		Selection: selection.New(),
		Overlay:   overlay.NewSelector(),
		panels: map[viewsync.Panel]*PanelState{
			viewsync.PanelBoundary: newPanelState(initial),
			viewsync.PanelLive:     newPanelState(initial),
		},
		lastSeen: now,
	}

	sess.Sync.Attach(viewsync.PanelBoundary, sess.panels[viewsync.PanelBoundary])
	sess.Sync.Attach(viewsync.PanelLive, sess.panels[viewsync.PanelLive])

	// Record the mount target without flying
	sess.Camera.Retarget(camera.BoundsTarget{
		Scope:      model.RegionAll,
		Points:     s.plots.RegionBoundsPoints(model.RegionAll),
		AllRegions: true,
	})

	s.sessions.Set(sess.ID, sess)
	log.Printf("Dashboard session %s created", sess.ID)
	return sess
}

// Get returns a session by id
func (s *SessionService) Get(id string) (*Session, bool) {
	sess, ok := s.sessions.Get(id)
	if ok {
		sess.Touch()
	}
	return sess, ok
}

// Count returns the number of live sessions
func (s *SessionService) Count() int {
	return s.sessions.Count()
}

// PruneIdle drops sessions idle past the timeout; called by the maintenance
// worker.
func (s *SessionService) PruneIdle(timeout time.Duration) {
	var stale []string
	s.sessions.ForEach(func(id string, sess *Session) bool {
		if sess.IdleFor() > timeout {
			stale = append(stale, id)
		}
		return true
	})

	for _, id := range stale {
		s.sessions.Delete(id)
		log.Printf("Dashboard session %s pruned after idle timeout", id)
	}
}
