// Package viewsync keeps the two dashboard map panels (legal boundary and
// live satellite) locked to the same center/zoom without feedback loops.
//
// Only the panel the operator is currently interacting with is allowed to
// propagate its view. A reentrancy guard is held while the paired panel is
// being set programmatically, so the move events that set triggers are
// ignored instead of echoing back and oscillating.
package viewsync

import (
	"log"
	"sync"
	"time"

	"github.com/paulmach/orb"
)

// Panel identifies one side of the synchronized pair
type Panel int

const (
	PanelNone Panel = iota
	PanelBoundary
	PanelLive
)

func (p Panel) String() string {
	switch p {
	case PanelBoundary:
		return "boundary"
	case PanelLive:
		return "live"
	default:
		return "none"
	}
}

// Peer returns the other panel of the pair
func (p Panel) Peer() Panel {
	switch p {
	case PanelBoundary:
		return PanelLive
	case PanelLive:
		return PanelBoundary
	default:
		return PanelNone
	}
}

// View is a panel's camera state: center in lng/lat plus zoom
type View struct {
	Center orb.Point
	Zoom   float64
}

// PanelView is a synchronized map view handle. ApplyView with animate=false
// must snap instantly; a failed apply is swallowed by the synchronizer.
type PanelView interface {
	ApplyView(v View, animate bool) error
	CurrentView() View
}

// Synchronizer coordinates a pair of panels. It is the scoped shared-state
// object both panel controllers hold, one instance per dashboard session, so
// concurrent dashboards never collide on coordination state.
type Synchronizer struct {
	mu           sync.Mutex
	panels       map[Panel]PanelView
	active       Panel // panel currently owned by the operator
	syncing      bool  // reentrancy guard: programmatic update in flight
	syncTarget   Panel // panel the in-flight programmatic update targets
	releaseDelay time.Duration
}

// NewSynchronizer creates a synchronizer with the given guard-release delay.
// The delay only needs to outlast the programmatic apply and the move events
// it echoes; tens of milliseconds in practice.
func NewSynchronizer(releaseDelay time.Duration) *Synchronizer {
	return &Synchronizer{
		panels:       make(map[Panel]PanelView),
		releaseDelay: releaseDelay,
	}
}

// Attach registers a panel view. Re-attaching replaces the previous handle.
func (s *Synchronizer) Attach(p Panel, view PanelView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panels[p] = view
}

// Detach unregisters a torn-down panel; subsequent propagation attempts to
// it become no-ops.
func (s *Synchronizer) Detach(p Panel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.panels, p)
	if s.active == p {
		s.active = PanelNone
	}
}

// InteractionStart records the panel the operator pressed, touched or
// wheeled on as the authoritative one. Near-simultaneous starts on both
// panels resolve last-writer-wins; strict ordering is not required here.
func (s *Synchronizer) InteractionStart(p Panel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = p
}

// Active returns the currently authoritative panel
func (s *Synchronizer) Active() Panel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Syncing reports whether the reentrancy guard is held
func (s *Synchronizer) Syncing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncing
}

// ViewChanged handles a move/zoom-end event from panel p. The view is
// mirrored onto the peer only when p is the authoritative panel; echoes
// raised by the panel a programmatic update is targeting are dropped.
// Returns true when a propagation was issued.
func (s *Synchronizer) ViewChanged(p Panel, v View) bool {
	s.mu.Lock()

	// Events raised by the panel we are programmatically setting are echoes
	// of our own set; dropping them is what breaks the feedback cycle.
	// Genuine moves from the authoritative panel keep propagating while the
	// guard is held, otherwise the peer settles on a stale view.
	if s.syncing && p == s.syncTarget {
		s.mu.Unlock()
		return false
	}

	if s.active != p {
		s.mu.Unlock()
		return false
	}

	peer := p.Peer()
	target := s.panels[peer]
	if target == nil {
		// Peer torn down; nothing to mirror onto
		s.mu.Unlock()
		return false
	}

	s.syncing = true
	s.syncTarget = peer
	s.mu.Unlock()

	// Instant snap, never an animated flight: the operator is mid-gesture
	// on the other panel and a flythrough here would fight them.
	if err := target.ApplyView(v, false); err != nil {
		// Mid-transition panels can reject a set; best-effort affordance,
		// never a user-visible error
		log.Printf("View sync: applying view to %s panel failed: %v", peer, err)
	}

	s.scheduleRelease()
	return true
}

func (s *Synchronizer) scheduleRelease() {
	if s.releaseDelay <= 0 {
		s.mu.Lock()
		s.syncing = false
		s.syncTarget = PanelNone
		s.mu.Unlock()
		return
	}

	time.AfterFunc(s.releaseDelay, func() {
		s.mu.Lock()
		s.syncing = false
		s.syncTarget = PanelNone
		s.mu.Unlock()
	})
}
