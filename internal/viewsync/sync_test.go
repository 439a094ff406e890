package viewsync

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/paulmach/orb"
)

// fakePanel records applied views and can echo them back into the
// synchronizer the way a real map view re-fires move events after a
// programmatic set.
type fakePanel struct {
	mu      sync.Mutex
	view    View
	applies []View
	animate []bool

	echoInto *Synchronizer
	echoAs   Panel

	failApply error
}

func (f *fakePanel) ApplyView(v View, animate bool) error {
	f.mu.Lock()
	f.view = v
	f.applies = append(f.applies, v)
	f.animate = append(f.animate, animate)
	echo := f.echoInto
	f.mu.Unlock()

	if f.failApply != nil {
		return f.failApply
	}

	// A programmatic setView triggers the panel's own move-end; the guard
	// must swallow it
	if echo != nil {
		echo.ViewChanged(f.echoAs, v)
	}
	return nil
}

func (f *fakePanel) CurrentView() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.view
}

func (f *fakePanel) applyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.applies)
}

func v(lng, lat, zoom float64) View {
	return View{Center: orb.Point{lng, lat}, Zoom: zoom}
}

func TestViewChangedPropagatesFromAuthoritativePanel(t *testing.T) {
	s := NewSynchronizer(0)
	boundary := &fakePanel{}
	live := &fakePanel{}
	s.Attach(PanelBoundary, boundary)
	s.Attach(PanelLive, live)

	s.InteractionStart(PanelBoundary)

	want := v(81.76, 21.11, 15)
	if !s.ViewChanged(PanelBoundary, want) {
		t.Fatal("ViewChanged returned false for the authoritative panel")
	}

	if live.applyCount() != 1 {
		t.Fatalf("live panel applies = %d, want 1", live.applyCount())
	}
	if got := live.CurrentView(); got != want {
		t.Fatalf("live view = %v, want %v", got, want)
	}
	if live.animate[0] {
		t.Fatal("propagated view was animated, want instant snap")
	}
}

func TestViewChangedIgnoredFromNonAuthoritativePanel(t *testing.T) {
	s := NewSynchronizer(0)
	boundary := &fakePanel{}
	live := &fakePanel{}
	s.Attach(PanelBoundary, boundary)
	s.Attach(PanelLive, live)

	s.InteractionStart(PanelBoundary)

	if s.ViewChanged(PanelLive, v(80, 20, 10)) {
		t.Fatal("non-authoritative panel propagated")
	}
	if boundary.applyCount() != 0 {
		t.Fatalf("boundary panel applies = %d, want 0", boundary.applyCount())
	}
}

func TestNoFeedbackLoop(t *testing.T) {
	s := NewSynchronizer(20 * time.Millisecond)
	boundary := &fakePanel{}
	live := &fakePanel{}
	// The live panel echoes programmatic sets back, as a real map would
	live.echoInto = s
	live.echoAs = PanelLive
	s.Attach(PanelBoundary, boundary)
	s.Attach(PanelLive, live)

	s.InteractionStart(PanelBoundary)

	final := v(81.77, 21.12, 16)
	s.ViewChanged(PanelBoundary, final)

	// Settle past the guard release
	time.Sleep(60 * time.Millisecond)

	// The echo must not have bounced back onto the boundary panel
	if boundary.applyCount() != 0 {
		t.Fatalf("boundary panel applies = %d, want 0 (feedback loop)", boundary.applyCount())
	}
	// And the live panel was set exactly once, no oscillation
	if live.applyCount() != 1 {
		t.Fatalf("live panel applies = %d, want exactly 1", live.applyCount())
	}
	if got := live.CurrentView(); got != final {
		t.Fatalf("live view = %v, want %v", got, final)
	}
}

func TestSyncIdempotentAcrossSequenceOfMoves(t *testing.T) {
	s := NewSynchronizer(0)
	boundary := &fakePanel{}
	live := &fakePanel{echoInto: nil}
	s.Attach(PanelBoundary, boundary)
	s.Attach(PanelLive, live)

	s.InteractionStart(PanelBoundary)

	moves := []View{
		v(81.70, 21.05, 13),
		v(81.72, 21.07, 14),
		v(81.75, 21.10, 15),
	}
	for _, m := range moves {
		s.ViewChanged(PanelBoundary, m)
	}

	final := moves[len(moves)-1]
	if got := live.CurrentView(); got != final {
		t.Fatalf("live settled at %v, want %v", got, final)
	}
	if live.applyCount() != len(moves) {
		t.Fatalf("live applies = %d, want %d (one per move, no extras)", live.applyCount(), len(moves))
	}
}

func TestGuardSwallowsEchoesFromSetPanel(t *testing.T) {
	s := NewSynchronizer(40 * time.Millisecond)
	boundary := &fakePanel{}
	live := &fakePanel{}
	s.Attach(PanelBoundary, boundary)
	s.Attach(PanelLive, live)

	s.InteractionStart(PanelBoundary)
	s.ViewChanged(PanelBoundary, v(81.70, 21.05, 13))

	if !s.Syncing() {
		t.Fatal("guard not held right after propagation")
	}

	// The programmatically set panel's move events are echoes and dropped
	if s.ViewChanged(PanelLive, v(80, 20, 9)) {
		t.Fatal("echo from the set panel propagated")
	}
	if boundary.applyCount() != 0 {
		t.Fatalf("boundary panel applies = %d, want 0", boundary.applyCount())
	}

	time.Sleep(80 * time.Millisecond)
	if s.Syncing() {
		t.Fatal("guard still held after release delay")
	}
}

func TestAuthoritativeMovesPropagateWhileGuardHeld(t *testing.T) {
	s := NewSynchronizer(50 * time.Millisecond)
	boundary := &fakePanel{}
	live := &fakePanel{}
	s.Attach(PanelBoundary, boundary)
	s.Attach(PanelLive, live)

	s.InteractionStart(PanelBoundary)

	// Two move-ends in quick succession, the second well inside the guard
	// window opened by the first
	first := v(81.70, 21.05, 13)
	final := v(81.75, 21.10, 15)
	s.ViewChanged(PanelBoundary, first)
	if !s.ViewChanged(PanelBoundary, final) {
		t.Fatal("authoritative move inside the guard window was dropped")
	}

	time.Sleep(120 * time.Millisecond)

	// The panels must not diverge: the peer carries the final view
	if got := live.CurrentView(); got != final {
		t.Fatalf("live settled at %v, boundary final view is %v: panels diverged", got, final)
	}
	if live.applyCount() != 2 {
		t.Fatalf("live applies = %d, want 2 (one per authoritative move)", live.applyCount())
	}
	if boundary.applyCount() != 0 {
		t.Fatalf("boundary applies = %d, want 0", boundary.applyCount())
	}
}

func TestDetachedPanelIsNoOp(t *testing.T) {
	s := NewSynchronizer(0)
	boundary := &fakePanel{}
	s.Attach(PanelBoundary, boundary)
	// Live panel never attached (torn down)

	s.InteractionStart(PanelBoundary)

	if s.ViewChanged(PanelBoundary, v(81.70, 21.05, 13)) {
		t.Fatal("propagation reported against a detached panel")
	}
}

func TestDetachClearsAuthoritativePanel(t *testing.T) {
	s := NewSynchronizer(0)
	boundary := &fakePanel{}
	live := &fakePanel{}
	s.Attach(PanelBoundary, boundary)
	s.Attach(PanelLive, live)

	s.InteractionStart(PanelLive)
	s.Detach(PanelLive)

	if got := s.Active(); got != PanelNone {
		t.Fatalf("active panel after detach = %v, want PanelNone", got)
	}
}

func TestFailedApplyIsSwallowed(t *testing.T) {
	s := NewSynchronizer(0)
	boundary := &fakePanel{}
	live := &fakePanel{failApply: errors.New("mid-transition")}
	s.Attach(PanelBoundary, boundary)
	s.Attach(PanelLive, live)

	s.InteractionStart(PanelBoundary)

	// Must not panic and must not leave the guard stuck
	s.ViewChanged(PanelBoundary, v(81.70, 21.05, 13))
	if s.Syncing() {
		t.Fatal("guard stuck after failed apply")
	}
}

func TestLastWriterWinsOnAuthoritativeMarker(t *testing.T) {
	s := NewSynchronizer(0)
	boundary := &fakePanel{}
	live := &fakePanel{}
	s.Attach(PanelBoundary, boundary)
	s.Attach(PanelLive, live)

	s.InteractionStart(PanelBoundary)
	s.InteractionStart(PanelLive)

	if got := s.Active(); got != PanelLive {
		t.Fatalf("active = %v, want PanelLive (last writer)", got)
	}
}
