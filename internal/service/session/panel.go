package session

import (
	"sync"

	"landguard/internal/camera"
	"landguard/internal/model"
	"landguard/internal/viewsync"
)

// PanelCommand is one instruction for the browser-side renderer of a panel
type PanelCommand struct {
	Type    string              `json:"type"` // set_view | camera
	View    *model.MapViewState `json:"view,omitempty"`
	Animate bool                `json:"animate,omitempty"`
	Camera  *camera.Command     `json:"camera,omitempty"`
}

// PanelState is the server-side handle of one rendered map panel. It
// implements viewsync.PanelView: programmatic view sets are queued as
// commands the renderer picks up with its next response.
type PanelState struct {
	mu      sync.Mutex
	view    viewsync.View
	pending []PanelCommand
}

func newPanelState(initial viewsync.View) *PanelState {
	return &PanelState{view: initial}
}

// ApplyView implements viewsync.PanelView; the view snaps (or animates)
// on the renderer when it drains the queued command.
func (p *PanelState) ApplyView(v viewsync.View, animate bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.view = v
	p.pending = append(p.pending, PanelCommand{
		Type:    "set_view",
		View:    &model.MapViewState{Lat: v.Center[1], Lng: v.Center[0], Zoom: v.Zoom},
		Animate: animate,
	})
	return nil
}

// CurrentView implements viewsync.PanelView
func (p *PanelState) CurrentView() viewsync.View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view
}

// RecordView stores a view reported by the renderer without queueing a
// command back to it.
func (p *PanelState) RecordView(v viewsync.View) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.view = v
}

func (p *PanelState) pushCamera(cmd camera.Command) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, PanelCommand{Type: "camera", Camera: &cmd})
}

// TakeCommands drains the pending command queue
func (p *PanelState) TakeCommands() []PanelCommand {
	p.mu.Lock()
	defer p.mu.Unlock()

	cmds := p.pending
	p.pending = nil
	return cmds
}
