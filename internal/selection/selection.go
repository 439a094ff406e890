// Package selection tracks which region and plot are active on a dashboard
// session and derives per-plot rendering styles from that state.
package selection

import (
	"sync"

	"landguard/internal/config"
	"landguard/internal/model"
)

// Kind is the selection state discriminator
type Kind int

const (
	KindNone Kind = iota
	KindRegion
	KindPlot
)

// Rendering palette. Violating plots get the warning color and a dashed
// outline regardless of selection; the selected plot gets the highlight
// color and a heavier stroke.
const (
	colorCompliant = "#43a047"
	colorViolation = "#e53935"
	colorSelected  = "#1e88e5"

	violationDash = "8 4"

	baseFillOpacity  = 0.2
	hoverFillOpacity = 0.45

	baseWeight     = 1
	selectedWeight = 3
)

// RegionClick describes what a region marker click should do in the UI
type RegionClick struct {
	RegionID     string
	CameraFlight bool // fly to the region's bounds
	DetailOpen   bool // detail panel state after the click
	StateReset   bool // plot selection and scan/report UI were reset
}

// State is the per-session selection state machine. The default state is
// the "all regions" pseudo-region selected.
type State struct {
	mu         sync.Mutex
	kind       Kind
	regionID   string
	plotID     string
	hoverID    string
	detailOpen bool
}

// New creates a selection state with the all-regions pseudo-region active
func New() *State {
	return &State{
		kind:     KindRegion,
		regionID: model.RegionAll,
	}
}

// ClickRegion handles a region marker/icon click. Clicking the already
// active region toggles the detail panel without touching the camera;
// clicking a different region activates it, clears any plot selection and
// scan/report UI state, and asks for a bounds flight.
func (s *State) ClickRegion(regionID string) RegionClick {
	s.mu.Lock()
	defer s.mu.Unlock()

	if regionID == s.regionID {
		s.detailOpen = !s.detailOpen
		return RegionClick{
			RegionID:   regionID,
			DetailOpen: s.detailOpen,
		}
	}

	s.kind = KindRegion
	s.regionID = regionID
	s.plotID = ""
	s.detailOpen = false

	return RegionClick{
		RegionID:     regionID,
		CameraFlight: true,
		StateReset:   true,
	}
}

// ClickPlot selects a plot. This is purely a local UI selection; issuing a
// scan is a separate, explicit action.
func (s *State) ClickPlot(plotID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.kind = KindPlot
	s.plotID = plotID
}

// ZoomChanged demotes a plot selection back to the region level when the
// view is zoomed out past the label-legibility threshold. Returns true when
// a demotion happened.
func (s *State) ZoomChanged(zoom float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if zoom >= config.SelectionZoomThreshold {
		return false
	}
	if s.kind != KindPlot {
		return false
	}

	s.kind = KindRegion
	s.plotID = ""
	return true
}

// SetHover tracks the hovered plot; hover styling is independent of
// selection and reverts on hover-out (empty id).
func (s *State) SetHover(plotID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hoverID = plotID
}

// Kind returns the current selection kind
func (s *State) Kind() Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kind
}

// RegionID returns the active region (possibly the all pseudo-region)
func (s *State) RegionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regionID
}

// PlotID returns the selected plot id, empty when no plot is selected
func (s *State) PlotID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kind != KindPlot {
		return ""
	}
	return s.plotID
}

// DetailOpen reports whether the region detail panel is open
func (s *State) DetailOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detailOpen
}

// StyleFor derives the rendering style for a plot from selection, violation
// and hover state.
func (s *State) StyleFor(p *model.Plot) model.PlotStyle {
	s.mu.Lock()
	defer s.mu.Unlock()

	style := model.PlotStyle{
		Color:       colorCompliant,
		Weight:      baseWeight,
		FillOpacity: baseFillOpacity,
	}

	if p.Violating {
		style.Color = colorViolation
		style.DashArray = violationDash
	}

	if s.kind == KindPlot && s.plotID == p.ID {
		style.Color = colorSelected
		style.Weight = selectedWeight
	}

	if s.hoverID == p.ID {
		style.FillOpacity = hoverFillOpacity
	}

	return style
}
