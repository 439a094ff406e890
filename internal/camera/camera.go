// Package camera turns selection and region changes into animated viewport
// flights. The controller only reacts to target *changes*: the initial
// target recorded at mount never animates, which keeps page load still.
package camera

import (
	"sync"
	"time"

	"github.com/paulmach/orb"

	"landguard/internal/config"
	"landguard/internal/util"
)

// CommandKind discriminates the emitted flight commands
type CommandKind int

const (
	KindFly CommandKind = iota
	KindFitBounds
)

// Command is an animated transition for the owning map panel to perform
type Command struct {
	Kind     CommandKind   `json:"kind"`
	Center   orb.Point     `json:"center,omitempty"` // lng/lat, KindFly only
	Zoom     float64       `json:"zoom,omitempty"`
	Bounds   orb.Bound     `json:"bounds,omitempty"` // KindFitBounds only
	Padding  int           `json:"padding,omitempty"`
	MaxZoom  float64       `json:"max_zoom,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Target is a closed set: either a plain center or a region bounds target
type Target interface {
	isTarget()
}

// CenterTarget frames a single coordinate at close zoom
type CenterTarget struct {
	Center orb.Point // lng/lat
}

func (CenterTarget) isTarget() {}

// BoundsTarget frames every vertex of a region (or of all regions)
type BoundsTarget struct {
	Scope      string // region id, or model.RegionAll
	Points     []orb.Point
	AllRegions bool
}

func (BoundsTarget) isTarget() {}

// Controller derives flight commands from retargets
type Controller struct {
	mu      sync.Mutex
	mounted bool
	last    Target
}

// NewController creates an unmounted controller; the first retarget records
// its target without flying.
func NewController() *Controller {
	return &Controller{}
}

// Retarget computes the flight for a new target. Returns ok=false when no
// flight should happen: first mount, unchanged target, or an empty bounds
// target (a region with no valid plots).
func (c *Controller) Retarget(t Target) (Command, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.mounted {
		// No animation on initial render
		c.mounted = true
		c.last = t
		return Command{}, false
	}

	if targetsEqual(c.last, t) {
		return Command{}, false
	}

	switch target := t.(type) {
	case CenterTarget:
		c.last = t
		return Command{
			Kind:     KindFly,
			Center:   target.Center,
			Zoom:     config.PlotFlyZoom,
			Duration: config.PlotFlyDuration,
		}, true

	case BoundsTarget:
		bound, ok := util.RingBound(target.Points)
		if !ok {
			// Nothing to frame; keep the previous target so a later
			// populated retarget for the same scope still flies
			return Command{}, false
		}
		c.last = t

		maxZoom := config.MaxZoomSingleRegion
		if target.AllRegions {
			maxZoom = config.MaxZoomAllRegions
		}

		return Command{
			Kind:     KindFitBounds,
			Bounds:   bound,
			Padding:  config.BoundsPadding,
			MaxZoom:  maxZoom,
			Duration: boundsFlightDuration(bound),
		}, true
	}

	return Command{}, false
}

// Mounted reports whether the first target has been recorded
func (c *Controller) Mounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mounted
}

// boundsFlightDuration scales the animation with the framed extent, clamped
// to stay comfortably under the short-flight feel of the dashboard.
func boundsFlightDuration(b orb.Bound) time.Duration {
	diagonal := util.HaversineDistance(b.Min[1], b.Min[0], b.Max[1], b.Max[0])

	d := time.Duration(diagonal/20000*float64(time.Second)) + 1200*time.Millisecond
	if d > 2600*time.Millisecond {
		d = 2600 * time.Millisecond
	}
	return d
}

func targetsEqual(a, b Target) bool {
	switch at := a.(type) {
	case CenterTarget:
		bt, ok := b.(CenterTarget)
		return ok && at.Center == bt.Center
	case BoundsTarget:
		bt, ok := b.(BoundsTarget)
		return ok && at.Scope == bt.Scope && at.AllRegions == bt.AllRegions
	}
	return a == nil && b == nil
}
