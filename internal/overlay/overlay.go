// Package overlay tracks which remote-tile overlay is rendered on the live
// panel. The layer set is a closed enumeration, not a string-keyed lookup.
package overlay

import (
	"fmt"
	"sync"

	"landguard/internal/analysis"
)

// Layer is one of the fixed overlay kinds
type Layer int

const (
	LayerDetection Layer = iota
	LayerTrueColor
	LayerVegetation
	LayerRadar
)

func (l Layer) String() string {
	switch l {
	case LayerDetection:
		return "detection"
	case LayerTrueColor:
		return "true_color"
	case LayerVegetation:
		return "vegetation"
	case LayerRadar:
		return "radar"
	default:
		return "unknown"
	}
}

// ParseLayer resolves a wire name to a layer
func ParseLayer(name string) (Layer, error) {
	switch name {
	case "detection":
		return LayerDetection, nil
	case "true_color":
		return LayerTrueColor, nil
	case "vegetation":
		return LayerVegetation, nil
	case "radar":
		return LayerRadar, nil
	default:
		return 0, fmt.Errorf("unknown overlay layer %q", name)
	}
}

// Selector holds the current layer choice and the tile-URL templates the
// backend returned for the active plot. One selector per dashboard session.
type Selector struct {
	mu      sync.Mutex
	current Layer
	urls    map[Layer]string
}

// NewSelector starts on the detection overlay with no tiles resolved yet
func NewSelector() *Selector {
	return &Selector{
		current: LayerDetection,
		urls:    make(map[Layer]string),
	}
}

// Update replaces resolvable templates from a backend tile response. Empty
// entries leave the previously resolved template in place.
func (s *Selector) Update(tiles analysis.TileSet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := func(l Layer, url string) {
		if url != "" {
			s.urls[l] = url
		}
	}
	set(LayerDetection, tiles.Detection)
	set(LayerTrueColor, tiles.TrueColor)
	set(LayerVegetation, tiles.Vegetation)
	set(LayerRadar, tiles.Radar)
}

// Reset clears resolved templates and returns to the detection layer; used
// when the active region changes.
func (s *Selector) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = LayerDetection
	s.urls = make(map[Layer]string)
}

// Select switches the rendered layer and returns its tile-URL template.
// ok=false means the layer has no resolved template yet.
func (s *Selector) Select(l Layer) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = l
	url, ok := s.urls[l]
	return url, ok
}

// Current returns the rendered layer
func (s *Selector) Current() Layer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// URL returns the resolved template for a layer without selecting it
func (s *Selector) URL(l Layer) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	url, ok := s.urls[l]
	return url, ok
}
