package plot

import (
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"landguard/internal/model"
)

// plotSpatial wraps a plot with its spatial information for R-tree indexing
type plotSpatial struct {
	ID          string
	Polygon     *orb.Polygon
	BoundingBox *orb.Bound
	Plot        *model.Plot
}

// Bounds implements the rtreego.Spatial interface, returning the plot's
// bounding rectangle for index placement.
func (p *plotSpatial) Bounds() rtreego.Rect {
	minX, minY := p.BoundingBox.Min[0], p.BoundingBox.Min[1]
	maxX, maxY := p.BoundingBox.Max[0], p.BoundingBox.Max[1]

	rect, _ := rtreego.NewRect(
		rtreego.Point{minX, minY},
		[]float64{maxX - minX, maxY - minY},
	)

	return rect
}

// rebuildIndex reconstructs the spatial index from the current collection
func (s *PlotService) rebuildIndex() {
	s.indexMutex.Lock()
	defer s.indexMutex.Unlock()

	index := rtreego.NewTree(2, 25, 50)
	for _, p := range s.storage.GetAllValues() {
		if p.Polygon == nil || p.BoundingBox == nil {
			continue
		}
		index.Insert(&plotSpatial{
			ID:          p.ID,
			Polygon:     p.Polygon,
			BoundingBox: p.BoundingBox,
			Plot:        p,
		})
	}
	s.spatialIndex = index
}

// PlotAt resolves a click coordinate (lng/lat) to the plot whose polygon
// contains it. The R-tree narrows candidates by bounding box, then exact
// containment decides.
func (s *PlotService) PlotAt(lng, lat float64) (*model.Plot, bool) {
	s.indexMutex.RLock()
	candidates := s.spatialIndex.SearchIntersect(rtreego.Point{lng, lat}.ToRect(1e-9))
	s.indexMutex.RUnlock()

	point := orb.Point{lng, lat}
	for _, candidate := range candidates {
		spatial, ok := candidate.(*plotSpatial)
		if !ok {
			continue
		}
		if planar.PolygonContains(*spatial.Polygon, point) {
			// The index holds load-time snapshots; return the live object
			if live, exists := s.storage.Get(spatial.ID); exists {
				return live, true
			}
		}
	}
	return nil, false
}
