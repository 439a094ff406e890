package plot

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"landguard/internal/model"
	"landguard/internal/util"
)

// loadRegionPlots reads a region's GeoJSON boundary file and builds plots
// from its polygon features.
func (s *PlotService) loadRegionPlots(dataDir string, region model.Region) ([]*model.Plot, error) {
	path := filepath.Join(dataDir, region.BoundaryFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading boundary file %s: %w", path, err)
	}

	return s.plotsFromBoundaryData(region, data)
}

// plotsFromBoundaryData builds a region's plots from raw GeoJSON. Features
// with malformed rings are excluded from rendering and scanning rather than
// raising an error.
func (s *PlotService) plotsFromBoundaryData(region model.Region, data []byte) ([]*model.Plot, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s boundaries: %w", region.ID, err)
	}

	plots := make([]*model.Plot, 0, len(fc.Features))
	for i, feature := range fc.Features {
		p, ok := s.plotFromFeature(region, feature)
		if !ok {
			log.Printf("Region %s: skipping feature %d with unusable geometry", region.ID, i)
			continue
		}
		plots = append(plots, p)
	}

	return plots, nil
}

// LoadBoundaryCollection loads one region's plots from in-memory GeoJSON
// and indexes them. Returns the number of plots added.
func (s *PlotService) LoadBoundaryCollection(region model.Region, data []byte) (int, error) {
	plots, err := s.plotsFromBoundaryData(region, data)
	if err != nil {
		return 0, err
	}

	s.initMutex.Lock()
	s.regions = appendRegion(s.regions, region)
	s.initMutex.Unlock()

	for _, p := range plots {
		s.storage.Set(p.ID, p)
	}
	s.rebuildIndex()
	s.clearAllDirty()

	return len(plots), nil
}

func appendRegion(regions []model.Region, region model.Region) []model.Region {
	for _, r := range regions {
		if r.ID == region.ID {
			return regions
		}
	}
	return append(regions, region)
}

// plotFromFeature converts one boundary feature into a plot. Only the first
// (outer) ring is used; holes are unsupported.
func (s *PlotService) plotFromFeature(region model.Region, feature *geojson.Feature) (*model.Plot, bool) {
	ring := outerRing(feature.Geometry)
	if ring == nil {
		return nil, false
	}

	// Re-sanitize through the shared guard: at least 3 vertices, closed ring
	coords := make([][]float64, len(ring))
	for i, pt := range ring {
		coords[i] = []float64{pt[0], pt[1]}
	}
	ring = util.SanitizeRing(coords)
	if ring == nil {
		return nil, false
	}

	name := feature.Properties.MustString("name", "")
	if name == "" {
		return nil, false
	}

	polygon := orb.Polygon{ring}
	bound := polygon.Bound()

	areaSqM := util.SphericalAreaSqM(ring)

	return &model.Plot{
		ID:          name,
		RegionID:    region.ID,
		Summary:     "Awaiting satellite scan",
		ScanState:   model.ScanStateUnscanned,
		AreaSqM:     areaSqM,
		AreaSqKm:    areaSqM / 1e6,
		UpdatedAt:   time.Now(),
		Ring:        ring,
		Polygon:     &polygon,
		BoundingBox: &bound,
	}, true
}

// outerRing extracts the first ring of a polygon or multipolygon geometry
func outerRing(geometry orb.Geometry) orb.Ring {
	switch g := geometry.(type) {
	case orb.Polygon:
		if len(g) == 0 {
			return nil
		}
		return g[0]
	case orb.MultiPolygon:
		if len(g) == 0 || len(g[0]) == 0 {
			return nil
		}
		return g[0][0]
	default:
		return nil
	}
}
