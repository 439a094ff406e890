package plot

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"

	"landguard/internal/model"
	"landguard/internal/notify"
	"landguard/internal/service/storage"
)

// PlotService owns the plot collection. It is the only writer of
// analysis-related fields; map panels and the report panel read through it.
type PlotService struct {
	storage storage.Storage[string, *model.Plot]
	regions []model.Region

	spatialIndex *rtreego.Rtree
	indexMutex   sync.RWMutex

	notifier *notify.Center

	initialized bool
	initMutex   sync.RWMutex
}

var (
	plotServiceInstance *PlotService
	plotServiceOnce     sync.Once
)

// GetPlotService returns the singleton instance of the PlotService
func GetPlotService() *PlotService {
	plotServiceOnce.Do(func() {
		plotServiceInstance = NewPlotService(notify.GetCenter())
	})
	return plotServiceInstance
}

// NewPlotService creates an isolated service instance (tests construct their
// own so the singleton stays untouched).
func NewPlotService(notifier *notify.Center) *PlotService {
	return &PlotService{
		storage:      storage.NewMemoryStorage[string, *model.Plot](),
		spatialIndex: rtreego.NewTree(2, 25, 50), // 2D index, 25..50 entries per node
		notifier:     notifier,
	}
}

// InitService loads every region's boundary source and builds the spatial
// index. A failing region surfaces a notification and renders with zero
// plots; it never blocks the other regions.
func (s *PlotService) InitService(dataDir string, regions []model.Region) error {
	s.initMutex.Lock()
	defer s.initMutex.Unlock()

	if s.initialized {
		log.Println("PlotService already initialized, skipping")
		return nil
	}

	log.Println("=== Starting PlotService initialization ===")
	startTime := time.Now()
	s.regions = regions

	loaded := 0
	for _, region := range regions {
		plots, err := s.loadRegionPlots(dataDir, region)
		if err != nil {
			log.Printf("Failed to load boundaries for region %s: %v", region.ID, err)
			if s.notifier != nil {
				s.notifier.Error(fmt.Sprintf("Could not load %s boundaries", region.Name))
			}
			continue
		}
		for _, p := range plots {
			s.storage.Set(p.ID, p)
		}
		loaded += len(plots)
		log.Printf("Region %s: %d plots loaded", region.ID, len(plots))
	}

	s.rebuildIndex()

	// Dirty flags from the initial load would otherwise be flushed straight
	// back into the cache
	s.clearAllDirty()

	log.Printf("Initialization complete: %d plots in memory, took %v", loaded, time.Since(startTime))
	s.initialized = true
	return nil
}

// Regions returns the static region set
func (s *PlotService) Regions() []model.Region {
	return s.regions
}

// Get returns a plot by id
func (s *PlotService) Get(id string) (*model.Plot, bool) {
	return s.storage.Get(id)
}

// All returns every loaded plot
func (s *PlotService) All() []*model.Plot {
	return s.storage.GetAllValues()
}

// ByRegion returns the plots of one region, or all plots for the
// all-regions pseudo-region.
func (s *PlotService) ByRegion(regionID string) []*model.Plot {
	all := s.storage.GetAllValues()
	if regionID == model.RegionAll {
		return all
	}

	result := make([]*model.Plot, 0, len(all))
	for _, p := range all {
		if p.RegionID == regionID {
			result = append(result, p)
		}
	}
	return result
}

// RegionBoundsPoints returns every boundary vertex of a region's plots, the
// input for a fit-bounds camera flight. Empty for an unknown or empty
// region.
func (s *PlotService) RegionBoundsPoints(regionID string) []orb.Point {
	plots := s.ByRegion(regionID)

	var points []orb.Point
	for _, p := range plots {
		points = append(points, p.Ring...)
	}
	return points
}

// MarkScanning flips a plot into the scanning state and returns a snapshot
// of its pre-scan value for restore-on-failure. The stored plot is replaced
// as a whole, never mutated in place.
func (s *PlotService) MarkScanning(id string) (*model.Plot, bool) {
	p, ok := s.storage.Get(id)
	if !ok {
		return nil, false
	}

	snapshot := p

	scanning := p.Clone()
	scanning.ScanState = model.ScanStateScanning
	scanning.Violating = false
	scanning.Summary = "Scanning plot via satellite..."
	scanning.UpdatedAt = time.Now()
	s.storage.Set(id, scanning)

	return snapshot, true
}

// ApplyResult commits a completed analysis to a plot. The replacement is
// whole-object: readers observe either the old plot or the new one, never a
// half-written mix.
func (s *PlotService) ApplyResult(id string, violating bool, summary string, result *model.AnalysisResult) bool {
	p, ok := s.storage.Get(id)
	if !ok {
		return false
	}

	updated := p.Clone()
	updated.Violating = violating
	updated.Summary = summary
	updated.Analysis = result
	updated.ScanState = model.ScanStateScanned
	updated.UpdatedAt = time.Now()
	s.storage.Set(id, updated)

	return true
}

// Restore puts a pre-scan snapshot back, clearing the in-progress state
// after a failed scan.
func (s *PlotService) Restore(snapshot *model.Plot) {
	if snapshot == nil {
		return
	}
	s.storage.Set(snapshot.ID, snapshot)
}

// Scannable returns the plots eligible for the bulk auto-scan: valid
// geometry and not already scanned (cache restores count as scanned).
func (s *PlotService) Scannable() []*model.Plot {
	all := s.storage.GetAllValues()

	result := make([]*model.Plot, 0, len(all))
	for _, p := range all {
		if len(p.Ring) < 3 {
			continue
		}
		if p.ScanState == model.ScanStateScanned {
			continue
		}
		result = append(result, p)
	}
	return result
}

// Count returns the number of loaded plots
func (s *PlotService) Count() int {
	return s.storage.Count()
}

func (s *PlotService) clearAllDirty() {
	dirty := s.storage.GetDirty()
	keys := make([]string, 0, len(dirty))
	for k := range dirty {
		keys = append(keys, k)
	}
	s.storage.ClearDirty(keys)
}
