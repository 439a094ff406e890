package model

import (
	"time"

	"github.com/paulmach/orb"
)

// ScanState represents the analysis lifecycle of a plot
type ScanState int

const (
	ScanStateUnscanned ScanState = iota
	ScanStateScanning
	ScanStateScanned
)

// Plot is the in-memory model of a registered industrial land parcel.
// Instances are created once from the boundary source at load time; analysis
// fields are replaced wholesale by the scan orchestrator, never mutated
// field-by-field in place.
type Plot struct {
	ID        string    `json:"id"`
	RegionID  string    `json:"region_id"`
	Summary   string    `json:"summary"`
	Violating bool      `json:"violating"`
	ScanState ScanState `json:"scan_state"`

	// Analysis is nil until a scan completes and is replaced as a whole
	// on every re-scan
	Analysis *AnalysisResult `json:"analysis,omitempty"`

	AreaSqM  float64 `json:"area_sqm"`
	AreaSqKm float64 `json:"area_sqkm"`

	UpdatedAt time.Time `json:"updated_at"`

	// Cached geometry for quick access. Ring is the outer boundary only,
	// lng/lat order, holes unsupported.
	Ring        orb.Ring     `json:"-"`
	Polygon     *orb.Polygon `json:"-"`
	BoundingBox *orb.Bound   `json:"-"`
}

// RingCoordinates returns the boundary ring as plain lng/lat pairs for
// backend request payloads.
func (p *Plot) RingCoordinates() [][2]float64 {
	coords := make([][2]float64, len(p.Ring))
	for i, pt := range p.Ring {
		coords[i] = [2]float64{pt[0], pt[1]}
	}
	return coords
}

// Clone returns a shallow copy sharing the immutable geometry but safe to
// mutate on the scan path before it is swapped back into storage.
func (p *Plot) Clone() *Plot {
	c := *p
	return &c
}

// AnalysisResult carries the satellite-derived metrics for one plot.
// Immutable once attached; a re-scan replaces the whole struct.
type AnalysisResult struct {
	VegetationScore float64         `json:"vegetation_score"`
	RadarScore      float64         `json:"radar_score"`
	Confidence      float64         `json:"confidence"`
	Area            AreaBreakdown   `json:"area"`
	Timeline        []TimelinePoint `json:"timeline,omitempty"`

	// Sequence is the per-plot scan sequence number the result was issued
	// under; stale commits are logged but still applied (last response wins)
	Sequence uint64 `json:"-"`
}

// AreaBreakdown is the registered-vs-detected area comparison
type AreaBreakdown struct {
	TotalSqM         float64 `json:"total_area_sqm"`
	ExcessSqM        float64 `json:"excess_area_sqm"`
	ExcessSqFt       float64 `json:"excess_area_sqft"`
	UtilizationRatio float64 `json:"utilization_ratio"`
}

// TimelinePoint is one step of the historical encroachment series
type TimelinePoint struct {
	Date          string  `json:"date"`
	EncroachedSqM float64 `json:"encroached_area_sqm"`
}

// Display bands used by the original monitoring system; the backend decides
// violations, these only drive summary text and styling.
const (
	// NDVIVacantThreshold: mean NDVI above this reads as live vegetation
	NDVIVacantThreshold = 0.2

	// VVEncroachedThreshold: mean VV backscatter (dB) above this reads as
	// hard reflective surface
	VVEncroachedThreshold = -11.0
)
