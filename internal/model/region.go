package model

// RegionAll is the pseudo-region framing every zone at once; it is the
// default active region on dashboard start.
const RegionAll = "all"

// Region is a static descriptor of a monitored zone. The set is fixed at
// startup and not user-editable.
type Region struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Center       [2]float64 `json:"center"` // lat, lng default camera center
	BoundaryFile string     `json:"-"`      // GeoJSON boundary source, relative to the data dir
}

// DefaultRegions returns the monitored Naya Raipur zones.
func DefaultRegions() []Region {
	return []Region{
		{ID: "khapri", Name: "Khapri", Center: [2]float64{21.1030, 81.7580}, BoundaryFile: "khapri.geojson"},
		{ID: "rakhi", Name: "Rakhi", Center: [2]float64{21.1420, 81.7910}, BoundaryFile: "rakhi.geojson"},
		{ID: "tuta", Name: "Tuta", Center: [2]float64{21.1650, 81.7260}, BoundaryFile: "tuta.geojson"},
	}
}
