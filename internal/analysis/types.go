package analysis

// Request and response contracts of the external analysis backend. The
// dashboard only displays these values; all scoring happens server-side.

// PlotRequest is the common request body for plot-scoped endpoints
type PlotRequest struct {
	PlotID      string       `json:"plot_id"`
	Coordinates [][2]float64 `json:"coordinates"`
}

// ScoreResult carries a single sensor-derived score
type ScoreResult struct {
	Score  float64 `json:"score"`
	Status string  `json:"status"`
}

// AreaBreakdown mirrors the backend's area comparison block
type AreaBreakdown struct {
	TotalSqM         float64 `json:"total_area_sqm"`
	ExcessSqM        float64 `json:"excess_area_sqm"`
	ExcessSqFt       float64 `json:"excess_area_sqft"`
	UtilizationRatio float64 `json:"utilization_ratio"`
}

// PlotAnalysis is the /analyze_plot response
type PlotAnalysis struct {
	PlotID     string        `json:"plot_id"`
	Violating  bool          `json:"violating"`
	Summary    string        `json:"summary"`
	Vegetation ScoreResult   `json:"vegetation_result"`
	Radar      ScoreResult   `json:"radar_result"`
	Confidence float64       `json:"confidence"`
	Area       AreaBreakdown `json:"area"`
}

// TimelinePoint is one entry of the /analyze_timeline response
type TimelinePoint struct {
	Date          string  `json:"date"`
	EncroachedSqM float64 `json:"encroached_area_sqm"`
}

type timelineResponse struct {
	PlotID   string          `json:"plot_id"`
	Timeline []TimelinePoint `json:"timeline"`
}

// TileSet is the named set of overlay tile-URL templates returned by
// /get_overlay_tiles
type TileSet struct {
	Detection  string `json:"detection"`
	TrueColor  string `json:"true_color"`
	Vegetation string `json:"vegetation"`
	Radar      string `json:"radar"`
}

// TileResponse is the /get_overlay_tiles response
type TileResponse struct {
	PlotID string        `json:"plot_id"`
	Tiles  TileSet       `json:"tiles"`
	Area   AreaBreakdown `json:"area"`
}

// NoticeRequest is the /generate_notice request
type NoticeRequest struct {
	PlotID     string          `json:"plot_id"`
	Violation  string          `json:"violation"`
	Vegetation float64         `json:"vegetation_score"`
	Radar      float64         `json:"radar_score"`
	Confidence float64         `json:"confidence"`
	Area       AreaBreakdown   `json:"area"`
	Timeline   []TimelinePoint `json:"timeline,omitempty"`
}

// NoticeResponse is the /generate_notice response; DownloadLink is a
// relative path served by the backend
type NoticeResponse struct {
	Message      string `json:"message"`
	File         string `json:"file"`
	DownloadLink string `json:"download_link"`
}
