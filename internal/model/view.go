package model

// MapViewState is the camera state of one rendered map panel
type MapViewState struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Zoom float64 `json:"zoom"`
}

// ScanProgress tracks the bulk auto-scan. Reset at bulk start, advanced as
// batches settle, cleared when the last batch finishes.
type ScanProgress struct {
	Total    int  `json:"total"`
	Scanned  int  `json:"scanned"`
	Scanning bool `json:"scanning"`
}

// PlotStyle is the derived rendering style for one plot polygon
type PlotStyle struct {
	Color       string  `json:"color"`
	Weight      int     `json:"weight"`
	DashArray   string  `json:"dash_array,omitempty"`
	FillOpacity float64 `json:"fill_opacity"`
}
