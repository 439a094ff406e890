package config

import "time"

// Map view tunables shared by every panel
const (
	// PlotFlyZoom is the zoom level used when flying to a single plot
	PlotFlyZoom = 17.0

	// MaxZoomAllRegions caps fit-bounds flights framing every region at once
	MaxZoomAllRegions = 12.0

	// MaxZoomSingleRegion caps fit-bounds flights framing one region
	MaxZoomSingleRegion = 15.0

	// BoundsPadding is the pixel padding applied to fit-bounds flights
	BoundsPadding = 48

	// SelectionZoomThreshold is the zoom below which plot labels are not
	// legible and per-plot selection is demoted back to the region level
	SelectionZoomThreshold = 14.0
)

// Timing tunables
const (
	// SyncGuardRelease is how long the dual-map reentrancy guard stays held
	// after a programmatic view set; must outlast the apply + echo window
	SyncGuardRelease = 50 * time.Millisecond

	// PlotFlyDuration is the animation length for single-plot flights
	PlotFlyDuration = 1500 * time.Millisecond

	// NotificationTTL is how long transient notifications stay visible
	NotificationTTL = 6 * time.Second

	// MaintenanceInterval defines how often the maintenance worker expires
	// notifications, prunes idle sessions and flushes the result cache
	MaintenanceInterval = 10 * time.Second

	// SessionIdleTimeout is how long an untouched dashboard session survives
	SessionIdleTimeout = time.Hour

	// AnalysisTimeout bounds a single backend analysis call; Earth-engine
	// reductions on large plots regularly take tens of seconds
	AnalysisTimeout = 90 * time.Second

	// CacheTTL bounds the Redis analysis-result cache
	CacheTTL = 12 * time.Hour
)

// BulkBatchSize is the number of concurrent requests per bulk auto-scan batch
const BulkBatchSize = 5

// Default camera view over the monitored zones before any flight
const (
	DefaultViewLat  = 21.1380
	DefaultViewLng  = 81.7610
	DefaultViewZoom = 12.0
)
