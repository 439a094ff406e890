package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ScansTotal counts analysis scans by mode (single/bulk) and outcome
	ScansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "landguard_scans_total",
			Help: "Analysis scans issued, by mode and outcome.",
		},
		[]string{"mode", "outcome"},
	)

	// BulkBatchesTotal counts settled bulk auto-scan batches
	BulkBatchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "landguard_bulk_batches_total",
			Help: "Bulk auto-scan batches settled.",
		},
	)

	// ScanProgressGauge exposes the bulk progress ratio
	ScanProgressGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "landguard_bulk_scan_progress",
			Help: "Completed fraction of the bulk auto-scan, 0 to 1.",
		},
	)

	// NoticesTotal counts legal notice generations by outcome
	NoticesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "landguard_notices_total",
			Help: "Legal notice generations, by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(ScansTotal, BulkBatchesTotal, ScanProgressGauge, NoticesTotal)
}

// Handler returns the /metrics endpoint handler
func Handler() http.Handler {
	return promhttp.Handler()
}
