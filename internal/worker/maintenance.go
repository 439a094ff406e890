package worker

import (
	"log"
	"time"

	"landguard/internal/config"
	"landguard/internal/notify"
	"landguard/internal/service/plot"
	"landguard/internal/service/session"
)

// StartMaintenanceWorker starts the periodic housekeeping pass: expire
// transient notifications, prune idle dashboard sessions and flush fresh
// analysis results to the cache.
func StartMaintenanceWorker() {
	ticker := time.NewTicker(config.MaintenanceInterval)
	go func() {
		for range ticker.C {
			notify.GetCenter().Expire()
			session.GetSessionService().PruneIdle(config.SessionIdleTimeout)
			plot.GetPlotService().FlushDirtyToCache()
		}
	}()

	log.Println("Maintenance worker started with interval:", config.MaintenanceInterval)
}
