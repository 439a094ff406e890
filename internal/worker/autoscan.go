package worker

import (
	"context"
	"log"

	"landguard/internal/scan"
)

// StartAutoScanWorker launches the one-time session-start bulk scan in the
// background. The orchestrator's latch guarantees at-most-once per session
// even if startup paths overlap.
func StartAutoScanWorker() {
	go func() {
		log.Println("Auto-scan worker: starting bulk scan")
		scan.GetOrchestrator().AutoScanAll(context.Background())
	}()

	log.Println("Auto-scan worker started")
}
