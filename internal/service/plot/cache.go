package plot

import (
	"encoding/json"
	"log"

	"landguard/internal/config"
	"landguard/internal/model"
	redis_client "landguard/internal/redis"
)

// AnalysisCacheKey is the Redis hash holding cached analysis results, one
// field per plot id
const AnalysisCacheKey = "landguard:analysis"

// cachedAnalysis is the cache wire format for one scanned plot
type cachedAnalysis struct {
	Violating bool                  `json:"violating"`
	Summary   string                `json:"summary"`
	Analysis  *model.AnalysisResult `json:"analysis"`
}

// RestoreFromCache re-applies cached analysis results so a dashboard
// restart mid-session does not re-trigger a full bulk scan. No-op when the
// cache is unavailable.
func (s *PlotService) RestoreFromCache() {
	if !redis_client.Available() {
		return
	}

	entries, err := redis_client.HashGetAll(AnalysisCacheKey)
	if err != nil {
		log.Printf("Analysis cache restore failed: %v", err)
		return
	}

	restored := 0
	for plotID, raw := range entries {
		if _, exists := s.storage.Get(plotID); !exists {
			continue
		}

		var cached cachedAnalysis
		if err := json.Unmarshal([]byte(raw), &cached); err != nil {
			log.Printf("Dropping unreadable cache entry for plot %s: %v", plotID, err)
			continue
		}
		if cached.Analysis == nil {
			continue
		}

		s.ApplyResult(plotID, cached.Violating, cached.Summary, cached.Analysis)
		restored++
	}

	// Restores are not new results; keep them out of the next flush
	s.clearAllDirty()

	if restored > 0 {
		log.Printf("Restored %d analysis results from cache", restored)
	}
}

// FlushDirtyToCache writes plots with fresh analysis results to the cache.
// Called periodically by the maintenance worker.
func (s *PlotService) FlushDirtyToCache() {
	if !redis_client.Available() {
		return
	}

	dirty := s.storage.GetDirty()
	if len(dirty) == 0 {
		return
	}

	flushed := make([]string, 0, len(dirty))
	for id, p := range dirty {
		if p.ScanState != model.ScanStateScanned || p.Analysis == nil {
			// In-flight or restored-to-unscanned plots are not cacheable,
			// but their dirty flag is consumed
			flushed = append(flushed, id)
			continue
		}

		payload, err := json.Marshal(cachedAnalysis{
			Violating: p.Violating,
			Summary:   p.Summary,
			Analysis:  p.Analysis,
		})
		if err != nil {
			log.Printf("Could not encode cache entry for plot %s: %v", id, err)
			continue
		}

		if err := redis_client.HashSet(AnalysisCacheKey, id, payload); err != nil {
			log.Printf("Cache write for plot %s failed: %v", id, err)
			continue
		}
		flushed = append(flushed, id)
	}

	if len(flushed) > 0 {
		s.storage.ClearDirty(flushed)
		if err := redis_client.Expire(AnalysisCacheKey, config.CacheTTL); err != nil {
			log.Printf("Cache TTL refresh failed: %v", err)
		}
	}
}
