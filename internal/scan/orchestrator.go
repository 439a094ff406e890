// Package scan drives analysis requests against the external backend and
// merges results into the shared plot collection.
package scan

import (
	"context"
	"fmt"
	"log"
	"sync"

	"landguard/internal/analysis"
	"landguard/internal/config"
	"landguard/internal/metrics"
	"landguard/internal/model"
	"landguard/internal/notify"
	"landguard/internal/service/plot"
)

// Orchestrator sequences single-plot scans and the one-shot bulk auto-scan
type Orchestrator struct {
	client   analysis.Client
	plots    *plot.PlotService
	notifier *notify.Center

	progressMu sync.Mutex
	progress   model.ScanProgress

	// bulkArmed is the one-shot latch for the session-start auto-scan:
	// armed until the first run begins, then permanently disarmed so
	// re-renders of its own progress updates cannot re-trigger it
	latchMu   sync.Mutex
	bulkArmed bool

	// seq issues per-plot scan sequence numbers; a stale commit is logged
	// but still applied (last response wins)
	seqMu sync.Mutex
	seq   map[string]uint64
}

var (
	orchestratorInstance *Orchestrator
	orchestratorOnce     sync.Once
)

// GetOrchestrator returns the singleton orchestrator wired to the global
// plot service and notification center.
func GetOrchestrator() *Orchestrator {
	orchestratorOnce.Do(func() {
		orchestratorInstance = NewOrchestrator(nil, plot.GetPlotService(), notify.GetCenter())
	})
	return orchestratorInstance
}

// NewOrchestrator creates an isolated orchestrator
func NewOrchestrator(client analysis.Client, plots *plot.PlotService, notifier *notify.Center) *Orchestrator {
	return &Orchestrator{
		client:    client,
		plots:     plots,
		notifier:  notifier,
		bulkArmed: true,
		seq:       make(map[string]uint64),
	}
}

// SetClient installs the backend client; called once at startup
func (o *Orchestrator) SetClient(client analysis.Client) {
	o.client = client
}

// Progress returns a copy of the bulk scan progress
func (o *Orchestrator) Progress() model.ScanProgress {
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	return o.progress
}

// ScanPlot runs the explicit single-plot scan: current-state analysis and
// the historical timeline in parallel, committed together only after both
// resolve. On any failure the plot's pre-scan state is restored intact and
// a notification is surfaced.
func (o *Orchestrator) ScanPlot(ctx context.Context, plotID string) (*model.Plot, error) {
	p, ok := o.plots.Get(plotID)
	if !ok {
		return nil, fmt.Errorf("unknown plot %s", plotID)
	}

	if len(p.Ring) < 3 {
		o.notifier.Error(fmt.Sprintf("Plot %s has no usable boundary geometry", plotID))
		metrics.ScansTotal.WithLabelValues("single", "invalid").Inc()
		return nil, fmt.Errorf("plot %s has malformed geometry", plotID)
	}

	seq := o.nextSeq(plotID)
	coords := p.RingCoordinates()

	snapshot, _ := o.plots.MarkScanning(plotID)

	var (
		wg          sync.WaitGroup
		current     *analysis.PlotAnalysis
		currentErr  error
		timeline    []analysis.TimelinePoint
		timelineErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		current, currentErr = o.client.AnalyzePlot(ctx, plotID, coords)
	}()
	go func() {
		defer wg.Done()
		timeline, timelineErr = o.client.AnalyzeTimeline(ctx, plotID, coords)
	}()
	wg.Wait()

	if currentErr != nil || timelineErr != nil {
		o.plots.Restore(snapshot)

		err := currentErr
		if err == nil {
			err = timelineErr
		}
		log.Printf("Scan of plot %s failed: %v", plotID, err)
		o.notifier.Error(fmt.Sprintf("Scan of plot %s failed, please retry", plotID))
		metrics.ScansTotal.WithLabelValues("single", "failure").Inc()
		return nil, err
	}

	o.commit(plotID, seq, current, timeline)
	metrics.ScansTotal.WithLabelValues("single", "success").Inc()

	updated, _ := o.plots.Get(plotID)
	return updated, nil
}

// AutoScanAll runs the session-start bulk scan across every loaded plot.
// Plots are partitioned into fixed-size batches processed strictly in
// sequence; requests within a batch run concurrently and individual
// failures leave their plot unscanned without aborting anything.
func (o *Orchestrator) AutoScanAll(ctx context.Context) {
	o.latchMu.Lock()
	if !o.bulkArmed {
		o.latchMu.Unlock()
		return
	}
	o.bulkArmed = false
	o.latchMu.Unlock()

	plots := o.plots.Scannable()
	total := len(plots)

	o.setProgress(model.ScanProgress{Total: total, Scanning: total > 0})
	if total == 0 {
		log.Println("Bulk scan: nothing to do, all plots scanned or unscannable")
		return
	}

	log.Printf("Bulk scan: %d plots in batches of %d", total, config.BulkBatchSize)

	for start := 0; start < total; start += config.BulkBatchSize {
		end := start + config.BulkBatchSize
		if end > total {
			end = total
		}
		batch := plots[start:end]

		var wg sync.WaitGroup
		for _, p := range batch {
			wg.Add(1)
			go func(p *model.Plot) {
				defer wg.Done()
				o.bulkScanOne(ctx, p)
			}(p)
		}
		wg.Wait()

		metrics.BulkBatchesTotal.Inc()
		o.advanceProgress(len(batch), end < total)
		log.Printf("Bulk scan: batch settled, %d/%d plots processed", end, total)
	}

	log.Printf("Bulk scan complete: %d plots processed", total)
}

// bulkScanOne issues the single analysis request of the bulk path. Failures
// are silent per plot; the plot simply stays in the awaiting-scan state.
func (o *Orchestrator) bulkScanOne(ctx context.Context, p *model.Plot) {
	seq := o.nextSeq(p.ID)

	current, err := o.client.AnalyzePlot(ctx, p.ID, p.RingCoordinates())
	if err != nil {
		log.Printf("Bulk scan: plot %s failed, left unscanned: %v", p.ID, err)
		metrics.ScansTotal.WithLabelValues("bulk", "failure").Inc()
		return
	}

	o.commit(p.ID, seq, current, nil)
	metrics.ScansTotal.WithLabelValues("bulk", "success").Inc()
}

// commit merges a completed analysis into the plot collection as one atomic
// replacement.
func (o *Orchestrator) commit(plotID string, seq uint64, current *analysis.PlotAnalysis, timeline []analysis.TimelinePoint) {
	if latest := o.latestSeq(plotID); seq != latest {
		// Accepted race: a newer scan was issued while this response was in
		// flight. Last response to resolve wins, by design of the original
		// workflow, so apply anyway.
		log.Printf("Plot %s: applying out-of-sequence scan response (%d, latest %d)", plotID, seq, latest)
	}

	result := &model.AnalysisResult{
		VegetationScore: current.Vegetation.Score,
		RadarScore:      current.Radar.Score,
		Confidence:      current.Confidence,
		Area: model.AreaBreakdown{
			TotalSqM:         current.Area.TotalSqM,
			ExcessSqM:        current.Area.ExcessSqM,
			ExcessSqFt:       current.Area.ExcessSqFt,
			UtilizationRatio: current.Area.UtilizationRatio,
		},
		Sequence: seq,
	}
	for _, tp := range timeline {
		result.Timeline = append(result.Timeline, model.TimelinePoint{
			Date:          tp.Date,
			EncroachedSqM: tp.EncroachedSqM,
		})
	}

	summary := current.Summary
	if summary == "" {
		summary = summarize(current)
	}

	o.plots.ApplyResult(plotID, current.Violating, summary, result)
}

// summarize builds display text from the sensor scores when the backend
// sends none, using the original system's display bands.
func summarize(a *analysis.PlotAnalysis) string {
	if a.Violating {
		return "Encroachment detected beyond the registered boundary"
	}
	if a.Vegetation.Score > model.NDVIVacantThreshold {
		return "Vegetated, plot reads as vacant"
	}
	if a.Radar.Score > model.VVEncroachedThreshold {
		return "Hard surface present within the registered boundary"
	}
	return "Clear"
}

func (o *Orchestrator) setProgress(p model.ScanProgress) {
	o.progressMu.Lock()
	o.progress = p
	o.progressMu.Unlock()

	updateProgressGauge(p)
}

func (o *Orchestrator) advanceProgress(completed int, stillScanning bool) {
	o.progressMu.Lock()
	o.progress.Scanned += completed
	o.progress.Scanning = stillScanning
	p := o.progress
	o.progressMu.Unlock()

	updateProgressGauge(p)
}

func updateProgressGauge(p model.ScanProgress) {
	if p.Total == 0 {
		metrics.ScanProgressGauge.Set(0)
		return
	}
	metrics.ScanProgressGauge.Set(float64(p.Scanned) / float64(p.Total))
}

func (o *Orchestrator) nextSeq(plotID string) uint64 {
	o.seqMu.Lock()
	defer o.seqMu.Unlock()
	o.seq[plotID]++
	return o.seq[plotID]
}

func (o *Orchestrator) latestSeq(plotID string) uint64 {
	o.seqMu.Lock()
	defer o.seqMu.Unlock()
	return o.seq[plotID]
}
