package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"landguard/internal/analysis"
	"landguard/internal/model"
	"landguard/internal/notify"
	"landguard/internal/service/plot"
)

// fakeBackend is an in-memory analysis.Client with scriptable failures
type fakeBackend struct {
	mu            sync.Mutex
	analyzeCalls  int
	timelineCalls int
	failing       map[string]bool
	violating     map[string]bool
	timelineDelay time.Duration
	timelineErr   error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		failing:   make(map[string]bool),
		violating: make(map[string]bool),
	}
}

func (f *fakeBackend) AnalyzePlot(ctx context.Context, plotID string, coords [][2]float64) (*analysis.PlotAnalysis, error) {
	f.mu.Lock()
	f.analyzeCalls++
	fail := f.failing[plotID]
	violating := f.violating[plotID]
	f.mu.Unlock()

	if fail {
		return nil, errors.New("backend unavailable")
	}

	return &analysis.PlotAnalysis{
		PlotID:     plotID,
		Violating:  violating,
		Summary:    "scripted result",
		Vegetation: analysis.ScoreResult{Score: 0.31},
		Radar:      analysis.ScoreResult{Score: -9.4},
		Confidence: 0.87,
		Area: analysis.AreaBreakdown{
			TotalSqM:         4300,
			ExcessSqM:        120,
			ExcessSqFt:       1291,
			UtilizationRatio: 1.03,
		},
	}, nil
}

func (f *fakeBackend) AnalyzeTimeline(ctx context.Context, plotID string, coords [][2]float64) ([]analysis.TimelinePoint, error) {
	f.mu.Lock()
	f.timelineCalls++
	delay := f.timelineDelay
	err := f.timelineErr
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	return []analysis.TimelinePoint{
		{Date: "2026-06-01", EncroachedSqM: 40},
		{Date: "2026-07-01", EncroachedSqM: 120},
	}, nil
}

func (f *fakeBackend) OverlayTiles(ctx context.Context, plotID string, coords [][2]float64) (*analysis.TileResponse, error) {
	return &analysis.TileResponse{
		PlotID: plotID,
		Tiles:  analysis.TileSet{Detection: "https://tiles/detect/{z}/{x}/{y}"},
	}, nil
}

func (f *fakeBackend) GenerateNotice(ctx context.Context, req analysis.NoticeRequest) (*analysis.NoticeResponse, error) {
	return &analysis.NoticeResponse{
		File:         fmt.Sprintf("NOTICE_%s.pdf", req.PlotID),
		DownloadLink: fmt.Sprintf("/download/NOTICE_%s.pdf", req.PlotID),
	}, nil
}

func (f *fakeBackend) DownloadNotice(ctx context.Context, link string, w io.Writer) error {
	_, err := io.WriteString(w, "%PDF-1.4 fake")
	return err
}

func (f *fakeBackend) calls() (analyze, timeline int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.analyzeCalls, f.timelineCalls
}

// seedPlots builds an isolated plot service holding n square test plots
func seedPlots(t *testing.T, n int) (*plot.PlotService, []string) {
	t.Helper()

	svc := plot.NewPlotService(notify.NewCenter())

	var features []string
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("P-%d", i+1)
		ids = append(ids, id)
		lat := 21.10 + float64(i)*0.003
		features = append(features, fmt.Sprintf(`{
			"type": "Feature",
			"properties": {"name": %q},
			"geometry": {"type": "Polygon", "coordinates": [[
				[81.75, %[2]f], [81.752, %[2]f], [81.752, %[3]f], [81.75, %[3]f], [81.75, %[2]f]
			]]}
		}`, id, lat, lat+0.002))
	}
	data := fmt.Sprintf(`{"type": "FeatureCollection", "features": [%s]}`, strings.Join(features, ","))

	region := model.Region{ID: "testzone", Name: "Test Zone", BoundaryFile: "testzone.geojson"}
	loaded, err := svc.LoadBoundaryCollection(region, []byte(data))
	if err != nil {
		t.Fatalf("seeding plots: %v", err)
	}
	if loaded != n {
		t.Fatalf("seeded %d plots, want %d", loaded, n)
	}
	return svc, ids
}

func TestSingleScanJoinsAnalysisAndTimeline(t *testing.T) {
	plots, ids := seedPlots(t, 1)
	backend := newFakeBackend()
	backend.timelineDelay = 30 * time.Millisecond
	o := NewOrchestrator(backend, plots, notify.NewCenter())

	updated, err := o.ScanPlot(context.Background(), ids[0])
	if err != nil {
		t.Fatalf("ScanPlot: %v", err)
	}

	if updated.ScanState != model.ScanStateScanned {
		t.Fatalf("scan state = %v, want scanned", updated.ScanState)
	}
	if updated.Analysis == nil {
		t.Fatal("analysis not committed")
	}
	// Committed only after both requests resolved: timeline must be present
	if len(updated.Analysis.Timeline) != 2 {
		t.Fatalf("timeline length = %d, want 2", len(updated.Analysis.Timeline))
	}
	if updated.Analysis.VegetationScore != 0.31 || updated.Analysis.RadarScore != -9.4 {
		t.Fatalf("scores = %v/%v, want 0.31/-9.4",
			updated.Analysis.VegetationScore, updated.Analysis.RadarScore)
	}

	analyze, timeline := backend.calls()
	if analyze != 1 || timeline != 1 {
		t.Fatalf("calls = %d analyze, %d timeline, want 1/1", analyze, timeline)
	}
}

func TestSingleScanFailureRestoresPriorState(t *testing.T) {
	plots, ids := seedPlots(t, 1)
	backend := newFakeBackend()
	notifier := notify.NewCenter()
	o := NewOrchestrator(backend, plots, notifier)

	// First scan succeeds and attaches a result
	if _, err := o.ScanPlot(context.Background(), ids[0]); err != nil {
		t.Fatalf("first scan: %v", err)
	}
	before, _ := plots.Get(ids[0])

	// Second scan fails on the timeline leg; the join must discard the
	// partial analysis and restore the pre-scan plot
	backend.timelineErr = errors.New("timeline backend down")
	if _, err := o.ScanPlot(context.Background(), ids[0]); err == nil {
		t.Fatal("ScanPlot succeeded with a failing timeline leg")
	}

	after, _ := plots.Get(ids[0])
	if after.ScanState != model.ScanStateScanned {
		t.Fatalf("scan state after failed re-scan = %v, want prior scanned state", after.ScanState)
	}
	if after.Analysis != before.Analysis {
		t.Fatal("failed re-scan replaced the prior analysis")
	}

	if len(notifier.Pending()) == 0 {
		t.Fatal("failed scan surfaced no notification")
	}
}

func TestSingleScanRejectsMalformedGeometry(t *testing.T) {
	plots, _ := seedPlots(t, 1)
	backend := newFakeBackend()
	o := NewOrchestrator(backend, plots, notify.NewCenter())

	if _, err := o.ScanPlot(context.Background(), "missing"); err == nil {
		t.Fatal("scan of an unknown plot succeeded")
	}

	analyze, _ := backend.calls()
	if analyze != 0 {
		t.Fatalf("backend called %d times for an unknown plot", analyze)
	}
}

func TestResultCommitIsWholeObjectReplacement(t *testing.T) {
	plots, ids := seedPlots(t, 1)
	backend := newFakeBackend()
	o := NewOrchestrator(backend, plots, notify.NewCenter())

	before, _ := plots.Get(ids[0])

	if _, err := o.ScanPlot(context.Background(), ids[0]); err != nil {
		t.Fatalf("ScanPlot: %v", err)
	}
	after, _ := plots.Get(ids[0])

	// The pre-scan object must be untouched: readers holding it never see a
	// half-written mix of old and new fields
	if before.Analysis != nil {
		t.Fatal("pre-scan snapshot was mutated in place")
	}
	if before.Violating {
		t.Fatal("pre-scan snapshot was mutated in place")
	}
	if after == before {
		t.Fatal("commit reused the old plot object instead of replacing it")
	}
	if after.Analysis == nil {
		t.Fatal("no analysis on the committed plot")
	}
}

func TestBulkScanCompletesDespiteFailures(t *testing.T) {
	plots, ids := seedPlots(t, 12)
	backend := newFakeBackend()
	// Fail a third of the plots across different batches
	backend.failing[ids[0]] = true
	backend.failing[ids[6]] = true
	backend.failing[ids[11]] = true
	o := NewOrchestrator(backend, plots, notify.NewCenter())

	o.AutoScanAll(context.Background())

	progress := o.Progress()
	if progress.Total != 12 {
		t.Fatalf("total = %d, want 12", progress.Total)
	}
	if progress.Scanned != progress.Total {
		t.Fatalf("scanned = %d, want %d", progress.Scanned, progress.Total)
	}
	if progress.Scanning {
		t.Fatal("scanning flag still set after the bulk scan settled")
	}

	// Failed plots stay in the awaiting-scan state
	for _, id := range []string{ids[0], ids[6], ids[11]} {
		p, _ := plots.Get(id)
		if p.ScanState != model.ScanStateUnscanned {
			t.Fatalf("failed plot %s state = %v, want unscanned", id, p.ScanState)
		}
	}
	// The rest were merged
	p, _ := plots.Get(ids[3])
	if p.ScanState != model.ScanStateScanned || p.Analysis == nil {
		t.Fatalf("plot %s not scanned after bulk pass", ids[3])
	}

	// Bulk mode does not issue timeline requests
	analyze, timeline := backend.calls()
	if analyze != 12 {
		t.Fatalf("analyze calls = %d, want 12", analyze)
	}
	if timeline != 0 {
		t.Fatalf("timeline calls = %d, want 0", timeline)
	}
}

func TestBulkScanRunsAtMostOnce(t *testing.T) {
	plots, _ := seedPlots(t, 4)
	backend := newFakeBackend()
	o := NewOrchestrator(backend, plots, notify.NewCenter())

	o.AutoScanAll(context.Background())
	first, _ := backend.calls()

	// Progress updates re-rendering the dashboard must not re-trigger the
	// bulk scan; the latch is permanently disarmed
	o.AutoScanAll(context.Background())
	second, _ := backend.calls()

	if first != second {
		t.Fatalf("second AutoScanAll issued requests: %d -> %d", first, second)
	}
}

func TestBulkScanSkipsAlreadyScannedPlots(t *testing.T) {
	plots, ids := seedPlots(t, 3)
	backend := newFakeBackend()
	o := NewOrchestrator(backend, plots, notify.NewCenter())

	// One plot already carries a (cache-restored) result
	if _, err := o.ScanPlot(context.Background(), ids[0]); err != nil {
		t.Fatalf("priming scan: %v", err)
	}
	primed, _ := backend.calls()

	o.AutoScanAll(context.Background())

	analyze, _ := backend.calls()
	if analyze-primed != 2 {
		t.Fatalf("bulk issued %d analyze calls, want 2 (scanned plot skipped)", analyze-primed)
	}
	if progress := o.Progress(); progress.Total != 2 {
		t.Fatalf("bulk total = %d, want 2", progress.Total)
	}
}

func TestGenerateNoticeRequiresAnalysis(t *testing.T) {
	plots, ids := seedPlots(t, 1)
	backend := newFakeBackend()
	backend.violating[ids[0]] = true
	o := NewOrchestrator(backend, plots, notify.NewCenter())

	if _, err := o.GenerateNotice(context.Background(), ids[0]); err == nil {
		t.Fatal("notice generated for an unscanned plot")
	}

	if _, err := o.ScanPlot(context.Background(), ids[0]); err != nil {
		t.Fatalf("ScanPlot: %v", err)
	}

	resp, err := o.GenerateNotice(context.Background(), ids[0])
	if err != nil {
		t.Fatalf("GenerateNotice: %v", err)
	}
	if resp.File != fmt.Sprintf("NOTICE_%s.pdf", ids[0]) {
		t.Fatalf("notice file = %q", resp.File)
	}
}
