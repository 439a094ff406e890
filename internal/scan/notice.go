package scan

import (
	"context"
	"fmt"
	"io"
	"log"

	"landguard/internal/analysis"
	"landguard/internal/metrics"
)

// FetchOverlayTiles asks the backend for the named overlay tile templates of
// one plot.
func (o *Orchestrator) FetchOverlayTiles(ctx context.Context, plotID string) (*analysis.TileResponse, error) {
	p, ok := o.plots.Get(plotID)
	if !ok {
		return nil, fmt.Errorf("unknown plot %s", plotID)
	}
	if len(p.Ring) < 3 {
		return nil, fmt.Errorf("plot %s has malformed geometry", plotID)
	}

	tiles, err := o.client.OverlayTiles(ctx, plotID, p.RingCoordinates())
	if err != nil {
		log.Printf("Overlay tiles for plot %s failed: %v", plotID, err)
		o.notifier.Error(fmt.Sprintf("Could not load overlay tiles for plot %s", plotID))
		return nil, err
	}
	return tiles, nil
}

// GenerateNotice asks the backend to render the legal notice for a scanned,
// violating plot.
func (o *Orchestrator) GenerateNotice(ctx context.Context, plotID string) (*analysis.NoticeResponse, error) {
	p, ok := o.plots.Get(plotID)
	if !ok {
		return nil, fmt.Errorf("unknown plot %s", plotID)
	}
	if p.Analysis == nil {
		return nil, fmt.Errorf("plot %s has no analysis result yet", plotID)
	}

	req := analysis.NoticeRequest{
		PlotID:     p.ID,
		Violation:  p.Summary,
		Vegetation: p.Analysis.VegetationScore,
		Radar:      p.Analysis.RadarScore,
		Confidence: p.Analysis.Confidence,
		Area: analysis.AreaBreakdown{
			TotalSqM:         p.Analysis.Area.TotalSqM,
			ExcessSqM:        p.Analysis.Area.ExcessSqM,
			ExcessSqFt:       p.Analysis.Area.ExcessSqFt,
			UtilizationRatio: p.Analysis.Area.UtilizationRatio,
		},
	}
	for _, tp := range p.Analysis.Timeline {
		req.Timeline = append(req.Timeline, analysis.TimelinePoint{
			Date:          tp.Date,
			EncroachedSqM: tp.EncroachedSqM,
		})
	}

	resp, err := o.client.GenerateNotice(ctx, req)
	if err != nil {
		log.Printf("Notice generation for plot %s failed: %v", plotID, err)
		o.notifier.Error(fmt.Sprintf("Notice generation for plot %s failed", plotID))
		metrics.NoticesTotal.WithLabelValues("failure").Inc()
		return nil, err
	}

	metrics.NoticesTotal.WithLabelValues("success").Inc()
	return resp, nil
}

// DownloadNotice streams a generated notice document. The writer receives
// bytes only on a successful backend response, so no partial file survives
// a failure.
func (o *Orchestrator) DownloadNotice(ctx context.Context, downloadLink string, w io.Writer) error {
	if err := o.client.DownloadNotice(ctx, downloadLink, w); err != nil {
		o.notifier.Error("Notice download failed")
		return err
	}
	return nil
}
