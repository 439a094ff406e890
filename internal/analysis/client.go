package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"landguard/internal/config"
)

// Client is the boundary to the external analysis backend. The scan
// orchestrator and notice flow depend on this interface so tests can swap in
// fakes without a live backend.
type Client interface {
	AnalyzePlot(ctx context.Context, plotID string, coords [][2]float64) (*PlotAnalysis, error)
	AnalyzeTimeline(ctx context.Context, plotID string, coords [][2]float64) ([]TimelinePoint, error)
	OverlayTiles(ctx context.Context, plotID string, coords [][2]float64) (*TileResponse, error)
	GenerateNotice(ctx context.Context, req NoticeRequest) (*NoticeResponse, error)
	DownloadNotice(ctx context.Context, downloadLink string, w io.Writer) error
}

// HTTPClient talks JSON to the analysis backend over HTTP
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient creates a backend client. Timeouts are inherited from the
// underlying HTTP client and surface as ordinary request failures.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: config.AnalysisTimeout},
	}
}

// AnalyzePlot requests the current-state analysis for one plot
func (c *HTTPClient) AnalyzePlot(ctx context.Context, plotID string, coords [][2]float64) (*PlotAnalysis, error) {
	var out PlotAnalysis
	req := PlotRequest{PlotID: plotID, Coordinates: coords}
	if err := c.postJSON(ctx, "/analyze_plot", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyzeTimeline requests the historical encroachment series for one plot
func (c *HTTPClient) AnalyzeTimeline(ctx context.Context, plotID string, coords [][2]float64) ([]TimelinePoint, error) {
	var out timelineResponse
	req := PlotRequest{PlotID: plotID, Coordinates: coords}
	if err := c.postJSON(ctx, "/analyze_timeline", req, &out); err != nil {
		return nil, err
	}
	return out.Timeline, nil
}

// OverlayTiles requests the named overlay tile-URL templates for one plot
func (c *HTTPClient) OverlayTiles(ctx context.Context, plotID string, coords [][2]float64) (*TileResponse, error) {
	var out TileResponse
	req := PlotRequest{PlotID: plotID, Coordinates: coords}
	if err := c.postJSON(ctx, "/get_overlay_tiles", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateNotice asks the backend to render a legal notice document
func (c *HTTPClient) GenerateNotice(ctx context.Context, req NoticeRequest) (*NoticeResponse, error) {
	var out NoticeResponse
	if err := c.postJSON(ctx, "/generate_notice", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DownloadNotice streams the generated document into w. Nothing is written
// to w unless the backend responds 200, so a failed download never leaves a
// partial file client-side.
func (c *HTTPClient) DownloadNotice(ctx context.Context, downloadLink string, w io.Writer) error {
	if !strings.HasPrefix(downloadLink, "/") {
		downloadLink = "/" + downloadLink
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+downloadLink, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("notice download failed: backend returned %s", resp.Status)
	}

	_, err = io.Copy(w, resp.Body)
	return err
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// The backend wraps failures as {"error": "..."}; fold it into the
		// returned error for the notification text
		var apiErr struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("backend %s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("backend returned %s for %s", resp.Status, path)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
