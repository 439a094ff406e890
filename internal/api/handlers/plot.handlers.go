package routes

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"landguard/internal/model"
	"landguard/internal/notify"
	"landguard/internal/scan"
	"landguard/internal/selection"
	"landguard/internal/service/plot"
	"landguard/internal/service/session"
)

// SetupPlotHandlers registers the plot, scan and notice endpoints
func SetupPlotHandlers(router *gin.RouterGroup) {
	router.GET("/regions", ListRegions)
	router.GET("/regions/:id/plots", ListRegionPlots)

	router.POST("/plots/:id/scan", ScanPlot)
	router.GET("/scan/progress", ScanProgress)

	router.POST("/plots/:id/notice", GenerateNotice)
	router.GET("/notices/:file", DownloadNotice)

	router.GET("/notifications", ListNotifications)
}

// ListRegions returns the static region set
func ListRegions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"regions": plot.GetPlotService().Regions()})
}

// ListRegionPlots returns a region's plots with geometry and derived styles.
// Styles come from the caller's session when a sid query is present.
func ListRegionPlots(c *gin.Context) {
	regionID := c.Param("id")
	plots := plot.GetPlotService().ByRegion(regionID)

	var sel *selection.State
	if sid := c.Query("sid"); sid != "" {
		if sess, ok := session.GetSessionService().Get(sid); ok {
			sel = sess.Selection
		}
	}
	if sel == nil {
		sel = selection.New()
	}

	payload := make([]gin.H, 0, len(plots))
	for _, p := range plots {
		payload = append(payload, plotPayload(p, sel.StyleFor(p)))
	}

	c.JSON(http.StatusOK, gin.H{
		"region_id": regionID,
		"plots":     payload,
	})
}

// ScanPlot runs the explicit single-plot scan and returns the merged plot
func ScanPlot(c *gin.Context) {
	plotID := c.Param("id")

	updated, err := scan.GetOrchestrator().ScanPlot(c.Request.Context(), plotID)
	if err != nil {
		// Already surfaced as a notification; the plot kept its prior state
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"plot": plotPayload(updated, model.PlotStyle{})})
}

// ScanProgress reports the bulk auto-scan counters
func ScanProgress(c *gin.Context) {
	c.JSON(http.StatusOK, scan.GetOrchestrator().Progress())
}

// GenerateNotice renders the legal notice for a scanned plot
func GenerateNotice(c *gin.Context) {
	plotID := c.Param("id")

	resp, err := scan.GetOrchestrator().GenerateNotice(c.Request.Context(), plotID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"file":          resp.File,
		"download_link": fmt.Sprintf("/api/notices/%s", resp.File),
	})
}

// DownloadNotice proxies the generated document to the browser as an
// attachment. The document is buffered so the PDF headers and status go out
// only once the backend delivered it whole; notices are a few pages at most.
func DownloadNotice(c *gin.Context) {
	file := c.Param("file")

	var buf bytes.Buffer
	err := scan.GetOrchestrator().DownloadNotice(c.Request.Context(), "/download/"+file, &buf)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// ListNotifications drains the pending transient notifications
func ListNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notifications": notify.GetCenter().Pending()})
}

// plotPayload shapes one plot for the renderer
func plotPayload(p *model.Plot, style model.PlotStyle) gin.H {
	return gin.H{
		"id":         p.ID,
		"region_id":  p.RegionID,
		"summary":    p.Summary,
		"violating":  p.Violating,
		"scan_state": p.ScanState,
		"analysis":   p.Analysis,
		"area_sqm":   p.AreaSqM,
		"area_sqkm":  p.AreaSqKm,
		"ring":       p.RingCoordinates(),
		"style":      style,
	}
}
