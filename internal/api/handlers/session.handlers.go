package routes

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"landguard/internal/camera"
	"landguard/internal/model"
	"landguard/internal/overlay"
	"landguard/internal/scan"
	"landguard/internal/service/plot"
	"landguard/internal/service/session"
	"landguard/internal/util"
	"landguard/internal/viewsync"
)

// SetupSessionHandlers registers the dashboard session endpoints
func SetupSessionHandlers(router *gin.RouterGroup) {
	router.POST("/session", CreateSession)

	group := router.Group("/session/:sid")
	group.POST("/interaction", PanelInteraction)
	group.POST("/view", PanelViewChanged)
	group.POST("/select/region", SelectRegion)
	group.POST("/select/plot", SelectPlot)
	group.POST("/hover", HoverPlot)
	group.POST("/overlay", SelectOverlay)
	group.GET("/commands", DrainCommands)
}

// CreateSession opens a new dashboard session
func CreateSession(c *gin.Context) {
	sess := session.GetSessionService().Create()

	c.JSON(http.StatusOK, gin.H{
		"session_id": sess.ID,
		"regions":    plot.GetPlotService().Regions(),
		"initial_view": model.MapViewState{
			Lat:  sess.Panel(viewsync.PanelBoundary).CurrentView().Center[1],
			Lng:  sess.Panel(viewsync.PanelBoundary).CurrentView().Center[0],
			Zoom: sess.Panel(viewsync.PanelBoundary).CurrentView().Zoom,
		},
		"progress": scan.GetOrchestrator().Progress(),
	})
}

func lookupSession(c *gin.Context) (*session.Session, bool) {
	sess, ok := session.GetSessionService().Get(c.Param("sid"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return nil, false
	}
	return sess, true
}

func parsePanel(name string) (viewsync.Panel, bool) {
	switch name {
	case "boundary":
		return viewsync.PanelBoundary, true
	case "live":
		return viewsync.PanelLive, true
	default:
		return viewsync.PanelNone, false
	}
}

type interactionRequest struct {
	Panel string `json:"panel" binding:"required"`
}

// PanelInteraction records an interaction start (press, touch, wheel) on a
// panel, making it the authoritative side of the synchronized pair.
func PanelInteraction(c *gin.Context) {
	sess, ok := lookupSession(c)
	if !ok {
		return
	}

	var req interactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	panel, ok := parsePanel(req.Panel)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown panel"})
		return
	}

	sess.Sync.InteractionStart(panel)
	c.JSON(http.StatusOK, gin.H{"active": panel.String()})
}

type viewEventRequest struct {
	Panel string  `json:"panel" binding:"required"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Zoom  float64 `json:"zoom"`
}

// PanelViewChanged handles a move/zoom-end event: mirrors the view onto the
// paired panel through the synchronizer and demotes a plot selection when
// the view left the label-legible zoom range.
func PanelViewChanged(c *gin.Context) {
	sess, ok := lookupSession(c)
	if !ok {
		return
	}

	var req viewEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	panel, ok := parsePanel(req.Panel)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown panel"})
		return
	}

	view := viewsync.View{Center: [2]float64{req.Lng, req.Lat}, Zoom: req.Zoom}
	sess.Panel(panel).RecordView(view)

	synced := sess.Sync.ViewChanged(panel, view)
	demoted := sess.Selection.ZoomChanged(req.Zoom)

	c.JSON(http.StatusOK, gin.H{
		"synced":   synced,
		"demoted":  demoted,
		"commands": drainPanels(sess),
	})
}

type regionSelectRequest struct {
	RegionID string `json:"region_id" binding:"required"`
}

// SelectRegion handles a region marker click: either a bounds flight to a
// newly activated region or a detail-panel toggle on the active one.
func SelectRegion(c *gin.Context) {
	sess, ok := lookupSession(c)
	if !ok {
		return
	}

	var req regionSelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plots := plot.GetPlotService()
	if !regionKnown(plots.Regions(), req.RegionID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown region"})
		return
	}

	click := sess.Selection.ClickRegion(req.RegionID)

	if click.StateReset {
		// A region switch resets the scan/report UI state
		sess.Overlay.Reset()
	}

	if click.CameraFlight {
		cmd, flew := sess.Camera.Retarget(camera.BoundsTarget{
			Scope:      req.RegionID,
			Points:     plots.RegionBoundsPoints(req.RegionID),
			AllRegions: req.RegionID == model.RegionAll,
		})
		if flew {
			sess.PushCameraCommand(cmd)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"region_id":   click.RegionID,
		"detail_open": click.DetailOpen,
		"reset":       click.StateReset,
		"commands":    drainPanels(sess),
	})
}

type plotSelectRequest struct {
	PlotID string   `json:"plot_id"`
	Lat    *float64 `json:"lat"`
	Lng    *float64 `json:"lng"`
}

// SelectPlot selects a plot by id or by click coordinate and flies both
// panels to its centroid at close zoom. Scans are a separate explicit
// action.
func SelectPlot(c *gin.Context) {
	sess, ok := lookupSession(c)
	if !ok {
		return
	}

	var req plotSelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plots := plot.GetPlotService()

	var (
		selected *model.Plot
		found    bool
	)
	if req.PlotID != "" {
		selected, found = plots.Get(req.PlotID)
	} else if req.Lat != nil && req.Lng != nil {
		selected, found = plots.PlotAt(*req.Lng, *req.Lat)
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "no plot at selection"})
		return
	}

	sess.Selection.ClickPlot(selected.ID)

	cmd, flew := sess.Camera.Retarget(camera.CenterTarget{
		Center: util.PlanarCentroid(selected.Ring),
	})
	if flew {
		sess.PushCameraCommand(cmd)
	}

	c.JSON(http.StatusOK, gin.H{
		"plot":     plotPayload(selected, sess.Selection.StyleFor(selected)),
		"style":    sess.Selection.StyleFor(selected),
		"commands": drainPanels(sess),
	})
}

type hoverRequest struct {
	PlotID string `json:"plot_id"` // empty clears the hover
}

// HoverPlot tracks hover state for fill-opacity styling
func HoverPlot(c *gin.Context) {
	sess, ok := lookupSession(c)
	if !ok {
		return
	}

	var req hoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess.Selection.SetHover(req.PlotID)
	c.JSON(http.StatusOK, gin.H{"hover": req.PlotID})
}

type overlayRequest struct {
	Layer  string `json:"layer" binding:"required"`
	PlotID string `json:"plot_id"`
}

// SelectOverlay switches the live panel's overlay layer, resolving tile
// templates from the backend when a plot is named and none are cached yet.
func SelectOverlay(c *gin.Context) {
	sess, ok := lookupSession(c)
	if !ok {
		return
	}

	var req overlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	layer, err := overlay.ParseLayer(req.Layer)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, resolved := sess.Overlay.URL(layer); !resolved && req.PlotID != "" {
		tiles, err := scan.GetOrchestrator().FetchOverlayTiles(c.Request.Context(), req.PlotID)
		if err != nil {
			log.Printf("Overlay resolution failed for session %s: %v", sess.ID, err)
		} else {
			sess.Overlay.Update(tiles.Tiles)
		}
	}

	url, resolved := sess.Overlay.Select(layer)
	c.JSON(http.StatusOK, gin.H{
		"layer":    layer.String(),
		"tile_url": url,
		"resolved": resolved,
	})
}

// DrainCommands returns the queued renderer commands for both panels
func DrainCommands(c *gin.Context) {
	sess, ok := lookupSession(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"commands": drainPanels(sess)})
}

func drainPanels(sess *session.Session) gin.H {
	return gin.H{
		"boundary": sess.Panel(viewsync.PanelBoundary).TakeCommands(),
		"live":     sess.Panel(viewsync.PanelLive).TakeCommands(),
	}
}

func regionKnown(regions []model.Region, id string) bool {
	if id == model.RegionAll {
		return true
	}
	for _, r := range regions {
		if r.ID == id {
			return true
		}
	}
	return false
}
