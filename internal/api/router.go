package api

import (
	routes "landguard/internal/api/handlers"
	"landguard/internal/metrics"

	"github.com/gin-gonic/gin"
)

// SetupRouter initializes all application routes
func SetupRouter(r *gin.Engine) {
	// API group
	api := r.Group("/api")

	// Setup main handlers
	routes.SetupMainHandlers(r.Group(""))

	// Setup dashboard session handlers
	routes.SetupSessionHandlers(api)

	// Setup plot and scan handlers
	routes.SetupPlotHandlers(api)

	// Prometheus endpoint
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}
