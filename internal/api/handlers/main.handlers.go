package routes

import (
	"github.com/gin-gonic/gin"

	"landguard/internal/service/plot"
	"landguard/internal/service/session"
)

// SetupMainHandlers registers the main application endpoints
func SetupMainHandlers(router *gin.RouterGroup) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service":  "landguard-dashboard",
			"plots":    plot.GetPlotService().Count(),
			"sessions": session.GetSessionService().Count(),
		})
	})

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})
}
