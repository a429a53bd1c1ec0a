package approuters

import (
	"github.com/gin-gonic/gin"

	"github.com/divverma2003/chat-with-me/internal/configuration"
)

// MonitorRouters sets up monitoring API routes
func MonitorRouters(router *gin.Engine, container *configuration.Container) {
	monitorGroup := router.Group("/api/monitor")
	{
		// GET /api/monitor/stats - connection and presence counters
		monitorGroup.GET("/stats", container.MonitorHandler.GetHubStats)
	}
}
