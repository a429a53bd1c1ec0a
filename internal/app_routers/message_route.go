package approuters

import (
	"github.com/gin-gonic/gin"

	"github.com/divverma2003/chat-with-me/internal/configuration"
	"github.com/divverma2003/chat-with-me/internal/middleware"
)

func MessageRouters(router *gin.Engine, container *configuration.Container) {
	messageRoute := router.Group("/api/messages", middleware.RequireAuth(container.AuthService))
	{
		messageRoute.GET("/users", container.MessageHandler.GetUsersForSidebar)
		messageRoute.GET("/unread-counts", container.MessageHandler.GetUnreadCounts)
		messageRoute.GET("/:id", container.MessageHandler.GetMessages)
		messageRoute.POST("/send/:id", container.MessageHandler.SendMessage)
	}
}
