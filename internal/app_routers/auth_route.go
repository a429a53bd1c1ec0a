package approuters

import (
	"github.com/gin-gonic/gin"

	"github.com/divverma2003/chat-with-me/internal/configuration"
	"github.com/divverma2003/chat-with-me/internal/middleware"
)

func AuthRouters(router *gin.Engine, container *configuration.Container) {
	limited := middleware.RateLimit(container.Limiter)
	authed := middleware.RequireAuth(container.AuthService)

	authRoute := router.Group("/api/auth")
	{
		authRoute.POST("/register", limited, container.AuthHandler.Register)
		authRoute.POST("/login", limited, container.AuthHandler.Login)
		authRoute.POST("/logout", container.AuthHandler.Logout)
		authRoute.GET("/verify-email/:token", container.AuthHandler.VerifyEmail)
		authRoute.POST("/resend-verification", limited, container.AuthHandler.ResendVerification)

		authRoute.GET("/check", authed, container.AuthHandler.CheckAuth)
		authRoute.PUT("/update-profile", authed, container.AuthHandler.UpdateProfile)
	}
}
