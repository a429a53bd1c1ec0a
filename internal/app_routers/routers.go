package approuters

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/divverma2003/chat-with-me/internal/configuration"
	"github.com/divverma2003/chat-with-me/internal/middleware"
)

func StartServer(container *configuration.Container) {
	appServer := createAppServer(container)

	serverErrors := make(chan error, 1)

	go func() {
		log.Printf("Application server starting at http://localhost:%d", container.Config.Server.AppPort)
		if err := appServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("app server error: %w", err)
		}
	}()

	// Listen for shutdown signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Block until we receive a signal or server error
	select {
	case err := <-serverErrors:
		log.Printf("Server error: %v", err)
	case sig := <-quit:
		log.Printf("Received signal: %v. Initiating graceful shutdown...", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Println("Stopping hub and closing all WebSocket connections...")
	container.Hub.Stop()

	log.Println("Shutting down application server...")
	if err := appServer.Shutdown(ctx); err != nil {
		log.Printf("App server shutdown error: %v", err)
	}

	log.Println("Graceful shutdown complete")
}

func createAppServer(container *configuration.Container) *http.Server {
	if container.Config.Server.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// Credentials must be allowed: the session JWT rides in a cookie.
	router.Use(cors.New(cors.Config{
		AllowOrigins:     container.Config.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to the Chat With Me API!",
		})
	})

	// Uploaded avatars and message images are served straight off disk.
	router.Static(container.Config.Media.BaseURL, container.Config.Media.Dir)

	router.GET("/ws", serveWS(container))

	AuthRouters(router, container)
	MessageRouters(router, container)
	MonitorRouters(router, container)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", container.Config.Server.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// serveWS upgrades the connection after resolving the caller's identity from
// the session cookie (or a token query parameter for clients that cannot send
// cookies). Connections without a valid credential are still accepted; they
// stay anonymous and never appear in presence.
func serveWS(container *configuration.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(middleware.SessionCookie)
		if err != nil || token == "" {
			token = c.Query("token")
		}

		userID := ""
		if token != "" {
			if user, err := container.AuthService.VerifyIdentity(c.Request.Context(), token); err == nil {
				userID = user.ID.Hex()
			}
		}

		container.Hub.ServeWS(c.Writer, c.Request, userID)
	}
}
