package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/divverma2003/chat-with-me/internal/model"
	"github.com/divverma2003/chat-with-me/internal/service"
)

// SessionCookie is the cookie carrying the session JWT, set at login.
const SessionCookie = "jwtCookie"

const currentUserKey = "currentUser"

// RequireAuth resolves the session cookie to a user and aborts otherwise.
func RequireAuth(authSvc service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Unauthorized - No Token Provided.",
			})
			return
		}

		user, err := authSvc.VerifyIdentity(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrUserNotFound):
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "User Not Found."})
			case errors.Is(err, service.ErrUnauthorized):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized - Invalid Token."})
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error."})
			}
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated user attached by RequireAuth.
func CurrentUser(c *gin.Context) *model.User {
	if v, ok := c.Get(currentUserKey); ok {
		if u, ok := v.(*model.User); ok {
			return u
		}
	}
	return nil
}
