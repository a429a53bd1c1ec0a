package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/divverma2003/chat-with-me/internal/service"
)

// writeServiceError maps service errors onto HTTP responses.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMissingFields),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrEmailInUse),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrAlreadyVerified),
		errors.Is(err, service.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, service.ErrResendTooSoon):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"message": "Please wait 5 minutes before requesting another verification email.",
		})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized."})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User Not Found."})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error."})
	}
}
