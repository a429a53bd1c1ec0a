package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/divverma2003/chat-with-me/internal/middleware"
	"github.com/divverma2003/chat-with-me/internal/service"
)

// AuthHandler exposes the auth endpoints.
type AuthHandler interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
	CheckAuth(c *gin.Context)
	UpdateProfile(c *gin.Context)
	VerifyEmail(c *gin.Context)
	ResendVerification(c *gin.Context)
}

type authHandler struct {
	service      service.AuthService
	cookieSecure bool
}

// NewAuthHandler creates an auth handler. cookieSecure should be true outside
// development so the session cookie is HTTPS-only.
func NewAuthHandler(svc service.AuthService, cookieSecure bool) AuthHandler {
	return &authHandler{service: svc, cookieSecure: cookieSecure}
}

type registerRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *authHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
		return
	}

	user, err := h.service.Register(c.Request.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful! Please check your email to verify your account before logging in.",
		"user":    user,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *authHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
		return
	}

	user, token, expiresAt, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	h.setSessionCookie(c, token, time.Until(expiresAt))
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful.",
		"user":    user,
	})
}

func (h *authHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -time.Hour)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully."})
}

func (h *authHandler) CheckAuth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": middleware.CurrentUser(c)})
}

type updateProfileRequest struct {
	ProfilePic string `json:"profilePic"`
}

func (h *authHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
		return
	}

	user := middleware.CurrentUser(c)
	updated, err := h.service.UpdateProfilePic(c.Request.Context(), user.ID.Hex(), req.ProfilePic)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile picture updated successfully.",
		"user":    updated,
	})
}

func (h *authHandler) VerifyEmail(c *gin.Context) {
	user, err := h.service.VerifyEmail(c.Request.Context(), c.Param("token"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Email verified successfully! You can now log in.",
		"user":    user,
	})
}

type resendVerificationRequest struct {
	Email string `json:"email"`
}

func (h *authHandler) ResendVerification(c *gin.Context) {
	var req resendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
		return
	}

	if err := h.service.ResendVerification(c.Request.Context(), req.Email); err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "If an account with that email exists, a verification email has been sent.",
	})
}

func (h *authHandler) setSessionCookie(c *gin.Context, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, token, int(ttl.Seconds()), "/", "", h.cookieSecure, true)
}
