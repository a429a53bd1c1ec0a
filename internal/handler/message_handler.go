package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/divverma2003/chat-with-me/internal/middleware"
	"github.com/divverma2003/chat-with-me/internal/service"
)

// MessageHandler exposes the conversation endpoints. Every operation is
// scoped to the authenticated requester.
type MessageHandler interface {
	GetUsersForSidebar(c *gin.Context)
	GetMessages(c *gin.Context)
	SendMessage(c *gin.Context)
	GetUnreadCounts(c *gin.Context)
}

type messageHandler struct {
	service service.ChatService
}

// NewMessageHandler creates a message handler.
func NewMessageHandler(svc service.ChatService) MessageHandler {
	return &messageHandler{service: svc}
}

func (h *messageHandler) GetUsersForSidebar(c *gin.Context) {
	user := middleware.CurrentUser(c)

	peers, err := h.service.ListPeers(c.Request.Context(), user.ID.Hex())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, peers)
}

func (h *messageHandler) GetMessages(c *gin.Context) {
	user := middleware.CurrentUser(c)
	peerID := c.Param("id")

	msgs, err := h.service.History(c.Request.Context(), user.ID.Hex(), peerID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

type sendMessageRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"` // base64 data URI
}

func (h *messageHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body."})
		return
	}

	user := middleware.CurrentUser(c)
	receiverID := c.Param("id")

	msg, err := h.service.Send(c.Request.Context(), user.ID.Hex(), receiverID, req.Text, req.Image)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *messageHandler) GetUnreadCounts(c *gin.Context) {
	user := middleware.CurrentUser(c)

	counts, err := h.service.UnreadCounts(c.Request.Context(), user.ID.Hex())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}
