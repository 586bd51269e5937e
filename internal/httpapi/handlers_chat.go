package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/belovebe/taskmatch/internal/service/chat"
)

type ChatHandler struct {
	chat *chat.Service
}

func NewChatHandler(svc *chat.Service) *ChatHandler {
	return &ChatHandler{chat: svc}
}

type openConversationRequest struct {
	ResponseID uint64 `json:"responseId" binding:"required"`
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// Open finds or creates the thread behind a response.
func (h *ChatHandler) Open(c *gin.Context) {
	var req openConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	conv, err := h.chat.Open(c.Request.Context(), callerID(c), req.ResponseID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// Messages returns the ordered log of a conversation.
func (h *ChatHandler) Messages(c *gin.Context) {
	conversationID, ok := pathID(c, "id")
	if !ok {
		return
	}

	messages, err := h.chat.Get(c.Request.Context(), callerID(c), conversationID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// Send appends a message to a conversation.
func (h *ChatHandler) Send(c *gin.Context) {
	conversationID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	message, err := h.chat.Send(c.Request.Context(), callerID(c), conversationID, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

// MarkRead stamps every unread message from the other participant.
func (h *ChatHandler) MarkRead(c *gin.Context) {
	conversationID, ok := pathID(c, "id")
	if !ok {
		return
	}

	marked, err := h.chat.MarkRead(c.Request.Context(), callerID(c), conversationID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": marked})
}

// Unread is the notification poll endpoint.
func (h *ChatHandler) Unread(c *gin.Context) {
	summary, err := h.chat.Unread(c.Request.Context(), callerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
