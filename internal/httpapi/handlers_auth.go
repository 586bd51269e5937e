package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/belovebe/taskmatch/internal/service/session"
)

type AuthHandler struct {
	sessions *session.Service
}

func NewAuthHandler(sessions *session.Service) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

type loginRequest struct {
	InitData string `json:"initData" binding:"required"`
}

// Login exchanges a Telegram Mini App initData payload for a bearer
// token, creating the user on first contact.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, token, err := h.sessions.Login(c.Request.Context(), req.InitData)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}
