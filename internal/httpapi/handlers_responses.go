package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/belovebe/taskmatch/internal/db"
	"github.com/belovebe/taskmatch/internal/service/responses"
)

type ResponseHandler struct {
	responses *responses.Service
}

func NewResponseHandler(svc *responses.Service) *ResponseHandler {
	return &ResponseHandler{responses: svc}
}

type createResponseRequest struct {
	TaskID      uint64   `json:"taskId" binding:"required"`
	ProposedSum *float64 `json:"proposedSum"`
	CoverLetter string   `json:"coverLetter" binding:"required"`
}

type responseStatusRequest struct {
	Status db.ResponseStatus `json:"status" binding:"required"`
}

// Create submits a response to a task.
func (h *ResponseHandler) Create(c *gin.Context) {
	var req createResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	response, err := h.responses.Create(c.Request.Context(), callerID(c), responses.CreateInput{
		TaskID:      req.TaskID,
		ProposedSum: req.ProposedSum,
		CoverLetter: req.CoverLetter,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response)
}

// My lists the caller's responses with chat badges.
func (h *ResponseHandler) My(c *gin.Context) {
	list, err := h.responses.My(c.Request.Context(), callerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"responses": list})
}

// SetStatus lets the task author accept or reject a response.
func (h *ResponseHandler) SetStatus(c *gin.Context) {
	responseID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req responseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	response, err := h.responses.SetStatus(c.Request.Context(), responseID, callerID(c), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}
