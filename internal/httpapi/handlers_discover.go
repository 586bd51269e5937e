package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/belovebe/taskmatch/internal/db"
	"github.com/belovebe/taskmatch/internal/service/discover"
)

type DiscoverHandler struct {
	discover *discover.Service
}

func NewDiscoverHandler(svc *discover.Service) *DiscoverHandler {
	return &DiscoverHandler{discover: svc}
}

type decisionRequest struct {
	UserID   uint64          `json:"userId" binding:"required"`
	Decision db.DecisionType `json:"decision" binding:"required"`
}

type blockRequest struct {
	UserID uint64 `json:"userId" binding:"required"`
}

// Candidates returns the next page of swipe cards.
func (h *DiscoverHandler) Candidates(c *gin.Context) {
	q := discover.Query{
		Skip:  queryInt(c, "skip", 0),
		Limit: queryInt(c, "limit", 0),
	}
	if v := c.Query("ageMin"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			q.AgeMin = &n
		}
	}
	if v := c.Query("ageMax"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			q.AgeMax = &n
		}
	}
	if v := c.Query("maxDistance"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			q.MaxDistanceKm = &f
		}
	}

	page, err := h.discover.Candidates(c.Request.Context(), callerID(c), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Decide records a like or pass on another user.
func (h *DiscoverHandler) Decide(c *gin.Context) {
	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.discover.Decide(c.Request.Context(), callerID(c), req.UserID, req.Decision)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Block hides a user from the caller's feed.
func (h *DiscoverHandler) Block(c *gin.Context) {
	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.discover.Block(c.Request.Context(), callerID(c), req.UserID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocked": true})
}
