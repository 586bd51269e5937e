package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/belovebe/taskmatch/internal/db"
	"github.com/belovebe/taskmatch/internal/domain"
	"github.com/belovebe/taskmatch/internal/repository"
	"github.com/belovebe/taskmatch/internal/service/tasks"
)

type TaskHandler struct {
	tasks *tasks.Service
}

func NewTaskHandler(svc *tasks.Service) *TaskHandler {
	return &TaskHandler{tasks: svc}
}

type taskWriteRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description" binding:"required"`
	CategoryID  uint64     `json:"categoryId" binding:"required"`
	Budget      *float64   `json:"budget"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Country     *string    `json:"country"`
	City        *string    `json:"city"`
	Street      *string    `json:"street"`
	House       *string    `json:"house"`
	Latitude    *float64   `json:"latitude"`
	Longitude   *float64   `json:"longitude"`
}

type taskStatusRequest struct {
	Status db.TaskStatus `json:"status" binding:"required"`
}

// Feed lists published tasks matching query filters.
func (h *TaskHandler) Feed(c *gin.Context) {
	filter := repository.FeedFilter{
		CategoryIDs: queryUints(c, "categories"),
		Countries:   queryList(c, "countries"),
		Cities:      queryList(c, "cities"),
		Worldwide:   c.Query("worldwide") == "true",
		Page:        queryInt(c, "page", 1),
		Limit:       queryInt(c, "limit", 20),
	}

	page, err := h.tasks.Feed(c.Request.Context(), callerID(c), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// My lists the caller's own tasks.
func (h *TaskHandler) My(c *gin.Context) {
	list, err := h.tasks.MyTasks(c.Request.Context(), callerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": list})
}

// Get returns one task, counting the view.
func (h *TaskHandler) Get(c *gin.Context) {
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), taskID, callerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Create publishes a new task.
func (h *TaskHandler) Create(c *gin.Context) {
	var req taskWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), callerID(c), tasks.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Budget:      req.Budget,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Country:     req.Country,
		City:        req.City,
		Street:      req.Street,
		House:       req.House,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// Update patches a task. Author-only.
func (h *TaskHandler) Update(c *gin.Context) {
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req taskWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), taskID, callerID(c), tasks.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Budget:      req.Budget,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Country:     req.Country,
		City:        req.City,
		Street:      req.Street,
		House:       req.House,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// SetStatus applies a lifecycle transition. Author-only.
func (h *TaskHandler) SetStatus(c *gin.Context) {
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req taskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	task, err := h.tasks.SetStatus(c.Request.Context(), taskID, callerID(c), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Delete removes a task. Author-only.
func (h *TaskHandler) Delete(c *gin.Context) {
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), taskID, callerID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// Responses lists a task's responses for its author and clears the
// new-responses badge.
func (h *TaskHandler) Responses(c *gin.Context) {
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	list, err := h.tasks.ListResponses(c.Request.Context(), taskID, callerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"responses": list})
}

func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		writeError(c, domain.ErrInvalidInput)
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def int) int {
	if v := c.Query(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func queryList(c *gin.Context, name string) []string {
	v := c.Query(name)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func queryUints(c *gin.Context, name string) []uint64 {
	var out []uint64
	for _, p := range queryList(c, name) {
		if n, err := strconv.ParseUint(p, 10, 64); err == nil {
			out = append(out, n)
		}
	}
	return out
}
