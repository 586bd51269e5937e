package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/belovebe/taskmatch/internal/locations"
	"github.com/belovebe/taskmatch/internal/repository"
)

// ReferenceHandler serves immutable reference data: the category list
// and the location gazetteer.
type ReferenceHandler struct {
	categories *repository.CategoryRepository
}

func NewReferenceHandler(categories *repository.CategoryRepository) *ReferenceHandler {
	return &ReferenceHandler{categories: categories}
}

func (h *ReferenceHandler) Categories(c *gin.Context) {
	list, err := h.categories.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": list})
}

func (h *ReferenceHandler) Countries(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"countries": locations.Countries()})
}

func (h *ReferenceHandler) Cities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cities": locations.CitiesByCountry(c.Param("code"))})
}
