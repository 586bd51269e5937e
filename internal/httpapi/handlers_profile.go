package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/belovebe/taskmatch/internal/repository"
	"github.com/belovebe/taskmatch/internal/service/profile"
)

type ProfileHandler struct {
	profile *profile.Service
}

func NewProfileHandler(svc *profile.Service) *ProfileHandler {
	return &ProfileHandler{profile: svc}
}

type profilePatchRequest struct {
	DisplayName       *string    `json:"displayName"`
	Birthdate         *time.Time `json:"birthdate"`
	Gender            *string    `json:"gender"`
	GenderPreferences []string   `json:"genderPreferences"`
	Bio               *string    `json:"bio"`
	Country           *string    `json:"country"`
	City              *string    `json:"city"`
	Lat               *float64   `json:"lat"`
	Lng               *float64   `json:"lng"`
	PreferredCountry  *string    `json:"preferredCountry"`
	PreferredCity     *string    `json:"preferredCity"`
}

type filtersRequest struct {
	SelectedCategories []uint64 `json:"selectedCategories"`
	SelectedCountries  []string `json:"selectedCountries"`
	SelectedCities     []string `json:"selectedCities"`
	WorldwideMode      bool     `json:"worldwideMode"`
}

// Me returns the caller's account with profile and photos.
func (h *ProfileHandler) Me(c *gin.Context) {
	user, err := h.profile.Me(c.Request.Context(), callerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Update applies a partial profile patch.
func (h *ProfileHandler) Update(c *gin.Context) {
	var req profilePatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	updated, err := h.profile.Update(c.Request.Context(), callerID(c), repository.ProfileUpdate{
		DisplayName:       req.DisplayName,
		Birthdate:         req.Birthdate,
		Gender:            req.Gender,
		GenderPreferences: req.GenderPreferences,
		Bio:               req.Bio,
		Country:           req.Country,
		City:              req.City,
		Lat:               req.Lat,
		Lng:               req.Lng,
		PreferredCountry:  req.PreferredCountry,
		PreferredCity:     req.PreferredCity,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Filters returns the caller's saved feed preferences.
func (h *ProfileHandler) Filters(c *gin.Context) {
	filters, err := h.profile.Filters(c.Request.Context(), callerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, filters)
}

// SaveFilters replaces the caller's saved feed preferences.
func (h *ProfileHandler) SaveFilters(c *gin.Context) {
	var req filtersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	filters, err := h.profile.SaveFilters(c.Request.Context(), callerID(c),
		req.SelectedCategories, req.SelectedCountries, req.SelectedCities, req.WorldwideMode)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, filters)
}
