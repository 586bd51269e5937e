package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/belovebe/taskmatch/internal/domain"
	"github.com/belovebe/taskmatch/internal/logger"
)

// writeError maps a domain error to its HTTP status and renders the
// uniform {"error": "..."} body. Unknown errors become opaque 500s.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrMalformedPayload):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, domain.ErrInvalidSignature),
		errors.Is(err, domain.ErrUnauthenticated):
		status = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, domain.ErrAccessDenied),
		errors.Is(err, domain.ErrSelfResponse):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrProfileNotFound),
		errors.Is(err, domain.ErrTaskNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrResponseNotFound),
		errors.Is(err, domain.ErrConversationNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, domain.ErrDuplicateResponse),
		errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
		message = err.Error()
	default:
		logger.Error("unhandled error", "err", err)
	}

	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// badRequest renders a 400 for body/query binding failures.
func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
