package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/persistorai/speedrun/internal/httputil"
	"github.com/persistorai/speedrun/internal/metrics"
	"github.com/persistorai/speedrun/internal/models"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeUnreachable      = "unreachable"
	ErrCodeSearchLimit      = "search_limit"
	ErrCodeStoreUnavailable = "store_unavailable"
	ErrCodeTimeout          = "timeout"
	ErrCodeInternalError    = "internal_error"
	ErrCodeRateLimited      = "rate_limited"
)

// respondError writes a standardized JSON error response, pulling the request
// ID from the Gin context (set by the request ID middleware).
func respondError(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, message)
}

// searchError maps a path search failure to an HTTP status, code, and a
// message safe to show clients.
func searchError(err error) (status int, code, message string) {
	switch {
	case errors.Is(err, models.ErrInvalidTitle):
		return http.StatusBadRequest, ErrCodeInvalidRequest, err.Error()
	case errors.Is(err, models.ErrInternalInconsistency):
		return http.StatusInternalServerError, ErrCodeInternalError, "internal server error"
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound, err.Error()
	case errors.Is(err, models.ErrUnreachable):
		return http.StatusUnprocessableEntity, ErrCodeUnreachable, "no path exists between the articles"
	case errors.Is(err, models.ErrSearchLimit):
		return http.StatusBadRequest, ErrCodeSearchLimit, err.Error()
	case errors.Is(err, models.ErrStoreConnection):
		return http.StatusServiceUnavailable, ErrCodeStoreUnavailable, "graph store temporarily unavailable"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, ErrCodeTimeout, "search did not finish in time"
	default:
		return http.StatusInternalServerError, ErrCodeInternalError, "internal server error"
	}
}
