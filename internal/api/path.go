package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/speedrun/internal/domain"
)

// defaultSearchTimeout bounds a search when the router is given no timeout.
const defaultSearchTimeout = 60 * time.Second

// PathHandler serves shortest-path searches.
type PathHandler struct {
	paths   domain.PathFinder
	timeout time.Duration
	log     *logrus.Logger
}

// NewPathHandler creates a PathHandler.
func NewPathHandler(paths domain.PathFinder, timeout time.Duration, log *logrus.Logger) *PathHandler {
	if timeout <= 0 {
		timeout = defaultSearchTimeout
	}

	return &PathHandler{paths: paths, timeout: timeout, log: log}
}

// Find handles GET /api/v1/path?from=&to=.
func (h *PathHandler) Find(c *gin.Context) {
	from, to := c.Query("from"), c.Query("to")
	if from == "" || to == "" {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "query parameters 'from' and 'to' are required")

		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	result, err := h.paths.FindPath(ctx, from, to)
	if err != nil {
		status, code, message := searchError(err)
		if status >= http.StatusInternalServerError {
			h.log.WithError(err).WithFields(logrus.Fields{"from": from, "to": to}).Error("finding path")
		}

		respondError(c, status, code, message)

		return
	}

	c.JSON(http.StatusOK, result)
}
