package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/persistorai/speedrun/internal/httputil"
	"github.com/persistorai/speedrun/internal/metrics"
)

func respondError(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, message)
}
