// Package api provides the HTTP surface of speedrun.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Probe reports whether the graph database is reachable and migrated.
type Probe interface {
	HealthCheck(ctx context.Context) error
	AppliedVersion(ctx context.Context) (int64, error)
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	probe     Probe
	schema    int64
	log       *logrus.Logger
	version   string
	startTime time.Time
}

// NewHealthHandler creates a HealthHandler. schema is the migration version
// the binary expects the database to be at.
func NewHealthHandler(probe Probe, schema int64, log *logrus.Logger, version string) *HealthHandler {
	return &HealthHandler{
		probe:     probe,
		schema:    schema,
		log:       log,
		version:   version,
		startTime: time.Now(),
	}
}

// readinessResponse is the JSON payload returned by the readiness endpoint.
type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// healthResponse is the JSON payload returned by the health/liveness endpoint.
type healthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Liveness handles GET /api/v1/health.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:        "ok",
		Version:       h.version,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	})
}

// Readiness handles GET /api/v1/ready, checking connectivity and schema version.
func (h *HealthHandler) Readiness(c *gin.Context) {
	checks := map[string]string{
		"database": "ok",
		"schema":   "unknown",
	}
	status := "ready"
	statusCode := http.StatusOK

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.probe.HealthCheck(ctx); err != nil {
		h.log.WithError(err).Error("readiness: database health check failed")
		checks["database"] = "error"
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	} else {
		checks["schema"] = h.checkSchema(ctx)
		if checks["schema"] != "ok" {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
		}
	}

	c.JSON(statusCode, readinessResponse{
		Status: status,
		Checks: checks,
	})
}

func (h *HealthHandler) checkSchema(ctx context.Context) string {
	applied, err := h.probe.AppliedVersion(ctx)
	if err != nil {
		h.log.WithError(err).Error("readiness: schema check failed")
		return "error"
	}

	if applied < h.schema {
		h.log.WithFields(logrus.Fields{"applied": applied, "expected": h.schema}).Warn("readiness: schema behind binary")
		return "outdated"
	}

	return "ok"
}
