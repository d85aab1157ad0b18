package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/speedrun/internal/domain"
	"github.com/persistorai/speedrun/internal/middleware"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log           *logrus.Logger
	Paths         domain.PathFinder
	Probe         Probe
	SchemaVersion int64
	CORSOrigins   []string
	RateLimit     int           // requests per second per IP
	SearchTimeout time.Duration // upper bound on a single path search
	Version       string
}

// rateBurstFactor sizes the token bucket burst relative to the per-second rate.
const rateBurstFactor = 2

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(r *gin.Engine, deps *RouterDeps) error {
	limiter, err := middleware.NewRateLimiter(deps.RateLimit, deps.RateLimit*rateBurstFactor)
	if err != nil {
		return fmt.Errorf("creating rate limiter: %w", err)
	}

	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(limiter.Handler())
	r.Use(middleware.PrometheusMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return nil
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(api *gin.RouterGroup, deps *RouterDeps) {
	health := NewHealthHandler(deps.Probe, deps.SchemaVersion, deps.Log, deps.Version)
	paths := NewPathHandler(deps.Paths, deps.SearchTimeout, deps.Log)

	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)
	api.GET("/path", paths.Find)
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(deps *RouterDeps) (http.Handler, error) {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		respondError(c, http.StatusMethodNotAllowed, ErrCodeInvalidRequest, "method not allowed")
	})

	if err := setupMiddleware(r, deps); err != nil {
		return nil, err
	}

	registerRoutes(r.Group("/api/v1"), deps)

	return r, nil
}
