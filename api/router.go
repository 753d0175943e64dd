package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/aeoaudit/api/handler"
	"github.com/use-agent/aeoaudit/api/middleware"
	"github.com/use-agent/aeoaudit/audit"
	"github.com/use-agent/aeoaudit/config"
	"github.com/use-agent/aeoaudit/metrics"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger → Metrics (if set)
//	API:     Auth (if enabled) → RateLimit
//
// Health and /metrics sit outside auth so probes and scrapers always work.
func NewRouter(svc *audit.Service, cfg *config.Config, m *metrics.Metrics, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	if m != nil {
		r.Use(m.Middleware())
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	v1 := r.Group("/api/v1")

	// Health: no auth required.
	v1.GET("/health", handler.Health(svc, startTime))

	// Protected group: auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.POST("/audit", handler.Audit(svc))
	protected.POST("/features", handler.Features(svc))
	protected.POST("/prompts", handler.Prompts(svc))

	return r
}
