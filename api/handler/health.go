package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/aeoaudit/audit"
	"github.com/use-agent/aeoaudit/models"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Health returns a handler for GET /api/v1/health.
//
// Status degrades when no scoring oracle is configured; extraction and
// prompt endpoints still work then.
func Health(svc *audit.Service, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := svc.Status()

		status := "healthy"
		if !st.OracleReady {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:        status,
			Uptime:        time.Since(startTime).Round(time.Second).String(),
			Version:       Version,
			OracleReady:   st.OracleReady,
			FetchEnabled:  st.FetchEnabled,
			CachedReports: st.CachedReports,
		})
	}
}
