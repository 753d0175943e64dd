package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/aeoaudit/audit"
	"github.com/use-agent/aeoaudit/models"
)

// Audit returns a handler for POST /api/v1/audit.
//
// Orchestration flow:
//  1. Parse & validate request.
//  2. Service.Audit → fetch (URL-only), extract, oracle, validate, transform.
//  3. Fill cache status + timing, return 200.
func Audit(svc *audit.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		var req models.AuditRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.AuditResponse{
				Success: false,
				Error:   invalidInput(err),
			})
			return
		}

		// ── 2. Run pipeline ─────────────────────────────────────────
		res, err := svc.Audit(c.Request.Context(), toServiceRequest(req))
		if err != nil {
			ae := asAuditError(err)
			c.JSON(mapErrorToStatus(ae), models.AuditResponse{
				Success: false,
				Error:   ae.ToDetail(),
				Timing:  models.TimingInfo{TotalMs: time.Since(totalStart).Milliseconds()},
			})
			return
		}

		// ── 3. Respond ──────────────────────────────────────────────
		resp := models.AuditResponse{
			Success: true,
			Report:  res.Report,
			Timing: models.TimingInfo{
				TotalMs:   time.Since(totalStart).Milliseconds(),
				FetchMs:   res.Timing.FetchMs,
				ExtractMs: res.Timing.ExtractMs,
				OracleMs:  res.Timing.OracleMs,
			},
		}
		if req.MaxAge != nil && *req.MaxAge > 0 {
			resp.CacheStatus = "miss"
			if res.CacheHit {
				resp.CacheStatus = "hit"
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}

// Features returns a handler for POST /api/v1/features. It runs extraction
// only; the oracle is never called.
func Features(svc *audit.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.AuditRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.FeaturesResponse{
				Success: false,
				Error:   invalidInput(err),
			})
			return
		}

		doc, err := svc.Features(c.Request.Context(), toServiceRequest(req))
		timing := models.TimingInfo{TotalMs: time.Since(totalStart).Milliseconds()}
		if err != nil {
			ae := asAuditError(err)
			c.JSON(mapErrorToStatus(ae), models.FeaturesResponse{
				Success: false,
				Error:   ae.ToDetail(),
				Timing:  timing,
			})
			return
		}

		c.JSON(http.StatusOK, models.FeaturesResponse{
			Success:  true,
			Features: &doc,
			Timing:   timing,
		})
	}
}

// Prompts returns a handler for POST /api/v1/prompts: extraction plus prompt
// assembly, for inspecting exactly what the oracle would be sent.
func Prompts(svc *audit.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.AuditRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.PromptsResponse{
				Success: false,
				Error:   invalidInput(err),
			})
			return
		}

		p, doc, err := svc.Prompts(c.Request.Context(), toServiceRequest(req))
		timing := models.TimingInfo{TotalMs: time.Since(totalStart).Milliseconds()}
		if err != nil {
			ae := asAuditError(err)
			c.JSON(mapErrorToStatus(ae), models.PromptsResponse{
				Success: false,
				Error:   ae.ToDetail(),
				Timing:  timing,
			})
			return
		}

		c.JSON(http.StatusOK, models.PromptsResponse{
			Success:         true,
			System:          p.System,
			User:            p.User,
			EstimatedTokens: p.EstimatedTokens,
			Features:        &doc,
			Timing:          timing,
		})
	}
}

func toServiceRequest(req models.AuditRequest) audit.Request {
	out := audit.Request{
		URL:        req.URL,
		HTML:       req.HTML,
		RobotsTxt:  req.RobotsTxt,
		MaxWords:   req.MaxWords,
		SchemaCap:  req.SchemaCap,
		WebhookURL: req.WebhookURL,
	}
	if req.MaxAge != nil {
		d := time.Duration(*req.MaxAge) * time.Second
		out.MaxAge = &d
	}
	return out
}
