package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/fleet-reports/internal/http/middleware"
	"github.com/nurpe/fleet-reports/internal/model"
	"github.com/nurpe/fleet-reports/internal/service"
)

type ReportService interface {
	Dashboard(ctx context.Context, principal model.Principal, rawRange string) (*model.DashboardReport, error)
	Snapshot(ctx context.Context, principal model.Principal, rawRange, rawFormat string) (*service.SnapshotResult, error)
	Subscription(ctx context.Context, principal model.Principal) (*model.SubscriptionUsage, error)
}

type ExportService interface {
	Request(ctx context.Context, principal model.Principal, entity, format string) (*service.ExportResult, error)
	List(ctx context.Context, principal model.Principal, limit int) ([]model.ExportRequest, error)
	Get(ctx context.Context, principal model.Principal, id string) (*model.ExportRequest, error)
}

// HealthCheck reports the state of one dependency.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	reports ReportService
	exports ExportService
	checks  map[string]HealthCheck
	log     zerolog.Logger
}

func NewHandler(reports ReportService, exports ExportService, checks map[string]HealthCheck, log zerolog.Logger) *Handler {
	return &Handler{reports: reports, exports: exports, checks: checks, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	router.GET("/healthz", h.health)

	protected := router.Group("/reports")
	protected.Use(authMiddleware)
	protected.GET("/dashboard", h.dashboard)
	protected.GET("/dashboard/snapshot", h.snapshot)
	protected.GET("/subscription", h.subscription)
	protected.POST("/exports", h.requestExport)
	protected.GET("/exports", h.listExports)
	protected.GET("/exports/:id", h.getExport)
}

func (h *Handler) health(c *gin.Context) {
	services := make(map[string]string, len(h.checks))
	status := http.StatusOK
	for name, check := range h.checks {
		if err := check(c.Request.Context()); err != nil {
			services[name] = "unhealthy: " + err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		services[name] = "healthy"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	c.JSON(status, gin.H{"status": overall, "services": services})
}

func (h *Handler) dashboard(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	report, err := h.reports.Dashboard(c.Request.Context(), principal, c.Query("range"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *Handler) snapshot(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	result, err := h.reports.Snapshot(c.Request.Context(), principal, c.Query("range"), c.Query("format"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

func (h *Handler) subscription(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	usage, err := h.reports.Subscription(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, usage)
}

type exportRequest struct {
	Entity string `json:"entity" binding:"required"`
	Format string `json:"format" binding:"required"`
}

func (h *Handler) requestExport(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.exports.Request(c.Request.Context(), principal, req.Entity, req.Format)
	if errors.Is(err, service.ErrNotImplemented) && result != nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"id":      result.Request.ID.String(),
			"status":  result.Request.Status,
			"message": result.Message,
		})
		return
	}
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"id": result.Request.ID.String(), "status": result.Request.Status})
}

func (h *Handler) listExports(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	requests, err := h.exports.List(c.Request.Context(), principal, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(requests), "results": requests})
}

func (h *Handler) getExport(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	req, err := h.exports.Get(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, req)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotImplemented):
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUpstream):
		h.log.Warn().Err(err).Msg("fleet api request failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": service.ErrUpstream.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
