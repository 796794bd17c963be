package analytics

import (
	"github.com/gin-gonic/gin"

	"github.com/tekhe/dashboard-api/internal/middleware"
	analyticssvc "github.com/tekhe/dashboard-api/internal/service/analytics"
	"github.com/tekhe/dashboard-api/pkg/httputil"
)

type Handler struct {
	service analyticssvc.AnalyticsService
}

func NewHandler(service analyticssvc.AnalyticsService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	analytics := r.Group("/analytics")
	{
		analytics.GET("/stats", h.Stats)
		analytics.GET("/kpis", h.KPIs)
	}
}

// Stats serves the anonymized distribution view, the only shape partner
// roles ever receive.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.AnonymizedStats(c.Request.Context(), middleware.UserFromContext(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, stats)
}

func (h *Handler) KPIs(c *gin.Context) {
	kpis, err := h.service.KPIs(c.Request.Context(), middleware.UserFromContext(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, kpis)
}
