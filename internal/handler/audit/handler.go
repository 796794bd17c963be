package audit

import (
	"github.com/gin-gonic/gin"

	"github.com/tekhe/dashboard-api/internal/model"
	auditsvc "github.com/tekhe/dashboard-api/internal/service/audit"
	apperrors "github.com/tekhe/dashboard-api/pkg/errors"
	"github.com/tekhe/dashboard-api/pkg/httputil"
)

type Handler struct {
	service *auditsvc.Service
}

func NewHandler(service *auditsvc.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	audit := r.Group("/audit")
	{
		audit.GET("", h.ListLogs)
		audit.GET("/sensitive", h.ListSensitive)
		audit.GET("/stats", h.Stats)
	}
}

func (h *Handler) ListLogs(c *gin.Context) {
	var filters model.AuditFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid filters", err))
		return
	}

	logs, err := h.service.List(c.Request.Context(), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, logs)
}

func (h *Handler) ListSensitive(c *gin.Context) {
	logs, err := h.service.ListSensitive(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, logs)
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, stats)
}
