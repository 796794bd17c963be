package risk

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tekhe/dashboard-api/internal/middleware"
	"github.com/tekhe/dashboard-api/internal/model"
	risksvc "github.com/tekhe/dashboard-api/internal/service/risk"
	apperrors "github.com/tekhe/dashboard-api/pkg/errors"
	"github.com/tekhe/dashboard-api/pkg/httputil"
)

type Handler struct {
	service risksvc.RiskService
}

func NewHandler(service risksvc.RiskService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	risks := r.Group("/risks")
	{
		risks.GET("", h.ListRisks)
		risks.POST("/assess/:patientId", h.Assess)
	}
}

func (h *Handler) ListRisks(c *gin.Context) {
	var filters model.RiskFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid filters", err))
		return
	}

	entries, err := h.service.List(c.Request.Context(), middleware.UserFromContext(c), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, entries)
}

func (h *Handler) Assess(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid patient id", err))
		return
	}

	entry, err := h.service.Assess(c.Request.Context(), middleware.UserFromContext(c), patientID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, entry)
}
