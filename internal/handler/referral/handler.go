package referral

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tekhe/dashboard-api/internal/middleware"
	"github.com/tekhe/dashboard-api/internal/model"
	referralsvc "github.com/tekhe/dashboard-api/internal/service/referral"
	apperrors "github.com/tekhe/dashboard-api/pkg/errors"
	"github.com/tekhe/dashboard-api/pkg/httputil"
)

type Handler struct {
	service referralsvc.ReferralService
}

func NewHandler(service referralsvc.ReferralService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	referrals := r.Group("/referrals")
	{
		referrals.POST("", h.CreateReferral)
		referrals.GET("", h.ListReferrals)
		referrals.PATCH("/:id/status", h.UpdateStatus)
	}
}

func (h *Handler) CreateReferral(c *gin.Context) {
	var req model.CreateReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	referral, err := h.service.Create(c.Request.Context(), middleware.UserFromContext(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, referral)
}

func (h *Handler) ListReferrals(c *gin.Context) {
	referrals, err := h.service.List(c.Request.Context(), middleware.UserFromContext(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, referrals)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid referral id", err))
		return
	}

	var req model.UpdateReferralStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	referral, err := h.service.UpdateStatus(c.Request.Context(), middleware.UserFromContext(c), id, req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, referral)
}
