package sms

import (
	"strconv"

	"github.com/gin-gonic/gin"

	smssvc "github.com/tekhe/dashboard-api/internal/service/sms"
	apperrors "github.com/tekhe/dashboard-api/pkg/errors"
	"github.com/tekhe/dashboard-api/pkg/httputil"
)

type Handler struct {
	service smssvc.SMSService
}

func NewHandler(service smssvc.SMSService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	sms := r.Group("/sms")
	{
		sms.GET("", h.Recent)
		sms.GET("/history/:phone", h.History)
	}
}

func (h *Handler) Recent(c *gin.Context) {
	limit := 50
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid limit", err))
			return
		}
		limit = parsed
	}

	records, err := h.service.Recent(c.Request.Context(), limit)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, records)
}

func (h *Handler) History(c *gin.Context) {
	records, err := h.service.History(c.Request.Context(), c.Param("phone"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, records)
}
