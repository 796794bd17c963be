package agent

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tekhe/dashboard-api/internal/middleware"
	"github.com/tekhe/dashboard-api/internal/model"
	agentsvc "github.com/tekhe/dashboard-api/internal/service/agent"
	apperrors "github.com/tekhe/dashboard-api/pkg/errors"
	"github.com/tekhe/dashboard-api/pkg/httputil"
)

type Handler struct {
	service agentsvc.AgentService
}

func NewHandler(service agentsvc.AgentService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	agents := r.Group("/agents")
	{
		agents.POST("", h.EnrollAgent)
		agents.GET("", h.ListAgents)
		agents.GET("/:id", h.GetAgent)
		agents.DELETE("/:id", h.RevokeAgent)
	}
}

func (h *Handler) EnrollAgent(c *gin.Context) {
	var req model.EnrollAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	agent, err := h.service.Enroll(c.Request.Context(), middleware.UserFromContext(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, agent)
}

func (h *Handler) ListAgents(c *gin.Context) {
	facilityID, err := uuid.Parse(c.Query("facility_id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("facility_id is required", err))
		return
	}

	agents, err := h.service.ListByFacility(c.Request.Context(), middleware.UserFromContext(c), facilityID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, agents)
}

func (h *Handler) GetAgent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid agent id", err))
		return
	}

	agent, err := h.service.Get(c.Request.Context(), middleware.UserFromContext(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, agent)
}

func (h *Handler) RevokeAgent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid agent id", err))
		return
	}

	if err := h.service.Revoke(c.Request.Context(), middleware.UserFromContext(c), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"message": "agent revoked"})
}
