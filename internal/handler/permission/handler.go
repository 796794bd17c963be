package permission

import (
	"github.com/gin-gonic/gin"

	"github.com/tekhe/dashboard-api/internal/middleware"
	"github.com/tekhe/dashboard-api/internal/model"
	"github.com/tekhe/dashboard-api/internal/rbac"
	apperrors "github.com/tekhe/dashboard-api/pkg/errors"
	"github.com/tekhe/dashboard-api/pkg/httputil"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	permissions := r.Group("/permissions")
	{
		permissions.GET("/matrix", h.Matrix)
		permissions.GET("/actions", h.AvailableActions)
	}
}

// Matrix returns the full role to permission mapping for the admin screen.
func (h *Handler) Matrix(c *gin.Context) {
	httputil.RespondWithSuccess(c, rbac.Matrix())
}

// AvailableActions lists what the caller's role may do with one resource,
// so the dashboard can grey out buttons instead of surprising the user with
// a denial.
func (h *Handler) AvailableActions(c *gin.Context) {
	user := middleware.UserFromContext(c)
	if user == nil {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	resource := model.Resource(c.Query("resource"))
	if resource == "" {
		httputil.RespondWithError(c, apperrors.BadRequest("resource is required", nil))
		return
	}

	actions, err := rbac.AvailableActions(user.Role, resource)
	if err != nil {
		httputil.RespondWithError(c, apperrors.Forbidden("role is not recognized", err))
		return
	}
	httputil.RespondWithSuccess(c, gin.H{
		"resource": resource,
		"actions":  actions,
	})
}
