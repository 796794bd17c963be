package auth

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/tekhe/dashboard-api/internal/middleware"
	"github.com/tekhe/dashboard-api/internal/model"
	"github.com/tekhe/dashboard-api/internal/rbac"
	authsvc "github.com/tekhe/dashboard-api/internal/service/auth"
	apperrors "github.com/tekhe/dashboard-api/pkg/errors"
	"github.com/tekhe/dashboard-api/pkg/httputil"
)

type Handler struct {
	service *authsvc.Service
}

func NewHandler(service *authsvc.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", h.Login)
	}
}

func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/logout", h.Logout)
		auth.GET("/me", h.Me)
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		var scopeErr *authsvc.ScopeConfigurationError
		switch {
		case errors.As(err, &scopeErr):
			httputil.RespondWithValidationErrors(c, "account scope configuration invalid", scopeErr.Errors)
		case errors.Is(err, authsvc.ErrAccountLocked):
			httputil.RespondWithError(c, apperrors.Forbidden(err.Error(), nil))
		case errors.Is(err, authsvc.ErrInvalidCredentials):
			httputil.RespondWithError(c, apperrors.Unauthorized(err))
		default:
			httputil.RespondWithError(c, apperrors.Internal(err))
		}
		return
	}

	httputil.RespondWithSuccess(c, resp)
}

func (h *Handler) Logout(c *gin.Context) {
	user := middleware.UserFromContext(c)
	if user == nil {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}
	if err := h.service.Logout(c.Request.Context(), user.ID); err != nil {
		httputil.RespondWithError(c, apperrors.Internal(err))
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"message": "logged out"})
}

// Me returns the session user with the actions its role may perform, so the
// dashboard can build its navigation without guessing.
func (h *Handler) Me(c *gin.Context) {
	user := middleware.UserFromContext(c)
	if user == nil {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	scope, err := rbac.ScopeOf(user.Role)
	if err != nil {
		httputil.RespondWithError(c, apperrors.Internal(err))
		return
	}
	perms, err := rbac.PermissionsOf(user.Role)
	if err != nil {
		httputil.RespondWithError(c, apperrors.Internal(err))
		return
	}

	httputil.RespondWithSuccess(c, gin.H{
		"user":        user,
		"scope":       scope,
		"permissions": perms,
	})
}
