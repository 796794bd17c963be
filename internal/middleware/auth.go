package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tekhe/dashboard-api/internal/model"
	"github.com/tekhe/dashboard-api/internal/rbac"
	authsvc "github.com/tekhe/dashboard-api/internal/service/auth"
	"github.com/tekhe/dashboard-api/pkg/auth"
	apperrors "github.com/tekhe/dashboard-api/pkg/errors"
	"github.com/tekhe/dashboard-api/pkg/httputil"
	"github.com/tekhe/dashboard-api/pkg/metrics"
)

const ContextUser = "user"

type AuthMiddleware struct {
	jwtSvc      auth.JWTService
	authService *authsvc.Service
	metrics     *metrics.Metrics
}

func NewAuthMiddleware(jwtSvc auth.JWTService, authService *authsvc.Service, m *metrics.Metrics) *AuthMiddleware {
	return &AuthMiddleware{jwtSvc: jwtSvc, authService: authService, metrics: m}
}

// Authenticate validates the bearer token and restores the session user.
// The token carries the subject id only; role and scope attributes always
// come fresh from the session so a revoked or expired session drops the
// caller back to anonymous immediately.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "invalid authorization format")
			return
		}

		claims, err := m.jwtSvc.ValidateToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		user, err := m.authService.Session(c.Request.Context(), claims.UserID)
		if err != nil {
			var scopeErr *authsvc.ScopeConfigurationError
			switch {
			case errors.Is(err, authsvc.ErrSessionExpired):
				if m.metrics != nil {
					m.metrics.SessionsExpired.Inc()
				}
				abortUnauthorized(c, "session expired")
			case errors.Is(err, authsvc.ErrNoSession):
				abortUnauthorized(c, "no active session")
			case errors.As(err, &scopeErr):
				httputil.RespondWithError(c, apperrors.Forbidden(scopeErr.Error(), nil))
				c.Abort()
			default:
				httputil.RespondWithError(c, apperrors.Internal(err))
				c.Abort()
			}
			return
		}

		c.Set(ContextUser, user)
		c.Next()
	}
}

// RequirePermission gates a route on a single permission of the caller's
// role. Unknown roles are denied, never allowed through.
func (m *AuthMiddleware) RequirePermission(resource model.Resource, action model.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := UserFromContext(c)
		if user == nil {
			abortUnauthorized(c, "authentication required")
			return
		}

		ok, err := rbac.HasPermission(user.Role, resource, action)
		if err != nil || !ok {
			if m.metrics != nil {
				m.metrics.ScopeDenials.WithLabelValues("permission").Inc()
			}
			httputil.RespondWithError(c, apperrors.Forbidden("", nil))
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserFromContext returns the session user set by Authenticate, or nil on
// anonymous routes.
func UserFromContext(c *gin.Context) *model.User {
	v, exists := c.Get(ContextUser)
	if !exists {
		return nil
	}
	user, ok := v.(*model.User)
	if !ok {
		return nil
	}
	return user
}

func abortUnauthorized(c *gin.Context, message string) {
	httputil.RespondWithError(c, &apperrors.AppError{
		Code:    apperrors.ErrUnauthorized,
		Message: message,
	})
	c.Abort()
}
