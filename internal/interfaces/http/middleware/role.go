package middleware

import (
	"net/http"

	"github.com/fieldops/backend/internal/domain/tenancy"
	"github.com/fieldops/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RoleConfig holds configuration for the role middleware
type RoleConfig struct {
	// Logger for middleware logging (optional)
	Logger *zap.Logger
}

// RequireRole creates middleware that admits only the listed roles. This is
// a coarse route-level gate for administrative surfaces; per-record scope
// and module checks still run in the application layer.
func RequireRole(roles ...tenancy.Role) gin.HandlerFunc {
	return RequireRoleWithConfig(RoleConfig{}, roles...)
}

// RequireRoleWithConfig creates a role middleware with custom config
func RequireRoleWithConfig(cfg RoleConfig, roles ...tenancy.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			requestID := c.GetString("request_id")
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Authentication required", requestID))
			return
		}

		for _, role := range roles {
			if identity.Role == role {
				c.Next()
				return
			}
		}

		if cfg.Logger != nil {
			cfg.Logger.Warn("Role check failed",
				zap.String("user_id", identity.UserID.String()),
				zap.String("role", identity.Role.String()),
				zap.String("path", c.Request.URL.Path),
			)
		}

		requestID := c.GetString("request_id")
		c.AbortWithStatusJSON(http.StatusForbidden,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "Role does not permit this operation", requestID))
	}
}
