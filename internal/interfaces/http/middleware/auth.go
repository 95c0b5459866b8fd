package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/fieldops/backend/internal/domain/access"
	"github.com/fieldops/backend/internal/infrastructure/auth"
	"github.com/fieldops/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by the auth middleware
const (
	// ContextKeyClaims holds the validated *auth.Claims
	ContextKeyClaims = "jwt_claims"
	// ContextKeyIdentity holds the access.Identity derived from the claims
	ContextKeyIdentity = "jwt_identity"
	// ContextKeyUserID holds the user ID string for access logging
	ContextKeyUserID = "user_id"
	// ContextKeyEntityID holds the advisory active entity ID string
	ContextKeyEntityID = "entity_id"
)

// AuthConfig holds configuration for the JWT auth middleware
type AuthConfig struct {
	// JWTService validates tokens
	JWTService *auth.JWTService
	// SkipPaths are exact paths that bypass authentication
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that bypass authentication
	SkipPathPrefixes []string
	// Logger for middleware logging (optional)
	Logger *zap.Logger
}

// Auth returns a middleware that validates the Bearer token and stashes the
// claims and the derived identity in the gin context. The active entity ID
// carried in the token is advisory only; handlers always pass the target
// entity explicitly and the application layer re-resolves scope.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if shouldSkip(c.Request.URL.Path, cfg) {
			c.Next()
			return
		}

		tokenString := extractBearerToken(c)
		if tokenString == "" {
			unauthorized(c, dto.ErrCodeUnauthorized, "Missing authorization token")
			return
		}

		claims, err := cfg.JWTService.ValidateToken(tokenString)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Debug("Token validation failed",
					zap.String("path", c.Request.URL.Path),
					zap.Error(err),
				)
			}
			code := dto.ErrCodeTokenInvalid
			if errors.Is(err, auth.ErrExpiredToken) {
				code = dto.ErrCodeTokenExpired
			}
			unauthorized(c, code, "Invalid or expired token")
			return
		}

		identity, err := claims.Identity()
		if err != nil {
			unauthorized(c, dto.ErrCodeTokenInvalid, "Token carries malformed identity claims")
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Set(ContextKeyIdentity, identity)
		c.Set(ContextKeyUserID, claims.UserID)
		if claims.ActiveEntityID != "" {
			c.Set(ContextKeyEntityID, claims.ActiveEntityID)
		}

		c.Next()
	}
}

func shouldSkip(path string, cfg AuthConfig) bool {
	for _, p := range cfg.SkipPaths {
		if path == p {
			return true
		}
	}
	for _, prefix := range cfg.SkipPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func unauthorized(c *gin.Context, code, message string) {
	requestID := c.GetString("request_id")
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, message, requestID))
}

// GetClaims retrieves the validated JWT claims from the gin context
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ContextKeyClaims); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetIdentity retrieves the authenticated identity from the gin context.
// The second return is false when the request was not authenticated.
func GetIdentity(c *gin.Context) (access.Identity, bool) {
	if v, ok := c.Get(ContextKeyIdentity); ok {
		if identity, ok := v.(access.Identity); ok {
			return identity, true
		}
	}
	return access.Identity{}, false
}
