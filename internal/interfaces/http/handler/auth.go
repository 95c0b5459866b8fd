package handler

import (
	"github.com/fieldops/backend/internal/application/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *identity.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes registers auth routes on the given group
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/login", h.Login)
	}
}

// LoginRequest is the login payload. ActiveEntityID optionally selects the
// entity the session starts in; it is advisory and re-validated on use.
type LoginRequest struct {
	Username       string `json:"username" binding:"required"`
	Password       string `json:"password" binding:"required"`
	ActiveEntityID string `json:"active_entity_id" binding:"omitempty,uuid"`
}

// Login authenticates a user and issues a session token
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid login payload: "+err.Error())
		return
	}

	input := identity.LoginInput{
		Username: req.Username,
		Password: req.Password,
	}
	if req.ActiveEntityID != "" {
		id, err := uuid.Parse(req.ActiveEntityID)
		if err != nil {
			h.BadRequest(c, "Invalid active entity ID")
			return
		}
		input.ActiveEntityID = &id
	}

	result, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
