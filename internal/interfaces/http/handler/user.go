package handler

import (
	appidentity "github.com/fieldops/backend/internal/application/identity"
	"github.com/fieldops/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// UserHandler handles user administration endpoints
type UserHandler struct {
	BaseHandler
	userService *appidentity.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *appidentity.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes registers user routes on the given group
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := middleware.RequireRole(adminRoles...)

	users := rg.Group("/users", admin)
	{
		users.POST("", h.Create)
		users.GET("/:id", h.Get)
		users.PUT("/:id", h.Update)
		users.DELETE("/:id", h.Deactivate)
	}

	rg.GET("/entities/:id/users", admin, h.ListByEntity)
}

// Create registers a new user
func (h *UserHandler) Create(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appidentity.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid user payload: "+err.Error())
		return
	}

	user, err := h.userService.Create(c.Request.Context(), identity, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, user)
}

// Get returns a single user
func (h *UserHandler) Get(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	user, err := h.userService.Get(c.Request.Context(), identity, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// Update applies a partial update to a user
func (h *UserHandler) Update(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	var req appidentity.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid user payload: "+err.Error())
		return
	}

	user, err := h.userService.Update(c.Request.Context(), identity, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// Deactivate disables a user's sign-in
func (h *UserHandler) Deactivate(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.userService.Deactivate(c.Request.Context(), identity, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ListByEntity returns the users homed in an entity
func (h *UserHandler) ListByEntity(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	entityID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid entity ID")
		return
	}

	users, err := h.userService.ListByEntity(c.Request.Context(), identity, entityID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, users)
}
