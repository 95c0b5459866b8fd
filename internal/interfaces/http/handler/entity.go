package handler

import (
	apptenancy "github.com/fieldops/backend/internal/application/tenancy"
	"github.com/fieldops/backend/internal/domain/tenancy"
	"github.com/fieldops/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// adminRoles are the roles allowed to administer entities. Entity admins
// manage only their own entity; that narrowing happens in the application
// layer, this gate just keeps plain users out.
var adminRoles = []tenancy.Role{
	tenancy.RolePlatformAdmin,
	tenancy.RoleAccountAdmin,
	tenancy.RoleEntityAdmin,
}

// EntityHandler handles entity administration endpoints, including the
// per-entity module switchboard.
type EntityHandler struct {
	BaseHandler
	entityService *apptenancy.EntityService
}

// NewEntityHandler creates a new EntityHandler
func NewEntityHandler(entityService *apptenancy.EntityService) *EntityHandler {
	return &EntityHandler{entityService: entityService}
}

// RegisterRoutes registers entity routes on the given group
func (h *EntityHandler) RegisterRoutes(rg *gin.RouterGroup) {
	provisioning := middleware.RequireRole(tenancy.RolePlatformAdmin, tenancy.RoleAccountAdmin)
	admin := middleware.RequireRole(adminRoles...)

	entities := rg.Group("/entities")
	{
		entities.POST("", provisioning, h.Create)
		entities.GET("/:id", admin, h.Get)
		entities.PUT("/:id/settings", admin, h.UpdateSettings)
		entities.PUT("/:id/modules/:key", admin, h.SetModule)
		entities.POST("/:id/activate", provisioning, h.Activate)
		entities.DELETE("/:id", provisioning, h.Disable)
	}
}

// Create provisions a new entity under an account
func (h *EntityHandler) Create(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req apptenancy.CreateEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid entity payload: "+err.Error())
		return
	}

	entity, err := h.entityService.Create(c.Request.Context(), identity, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, entity)
}

// Get returns a single entity with its settings and module flags
func (h *EntityHandler) Get(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid entity ID")
		return
	}

	entity, err := h.entityService.Get(c.Request.Context(), identity, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entity)
}

// UpdateSettings changes an entity's operational settings
func (h *EntityHandler) UpdateSettings(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid entity ID")
		return
	}

	var req apptenancy.UpdateEntitySettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid settings payload: "+err.Error())
		return
	}

	entity, err := h.entityService.UpdateSettings(c.Request.Context(), identity, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entity)
}

// SetModuleRequest is the module toggle payload
type SetModuleRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// SetModule enables or disables one module for the entity
func (h *EntityHandler) SetModule(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid entity ID")
		return
	}

	key, err := tenancy.ParseModuleKey(c.Param("key"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req SetModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid module payload: "+err.Error())
		return
	}

	entity, err := h.entityService.SetModule(c.Request.Context(), identity, id, key, *req.Enabled)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entity)
}

// Activate re-enables a disabled entity
func (h *EntityHandler) Activate(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid entity ID")
		return
	}

	if err := h.entityService.Activate(c.Request.Context(), identity, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Disable takes an entity out of service
func (h *EntityHandler) Disable(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid entity ID")
		return
	}

	if err := h.entityService.Disable(c.Request.Context(), identity, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
