package handler

import (
	apptenancy "github.com/fieldops/backend/internal/application/tenancy"
	"github.com/fieldops/backend/internal/domain/tenancy"
	"github.com/fieldops/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AccountHandler handles account administration endpoints. Accounts are the
// platform's billing boundary, so every route is platform-admin only.
type AccountHandler struct {
	BaseHandler
	accountService *apptenancy.AccountService
	entityService  *apptenancy.EntityService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *apptenancy.AccountService, entityService *apptenancy.EntityService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		entityService:  entityService,
	}
}

// RegisterRoutes registers account routes on the given group
func (h *AccountHandler) RegisterRoutes(rg *gin.RouterGroup) {
	accounts := rg.Group("/accounts", middleware.RequireRole(tenancy.RolePlatformAdmin))
	{
		accounts.POST("", h.Create)
		accounts.GET("", h.List)
		accounts.GET("/:id", h.Get)
		accounts.PUT("/:id", h.Rename)
		accounts.DELETE("/:id", h.Deactivate)
		accounts.GET("/:id/entities", h.ListEntities)
	}
}

// Create provisions a new account
func (h *AccountHandler) Create(c *gin.Context) {
	var req apptenancy.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid account payload: "+err.Error())
		return
	}

	account, err := h.accountService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, account)
}

// List returns all accounts
func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.accountService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, accounts)
}

// Get returns a single account
func (h *AccountHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	account, err := h.accountService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, account)
}

// RenameAccountRequest is the account rename payload
type RenameAccountRequest struct {
	Name string `json:"name" binding:"required,max=200"`
}

// Rename changes an account's display name
func (h *AccountHandler) Rename(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	var req RenameAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid rename payload: "+err.Error())
		return
	}

	account, err := h.accountService.Rename(c.Request.Context(), id, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, account)
}

// Deactivate retires an account
func (h *AccountHandler) Deactivate(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	if err := h.accountService.Deactivate(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ListEntities returns the entities belonging to an account
func (h *AccountHandler) ListEntities(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	entities, err := h.entityService.ListByAccount(c.Request.Context(), identity, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entities)
}
