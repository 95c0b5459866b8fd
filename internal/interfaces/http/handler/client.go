package handler

import (
	"io"
	"net/http"

	apppartner "github.com/fieldops/backend/internal/application/partner"
	csvimport "github.com/fieldops/backend/internal/infrastructure/import"
	"github.com/fieldops/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ClientHandler handles client record endpoints. The target entity always
// comes from the URL, never from the session; the application layer checks
// the caller's scope against it on every operation.
type ClientHandler struct {
	BaseHandler
	clientService *apppartner.ClientService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService *apppartner.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// RegisterRoutes registers client routes on the given group
func (h *ClientHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/entities/:id/clients", h.Create)
	rg.POST("/entities/:id/clients/import", h.Import)
	rg.GET("/entities/:id/clients", h.List)

	clients := rg.Group("/clients")
	{
		clients.GET("/:id", h.Get)
		clients.PUT("/:id", h.Update)
		clients.DELETE("/:id", h.Deactivate)
	}
}

// Create registers a new client in the target entity
func (h *ClientHandler) Create(c *gin.Context) {
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

	var req apppartner.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid client payload: "+err.Error())
		return
	}

	client, err := h.clientService.Create(c.Request.Context(), identity, entityID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, client)
}

// Import bulk-creates clients from a CSV body. A file with any invalid
// row imports nothing and comes back with the per-row error list.
func (h *ClientHandler) Import(c *gin.Context) {
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

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, csvimport.MaxFileSize+1))
	if err != nil {
		h.BadRequest(c, "Failed to read upload")
		return
	}

	result, err := h.clientService.Import(c.Request.Context(), identity, entityID, data)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if len(result.Errors) > 0 {
		c.JSON(http.StatusUnprocessableEntity, dto.Response{
			Success: false,
			Data:    result,
			Error: &dto.ErrorInfo{
				Code:      dto.ErrCodeValidation,
				Message:   "Import file contains invalid rows",
				RequestID: getRequestID(c),
			},
		})
		return
	}

	h.Created(c, result)
}

// List returns the clients of the target entity
func (h *ClientHandler) List(c *gin.Context) {
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

	clients, err := h.clientService.List(c.Request.Context(), identity, entityID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, clients)
}

// Get returns a single client
func (h *ClientHandler) Get(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	client, err := h.clientService.Get(c.Request.Context(), identity, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, client)
}

// Update applies a partial update to a client
func (h *ClientHandler) Update(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	var req apppartner.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid client payload: "+err.Error())
		return
	}

	client, err := h.clientService.Update(c.Request.Context(), identity, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, client)
}

// Deactivate retires a client record
func (h *ClientHandler) Deactivate(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	if err := h.clientService.Deactivate(c.Request.Context(), identity, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
