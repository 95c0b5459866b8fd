package handler

import (
	"github.com/fieldops/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
)

// DocumentHandler handles billing document endpoints. Invoices, jobs and
// timesheets share one surface; the kind in the payload or query string
// selects the number series and module gate.
type DocumentHandler struct {
	BaseHandler
	documentService *billing.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *billing.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// RegisterRoutes registers document routes on the given group
func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/entities/:id/documents", h.Create)
	rg.GET("/entities/:id/documents", h.List)

	documents := rg.Group("/documents")
	{
		documents.GET("/:id", h.Get)
		documents.PUT("/:id", h.Update)
	}
}

// Create issues a new document in the target entity
func (h *DocumentHandler) Create(c *gin.Context) {
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

	var req billing.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid document payload: "+err.Error())
		return
	}

	doc, err := h.documentService.Create(c.Request.Context(), identity, entityID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, doc)
}

// List returns the documents of one kind in the target entity. The kind
// query parameter is required.
func (h *DocumentHandler) List(c *gin.Context) {
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

	kind := c.Query("kind")
	if kind == "" {
		h.BadRequest(c, "Missing kind query parameter")
		return
	}

	docs, err := h.documentService.List(c.Request.Context(), identity, entityID, kind)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, docs)
}

// Get returns a single document with its lines
func (h *DocumentHandler) Get(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	doc, err := h.documentService.Get(c.Request.Context(), identity, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// Update edits a document's lines and derivation inputs
func (h *DocumentHandler) Update(c *gin.Context) {
	identity, err := getIdentity(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return
	}

	var req billing.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid document payload: "+err.Error())
		return
	}

	doc, err := h.documentService.Update(c.Request.Context(), identity, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}
