package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docnotify/docnotify-api/internal/dto"
	"github.com/docnotify/docnotify-api/internal/middleware"
	"github.com/docnotify/docnotify-api/internal/service"
	appErrors "github.com/docnotify/docnotify-api/pkg/errors"
	"github.com/docnotify/docnotify-api/pkg/response"
)

// DocumentHandler exposes document CRUD and file endpoints.
type DocumentHandler struct {
	documents *service.DocumentService
}

// NewDocumentHandler constructs handler.
func NewDocumentHandler(documents *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// Create godoc
// @Summary Register a document
// @Tags Documents
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /documents [post]
func (h *DocumentHandler) Create(c *gin.Context) {
	var req dto.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}

	doc, err := h.documents.Create(c.Request.Context(), userIDFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, doc)
}

// List godoc
// @Summary List the caller's documents
// @Tags Documents
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	docs, fromCache, err := h.documents.List(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if fromCache {
		middleware.MarkCacheHit(c)
	}
	response.JSON(c, http.StatusOK, docs, nil)
}

// Get godoc
// @Summary Fetch one document
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.documents.Get(c.Request.Context(), userIDFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// Update godoc
// @Summary Update a document
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /documents/{id} [patch]
func (h *DocumentHandler) Update(c *gin.Context) {
	var req dto.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}

	doc, err := h.documents.Update(c.Request.Context(), userIDFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// Delete godoc
// @Summary Delete a document
// @Tags Documents
// @Param id path string true "Document ID"
// @Success 204
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.documents.Delete(c.Request.Context(), userIDFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UploadURL godoc
// @Summary Request a presigned upload URL for a document file
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/files [post]
func (h *DocumentHandler) UploadURL(c *gin.Context) {
	var req dto.UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}

	slot, err := h.documents.UploadURL(c.Request.Context(), userIDFromContext(c), c.Param("id"), req.FileName)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// AttachFile godoc
// @Summary Confirm a completed file upload
// @Tags Documents
// @Accept json
// @Param id path string true "Document ID"
// @Success 204
// @Router /documents/{id}/files/confirm [post]
func (h *DocumentHandler) AttachFile(c *gin.Context) {
	var req dto.AttachFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}

	if err := h.documents.AttachFile(c.Request.Context(), userIDFromContext(c), c.Param("id"), req.ObjectName); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DownloadURL godoc
// @Summary Request a presigned download URL for a document file
// @Tags Documents
// @Produce json
// @Param id path string true "Document ID"
// @Param object query string true "Object name"
// @Success 200 {object} response.Envelope
// @Router /documents/{id}/files [get]
func (h *DocumentHandler) DownloadURL(c *gin.Context) {
	objectName := c.Query("object")
	if objectName == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "object query parameter required"))
		return
	}

	link, err := h.documents.DownloadURL(c.Request.Context(), userIDFromContext(c), c.Param("id"), objectName)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}
