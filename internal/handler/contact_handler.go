package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docnotify/docnotify-api/internal/dto"
	"github.com/docnotify/docnotify-api/internal/service"
	appErrors "github.com/docnotify/docnotify-api/pkg/errors"
	"github.com/docnotify/docnotify-api/pkg/response"
)

// ContactHandler exposes the public support form endpoint.
type ContactHandler struct {
	contact *service.ContactService
}

// NewContactHandler constructs handler.
func NewContactHandler(contact *service.ContactService) *ContactHandler {
	return &ContactHandler{contact: contact}
}

// Submit godoc
// @Summary Submit a support message
// @Tags Contact
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /contact [post]
func (h *ContactHandler) Submit(c *gin.Context) {
	var req dto.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}

	if err := h.contact.Submit(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "sent"}, nil)
}
