package handler

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/docnotify/docnotify-api/internal/dto"
	"github.com/docnotify/docnotify-api/internal/service"
	appErrors "github.com/docnotify/docnotify-api/pkg/errors"
	"github.com/docnotify/docnotify-api/pkg/response"
)

// ReportHandler exposes asynchronous expiry report exports.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Create godoc
// @Summary Request an expiry report export
// @Tags Reports
// @Accept json
// @Produce json
// @Success 202 {object} response.Envelope
// @Router /reports [post]
func (h *ReportHandler) Create(c *gin.Context) {
	var req dto.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}

	job, err := h.reports.CreateJob(c.Request.Context(), userIDFromContext(c), req.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Get godoc
// @Summary Poll an export job
// @Tags Reports
// @Produce json
// @Param id path string true "Report job ID"
// @Success 200 {object} response.Envelope
// @Router /reports/{id} [get]
func (h *ReportHandler) Get(c *gin.Context) {
	job, err := h.reports.GetJob(c.Request.Context(), userIDFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download godoc
// @Summary Download a finished report artifact
// @Tags Reports
// @Param id path string true "Report job ID"
// @Param token query string true "Signed download token"
// @Success 200
// @Router /reports/{id}/download [get]
func (h *ReportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "download token required"))
		return
	}

	reader, fileName, err := h.reports.OpenArtifact(c.Request.Context(), c.Param("id"), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer reader.Close()

	contentType := "text/csv"
	if strings.HasSuffix(fileName, ".pdf") {
		contentType = "application/pdf"
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		// Headers are already out; nothing sane left to report to the client.
		_ = err
	}
}
