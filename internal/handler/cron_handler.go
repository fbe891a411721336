package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/docnotify/docnotify-api/internal/dto"
	"github.com/docnotify/docnotify-api/internal/models"
)

type sweepRunner interface {
	Run(ctx context.Context) models.SweepResult
}

// CronHandler exposes the expiration sweep trigger called by the platform
// scheduler or an operator.
type CronHandler struct {
	sweep   sweepRunner
	timeout time.Duration
}

// NewCronHandler constructs handler.
func NewCronHandler(sweep sweepRunner, timeout time.Duration) *CronHandler {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &CronHandler{sweep: sweep, timeout: timeout}
}

// CheckExpirations godoc
// @Summary Run the expiration notification sweep
// @Tags Cron
// @Produce json
// @Success 200 {object} dto.SweepResponse
// @Router /internal/cron/check-expirations [post]
func (h *CronHandler) CheckExpirations(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	result := h.sweep.Run(ctx)

	// Handled run failures still answer 200: the trigger itself worked, the
	// outcome lives in the body. Only auth and transport-level problems map
	// to non-200 statuses, and those never reach this handler.
	c.JSON(http.StatusOK, dto.SweepResponse{
		Success: result.Success,
		Message: result.Message,
		Details: dto.SweepDetails{
			EmailsSent:     result.EmailsSent,
			ProcessedUsers: result.ProcessedUsers,
			ErrorCount:     result.ErrorCount,
			Errors:         result.Errors,
		},
	})
}
