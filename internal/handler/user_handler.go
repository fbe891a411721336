package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docnotify/docnotify-api/internal/dto"
	"github.com/docnotify/docnotify-api/internal/service"
	appErrors "github.com/docnotify/docnotify-api/pkg/errors"
	"github.com/docnotify/docnotify-api/pkg/response"
)

// UserHandler exposes account endpoints.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler constructs handler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Sync godoc
// @Summary Sync the caller's account from its token
// @Tags Users
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /users/sync [post]
func (h *UserHandler) Sync(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.SyncUserRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}

	user, err := h.users.Sync(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Me godoc
// @Summary Current user profile
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.users.Me(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}
