package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/docnotify/docnotify-api/internal/middleware"
	"github.com/docnotify/docnotify-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return nil
	}
	return claims
}

func userIDFromContext(c *gin.Context) string {
	id, ok := middleware.UserIDFromContext(c)
	if !ok {
		return ""
	}
	return id
}
