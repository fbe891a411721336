package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/docnotify/docnotify-api/internal/models"
	"github.com/docnotify/docnotify-api/internal/service"
	appErrors "github.com/docnotify/docnotify-api/pkg/errors"
	"github.com/docnotify/docnotify-api/pkg/response"
)

// Context keys for authenticated request data.
const (
	ContextUserClaims = "user_claims"
	ContextUserID     = "user_id"
)

// Authenticate validates the bearer token and stores its claims on the
// request context.
func Authenticate(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing bearer token"))
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserClaims, claims)
		c.Set(ContextUserID, claims.UserID)
		c.Next()
	}
}

// ClaimsFromContext returns the verified token claims, if present.
func ClaimsFromContext(c *gin.Context) (*models.JWTClaims, bool) {
	v, exists := c.Get(ContextUserClaims)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*models.JWTClaims)
	return claims, ok
}

// UserIDFromContext returns the authenticated user ID, if present.
func UserIDFromContext(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextUserID)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
