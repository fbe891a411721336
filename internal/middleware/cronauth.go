package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/docnotify/docnotify-api/pkg/config"
	appErrors "github.com/docnotify/docnotify-api/pkg/errors"
	"github.com/docnotify/docnotify-api/pkg/response"
)

// CronAuth gates the sweep trigger endpoint. The platform scheduler is
// recognized by its User-Agent signature and validated against its own
// token; every other caller validates against the manual secret. An
// unconfigured expected token is a hard configuration error, never an open
// door.
func CronAuth(cfg config.CronConfig, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		fromScheduler := cfg.SchedulerSignature != "" &&
			strings.Contains(c.GetHeader("User-Agent"), cfg.SchedulerSignature)

		expected := cfg.SecretKey
		caller := "manual"
		if fromScheduler {
			expected = cfg.SchedulerToken
			caller = "scheduler"
		}

		if expected == "" {
			logger.Error("cron trigger token not configured", zap.String("caller", caller))
			response.Error(c, appErrors.Clone(appErrors.ErrConfig, "cron trigger is not configured"))
			c.Abort()
			return
		}

		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
			logger.Warn("cron trigger rejected", zap.String("caller", caller))
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid cron token"))
			c.Abort()
			return
		}

		c.Next()
	}
}
