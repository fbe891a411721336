package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/docnotify/docnotify-api/pkg/config"
)

func cronRouter(cfg config.CronConfig) (*gin.Engine, *bool) {
	gin.SetMode(gin.TestMode)
	reached := false

	router := gin.New()
	router.POST("/internal/cron/check-expirations", CronAuth(cfg, nil), func(c *gin.Context) {
		reached = true
		c.Status(http.StatusOK)
	})
	return router, &reached
}

func performCron(router *gin.Engine, token, userAgent string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/internal/cron/check-expirations", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func cronConfig() config.CronConfig {
	return config.CronConfig{
		SecretKey:          "manual-secret",
		SchedulerToken:     "scheduler-secret",
		SchedulerSignature: "docnotify-scheduler",
		Timeout:            time.Minute,
	}
}

func TestCronAuthAcceptsManualToken(t *testing.T) {
	router, reached := cronRouter(cronConfig())

	rec := performCron(router, "manual-secret", "curl/8.0")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *reached)
}

func TestCronAuthAcceptsSchedulerToken(t *testing.T) {
	router, reached := cronRouter(cronConfig())

	rec := performCron(router, "scheduler-secret", "docnotify-scheduler/1.2")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *reached)
}

func TestCronAuthSchedulerCannotUseManualToken(t *testing.T) {
	router, reached := cronRouter(cronConfig())

	rec := performCron(router, "manual-secret", "docnotify-scheduler/1.2")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *reached)
}

func TestCronAuthRejectsBadToken(t *testing.T) {
	router, reached := cronRouter(cronConfig())

	rec := performCron(router, "wrong", "curl/8.0")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *reached)
}

func TestCronAuthRejectsMissingToken(t *testing.T) {
	router, reached := cronRouter(cronConfig())

	rec := performCron(router, "", "curl/8.0")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *reached)
}

func TestCronAuthUnconfiguredTokenIsServerError(t *testing.T) {
	cfg := cronConfig()
	cfg.SchedulerToken = ""
	router, reached := cronRouter(cfg)

	// Scheduler calls must never fall back to the manual secret.
	rec := performCron(router, "manual-secret", "docnotify-scheduler/1.2")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, *reached)
}
