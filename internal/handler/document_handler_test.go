package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCreateDocumentRejectsMissingTitle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Binding fails before the service is touched, so no service is wired.
	router := gin.New()
	router.POST("/documents", NewDocumentHandler(nil).Create)

	req := httptest.NewRequest(http.MethodPost, "/documents", strings.NewReader(`{"expiryDate":"2026-09-15"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestDownloadURLRequiresObjectParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/documents/:id/files", NewDocumentHandler(nil).DownloadURL)

	req := httptest.NewRequest(http.MethodGet, "/documents/d1/files", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
