package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/docnotify/docnotify-api/internal/service"
	"github.com/docnotify/docnotify-api/pkg/mailer"
)

type recordingTransport struct {
	messages []mailer.Message
}

func (t *recordingTransport) Send(msg mailer.Message) (string, error) {
	t.messages = append(t.messages, msg)
	return "<msg@test>", nil
}

func (t *recordingTransport) Close() error { return nil }

type recordingDialer struct {
	transport *recordingTransport
}

func (d *recordingDialer) Dial() (mailer.Transport, error) {
	return d.transport, nil
}

func contactRouter(recipient string) (*gin.Engine, *recordingTransport) {
	gin.SetMode(gin.TestMode)
	transport := &recordingTransport{}
	svc := service.NewContactService(&recordingDialer{transport: transport}, recipient, nil)

	router := gin.New()
	router.POST("/contact", NewContactHandler(svc).Submit)
	return router, transport
}

func TestContactSubmit(t *testing.T) {
	router, transport := contactRouter("support@example.com")

	body := `{"name":"Alice","email":"a@example.com","subject":"Help","message":"My document vanished"}`
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, transport.messages, 1)
	assert.Equal(t, "a@example.com", transport.messages[0].ReplyTo)
}

func TestContactSubmitValidatesBody(t *testing.T) {
	router, transport := contactRouter("support@example.com")

	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(`{"name":"Alice"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, transport.messages)
}

func TestContactSubmitUnconfiguredRecipient(t *testing.T) {
	router, _ := contactRouter("")

	body := `{"name":"Alice","email":"a@example.com","subject":"Help","message":"hi"}`
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
