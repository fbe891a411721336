package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docnotify/docnotify-api/internal/dto"
	appErrors "github.com/docnotify/docnotify-api/pkg/errors"
)

func TestContactSubmitForwardsWithReplyTo(t *testing.T) {
	transport := &stubTransport{failFor: map[string]error{}}
	dialer := &stubDialer{transport: transport}
	svc := NewContactService(dialer, "support@example.com", nil)

	err := svc.Submit(context.Background(), dto.ContactRequest{
		Name:    "Alice",
		Email:   "a@example.com",
		Subject: "Renewal question",
		Message: "How do I change an expiry date?",
	})
	require.NoError(t, err)
	require.Len(t, transport.sent, 1)
	assert.Equal(t, "support@example.com", transport.sent[0].to)
	assert.Equal(t, "a@example.com", transport.sent[0].replyTo)
	assert.Equal(t, "[Support] Renewal question", transport.sent[0].subject)
	assert.True(t, transport.closed)
}

func TestContactSubmitRequiresRecipient(t *testing.T) {
	svc := NewContactService(&stubDialer{}, "", nil)

	err := svc.Submit(context.Background(), dto.ContactRequest{Name: "A", Email: "a@example.com", Subject: "s", Message: "m"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConfig.Code, appErrors.FromError(err).Code)
}

func TestContactSubmitRejectsInvalidEmail(t *testing.T) {
	transport := &stubTransport{failFor: map[string]error{}}
	dialer := &stubDialer{transport: transport}
	svc := NewContactService(dialer, "support@example.com", nil)

	err := svc.Submit(context.Background(), dto.ContactRequest{Name: "A", Email: "not-an-address", Subject: "s", Message: "m"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, transport.sent)
}

func TestContactSubmitPropagatesDialFailure(t *testing.T) {
	dialer := &stubDialer{err: fmt.Errorf("smtp unreachable")}
	svc := NewContactService(dialer, "support@example.com", nil)

	err := svc.Submit(context.Background(), dto.ContactRequest{Name: "A", Email: "a@example.com", Subject: "s", Message: "m"})
	assert.Error(t, err)
}
