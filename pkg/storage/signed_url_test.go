package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSignerRoundTrip(t *testing.T) {
	signer, err := NewTokenSigner("test-secret", time.Minute)
	require.NoError(t, err)

	token := signer.Generate("job-123")
	assert.NoError(t, signer.Validate("job-123", token))
}

func TestTokenSignerRejectsOtherResource(t *testing.T) {
	signer, err := NewTokenSigner("test-secret", time.Minute)
	require.NoError(t, err)

	token := signer.Generate("job-123")
	assert.Error(t, signer.Validate("job-456", token))
}

func TestTokenSignerRejectsExpired(t *testing.T) {
	signer, err := NewTokenSigner("test-secret", time.Minute)
	require.NoError(t, err)

	signer.ttl = -time.Minute
	token := signer.Generate("job-123")
	assert.Error(t, signer.Validate("job-123", token))
}

func TestTokenSignerRejectsMalformed(t *testing.T) {
	signer, err := NewTokenSigner("test-secret", time.Minute)
	require.NoError(t, err)

	assert.Error(t, signer.Validate("job-123", "not-a-token"))
	assert.Error(t, signer.Validate("job-123", "abc.def"))
}

func TestNewTokenSignerRequiresSecret(t *testing.T) {
	_, err := NewTokenSigner("", time.Minute)
	assert.Error(t, err)
}
