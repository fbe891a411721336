package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TokenSigner issues and validates HMAC signed download tokens so report
// artifacts can be fetched without a session.
type TokenSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenSigner builds a signer. The secret must be non-empty.
func NewTokenSigner(secret string, ttl time.Duration) (*TokenSigner, error) {
	if secret == "" {
		return nil, fmt.Errorf("signed url secret is required")
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &TokenSigner{secret: []byte(secret), ttl: ttl}, nil
}

// Generate returns a token bound to the given resource ID that expires after
// the configured TTL.
func (s *TokenSigner) Generate(resourceID string) string {
	expires := time.Now().Add(s.ttl).Unix()
	return fmt.Sprintf("%d.%s", expires, s.sign(resourceID, expires))
}

// Validate checks the token against the resource ID. It returns an error when
// the token is malformed, expired, or signed for a different resource.
func (s *TokenSigner) Validate(resourceID, token string) error {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return fmt.Errorf("malformed token")
	}

	expires, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return fmt.Errorf("malformed token expiry")
	}
	if time.Now().Unix() > expires {
		return fmt.Errorf("token expired")
	}

	expected := s.sign(resourceID, expires)
	if !hmac.Equal([]byte(expected), []byte(parts[1])) {
		return fmt.Errorf("token signature mismatch")
	}
	return nil
}

func (s *TokenSigner) sign(resourceID string, expires int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s:%d", resourceID, expires)
	return hex.EncodeToString(mac.Sum(nil))
}
