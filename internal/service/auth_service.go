package service

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/docnotify/docnotify-api/internal/models"
	"github.com/docnotify/docnotify-api/pkg/config"
	appErrors "github.com/docnotify/docnotify-api/pkg/errors"
)

// AuthService validates bearer tokens issued by the identity provider. The
// API never issues tokens itself.
type AuthService struct {
	cfg config.JWTConfig
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(cfg config.JWTConfig) *AuthService {
	return &AuthService{cfg: cfg}
}

// ValidateToken parses and verifies a bearer token and returns its claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}
	if len(s.cfg.Audience) > 0 {
		opts = append(opts, jwt.WithAudience(s.cfg.Audience[0]))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}

	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token missing subject")
	}
	return claims, nil
}
