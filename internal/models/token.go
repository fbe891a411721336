package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the token payload issued by the identity provider.
type JWTClaims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}
