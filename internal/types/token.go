package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// Identity is the decoded caller of an authenticated request.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// TokenClaims represents the claims in a JWT token. The subject is the uid.
type TokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}
