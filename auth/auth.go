// Package auth resolves the signed-in identity behind a bearer token. Token
// issuance belongs to the storefront; this side only verifies.
package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated user behind a request.
type Identity struct {
	UserID string
	Name   string
}

// Verifier validates bearer tokens against the shared storefront secret.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a token verifier for the given HMAC secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses and validates a token and returns the identity it carries.
func (v *Verifier) Verify(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type")
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	ident := &Identity{UserID: subject}
	if name, ok := claims["name"].(string); ok {
		ident.Name = name
	}
	return ident, nil
}

// FromHeader verifies the identity in an Authorization header. A missing or
// invalid header yields a nil identity, never an error: an unauthenticated
// user is a normal state the dispatcher knows how to handle.
func (v *Verifier) FromHeader(header string) *Identity {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return nil
	}
	ident, err := v.Verify(strings.TrimPrefix(header, prefix))
	if err != nil {
		return nil
	}
	return ident
}
