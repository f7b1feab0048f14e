package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return signed
}

func TestVerify(t *testing.T) {
	v := NewVerifier(testSecret)
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":  "user-42",
		"name": "Alex",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	ident, err := v.Verify(token)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if ident.UserID != "user-42" {
		t.Errorf("Expected user-42, got '%s'", ident.UserID)
	}
	if ident.Name != "Alex" {
		t.Errorf("Expected name Alex, got '%s'", ident.Name)
	}
}

func TestVerify_Failures(t *testing.T) {
	v := NewVerifier(testSecret)

	testCases := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"wrong secret", signToken(t, "other-secret", jwt.MapClaims{"sub": "user-42"})},
		{"expired", signToken(t, testSecret, jwt.MapClaims{
			"sub": "user-42",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})},
		{"no subject", signToken(t, testSecret, jwt.MapClaims{"name": "Alex"})},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := v.Verify(tc.token); err == nil {
				t.Error("Expected verification to fail")
			}
		})
	}
}

func TestFromHeader(t *testing.T) {
	v := NewVerifier(testSecret)
	token := signToken(t, testSecret, jwt.MapClaims{"sub": "user-42"})

	if ident := v.FromHeader("Bearer " + token); ident == nil || ident.UserID != "user-42" {
		t.Errorf("Expected a verified identity, got %v", ident)
	}
	if ident := v.FromHeader(token); ident != nil {
		t.Error("Expected nil without the Bearer prefix")
	}
	if ident := v.FromHeader(""); ident != nil {
		t.Error("Expected nil for an empty header")
	}
	if ident := v.FromHeader("Bearer garbage"); ident != nil {
		t.Error("Expected nil for an invalid token")
	}
}
