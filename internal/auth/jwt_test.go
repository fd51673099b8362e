package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, claims ProviderClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("provider-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func TestInspectValidToken(t *testing.T) {
	token := signToken(t, ProviderClaims{
		Email: "summit@ucsc.edu",
		Name:  "Summit",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1234",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := Inspect(token)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if claims.Email != "summit@ucsc.edu" {
		t.Errorf("expected email summit@ucsc.edu, got %q", claims.Email)
	}
	if claims.Subject != "1234" {
		t.Errorf("expected subject 1234, got %q", claims.Subject)
	}
}

func TestInspectExpiredToken(t *testing.T) {
	token := signToken(t, ProviderClaims{
		Email: "summit@ucsc.edu",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	if _, err := Inspect(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestInspectWithinLeeway(t *testing.T) {
	now := time.Now()
	token := signToken(t, ProviderClaims{
		Email: "summit@ucsc.edu",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(-10 * time.Second)),
		},
	})

	if _, err := inspectAt(token, now); err != nil {
		t.Errorf("token inside leeway should pass: %v", err)
	}
}

func TestInspectMalformed(t *testing.T) {
	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := Inspect(token); !errors.Is(err, ErrMalformedToken) {
			t.Errorf("Inspect(%q): expected ErrMalformedToken, got %v", token, err)
		}
	}
}

func TestInspectNoIdentity(t *testing.T) {
	token := signToken(t, ProviderClaims{})
	if _, err := Inspect(token); !errors.Is(err, ErrMalformedToken) {
		t.Errorf("expected ErrMalformedToken for token without identity, got %v", err)
	}
}
