package security

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
)

func newTestVerifier(t *testing.T, issuer, audience string) (*rsa.PrivateKey, *JWTVerifier) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key, NewJWTVerifier(&key.PublicKey, issuer, audience, 30*time.Second)
}

func sign(t *testing.T, key *rsa.PrivateKey, claims jwt.StandardClaims) string {
	t.Helper()
	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tokenStr
}

func TestSubjectValidToken(t *testing.T) {
	key, v := newTestVerifier(t, "auth-service", "cwrk-planet")

	tokenStr := sign(t, key, jwt.StandardClaims{
		Subject:   "user-1",
		Issuer:    "auth-service",
		Audience:  "cwrk-planet",
		IssuedAt:  time.Now().Unix(),
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	})

	sub, err := v.Subject(tokenStr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub != "user-1" {
		t.Fatalf("expected subject user-1, got %q", sub)
	}
}

func TestSubjectWrongIssuer(t *testing.T) {
	key, v := newTestVerifier(t, "auth-service", "")

	tokenStr := sign(t, key, jwt.StandardClaims{
		Subject:   "user-1",
		Issuer:    "someone-else",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	})

	if _, err := v.Subject(tokenStr); !errors.Is(err, ErrInvalidIssuer) {
		t.Fatalf("expected ErrInvalidIssuer, got %v", err)
	}
}

func TestSubjectWrongAudience(t *testing.T) {
	key, v := newTestVerifier(t, "", "cwrk-planet")

	tokenStr := sign(t, key, jwt.StandardClaims{
		Subject:   "user-1",
		Audience:  "other-app",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	})

	if _, err := v.Subject(tokenStr); !errors.Is(err, ErrInvalidAudience) {
		t.Fatalf("expected ErrInvalidAudience, got %v", err)
	}
}

func TestSubjectMissingSubject(t *testing.T) {
	key, v := newTestVerifier(t, "", "")

	tokenStr := sign(t, key, jwt.StandardClaims{
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	})

	if _, err := v.Subject(tokenStr); !errors.Is(err, ErrInvalidSubject) {
		t.Fatalf("expected ErrInvalidSubject, got %v", err)
	}
}

func TestSubjectExpiredToken(t *testing.T) {
	key, v := newTestVerifier(t, "", "")

	tokenStr := sign(t, key, jwt.StandardClaims{
		Subject:   "user-1",
		ExpiresAt: time.Now().Add(-time.Hour).Unix(),
	})

	if _, err := v.Subject(tokenStr); err == nil {
		t.Fatalf("expected error for expired token")
	}
}

func TestSubjectRejectsOtherSigningMethods(t *testing.T) {
	_, v := newTestVerifier(t, "", "")

	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Subject:   "user-1",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("shared-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := v.Subject(tokenStr); err == nil {
		t.Fatalf("expected error for HS256 token")
	}
}

func TestSubjectGarbageToken(t *testing.T) {
	_, v := newTestVerifier(t, "", "")
	if _, err := v.Subject("not.a.token"); err == nil {
		t.Fatalf("expected error for garbage token")
	}
}

func TestSubjectWrongKey(t *testing.T) {
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	_, v := newTestVerifier(t, "", "")

	tokenStr := sign(t, otherKey, jwt.StandardClaims{
		Subject:   "user-1",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	})

	if _, err := v.Subject(tokenStr); err == nil {
		t.Fatalf("expected signature verification to fail")
	}
}
