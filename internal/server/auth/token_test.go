package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/frankly034/userdir/internal/common"
)

func newTestTokenService(t *testing.T, secret string, validity time.Duration) *TokenService {
	t.Helper()
	s, err := NewTokenService(secret, "HS256", validity)
	if err != nil {
		t.Fatalf("NewTokenService error: %v", err)
	}
	return s
}

func TestIssueAndDecode_Success(t *testing.T) {
	t.Parallel()

	s := newTestTokenService(t, "super-secret", time.Hour)

	tok, err := s.Issue("user-123", "alice@example.com")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := s.Decode(tok)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if claims.UserID != "user-123" {
		t.Fatalf("UserID mismatch: got %q want %q", claims.UserID, "user-123")
	}
	if claims.Username != "alice@example.com" {
		t.Fatalf("Username mismatch: got %q want %q", claims.Username, "alice@example.com")
	}
}

func TestDecode_Expired(t *testing.T) {
	t.Parallel()

	s := newTestTokenService(t, "secret", -1*time.Second)

	tok, err := s.Issue("u1", "u1@example.com")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = s.Decode(tok)
	if !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}
}

func TestDecode_WrongSecret(t *testing.T) {
	t.Parallel()

	right := newTestTokenService(t, "right-secret", time.Hour)
	wrong := newTestTokenService(t, "wrong-secret", time.Hour)

	tok, err := right.Issue("u2", "u2@example.com")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = wrong.Decode(tok)
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestDecode_MalformedString(t *testing.T) {
	t.Parallel()

	s := newTestTokenService(t, "k", time.Hour)

	for _, tok := range []string{"", "garbage", "not.a.jwt"} {
		if _, err := s.Decode(tok); !errors.Is(err, common.ErrInvalidToken) {
			t.Fatalf("Decode(%q): expected common.ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestDecode_AlgorithmMismatch(t *testing.T) {
	t.Parallel()

	hs256 := newTestTokenService(t, "shared", time.Hour)

	hs512, err := NewTokenService("shared", "HS512", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService error: %v", err)
	}

	tok, err := hs512.Issue("u3", "u3@example.com")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := hs256.Decode(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken for mismatched algorithm, got %v", err)
	}
}

func TestNewTokenService_UnknownAlgorithm(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenService("k", "none-such", time.Hour); err == nil {
		t.Fatalf("expected error for unknown algorithm")
	}
	if _, err := NewTokenService("k", "RS256", time.Hour); err == nil {
		t.Fatalf("expected error for non-HMAC algorithm with symmetric secret")
	}
}
