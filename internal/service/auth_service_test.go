package service

import (
	"alcyxob/exercise-tracker/internal/repository/repotest"
	"context"
	"errors"
	"testing"
	"time"
)

const testSecret = "test-secret"

func newTestAuth(t *testing.T, password string) AuthService {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return NewAuthService(testSecret, hash, time.Hour, nil)
}

func TestLoginIssuesValidToken(t *testing.T) {
	auth := newTestAuth(t, "hunter22")

	token, expiresAt, err := auth.Login(context.Background(), "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if until := time.Until(expiresAt); until <= 0 || until > time.Hour {
		t.Errorf("expiresAt = %v, want within the next hour", expiresAt)
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Subject != OwnerSubject {
		t.Errorf("subject = %q, want %q", claims.Subject, OwnerSubject)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	auth := newTestAuth(t, "hunter22")
	for _, pw := range []string{"", "hunter2", "HUNTER22"} {
		if _, _, err := auth.Login(context.Background(), pw); !errors.Is(err, ErrAuthenticationFailed) {
			t.Errorf("Login(%q) err = %v, want ErrAuthenticationFailed", pw, err)
		}
	}
}

func TestValidateTokenRejections(t *testing.T) {
	auth := newTestAuth(t, "pw")
	token, _, err := auth.Login(context.Background(), "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	other := NewAuthService("different-secret", "", time.Hour, nil)
	if _, err := other.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign secret err = %v, want ErrInvalidToken", err)
	}
	if _, err := auth.ValidateToken(token + "x"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("tampered token err = %v, want ErrInvalidToken", err)
	}
	if _, err := auth.ValidateToken("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage err = %v, want ErrInvalidToken", err)
	}
}

func TestValidateTokenExpired(t *testing.T) {
	hash, err := HashPassword("pw")
	if err != nil {
		t.Fatal(err)
	}
	clock := repotest.NewFakeClock(time.Now().Add(-3 * time.Hour))
	auth := NewAuthService(testSecret, hash, time.Hour, clock.Now)

	token, _, err := auth.Login(context.Background(), "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := auth.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token err = %v, want ErrInvalidToken", err)
	}
}

func TestAuthDisabled(t *testing.T) {
	auth := NewAuthService("", "", 0, nil)
	if auth.Enabled() {
		t.Fatal("auth with empty secret should be disabled")
	}
	if _, _, err := auth.Login(context.Background(), "anything"); !errors.Is(err, ErrAuthDisabled) {
		t.Errorf("Login err = %v, want ErrAuthDisabled", err)
	}
	if _, err := auth.ValidateToken("x"); !errors.Is(err, ErrAuthDisabled) {
		t.Errorf("ValidateToken err = %v, want ErrAuthDisabled", err)
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Error("expected error for empty password")
	}
}
