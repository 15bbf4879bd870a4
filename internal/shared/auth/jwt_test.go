package auth

import (
	"errors"
	"testing"
	"time"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	s, err := NewSigner("secret", time.Hour, false)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	tok, err := s.Sign("session-1")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	sid, err := s.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if sid != "session-1" {
		t.Fatalf("expected session-1, got %s", sid)
	}
}

func TestVerifyRejectsOtherSecret(t *testing.T) {
	a, _ := NewSigner("a", time.Hour, false)
	b, _ := NewSigner("b", time.Hour, false)
	tok, _ := a.Sign("s")
	if _, err := b.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	s, _ := NewSigner("secret", time.Minute, false)
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return issued }
	tok, err := s.Sign("s")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	s.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := s.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	s, _ := NewSigner("secret", time.Hour, false)
	for _, tok := range []string{"", "a.b.c", "not-a-token"} {
		if _, err := s.Verify(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Verify(%q) expected ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestNewSignerRequiresSecretInProduction(t *testing.T) {
	if _, err := NewSigner("", time.Hour, true); err == nil {
		t.Fatalf("expected error without secret in production")
	}
	if _, err := NewSigner("", time.Hour, false); err != nil {
		t.Fatalf("expected dev fallback, got %v", err)
	}
}
