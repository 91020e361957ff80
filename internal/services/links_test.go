package services

import (
	"strings"
	"testing"
	"time"
)

func TestLinkSignerRoundTrip(t *testing.T) {
	signer := NewLinkSigner("test-secret", time.Hour)
	if signer == nil {
		t.Fatalf("signer not built")
	}

	token, err := signer.Sign("NEO-20250601T093015-9f2a")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("token not a JWT: %q", token)
	}

	if err := signer.Verify(token, "NEO-20250601T093015-9f2a"); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestLinkSignerRejectsOtherOrder(t *testing.T) {
	signer := NewLinkSigner("test-secret", time.Hour)
	token, err := signer.Sign("NEO-20250601T093015-9f2a")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := signer.Verify(token, "NEO-20250601T093015-0000"); err == nil {
		t.Fatalf("token accepted for a different order")
	}
}

func TestLinkSignerRejectsWrongSecret(t *testing.T) {
	signer := NewLinkSigner("test-secret", time.Hour)
	token, err := signer.Sign("NEO-20250601T093015-9f2a")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	other := NewLinkSigner("other-secret", time.Hour)
	if err := other.Verify(token, "NEO-20250601T093015-9f2a"); err == nil {
		t.Fatalf("token accepted under a different secret")
	}
}

func TestLinkSignerExpiry(t *testing.T) {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	signer := NewLinkSigner("test-secret", time.Hour)
	signer.now = func() time.Time { return base }

	token, err := signer.Sign("NEO-20250601T093015-9f2a")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	signer.now = func() time.Time { return base.Add(59 * time.Minute) }
	if err := signer.Verify(token, "NEO-20250601T093015-9f2a"); err != nil {
		t.Fatalf("token expired early: %v", err)
	}

	signer.now = func() time.Time { return base.Add(61 * time.Minute) }
	if err := signer.Verify(token, "NEO-20250601T093015-9f2a"); err == nil {
		t.Fatalf("expired token accepted")
	}
}

func TestLinkSignerDisabled(t *testing.T) {
	if s := NewLinkSigner("", time.Hour); s != nil {
		t.Fatalf("empty secret should disable signing")
	}
	if s := NewLinkSigner("   ", time.Hour); s != nil {
		t.Fatalf("blank secret should disable signing")
	}

	var signer *LinkSigner
	if _, err := signer.Sign("NEO-1"); err == nil {
		t.Fatalf("nil signer should refuse to sign")
	}
	if err := signer.Verify("x.y.z", "NEO-1"); err == nil {
		t.Fatalf("nil signer should refuse to verify")
	}
}

func TestLinkSignerDefaultTTL(t *testing.T) {
	signer := NewLinkSigner("test-secret", 0)
	if signer.ttl != DefaultLinkTTL {
		t.Fatalf("ttl = %v, want %v", signer.ttl, DefaultLinkTTL)
	}
}
