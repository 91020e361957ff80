package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultLinkTTL bounds how long a signed invoice link stays valid.
const DefaultLinkTTL = 48 * time.Hour

// LinkSigner mints and checks short-lived HS256 tokens for invoice
// links. A nil signer means signing is off and links go out bare.
type LinkSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewLinkSigner returns nil when secret is empty, which callers treat
// as signing disabled.
func NewLinkSigner(secret string, ttl time.Duration) *LinkSigner {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultLinkTTL
	}
	return &LinkSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign issues a token bound to one order ID.
func (s *LinkSigner) Sign(orderID string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("link signing disabled")
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   orderID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks the token's signature, expiry, and order binding.
func (s *LinkSigner) Verify(token, orderID string) error {
	if s == nil {
		return fmt.Errorf("link signing disabled")
	}
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return fmt.Errorf("invalid link token: %w", err)
	}
	if !parsed.Valid {
		return fmt.Errorf("invalid link token")
	}
	if claims.Subject != orderID {
		return fmt.Errorf("link token bound to a different order")
	}
	return nil
}
