package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token lifetimes for the bank's member sessions.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour
)

// Claims are the access-token claims issued to members.
type Claims struct {
	jwt.RegisteredClaims

	// SID is the session the token belongs to. Revoking the session
	// invalidates every access token carrying its id.
	SID string `json:"sid,omitempty"`

	// Email of the authenticated member
	Email string `json:"email,omitempty"`
}

// NewAccessClaims builds minimally-correct claims.
func NewAccessClaims(
	subject, sid, email string,
	issuer string,
	audience []string,
	ttl time.Duration,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings(audience),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		SID:   sid,
		Email: email,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim. Two
// tokens minted in the same second for the same session must still differ.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// Check enforces issuer, audience and the exp/nbf window at now. An empty
// issuer or audience is not enforced.
func (c *Claims) Check(issuer string, audience []string, now time.Time) error {
	switch {
	case issuer != "" && c.Issuer != issuer:
		return ErrIssuer
	case len(audience) > 0 && !slices.ContainsFunc(audience, func(a string) bool {
		return slices.Contains(c.Audience, a)
	}):
		return ErrAudience
	case c.ExpiresAt != nil && now.After(c.ExpiresAt.Time):
		return ErrExpired
	case c.NotBefore != nil && now.Before(c.NotBefore.Time):
		return ErrNotYetValid
	}
	return nil
}
