package client

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vytor/betterank/internal/errors"
)

// TokenClaims is what the client can learn from a bearer token without the
// signing secret.
type TokenClaims struct {
	Subject   string
	ExpiresAt time.Time // zero when the token carries no exp claim
}

// Expired reports whether the token is past its expiry at now.
func (tc TokenClaims) Expired(now time.Time) bool {
	return !tc.ExpiresAt.IsZero() && !now.Before(tc.ExpiresAt)
}

// ParseTokenClaims decodes the JWT payload without verifying the signature.
// The backend remains the authority; this only lets the bootstrap reject
// tokens that are obviously stale.
func ParseTokenClaims(token string) (TokenClaims, error) {
	if token == "" {
		return TokenClaims{}, errors.ErrNoToken
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return TokenClaims{}, fmt.Errorf("parse token: %w", err)
	}
	out := TokenClaims{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// CheckToken returns ErrNoToken or ErrTokenExpired when token cannot be used.
func CheckToken(token string, now time.Time) (TokenClaims, error) {
	claims, err := ParseTokenClaims(token)
	if err != nil {
		return TokenClaims{}, err
	}
	if claims.Expired(now) {
		return claims, errors.ErrTokenExpired
	}
	return claims, nil
}
