// Package session keeps signed-in sessions and one-time form nonces.
package session

import (
	"context"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/staff-admin/internal/domain"
)

var ErrNotFound = errors.New("session not found")

// Store persists sessions for the lifetime of a browsing session and guards
// form submissions against replays.
type Store interface {
	Save(ctx context.Context, sess *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
	// ClaimNonce marks nonce as used and reports whether this call claimed it.
	ClaimNonce(ctx context.Context, nonce string, ttl time.Duration) (bool, error)
	ReleaseNonce(ctx context.Context, nonce string) error
	Ping(ctx context.Context) error
}

// New builds a session for token. The session ends after ttl, or earlier when
// the token is a JWT that expires first.
func New(token, username string, ttl time.Duration, now time.Time) *domain.Session {
	expiresAt := now.Add(ttl)
	if exp, ok := TokenExpiry(token); ok && exp.Before(expiresAt) {
		expiresAt = exp
	}
	return &domain.Session{
		ID:        uuid.NewString(),
		Token:     token,
		Username:  username,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature;
// the staff API owns the signing key. Opaque tokens report false.
func TokenExpiry(token string) (time.Time, bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
