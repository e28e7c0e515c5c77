// Package authcode issues the one-time codes that /auth/callback exchanges
// for a session.
package authcode

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidCode is returned for unknown, expired or already used codes
var ErrInvalidCode = errors.New("invalid or expired auth code")

// Store issues codes bound to an account and consumes them once
type Store interface {
	Issue(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, error)
	Consume(ctx context.Context, code string) (uuid.UUID, error)
}

func newCode() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
