package token

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// DefaultTTL is the validity window of a freshly issued token.
const DefaultTTL = 20 * time.Minute

const entropyBytes = 32

var (
	ErrEmptyToken = errors.New("token: empty token")
	ErrMismatch   = errors.New("token: hash mismatch")
	ErrExpired    = errors.New("token: expired")
)

// Opaque is a freshly issued token. Plain must never be stored.
type Opaque struct {
	Plain     string
	Hash      string
	ExpiresAt time.Time
}

// Issue generates a token valid for ttl from now.
func Issue(now time.Time, ttl time.Duration) (Opaque, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	b := make([]byte, entropyBytes)
	if _, err := rand.Read(b); err != nil {
		return Opaque{}, fmt.Errorf("token: read random: %w", err)
	}

	plain := hex.EncodeToString(b)
	return Opaque{
		Plain:     plain,
		Hash:      Hash(plain),
		ExpiresAt: now.Add(ttl),
	}, nil
}

// Hash returns the hex SHA-256 digest of a plain token.
func Hash(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// Expired reports whether a token expiring at expiresAt is no longer usable at now.
// A token is still valid at the exact expiry instant.
func Expired(now, expiresAt time.Time) bool {
	return now.After(expiresAt)
}

// Check validates a presented plain token against a stored hash and expiry.
func Check(now time.Time, plain, storedHash string, expiresAt time.Time) error {
	if plain == "" || storedHash == "" {
		return ErrEmptyToken
	}
	if subtle.ConstantTimeCompare([]byte(Hash(plain)), []byte(storedHash)) != 1 {
		return ErrMismatch
	}
	if Expired(now, expiresAt) {
		return ErrExpired
	}
	return nil
}
