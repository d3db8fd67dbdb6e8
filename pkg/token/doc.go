// Package token issues opaque single-use tokens for out-of-band links such
// as email verification and password reset.
//
// The plain value goes to the user; only its SHA-256 hash is persisted. A
// token is redeemed by hashing the presented value and looking the hash up:
//
//	tok, err := token.Issue(now, 20*time.Minute)
//	if err != nil {
//		return err
//	}
//	// store tok.Hash and tok.ExpiresAt, mail tok.Plain
//
//	if err := token.Check(now, presented, storedHash, storedExpiry); err != nil {
//		// ErrEmptyToken, ErrMismatch or ErrExpired
//	}
//
// A token is still valid at the exact expiry instant and expired one tick
// later.
package token
