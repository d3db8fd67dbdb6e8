// Package password hashes and verifies user passwords.
//
// Two algorithms are available behind the Hasher interface: bcrypt (the
// default, golang.org/x/crypto) and argon2id (matthewhartstonge/argon2).
// Verify auto-detects the algorithm from the stored hash, so a deployment
// can switch algorithms without invalidating existing accounts:
//
//	h, err := password.New(password.Config{Algorithm: password.Argon2id})
//	if err != nil {
//		return err
//	}
//	hash, err := h.Hash(plain)
//	...
//	if err := h.Verify(hash, plain); errors.Is(err, password.ErrMismatch) {
//		// wrong password
//	}
package password
