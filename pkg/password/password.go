package password

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matthewhartstonge/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Algorithm names accepted by Config.
const (
	Bcrypt   = "bcrypt"
	Argon2id = "argon2id"
)

var (
	ErrMismatch         = errors.New("password: mismatch")
	ErrEmptyPassword    = errors.New("password: empty password")
	ErrUnknownAlgorithm = errors.New("password: unknown algorithm")
	ErrMalformedHash    = errors.New("password: malformed hash")
)

// Hasher is the one-way function used for credentials.
type Hasher interface {
	Hash(plain string) (string, error)
	// Verify returns ErrMismatch when plain does not match hash.
	Verify(hash, plain string) error
}

// Config selects the algorithm and its cost.
type Config struct {
	Algorithm  string `env:"PASSWORD_ALGORITHM" envDefault:"bcrypt"`
	BcryptCost int    `env:"PASSWORD_BCRYPT_COST" envDefault:"10"`
}

// New returns the Hasher configured by cfg.
func New(cfg Config) (Hasher, error) {
	switch strings.ToLower(cfg.Algorithm) {
	case "", Bcrypt:
		return NewBcrypt(cfg.BcryptCost), nil
	case Argon2id:
		return NewArgon2(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, cfg.Algorithm)
	}
}

type bcryptHasher struct {
	cost int
}

// NewBcrypt returns a bcrypt Hasher. Out-of-range costs fall back to bcrypt.DefaultCost.
func NewBcrypt(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return bcryptHasher{cost: cost}
}

func (h bcryptHasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("password: bcrypt: %w", err)
	}
	return string(b), nil
}

func (h bcryptHasher) Verify(hash, plain string) error {
	return verify(hash, plain)
}

type argon2Hasher struct {
	cfg argon2.Config
}

// NewArgon2 returns an argon2id Hasher with the library's recommended parameters.
func NewArgon2() Hasher {
	cfg := argon2.DefaultConfig()
	cfg.Mode = argon2.ModeArgon2id
	return argon2Hasher{cfg: cfg}
}

func (h argon2Hasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}
	encoded, err := h.cfg.HashEncoded([]byte(plain))
	if err != nil {
		return "", fmt.Errorf("password: argon2: %w", err)
	}
	return string(encoded), nil
}

func (h argon2Hasher) Verify(hash, plain string) error {
	return verify(hash, plain)
}

func verify(hash, plain string) error {
	if plain == "" {
		return ErrMismatch
	}

	switch {
	case strings.HasPrefix(hash, "$argon2"):
		ok, err := argon2.VerifyEncoded([]byte(plain), []byte(hash))
		if err != nil {
			return errors.Join(ErrMalformedHash, err)
		}
		if !ok {
			return ErrMismatch
		}
		return nil
	case strings.HasPrefix(hash, "$2"):
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatch
		}
		if err != nil {
			return errors.Join(ErrMalformedHash, err)
		}
		return nil
	default:
		return ErrMalformedHash
	}
}
