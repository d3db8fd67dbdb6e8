package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var dotenvOnce sync.Once

// Validator is implemented by config structs that need cross-field checks
// after environment parsing, e.g. two secrets that must differ.
type Validator interface {
	Validate() error
}

// Option customizes parsing of a single config struct.
type Option func(*env.Options)

// WithPrefix parses only variables starting with prefix.
func WithPrefix(prefix string) Option {
	return func(o *env.Options) {
		o.Prefix = prefix
	}
}

// WithEnvironment parses from the given map instead of the process environment.
// Mostly useful in tests.
func WithEnvironment(vars map[string]string) Option {
	return func(o *env.Options) {
		o.Environment = vars
	}
}

// Load fills v from environment variables according to its `env` tags.
// A .env file in the working directory is loaded once per process, if present.
// When v implements Validator, Validate is called after parsing.
//
//	type DatabaseConfig struct {
//		URL string `env:"MONGODB_URL,required"`
//	}
//
//	var cfg DatabaseConfig
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](v *T, opts ...Option) error {
	if v == nil {
		return ErrNilPointer
	}

	dotenvOnce.Do(func() {
		// Missing .env is fine: production reads the real environment.
		_ = godotenv.Load()
	})

	var o env.Options
	for _, opt := range opts {
		opt(&o)
	}

	if err := env.ParseWithOptions(v, o); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	if val, ok := any(v).(Validator); ok {
		if err := val.Validate(); err != nil {
			return errors.Join(ErrInvalidConfig, err)
		}
	}

	return nil
}

// MustLoad is like Load but panics on failure. Use it only in main.
func MustLoad[T any](opts ...Option) T {
	var v T
	if err := Load(&v, opts...); err != nil {
		panic(fmt.Sprintf("config: load %T: %v", v, err))
	}
	return v
}
