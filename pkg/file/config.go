package file

import (
	"context"
	"fmt"
)

// Config selects the storage driver.
type Config struct {
	Driver       string `env:"STORAGE_DRIVER" envDefault:"local"` // local or s3
	LocalDir     string `env:"STORAGE_LOCAL_DIR" envDefault:"./uploads"`
	LocalBaseURL string `env:"STORAGE_LOCAL_BASE_URL" envDefault:"/uploads"`
	S3           S3Config
}

// NewFromConfig builds the configured Storage.
func NewFromConfig(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Driver {
	case "local", "":
		return NewLocalStorage(cfg.LocalDir, cfg.LocalBaseURL)
	case "s3":
		return NewS3Storage(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("%w: unknown driver %q", ErrInvalidConfig, cfg.Driver)
	}
}
