package opensearch

import (
	"context"
	"errors"
	"fmt"

	"github.com/opensearch-project/opensearch-go/v2"
)

type Config struct {
	Addresses   []string `env:"OPENSEARCH_ADDRESSES" envSeparator:","`
	Username    string   `env:"OPENSEARCH_USERNAME"`
	Password    string   `env:"OPENSEARCH_PASSWORD"`
	MaxRetries  int      `env:"OPENSEARCH_MAX_RETRIES" envDefault:"3"`
	IndexPrefix string   `env:"OPENSEARCH_INDEX_PREFIX" envDefault:"blogify"`
}

// Enabled reports whether at least one address is configured.
func (c Config) Enabled() bool { return len(c.Addresses) > 0 }

// Index returns the prefixed index name, e.g. "blogify-blogs".
func (c Config) Index(name string) string {
	if c.IndexPrefix == "" {
		return name
	}
	return c.IndexPrefix + "-" + name
}

// New creates a client and verifies the cluster is reachable.
func New(ctx context.Context, cfg Config) (*opensearch.Client, error) {
	client, err := opensearch.NewClient(opensearch.Config{
		Addresses:  cfg.Addresses,
		Username:   cfg.Username,
		Password:   cfg.Password,
		MaxRetries: cfg.MaxRetries,
	})
	if err != nil {
		return nil, errors.Join(ErrConnectionFailed, err)
	}
	if err := Healthcheck(client)(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

// Healthcheck calls the info endpoint.
func Healthcheck(client *opensearch.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		res, err := client.Info(client.Info.WithContext(ctx))
		if err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		defer res.Body.Close()
		if res.IsError() {
			return errors.Join(ErrHealthcheckFailed, fmt.Errorf("status %d", res.StatusCode))
		}
		return nil
	}
}
