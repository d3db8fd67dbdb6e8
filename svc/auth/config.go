package auth

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// RefreshCookieName is the cookie carrying the refresh token.
const RefreshCookieName = "refreshToken"

var ErrInvalidConfig = errors.New("auth: invalid config")

// Config carries the token secrets and lifetimes. Access and refresh tokens
// are signed with different secrets.
type Config struct {
	AccessTokenSecret  string        `env:"ACCESS_TOKEN_SECRET,required"`
	RefreshTokenSecret string        `env:"REFRESH_TOKEN_SECRET,required"`
	AccessTokenTTL     time.Duration `env:"ACCESS_TOKEN_EXPIRY" envDefault:"15m"`
	RefreshTokenTTL    time.Duration `env:"REFRESH_TOKEN_EXPIRY" envDefault:"24h"`
	OpaqueTokenTTL     time.Duration `env:"AUTH_OPAQUE_TOKEN_TTL" envDefault:"20m"`
	Issuer             string        `env:"AUTH_ISSUER" envDefault:"blogify"`

	AppName string `env:"APP_NAME" envDefault:"Blogify"`
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
	// PasswordResetURL is the client page that posts the token to /resetPassword.
	// Defaults to BaseURL + "/reset-password".
	PasswordResetURL string `env:"AUTH_PASSWORD_RESET_URL"`
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error
	if c.AccessTokenSecret == "" || c.RefreshTokenSecret == "" {
		errs = append(errs, errors.New("access and refresh secrets are required"))
	} else if c.AccessTokenSecret == c.RefreshTokenSecret {
		errs = append(errs, errors.New("access and refresh secrets must differ"))
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	} else if c.AccessTokenTTL >= c.RefreshTokenTTL {
		errs = append(errs, errors.New("access token must expire before the refresh token"))
	}
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		errs = append(errs, errors.New("base url is invalid"))
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
	}
	return nil
}

func (c Config) verificationLink(plain string) string {
	return strings.TrimSuffix(c.BaseURL, "/") + "/api/v1/auth/verify?token=" + url.QueryEscape(plain)
}

func (c Config) resetLink(plain string) string {
	base := c.PasswordResetURL
	if base == "" {
		base = strings.TrimSuffix(c.BaseURL, "/") + "/reset-password"
	}
	return base + "?token=" + url.QueryEscape(plain)
}
