package auth

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/blogify/pkg/jwt"
	"github.com/dmitrymomot/blogify/svc/user"
)

// Claims is the identity carried by access and refresh tokens. Role is not
// included; guards load it from the store.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// ObjectID parses the user id claim.
func (c Claims) ObjectID() (bson.ObjectID, error) {
	return bson.ObjectIDFromHex(c.UserID)
}

// Identity is the claim set a token is minted from.
type Identity struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

func IdentityOf(u *user.User) Identity {
	return Identity{ID: u.ID.Hex(), Email: u.Email, Username: u.Username}
}

func (c Claims) Identity() Identity {
	return Identity{ID: c.UserID, Email: c.Email, Username: c.Username}
}

// TokenIssuer signs access and refresh tokens with separate secrets.
type TokenIssuer struct {
	access  *jwt.Service
	refresh *jwt.Service
}

func NewTokenIssuer(cfg Config, now func() time.Time) (*TokenIssuer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}

	access, err := jwt.NewFromString(cfg.AccessTokenSecret,
		jwt.WithTTL(cfg.AccessTokenTTL), jwt.WithIssuer(cfg.Issuer), jwt.WithClock(now))
	if err != nil {
		return nil, fmt.Errorf("access token service: %w", err)
	}
	refresh, err := jwt.NewFromString(cfg.RefreshTokenSecret,
		jwt.WithTTL(cfg.RefreshTokenTTL), jwt.WithIssuer(cfg.Issuer), jwt.WithClock(now))
	if err != nil {
		return nil, fmt.Errorf("refresh token service: %w", err)
	}
	return &TokenIssuer{access: access, refresh: refresh}, nil
}

func issue(svc *jwt.Service, id Identity) (string, error) {
	return svc.Generate(&Claims{
		RegisteredClaims: svc.RegisteredClaims(id.ID),
		UserID:           id.ID,
		Email:            id.Email,
		Username:         id.Username,
	})
}

func verify(svc *jwt.Service, token string) (Claims, error) {
	var c Claims
	if err := svc.Parse(token, &c); err != nil {
		return Claims{}, err
	}
	if c.UserID == "" {
		return Claims{}, jwt.ErrMissingClaims
	}
	return c, nil
}

func (t *TokenIssuer) IssueAccessToken(id Identity) (string, error) {
	return issue(t.access, id)
}

func (t *TokenIssuer) IssueRefreshToken(id Identity) (string, error) {
	return issue(t.refresh, id)
}

// VerifyAccessToken fails with jwt.ErrInvalidSignature, jwt.ErrExpiredToken
// or jwt.ErrInvalidToken.
func (t *TokenIssuer) VerifyAccessToken(token string) (Claims, error) {
	return verify(t.access, token)
}

func (t *TokenIssuer) VerifyRefreshToken(token string) (Claims, error) {
	return verify(t.refresh, token)
}

func (t *TokenIssuer) RefreshTTL() time.Duration { return t.refresh.TTL() }
