package auth

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/blogify/pkg/jwt"
	"github.com/dmitrymomot/blogify/svc/user"
)

// WithClaims stores the authenticated identity for downstream handlers.
func WithClaims(ctx context.Context, c Claims) context.Context {
	return jwt.SetClaims(ctx, c)
}

// ClaimsFromContext returns the identity attached by the session middleware.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	return jwt.GetClaims[Claims](ctx)
}

// UserIDFromContext returns the authenticated user id.
func UserIDFromContext(ctx context.Context) (bson.ObjectID, bool) {
	c, ok := ClaimsFromContext(ctx)
	if !ok {
		return bson.ObjectID{}, false
	}
	id, err := c.ObjectID()
	return id, err == nil
}

type userContextKey struct{}

// WithUser stores the record loaded by RequireRole.
func WithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, u)
}

// UserFromContext returns the record loaded by RequireRole, nil otherwise.
func UserFromContext(ctx context.Context) *user.User {
	u, _ := ctx.Value(userContextKey{}).(*user.User)
	return u
}
