package jwt

import "context"

type claimsContextKey struct{}

// SetClaims stores decoded claims in the context.
func SetClaims(ctx context.Context, claims any) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// GetClaims returns claims from the context as T.
func GetClaims[T any](ctx context.Context) (T, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(T)
	return claims, ok
}
