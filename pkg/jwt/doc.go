// Package jwt signs and verifies HS256 JSON Web Tokens on top of golang-jwt.
//
// A Service owns exactly one signing key. Applications that need keys with a
// different blast radius, such as access and refresh tokens, create one
// Service per key:
//
//	access, err := jwt.NewFromString(cfg.AccessSecret, jwt.WithTTL(15*time.Minute))
//	if err != nil {
//		return err
//	}
//
//	claims := Claims{RegisteredClaims: access.RegisteredClaims(userID), Role: "author"}
//	signed, err := access.Generate(&claims)
//
//	var parsed Claims
//	if err := access.Parse(signed, &parsed); err != nil {
//		// ErrExpiredToken, ErrInvalidSignature or ErrInvalidToken
//	}
//
// Only HS256 is accepted when parsing, and an expiry claim is required.
//
// # Transport helpers
//
// BearerTokenExtractor reads the Authorization header and
// CookieTokenExtractor builds an extractor for a named cookie. Both satisfy
// TokenExtractorFunc, so middleware can take either. SetBearer writes a
// token back into a header. SetClaims and GetClaims carry parsed claims
// through the request context.
package jwt
