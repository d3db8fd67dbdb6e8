// Package cookie sets, reads and clears HTTP cookies with shared defaults.
//
// A Manager carries the defaults (path, domain, Secure, SameSite) loaded from
// Config; per-call Options override them:
//
//	m := cookie.NewFromConfig(cfg)
//	m.Set(w, "refresh_token", token, cookie.WithTTL(7*24*time.Hour))
//	value, err := m.Get(r, "refresh_token")
//	m.Delete(w, "refresh_token")
//
// Cookies are HttpOnly unless WithHTTPOnly(false) is passed. Get returns
// ErrCookieNotFound for a missing or empty cookie.
package cookie
