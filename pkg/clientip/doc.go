// Package clientip resolves the client address of a request.
//
// Proxy headers are only consulted when the Resolver is told to trust them,
// because any client can send them. Trusted headers are read in the order
// given and X-Forwarded-For yields its first valid entry. RemoteAddr is the
// fallback. IPv4-mapped IPv6 addresses are unmapped.
//
//	res := clientip.New(clientip.DefaultHeaders...)
//	r.Use(res.Middleware)
//
//	ip := clientip.FromContext(r.Context())
package clientip
