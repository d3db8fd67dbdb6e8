package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"slices"
	"strings"

	"github.com/dmitrymomot/blogify/pkg/clientip"
)

// stableHeaders are present on most browser requests and rarely change
// between requests of the same client.
var stableHeaders = []string{
	"user-agent", "accept", "accept-language", "accept-encoding",
	"connection", "upgrade-insecure-requests", "sec-fetch-dest",
	"sec-fetch-mode", "sec-fetch-site", "cache-control",
}

// Generate returns a 32 character hex key for the client. The address is
// taken from the clientip middleware when it ran, from RemoteAddr otherwise.
// Returns "" when the request carries nothing to identify it by.
func Generate(r *http.Request) string {
	ip := clientip.FromContext(r.Context())
	if ip == "" {
		ip = clientip.New().IP(r)
	}

	parts := make([]string, 0, 6)
	for _, p := range []string{
		r.UserAgent(),
		r.Header.Get("Accept-Language"),
		r.Header.Get("Accept-Encoding"),
		r.Header.Get("Accept"),
		ip,
		headerSet(r.Header),
	} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return ""
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:16])
}

// headerSet lists which stable headers are present, sorted.
func headerSet(h http.Header) string {
	var names []string
	for name := range h {
		if n := strings.ToLower(name); slices.Contains(stableHeaders, n) {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	return strings.Join(names, ",")
}
