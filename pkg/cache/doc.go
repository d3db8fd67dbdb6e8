// Package cache provides a bounded, thread-safe in-process LRU cache with
// per-entry expiry.
//
// It backs the in-memory fallbacks used when Redis is not configured, such as
// blog view de-duplication:
//
//	seen := cache.NewLRU[string, struct{}](10_000)
//	if seen.SetIfAbsent(key, struct{}{}, time.Hour) {
//		// first view in the window
//	}
//
// Expired entries are dropped lazily on access. NewLRU panics on a
// non-positive capacity.
package cache
