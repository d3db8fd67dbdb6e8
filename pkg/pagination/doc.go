// Package pagination normalizes page/limit query parameters and shapes
// paged results. Limits default to DefaultLimit and are capped at MaxLimit.
package pagination
