// Package fingerprint derives a stable device key from request headers.
// It separates anonymous readers that share one address when counting
// blog views.
package fingerprint
