// Package sanitizer normalizes user input before validation and persistence.
//
// The functions are plain string transforms and compose with Apply:
//
//	title := sanitizer.Apply(in.Title, strings.TrimSpace, sanitizer.SingleLine, sanitizer.StripHTML)
//	email := sanitizer.NormalizeEmail(in.Email)
package sanitizer
