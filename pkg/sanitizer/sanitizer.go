package sanitizer

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	dotRegex            = regexp.MustCompile(`\.+`)
	whitespaceRegex     = regexp.MustCompile(`\s+`)
	htmlTagRegex        = regexp.MustCompile(`<[^>]*>`)
	unsafeFilenameRegex = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
)

// Apply runs transforms on value in order.
func Apply[T any](value T, transforms ...func(T) T) T {
	for _, fn := range transforms {
		value = fn(value)
	}
	return value
}

// NormalizeEmail trims, lower-cases and collapses repeated dots in the local part.
func NormalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))

	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return email
	}
	local = strings.Trim(dotRegex.ReplaceAllString(local, "."), ".")
	return local + "@" + domain
}

// NormalizeUsername trims and lower-cases; usernames are case-insensitive.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// SingleLine collapses every whitespace run, including newlines, into one space.
func SingleLine(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// StripHTML removes tags and unescapes entities.
func StripHTML(s string) string {
	return html.UnescapeString(htmlTagRegex.ReplaceAllString(s, " "))
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// Tags lower-cases, trims and deduplicates tags, dropping empty values and
// values longer than maxLen runes. Order of first occurrence is kept.
func Tags(tags []string, maxLen int) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(SingleLine(t))
		if t == "" || (maxLen > 0 && utf8.RuneCountInString(t) > maxLen) {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// SanitizeFilename replaces filesystem-unsafe characters and never returns an empty name.
func SanitizeFilename(filename string) string {
	safe := strings.Trim(unsafeFilenameRegex.ReplaceAllString(filename, "_"), " .")
	safe = Truncate(safe, 255)
	if safe == "" {
		return "file"
	}
	return safe
}
