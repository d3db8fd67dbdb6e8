package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Option configures the slug generation behavior.
type Option func(*config)

type config struct {
	maxLength int
	separator string
	replace   map[string]string
}

// MaxLength caps the slug length in bytes. The cut happens on a word boundary
// unless the first word alone is too long.
func MaxLength(n int) Option {
	return func(c *config) { c.maxLength = n }
}

// Separator sets the separator. Default is "-".
func Separator(s string) Option {
	return func(c *config) {
		if s != "" {
			c.separator = s
		}
	}
}

// CustomReplace applies replacements before slugification, e.g. {"&": "and"}.
func CustomReplace(r map[string]string) Option {
	return func(c *config) { c.replace = r }
}

// Letters that do not decompose into base + combining mark under NFD.
var ligatures = strings.NewReplacer(
	"ß", "ss", "æ", "ae", "Æ", "ae", "œ", "oe", "Œ", "oe",
	"ø", "o", "Ø", "o", "ł", "l", "Ł", "l", "đ", "d", "Đ", "d",
)

// Make lower-cases s, strips diacritics and joins runs of ASCII letters and
// digits with the separator. Other characters act as word boundaries.
//
//	slug.Make("Crème Brûlée & Co.") // "creme-brulee-co"
func Make(s string, opts ...Option) string {
	cfg := &config{separator: "-"}
	for _, opt := range opts {
		opt(cfg)
	}

	for old, repl := range cfg.replace {
		s = strings.ReplaceAll(s, old, repl)
	}

	s = ligatures.Replace(s)
	s, _, _ = transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	s = strings.ToLower(s)

	words := strings.FieldsFunc(s, func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	})

	var b strings.Builder
	for _, w := range words {
		next := len(w)
		if b.Len() > 0 {
			next += len(cfg.separator)
		}
		if cfg.maxLength > 0 && b.Len()+next > cfg.maxLength {
			if b.Len() == 0 {
				b.WriteString(w[:cfg.maxLength])
			}
			break
		}
		if b.Len() > 0 {
			b.WriteString(cfg.separator)
		}
		b.WriteString(w)
	}
	return b.String()
}
