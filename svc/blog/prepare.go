package blog

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrymomot/blogify/pkg/sanitizer"
	"github.com/dmitrymomot/blogify/pkg/slug"
)

const (
	wordsPerMinute = 225
	excerptLength  = 200
	maxTagLength   = 30
	maxSlugLength  = 120
)

// countWords counts whitespace separated words of the text without markup.
func countWords(content string) int {
	return len(strings.Fields(sanitizer.StripHTML(content)))
}

func readTime(words int) int {
	return (words + wordsPerMinute - 1) / wordsPerMinute
}

// makeExcerpt returns the first 200 characters of the plain text, with an
// ellipsis when the text was cut.
func makeExcerpt(content string) string {
	plain := sanitizer.SingleLine(sanitizer.StripHTML(content))
	if utf8.RuneCountInString(plain) <= excerptLength {
		return plain
	}
	return sanitizer.Truncate(plain, excerptLength) + "..."
}

// deriveContent refreshes the fields computed from the body. A custom
// excerpt is kept.
func deriveContent(b *Blog, customExcerpt bool) {
	b.WordCount = countWords(b.Content)
	b.ReadTime = readTime(b.WordCount)
	if !customExcerpt {
		b.Excerpt = makeExcerpt(b.Content)
	}
}

// markPublished sets publishedAt on the first publish only.
func markPublished(b *Blog, now time.Time) {
	if b.Status == StatusPublished && b.PublishedAt == nil {
		b.PublishedAt = &now
	}
}

// uniqueSlug slugifies the title and appends the unix time when another blog
// holds the slug already.
func uniqueSlug(ctx context.Context, store Store, b *Blog, now time.Time) (string, error) {
	s := slug.Make(b.Title, slug.MaxLength(maxSlugLength), slug.CustomReplace(map[string]string{"&": "and"}))
	if s == "" {
		s = "post"
	}
	taken, err := store.SlugExists(ctx, s, b.ID)
	if err != nil {
		return "", fmt.Errorf("check slug: %w", err)
	}
	if taken {
		s = fmt.Sprintf("%s-%d", s, now.Unix())
	}
	return s, nil
}

// prepare runs every derivation before the single persistence call.
// titleChanged and contentChanged select which derivations run on updates.
func prepare(ctx context.Context, store Store, b *Blog, titleChanged, contentChanged, customExcerpt bool, now time.Time) error {
	if titleChanged {
		s, err := uniqueSlug(ctx, store, b, now)
		if err != nil {
			return err
		}
		b.Slug = s
	}
	if contentChanged {
		deriveContent(b, customExcerpt)
	}
	b.Tags = sanitizer.Tags(b.Tags, maxTagLength)
	markPublished(b, now)
	b.UpdatedAt = now
	return nil
}
