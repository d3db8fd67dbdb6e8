package blog

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTime(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, readTime(0))
	assert.Equal(t, 1, readTime(1))
	assert.Equal(t, 1, readTime(225))
	assert.Equal(t, 2, readTime(226))
}

func TestCountWords(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, countWords("<p>Hello <b>big</b> world</p>"))
	assert.Equal(t, 0, countWords("   "))
}

func TestMakeExcerpt(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Short text", makeExcerpt("<p>Short\n text</p>"))

	long := makeExcerpt(strings.Repeat("x", 250))
	assert.Equal(t, strings.Repeat("x", 200)+"...", long)
}

func TestParseCategory(t *testing.T) {
	t.Parallel()

	c, ok := ParseCategory(" technology ")
	assert.True(t, ok)
	assert.Equal(t, CategoryTechnology, c)

	c, ok = ParseCategory("")
	assert.True(t, ok)
	assert.Equal(t, CategoryGeneral, c)

	_, ok = ParseCategory("Gardening")
	assert.False(t, ok)
}

func TestPrepare(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()

	first := &Blog{Title: "Crème Brûlée & Co.", Content: "one two three", Tags: []string{"Food", "food ", "DESSERT"}, Status: StatusPublished}
	require.NoError(t, prepare(ctx, store, first, true, true, false, now))
	assert.Equal(t, "creme-brulee-and-co", first.Slug)
	assert.Equal(t, []string{"food", "dessert"}, first.Tags)
	assert.Equal(t, 3, first.WordCount)
	assert.Equal(t, 1, first.ReadTime)
	assert.Equal(t, "one two three", first.Excerpt)
	require.NotNil(t, first.PublishedAt)
	assert.Equal(t, now, *first.PublishedAt)
	require.NoError(t, store.Create(ctx, first))

	second := &Blog{Title: "Creme brulee and co", Content: "body", Excerpt: "Custom", Status: StatusDraft}
	require.NoError(t, prepare(ctx, store, second, true, true, true, now))
	assert.Equal(t, "creme-brulee-and-co-1772366400", second.Slug)
	assert.Equal(t, "Custom", second.Excerpt)
	assert.Nil(t, second.PublishedAt)

	// The blog's own slug does not count as taken.
	require.NoError(t, prepare(ctx, store, first, true, false, false, now.Add(time.Hour)))
	assert.Equal(t, "creme-brulee-and-co", first.Slug)
	assert.Equal(t, now, *first.PublishedAt, "publishedAt is kept")
}
