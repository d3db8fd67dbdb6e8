package blog

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/blogify/pkg/pagination"
)

// MemoryStore is an in-process Store for tests and local runs without MongoDB.
type MemoryStore struct {
	mu    sync.Mutex
	blogs map[bson.ObjectID]*Blog
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blogs: make(map[bson.ObjectID]*Blog)}
}

func clone(b *Blog) *Blog {
	c := *b
	c.Tags = slices.Clone(b.Tags)
	c.Likes = slices.Clone(b.Likes)
	c.EditHistory = slices.Clone(b.EditHistory)
	if b.CoverImage != nil {
		img := *b.CoverImage
		c.CoverImage = &img
	}
	if b.PublishedAt != nil {
		t := *b.PublishedAt
		c.PublishedAt = &t
	}
	return &c
}

func (s *MemoryStore) Create(_ context.Context, b *Blog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.blogs {
		if existing.Slug == b.Slug {
			return ErrDuplicateSlug
		}
	}
	if b.ID.IsZero() {
		b.ID = bson.NewObjectID()
	}
	if b.Likes == nil {
		b.Likes = []bson.ObjectID{}
	}
	if b.EditHistory == nil {
		b.EditHistory = []Edit{}
	}
	s.blogs[b.ID] = clone(b)
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id bson.ObjectID) (*Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.blogs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(b), nil
}

func (s *MemoryStore) FindBySlug(_ context.Context, slug string) (*Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.blogs {
		if b.Slug == slug {
			return clone(b), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) SlugExists(_ context.Context, slug string, exclude bson.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.blogs {
		if b.Slug == slug && b.ID != exclude {
			return true, nil
		}
	}
	return false, nil
}

func publishedTime(b *Blog) time.Time {
	if b.PublishedAt != nil {
		return *b.PublishedAt
	}
	return time.Time{}
}

func compareBlogs(order Sort) func(a, b *Blog) int {
	switch order {
	case SortOldest:
		return func(a, b *Blog) int {
			return cmp.Or(publishedTime(a).Compare(publishedTime(b)), a.CreatedAt.Compare(b.CreatedAt))
		}
	case SortPopular:
		return func(a, b *Blog) int {
			return cmp.Or(
				cmp.Compare(b.LikeCount, a.LikeCount),
				cmp.Compare(b.CommentCount, a.CommentCount),
				cmp.Compare(b.Views.Total, a.Views.Total),
				b.CreatedAt.Compare(a.CreatedAt),
			)
		}
	default:
		return func(a, b *Blog) int {
			return cmp.Or(publishedTime(b).Compare(publishedTime(a)), b.CreatedAt.Compare(a.CreatedAt))
		}
	}
}

func (f Filter) match(b *Blog) bool {
	switch {
	case f.Status != "" && b.Status != f.Status:
		return false
	case f.Category != "" && b.Category != f.Category:
		return false
	case f.Tag != "" && !slices.Contains(b.Tags, strings.ToLower(f.Tag)):
		return false
	case !f.Author.IsZero() && b.Author != f.Author:
		return false
	case f.Query != "" && !strings.Contains(strings.ToLower(b.Title), strings.ToLower(f.Query)):
		return false
	case f.IDs != nil && !slices.Contains(f.IDs, b.ID):
		return false
	case !f.Since.IsZero() && publishedTime(b).Before(f.Since):
		return false
	case f.Featured && !b.IsFeatured:
		return false
	}
	return true
}

func (s *MemoryStore) page(match func(*Blog) bool, order Sort, p pagination.Params) ([]Blog, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []*Blog
	for _, b := range s.blogs {
		if match(b) {
			all = append(all, b)
		}
	}
	slices.SortFunc(all, compareBlogs(order))

	start, end := p.Window(len(all))
	out := make([]Blog, 0, end-start)
	for _, b := range all[start:end] {
		out = append(out, *clone(b))
	}
	return out, int64(len(all))
}

func (s *MemoryStore) List(_ context.Context, f Filter, p pagination.Params) ([]Blog, int64, error) {
	items, total := s.page(f.match, f.Sort, p)
	return items, total, nil
}

// Search requires every query word to appear in the title, content or tags.
func (s *MemoryStore) Search(_ context.Context, query string, p pagination.Params) ([]Blog, int64, error) {
	words := strings.Fields(strings.ToLower(query))
	items, total := s.page(func(b *Blog) bool {
		if b.Status != StatusPublished || len(words) == 0 {
			return false
		}
		text := strings.ToLower(b.Title + " " + b.Content + " " + strings.Join(b.Tags, " "))
		for _, w := range words {
			if !strings.Contains(text, w) {
				return false
			}
		}
		return true
	}, SortNewest, p)
	return items, total, nil
}

func (s *MemoryStore) Related(_ context.Context, target *Blog, limit int) ([]Blog, error) {
	items, _ := s.page(func(b *Blog) bool {
		if b.ID == target.ID || b.Status != StatusPublished {
			return false
		}
		if b.Category == target.Category {
			return true
		}
		return slices.ContainsFunc(b.Tags, func(t string) bool { return slices.Contains(target.Tags, t) })
	}, SortNewest, pagination.Params{Page: 1, Limit: limit})
	return items, nil
}

func (s *MemoryStore) mutate(id bson.ObjectID, fn func(*Blog)) (*Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.blogs[id]
	if !ok {
		return nil, ErrNotFound
	}
	fn(b)
	return clone(b), nil
}

func (s *MemoryStore) Save(_ context.Context, b *Blog, edit *Edit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.blogs[b.ID]
	if !ok {
		return ErrNotFound
	}
	for _, other := range s.blogs {
		if other.ID != b.ID && other.Slug == b.Slug {
			return ErrDuplicateSlug
		}
	}
	next := clone(b)
	stored.Title, stored.Slug, stored.Content, stored.Excerpt = next.Title, next.Slug, next.Content, next.Excerpt
	stored.Category, stored.Tags, stored.CoverImage = next.Category, next.Tags, next.CoverImage
	stored.Status, stored.PublishedAt = next.Status, next.PublishedAt
	stored.ReadTime, stored.WordCount, stored.UpdatedAt = next.ReadTime, next.WordCount, next.UpdatedAt
	if edit != nil {
		stored.EditHistory = append(stored.EditHistory, *edit)
	}
	return nil
}

func (s *MemoryStore) ToggleLike(_ context.Context, id, userID bson.ObjectID) (*Blog, error) {
	return s.mutate(id, func(b *Blog) {
		if i := slices.Index(b.Likes, userID); i >= 0 {
			b.Likes = slices.Delete(b.Likes, i, i+1)
		} else {
			b.Likes = append(b.Likes, userID)
		}
		b.LikeCount = len(b.Likes)
	})
}

func (s *MemoryStore) IncCounter(_ context.Context, id bson.ObjectID, c Counter, delta int) (*Blog, error) {
	return s.mutate(id, func(b *Blog) {
		var field *int
		switch c {
		case CounterBookmarks:
			field = &b.BookmarkCount
		case CounterComments:
			field = &b.CommentCount
		case CounterShares:
			field = &b.Shares
		default:
			return
		}
		*field = max(0, *field+delta)
	})
}

func (s *MemoryStore) RecordView(_ context.Context, id bson.ObjectID, unique bool) (*Blog, error) {
	return s.mutate(id, func(b *Blog) {
		b.Views.Total++
		if unique {
			b.Views.Unique++
		}
	})
}

func (s *MemoryStore) SetFeatured(_ context.Context, id bson.ObjectID, featured bool) (*Blog, error) {
	return s.mutate(id, func(b *Blog) { b.IsFeatured = featured })
}

func (s *MemoryStore) CategoryCounts(context.Context) (map[Category]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[Category]int64)
	for _, b := range s.blogs {
		if b.Status == StatusPublished {
			counts[b.Category]++
		}
	}
	return counts, nil
}
