package blog

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/blogify/pkg/pagination"
)

var (
	ErrNotFound      = errors.New("blog: not found")
	ErrDuplicateSlug = errors.New("blog: duplicate slug")
)

// Counter names a numeric field adjusted by IncCounter.
type Counter string

const (
	CounterBookmarks Counter = "bookmarkCount"
	CounterComments  Counter = "commentCount"
	CounterShares    Counter = "shares"
)

// Store persists blogs. Counters are updated atomically in place and never
// drop below zero.
type Store interface {
	Create(ctx context.Context, b *Blog) error
	FindByID(ctx context.Context, id bson.ObjectID) (*Blog, error)
	FindBySlug(ctx context.Context, slug string) (*Blog, error)
	// SlugExists ignores the blog with id exclude.
	SlugExists(ctx context.Context, slug string, exclude bson.ObjectID) (bool, error)
	List(ctx context.Context, f Filter, p pagination.Params) ([]Blog, int64, error)
	// Search matches published blogs by title, content and tags.
	Search(ctx context.Context, query string, p pagination.Params) ([]Blog, int64, error)
	// Related returns published blogs sharing the category or a tag with b.
	Related(ctx context.Context, b *Blog, limit int) ([]Blog, error)

	// Save writes the editable fields of b and appends edit to the history
	// when it is not nil.
	Save(ctx context.Context, b *Blog, edit *Edit) error
	ToggleLike(ctx context.Context, id, userID bson.ObjectID) (*Blog, error)
	IncCounter(ctx context.Context, id bson.ObjectID, c Counter, delta int) (*Blog, error)
	RecordView(ctx context.Context, id bson.ObjectID, unique bool) (*Blog, error)
	SetFeatured(ctx context.Context, id bson.ObjectID, featured bool) (*Blog, error)
	// CategoryCounts counts published blogs per category.
	CategoryCounts(ctx context.Context) (map[Category]int64, error)
}
