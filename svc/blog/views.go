package blog

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/blogify/pkg/cache"
)

// ViewTracker de-duplicates views per viewer within a window.
type ViewTracker interface {
	// FirstView reports whether viewer has not seen blog within the window
	// and records the view.
	FirstView(ctx context.Context, blog bson.ObjectID, viewer string, window time.Duration) (bool, error)
}

// RedisViewTracker keeps one expiring key per blog and viewer.
type RedisViewTracker struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisViewTracker(client redis.UniversalClient) *RedisViewTracker {
	return &RedisViewTracker{client: client, prefix: "blog:view:"}
}

func (t *RedisViewTracker) FirstView(ctx context.Context, blog bson.ObjectID, viewer string, window time.Duration) (bool, error) {
	return t.client.SetNX(ctx, t.prefix+blog.Hex()+":"+viewer, 1, window).Result()
}

// MemoryViewTracker is the single-process fallback. Old entries are evicted
// when capacity is reached, so a view may be counted as unique again early.
type MemoryViewTracker struct {
	seen *cache.LRU[string, struct{}]
}

const defaultViewCapacity = 100_000

func NewMemoryViewTracker(capacity int) *MemoryViewTracker {
	if capacity <= 0 {
		capacity = defaultViewCapacity
	}
	return &MemoryViewTracker{seen: cache.NewLRU[string, struct{}](capacity)}
}

// WithClock replaces the expiry clock. Used in tests.
func (t *MemoryViewTracker) WithClock(now func() time.Time) *MemoryViewTracker {
	t.seen.WithClock(now)
	return t
}

func (t *MemoryViewTracker) FirstView(_ context.Context, blog bson.ObjectID, viewer string, window time.Duration) (bool, error) {
	return t.seen.SetIfAbsent(blog.Hex()+":"+viewer, struct{}{}, window), nil
}
