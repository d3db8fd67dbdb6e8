package blog_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/blogify/svc/blog"
)

func TestRedisViewTracker(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	tracker := blog.NewRedisViewTracker(client)
	id := bson.NewObjectID()

	first, err := tracker.FirstView(ctx, id, "ip:203.0.113.7", time.Hour)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := tracker.FirstView(ctx, id, "ip:203.0.113.7", time.Hour)
	require.NoError(t, err)
	assert.False(t, again)

	other, err := tracker.FirstView(ctx, bson.NewObjectID(), "ip:203.0.113.7", time.Hour)
	require.NoError(t, err)
	assert.True(t, other, "windows are per blog")

	mr.FastForward(time.Hour + time.Second)
	expired, err := tracker.FirstView(ctx, id, "ip:203.0.113.7", time.Hour)
	require.NoError(t, err)
	assert.True(t, expired)
}

func TestMemoryViewTracker(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tracker := blog.NewMemoryViewTracker(2).WithClock(func() time.Time { return now })
	ctx := context.Background()
	id := bson.NewObjectID()

	first, _ := tracker.FirstView(ctx, id, "a", time.Hour)
	again, _ := tracker.FirstView(ctx, id, "a", time.Hour)
	assert.True(t, first)
	assert.False(t, again)

	now = now.Add(2 * time.Hour)
	expired, _ := tracker.FirstView(ctx, id, "a", time.Hour)
	assert.True(t, expired)
}
