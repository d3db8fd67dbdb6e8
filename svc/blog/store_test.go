package blog_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	mongox "github.com/dmitrymomot/blogify/pkg/mongo"
	"github.com/dmitrymomot/blogify/pkg/pagination"
	"github.com/dmitrymomot/blogify/svc/blog"
)

func storeFactories(t *testing.T) map[string]func(t *testing.T) blog.Store {
	t.Helper()

	factories := map[string]func(t *testing.T) blog.Store{
		"memory": func(*testing.T) blog.Store { return blog.NewMemoryStore() },
	}

	url := os.Getenv("MONGODB_TEST_URL")
	if url == "" {
		return factories
	}
	factories["mongo"] = func(t *testing.T) blog.Store {
		ctx := context.Background()
		db, err := mongox.ConnectDatabase(ctx, mongox.Config{
			ConnectionURL:  url,
			Database:       "blogify_test_" + bson.NewObjectID().Hex(),
			ConnectTimeout: 5 * time.Second,
			RetryAttempts:  1,
		})
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = db.Drop(context.Background())
			_ = db.Client().Disconnect(context.Background())
		})

		s := blog.NewMongoStore(db)
		require.NoError(t, s.EnsureIndexes(ctx))
		return s
	}
	return factories
}

func newBlog(slug string, status blog.Status, category blog.Category, tags ...string) *blog.Blog {
	now := time.Now().UTC().Truncate(time.Millisecond)
	b := &blog.Blog{
		Title:     slug,
		Slug:      slug,
		Content:   "content of " + slug,
		Category:  category,
		Tags:      append([]string{}, tags...),
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if status == blog.StatusPublished {
		b.PublishedAt = &now
	}
	return b
}

func TestStore(t *testing.T) {
	t.Parallel()

	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			t.Run("slugs", func(t *testing.T) {
				s := factory(t)
				b := newBlog("same-slug", blog.StatusDraft, blog.CategoryGeneral)
				require.NoError(t, s.Create(ctx, b))
				assert.ErrorIs(t, s.Create(ctx, newBlog("same-slug", blog.StatusDraft, blog.CategoryGeneral)), blog.ErrDuplicateSlug)

				taken, err := s.SlugExists(ctx, "same-slug", bson.NewObjectID())
				require.NoError(t, err)
				assert.True(t, taken)
				taken, err = s.SlugExists(ctx, "same-slug", b.ID)
				require.NoError(t, err)
				assert.False(t, taken)

				got, err := s.FindBySlug(ctx, "same-slug")
				require.NoError(t, err)
				assert.Equal(t, b.ID, got.ID)
				_, err = s.FindBySlug(ctx, "other")
				assert.ErrorIs(t, err, blog.ErrNotFound)
			})

			t.Run("save appends history", func(t *testing.T) {
				s := factory(t)
				b := newBlog("editable", blog.StatusDraft, blog.CategoryGeneral)
				require.NoError(t, s.Create(ctx, b))

				edit := &blog.Edit{Title: b.Title, Content: b.Content, EditedBy: bson.NewObjectID(), EditedAt: time.Now().UTC()}
				b.Title, b.Slug, b.Status = "renamed", "renamed", blog.StatusPublished
				require.NoError(t, s.Save(ctx, b, edit))
				require.NoError(t, s.Save(ctx, b, nil))

				got, err := s.FindByID(ctx, b.ID)
				require.NoError(t, err)
				assert.Equal(t, "renamed", got.Slug)
				assert.Equal(t, blog.StatusPublished, got.Status)
				require.Len(t, got.EditHistory, 1)
				assert.Equal(t, "editable", got.EditHistory[0].Title)

				assert.ErrorIs(t, s.Save(ctx, &blog.Blog{ID: bson.NewObjectID(), Slug: "ghost"}, nil), blog.ErrNotFound)
			})

			t.Run("likes toggle under contention", func(t *testing.T) {
				s := factory(t)
				b := newBlog("liked", blog.StatusPublished, blog.CategoryGeneral)
				require.NoError(t, s.Create(ctx, b))

				users := make([]bson.ObjectID, 8)
				for i := range users {
					users[i] = bson.NewObjectID()
				}
				var wg sync.WaitGroup
				for _, u := range users {
					wg.Add(1)
					go func() {
						defer wg.Done()
						_, err := s.ToggleLike(ctx, b.ID, u)
						assert.NoError(t, err)
					}()
				}
				wg.Wait()

				got, err := s.FindByID(ctx, b.ID)
				require.NoError(t, err)
				assert.Equal(t, 8, got.LikeCount)
				assert.Len(t, got.Likes, 8)

				got, err = s.ToggleLike(ctx, b.ID, users[0])
				require.NoError(t, err)
				assert.Equal(t, 7, got.LikeCount)
				assert.False(t, got.LikedBy(users[0]))

				_, err = s.ToggleLike(ctx, bson.NewObjectID(), users[0])
				assert.ErrorIs(t, err, blog.ErrNotFound)
			})

			t.Run("counters", func(t *testing.T) {
				s := factory(t)
				b := newBlog("counted", blog.StatusPublished, blog.CategoryGeneral)
				require.NoError(t, s.Create(ctx, b))

				got, err := s.IncCounter(ctx, b.ID, blog.CounterShares, 2)
				require.NoError(t, err)
				assert.Equal(t, 2, got.Shares)
				got, err = s.IncCounter(ctx, b.ID, blog.CounterBookmarks, -1)
				require.NoError(t, err)
				assert.Zero(t, got.BookmarkCount)

				_, err = s.RecordView(ctx, b.ID, true)
				require.NoError(t, err)
				got, err = s.RecordView(ctx, b.ID, false)
				require.NoError(t, err)
				assert.Equal(t, blog.Views{Total: 2, Unique: 1}, got.Views)

				got, err = s.SetFeatured(ctx, b.ID, true)
				require.NoError(t, err)
				assert.True(t, got.IsFeatured)

				_, err = s.IncCounter(ctx, bson.NewObjectID(), blog.CounterShares, 1)
				assert.ErrorIs(t, err, blog.ErrNotFound)
			})

			t.Run("queries", func(t *testing.T) {
				s := factory(t)
				author := bson.NewObjectID()
				goPost := newBlog("go-generics", blog.StatusPublished, blog.CategoryTechnology, "go")
				goPost.Author = author
				goPost.Content = "Generics arrived in Go with type parameters"
				rustPost := newBlog("rust-ownership", blog.StatusPublished, blog.CategoryTechnology, "rust")
				travel := newBlog("lisbon-trip", blog.StatusPublished, blog.CategoryTravel, "go")
				draft := newBlog("draft-notes", blog.StatusDraft, blog.CategoryTechnology, "go")
				draft.Author = author
				for _, b := range []*blog.Blog{goPost, rustPost, travel, draft} {
					require.NoError(t, s.Create(ctx, b))
				}

				items, total, err := s.List(ctx, blog.Filter{Status: blog.StatusPublished, Category: blog.CategoryTechnology}, pagination.Params{})
				require.NoError(t, err)
				assert.EqualValues(t, 2, total)
				assert.Len(t, items, 2)

				items, _, err = s.List(ctx, blog.Filter{Author: author}, pagination.Params{})
				require.NoError(t, err)
				assert.Len(t, items, 2)

				items, _, err = s.List(ctx, blog.Filter{Status: blog.StatusPublished, Tag: "go"}, pagination.Params{})
				require.NoError(t, err)
				assert.Len(t, items, 2)

				items, _, err = s.List(ctx, blog.Filter{Query: "OWNER"}, pagination.Params{})
				require.NoError(t, err)
				require.Len(t, items, 1)
				assert.Equal(t, rustPost.ID, items[0].ID)

				items, _, err = s.List(ctx, blog.Filter{IDs: []bson.ObjectID{travel.ID, draft.ID}, Status: blog.StatusPublished}, pagination.Params{})
				require.NoError(t, err)
				require.Len(t, items, 1)
				assert.Equal(t, travel.ID, items[0].ID)

				related, err := s.Related(ctx, goPost, 10)
				require.NoError(t, err)
				ids := []bson.ObjectID{}
				for _, r := range related {
					ids = append(ids, r.ID)
				}
				assert.ElementsMatch(t, []bson.ObjectID{rustPost.ID, travel.ID}, ids)

				found, total, err := s.Search(ctx, "generics", pagination.Params{})
				require.NoError(t, err)
				assert.EqualValues(t, 1, total)
				require.Len(t, found, 1)
				assert.Equal(t, goPost.ID, found[0].ID)

				counts, err := s.CategoryCounts(ctx)
				require.NoError(t, err)
				assert.EqualValues(t, 2, counts[blog.CategoryTechnology])
				assert.EqualValues(t, 1, counts[blog.CategoryTravel])
			})
		})
	}
}
