package comment

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/blogify/pkg/pagination"
)

// MemoryStore is an in-process Store for tests and local runs without MongoDB.
type MemoryStore struct {
	mu       sync.Mutex
	comments map[bson.ObjectID]*Comment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{comments: make(map[bson.ObjectID]*Comment)}
}

func clone(c *Comment) *Comment {
	out := *c
	out.Likes = slices.Clone(c.Likes)
	out.EditHistory = slices.Clone(c.EditHistory)
	if c.Parent != nil {
		p := *c.Parent
		out.Parent = &p
	}
	return &out
}

func (s *MemoryStore) Create(_ context.Context, c *Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID.IsZero() {
		c.ID = bson.NewObjectID()
	}
	if c.Likes == nil {
		c.Likes = []bson.ObjectID{}
	}
	if c.EditHistory == nil {
		c.EditHistory = []Edit{}
	}
	s.comments[c.ID] = clone(c)
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id bson.ObjectID) (*Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(c), nil
}

func compare(order Sort) func(a, b *Comment) int {
	switch order {
	case SortOldest:
		return func(a, b *Comment) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortMostLiked:
		return func(a, b *Comment) int {
			return cmp.Or(cmp.Compare(b.LikeCount, a.LikeCount), b.CreatedAt.Compare(a.CreatedAt))
		}
	default:
		return func(a, b *Comment) int { return b.CreatedAt.Compare(a.CreatedAt) }
	}
}

func (s *MemoryStore) page(match func(*Comment) bool, order Sort, p pagination.Params) ([]Comment, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []*Comment
	for _, c := range s.comments {
		if !c.Hidden && match(c) {
			all = append(all, c)
		}
	}
	slices.SortFunc(all, compare(order))

	start, end := p.Window(len(all))
	out := make([]Comment, 0, end-start)
	for _, c := range all[start:end] {
		out = append(out, *clone(c))
	}
	return out, int64(len(all))
}

func (s *MemoryStore) ListTopLevel(_ context.Context, blog bson.ObjectID, order Sort, p pagination.Params) ([]Comment, int64, error) {
	items, total := s.page(func(c *Comment) bool { return c.Blog == blog && c.Parent == nil }, order, p)
	return items, total, nil
}

func (s *MemoryStore) ListReplies(_ context.Context, parent bson.ObjectID, p pagination.Params) ([]Comment, int64, error) {
	items, total := s.page(func(c *Comment) bool { return c.Parent != nil && *c.Parent == parent }, SortOldest, p)
	return items, total, nil
}

func (s *MemoryStore) mutate(id bson.ObjectID, fn func(*Comment)) (*Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	fn(c)
	return clone(c), nil
}

func (s *MemoryStore) UpdateText(_ context.Context, id bson.ObjectID, text string, edit Edit) (*Comment, error) {
	return s.mutate(id, func(c *Comment) {
		c.Text = text
		c.IsEdited = true
		c.EditHistory = append(c.EditHistory, edit)
		c.UpdatedAt = edit.EditedAt
	})
}

func (s *MemoryStore) ToggleLike(_ context.Context, id, userID bson.ObjectID) (*Comment, error) {
	return s.mutate(id, func(c *Comment) {
		if i := slices.Index(c.Likes, userID); i >= 0 {
			c.Likes = slices.Delete(c.Likes, i, i+1)
		} else {
			c.Likes = append(c.Likes, userID)
		}
		c.LikeCount = len(c.Likes)
	})
}

func (s *MemoryStore) IncReplies(_ context.Context, id bson.ObjectID, delta int) error {
	_, err := s.mutate(id, func(c *Comment) {
		if c.ReplyCount+delta >= 0 {
			c.ReplyCount += delta
		}
	})
	return err
}

func (s *MemoryStore) SetHidden(_ context.Context, id bson.ObjectID, hidden bool) (*Comment, error) {
	return s.mutate(id, func(c *Comment) { c.Hidden = hidden })
}

func (s *MemoryStore) DeleteThread(_ context.Context, id bson.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.comments[id]; !ok {
		return 0, ErrNotFound
	}
	var n int64
	for cid, c := range s.comments {
		if cid == id || (c.Parent != nil && *c.Parent == id) {
			delete(s.comments, cid)
			n++
		}
	}
	return n, nil
}
