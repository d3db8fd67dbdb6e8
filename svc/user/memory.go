package user

import (
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
	users map[bson.ObjectID]*User
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[bson.ObjectID]*User), now: time.Now}
}

func clone(u *User) *User {
	c := *u
	c.Followers = slices.Clone(u.Followers)
	c.Following = slices.Clone(u.Following)
	c.Blocked = slices.Clone(u.Blocked)
	c.Bookmarks = slices.Clone(u.Bookmarks)
	c.Skills = slices.Clone(u.Skills)
	c.Interests = slices.Clone(u.Interests)
	if u.Avatar != nil {
		a := *u.Avatar
		c.Avatar = &a
	}
	return &c
}

func (s *MemoryStore) Create(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Email wins when both collide, whatever the map order.
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return ErrDuplicateEmail
		}
	}
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return ErrDuplicateUsername
		}
	}
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	s.users[u.ID] = clone(u)
	return nil
}

func (s *MemoryStore) find(match func(*User) bool) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			return clone(u), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) FindByID(_ context.Context, id bson.ObjectID) (*User, error) {
	return s.find(func(u *User) bool { return u.ID == id })
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*User, error) {
	return s.find(func(u *User) bool { return u.Email == email })
}

func (s *MemoryStore) FindByUsername(_ context.Context, username string) (*User, error) {
	return s.find(func(u *User) bool { return u.Username == username })
}

func (s *MemoryStore) FindByTokenHash(_ context.Context, kind TokenKind, hash string) (*User, error) {
	if hash == "" {
		return nil, ErrNotFound
	}
	return s.find(func(u *User) bool {
		h, _ := u.tokenFields(kind)
		return h == hash
	})
}

func (s *MemoryStore) page(match func(*User) bool, p pagination.Params) ([]User, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []*User
	for _, u := range s.users {
		if match(u) {
			all = append(all, u)
		}
	}
	slices.SortFunc(all, func(a, b *User) int { return b.CreatedAt.Compare(a.CreatedAt) })

	start, end := p.Window(len(all))
	out := make([]User, 0, end-start)
	for _, u := range all[start:end] {
		out = append(out, *clone(u))
	}
	return out, int64(len(all))
}

func (s *MemoryStore) FindByIDs(_ context.Context, ids []bson.ObjectID, p pagination.Params) ([]User, int64, error) {
	items, total := s.page(func(u *User) bool { return slices.Contains(ids, u.ID) }, p)
	return items, total, nil
}

func (s *MemoryStore) List(_ context.Context, f ListFilter, p pagination.Params) ([]User, int64, error) {
	q := strings.ToLower(f.Query)
	items, total := s.page(func(u *User) bool {
		return (f.Status == "" || u.Status == f.Status) &&
			(f.Role == "" || u.Role == f.Role) &&
			(q == "" || strings.HasPrefix(u.Username, q) || strings.HasPrefix(u.Email, q))
	}, p)
	return items, total, nil
}

func (s *MemoryStore) mutate(id bson.ObjectID, fn func(*User) error) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := fn(u); err != nil {
		return nil, err
	}
	return clone(u), nil
}

func (s *MemoryStore) SetToken(_ context.Context, id bson.ObjectID, kind TokenKind, hash string, expiry time.Time) error {
	_, err := s.mutate(id, func(u *User) error {
		u.setToken(kind, hash, &expiry)
		u.UpdatedAt = s.now()
		return nil
	})
	return err
}

func (s *MemoryStore) ConsumeToken(_ context.Context, kind TokenKind, hash string, c Changes) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if hash == "" {
		return nil, ErrNotFound
	}
	for _, u := range s.users {
		if h, _ := u.tokenFields(kind); h == hash {
			u.setToken(kind, "", nil)
			c.apply(u, s.now())
			return clone(u), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) SwapRefreshToken(_ context.Context, id bson.ObjectID, expected, next string, login *LoginChanges) error {
	_, err := s.mutate(id, func(u *User) error {
		if u.RefreshTokenHash != expected {
			return ErrRefreshTokenMismatch
		}
		u.RefreshTokenHash = next
		if login != nil {
			at := login.At
			u.LastLogin = &at
			u.LastActive = &at
			u.LoginCount++
			if login.Reactivate {
				u.Status = StatusActive
				u.DeactivatedAt = nil
			}
		}
		u.UpdatedAt = s.now()
		return nil
	})
	return err
}

func (s *MemoryStore) Update(_ context.Context, id bson.ObjectID, c Changes) (*User, error) {
	return s.mutate(id, func(u *User) error {
		c.apply(u, s.now())
		return nil
	})
}

// edge applies fn to both records, or neither when one is missing.
func (s *MemoryStore) edge(a, b bson.ObjectID, fn func(a, b *User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ua, okA := s.users[a]
	ub, okB := s.users[b]
	if !okA || !okB {
		return ErrNotFound
	}
	fn(ua, ub)
	now := s.now()
	ua.UpdatedAt, ub.UpdatedAt = now, now
	return nil
}

func addID(ids []bson.ObjectID, id bson.ObjectID) []bson.ObjectID {
	if slices.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}

func (s *MemoryStore) Follow(_ context.Context, follower, followee bson.ObjectID) error {
	return s.edge(follower, followee, func(a, b *User) {
		a.Following = addID(a.Following, b.ID)
		b.Followers = addID(b.Followers, a.ID)
	})
}

func (s *MemoryStore) Unfollow(_ context.Context, follower, followee bson.ObjectID) error {
	return s.edge(follower, followee, func(a, b *User) {
		a.Following = removeID(a.Following, b.ID)
		b.Followers = removeID(b.Followers, a.ID)
	})
}

func (s *MemoryStore) Block(_ context.Context, blocker, blocked bson.ObjectID) error {
	return s.edge(blocker, blocked, func(a, b *User) {
		a.Blocked = addID(a.Blocked, b.ID)
		a.Following = removeID(a.Following, b.ID)
		a.Followers = removeID(a.Followers, b.ID)
		b.Following = removeID(b.Following, a.ID)
		b.Followers = removeID(b.Followers, a.ID)
	})
}

func (s *MemoryStore) Unblock(_ context.Context, blocker, blocked bson.ObjectID) error {
	return s.edge(blocker, blocked, func(a, b *User) {
		a.Blocked = removeID(a.Blocked, b.ID)
	})
}

func (s *MemoryStore) AddBookmark(_ context.Context, userID, blogID bson.ObjectID) (bool, error) {
	var added bool
	_, err := s.mutate(userID, func(u *User) error {
		if !u.HasBookmarked(blogID) {
			u.Bookmarks = append(u.Bookmarks, blogID)
			added = true
		}
		return nil
	})
	return added, err
}

func (s *MemoryStore) RemoveBookmark(_ context.Context, userID, blogID bson.ObjectID) (bool, error) {
	var removed bool
	_, err := s.mutate(userID, func(u *User) error {
		if u.HasBookmarked(blogID) {
			u.Bookmarks = removeID(u.Bookmarks, blogID)
			removed = true
		}
		return nil
	})
	return removed, err
}
