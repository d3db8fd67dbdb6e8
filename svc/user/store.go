package user

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/blogify/pkg/pagination"
)

var (
	ErrNotFound             = errors.New("user: not found")
	ErrDuplicateEmail       = errors.New("user: duplicate email")
	ErrDuplicateUsername    = errors.New("user: duplicate username")
	ErrRefreshTokenMismatch = errors.New("user: stored refresh token changed")
)

// ListFilter narrows admin listings. Zero values match everything.
type ListFilter struct {
	Status Status
	Role   Role
	Query  string // prefix match on username or email
}

// Store persists users. Every mutating method is a single atomic write on
// one record unless noted otherwise.
type Store interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id bson.ObjectID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByTokenHash(ctx context.Context, kind TokenKind, hash string) (*User, error)
	FindByIDs(ctx context.Context, ids []bson.ObjectID, p pagination.Params) ([]User, int64, error)
	List(ctx context.Context, f ListFilter, p pagination.Params) ([]User, int64, error)

	// SetToken stores the hash and expiry of an outstanding opaque token.
	SetToken(ctx context.Context, id bson.ObjectID, kind TokenKind, hash string, expiry time.Time) error
	// ConsumeToken matches the record holding hash, clears the token pair and
	// applies c in the same write. A second call with the same hash returns ErrNotFound.
	ConsumeToken(ctx context.Context, kind TokenKind, hash string, c Changes) (*User, error)
	// SwapRefreshToken replaces the stored refresh token hash only if it still
	// equals expected, otherwise ErrRefreshTokenMismatch. An empty next clears it.
	SwapRefreshToken(ctx context.Context, id bson.ObjectID, expected, next string, login *LoginChanges) error
	Update(ctx context.Context, id bson.ObjectID, c Changes) (*User, error)

	// Graph edges span two records and are written follower side first.
	Follow(ctx context.Context, follower, followee bson.ObjectID) error
	Unfollow(ctx context.Context, follower, followee bson.ObjectID) error
	// Block records the block and drops follow edges in both directions.
	Block(ctx context.Context, blocker, blocked bson.ObjectID) error
	Unblock(ctx context.Context, blocker, blocked bson.ObjectID) error

	// AddBookmark and RemoveBookmark report whether the set changed.
	AddBookmark(ctx context.Context, userID, blogID bson.ObjectID) (bool, error)
	RemoveBookmark(ctx context.Context, userID, blogID bson.ObjectID) (bool, error)
}
