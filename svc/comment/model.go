// Package comment implements threaded comments on blogs. Threads are one
// level deep: a reply to a reply is attached to the top-level comment.
package comment

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/blogify/pkg/pagination"
)

type Edit struct {
	PreviousText string    `bson:"previousText" json:"previousText"`
	EditedAt     time.Time `bson:"editedAt" json:"editedAt"`
}

type Comment struct {
	ID          bson.ObjectID   `bson:"_id" json:"id"`
	Blog        bson.ObjectID   `bson:"blog" json:"blog"`
	Author      bson.ObjectID   `bson:"user" json:"user"`
	Parent      *bson.ObjectID  `bson:"parentComment,omitempty" json:"parentComment,omitempty"`
	Text        string          `bson:"text" json:"text"`
	Likes       []bson.ObjectID `bson:"likes" json:"-"`
	LikeCount   int             `bson:"likeCount" json:"likeCount"`
	ReplyCount  int             `bson:"replyCount" json:"replyCount"`
	IsEdited    bool            `bson:"isEdited" json:"isEdited"`
	Hidden      bool            `bson:"hidden" json:"-"`
	EditHistory []Edit          `bson:"editHistory" json:"-"`
	CreatedAt   time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time       `bson:"updatedAt" json:"updatedAt"`
}

func (c *Comment) IsReply() bool { return c.Parent != nil }

func (c *Comment) LikedBy(id bson.ObjectID) bool {
	for _, l := range c.Likes {
		if l == id {
			return true
		}
	}
	return false
}

type Sort string

const (
	SortNewest    Sort = "newest"
	SortOldest    Sort = "oldest"
	SortMostLiked Sort = "mostLiked"
)

var (
	ErrNotFound = errors.New("comment: not found")
)

// Store persists comments. Hidden comments are excluded from listings.
type Store interface {
	Create(ctx context.Context, c *Comment) error
	FindByID(ctx context.Context, id bson.ObjectID) (*Comment, error)
	ListTopLevel(ctx context.Context, blog bson.ObjectID, order Sort, p pagination.Params) ([]Comment, int64, error)
	// ListReplies returns replies oldest first.
	ListReplies(ctx context.Context, parent bson.ObjectID, p pagination.Params) ([]Comment, int64, error)
	// UpdateText replaces the text, pushes edit and marks the comment edited.
	UpdateText(ctx context.Context, id bson.ObjectID, text string, edit Edit) (*Comment, error)
	ToggleLike(ctx context.Context, id, userID bson.ObjectID) (*Comment, error)
	// IncReplies skips a decrement that would go below zero.
	IncReplies(ctx context.Context, id bson.ObjectID, delta int) error
	SetHidden(ctx context.Context, id bson.ObjectID, hidden bool) (*Comment, error)
	// DeleteThread removes the comment and its replies and returns how many
	// comments were removed.
	DeleteThread(ctx context.Context, id bson.ObjectID) (int64, error)
}
