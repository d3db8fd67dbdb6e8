package comment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/blogify/pkg/logger"
	"github.com/dmitrymomot/blogify/pkg/pagination"
	"github.com/dmitrymomot/blogify/svc/user"
)

// Blogs is the part of the blog service comments depend on.
type Blogs interface {
	// CommentTarget returns the author of a published blog.
	CommentTarget(ctx context.Context, blog bson.ObjectID) (bson.ObjectID, error)
	// BlogAuthor returns the author of a blog in any status.
	BlogAuthor(ctx context.Context, blog bson.ObjectID) (bson.ObjectID, error)
	AdjustCommentCount(ctx context.Context, blog bson.ObjectID, delta int) error
}

type Service struct {
	store Store
	blogs Blogs
	users user.Store
	log   *slog.Logger
	now   func() time.Time
}

type Option func(*Service)

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(store Store, blogs Blogs, users user.Store, opts ...Option) *Service {
	s := &Service{store: store, blogs: blogs, users: users, log: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("comment"))
	return s
}

func notFound(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrCommentNotFound.Wrap(err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

type CreateInput struct {
	Text     string `json:"text" validate:"required,min=1,max=1000"`
	ParentID string `json:"parentId" validate:"omitempty,mongodb"`
}

func (in *CreateInput) Sanitize() {
	in.Text = strings.TrimSpace(in.Text)
	in.ParentID = strings.TrimSpace(in.ParentID)
}

type UpdateInput struct {
	Text string `json:"text" validate:"required,min=1,max=1000"`
}

func (in *UpdateInput) Sanitize() { in.Text = strings.TrimSpace(in.Text) }

// Create adds a comment to a published blog. A reply to a reply is attached
// to the top-level comment of the thread.
func (s *Service) Create(ctx context.Context, author, blog bson.ObjectID, in CreateInput) (*Comment, error) {
	if _, err := s.blogs.CommentTarget(ctx, blog); err != nil {
		return nil, err
	}

	now := s.now()
	c := &Comment{
		ID:          bson.NewObjectID(),
		Blog:        blog,
		Author:      author,
		Text:        in.Text,
		Likes:       []bson.ObjectID{},
		EditHistory: []Edit{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if in.ParentID != "" {
		parentID, err := bson.ObjectIDFromHex(in.ParentID)
		if err != nil {
			return nil, ErrCommentNotFound
		}
		parent, err := s.store.FindByID(ctx, parentID)
		if err != nil {
			return nil, notFound("find parent", err)
		}
		if parent.Blog != blog {
			return nil, ErrParentMismatch
		}
		root := parent.ID
		if parent.Parent != nil {
			root = *parent.Parent
		}
		c.Parent = &root
	}

	if err := s.store.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	if c.Parent != nil {
		if err := s.store.IncReplies(ctx, *c.Parent, 1); err != nil {
			s.log.WarnContext(ctx, "failed to count reply", logger.CommentID(c.Parent.Hex()), logger.Error(err))
		}
	}
	if err := s.blogs.AdjustCommentCount(ctx, blog, 1); err != nil {
		s.log.WarnContext(ctx, "failed to count comment", logger.BlogID(blog.Hex()), logger.Error(err))
	}
	return c, nil
}

type ListQuery struct {
	Page  int    `query:"page"`
	Limit int    `query:"limit"`
	Sort  string `query:"sort"`
}

func (q ListQuery) Params() pagination.Params {
	return pagination.Params{Page: q.Page, Limit: q.Limit}.Normalize()
}

func (q ListQuery) order() (Sort, error) {
	switch Sort(strings.TrimSpace(q.Sort)) {
	case "", SortNewest:
		return SortNewest, nil
	case SortOldest:
		return SortOldest, nil
	case SortMostLiked:
		return SortMostLiked, nil
	}
	return "", ErrInvalidSort
}

// List returns top-level comments of a published blog with their reply counts.
func (s *Service) List(ctx context.Context, blog bson.ObjectID, q ListQuery) (pagination.Result[Comment], error) {
	order, err := q.order()
	if err != nil {
		return pagination.Result[Comment]{}, err
	}
	if _, err := s.blogs.CommentTarget(ctx, blog); err != nil {
		return pagination.Result[Comment]{}, err
	}
	p := q.Params()
	items, total, err := s.store.ListTopLevel(ctx, blog, order, p)
	if err != nil {
		return pagination.Result[Comment]{}, fmt.Errorf("list comments: %w", err)
	}
	return pagination.NewResult(items, total, p), nil
}

// Replies lists the direct replies of a comment on blog, oldest first.
func (s *Service) Replies(ctx context.Context, blog, id bson.ObjectID, p pagination.Params) (pagination.Result[Comment], error) {
	c, err := s.findOnBlog(ctx, blog, id)
	if err != nil {
		return pagination.Result[Comment]{}, err
	}
	if c.Hidden {
		return pagination.Result[Comment]{}, ErrCommentNotFound
	}
	items, total, err := s.store.ListReplies(ctx, id, p)
	if err != nil {
		return pagination.Result[Comment]{}, fmt.Errorf("list replies: %w", err)
	}
	return pagination.NewResult(items, total, p), nil
}

// Update edits the text. Only the owner may edit; the previous text goes to
// the edit history.
func (s *Service) Update(ctx context.Context, actor, id bson.ObjectID, in UpdateInput) (*Comment, error) {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("find comment", err)
	}
	if c.Author != actor {
		return nil, ErrNotOwner
	}
	if c.Text == in.Text {
		return c, nil
	}
	c, err = s.store.UpdateText(ctx, id, in.Text, Edit{PreviousText: c.Text, EditedAt: s.now()})
	if err != nil {
		return nil, notFound("update comment", err)
	}
	return c, nil
}

// History returns the edit history of a comment on blog, oldest first.
func (s *Service) History(ctx context.Context, blog, id bson.ObjectID) ([]Edit, error) {
	c, err := s.findOnBlog(ctx, blog, id)
	if err != nil {
		return nil, err
	}
	return c.EditHistory, nil
}

// findOnBlog loads a comment and treats one that belongs to another blog as missing.
func (s *Service) findOnBlog(ctx context.Context, blog, id bson.ObjectID) (*Comment, error) {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("find comment", err)
	}
	if c.Blog != blog {
		return nil, ErrCommentNotFound
	}
	return c, nil
}

// Delete removes the comment and its replies. The owner, the blog author
// and admins may delete.
func (s *Service) Delete(ctx context.Context, actor, id bson.ObjectID) error {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		return notFound("find comment", err)
	}
	if err := s.canDelete(ctx, actor, c); err != nil {
		return err
	}

	n, err := s.store.DeleteThread(ctx, id)
	if err != nil {
		return notFound("delete comment", err)
	}
	if c.Parent != nil {
		if err := s.store.IncReplies(ctx, *c.Parent, -1); err != nil && !errors.Is(err, ErrNotFound) {
			s.log.WarnContext(ctx, "failed to uncount reply", logger.CommentID(c.Parent.Hex()), logger.Error(err))
		}
	}
	if err := s.blogs.AdjustCommentCount(ctx, c.Blog, -int(n)); err != nil {
		s.log.WarnContext(ctx, "failed to uncount comments", logger.BlogID(c.Blog.Hex()), logger.Error(err))
	}
	s.log.InfoContext(ctx, "comment deleted",
		logger.CommentID(id.Hex()),
		logger.UserID(actor.Hex()),
		slog.Int64("removed", n),
	)
	return nil
}

func (s *Service) canDelete(ctx context.Context, actor bson.ObjectID, c *Comment) error {
	if c.Author == actor {
		return nil
	}
	author, err := s.blogs.BlogAuthor(ctx, c.Blog)
	if err == nil && author == actor {
		return nil
	}
	u, err := s.users.FindByID(ctx, actor)
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		return fmt.Errorf("load actor: %w", err)
	}
	if u != nil && u.Role == user.RoleAdmin {
		return nil
	}
	return ErrCannotDelete
}

type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

func (s *Service) Like(ctx context.Context, userID, id bson.ObjectID) (LikeResult, error) {
	c, err := s.store.ToggleLike(ctx, id, userID)
	if err != nil {
		return LikeResult{}, notFound("toggle like", err)
	}
	return LikeResult{Liked: c.LikedBy(userID), LikeCount: c.LikeCount}, nil
}

// Moderate hides or restores a comment. Callers must be admins.
func (s *Service) Moderate(ctx context.Context, id bson.ObjectID, hidden bool) (*Comment, error) {
	c, err := s.store.SetHidden(ctx, id, hidden)
	if err != nil {
		return nil, notFound("moderate comment", err)
	}
	s.log.InfoContext(ctx, "comment moderated", logger.CommentID(id.Hex()), slog.Bool("hidden", hidden))
	return c, nil
}
