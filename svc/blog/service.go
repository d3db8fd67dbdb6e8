package blog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/blogify/pkg/file"
	"github.com/dmitrymomot/blogify/pkg/logger"
	"github.com/dmitrymomot/blogify/pkg/pagination"
	"github.com/dmitrymomot/blogify/pkg/sanitizer"
	"github.com/dmitrymomot/blogify/svc/user"
)

// MaxCoverSize caps cover image uploads.
const MaxCoverSize = 10 << 20

type Config struct {
	BaseURL        string        `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
	ViewWindow     time.Duration `env:"BLOG_VIEW_WINDOW" envDefault:"24h"`
	TrendingWindow time.Duration `env:"BLOG_TRENDING_WINDOW" envDefault:"168h"`
	RelatedLimit   int           `env:"BLOG_RELATED_LIMIT" envDefault:"5"`
}

func (c Config) withDefaults() Config {
	if c.ViewWindow <= 0 {
		c.ViewWindow = 24 * time.Hour
	}
	if c.TrendingWindow <= 0 {
		c.TrendingWindow = 7 * 24 * time.Hour
	}
	if c.RelatedLimit <= 0 {
		c.RelatedLimit = 5
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	return c
}

// Service implements authoring, discovery and engagement on blogs.
type Service struct {
	store Store
	users user.Store
	views ViewTracker
	index SearchIndex
	files file.Storage
	cfg   Config
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

// WithViewTracker replaces the in-process view de-duplication.
func WithViewTracker(t ViewTracker) Option {
	return func(s *Service) {
		if t != nil {
			s.views = t
		}
	}
}

// WithSearchIndex routes search to an external index and keeps it in sync
// with published blogs.
func WithSearchIndex(idx SearchIndex) Option {
	return func(s *Service) { s.index = idx }
}

// WithFileStorage enables cover image uploads.
func WithFileStorage(fs file.Storage) Option {
	return func(s *Service) { s.files = fs }
}

func NewService(cfg Config, store Store, users user.Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		users: users,
		cfg:   cfg.withDefaults(),
		log:   slog.Default(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.views == nil {
		s.views = NewMemoryViewTracker(0).WithClock(s.now)
	}
	s.log = s.log.With(logger.Component("blog"))
	return s
}

func notFound(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrBlogNotFound.Wrap(err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Service) Get(ctx context.Context, id bson.ObjectID) (*Blog, error) {
	b, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("get blog", err)
	}
	return b, nil
}

// published returns the blog only when it is publicly visible.
func (s *Service) published(ctx context.Context, id bson.ObjectID) (*Blog, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != StatusPublished {
		return nil, ErrBlogNotFound
	}
	return b, nil
}

// owned returns the blog when actor is its author.
func (s *Service) owned(ctx context.Context, actor, id bson.ObjectID) (*Blog, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Author != actor {
		return nil, ErrNotAuthor
	}
	return b, nil
}

func (s *Service) isAdmin(ctx context.Context, id bson.ObjectID) (bool, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load actor: %w", err)
	}
	return u.Role == user.RoleAdmin, nil
}

func (s *Service) syncIndex(ctx context.Context, b *Blog) {
	if s.index == nil {
		return
	}
	var err error
	if b.Status == StatusPublished {
		err = s.index.Index(ctx, b)
	} else {
		err = s.index.Remove(ctx, b.ID)
	}
	if err != nil {
		s.log.WarnContext(ctx, "search index out of sync", logger.BlogID(b.ID.Hex()), logger.Error(err))
	}
}

func (s *Service) save(ctx context.Context, b *Blog, edit *Edit) error {
	if err := s.store.Save(ctx, b, edit); err != nil {
		if errors.Is(err, ErrDuplicateSlug) {
			return ErrSlugTaken.Wrap(err)
		}
		return notFound("save blog", err)
	}
	s.syncIndex(ctx, b)
	return nil
}

func (s *Service) Create(ctx context.Context, author bson.ObjectID, in CreateInput) (*Blog, error) {
	category, ok := ParseCategory(in.Category)
	if !ok {
		return nil, ErrInvalidCategory
	}
	status := StatusDraft
	if in.Status == string(StatusPublished) {
		status = StatusPublished
	}

	now := s.now()
	b := &Blog{
		ID:          bson.NewObjectID(),
		Title:       in.Title,
		Content:     in.Content,
		Excerpt:     in.Excerpt,
		Author:      author,
		Category:    category,
		Tags:        in.Tags,
		CoverImage:  in.CoverImage.image(),
		Status:      status,
		Likes:       []bson.ObjectID{},
		EditHistory: []Edit{},
		CreatedAt:   now,
	}
	if err := prepare(ctx, s.store, b, true, true, in.Excerpt != "", now); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, b); err != nil {
		if errors.Is(err, ErrDuplicateSlug) {
			return nil, ErrSlugTaken.Wrap(err)
		}
		return nil, fmt.Errorf("create blog: %w", err)
	}
	s.syncIndex(ctx, b)

	s.log.InfoContext(ctx, "blog created",
		logger.BlogID(b.ID.Hex()),
		logger.UserID(author.Hex()),
		slog.String("status", string(b.Status)),
	)
	return b, nil
}

func (s *Service) list(ctx context.Context, f Filter, p pagination.Params) (pagination.Result[Card], error) {
	blogs, total, err := s.store.List(ctx, f, p)
	if err != nil {
		return pagination.Result[Card]{}, fmt.Errorf("list blogs: %w", err)
	}
	return pagination.Map(pagination.NewResult(blogs, total, p), Blog.Card), nil
}

// List returns published blogs matching q.
func (s *Service) List(ctx context.Context, q ListQuery) (pagination.Result[Card], error) {
	f, err := q.Filter()
	if err != nil {
		return pagination.Result[Card]{}, err
	}
	return s.list(ctx, f, q.Params())
}

// Trending ranks blogs published within the trending window by engagement.
func (s *Service) Trending(ctx context.Context, p pagination.Params) (pagination.Result[Card], error) {
	return s.list(ctx, Filter{
		Status: StatusPublished,
		Since:  s.now().Add(-s.cfg.TrendingWindow),
		Sort:   SortPopular,
	}, p)
}

// Viewer identifies who reads a blog. Anonymous viewers are keyed by
// device fingerprint when known, by IP otherwise.
type Viewer struct {
	UserID bson.ObjectID
	IP     string
	Device string
}

func (v Viewer) key() string {
	switch {
	case !v.UserID.IsZero():
		return v.UserID.Hex()
	case v.Device != "":
		return "device:" + v.Device
	case v.IP != "":
		return "ip:" + v.IP
	}
	return ""
}

// Detail is a blog as shown to one viewer.
type Detail struct {
	*Blog
	LikedByMe bool `json:"likedByMe"`
}

// View returns the blog by slug and counts a view. Unpublished blogs are
// visible to their author only and are not counted.
func (s *Service) View(ctx context.Context, slug string, v Viewer) (Detail, error) {
	b, err := s.store.FindBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return Detail{}, notFound("find by slug", err)
	}
	if b.Status != StatusPublished {
		if v.UserID.IsZero() || b.Author != v.UserID {
			return Detail{}, ErrBlogNotFound
		}
		return Detail{Blog: b, LikedByMe: b.LikedBy(v.UserID)}, nil
	}

	unique := false
	if key := v.key(); key != "" {
		unique, err = s.views.FirstView(ctx, b.ID, key, s.cfg.ViewWindow)
		if err != nil {
			s.log.WarnContext(ctx, "view tracker failed", logger.BlogID(b.ID.Hex()), logger.Error(err))
			unique = false
		}
	}
	if updated, err := s.store.RecordView(ctx, b.ID, unique); err != nil {
		s.log.WarnContext(ctx, "failed to record view", logger.BlogID(b.ID.Hex()), logger.Error(err))
	} else {
		b = updated
	}
	return Detail{Blog: b, LikedByMe: !v.UserID.IsZero() && b.LikedBy(v.UserID)}, nil
}

// Related returns published blogs sharing the category or a tag.
func (s *Service) Related(ctx context.Context, id bson.ObjectID) ([]Card, error) {
	b, err := s.published(ctx, id)
	if err != nil {
		return nil, err
	}
	related, err := s.store.Related(ctx, b, s.cfg.RelatedLimit)
	if err != nil {
		return nil, fmt.Errorf("related blogs: %w", err)
	}
	cards := make([]Card, len(related))
	for i, r := range related {
		cards[i] = r.Card()
	}
	return cards, nil
}

// Update applies a partial edit by the author. Title or content changes are
// recorded in the edit history.
func (s *Service) Update(ctx context.Context, editor, id bson.ObjectID, in UpdateInput) (*Blog, error) {
	b, err := s.owned(ctx, editor, id)
	if err != nil {
		return nil, err
	}
	if b.Status == StatusArchived {
		return nil, ErrArchived
	}

	prev := Edit{Title: b.Title, Content: b.Content, EditedBy: editor}
	titleChanged := in.Title != nil && *in.Title != b.Title
	contentChanged := in.Content != nil && *in.Content != b.Content
	customExcerpt := b.Excerpt != makeExcerpt(b.Content)
	derive := contentChanged

	if titleChanged {
		b.Title = *in.Title
	}
	if contentChanged {
		b.Content = *in.Content
	}
	if in.Excerpt != nil {
		// An empty excerpt switches back to the generated one.
		b.Excerpt = *in.Excerpt
		customExcerpt = *in.Excerpt != ""
		derive = derive || !customExcerpt
	}
	if in.Category != nil {
		c, ok := ParseCategory(*in.Category)
		if !ok {
			return nil, ErrInvalidCategory
		}
		b.Category = c
	}
	if in.Tags != nil {
		b.Tags = in.Tags
	}
	if in.CoverImage != nil {
		b.CoverImage = in.CoverImage.image()
	}

	now := s.now()
	if err := prepare(ctx, s.store, b, titleChanged, derive, customExcerpt, now); err != nil {
		return nil, err
	}

	var edit *Edit
	if titleChanged || contentChanged {
		prev.EditedAt = now
		edit = &prev
		b.EditHistory = append(b.EditHistory, prev)
	}
	if err := s.save(ctx, b, edit); err != nil {
		return nil, err
	}
	return b, nil
}

// Delete archives the blog. The author and admins may delete.
func (s *Service) Delete(ctx context.Context, actor, id bson.ObjectID) error {
	b, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if b.Author != actor {
		admin, err := s.isAdmin(ctx, actor)
		if err != nil {
			return err
		}
		if !admin {
			return ErrNotAuthor
		}
	}
	if b.Status == StatusArchived {
		return nil
	}
	b.Status = StatusArchived
	b.UpdatedAt = s.now()
	if err := s.save(ctx, b, nil); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "blog archived", logger.BlogID(id.Hex()), logger.UserID(actor.Hex()))
	return nil
}

// Publish makes the blog public. publishedAt keeps the first publish time.
func (s *Service) Publish(ctx context.Context, actor, id bson.ObjectID) (*Blog, error) {
	b, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if b.Status == StatusPublished {
		return nil, ErrAlreadyPublished
	}
	now := s.now()
	b.Status = StatusPublished
	markPublished(b, now)
	b.UpdatedAt = now
	if err := s.save(ctx, b, nil); err != nil {
		return nil, err
	}
	return b, nil
}

// Unpublish moves a published blog back to draft.
func (s *Service) Unpublish(ctx context.Context, actor, id bson.ObjectID) (*Blog, error) {
	b, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if b.Status != StatusPublished {
		return nil, ErrNotPublished
	}
	b.Status = StatusDraft
	b.UpdatedAt = s.now()
	if err := s.save(ctx, b, nil); err != nil {
		return nil, err
	}
	return b, nil
}

type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

// Like toggles the like of userID on a published blog.
func (s *Service) Like(ctx context.Context, userID, id bson.ObjectID) (LikeResult, error) {
	if _, err := s.published(ctx, id); err != nil {
		return LikeResult{}, err
	}
	b, err := s.store.ToggleLike(ctx, id, userID)
	if err != nil {
		return LikeResult{}, notFound("toggle like", err)
	}
	return LikeResult{Liked: b.LikedBy(userID), LikeCount: b.LikeCount}, nil
}

type BookmarkResult struct {
	Bookmarked    bool `json:"bookmarked"`
	BookmarkCount int  `json:"bookmarkCount"`
}

// Bookmark toggles the blog in the user's bookmarks. The user's set is the
// source of truth; the blog counter follows it.
func (s *Service) Bookmark(ctx context.Context, userID, id bson.ObjectID) (BookmarkResult, error) {
	if _, err := s.published(ctx, id); err != nil {
		return BookmarkResult{}, err
	}

	delta := 1
	added, err := s.users.AddBookmark(ctx, userID, id)
	if err != nil {
		return BookmarkResult{}, userNotFound("add bookmark", err)
	}
	if !added {
		delta = -1
		if _, err := s.users.RemoveBookmark(ctx, userID, id); err != nil {
			return BookmarkResult{}, userNotFound("remove bookmark", err)
		}
	}

	b, err := s.store.IncCounter(ctx, id, CounterBookmarks, delta)
	if err != nil {
		return BookmarkResult{}, notFound("bookmark counter", err)
	}
	return BookmarkResult{Bookmarked: added, BookmarkCount: b.BookmarkCount}, nil
}

func userNotFound(op string, err error) error {
	if errors.Is(err, user.ErrNotFound) {
		return user.ErrUserNotFound.Wrap(err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Bookmarks lists the published blogs the user bookmarked.
func (s *Service) Bookmarks(ctx context.Context, userID bson.ObjectID, p pagination.Params) (pagination.Result[Card], error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return pagination.Result[Card]{}, userNotFound("load bookmarks", err)
	}
	if len(u.Bookmarks) == 0 {
		return pagination.NewResult[Card](nil, 0, p), nil
	}
	return s.list(ctx, Filter{Status: StatusPublished, IDs: u.Bookmarks, Sort: SortNewest}, p)
}

type ShareResult struct {
	URL    string `json:"url"`
	Shares int    `json:"shares"`
}

// Share counts a share and returns the public link.
func (s *Service) Share(ctx context.Context, id bson.ObjectID) (ShareResult, error) {
	if _, err := s.published(ctx, id); err != nil {
		return ShareResult{}, err
	}
	b, err := s.store.IncCounter(ctx, id, CounterShares, 1)
	if err != nil {
		return ShareResult{}, notFound("share", err)
	}
	return ShareResult{URL: s.cfg.BaseURL + "/blog/" + b.Slug, Shares: b.Shares}, nil
}

// Search uses the external index when configured and falls back to the
// store when the index fails.
func (s *Service) Search(ctx context.Context, query string, p pagination.Params) (pagination.Result[Card], error) {
	query = sanitizer.SingleLine(query)
	if query == "" {
		return pagination.Result[Card]{}, ErrEmptyQuery
	}
	if s.index != nil {
		res, err := s.searchIndex(ctx, query, p)
		if err == nil {
			return res, nil
		}
		s.log.WarnContext(ctx, "search index failed, using store", logger.Error(err))
	}
	blogs, total, err := s.store.Search(ctx, query, p)
	if err != nil {
		return pagination.Result[Card]{}, fmt.Errorf("search blogs: %w", err)
	}
	return pagination.Map(pagination.NewResult(blogs, total, p), Blog.Card), nil
}

func (s *Service) searchIndex(ctx context.Context, query string, p pagination.Params) (pagination.Result[Card], error) {
	ids, total, err := s.index.Search(ctx, query, p)
	if err != nil {
		return pagination.Result[Card]{}, err
	}
	if len(ids) == 0 {
		return pagination.NewResult[Card](nil, total, p), nil
	}
	blogs, _, err := s.store.List(ctx, Filter{Status: StatusPublished, IDs: ids}, pagination.Params{Page: 1, Limit: len(ids)})
	if err != nil {
		return pagination.Result[Card]{}, err
	}
	byID := make(map[bson.ObjectID]Blog, len(blogs))
	for _, b := range blogs {
		byID[b.ID] = b
	}
	cards := make([]Card, 0, len(ids))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			cards = append(cards, b.Card())
		}
	}
	return pagination.NewResult(cards, total, p), nil
}

type CategoryCount struct {
	Name  Category `json:"name"`
	Count int64    `json:"count"`
}

// Categories returns every category with its published blog count.
func (s *Service) Categories(ctx context.Context) ([]CategoryCount, error) {
	counts, err := s.store.CategoryCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("category counts: %w", err)
	}
	out := make([]CategoryCount, len(Categories))
	for i, c := range Categories {
		out[i] = CategoryCount{Name: c, Count: counts[c]}
	}
	return out, nil
}

// ToggleFeatured flips isFeatured. Callers must be admins.
func (s *Service) ToggleFeatured(ctx context.Context, id bson.ObjectID) (*Blog, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	b, err = s.store.SetFeatured(ctx, id, !b.IsFeatured)
	if err != nil {
		return nil, notFound("set featured", err)
	}
	return b, nil
}

// UploadCover stores the image and sets it as the cover. The previous object
// is removed once the blog points at the new one.
func (s *Service) UploadCover(ctx context.Context, actor, id bson.ObjectID, body []byte, contentType, alt string) (*Blog, error) {
	if s.files == nil {
		return nil, ErrUploadsDisabled
	}
	if err := file.Validate(body, contentType, MaxCoverSize, file.ImageTypes...); err != nil {
		if errors.Is(err, file.ErrFileTooLarge) {
			return nil, ErrCoverTooLarge.Wrap(err)
		}
		return nil, ErrInvalidCover.Wrap(err)
	}
	b, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	obj, err := s.files.Put(ctx, file.NewKey("covers/"+id.Hex(), contentType), body, contentType)
	if err != nil {
		return nil, fmt.Errorf("store cover: %w", err)
	}
	old := b.CoverImage
	b.CoverImage = &Image{URL: obj.URL, Key: obj.Key, Alt: sanitizer.Truncate(sanitizer.SingleLine(alt), 200)}
	b.UpdatedAt = s.now()
	if err := s.save(ctx, b, nil); err != nil {
		s.removeObject(ctx, obj.Key)
		return nil, err
	}
	if old != nil && old.Key != "" {
		s.removeObject(ctx, old.Key)
	}
	return b, nil
}

func (s *Service) removeObject(ctx context.Context, key string) {
	if err := s.files.Delete(ctx, key); err != nil {
		s.log.WarnContext(ctx, "failed to delete stored object", slog.String("key", key), logger.Error(err))
	}
}

// CommentTarget returns the author of a published blog that accepts comments.
func (s *Service) CommentTarget(ctx context.Context, id bson.ObjectID) (bson.ObjectID, error) {
	b, err := s.published(ctx, id)
	if err != nil {
		return bson.ObjectID{}, err
	}
	return b.Author, nil
}

// AdjustCommentCount keeps commentCount in step with comment writes.
func (s *Service) AdjustCommentCount(ctx context.Context, id bson.ObjectID, delta int) error {
	if _, err := s.store.IncCounter(ctx, id, CounterComments, delta); err != nil {
		return notFound("comment counter", err)
	}
	return nil
}

// BlogAuthor returns the author of the blog in any status.
func (s *Service) BlogAuthor(ctx context.Context, id bson.ObjectID) (bson.ObjectID, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return bson.ObjectID{}, err
	}
	return b.Author, nil
}
