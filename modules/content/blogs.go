package content

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/blogify/handler"
	"github.com/dmitrymomot/blogify/modules/internal/endpoint"
	"github.com/dmitrymomot/blogify/pkg/binder"
	"github.com/dmitrymomot/blogify/pkg/clientip"
	"github.com/dmitrymomot/blogify/pkg/fingerprint"
	"github.com/dmitrymomot/blogify/pkg/pagination"
	"github.com/dmitrymomot/blogify/pkg/validator"
	"github.com/dmitrymomot/blogify/svc/auth"
	"github.com/dmitrymomot/blogify/svc/blog"
)

// BlogService serves /blog.
type BlogService struct {
	ep    endpoint.Config
	blogs *blog.Service
	mw    *auth.Middleware
}

func NewBlogService(
	blogs *blog.Service,
	mw *auth.Middleware,
	v *validator.Validator,
	errorHandler handler.ErrorHandler[handler.Context],
) *BlogService {
	return &BlogService{
		ep:    endpoint.Config{Validator: v, ErrorHandler: errorHandler},
		blogs: blogs,
		mw:    mw,
	}
}

func (s *BlogService) Handle() http.Handler {
	r := chi.NewRouter()
	path := binder.Path(chi.URLParam)

	r.Get("/", endpoint.Wrap(s.ep, s.list, binder.Query()))
	r.Get("/trending", endpoint.Wrap(s.ep, s.trending, binder.Query()))
	r.Get("/search", endpoint.Wrap(s.ep, s.search, binder.Query()))
	r.Get("/{id}/related", endpoint.Wrap(s.ep, s.related, path))
	r.Post("/{id}/share", endpoint.Wrap(s.ep, s.share, path))
	r.With(s.mw.Optional).Get("/{slug}", endpoint.Wrap(s.ep, s.view, path))

	r.Group(func(r chi.Router) {
		r.Use(s.mw.Required)

		r.Post("/create", endpoint.Wrap(s.ep, s.create, binder.JSON()))
		r.Get("/bookmarks", endpoint.Wrap(s.ep, s.bookmarks, binder.Query()))
		r.Patch("/{id}", endpoint.Wrap(s.ep, s.update, binder.JSON()))
		r.Delete("/{id}", endpoint.Wrap(s.ep, s.delete, path))
		r.Post("/{id}/publish", endpoint.Wrap(s.ep, s.publish, path))
		r.Post("/{id}/unpublish", endpoint.Wrap(s.ep, s.unpublish, path))
		r.Post("/{id}/like", endpoint.Wrap(s.ep, s.like, path))
		r.Post("/{id}/bookmark", endpoint.Wrap(s.ep, s.bookmark, path))
		r.Post("/{id}/cover", endpoint.Wrap(s.ep, s.uploadCover, path, binder.File()))
	})

	return r
}

type IDRequest struct {
	ID string `path:"id"`
}

func (s *BlogService) create(ctx handler.Context, req blog.CreateInput) handler.Response {
	author, err := endpoint.CurrentUser(ctx)
	if err != nil {
		return handler.Error(err)
	}
	b, err := s.blogs.Create(ctx, author, req)
	if err != nil {
		return handler.Error(err)
	}
	return handler.Created(b, "Blog created successfully")
}

func (s *BlogService) list(ctx handler.Context, req blog.ListQuery) handler.Response {
	res, err := s.blogs.List(ctx, req)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(res)
}

func (s *BlogService) trending(ctx handler.Context, req pagination.Params) handler.Response {
	res, err := s.blogs.Trending(ctx, req.Normalize())
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(res)
}

func (s *BlogService) bookmarks(ctx handler.Context, req pagination.Params) handler.Response {
	me, err := endpoint.CurrentUser(ctx)
	if err != nil {
		return handler.Error(err)
	}
	res, err := s.blogs.Bookmarks(ctx, me, req.Normalize())
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(res)
}

type SearchRequest struct {
	Q     string `query:"q"`
	Page  int    `query:"page"`
	Limit int    `query:"limit"`
}

func (s *BlogService) search(ctx handler.Context, req SearchRequest) handler.Response {
	res, err := s.blogs.Search(ctx, req.Q, pagination.Params{Page: req.Page, Limit: req.Limit}.Normalize())
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(res)
}

type SlugRequest struct {
	Slug string `path:"slug"`
}

// view counts the read. Signed-in readers are de-duplicated by account,
// anonymous ones by device fingerprint.
func (s *BlogService) view(ctx handler.Context, req SlugRequest) handler.Response {
	viewer := blog.Viewer{
		UserID: endpoint.OptionalUser(ctx),
		IP:     clientip.FromContext(ctx),
		Device: fingerprint.Generate(ctx.Request()),
	}
	d, err := s.blogs.View(ctx, req.Slug, viewer)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(d)
}

func (s *BlogService) related(ctx handler.Context, req IDRequest) handler.Response {
	id, err := endpoint.ParseID(req.ID)
	if err != nil {
		return handler.Error(err)
	}
	cards, err := s.blogs.Related(ctx, id)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(cards)
}

func (s *BlogService) update(ctx handler.Context, req blog.UpdateInput) handler.Response {
	editor, err := endpoint.CurrentUser(ctx)
	if err != nil {
		return handler.Error(err)
	}
	id, err := endpoint.PathID(ctx, "id")
	if err != nil {
		return handler.Error(err)
	}
	b, err := s.blogs.Update(ctx, editor, id, req)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(b, handler.WithMessage("Blog updated successfully"))
}

// actOn resolves the caller and the blog id for routes without a body.
func actOn(ctx handler.Context, req IDRequest) (actor, id bson.ObjectID, err error) {
	actor, err = endpoint.CurrentUser(ctx)
	if err != nil {
		return actor, id, err
	}
	id, err = endpoint.ParseID(req.ID)
	return actor, id, err
}

func (s *BlogService) delete(ctx handler.Context, req IDRequest) handler.Response {
	actor, id, err := actOn(ctx, req)
	if err != nil {
		return handler.Error(err)
	}
	if err := s.blogs.Delete(ctx, actor, id); err != nil {
		return handler.Error(err)
	}
	return handler.JSON(nil, handler.WithMessage("Blog deleted successfully"))
}

func (s *BlogService) publish(ctx handler.Context, req IDRequest) handler.Response {
	actor, id, err := actOn(ctx, req)
	if err != nil {
		return handler.Error(err)
	}
	b, err := s.blogs.Publish(ctx, actor, id)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(b, handler.WithMessage("Blog published"))
}

func (s *BlogService) unpublish(ctx handler.Context, req IDRequest) handler.Response {
	actor, id, err := actOn(ctx, req)
	if err != nil {
		return handler.Error(err)
	}
	b, err := s.blogs.Unpublish(ctx, actor, id)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(b, handler.WithMessage("Blog moved to drafts"))
}

func (s *BlogService) like(ctx handler.Context, req IDRequest) handler.Response {
	actor, id, err := actOn(ctx, req)
	if err != nil {
		return handler.Error(err)
	}
	res, err := s.blogs.Like(ctx, actor, id)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(res)
}

func (s *BlogService) bookmark(ctx handler.Context, req IDRequest) handler.Response {
	actor, id, err := actOn(ctx, req)
	if err != nil {
		return handler.Error(err)
	}
	res, err := s.blogs.Bookmark(ctx, actor, id)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(res)
}

func (s *BlogService) share(ctx handler.Context, req IDRequest) handler.Response {
	id, err := endpoint.ParseID(req.ID)
	if err != nil {
		return handler.Error(err)
	}
	res, err := s.blogs.Share(ctx, id)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(res)
}

type CoverRequest struct {
	ID    string             `path:"id"`
	Cover *binder.FileUpload `file:"cover" validate:"required"`
}

func (s *BlogService) uploadCover(ctx handler.Context, req CoverRequest) handler.Response {
	actor, id, err := actOn(ctx, IDRequest{ID: req.ID})
	if err != nil {
		return handler.Error(err)
	}
	b, err := s.blogs.UploadCover(ctx, actor, id, req.Cover.Content, req.Cover.ContentType(), ctx.Request().FormValue("alt"))
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(b, handler.WithMessage("Cover image updated"))
}

// CategoryService serves /categories.
type CategoryService struct {
	ep    endpoint.Config
	blogs *blog.Service
}

func NewCategoryService(blogs *blog.Service, v *validator.Validator, errorHandler handler.ErrorHandler[handler.Context]) *CategoryService {
	return &CategoryService{
		ep:    endpoint.Config{Validator: v, ErrorHandler: errorHandler},
		blogs: blogs,
	}
}

func (s *CategoryService) Handle() http.Handler {
	r := chi.NewRouter()
	r.Get("/", endpoint.Wrap(s.ep, s.list))
	return r
}

func (s *CategoryService) list(ctx handler.Context, _ struct{}) handler.Response {
	counts, err := s.blogs.Categories(ctx)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(counts)
}
