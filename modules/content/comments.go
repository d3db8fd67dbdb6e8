package content

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/blogify/handler"
	"github.com/dmitrymomot/blogify/modules/internal/endpoint"
	"github.com/dmitrymomot/blogify/pkg/binder"
	"github.com/dmitrymomot/blogify/pkg/pagination"
	"github.com/dmitrymomot/blogify/pkg/validator"
	"github.com/dmitrymomot/blogify/svc/auth"
	"github.com/dmitrymomot/blogify/svc/comment"
)

// CommentService serves /blog/{blogId}/comments.
type CommentService struct {
	ep       endpoint.Config
	comments *comment.Service
	mw       *auth.Middleware
}

func NewCommentService(
	comments *comment.Service,
	mw *auth.Middleware,
	v *validator.Validator,
	errorHandler handler.ErrorHandler[handler.Context],
) *CommentService {
	return &CommentService{
		ep:       endpoint.Config{Validator: v, ErrorHandler: errorHandler},
		comments: comments,
		mw:       mw,
	}
}

func (s *CommentService) Handle() http.Handler {
	r := chi.NewRouter()
	path := binder.Path(chi.URLParam)

	r.Get("/", endpoint.Wrap(s.ep, s.list, binder.Query()))
	r.Get("/{id}/replies", endpoint.Wrap(s.ep, s.replies, path, binder.Query()))
	r.Get("/{id}/history", endpoint.Wrap(s.ep, s.history, path))

	r.Group(func(r chi.Router) {
		r.Use(s.mw.Required)

		r.Post("/", endpoint.Wrap(s.ep, s.create, binder.JSON()))
		r.Patch("/{id}", endpoint.Wrap(s.ep, s.update, binder.JSON()))
		r.Delete("/{id}", endpoint.Wrap(s.ep, s.delete, path))
		r.Post("/{id}/like", endpoint.Wrap(s.ep, s.like, path))
	})

	return r
}

func (s *CommentService) create(ctx handler.Context, req comment.CreateInput) handler.Response {
	author, err := endpoint.CurrentUser(ctx)
	if err != nil {
		return handler.Error(err)
	}
	blogID, err := endpoint.PathID(ctx, "blogId")
	if err != nil {
		return handler.Error(err)
	}
	c, err := s.comments.Create(ctx, author, blogID, req)
	if err != nil {
		return handler.Error(err)
	}
	return handler.Created(c, "Comment added")
}

func (s *CommentService) list(ctx handler.Context, req comment.ListQuery) handler.Response {
	blogID, err := endpoint.PathID(ctx, "blogId")
	if err != nil {
		return handler.Error(err)
	}
	res, err := s.comments.List(ctx, blogID, req)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(res)
}

type RepliesRequest struct {
	ID    string `path:"id"`
	Page  int    `query:"page"`
	Limit int    `query:"limit"`
}

func (s *CommentService) replies(ctx handler.Context, req RepliesRequest) handler.Response {
	blogID, err := endpoint.PathID(ctx, "blogId")
	if err != nil {
		return handler.Error(err)
	}
	id, err := endpoint.ParseID(req.ID)
	if err != nil {
		return handler.Error(err)
	}
	res, err := s.comments.Replies(ctx, blogID, id, pagination.Params{Page: req.Page, Limit: req.Limit}.Normalize())
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(res)
}

func (s *CommentService) history(ctx handler.Context, req IDRequest) handler.Response {
	blogID, err := endpoint.PathID(ctx, "blogId")
	if err != nil {
		return handler.Error(err)
	}
	id, err := endpoint.ParseID(req.ID)
	if err != nil {
		return handler.Error(err)
	}
	edits, err := s.comments.History(ctx, blogID, id)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(edits)
}

func (s *CommentService) update(ctx handler.Context, req comment.UpdateInput) handler.Response {
	actor, err := endpoint.CurrentUser(ctx)
	if err != nil {
		return handler.Error(err)
	}
	id, err := endpoint.PathID(ctx, "id")
	if err != nil {
		return handler.Error(err)
	}
	c, err := s.comments.Update(ctx, actor, id, req)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(c, handler.WithMessage("Comment updated"))
}

func (s *CommentService) delete(ctx handler.Context, req IDRequest) handler.Response {
	actor, id, err := actOn(ctx, req)
	if err != nil {
		return handler.Error(err)
	}
	if err := s.comments.Delete(ctx, actor, id); err != nil {
		return handler.Error(err)
	}
	return handler.JSON(nil, handler.WithMessage("Comment deleted"))
}

func (s *CommentService) like(ctx handler.Context, req IDRequest) handler.Response {
	actor, id, err := actOn(ctx, req)
	if err != nil {
		return handler.Error(err)
	}
	res, err := s.comments.Like(ctx, actor, id)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(res)
}
