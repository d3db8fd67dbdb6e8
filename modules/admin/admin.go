// Package admin serves the moderation routes. Every route requires an
// authenticated admin.
package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/blogify/handler"
	"github.com/dmitrymomot/blogify/modules/internal/endpoint"
	"github.com/dmitrymomot/blogify/pkg/binder"
	"github.com/dmitrymomot/blogify/pkg/pagination"
	"github.com/dmitrymomot/blogify/pkg/validator"
	"github.com/dmitrymomot/blogify/svc/auth"
	"github.com/dmitrymomot/blogify/svc/blog"
	"github.com/dmitrymomot/blogify/svc/comment"
	"github.com/dmitrymomot/blogify/svc/user"
)

var ErrSelfChange = handler.NewHTTPError(http.StatusBadRequest, "You cannot change your own account")

type Service struct {
	ep       endpoint.Config
	users    *user.Service
	blogs    *blog.Service
	comments *comment.Service
	mw       *auth.Middleware
}

func NewService(
	users *user.Service,
	blogs *blog.Service,
	comments *comment.Service,
	mw *auth.Middleware,
	v *validator.Validator,
	errorHandler handler.ErrorHandler[handler.Context],
) *Service {
	return &Service{
		ep:       endpoint.Config{Validator: v, ErrorHandler: errorHandler},
		users:    users,
		blogs:    blogs,
		comments: comments,
		mw:       mw,
	}
}

// Handle returns the router to mount under /admin.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.Use(s.mw.Required, s.mw.RequireRole(user.RoleAdmin))

	path := binder.Path(chi.URLParam)

	r.Get("/users", endpoint.Wrap(s.ep, s.listUsers, binder.Query()))
	r.Post("/users/{id}/suspend", endpoint.Wrap(s.ep, s.setStatus(user.StatusSuspended, "User suspended"), path))
	r.Post("/users/{id}/ban", endpoint.Wrap(s.ep, s.setStatus(user.StatusBanned, "User banned"), path))
	r.Post("/users/{id}/activate", endpoint.Wrap(s.ep, s.setStatus(user.StatusActive, "User activated"), path))
	r.Patch("/users/{id}/role", endpoint.Wrap(s.ep, s.setRole, binder.JSON()))

	r.Post("/blogs/{id}/feature", endpoint.Wrap(s.ep, s.toggleFeatured, path))
	r.Post("/comments/{id}/moderate", endpoint.Wrap(s.ep, s.moderate, path, binder.JSON()))

	return r
}

type ListUsersRequest struct {
	Status string `query:"status"`
	Role   string `query:"role"`
	Q      string `query:"q"`
	Page   int    `query:"page"`
	Limit  int    `query:"limit"`
}

func (s *Service) listUsers(ctx handler.Context, req ListUsersRequest) handler.Response {
	res, err := s.users.List(ctx, user.ListFilter{
		Status: user.Status(req.Status),
		Role:   user.Role(req.Role),
		Query:  req.Q,
	}, pagination.Params{Page: req.Page, Limit: req.Limit})
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(res)
}

type IDRequest struct {
	ID string `path:"id"`
}

// target resolves the user id in the path and rejects the caller's own.
func target(ctx handler.Context, raw string) (me, id bson.ObjectID, err error) {
	me, err = endpoint.CurrentUser(ctx)
	if err != nil {
		return me, id, err
	}
	id, err = endpoint.ParseID(raw)
	if err != nil {
		return me, id, err
	}
	if id == me {
		return me, id, ErrSelfChange
	}
	return me, id, nil
}

func (s *Service) setStatus(status user.Status, message string) handler.HandlerFunc[handler.Context, IDRequest] {
	return func(ctx handler.Context, req IDRequest) handler.Response {
		_, id, err := target(ctx, req.ID)
		if err != nil {
			return handler.Error(err)
		}
		u, err := s.users.SetStatus(ctx, id, status)
		if err != nil {
			return handler.Error(err)
		}
		return handler.JSON(u.Summary(), handler.WithMessage(message))
	}
}

type RoleRequest struct {
	Role string `json:"role" validate:"required,oneof=author admin"`
}

func (s *Service) setRole(ctx handler.Context, req RoleRequest) handler.Response {
	_, id, err := target(ctx, chi.URLParam(ctx.Request(), "id"))
	if err != nil {
		return handler.Error(err)
	}
	u, err := s.users.SetRole(ctx, id, user.Role(req.Role))
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(u.Summary(), handler.WithMessage("Role updated"))
}

func (s *Service) toggleFeatured(ctx handler.Context, req IDRequest) handler.Response {
	id, err := endpoint.ParseID(req.ID)
	if err != nil {
		return handler.Error(err)
	}
	b, err := s.blogs.ToggleFeatured(ctx, id)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(b.Card())
}

type ModerateRequest struct {
	ID     string `path:"id"`
	Hidden *bool  `json:"hidden"`
}

// moderate hides the comment unless the body says {"hidden": false}.
func (s *Service) moderate(ctx handler.Context, req ModerateRequest) handler.Response {
	id, err := endpoint.ParseID(req.ID)
	if err != nil {
		return handler.Error(err)
	}
	hidden := req.Hidden == nil || *req.Hidden
	c, err := s.comments.Moderate(ctx, id, hidden)
	if err != nil {
		return handler.Error(err)
	}
	msg := "Comment hidden"
	if !hidden {
		msg = "Comment restored"
	}
	return handler.JSON(c, handler.WithMessage(msg))
}
