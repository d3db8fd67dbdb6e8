package account

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/blogify/handler"
	"github.com/dmitrymomot/blogify/modules/internal/endpoint"
	"github.com/dmitrymomot/blogify/pkg/binder"
	"github.com/dmitrymomot/blogify/pkg/cookie"
	"github.com/dmitrymomot/blogify/pkg/pagination"
	"github.com/dmitrymomot/blogify/pkg/validator"
	"github.com/dmitrymomot/blogify/svc/auth"
	"github.com/dmitrymomot/blogify/svc/user"
)

// ProfileService serves the profile, password and social graph routes.
type ProfileService struct {
	ep      endpoint.Config
	users   *user.Service
	mw      *auth.Middleware
	cookies *cookie.Manager
}

func NewProfileService(
	users *user.Service,
	mw *auth.Middleware,
	cookies *cookie.Manager,
	v *validator.Validator,
	errorHandler handler.ErrorHandler[handler.Context],
) *ProfileService {
	return &ProfileService{
		ep:      endpoint.Config{Validator: v, ErrorHandler: errorHandler},
		users:   users,
		mw:      mw,
		cookies: cookies,
	}
}

func (s *ProfileService) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/username/{username}", endpoint.Wrap(s.ep, s.byUsername, binder.Path(chi.URLParam)))
	r.Get("/{id}/followers", endpoint.Wrap(s.ep, s.followers, binder.Path(chi.URLParam), binder.Query()))
	r.Get("/{id}/following", endpoint.Wrap(s.ep, s.following, binder.Path(chi.URLParam), binder.Query()))

	r.Group(func(r chi.Router) {
		r.Use(s.mw.Required)

		r.Get("/profile", endpoint.Wrap(s.ep, s.profile))
		r.Patch("/profile", endpoint.Wrap(s.ep, s.updateProfile, binder.JSON()))
		r.Post("/profile/avatar", endpoint.Wrap(s.ep, s.uploadAvatar, binder.File()))
		r.Post("/changePassword", endpoint.Wrap(s.ep, s.changePassword, binder.JSON()))
		r.Post("/deactivate", endpoint.Wrap(s.ep, s.deactivate))

		r.Post("/follow/{id}", endpoint.Wrap(s.ep, s.graph(s.users.Follow, "User followed"), binder.Path(chi.URLParam)))
		r.Post("/unfollow/{id}", endpoint.Wrap(s.ep, s.graph(s.users.Unfollow, "User unfollowed"), binder.Path(chi.URLParam)))
		r.Post("/block/{id}", endpoint.Wrap(s.ep, s.graph(s.users.Block, "User blocked"), binder.Path(chi.URLParam)))
		r.Post("/unblock/{id}", endpoint.Wrap(s.ep, s.graph(s.users.Unblock, "User unblocked"), binder.Path(chi.URLParam)))
	})

	return r
}

func (s *ProfileService) profile(ctx handler.Context, _ struct{}) handler.Response {
	id, err := endpoint.CurrentUser(ctx)
	if err != nil {
		return handler.Error(err)
	}
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(u.Me())
}

func (s *ProfileService) updateProfile(ctx handler.Context, req user.ProfileInput) handler.Response {
	id, err := endpoint.CurrentUser(ctx)
	if err != nil {
		return handler.Error(err)
	}
	u, err := s.users.UpdateProfile(ctx, id, req)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(u.Me(), handler.WithMessage("Profile updated"))
}

type AvatarRequest struct {
	Avatar *binder.FileUpload `file:"avatar" validate:"required"`
}

func (s *ProfileService) uploadAvatar(ctx handler.Context, req AvatarRequest) handler.Response {
	id, err := endpoint.CurrentUser(ctx)
	if err != nil {
		return handler.Error(err)
	}
	alt := ctx.Request().FormValue("alt")
	u, err := s.users.UploadAvatar(ctx, id, req.Avatar.Content, req.Avatar.ContentType(), alt)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(u.Me(), handler.WithMessage("Avatar updated"))
}

type UsernameRequest struct {
	Username string `path:"username" validate:"required"`
}

func (s *ProfileService) byUsername(ctx handler.Context, req UsernameRequest) handler.Response {
	p, err := s.users.PublicByUsername(ctx, req.Username)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(p)
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
}

// changePassword ends the session; the client must log in again.
func (s *ProfileService) changePassword(ctx handler.Context, req ChangePasswordRequest) handler.Response {
	id, err := endpoint.CurrentUser(ctx)
	if err != nil {
		return handler.Error(err)
	}
	if err := s.users.ChangePassword(ctx, id, req.OldPassword, req.NewPassword); err != nil {
		return handler.Error(err)
	}
	s.cookies.Delete(ctx.ResponseWriter(), auth.RefreshCookieName)
	return handler.JSON(nil, handler.WithMessage("Password changed, please login again"))
}

func (s *ProfileService) deactivate(ctx handler.Context, _ struct{}) handler.Response {
	id, err := endpoint.CurrentUser(ctx)
	if err != nil {
		return handler.Error(err)
	}
	if err := s.users.Deactivate(ctx, id); err != nil {
		return handler.Error(err)
	}
	s.cookies.Delete(ctx.ResponseWriter(), auth.RefreshCookieName)
	return handler.JSON(nil, handler.WithMessage("Account deactivated, login again to reactivate it"))
}

type TargetRequest struct {
	ID string `path:"id"`
}

// graph adapts a two-party user operation to a route.
func (s *ProfileService) graph(op func(ctx context.Context, me, target bson.ObjectID) error, message string) handler.HandlerFunc[handler.Context, TargetRequest] {
	return func(ctx handler.Context, req TargetRequest) handler.Response {
		me, err := endpoint.CurrentUser(ctx)
		if err != nil {
			return handler.Error(err)
		}
		target, err := endpoint.ParseID(req.ID)
		if err != nil {
			return handler.Error(err)
		}
		if err := op(ctx, me, target); err != nil {
			return handler.Error(err)
		}
		return handler.JSON(nil, handler.WithMessage(message))
	}
}

type EdgesRequest struct {
	ID    string `path:"id"`
	Page  int    `query:"page"`
	Limit int    `query:"limit"`
}

func (r EdgesRequest) Params() pagination.Params {
	return pagination.Params{Page: r.Page, Limit: r.Limit}.Normalize()
}

func (s *ProfileService) followers(ctx handler.Context, req EdgesRequest) handler.Response {
	id, err := endpoint.ParseID(req.ID)
	if err != nil {
		return handler.Error(err)
	}
	res, err := s.users.Followers(ctx, id, req.Params())
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(res)
}

func (s *ProfileService) following(ctx handler.Context, req EdgesRequest) handler.Response {
	id, err := endpoint.ParseID(req.ID)
	if err != nil {
		return handler.Error(err)
	}
	res, err := s.users.Following(ctx, id, req.Params())
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(res)
}
