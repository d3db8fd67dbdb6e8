package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/dmitrymomot/blogify/handler"
	"github.com/dmitrymomot/blogify/pkg/jwt"
	"github.com/dmitrymomot/blogify/pkg/logger"
	"github.com/dmitrymomot/blogify/svc/user"
)

// Middleware guards routes with the access token and, when it is missing or
// stale, renews the session from the refresh cookie.
type Middleware struct {
	svc     *Service
	access  jwt.TokenExtractorFunc
	refresh jwt.TokenExtractorFunc
	onError handler.ErrorHandler[handler.Context]
}

type MiddlewareOption func(*Middleware)

// WithErrorHandler routes rejections through the shared error handler so
// they are logged like handler errors.
func WithErrorHandler(h handler.ErrorHandler[handler.Context]) MiddlewareOption {
	return func(m *Middleware) {
		if h != nil {
			m.onError = h
		}
	}
}

// WithRefreshExtractor changes where the refresh token is read from. The
// default is the refreshToken cookie.
func WithRefreshExtractor(fn jwt.TokenExtractorFunc) MiddlewareOption {
	return func(m *Middleware) {
		if fn != nil {
			m.refresh = fn
		}
	}
}

func NewMiddleware(svc *Service, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{
		svc:     svc,
		access:  jwt.BearerTokenExtractor,
		refresh: jwt.CookieTokenExtractor(RefreshCookieName),
		onError: func(ctx handler.Context, err error) {
			handler.WriteError(ctx.ResponseWriter(), ctx.Request(), err)
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Middleware) fail(w http.ResponseWriter, r *http.Request, err error) {
	m.onError(handler.NewContext(w, r), err)
}

// authenticate runs the two checkpoints. A renewed access token is written
// to the Authorization response header.
func (m *Middleware) authenticate(w http.ResponseWriter, r *http.Request) (Claims, error) {
	if bearer, err := m.access(r); err == nil {
		claims, err := m.svc.tokens.VerifyAccessToken(bearer)
		if err == nil {
			return claims, nil
		}
		m.svc.log.DebugContext(r.Context(), "access token rejected, trying refresh token", logger.Error(err))
	}

	refresh, err := m.refresh(r)
	if err != nil {
		return Claims{}, ErrNoToken
	}
	renewal, err := m.svc.Refresh(r.Context(), refresh)
	if err != nil {
		return Claims{}, err
	}
	jwt.SetBearer(w.Header(), renewal.AccessToken)
	w.Header().Add("Access-Control-Expose-Headers", "Authorization")
	return renewal.Claims, nil
}

// Required rejects requests without a valid session: 401 without any token,
// 403 for a bad or superseded refresh token, 404 when the account is gone.
func (m *Middleware) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.authenticate(w, r)
		if err != nil {
			m.fail(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// Optional attaches the identity when the request carries a usable session
// and lets anonymous requests through otherwise.
func (m *Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.authenticate(w, r)
		if err != nil {
			if !errors.Is(err, ErrNoToken) {
				m.svc.log.DebugContext(r.Context(), "continuing anonymously", logger.Error(err))
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// RequireRole loads the user and checks the role on every request; tokens
// carry identity only, so role changes apply immediately. It must be mounted
// after Required.
func (m *Middleware) RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := UserIDFromContext(r.Context())
			if !ok {
				m.fail(w, r, ErrNoToken)
				return
			}
			u, err := m.svc.users.FindByID(r.Context(), id)
			if err != nil {
				if errors.Is(err, user.ErrNotFound) {
					err = user.ErrUserNotFound.Wrap(err)
				}
				m.fail(w, r, err)
				return
			}
			if u.Status.Locked() {
				m.fail(w, r, ErrAccountLocked)
				return
			}
			if !slices.Contains(roles, u.Role) {
				m.svc.log.WarnContext(r.Context(), "role check failed",
					logger.UserID(u.ID.Hex()),
					slog.String("role", string(u.Role)),
					slog.String("path", r.URL.Path),
				)
				m.fail(w, r, ErrInsufficientRole)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}
