package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/blogify/handler"
	"github.com/dmitrymomot/blogify/svc/auth"
	"github.com/dmitrymomot/blogify/svc/user"
)

type capture struct {
	claims auth.Claims
	ok     bool
	user   *user.User
}

func (p *capture) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.claims, p.ok = auth.ClaimsFromContext(r.Context())
		p.user = auth.UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func request(bearer, refresh string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/user/profile", nil)
	if bearer != "" {
		r.Header.Set("Authorization", "Bearer "+bearer)
	}
	if refresh != "" {
		r.AddCookie(&http.Cookie{Name: auth.RefreshCookieName, Value: refresh})
	}
	return r
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body handler.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func TestMiddleware_Required(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()
	u := f.verified(t, "a@x.com", "alice")
	session, err := f.svc.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	mw := auth.NewMiddleware(f.svc)

	t.Run("no token", func(t *testing.T) {
		p := &capture{}
		rec := httptest.NewRecorder()
		mw.Required(p.handler()).ServeHTTP(rec, request("", ""))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Unauthorized: no token provided", errorMessage(t, rec))
		assert.False(t, p.ok)
	})

	t.Run("valid access token", func(t *testing.T) {
		p := &capture{}
		rec := httptest.NewRecorder()
		mw.Required(p.handler()).ServeHTTP(rec, request(session.AccessToken, ""))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Authorization"), "no renewal on the fast path")
		require.True(t, p.ok)
		assert.Equal(t, u.ID.Hex(), p.claims.UserID)
	})

	t.Run("garbage access token without cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mw.Required((&capture{}).handler()).ServeHTTP(rec, request("not-a-jwt", ""))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid refresh token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mw.Required((&capture{}).handler()).ServeHTTP(rec, request("", session.AccessToken))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Invalid or expired refresh token", errorMessage(t, rec))
	})

	t.Run("unknown account", func(t *testing.T) {
		ghost, err := f.svc.Tokens().IssueRefreshToken(auth.Identity{ID: bson.NewObjectID().Hex(), Email: "g@x.com", Username: "ghost"})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		mw.Required((&capture{}).handler()).ServeHTTP(rec, request("", ghost))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestMiddleware_Renewal(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()
	u := f.verified(t, "a@x.com", "alice")
	session, err := f.svc.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	mw := auth.NewMiddleware(f.svc)
	f.clock.Advance(16 * time.Minute)

	p := &capture{}
	rec := httptest.NewRecorder()
	mw.Required(p.handler()).ServeHTTP(rec, request(session.AccessToken, session.RefreshToken))

	require.Equal(t, http.StatusOK, rec.Code)
	header := rec.Header().Get("Authorization")
	require.True(t, strings.HasPrefix(header, "Bearer "))
	renewed := strings.TrimPrefix(header, "Bearer ")
	assert.NotEqual(t, session.AccessToken, renewed)

	require.True(t, p.ok)
	assert.Equal(t, auth.IdentityOf(u), p.claims.Identity())

	claims, err := f.svc.Tokens().VerifyAccessToken(renewed)
	require.NoError(t, err)
	assert.Equal(t, u.ID.Hex(), claims.UserID)

	// A newer login supersedes the session held by this client.
	_, err = f.svc.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	f.clock.Advance(16 * time.Minute)

	rec = httptest.NewRecorder()
	mw.Required((&capture{}).handler()).ServeHTTP(rec, request(renewed, session.RefreshToken))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Invalid session, please login again", errorMessage(t, rec))
}

func TestMiddleware_LogoutThenRenewal(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()
	u := f.verified(t, "a@x.com", "alice")
	session, err := f.svc.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, f.svc.Logout(ctx, u.ID))

	rec := httptest.NewRecorder()
	auth.NewMiddleware(f.svc).Required((&capture{}).handler()).ServeHTTP(rec, request("", session.RefreshToken))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMiddleware_Optional(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	mw := auth.NewMiddleware(f.svc)

	p := &capture{}
	rec := httptest.NewRecorder()
	mw.Optional(p.handler()).ServeHTTP(rec, request("", "garbage"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, p.ok)

	f.verified(t, "a@x.com", "alice")
	session, err := f.svc.Login(context.Background(), "a@x.com", "secret1")
	require.NoError(t, err)

	p = &capture{}
	mw.Optional(p.handler()).ServeHTTP(httptest.NewRecorder(), request(session.AccessToken, ""))
	assert.True(t, p.ok)
}

func TestMiddleware_RequireRole(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()
	u := f.verified(t, "a@x.com", "alice")
	session, err := f.svc.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	mw := auth.NewMiddleware(f.svc)
	guarded := func(p *capture) http.Handler {
		return mw.Required(mw.RequireRole(user.RoleAdmin)(p.handler()))
	}

	rec := httptest.NewRecorder()
	guarded(&capture{}).ServeHTTP(rec, request(session.AccessToken, ""))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := user.RoleAdmin
	_, err = f.store.Update(ctx, u.ID, user.Changes{Role: &admin})
	require.NoError(t, err)

	p := &capture{}
	rec = httptest.NewRecorder()
	guarded(p).ServeHTTP(rec, request(session.AccessToken, ""))
	assert.Equal(t, http.StatusOK, rec.Code, "role changes apply without a new token")
	require.NotNil(t, p.user)
	assert.Equal(t, user.RoleAdmin, p.user.Role)
}

func TestMiddleware_RefreshExtractor(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	u := f.verified(t, "a@x.com", "alice")
	session, err := f.svc.Login(context.Background(), "a@x.com", "secret1")
	require.NoError(t, err)

	mw := auth.NewMiddleware(f.svc, auth.WithRefreshExtractor(func(r *http.Request) (string, error) {
		return r.Header.Get("X-Refresh-Token"), nil
	}))

	c := &capture{}
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Refresh-Token", session.RefreshToken)
	rec := httptest.NewRecorder()
	mw.Required(c.handler()).ServeHTTP(rec, r)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, u.ID.Hex(), c.claims.UserID)
	assert.NotEmpty(t, rec.Header().Get("Authorization"))

	// The cookie is ignored once another source is configured.
	rec = httptest.NewRecorder()
	mw.Required((&capture{}).handler()).ServeHTTP(rec, request("", session.RefreshToken))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
