package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/blogify/pkg/cookie"
)

func TestManager_SetGet(t *testing.T) {
	t.Parallel()

	m := cookie.New()
	rec := httptest.NewRecorder()
	m.Set(rec, "refreshToken", "abc", cookie.WithTTL(24*time.Hour))

	res := rec.Result()
	cookies := res.Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "refreshToken", c.Name)
	assert.Equal(t, "abc", c.Value)
	assert.Equal(t, 86400, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	v, err := m.Get(req, "refreshToken")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)
}

func TestManager_GetMissing(t *testing.T) {
	t.Parallel()

	m := cookie.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := m.Get(req, "refreshToken")
	assert.ErrorIs(t, err, cookie.ErrCookieNotFound)

	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: ""})
	_, err = m.Get(req, "refreshToken")
	assert.ErrorIs(t, err, cookie.ErrCookieNotFound)
}

func TestManager_Delete(t *testing.T) {
	t.Parallel()

	m := cookie.NewFromConfig(cookie.Config{Path: "/api", Domain: "example.com", Secure: true, SameSite: "strict"})
	rec := httptest.NewRecorder()
	m.Delete(rec, "refreshToken")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "", c.Value)
	assert.Equal(t, -1, c.MaxAge)
	assert.Equal(t, "/api", c.Path)
	assert.Equal(t, "example.com", c.Domain)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
}
