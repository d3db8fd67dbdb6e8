package binder_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/blogify/pkg/binder"
)

type request struct {
	ID     string   `path:"id"`
	Page   int      `query:"page"`
	Tags   []string `query:"tags"`
	Draft  *bool    `query:"draft"`
	Email  string   `json:"email" query:"email"`
	Secret string   `json:"secret"`
}

func TestJSON(t *testing.T) {
	t.Parallel()

	bind := binder.JSON()

	t.Run("decodes body", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@x.com","secret":"s"}`))
		r.Header.Set("Content-Type", "application/json; charset=utf-8")

		var req request
		require.NoError(t, bind(r, &req))
		assert.Equal(t, "a@x.com", req.Email)
		assert.Equal(t, "s", req.Secret)
	})

	t.Run("empty body not applicable", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		var req request
		assert.ErrorIs(t, bind(r, &req), binder.ErrBinderNotApplicable)
	})

	t.Run("wrong content type", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		r.Header.Set("Content-Type", "text/plain")
		var req request
		assert.ErrorIs(t, bind(r, &req), binder.ErrUnsupportedMediaType)
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"role":"admin"}`))
		r.Header.Set("Content-Type", "application/json")
		var req request
		assert.ErrorIs(t, bind(r, &req), binder.ErrInvalidJSON)
	})

	t.Run("trailing data", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a"}{"email":"b"}`))
		r.Header.Set("Content-Type", "application/json")
		var req request
		assert.ErrorIs(t, bind(r, &req), binder.ErrInvalidJSON)
	})
}

func TestQuery(t *testing.T) {
	t.Parallel()

	bind := binder.Query()

	r := httptest.NewRequest(http.MethodGet, "/?page=3&tags=go,web&tags=api&draft=yes&email=a@x.com&secret=nope", nil)
	var req request
	require.NoError(t, bind(r, &req))
	assert.Equal(t, 3, req.Page)
	assert.Equal(t, []string{"go", "web", "api"}, req.Tags)
	require.NotNil(t, req.Draft)
	assert.True(t, *req.Draft)
	assert.Equal(t, "a@x.com", req.Email)
	assert.Empty(t, req.Secret, "fields without a query tag are not bound")

	r = httptest.NewRequest(http.MethodGet, "/?page=abc", nil)
	assert.ErrorIs(t, bind(r, &req), binder.ErrInvalidQuery)
}

func TestPath(t *testing.T) {
	t.Parallel()

	bind := binder.Path(func(r *http.Request, name string) string {
		if name == "id" {
			return "42"
		}
		return ""
	})

	var req request
	require.NoError(t, bind(httptest.NewRequest(http.MethodGet, "/", nil), &req))
	assert.Equal(t, "42", req.ID)

	var notStruct string
	assert.ErrorIs(t, bind(httptest.NewRequest(http.MethodGet, "/", nil), &notStruct), binder.ErrInvalidPath)
}

type uploadRequest struct {
	Avatar binder.FileUpload  `file:"avatar"`
	Cover  *binder.FileUpload `file:"cover"`
}

func TestFile(t *testing.T) {
	t.Parallel()

	bind := binder.File()

	t.Run("not multipart", func(t *testing.T) {
		t.Parallel()

		var req uploadRequest
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		r.Header.Set("Content-Type", "application/json")
		assert.ErrorIs(t, bind(r, &req), binder.ErrBinderNotApplicable)
	})

	t.Run("reads files", func(t *testing.T) {
		t.Parallel()

		png := []byte("\x89PNG\r\n\x1a\n" + strings.Repeat("\x00", 32))

		body := &bytes.Buffer{}
		mw := multipart.NewWriter(body)
		fw, err := mw.CreateFormFile("avatar", "me.png")
		require.NoError(t, err)
		_, err = fw.Write(png)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		r := httptest.NewRequest(http.MethodPost, "/", body)
		r.Header.Set("Content-Type", mw.FormDataContentType())

		var req uploadRequest
		require.NoError(t, bind(r, &req))
		assert.Equal(t, "me.png", req.Avatar.Filename)
		assert.Equal(t, png, req.Avatar.Content)
		assert.Equal(t, "image/png", req.Avatar.ContentType())
		assert.Nil(t, req.Cover)
	})
}
