package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/blogify/handler"
	"github.com/dmitrymomot/blogify/pkg/binder"
)

type createRequest struct {
	Title string `json:"title"`
	Page  int    `query:"page"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestWrap(t *testing.T) {
	t.Parallel()

	t.Run("binds and renders envelope", func(t *testing.T) {
		t.Parallel()

		h := handler.Wrap(func(ctx handler.Context, req createRequest) handler.Response {
			return handler.Created(map[string]any{"title": req.Title, "page": req.Page}, "created",
				handler.WithHeader("Authorization", "Bearer x"),
				handler.WithCookie(&http.Cookie{Name: "c", Value: "v"}),
			)
		}, handler.WithBinders[handler.Context, createRequest](binder.Query(), binder.JSON()))

		r := httptest.NewRequest(http.MethodPost, "/?page=2", strings.NewReader(`{"title":"hello"}`))
		r.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h(rec, r)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "Bearer x", rec.Header().Get("Authorization"))
		assert.Contains(t, rec.Header().Get("Set-Cookie"), "c=v")

		body := decode[handler.Envelope](t, rec)
		assert.Equal(t, http.StatusCreated, body.StatusCode)
		assert.Equal(t, "created", body.Message)
		assert.Equal(t, map[string]any{"title": "hello", "page": float64(2)}, body.Data)
	})

	t.Run("binder error is bad request", func(t *testing.T) {
		t.Parallel()

		h := handler.Wrap(func(ctx handler.Context, req createRequest) handler.Response {
			t.Fatal("handler must not run")
			return nil
		}, handler.WithBinders[handler.Context, createRequest](binder.JSON()))

		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":`))
		r.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h(rec, r)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode[handler.ErrorEnvelope](t, rec)
		assert.Equal(t, http.StatusBadRequest, body.StatusCode)
	})

	t.Run("unsupported media type", func(t *testing.T) {
		t.Parallel()

		h := handler.Wrap(func(ctx handler.Context, req createRequest) handler.Response {
			return handler.Empty()
		}, handler.WithBinders[handler.Context, createRequest](binder.JSON()))

		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`title=x`))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		h(rec, r)

		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()

		h := handler.Wrap(func(ctx handler.Context, req struct{}) handler.Response { return nil })
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("decorators run outermost first", func(t *testing.T) {
		t.Parallel()

		var order []string
		mk := func(name string) handler.Decorator[handler.Context, struct{}] {
			return func(next handler.HandlerFunc[handler.Context, struct{}]) handler.HandlerFunc[handler.Context, struct{}] {
				return func(ctx handler.Context, req struct{}) handler.Response {
					order = append(order, name)
					return next(ctx, req)
				}
			}
		}

		h := handler.Wrap(func(ctx handler.Context, req struct{}) handler.Response {
			order = append(order, "handler")
			return handler.Empty()
		}, handler.WithDecorators(mk("a"), mk("b")))

		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, []string{"a", "b", "handler"}, order)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestJSONError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"http error", handler.NewHTTPError(http.StatusConflict, "Email is already registered"), http.StatusConflict, "Email is already registered"},
		{"wrapped http error", handler.ErrNotFound.Wrap(errors.New("db")), http.StatusNotFound, "Not Found"},
		{"unknown error hides details", errors.New("connection refused"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			require.NoError(t, handler.JSONError(tt.err).Render(rec, httptest.NewRequest(http.MethodGet, "/", nil)))
			assert.Equal(t, tt.status, rec.Code)

			body := decode[handler.ErrorEnvelope](t, rec)
			assert.Equal(t, tt.status, body.StatusCode)
			assert.Equal(t, tt.message, body.Message)
		})
	}

	t.Run("validation error", func(t *testing.T) {
		t.Parallel()

		verr := handler.NewValidationError()
		verr.Add("email", "email is required")

		rec := httptest.NewRecorder()
		require.NoError(t, handler.JSONError(verr).Render(rec, httptest.NewRequest(http.MethodGet, "/", nil)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		body := decode[handler.ErrorEnvelope](t, rec)
		assert.Equal(t, []string{"email is required"}, body.Errors["email"])
	})
}

func TestHTTPErrorIs(t *testing.T) {
	t.Parallel()

	taken := handler.NewHTTPError(http.StatusConflict, "Username is already taken")
	wrapped := taken.Wrap(errors.New("duplicate key"))

	assert.ErrorIs(t, wrapped, taken)
	assert.ErrorIs(t, wrapped, handler.ErrConflict)
	assert.NotErrorIs(t, wrapped, handler.NewHTTPError(http.StatusConflict, "Email is already registered"))
	assert.NotErrorIs(t, wrapped, handler.ErrNotFound)
	assert.Equal(t, "Username is already taken: duplicate key", wrapped.Error())
	assert.Nil(t, handler.NewValidationError().Err())
}

func TestNewErrorHandler(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := slog.New(slog.NewJSONHandler(buf, nil))
	eh := handler.NewErrorHandler(log)

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/boom", nil)
	eh(handler.NewContext(rec, r), errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
	assert.Contains(t, buf.String(), `"path":"/boom"`)

	buf.Reset()
	rec = httptest.NewRecorder()
	eh(handler.NewContext(rec, r), handler.ErrForbidden)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
}

func TestErrorResponse(t *testing.T) {
	t.Parallel()

	var got error
	h := handler.Wrap(func(ctx handler.Context, _ struct{}) handler.Response {
		return handler.Error(handler.ErrGone.WithMessage("Token has expired"))
	}, handler.WithErrorHandler[handler.Context, struct{}](func(ctx handler.Context, err error) {
		got = err
		handler.WriteError(ctx.ResponseWriter(), ctx.Request(), err)
	}))

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.ErrorIs(t, got, handler.ErrGone)
	assert.Equal(t, http.StatusGone, rec.Code)
	assert.Equal(t, "Token has expired", decode[handler.ErrorEnvelope](t, rec).Message)
}
