// Package endpoint holds the route wiring shared by the HTTP modules.
package endpoint

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/blogify/handler"
	mongox "github.com/dmitrymomot/blogify/pkg/mongo"
	"github.com/dmitrymomot/blogify/pkg/validator"
	"github.com/dmitrymomot/blogify/svc/auth"
)

// Config is what every route of a module is wrapped with.
type Config struct {
	Validator    *validator.Validator
	ErrorHandler handler.ErrorHandler[handler.Context]
}

// Wrap binds, sanitizes and validates R before h runs.
func Wrap[R any](cfg Config, h handler.HandlerFunc[handler.Context, R], binders ...handler.Bind) http.HandlerFunc {
	return handler.Wrap(h,
		handler.WithBinders[handler.Context, R](binders...),
		handler.WithDecorators(validator.Decorator[handler.Context, R](cfg.Validator)),
		handler.WithErrorHandler[handler.Context, R](cfg.ErrorHandler),
	)
}

// CurrentUser returns the id attached by the session middleware.
func CurrentUser(ctx handler.Context) (bson.ObjectID, error) {
	id, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return bson.ObjectID{}, auth.ErrNoToken
	}
	return id, nil
}

// OptionalUser returns the id when the request is authenticated and the
// zero id otherwise.
func OptionalUser(ctx handler.Context) bson.ObjectID {
	id, _ := auth.UserIDFromContext(ctx)
	return id
}

// ParseID converts a hex id from the request into a 400 on failure.
func ParseID(hex string) (bson.ObjectID, error) {
	id, err := mongox.ParseID(hex)
	if err != nil {
		return bson.ObjectID{}, handler.ErrBadRequest.WithMessage("Invalid id").Wrap(err)
	}
	return id, nil
}

// PathID parses the route parameter name. It serves routes whose request
// type is bound from the body.
func PathID(ctx handler.Context, name string) (bson.ObjectID, error) {
	return ParseID(chi.URLParam(ctx.Request(), name))
}
