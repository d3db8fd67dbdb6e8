package handler

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/blogify/pkg/logger"
)

// NewErrorHandler returns the error handler shared by all routes: it logs the
// error (warn for 4xx, error for 5xx) and renders the error envelope.
// Configure this once in main and pass it to every module.
func NewErrorHandler(log *slog.Logger) ErrorHandler[Context] {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx Context, err error) {
		resp := JSONError(err)
		status := resp.(*jsonResponse).status

		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}

		r := ctx.Request()
		log.LogAttrs(r.Context(), level, "request error",
			logger.Error(err),
			slog.Int("status_code", status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("error_handler"),
		)

		if renderErr := resp.Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.LogAttrs(r.Context(), slog.LevelError, "failed to render error response",
				logger.Error(renderErr),
				logger.Component("error_handler"),
			)
		}
	}
}
