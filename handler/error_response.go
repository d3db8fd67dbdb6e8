package handler

import "net/http"

type errorResponse struct {
	err error
}

// Render hands the error back to Wrap so the configured ErrorHandler logs
// and renders it.
func (e errorResponse) Render(http.ResponseWriter, *http.Request) error {
	return e.err
}

// Error returns a response that defers to the route's ErrorHandler.
// Services return HTTPError values and handlers pass them through here.
func Error(err error) Response {
	if err == nil {
		err = ErrInternalServerError
	}
	return errorResponse{err: err}
}
