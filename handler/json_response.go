package handler

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Envelope is the uniform success body.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
}

// ErrorEnvelope is the uniform failure body.
type ErrorEnvelope struct {
	StatusCode int                 `json:"statusCode"`
	Message    string              `json:"message"`
	Errors     map[string][]string `json:"errors,omitempty"`
}

type jsonResponse struct {
	status  int
	body    any
	headers http.Header
	cookies []*http.Cookie
}

func (j *jsonResponse) Render(w http.ResponseWriter, r *http.Request) error {
	for k, vs := range j.headers {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	for _, c := range j.cookies {
		http.SetCookie(w, c)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSONOption configures a JSON response.
type JSONOption func(*jsonResponse)

// WithStatus sets the HTTP status code.
func WithStatus(status int) JSONOption {
	return func(r *jsonResponse) {
		r.status = status
		if env, ok := r.body.(*Envelope); ok {
			env.StatusCode = status
		}
	}
}

// WithMessage sets the envelope message.
func WithMessage(msg string) JSONOption {
	return func(r *jsonResponse) {
		if env, ok := r.body.(*Envelope); ok {
			env.Message = msg
		}
	}
}

// WithHeader adds a response header.
func WithHeader(key, value string) JSONOption {
	return func(r *jsonResponse) {
		if r.headers == nil {
			r.headers = make(http.Header)
		}
		r.headers.Add(key, value)
	}
}

// WithCookie sets a cookie on the response. Nil cookies are ignored.
func WithCookie(c *http.Cookie) JSONOption {
	return func(r *jsonResponse) {
		if c != nil {
			r.cookies = append(r.cookies, c)
		}
	}
}

// JSON wraps data in the success envelope. Status defaults to 200 and the
// message to "Success".
func JSON(data any, opts ...JSONOption) Response {
	r := &jsonResponse{
		status: http.StatusOK,
		body:   &Envelope{StatusCode: http.StatusOK, Data: data, Message: "Success"},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Created is JSON with status 201.
func Created(data any, message string, opts ...JSONOption) Response {
	return JSON(data, append([]JSONOption{WithStatus(http.StatusCreated), WithMessage(message)}, opts...)...)
}

// JSONError renders err in the error envelope. Options may add headers or cookies.
func JSONError(err error, opts ...JSONOption) Response {
	body := errorEnvelope(err)
	r := &jsonResponse{status: body.StatusCode, body: body}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// errorEnvelope maps err to its public representation. Unknown errors never
// leak their text.
func errorEnvelope(err error) ErrorEnvelope {
	var verr ValidationError
	if errors.As(err, &verr) {
		return ErrorEnvelope{
			StatusCode: http.StatusBadRequest,
			Message:    "Validation failed",
			Errors:     map[string][]string(verr),
		}
	}

	var herr HTTPError
	if errors.As(err, &herr) {
		return ErrorEnvelope{StatusCode: herr.Code, Message: herr.Message}
	}

	return ErrorEnvelope{
		StatusCode: http.StatusInternalServerError,
		Message:    http.StatusText(http.StatusInternalServerError),
	}
}
