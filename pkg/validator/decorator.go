package validator

import "github.com/dmitrymomot/blogify/handler"

// Sanitizer is implemented by request types that normalize themselves
// before validation.
type Sanitizer interface {
	Sanitize()
}

// Decorator sanitizes and validates the bound request before the handler runs.
// Validation failures short-circuit with a 400 error envelope.
func Decorator[C handler.Context, R any](v *Validator) handler.Decorator[C, R] {
	return func(next handler.HandlerFunc[C, R]) handler.HandlerFunc[C, R] {
		return func(ctx C, req R) handler.Response {
			if s, ok := any(&req).(Sanitizer); ok {
				s.Sanitize()
			}
			if err := v.Struct(req); err != nil {
				return handler.Error(err)
			}
			return next(ctx, req)
		}
	}
}
