// Package validator validates request structs with go-playground/validator
// and reports failures as handler.ValidationError keyed by the field's
// json, query, path or file tag name. Messages come from the English
// universal-translator bundle, plus a custom "username" rule.
//
// Decorator validates every request an endpoint binds; request types that
// implement Sanitizer are sanitized first.
package validator
