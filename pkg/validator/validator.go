package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/dmitrymomot/blogify/handler"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Validator is safe for concurrent use; create one and share it.
type Validator struct {
	v     *validator.Validate
	trans ut.Translator
}

// New builds a validator with English messages and the custom "username" rule.
func New() *Validator {
	locale := en.New()
	trans, _ := ut.New(locale, locale).GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query", "path", "file"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})

	_ = entranslations.RegisterDefaultTranslations(v, trans)

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRegex.MatchString(fl.Field().String())
	})
	_ = v.RegisterTranslation("username", trans,
		func(t ut.Translator) error {
			return t.Add("username", "{0} may contain only letters, numbers, underscores and hyphens", true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T("username", fe.Field())
			return msg
		},
	)

	return &Validator{v: v, trans: trans}
}

// Struct validates s. Rule failures are returned as handler.ValidationError;
// anything else (e.g. passing a non-struct) is returned as is.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := handler.NewValidationError()
	for _, fe := range fieldErrs {
		out.Add(fieldPath(fe), fe.Translate(v.trans))
	}
	return out
}

// Var validates a single value against tag, reporting failures under field.
func (v *Validator) Var(field string, value any, tag string) error {
	err := v.v.Var(value, tag)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := handler.NewValidationError()
	for _, fe := range fieldErrs {
		out.Add(field, field+" "+strings.TrimSpace(fe.Translate(v.trans)))
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace:
// "RegisterRequest.profile.firstName" becomes "profile.firstName".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}
