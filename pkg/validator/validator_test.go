package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/blogify/handler"
	"github.com/dmitrymomot/blogify/pkg/validator"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=15,username"`
	Password string `json:"password" validate:"required,min=6"`
	Profile  struct {
		Bio string `json:"bio" validate:"max=5"`
	} `json:"profile"`
}

func TestStruct(t *testing.T) {
	t.Parallel()

	v := validator.New()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		in := signup{Email: "a@x.com", Username: "alice_1", Password: "secret1"}
		assert.NoError(t, v.Struct(in))
	})

	t.Run("field errors keyed by json name", func(t *testing.T) {
		t.Parallel()

		in := signup{Email: "nope", Username: "a b", Password: "123"}
		in.Profile.Bio = "too long"

		err := v.Struct(in)
		require.Error(t, err)

		var verr handler.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.True(t, verr.Has("email"))
		assert.True(t, verr.Has("password"))
		assert.True(t, verr.Has("profile.bio"))
		assert.Contains(t, verr.Get("username"), "letters, numbers")
	})

	t.Run("required", func(t *testing.T) {
		t.Parallel()

		err := v.Struct(signup{})
		var verr handler.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "email is a required field", verr.Get("email"))
	})
}

func TestVar(t *testing.T) {
	t.Parallel()

	v := validator.New()
	assert.NoError(t, v.Var("email", "a@x.com", "required,email"))

	err := v.Var("email", "", "required,email")
	var verr handler.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("email"))
}
