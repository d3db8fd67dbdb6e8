package jwt_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/blogify/pkg/jwt"
)

func TestContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, ok := jwt.GetClaims[testClaims](ctx)
	assert.False(t, ok)

	ctx = jwt.SetClaims(ctx, testClaims{Email: "a@x.com"})

	c, ok := jwt.GetClaims[testClaims](ctx)
	assert.True(t, ok)
	assert.Equal(t, "a@x.com", c.Email)

	_, ok = jwt.GetClaims[*testClaims](ctx)
	assert.False(t, ok)
}
