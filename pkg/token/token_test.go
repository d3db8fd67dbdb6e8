package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/blogify/pkg/token"
)

func TestIssue(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	tok, err := token.Issue(now, 0)
	require.NoError(t, err)
	assert.Len(t, tok.Plain, 64)
	assert.Len(t, tok.Hash, 64)
	assert.NotEqual(t, tok.Plain, tok.Hash)
	assert.Equal(t, token.Hash(tok.Plain), tok.Hash)
	assert.Equal(t, now.Add(token.DefaultTTL), tok.ExpiresAt)

	other, err := token.Issue(now, time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, tok.Plain, other.Plain)
	assert.Equal(t, now.Add(time.Hour), other.ExpiresAt)
}

func TestExpiredBoundary(t *testing.T) {
	t.Parallel()

	exp := time.Date(2025, 3, 1, 10, 20, 0, 0, time.UTC)

	assert.False(t, token.Expired(exp.Add(-time.Second), exp))
	assert.False(t, token.Expired(exp, exp), "equal to expiry is still valid")
	assert.True(t, token.Expired(exp.Add(time.Millisecond), exp))
}

func TestCheck(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	tok, err := token.Issue(now, time.Minute)
	require.NoError(t, err)

	assert.NoError(t, token.Check(now, tok.Plain, tok.Hash, tok.ExpiresAt))
	assert.NoError(t, token.Check(tok.ExpiresAt, tok.Plain, tok.Hash, tok.ExpiresAt))
	assert.ErrorIs(t, token.Check(tok.ExpiresAt.Add(time.Millisecond), tok.Plain, tok.Hash, tok.ExpiresAt), token.ErrExpired)
	assert.ErrorIs(t, token.Check(now, "", tok.Hash, tok.ExpiresAt), token.ErrEmptyToken)
	assert.ErrorIs(t, token.Check(now, "wrong", tok.Hash, tok.ExpiresAt), token.ErrMismatch)
}
