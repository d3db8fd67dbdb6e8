package user

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func TestDuplicateKeyError(t *testing.T) {
	t.Parallel()

	dup := func(msg string) error {
		return mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: msg}}}
	}

	// The colliding values name the other field on purpose: only the index decides.
	assert.ErrorIs(t, duplicateKeyError(dup(
		`E11000 duplicate key error collection: blogify.users index: email_unique dup key: { email: "username@example.com" }`,
	)), ErrDuplicateEmail)
	assert.ErrorIs(t, duplicateKeyError(dup(
		`E11000 duplicate key error collection: blogify.users index: username_unique dup key: { username: "email" }`,
	)), ErrDuplicateUsername)

	unknown := dup(`E11000 duplicate key error collection: blogify.users index: _id_ dup key: { _id: 1 }`)
	assert.Equal(t, unknown, duplicateKeyError(unknown))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, duplicateKeyError(plain))
}
