package password_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/blogify/pkg/password"
)

func TestHashers(t *testing.T) {
	t.Parallel()

	hashers := map[string]password.Hasher{
		"bcrypt": password.NewBcrypt(bcrypt.MinCost),
		"argon2": password.NewArgon2(),
	}

	for name, h := range hashers {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			hash, err := h.Hash("secret1")
			require.NoError(t, err)
			assert.NotContains(t, hash, "secret1")

			assert.NoError(t, h.Verify(hash, "secret1"))
			assert.ErrorIs(t, h.Verify(hash, "secret2"), password.ErrMismatch)
			assert.ErrorIs(t, h.Verify(hash, ""), password.ErrMismatch)

			again, err := h.Hash("secret1")
			require.NoError(t, err)
			assert.NotEqual(t, hash, again, "salted")

			_, err = h.Hash("")
			assert.ErrorIs(t, err, password.ErrEmptyPassword)
		})
	}
}

func TestCrossAlgorithmVerify(t *testing.T) {
	t.Parallel()

	argonHash, err := password.NewArgon2().Hash("pw123456")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(argonHash, "$argon2id"))

	assert.NoError(t, password.NewBcrypt(bcrypt.MinCost).Verify(argonHash, "pw123456"))
	assert.ErrorIs(t, password.NewBcrypt(bcrypt.MinCost).Verify("plain-text", "pw123456"), password.ErrMalformedHash)
}

func TestNew(t *testing.T) {
	t.Parallel()

	h, err := password.New(password.Config{Algorithm: "argon2id"})
	require.NoError(t, err)
	assert.NotNil(t, h)

	h, err = password.New(password.Config{BcryptCost: 99})
	require.NoError(t, err)
	assert.NotNil(t, h)

	_, err = password.New(password.Config{Algorithm: "md5"})
	assert.ErrorIs(t, err, password.ErrUnknownAlgorithm)
}
