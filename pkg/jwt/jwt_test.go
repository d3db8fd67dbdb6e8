package jwt_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/blogify/pkg/jwt"
)

type testClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := jwt.New(nil)
	assert.ErrorIs(t, err, jwt.ErrMissingSigningKey)

	_, err = jwt.NewFromString("")
	assert.ErrorIs(t, err, jwt.ErrMissingSigningKey)

	svc, err := jwt.NewFromString("secret", jwt.WithTTL(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, time.Minute, svc.TTL())
}

func TestGenerateAndParse(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	svc, err := jwt.NewFromString("secret", jwt.WithTTL(time.Minute), jwt.WithIssuer("blogify"), jwt.WithClock(clock))
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		in := testClaims{RegisteredClaims: svc.RegisteredClaims("user-1"), Email: "a@x.com"}
		token, err := svc.Generate(in)
		require.NoError(t, err)

		var out testClaims
		require.NoError(t, svc.Parse(token, &out))
		assert.Equal(t, "user-1", out.Subject)
		assert.Equal(t, "a@x.com", out.Email)
		assert.Equal(t, in.ID, out.ID)
	})

	t.Run("unique jti", func(t *testing.T) {
		t.Parallel()

		a := svc.RegisteredClaims("user-1")
		b := svc.RegisteredClaims("user-1")
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("expired", func(t *testing.T) {
		t.Parallel()

		token, err := svc.Generate(testClaims{RegisteredClaims: svc.RegisteredClaims("user-1")})
		require.NoError(t, err)

		later, err := jwt.NewFromString("secret", jwt.WithIssuer("blogify"), jwt.WithClock(func() time.Time {
			return now.Add(2 * time.Minute)
		}))
		require.NoError(t, err)

		var out testClaims
		err = later.Parse(token, &out)
		assert.ErrorIs(t, err, jwt.ErrExpiredToken)
	})

	t.Run("wrong key", func(t *testing.T) {
		t.Parallel()

		other, err := jwt.NewFromString("other", jwt.WithIssuer("blogify"), jwt.WithClock(clock))
		require.NoError(t, err)
		token, err := other.Generate(testClaims{RegisteredClaims: other.RegisteredClaims("user-1")})
		require.NoError(t, err)

		var out testClaims
		assert.ErrorIs(t, svc.Parse(token, &out), jwt.ErrInvalidSignature)
	})

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()

		var out testClaims
		assert.ErrorIs(t, svc.Parse("not.a.token", &out), jwt.ErrInvalidToken)
		assert.ErrorIs(t, svc.Parse("", &out), jwt.ErrMissingToken)
	})

	t.Run("missing expiry", func(t *testing.T) {
		t.Parallel()

		token, err := svc.Generate(testClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "x", Issuer: "blogify"}})
		require.NoError(t, err)

		var out testClaims
		assert.ErrorIs(t, svc.Parse(token, &out), jwt.ErrInvalidToken)
	})

	t.Run("rejects other algorithms", func(t *testing.T) {
		t.Parallel()

		c := testClaims{RegisteredClaims: svc.RegisteredClaims("user-1")}
		token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS512, c).SignedString([]byte("secret"))
		require.NoError(t, err)

		var out testClaims
		assert.ErrorIs(t, svc.Parse(token, &out), jwt.ErrInvalidSignature)
	})
}

func TestExtractors(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := jwt.BearerTokenExtractor(r)
	assert.ErrorIs(t, err, jwt.ErrMissingToken)

	jwt.SetBearer(r.Header, "abc")
	tok, err := jwt.BearerTokenExtractor(r)
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	r.Header.Set("Authorization", "bearer xyz")
	tok, err = jwt.BearerTokenExtractor(r)
	require.NoError(t, err)
	assert.Equal(t, "xyz", tok)

	r.Header.Set("Authorization", "Basic xyz")
	_, err = jwt.BearerTokenExtractor(r)
	assert.Error(t, err)

	extract := jwt.CookieTokenExtractor("refreshToken")
	_, err = extract(r)
	assert.ErrorIs(t, err, jwt.ErrMissingToken)

	r.AddCookie(&http.Cookie{Name: "refreshToken", Value: "rt"})
	tok, err = extract(r)
	require.NoError(t, err)
	assert.Equal(t, "rt", tok)
}
