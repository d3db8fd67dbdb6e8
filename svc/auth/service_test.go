package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/blogify/handler"
	"github.com/dmitrymomot/blogify/pkg/password"
	"github.com/dmitrymomot/blogify/pkg/token"
	"github.com/dmitrymomot/blogify/svc/auth"
	"github.com/dmitrymomot/blogify/svc/user"
)

func testConfig() auth.Config {
	return auth.Config{
		AccessTokenSecret:  "access-secret",
		RefreshTokenSecret: "refresh-secret",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenTTL:    24 * time.Hour,
		OpaqueTokenTTL:     token.DefaultTTL,
		Issuer:             "blogify",
		AppName:            "Blogify",
		BaseURL:            "http://localhost:8080",
	}
}

type fixture struct {
	svc    *auth.Service
	store  user.Store
	mailer *mockSender
	clock  *clock
	hasher password.Hasher
}

func newFixture(t *testing.T, store user.Store) fixture {
	t.Helper()

	if store == nil {
		store = user.NewMemoryStore()
	}
	clk := &clock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	mailer := &mockSender{}
	mailer.On("SendEmail", mock.Anything, mock.Anything).Return(nil)
	hasher := password.NewBcrypt(4)

	svc, err := auth.NewService(testConfig(), store, hasher, mailer, auth.WithClock(clk.Now))
	require.NoError(t, err)
	return fixture{svc: svc, store: store, mailer: mailer, clock: clk, hasher: hasher}
}

func (f fixture) register(t *testing.T, emailAddr, username string) *user.User {
	t.Helper()
	u, err := f.svc.Register(context.Background(), auth.RegisterInput{Email: emailAddr, Username: username, Password: "secret1"})
	require.NoError(t, err)
	return u
}

func (f fixture) verified(t *testing.T, emailAddr, username string) *user.User {
	t.Helper()
	f.register(t, emailAddr, username)
	u, err := f.svc.VerifyEmail(context.Background(), f.mailer.lastToken(t, "email-verification"))
	require.NoError(t, err)
	return u
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, testConfig().Validate())

	same := testConfig()
	same.RefreshTokenSecret = same.AccessTokenSecret
	assert.ErrorIs(t, same.Validate(), auth.ErrInvalidConfig)

	ttl := testConfig()
	ttl.AccessTokenTTL = ttl.RefreshTokenTTL
	assert.ErrorIs(t, ttl.Validate(), auth.ErrInvalidConfig)

	_, err := auth.NewService(same, user.NewMemoryStore(), password.NewBcrypt(4), &mockSender{})
	assert.ErrorIs(t, err, auth.ErrInvalidConfig)
}

func TestRegisterAndVerify(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()

	u := f.register(t, " A@X.com ", "Alice")
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, user.StatusPendingVerification, u.Status)
	assert.False(t, u.IsEmailVerified)

	body, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "passwordHash")
	assert.NotContains(t, string(body), u.PasswordHash)
	assert.NotContains(t, string(body), u.EmailVerificationTokenHash)

	plain := f.mailer.lastToken(t, "email-verification")
	stored, err := f.store.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, token.Hash(plain), stored.EmailVerificationTokenHash, "only the hash is persisted")

	_, err = f.svc.VerifyEmail(ctx, "")
	assert.ErrorIs(t, err, auth.ErrEmptyToken)
	_, err = f.svc.VerifyEmail(ctx, "deadbeef")
	assert.ErrorIs(t, err, handler.ErrNotFound)

	verified, err := f.svc.VerifyEmail(ctx, plain)
	require.NoError(t, err)
	assert.True(t, verified.IsEmailVerified)
	assert.Equal(t, user.StatusActive, verified.Status)
	assert.Empty(t, verified.EmailVerificationTokenHash)
	assert.Nil(t, verified.EmailVerificationExpiry)
	assert.Equal(t, 1, f.mailer.sent("welcome"))

	_, err = f.svc.VerifyEmail(ctx, plain)
	assert.ErrorIs(t, err, auth.ErrTokenNotFound, "a token works once")
}

func TestRegister_Conflicts(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()
	f.register(t, "a@x.com", "alice")

	_, err := f.svc.Register(ctx, auth.RegisterInput{Email: "A@x.com", Username: "alice", Password: "secret1"})
	assert.ErrorIs(t, err, auth.ErrEmailTaken, "email is checked first")

	_, err = f.svc.Register(ctx, auth.RegisterInput{Email: "b@x.com", Username: "ALICE", Password: "secret1"})
	assert.ErrorIs(t, err, auth.ErrUsernameTaken)
	assert.NotErrorIs(t, err, auth.ErrEmailTaken)
}

func TestRegister_MailFailure(t *testing.T) {
	t.Parallel()

	store := user.NewMemoryStore()
	failing := &mockSender{}
	failing.On("SendEmail", mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()
	failing.On("SendEmail", mock.Anything, mock.Anything).Return(nil)

	svc, err := auth.NewService(testConfig(), store, password.NewBcrypt(4), failing)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Register(ctx, auth.RegisterInput{Email: "a@x.com", Username: "alice", Password: "secret1"})
	assert.ErrorIs(t, err, auth.ErrEmailDelivery)
	assert.ErrorIs(t, err, handler.ErrInternalServerError)

	u, err := store.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err, "the pending account is kept")
	assert.Equal(t, user.StatusPendingVerification, u.Status)

	require.NoError(t, svc.ResendVerification(ctx, "a@x.com"))
	_, err = svc.VerifyEmail(ctx, failing.lastToken(t, "email-verification"))
	require.NoError(t, err)
}

func TestVerifyEmail_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	t.Run("valid at the exact expiry instant", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)
		f.register(t, "a@x.com", "alice")
		f.clock.Advance(token.DefaultTTL)

		_, err := f.svc.VerifyEmail(context.Background(), f.mailer.lastToken(t, "email-verification"))
		assert.NoError(t, err)
	})

	t.Run("gone one millisecond later", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, nil)
		f.register(t, "a@x.com", "alice")
		f.clock.Advance(token.DefaultTTL + time.Millisecond)

		_, err := f.svc.VerifyEmail(context.Background(), f.mailer.lastToken(t, "email-verification"))
		assert.ErrorIs(t, err, auth.ErrVerificationExpired)
		assert.ErrorIs(t, err, handler.ErrGone)
	})
}

func TestResendVerification(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()
	f.register(t, "a@x.com", "alice")
	first := f.mailer.lastToken(t, "email-verification")

	assert.ErrorIs(t, f.svc.ResendVerification(ctx, "nobody@x.com"), user.ErrUserNotFound)

	require.NoError(t, f.svc.ResendVerification(ctx, "A@x.com"))
	second := f.mailer.lastToken(t, "email-verification")
	assert.NotEqual(t, first, second)

	_, err := f.svc.VerifyEmail(ctx, first)
	assert.ErrorIs(t, err, auth.ErrTokenNotFound, "resend replaces the outstanding token")
	_, err = f.svc.VerifyEmail(ctx, second)
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.ResendVerification(ctx, "a@x.com"), auth.ErrAlreadyVerified)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()
	u := f.verified(t, "a@x.com", "alice")

	_, err := f.svc.Login(ctx, "nobody@x.com", "secret1")
	assert.ErrorIs(t, err, auth.ErrEmailNotRegistered)
	assert.ErrorIs(t, err, handler.ErrNotFound)

	_, err = f.svc.Login(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.ErrorIs(t, err, handler.ErrUnauthorized)

	session, err := f.svc.Login(ctx, "A@X.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, session.User.ID)
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEqual(t, session.AccessToken, session.RefreshToken)

	stored, err := f.store.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, token.Hash(session.RefreshToken), stored.RefreshTokenHash)
	assert.Equal(t, 1, stored.LoginCount)
	require.NotNil(t, stored.LastLogin)
	assert.Equal(t, f.clock.Now(), *stored.LastLogin)

	claims, err := f.svc.Tokens().VerifyAccessToken(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, auth.IdentityOf(u), claims.Identity())

	_, err = f.svc.Tokens().VerifyAccessToken(session.RefreshToken)
	assert.Error(t, err, "refresh tokens are signed with a different secret")

	body, err := json.Marshal(session)
	require.NoError(t, err)
	assert.NotContains(t, string(body), session.RefreshToken)
}

func TestLogin_StatusPolicy(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()
	u := f.verified(t, "a@x.com", "alice")

	inactive := user.StatusInactive
	_, err := f.store.Update(ctx, u.ID, user.Changes{Status: &inactive})
	require.NoError(t, err)
	_, err = f.svc.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	stored, err := f.store.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, user.StatusActive, stored.Status, "login reactivates a deactivated account")

	for _, status := range []user.Status{user.StatusSuspended, user.StatusBanned} {
		_, err = f.store.Update(ctx, u.ID, user.Changes{Status: &status})
		require.NoError(t, err)
		_, err = f.svc.Login(ctx, "a@x.com", "secret1")
		assert.ErrorIs(t, err, auth.ErrAccountLocked, status)
	}
}

type racingStore struct {
	*user.MemoryStore
}

// FindByEmail simulates a second login landing between the read and the swap.
func (s racingStore) FindByEmail(ctx context.Context, emailAddr string) (*user.User, error) {
	u, err := s.MemoryStore.FindByEmail(ctx, emailAddr)
	if err == nil {
		_ = s.MemoryStore.SwapRefreshToken(ctx, u.ID, u.RefreshTokenHash, "other-login", nil)
	}
	return u, err
}

func TestLogin_ConcurrentSwap(t *testing.T) {
	t.Parallel()

	store := racingStore{user.NewMemoryStore()}
	f := newFixture(t, store)
	f.verified(t, "a@x.com", "alice")

	_, err := f.svc.Login(context.Background(), "a@x.com", "secret1")
	assert.ErrorIs(t, err, auth.ErrConcurrentLogin)
}

func TestRefresh_SingleSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()
	u := f.verified(t, "a@x.com", "alice")

	first, err := f.svc.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	second, err := f.svc.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	_, err = f.svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrSessionSuperseded)
	assert.ErrorIs(t, err, handler.ErrForbidden)

	f.clock.Advance(time.Minute)
	renewal, err := f.svc.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, second.AccessToken, renewal.AccessToken)
	assert.Equal(t, auth.IdentityOf(u), renewal.Claims.Identity())

	stored, err := f.store.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastActive)
	assert.Equal(t, f.clock.Now(), *stored.LastActive)

	_, err = f.svc.Refresh(ctx, "")
	assert.ErrorIs(t, err, auth.ErrNoToken)
	_, err = f.svc.Refresh(ctx, second.AccessToken)
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
}

func TestLogout(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()
	u := f.verified(t, "a@x.com", "alice")

	session, err := f.svc.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, u.ID))
	require.NoError(t, f.svc.Logout(ctx, u.ID), "logout is idempotent")

	_, err = f.svc.Refresh(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrSessionSuperseded)
}

func TestRefresh_LockedAccount(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()
	u := f.verified(t, "a@x.com", "alice")
	session, err := f.svc.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	banned := user.StatusBanned
	_, err = f.store.Update(ctx, u.ID, user.Changes{Status: &banned})
	require.NoError(t, err)

	_, err = f.svc.Refresh(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrAccountLocked)
}

func TestPasswordReset(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()
	u := f.verified(t, "a@x.com", "alice")
	session, err := f.svc.Login(ctx, "a@x.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, f.svc.ForgotPassword(ctx, "nobody@x.com"), "unknown emails are not revealed")
	assert.Zero(t, f.mailer.sent("password-reset"))

	require.NoError(t, f.svc.ForgotPassword(ctx, "a@x.com"))
	plain := f.mailer.lastToken(t, "password-reset")

	assert.ErrorIs(t, f.svc.ResetPassword(ctx, "", "newsecret"), auth.ErrEmptyToken)
	assert.ErrorIs(t, f.svc.ResetPassword(ctx, "deadbeef", "newsecret"), auth.ErrTokenNotFound)

	require.NoError(t, f.svc.ResetPassword(ctx, plain, "newsecret"))
	assert.ErrorIs(t, f.svc.ResetPassword(ctx, plain, "another"), auth.ErrTokenNotFound)

	stored, err := f.store.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NoError(t, f.hasher.Verify(stored.PasswordHash, "newsecret"))
	assert.Empty(t, stored.ForgotPasswordTokenHash)
	assert.Empty(t, stored.RefreshTokenHash, "reset ends the current session")

	_, err = f.svc.Refresh(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrSessionSuperseded)

	_, err = f.svc.Login(ctx, "a@x.com", "newsecret")
	assert.NoError(t, err)
}

func TestPasswordReset_Expired(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	ctx := context.Background()
	f.verified(t, "a@x.com", "alice")

	require.NoError(t, f.svc.ForgotPassword(ctx, "a@x.com"))
	f.clock.Advance(token.DefaultTTL + time.Second)

	err := f.svc.ResetPassword(ctx, f.mailer.lastToken(t, "password-reset"), "newsecret")
	assert.ErrorIs(t, err, auth.ErrResetExpired)
	assert.ErrorIs(t, err, handler.ErrGone)
}
