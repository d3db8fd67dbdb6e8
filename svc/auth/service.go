// Package auth implements registration, email verification, login with an
// access and refresh token pair, password reset and the session renewal
// middleware.
//
// A user holds a single live refresh token. Only its SHA-256 hash is stored;
// a newer login replaces it and every earlier refresh token stops working.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/a-h/templ"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/blogify/pkg/email"
	"github.com/dmitrymomot/blogify/pkg/email/templates"
	"github.com/dmitrymomot/blogify/pkg/logger"
	"github.com/dmitrymomot/blogify/pkg/password"
	"github.com/dmitrymomot/blogify/pkg/sanitizer"
	"github.com/dmitrymomot/blogify/pkg/token"
	"github.com/dmitrymomot/blogify/svc/user"
)

// Service runs the authentication flows against the user store.
type Service struct {
	users  user.Store
	hasher password.Hasher
	tokens *TokenIssuer
	mailer email.EmailSender
	cfg    Config
	log    *slog.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides time.Now for token expiry and JWT timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(cfg Config, users user.Store, hasher password.Hasher, mailer email.EmailSender, opts ...Option) (*Service, error) {
	s := &Service{
		users:  users,
		hasher: hasher,
		mailer: mailer,
		cfg:    cfg,
		log:    slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("auth"))

	tokens, err := NewTokenIssuer(cfg, s.now)
	if err != nil {
		return nil, err
	}
	s.tokens = tokens
	return s, nil
}

// Tokens exposes the issuer, e.g. for the session middleware.
func (s *Service) Tokens() *TokenIssuer { return s.tokens }

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,min=3,max=30,username"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

func (in *RegisterInput) Sanitize() {
	in.Email = sanitizer.NormalizeEmail(in.Email)
	in.Username = sanitizer.NormalizeUsername(in.Username)
}

// Register creates a pending account and mails the verification link.
//
// The record and its verification token hash are written in one insert
// before the mail is sent. If delivery fails the account stays pending and
// the user recovers through ResendVerification.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*user.User, error) {
	in.Sanitize()

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if _, err := s.users.FindByUsername(ctx, in.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	verification, err := token.Issue(s.now(), s.cfg.OpaqueTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issue verification token: %w", err)
	}

	now := s.now()
	u := &user.User{
		Email:                      in.Email,
		Username:                   in.Username,
		PasswordHash:               hash,
		Role:                       user.RoleAuthor,
		Status:                     user.StatusPendingVerification,
		EmailVerificationTokenHash: verification.Hash,
		EmailVerificationExpiry:    &verification.ExpiresAt,
		CreatedAt:                  now,
		UpdatedAt:                  now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		switch {
		case errors.Is(err, user.ErrDuplicateEmail):
			return nil, ErrEmailTaken.Wrap(err)
		case errors.Is(err, user.ErrDuplicateUsername):
			return nil, ErrUsernameTaken.Wrap(err)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.InfoContext(ctx, "user registered", logger.UserID(u.ID.Hex()), logger.Event("user_registered"))

	if err := s.sendVerification(ctx, u, verification.Plain); err != nil {
		return nil, err
	}
	return u, nil
}

// VerifyEmail redeems a verification token. A token works once; the second
// call with the same value is not found.
func (s *Service) VerifyEmail(ctx context.Context, plain string) (*user.User, error) {
	if plain == "" {
		return nil, ErrEmptyToken
	}
	hash := token.Hash(plain)

	u, err := s.users.FindByTokenHash(ctx, user.TokenEmailVerification, hash)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("find verification token: %w", err)
	}
	if err := s.redeemable(u, user.TokenEmailVerification, plain, ErrVerificationExpired); err != nil {
		return nil, err
	}

	verified := true
	c := user.Changes{IsEmailVerified: &verified}
	if u.Status == user.StatusPendingVerification {
		active := user.StatusActive
		c.Status = &active
	}
	u, err = s.users.ConsumeToken(ctx, user.TokenEmailVerification, hash, c)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("consume verification token: %w", err)
	}

	s.log.InfoContext(ctx, "email verified", logger.UserID(u.ID.Hex()), logger.Event("email_verified"))

	if err := s.send(ctx, u.Email, "Welcome to "+s.cfg.AppName, "welcome",
		templates.Welcome(s.cfg.AppName, u.Username, s.cfg.BaseURL)); err != nil {
		s.log.WarnContext(ctx, "failed to send welcome email", logger.UserID(u.ID.Hex()), logger.Error(err))
	}
	return u, nil
}

// Session is the outcome of a successful login.
type Session struct {
	User         user.Summary `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"-"`
}

// Login verifies credentials and opens a new session, replacing the stored
// refresh token. The swap is conditional on the token read at the start, so
// of two concurrent logins only one wins; the other gets ErrConcurrentLogin.
func (s *Service) Login(ctx context.Context, emailAddr, plainPassword string) (Session, error) {
	u, err := s.users.FindByEmail(ctx, sanitizer.NormalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Session{}, ErrEmailNotRegistered
		}
		return Session{}, fmt.Errorf("find user: %w", err)
	}
	if err := s.hasher.Verify(u.PasswordHash, plainPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("verify password: %w", err)
	}
	if u.Status.Locked() {
		return Session{}, ErrAccountLocked
	}

	id := IdentityOf(u)
	access, err := s.tokens.IssueAccessToken(id)
	if err != nil {
		return Session{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefreshToken(id)
	if err != nil {
		return Session{}, fmt.Errorf("issue refresh token: %w", err)
	}

	login := &user.LoginChanges{At: s.now(), Reactivate: u.Status == user.StatusInactive}
	if err := s.users.SwapRefreshToken(ctx, u.ID, u.RefreshTokenHash, token.Hash(refresh), login); err != nil {
		if errors.Is(err, user.ErrRefreshTokenMismatch) {
			return Session{}, ErrConcurrentLogin.Wrap(err)
		}
		return Session{}, fmt.Errorf("store refresh token: %w", err)
	}

	s.log.InfoContext(ctx, "user logged in",
		logger.UserID(u.ID.Hex()),
		logger.Event("login"),
		slog.Bool("reactivated", login.Reactivate),
	)
	return Session{User: u.Summary(), AccessToken: access, RefreshToken: refresh}, nil
}

// Logout clears the stored refresh token. Calling it again is harmless.
func (s *Service) Logout(ctx context.Context, id bson.ObjectID) error {
	if _, err := s.users.Update(ctx, id, user.Changes{ClearRefreshToken: true}); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.ErrUserNotFound.Wrap(err)
		}
		return fmt.Errorf("clear refresh token: %w", err)
	}
	s.log.InfoContext(ctx, "user logged out", logger.UserID(id.Hex()), logger.Event("logout"))
	return nil
}

// ResendVerification issues a fresh verification token, replacing any
// outstanding one.
func (s *Service) ResendVerification(ctx context.Context, emailAddr string) error {
	u, err := s.users.FindByEmail(ctx, sanitizer.NormalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.ErrUserNotFound.Wrap(err)
		}
		return fmt.Errorf("find user: %w", err)
	}
	if u.IsEmailVerified {
		return ErrAlreadyVerified
	}

	t, err := s.storeToken(ctx, u.ID, user.TokenEmailVerification)
	if err != nil {
		return err
	}
	return s.sendVerification(ctx, u, t.Plain)
}

// ForgotPassword mails a reset link. Unknown addresses succeed silently so
// the endpoint does not reveal which emails have accounts.
func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) error {
	addr := sanitizer.NormalizeEmail(emailAddr)
	u, err := s.users.FindByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.log.WarnContext(ctx, "password reset requested for unknown email", logger.Email(addr))
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}
	if u.Status.Locked() {
		s.log.WarnContext(ctx, "password reset requested for locked account", logger.UserID(u.ID.Hex()))
		return nil
	}

	t, err := s.storeToken(ctx, u.ID, user.TokenPasswordReset)
	if err != nil {
		return err
	}
	return s.send(ctx, u.Email, "Reset your "+s.cfg.AppName+" password", "password-reset",
		templates.PasswordReset(s.cfg.AppName, u.Username, s.cfg.resetLink(t.Plain), s.cfg.OpaqueTokenTTL))
}

// ResetPasswordInput is the reset payload.
type ResetPasswordInput struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// ResetPassword redeems a reset token. The new hash, the cleared token pair
// and the cleared refresh token are written together.
func (s *Service) ResetPassword(ctx context.Context, plain, newPassword string) error {
	if plain == "" {
		return ErrEmptyToken
	}
	hash := token.Hash(plain)

	u, err := s.users.FindByTokenHash(ctx, user.TokenPasswordReset, hash)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrTokenNotFound
		}
		return fmt.Errorf("find reset token: %w", err)
	}
	if err := s.redeemable(u, user.TokenPasswordReset, plain, ErrResetExpired); err != nil {
		return err
	}

	pwHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if _, err := s.users.ConsumeToken(ctx, user.TokenPasswordReset, hash, user.Changes{
		PasswordHash:      &pwHash,
		ClearRefreshToken: true,
	}); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrTokenNotFound
		}
		return fmt.Errorf("consume reset token: %w", err)
	}

	s.log.InfoContext(ctx, "password reset", logger.UserID(u.ID.Hex()), logger.Event("password_reset"))
	return nil
}

// Renewal is a freshly minted access token for a still valid session.
type Renewal struct {
	Claims      Claims `json:"-"`
	AccessToken string `json:"accessToken"`
}

// Refresh validates a refresh token against the stored session and mints a
// new access token from the stored record.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Renewal, error) {
	if refreshToken == "" {
		return Renewal{}, ErrNoToken
	}
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return Renewal{}, ErrInvalidRefreshToken.Wrap(err)
	}
	id, err := claims.ObjectID()
	if err != nil {
		return Renewal{}, ErrInvalidRefreshToken.Wrap(err)
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Renewal{}, user.ErrUserNotFound.Wrap(err)
		}
		return Renewal{}, fmt.Errorf("find user: %w", err)
	}
	presented := token.Hash(refreshToken)
	if u.RefreshTokenHash == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(u.RefreshTokenHash)) != 1 {
		return Renewal{}, ErrSessionSuperseded
	}
	if u.Status.Locked() {
		return Renewal{}, ErrAccountLocked
	}

	access, err := s.tokens.IssueAccessToken(IdentityOf(u))
	if err != nil {
		return Renewal{}, fmt.Errorf("issue access token: %w", err)
	}
	fresh, err := s.tokens.VerifyAccessToken(access)
	if err != nil {
		return Renewal{}, fmt.Errorf("verify minted token: %w", err)
	}

	now := s.now()
	if _, err := s.users.Update(ctx, u.ID, user.Changes{LastActive: &now}); err != nil {
		s.log.WarnContext(ctx, "failed to record activity", logger.UserID(u.ID.Hex()), logger.Error(err))
	}
	return Renewal{Claims: fresh, AccessToken: access}, nil
}

// redeemable checks the presented token against the stored hash and expiry.
// expired is returned when only the expiry fails.
func (s *Service) redeemable(u *user.User, kind user.TokenKind, plain string, expired error) error {
	err := token.Check(s.now(), plain, u.TokenHash(kind), u.TokenExpiry(kind))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, token.ErrExpired):
		return expired
	default:
		return ErrTokenNotFound.Wrap(err)
	}
}

func (s *Service) storeToken(ctx context.Context, id bson.ObjectID, kind user.TokenKind) (token.Opaque, error) {
	t, err := token.Issue(s.now(), s.cfg.OpaqueTokenTTL)
	if err != nil {
		return token.Opaque{}, fmt.Errorf("issue token: %w", err)
	}
	if err := s.users.SetToken(ctx, id, kind, t.Hash, t.ExpiresAt); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return token.Opaque{}, user.ErrUserNotFound.Wrap(err)
		}
		return token.Opaque{}, fmt.Errorf("store token: %w", err)
	}
	return t, nil
}

func (s *Service) sendVerification(ctx context.Context, u *user.User, plain string) error {
	return s.send(ctx, u.Email, "Verify your "+s.cfg.AppName+" account", "email-verification",
		templates.Verification(s.cfg.AppName, u.Username, s.cfg.verificationLink(plain), s.cfg.OpaqueTokenTTL))
}

func (s *Service) send(ctx context.Context, to, subject, tag string, body templ.Component) error {
	html, err := templates.Render(ctx, body)
	if err != nil {
		return fmt.Errorf("render %s email: %w", tag, err)
	}
	if err := s.mailer.SendEmail(ctx, email.SendEmailParams{
		SendTo:   to,
		Subject:  subject,
		BodyHTML: html,
		Tag:      tag,
	}); err != nil {
		return ErrEmailDelivery.Wrap(err)
	}
	return nil
}
