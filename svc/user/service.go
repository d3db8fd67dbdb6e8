package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/blogify/pkg/file"
	"github.com/dmitrymomot/blogify/pkg/logger"
	"github.com/dmitrymomot/blogify/pkg/pagination"
	"github.com/dmitrymomot/blogify/pkg/password"
	"github.com/dmitrymomot/blogify/pkg/sanitizer"
)

// MaxAvatarSize caps avatar uploads.
const MaxAvatarSize = 5 << 20

// Service implements profile, social graph and account lifecycle operations.
type Service struct {
	store  Store
	hasher password.Hasher
	files  file.Storage
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

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithFileStorage enables avatar uploads.
func WithFileStorage(fs file.Storage) Option {
	return func(s *Service) {
		s.files = fs
	}
}

func NewService(store Store, hasher password.Hasher, opts ...Option) *Service {
	s := &Service{
		store:  store,
		hasher: hasher,
		log:    slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("user"))
	return s
}

// notFound maps ErrNotFound to the client error and wraps the rest.
func notFound(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrUserNotFound.Wrap(err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Service) Get(ctx context.Context, id bson.ObjectID) (*User, error) {
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("get user", err)
	}
	return u, nil
}

// PublicByUsername returns the public profile of an active user.
func (s *Service) PublicByUsername(ctx context.Context, username string) (PublicProfile, error) {
	u, err := s.store.FindByUsername(ctx, sanitizer.NormalizeUsername(username))
	if err != nil {
		return PublicProfile{}, notFound("find by username", err)
	}
	if u.Status != StatusActive {
		return PublicProfile{}, ErrUserNotFound
	}
	return u.Public(), nil
}

func (s *Service) UpdateProfile(ctx context.Context, id bson.ObjectID, in ProfileInput) (*User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p := in.merge(u.Profile)
	u, err = s.store.Update(ctx, id, Changes{Profile: &p})
	if err != nil {
		return nil, notFound("update profile", err)
	}
	return u, nil
}

// UploadAvatar stores the image and points the profile at it. The previous
// object is removed after the record is updated; a failed removal only leaves
// an orphan behind.
func (s *Service) UploadAvatar(ctx context.Context, id bson.ObjectID, body []byte, contentType, alt string) (*User, error) {
	if s.files == nil {
		return nil, ErrUploadsDisabled
	}
	if err := file.Validate(body, contentType, MaxAvatarSize, file.ImageTypes...); err != nil {
		if errors.Is(err, file.ErrFileTooLarge) {
			return nil, ErrAvatarTooLarge.Wrap(err)
		}
		return nil, ErrInvalidAvatar.Wrap(err)
	}

	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	obj, err := s.files.Put(ctx, file.NewKey("avatars/"+id.Hex(), contentType), body, contentType)
	if err != nil {
		return nil, fmt.Errorf("store avatar: %w", err)
	}

	updated, err := s.store.Update(ctx, id, Changes{Avatar: &Avatar{
		URL: obj.URL,
		Key: obj.Key,
		Alt: sanitizer.Truncate(sanitizer.SingleLine(alt), 200),
	}})
	if err != nil {
		s.removeObject(ctx, obj.Key)
		return nil, notFound("set avatar", err)
	}

	if u.Avatar != nil && u.Avatar.Key != "" {
		s.removeObject(ctx, u.Avatar.Key)
	}
	return updated, nil
}

func (s *Service) removeObject(ctx context.Context, key string) {
	if err := s.files.Delete(ctx, key); err != nil {
		s.log.WarnContext(ctx, "failed to delete stored object",
			slog.String("key", key),
			logger.Error(err),
		)
	}
}

// ChangePassword verifies the old password, stores the new hash and ends the
// current session.
func (s *Service) ChangePassword(ctx context.Context, id bson.ObjectID, oldPassword, newPassword string) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.hasher.Verify(u.PasswordHash, oldPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return ErrWrongPassword
		}
		return fmt.Errorf("verify password: %w", err)
	}
	if oldPassword == newPassword {
		return ErrSamePassword
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if _, err := s.store.Update(ctx, id, Changes{PasswordHash: &hash, ClearRefreshToken: true}); err != nil {
		return notFound("change password", err)
	}

	s.log.InfoContext(ctx, "password changed", logger.UserID(id.Hex()), logger.Event("password_changed"))
	return nil
}

// Deactivate soft-removes the account. The next successful login reactivates it.
func (s *Service) Deactivate(ctx context.Context, id bson.ObjectID) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if u.Status == StatusInactive {
		return ErrAlreadyDeactivated
	}

	status, now := StatusInactive, s.now()
	if _, err := s.store.Update(ctx, id, Changes{
		Status:            &status,
		DeactivatedAt:     &now,
		ClearRefreshToken: true,
	}); err != nil {
		return notFound("deactivate", err)
	}

	s.log.InfoContext(ctx, "account deactivated", logger.UserID(id.Hex()), logger.Event("account_deactivated"))
	return nil
}

// pair loads both sides of a graph operation.
func (s *Service) pair(ctx context.Context, me, target bson.ObjectID) (*User, *User, error) {
	if me == target {
		return nil, nil, ErrSelfAction
	}
	actor, err := s.Get(ctx, me)
	if err != nil {
		return nil, nil, err
	}
	other, err := s.Get(ctx, target)
	if err != nil {
		return nil, nil, err
	}
	if other.Status != StatusActive {
		return nil, nil, ErrUserNotFound
	}
	return actor, other, nil
}

func (s *Service) Follow(ctx context.Context, me, target bson.ObjectID) error {
	actor, other, err := s.pair(ctx, me, target)
	if err != nil {
		return err
	}
	if other.HasBlocked(me) {
		return ErrBlockedByUser
	}
	if actor.HasBlocked(target) {
		return ErrUnblockFirst
	}
	if err := s.store.Follow(ctx, me, target); err != nil {
		return notFound("follow", err)
	}
	return nil
}

func (s *Service) Unfollow(ctx context.Context, me, target bson.ObjectID) error {
	if me == target {
		return ErrSelfAction
	}
	if err := s.store.Unfollow(ctx, me, target); err != nil {
		return notFound("unfollow", err)
	}
	return nil
}

// Block also drops follow edges in both directions.
func (s *Service) Block(ctx context.Context, me, target bson.ObjectID) error {
	if me == target {
		return ErrSelfAction
	}
	if _, err := s.Get(ctx, target); err != nil {
		return err
	}
	if err := s.store.Block(ctx, me, target); err != nil {
		return notFound("block", err)
	}
	s.log.InfoContext(ctx, "user blocked",
		logger.UserID(me.Hex()),
		slog.String("blocked_id", target.Hex()),
	)
	return nil
}

func (s *Service) Unblock(ctx context.Context, me, target bson.ObjectID) error {
	if me == target {
		return ErrSelfAction
	}
	if err := s.store.Unblock(ctx, me, target); err != nil {
		return notFound("unblock", err)
	}
	return nil
}

func (s *Service) Followers(ctx context.Context, id bson.ObjectID, p pagination.Params) (pagination.Result[PublicProfile], error) {
	return s.edges(ctx, id, p, func(u *User) []bson.ObjectID { return u.Followers })
}

func (s *Service) Following(ctx context.Context, id bson.ObjectID, p pagination.Params) (pagination.Result[PublicProfile], error) {
	return s.edges(ctx, id, p, func(u *User) []bson.ObjectID { return u.Following })
}

func (s *Service) edges(ctx context.Context, id bson.ObjectID, p pagination.Params, pick func(*User) []bson.ObjectID) (pagination.Result[PublicProfile], error) {
	p = p.Normalize()
	u, err := s.Get(ctx, id)
	if err != nil {
		return pagination.Result[PublicProfile]{}, err
	}
	users, total, err := s.store.FindByIDs(ctx, pick(u), p)
	if err != nil {
		return pagination.Result[PublicProfile]{}, fmt.Errorf("load users: %w", err)
	}
	return pagination.Map(pagination.NewResult(users, total, p), func(u User) PublicProfile {
		return u.Public()
	}), nil
}

// List is the admin listing.
func (s *Service) List(ctx context.Context, f ListFilter, p pagination.Params) (pagination.Result[User], error) {
	p = p.Normalize()
	if f.Status != "" && !f.Status.Valid() {
		return pagination.Result[User]{}, ErrInvalidStatus
	}
	if f.Role != "" && !f.Role.Valid() {
		return pagination.Result[User]{}, ErrInvalidRole
	}
	users, total, err := s.store.List(ctx, f, p)
	if err != nil {
		return pagination.Result[User]{}, fmt.Errorf("list users: %w", err)
	}
	return pagination.NewResult(users, total, p), nil
}

// SetStatus is an admin transition. Locking an account ends its session.
func (s *Service) SetStatus(ctx context.Context, id bson.ObjectID, status Status) (*User, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	c := Changes{Status: &status, ClearRefreshToken: status.Locked()}
	if status == StatusActive {
		c.ClearDeactivated = true
	}
	u, err := s.store.Update(ctx, id, c)
	if err != nil {
		return nil, notFound("set status", err)
	}
	s.log.InfoContext(ctx, "user status changed",
		logger.UserID(id.Hex()),
		slog.String("status", string(status)),
		logger.Event("status_changed"),
	)
	return u, nil
}

func (s *Service) SetRole(ctx context.Context, id bson.ObjectID, role Role) (*User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	u, err := s.store.Update(ctx, id, Changes{Role: &role})
	if err != nil {
		return nil, notFound("set role", err)
	}
	s.log.InfoContext(ctx, "user role changed",
		logger.UserID(id.Hex()),
		slog.String("role", string(role)),
		logger.Event("role_changed"),
	)
	return u, nil
}
