// Package user owns the user record: credentials, profile, social graph and
// account lifecycle. Authentication flows live in svc/auth and drive the
// credential fields through Store.
package user

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Status string

const (
	StatusPendingVerification Status = "pending_verification"
	StatusActive              Status = "active"
	StatusInactive            Status = "inactive"
	StatusSuspended           Status = "suspended"
	StatusBanned              Status = "banned"
)

// Locked reports whether the status forbids login and session renewal.
func (s Status) Locked() bool {
	return s == StatusSuspended || s == StatusBanned
}

func (s Status) Valid() bool {
	switch s {
	case StatusPendingVerification, StatusActive, StatusInactive, StatusSuspended, StatusBanned:
		return true
	}
	return false
}

type Role string

const (
	RoleAuthor Role = "author"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool { return r == RoleAuthor || r == RoleAdmin }

// TokenKind selects which opaque token pair on the record is addressed.
type TokenKind int

const (
	TokenEmailVerification TokenKind = iota + 1
	TokenPasswordReset
)

type Avatar struct {
	URL string `bson:"url" json:"url"`
	Key string `bson:"key,omitempty" json:"-"`
	Alt string `bson:"alt,omitempty" json:"alt,omitempty"`
}

type SocialLinks struct {
	Website   string `bson:"website,omitempty" json:"website,omitempty"`
	Twitter   string `bson:"twitter,omitempty" json:"twitter,omitempty"`
	LinkedIn  string `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	GitHub    string `bson:"github,omitempty" json:"github,omitempty"`
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty"`
	Facebook  string `bson:"facebook,omitempty" json:"facebook,omitempty"`
}

// Profile holds the user-editable, publicly visible fields.
type Profile struct {
	FirstName   string      `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName    string      `bson:"lastName,omitempty" json:"lastName,omitempty"`
	Bio         string      `bson:"bio,omitempty" json:"bio,omitempty"`
	Avatar      *Avatar     `bson:"avatar,omitempty" json:"avatar,omitempty"`
	DateOfBirth *time.Time  `bson:"dob,omitempty" json:"dob,omitempty"`
	Gender      string      `bson:"gender,omitempty" json:"gender,omitempty"`
	Phone       string      `bson:"phone,omitempty" json:"phone,omitempty"`
	SocialLinks SocialLinks `bson:"socialLinks" json:"socialLinks"`
	Occupation  string      `bson:"occupation,omitempty" json:"occupation,omitempty"`
	Company     string      `bson:"company,omitempty" json:"company,omitempty"`
	Skills      []string    `bson:"skills,omitempty" json:"skills,omitempty"`
	Interests   []string    `bson:"interests,omitempty" json:"interests,omitempty"`
}

// User is the persisted record. Secret fields carry json:"-" so no response
// built from a User can leak them.
type User struct {
	ID              bson.ObjectID `bson:"_id" json:"id"`
	Email           string        `bson:"email" json:"email"`
	Username        string        `bson:"username" json:"username"`
	PasswordHash    string        `bson:"passwordHash" json:"-"`
	Role            Role          `bson:"role" json:"role"`
	Status          Status        `bson:"status" json:"status"`
	IsEmailVerified bool          `bson:"isEmailVerified" json:"isEmailVerified"`
	Profile         `bson:",inline"`

	EmailVerificationTokenHash string     `bson:"emailVerificationTokenHash,omitempty" json:"-"`
	EmailVerificationExpiry    *time.Time `bson:"emailVerificationExpiry,omitempty" json:"-"`
	ForgotPasswordTokenHash    string     `bson:"forgotPasswordTokenHash,omitempty" json:"-"`
	ForgotPasswordExpiry       *time.Time `bson:"forgotPasswordExpiry,omitempty" json:"-"`
	// RefreshTokenHash is the SHA-256 of the single live refresh token.
	RefreshTokenHash string `bson:"refreshToken,omitempty" json:"-"`

	Followers []bson.ObjectID `bson:"followers" json:"-"`
	Following []bson.ObjectID `bson:"following" json:"-"`
	Blocked   []bson.ObjectID `bson:"blocked" json:"-"`
	Bookmarks []bson.ObjectID `bson:"bookmarks" json:"-"`

	LastLogin     *time.Time `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	LastActive    *time.Time `bson:"lastActive,omitempty" json:"lastActive,omitempty"`
	LoginCount    int        `bson:"loginCount" json:"loginCount"`
	DeactivatedAt *time.Time `bson:"deactivatedAt,omitempty" json:"deactivatedAt,omitempty"`
	CreatedAt     time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// tokenFields returns the hash and expiry for kind.
func (u *User) tokenFields(kind TokenKind) (string, *time.Time) {
	if kind == TokenPasswordReset {
		return u.ForgotPasswordTokenHash, u.ForgotPasswordExpiry
	}
	return u.EmailVerificationTokenHash, u.EmailVerificationExpiry
}

// TokenHash returns the stored hash for kind, empty if none is outstanding.
func (u *User) TokenHash(kind TokenKind) string {
	h, _ := u.tokenFields(kind)
	return h
}

// TokenExpiry returns the stored expiry for kind, zero if none is outstanding.
func (u *User) TokenExpiry(kind TokenKind) time.Time {
	if _, exp := u.tokenFields(kind); exp != nil {
		return *exp
	}
	return time.Time{}
}

func (u *User) setToken(kind TokenKind, hash string, exp *time.Time) {
	if kind == TokenPasswordReset {
		u.ForgotPasswordTokenHash, u.ForgotPasswordExpiry = hash, exp
		return
	}
	u.EmailVerificationTokenHash, u.EmailVerificationExpiry = hash, exp
}

// HasBlocked reports whether u blocked id.
func (u *User) HasBlocked(id bson.ObjectID) bool {
	return containsID(u.Blocked, id)
}

func (u *User) IsFollowing(id bson.ObjectID) bool {
	return containsID(u.Following, id)
}

func (u *User) HasBookmarked(id bson.ObjectID) bool {
	return containsID(u.Bookmarks, id)
}

// Summary is the identity returned by login and embedded in listings.
type Summary struct {
	ID       bson.ObjectID `json:"id"`
	Email    string        `json:"email"`
	Username string        `json:"username"`
	Role     Role          `json:"role"`
	Avatar   *Avatar       `json:"avatar,omitempty"`
}

func (u *User) Summary() Summary {
	return Summary{ID: u.ID, Email: u.Email, Username: u.Username, Role: u.Role, Avatar: u.Avatar}
}

// PublicProfile is what other users see. Email and account state are omitted.
type PublicProfile struct {
	ID       bson.ObjectID `json:"id"`
	Username string        `json:"username"`
	Profile
	FollowersCount int       `json:"followersCount"`
	FollowingCount int       `json:"followingCount"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:             u.ID,
		Username:       u.Username,
		Profile:        u.Profile,
		FollowersCount: len(u.Followers),
		FollowingCount: len(u.Following),
		CreatedAt:      u.CreatedAt,
	}
}

// Me is the authenticated user's own view.
type Me struct {
	*User
	FollowersCount int `json:"followersCount"`
	FollowingCount int `json:"followingCount"`
}

func (u *User) Me() Me {
	return Me{User: u, FollowersCount: len(u.Followers), FollowingCount: len(u.Following)}
}

// Changes is a partial update. Nil fields are left untouched.
type Changes struct {
	Status            *Status
	Role              *Role
	IsEmailVerified   *bool
	PasswordHash      *string
	Profile           *Profile
	Avatar            *Avatar
	ClearRefreshToken bool
	DeactivatedAt     *time.Time
	ClearDeactivated  bool
	LastActive        *time.Time
}

func (c Changes) apply(u *User, now time.Time) {
	if c.Status != nil {
		u.Status = *c.Status
	}
	if c.Role != nil {
		u.Role = *c.Role
	}
	if c.IsEmailVerified != nil {
		u.IsEmailVerified = *c.IsEmailVerified
	}
	if c.PasswordHash != nil {
		u.PasswordHash = *c.PasswordHash
	}
	if c.Profile != nil {
		avatar := u.Avatar
		u.Profile = *c.Profile
		u.Avatar = avatar
	}
	if c.Avatar != nil {
		u.Avatar = c.Avatar
	}
	if c.ClearRefreshToken {
		u.RefreshTokenHash = ""
	}
	if c.DeactivatedAt != nil {
		u.DeactivatedAt = c.DeactivatedAt
	}
	if c.ClearDeactivated {
		u.DeactivatedAt = nil
	}
	if c.LastActive != nil {
		u.LastActive = c.LastActive
	}
	u.UpdatedAt = now
}

// LoginChanges is applied together with the refresh token swap on login.
type LoginChanges struct {
	At         time.Time
	Reactivate bool // inactive -> active
}

func containsID(ids []bson.ObjectID, id bson.ObjectID) bool {
	return slices.Contains(ids, id)
}

func removeID(ids []bson.ObjectID, id bson.ObjectID) []bson.ObjectID {
	return slices.DeleteFunc(slices.Clone(ids), func(v bson.ObjectID) bool { return v == id })
}
