package user

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	mongox "github.com/dmitrymomot/blogify/pkg/mongo"
	"github.com/dmitrymomot/blogify/pkg/pagination"
)

const (
	collectionName = "users"
	emailIndex     = "email_unique"
	usernameIndex  = "username_unique"
)

// MongoStore implements Store on a MongoDB collection.
type MongoStore struct {
	col *mongo.Collection
	now func() time.Time
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection(collectionName), now: time.Now}
}

// EnsureIndexes creates the unique lookup keys and the sparse token indexes.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName(emailIndex)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName(usernameIndex)},
		{Keys: bson.D{{Key: "emailVerificationTokenHash", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "forgotPasswordTokenHash", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	return err
}

func tokenKeys(kind TokenKind) (hashKey, expiryKey string) {
	if kind == TokenPasswordReset {
		return "forgotPasswordTokenHash", "forgotPasswordExpiry"
	}
	return "emailVerificationTokenHash", "emailVerificationExpiry"
}

func (s *MongoStore) Create(ctx context.Context, u *User) error {
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	if u.Followers == nil {
		u.Followers, u.Following, u.Blocked, u.Bookmarks = []bson.ObjectID{}, []bson.ObjectID{}, []bson.ObjectID{}, []bson.ObjectID{}
	}
	if _, err := s.col.InsertOne(ctx, u); err != nil {
		return duplicateKeyError(err)
	}
	return nil
}

// duplicateKeyError maps a unique index violation to the sentinel of the
// field it guards. Other errors pass through.
func duplicateKeyError(err error) error {
	if !mongox.IsDuplicateKey(err) {
		return err
	}
	switch mongox.DuplicateKeyIndex(err) {
	case usernameIndex:
		return ErrDuplicateUsername
	case emailIndex:
		return ErrDuplicateEmail
	default:
		return err
	}
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.D) (*User, error) {
	var u User
	if err := s.col.FindOne(ctx, filter).Decode(&u); err != nil {
		if mongox.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *MongoStore) FindByID(ctx context.Context, id bson.ObjectID) (*User, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (s *MongoStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (s *MongoStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	return s.findOne(ctx, bson.D{{Key: "username", Value: username}})
}

func (s *MongoStore) FindByTokenHash(ctx context.Context, kind TokenKind, hash string) (*User, error) {
	if hash == "" {
		return nil, ErrNotFound
	}
	key, _ := tokenKeys(kind)
	return s.findOne(ctx, bson.D{{Key: key, Value: hash}})
}

func (s *MongoStore) findPage(ctx context.Context, filter bson.D, p pagination.Params) ([]User, int64, error) {
	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	cur, err := s.col.Find(ctx, filter, mongox.FindPage(p, bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, 0, err
	}
	var users []User
	if err := cur.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *MongoStore) FindByIDs(ctx context.Context, ids []bson.ObjectID, p pagination.Params) ([]User, int64, error) {
	if len(ids) == 0 {
		return nil, 0, nil
	}
	return s.findPage(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}}, p)
}

func (s *MongoStore) List(ctx context.Context, f ListFilter, p pagination.Params) ([]User, int64, error) {
	filter := bson.D{}
	if f.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: f.Status})
	}
	if f.Role != "" {
		filter = append(filter, bson.E{Key: "role", Value: f.Role})
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		prefix := bson.Regex{Pattern: "^" + regexp.QuoteMeta(q)}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "username", Value: prefix}},
			bson.D{{Key: "email", Value: prefix}},
		}})
	}
	return s.findPage(ctx, filter, p)
}

func (s *MongoStore) SetToken(ctx context.Context, id bson.ObjectID, kind TokenKind, hash string, expiry time.Time) error {
	hashKey, expKey := tokenKeys(kind)
	res, err := s.col.UpdateByID(ctx, id, bson.D{{Key: "$set", Value: bson.D{
		{Key: hashKey, Value: hash},
		{Key: expKey, Value: expiry},
		{Key: "updatedAt", Value: s.now()},
	}}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// changesUpdate translates Changes into a $set/$unset document.
func (s *MongoStore) changesUpdate(c Changes) (set, unset bson.D) {
	set = bson.D{{Key: "updatedAt", Value: s.now()}}
	if c.Status != nil {
		set = append(set, bson.E{Key: "status", Value: *c.Status})
	}
	if c.Role != nil {
		set = append(set, bson.E{Key: "role", Value: *c.Role})
	}
	if c.IsEmailVerified != nil {
		set = append(set, bson.E{Key: "isEmailVerified", Value: *c.IsEmailVerified})
	}
	if c.PasswordHash != nil {
		set = append(set, bson.E{Key: "passwordHash", Value: *c.PasswordHash})
	}
	if p := c.Profile; p != nil {
		set = append(set,
			bson.E{Key: "firstName", Value: p.FirstName},
			bson.E{Key: "lastName", Value: p.LastName},
			bson.E{Key: "bio", Value: p.Bio},
			bson.E{Key: "dob", Value: p.DateOfBirth},
			bson.E{Key: "gender", Value: p.Gender},
			bson.E{Key: "phone", Value: p.Phone},
			bson.E{Key: "socialLinks", Value: p.SocialLinks},
			bson.E{Key: "occupation", Value: p.Occupation},
			bson.E{Key: "company", Value: p.Company},
			bson.E{Key: "skills", Value: p.Skills},
			bson.E{Key: "interests", Value: p.Interests},
		)
	}
	if c.Avatar != nil {
		set = append(set, bson.E{Key: "avatar", Value: c.Avatar})
	}
	if c.ClearRefreshToken {
		unset = append(unset, bson.E{Key: "refreshToken", Value: ""})
	}
	if c.DeactivatedAt != nil {
		set = append(set, bson.E{Key: "deactivatedAt", Value: *c.DeactivatedAt})
	}
	if c.ClearDeactivated {
		unset = append(unset, bson.E{Key: "deactivatedAt", Value: ""})
	}
	if c.LastActive != nil {
		set = append(set, bson.E{Key: "lastActive", Value: *c.LastActive})
	}
	return set, unset
}

func updateDoc(set, unset bson.D) bson.D {
	doc := bson.D{{Key: "$set", Value: set}}
	if len(unset) > 0 {
		doc = append(doc, bson.E{Key: "$unset", Value: unset})
	}
	return doc
}

func (s *MongoStore) findOneAndUpdate(ctx context.Context, filter, update bson.D) (*User, error) {
	var u User
	err := s.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&u)
	if err != nil {
		if mongox.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *MongoStore) ConsumeToken(ctx context.Context, kind TokenKind, hash string, c Changes) (*User, error) {
	if hash == "" {
		return nil, ErrNotFound
	}
	hashKey, expKey := tokenKeys(kind)
	set, unset := s.changesUpdate(c)
	unset = append(unset, bson.E{Key: hashKey, Value: ""}, bson.E{Key: expKey, Value: ""})
	return s.findOneAndUpdate(ctx, bson.D{{Key: hashKey, Value: hash}}, updateDoc(set, unset))
}

func (s *MongoStore) SwapRefreshToken(ctx context.Context, id bson.ObjectID, expected, next string, login *LoginChanges) error {
	filter := bson.D{{Key: "_id", Value: id}}
	if expected == "" {
		filter = append(filter, bson.E{Key: "refreshToken", Value: bson.D{{Key: "$in", Value: bson.A{nil, ""}}}})
	} else {
		filter = append(filter, bson.E{Key: "refreshToken", Value: expected})
	}

	set := bson.D{{Key: "updatedAt", Value: s.now()}}
	var unset bson.D
	if next == "" {
		unset = append(unset, bson.E{Key: "refreshToken", Value: ""})
	} else {
		set = append(set, bson.E{Key: "refreshToken", Value: next})
	}
	if login != nil {
		set = append(set, bson.E{Key: "lastLogin", Value: login.At}, bson.E{Key: "lastActive", Value: login.At})
		if login.Reactivate {
			set = append(set, bson.E{Key: "status", Value: StatusActive})
			unset = append(unset, bson.E{Key: "deactivatedAt", Value: ""})
		}
	}
	update := updateDoc(set, unset)
	if login != nil {
		update = append(update, bson.E{Key: "$inc", Value: bson.D{{Key: "loginCount", Value: 1}}})
	}

	res, err := s.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRefreshTokenMismatch
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, id bson.ObjectID, c Changes) (*User, error) {
	set, unset := s.changesUpdate(c)
	return s.findOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, updateDoc(set, unset))
}

func (s *MongoStore) updateByID(ctx context.Context, id bson.ObjectID, update bson.D) error {
	res, err := s.col.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) edge(ctx context.Context, a, b bson.ObjectID, updA, updB bson.D) error {
	if err := s.updateByID(ctx, a, updA); err != nil {
		return err
	}
	return s.updateByID(ctx, b, updB)
}

func (s *MongoStore) Follow(ctx context.Context, follower, followee bson.ObjectID) error {
	return s.edge(ctx, follower, followee,
		bson.D{{Key: "$addToSet", Value: bson.D{{Key: "following", Value: followee}}}},
		bson.D{{Key: "$addToSet", Value: bson.D{{Key: "followers", Value: follower}}}},
	)
}

func (s *MongoStore) Unfollow(ctx context.Context, follower, followee bson.ObjectID) error {
	return s.edge(ctx, follower, followee,
		bson.D{{Key: "$pull", Value: bson.D{{Key: "following", Value: followee}}}},
		bson.D{{Key: "$pull", Value: bson.D{{Key: "followers", Value: follower}}}},
	)
}

func (s *MongoStore) Block(ctx context.Context, blocker, blocked bson.ObjectID) error {
	return s.edge(ctx, blocker, blocked,
		bson.D{
			{Key: "$addToSet", Value: bson.D{{Key: "blocked", Value: blocked}}},
			{Key: "$pull", Value: bson.D{{Key: "following", Value: blocked}, {Key: "followers", Value: blocked}}},
		},
		bson.D{{Key: "$pull", Value: bson.D{{Key: "following", Value: blocker}, {Key: "followers", Value: blocker}}}},
	)
}

func (s *MongoStore) Unblock(ctx context.Context, blocker, blocked bson.ObjectID) error {
	return s.updateByID(ctx, blocker, bson.D{{Key: "$pull", Value: bson.D{{Key: "blocked", Value: blocked}}}})
}

func (s *MongoStore) AddBookmark(ctx context.Context, userID, blogID bson.ObjectID) (bool, error) {
	res, err := s.col.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: userID}, {Key: "bookmarks", Value: bson.D{{Key: "$ne", Value: blogID}}}},
		bson.D{{Key: "$push", Value: bson.D{{Key: "bookmarks", Value: blogID}}}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (s *MongoStore) RemoveBookmark(ctx context.Context, userID, blogID bson.ObjectID) (bool, error) {
	res, err := s.col.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: userID}, {Key: "bookmarks", Value: blogID}},
		bson.D{{Key: "$pull", Value: bson.D{{Key: "bookmarks", Value: blogID}}}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}
