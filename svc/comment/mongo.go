package comment

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	mongox "github.com/dmitrymomot/blogify/pkg/mongo"
	"github.com/dmitrymomot/blogify/pkg/pagination"
)

const collectionName = "comments"

// MongoStore implements Store on a MongoDB collection.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection(collectionName)}
}

func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "blog", Value: 1}, {Key: "parentComment", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "parentComment", Value: 1}, {Key: "createdAt", Value: 1}}},
	})
	return err
}

func (s *MongoStore) Create(ctx context.Context, c *Comment) error {
	if c.ID.IsZero() {
		c.ID = bson.NewObjectID()
	}
	if c.Likes == nil {
		c.Likes = []bson.ObjectID{}
	}
	if c.EditHistory == nil {
		c.EditHistory = []Edit{}
	}
	_, err := s.col.InsertOne(ctx, c)
	return err
}

func (s *MongoStore) FindByID(ctx context.Context, id bson.ObjectID) (*Comment, error) {
	var c Comment
	if err := s.col.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&c); err != nil {
		if mongox.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func sortSpec(order Sort) bson.D {
	switch order {
	case SortOldest:
		return bson.D{{Key: "createdAt", Value: 1}}
	case SortMostLiked:
		return bson.D{{Key: "likeCount", Value: -1}, {Key: "createdAt", Value: -1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}}
	}
}

func (s *MongoStore) findPage(ctx context.Context, filter bson.D, order Sort, p pagination.Params) ([]Comment, int64, error) {
	filter = append(filter, bson.E{Key: "hidden", Value: bson.D{{Key: "$ne", Value: true}}})
	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	cur, err := s.col.Find(ctx, filter, mongox.FindPage(p, sortSpec(order)))
	if err != nil {
		return nil, 0, err
	}
	var comments []Comment
	if err := cur.All(ctx, &comments); err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (s *MongoStore) ListTopLevel(ctx context.Context, blog bson.ObjectID, order Sort, p pagination.Params) ([]Comment, int64, error) {
	return s.findPage(ctx, bson.D{
		{Key: "blog", Value: blog},
		{Key: "parentComment", Value: nil},
	}, order, p)
}

func (s *MongoStore) ListReplies(ctx context.Context, parent bson.ObjectID, p pagination.Params) ([]Comment, int64, error) {
	return s.findPage(ctx, bson.D{{Key: "parentComment", Value: parent}}, SortOldest, p)
}

func (s *MongoStore) findAndUpdate(ctx context.Context, filter, update bson.D) (*Comment, error) {
	var c Comment
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&c); err != nil {
		if mongox.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *MongoStore) UpdateText(ctx context.Context, id bson.ObjectID, text string, edit Edit) (*Comment, error) {
	return s.findAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "text", Value: text},
			{Key: "isEdited", Value: true},
			{Key: "updatedAt", Value: edit.EditedAt},
		}},
		{Key: "$push", Value: bson.D{{Key: "editHistory", Value: edit}}},
	})
}

func (s *MongoStore) ToggleLike(ctx context.Context, id, userID bson.ObjectID) (*Comment, error) {
	c, err := s.findAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}, {Key: "likes", Value: bson.D{{Key: "$ne", Value: userID}}}},
		bson.D{
			{Key: "$push", Value: bson.D{{Key: "likes", Value: userID}}},
			{Key: "$inc", Value: bson.D{{Key: "likeCount", Value: 1}}},
		},
	)
	if !errors.Is(err, ErrNotFound) {
		return c, err
	}
	return s.findAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}, {Key: "likes", Value: userID}},
		bson.D{
			{Key: "$pull", Value: bson.D{{Key: "likes", Value: userID}}},
			{Key: "$inc", Value: bson.D{{Key: "likeCount", Value: -1}}},
		},
	)
}

func (s *MongoStore) IncReplies(ctx context.Context, id bson.ObjectID, delta int) error {
	filter := bson.D{{Key: "_id", Value: id}}
	if delta < 0 {
		filter = append(filter, bson.E{Key: "replyCount", Value: bson.D{{Key: "$gte", Value: -delta}}})
	}
	res, err := s.col.UpdateOne(ctx, filter, bson.D{{Key: "$inc", Value: bson.D{{Key: "replyCount", Value: delta}}}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 && delta >= 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) SetHidden(ctx context.Context, id bson.ObjectID, hidden bool) (*Comment, error) {
	return s.findAndUpdate(ctx, bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "hidden", Value: hidden}}}})
}

func (s *MongoStore) DeleteThread(ctx context.Context, id bson.ObjectID) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "parentComment", Value: id}},
	}}})
	if err != nil {
		return 0, err
	}
	if res.DeletedCount == 0 {
		return 0, ErrNotFound
	}
	return res.DeletedCount, nil
}
