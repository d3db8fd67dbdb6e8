package blog

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	mongox "github.com/dmitrymomot/blogify/pkg/mongo"
	"github.com/dmitrymomot/blogify/pkg/pagination"
)

const collectionName = "blogs"

// MongoStore implements Store on a MongoDB collection.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection(collectionName)}
}

// EnsureIndexes creates the unique slug, the listing indexes and the
// weighted text index used by Search.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true).SetName("slug_unique")},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "publishedAt", Value: -1}}},
		{Keys: bson.D{{Key: "author", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
		{
			Keys: bson.D{{Key: "title", Value: "text"}, {Key: "content", Value: "text"}, {Key: "tags", Value: "text"}},
			Options: options.Index().SetName("blog_text").
				SetWeights(bson.D{{Key: "title", Value: 10}, {Key: "tags", Value: 5}, {Key: "content", Value: 1}}),
		},
	})
	return err
}

func (s *MongoStore) Create(ctx context.Context, b *Blog) error {
	if b.ID.IsZero() {
		b.ID = bson.NewObjectID()
	}
	if b.Likes == nil {
		b.Likes = []bson.ObjectID{}
	}
	if b.EditHistory == nil {
		b.EditHistory = []Edit{}
	}
	if _, err := s.col.InsertOne(ctx, b); err != nil {
		if mongox.IsDuplicateKey(err) {
			return ErrDuplicateSlug
		}
		return err
	}
	return nil
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.D) (*Blog, error) {
	var b Blog
	if err := s.col.FindOne(ctx, filter).Decode(&b); err != nil {
		if mongox.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (s *MongoStore) FindByID(ctx context.Context, id bson.ObjectID) (*Blog, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (s *MongoStore) FindBySlug(ctx context.Context, slug string) (*Blog, error) {
	return s.findOne(ctx, bson.D{{Key: "slug", Value: slug}})
}

func (s *MongoStore) SlugExists(ctx context.Context, slug string, exclude bson.ObjectID) (bool, error) {
	n, err := s.col.CountDocuments(ctx, bson.D{
		{Key: "slug", Value: slug},
		{Key: "_id", Value: bson.D{{Key: "$ne", Value: exclude}}},
	}, options.Count().SetLimit(1))
	return n > 0, err
}

func sortSpec(order Sort) bson.D {
	switch order {
	case SortOldest:
		return bson.D{{Key: "publishedAt", Value: 1}, {Key: "createdAt", Value: 1}}
	case SortPopular:
		return bson.D{
			{Key: "likeCount", Value: -1},
			{Key: "commentCount", Value: -1},
			{Key: "views.total", Value: -1},
			{Key: "createdAt", Value: -1},
		}
	default:
		return bson.D{{Key: "publishedAt", Value: -1}, {Key: "createdAt", Value: -1}}
	}
}

func (f Filter) bson() bson.D {
	filter := bson.D{}
	if f.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: f.Status})
	}
	if f.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: f.Category})
	}
	if f.Tag != "" {
		filter = append(filter, bson.E{Key: "tags", Value: strings.ToLower(f.Tag)})
	}
	if !f.Author.IsZero() {
		filter = append(filter, bson.E{Key: "author", Value: f.Author})
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		filter = append(filter, bson.E{Key: "title", Value: bson.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}})
	}
	if f.IDs != nil {
		filter = append(filter, bson.E{Key: "_id", Value: bson.D{{Key: "$in", Value: f.IDs}}})
	}
	if !f.Since.IsZero() {
		filter = append(filter, bson.E{Key: "publishedAt", Value: bson.D{{Key: "$gte", Value: f.Since}}})
	}
	if f.Featured {
		filter = append(filter, bson.E{Key: "isFeatured", Value: true})
	}
	return filter
}

func (s *MongoStore) findPage(ctx context.Context, filter bson.D, opts *options.FindOptionsBuilder) ([]Blog, error) {
	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var blogs []Blog
	if err := cur.All(ctx, &blogs); err != nil {
		return nil, err
	}
	return blogs, nil
}

func (s *MongoStore) List(ctx context.Context, f Filter, p pagination.Params) ([]Blog, int64, error) {
	filter := f.bson()
	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	blogs, err := s.findPage(ctx, filter, mongox.FindPage(p, sortSpec(f.Sort)))
	return blogs, total, err
}

func (s *MongoStore) Search(ctx context.Context, query string, p pagination.Params) ([]Blog, int64, error) {
	filter := bson.D{
		{Key: "$text", Value: bson.D{{Key: "$search", Value: query}}},
		{Key: "status", Value: StatusPublished},
	}
	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	score := bson.D{{Key: "score", Value: bson.D{{Key: "$meta", Value: "textScore"}}}}
	blogs, err := s.findPage(ctx, filter, mongox.FindPage(p, score))
	return blogs, total, err
}

func (s *MongoStore) Related(ctx context.Context, b *Blog, limit int) ([]Blog, error) {
	match := bson.A{bson.D{{Key: "category", Value: b.Category}}}
	if len(b.Tags) > 0 {
		match = append(match, bson.D{{Key: "tags", Value: bson.D{{Key: "$in", Value: b.Tags}}}})
	}
	filter := bson.D{
		{Key: "_id", Value: bson.D{{Key: "$ne", Value: b.ID}}},
		{Key: "status", Value: StatusPublished},
		{Key: "$or", Value: match},
	}
	return s.findPage(ctx, filter, mongox.FindPage(pagination.Params{Page: 1, Limit: limit}, sortSpec(SortNewest)))
}

func (s *MongoStore) Save(ctx context.Context, b *Blog, edit *Edit) error {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "title", Value: b.Title},
		{Key: "slug", Value: b.Slug},
		{Key: "content", Value: b.Content},
		{Key: "excerpt", Value: b.Excerpt},
		{Key: "category", Value: b.Category},
		{Key: "tags", Value: b.Tags},
		{Key: "coverImage", Value: b.CoverImage},
		{Key: "status", Value: b.Status},
		{Key: "publishedAt", Value: b.PublishedAt},
		{Key: "readTime", Value: b.ReadTime},
		{Key: "wordCount", Value: b.WordCount},
		{Key: "updatedAt", Value: b.UpdatedAt},
	}}}
	if edit != nil {
		update = append(update, bson.E{Key: "$push", Value: bson.D{{Key: "editHistory", Value: edit}}})
	}
	res, err := s.col.UpdateByID(ctx, b.ID, update)
	if err != nil {
		if mongox.IsDuplicateKey(err) {
			return ErrDuplicateSlug
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) findAndUpdate(ctx context.Context, filter, update any) (*Blog, error) {
	var b Blog
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&b); err != nil {
		if mongox.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// ToggleLike adds the like when the user is absent from the set, otherwise
// removes it. Each branch is a single conditional write.
func (s *MongoStore) ToggleLike(ctx context.Context, id, userID bson.ObjectID) (*Blog, error) {
	b, err := s.findAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}, {Key: "likes", Value: bson.D{{Key: "$ne", Value: userID}}}},
		bson.D{
			{Key: "$push", Value: bson.D{{Key: "likes", Value: userID}}},
			{Key: "$inc", Value: bson.D{{Key: "likeCount", Value: 1}}},
		},
	)
	if !errors.Is(err, ErrNotFound) {
		return b, err
	}
	return s.findAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}, {Key: "likes", Value: userID}},
		bson.D{
			{Key: "$pull", Value: bson.D{{Key: "likes", Value: userID}}},
			{Key: "$inc", Value: bson.D{{Key: "likeCount", Value: -1}}},
		},
	)
}

// IncCounter uses a pipeline update so the counter is clamped at zero in the
// same write.
func (s *MongoStore) IncCounter(ctx context.Context, id bson.ObjectID, c Counter, delta int) (*Blog, error) {
	field := string(c)
	pipeline := mongo.Pipeline{{{Key: "$set", Value: bson.D{{Key: field, Value: bson.D{{Key: "$max", Value: bson.A{
		0, bson.D{{Key: "$add", Value: bson.A{bson.D{{Key: "$ifNull", Value: bson.A{"$" + field, 0}}}, delta}}},
	}}}}}}}}
	return s.findAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, pipeline)
}

func (s *MongoStore) RecordView(ctx context.Context, id bson.ObjectID, unique bool) (*Blog, error) {
	inc := bson.D{{Key: "views.total", Value: 1}}
	if unique {
		inc = append(inc, bson.E{Key: "views.unique", Value: 1})
	}
	return s.findAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{{Key: "$inc", Value: inc}})
}

func (s *MongoStore) SetFeatured(ctx context.Context, id bson.ObjectID, featured bool) (*Blog, error) {
	return s.findAndUpdate(ctx, bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "isFeatured", Value: featured}}}})
}

func (s *MongoStore) CategoryCounts(ctx context.Context) (map[Category]int64, error) {
	cur, err := s.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "status", Value: StatusPublished}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$category"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	})
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Category Category `bson:"_id"`
		Count    int64    `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	counts := make(map[Category]int64, len(rows))
	for _, r := range rows {
		counts[r.Category] = r.Count
	}
	return counts, nil
}
