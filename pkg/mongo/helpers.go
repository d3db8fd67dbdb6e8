package mongo

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/blogify/pkg/pagination"
)

// ParseID converts a hex string into an ObjectID.
func ParseID(hex string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(hex)
	if err != nil {
		return bson.NilObjectID, errors.Join(ErrInvalidID, err)
	}
	return id, nil
}

// IsNotFound reports whether err means no document matched.
func IsNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// IsDuplicateKey reports whether err is a unique index violation.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// DuplicateKeyIndex returns the name of the unique index a write collided on,
// or "" when err is not a duplicate key write error.
func DuplicateKeyIndex(err error) string {
	var we mongo.WriteException
	if !errors.As(err, &we) {
		return ""
	}
	for _, e := range we.WriteErrors {
		if e.Code != 11000 && e.Code != 11001 {
			continue
		}
		_, rest, ok := strings.Cut(e.Message, "index: ")
		if !ok {
			continue
		}
		if name, _, _ := strings.Cut(rest, " "); name != "" {
			return name
		}
	}
	return ""
}

// FindPage returns find options for one normalized page sorted by sort.
func FindPage(p pagination.Params, sort bson.D) *options.FindOptionsBuilder {
	p = p.Normalize()
	opts := options.Find().SetSkip(int64(p.Skip())).SetLimit(int64(p.Limit))
	if len(sort) > 0 {
		opts.SetSort(sort)
	}
	return opts
}
