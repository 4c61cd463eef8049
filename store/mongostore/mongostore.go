// Package mongostore implements the store contracts on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dcode-github/rental_listing_platform/store"
)

const (
	PropertyCollection = "properties"
	ReviewCollection   = "reviews"
	UserCollection     = "users"
	ContactCollection  = "contacts"
	BlogCollection     = "blogs"

	FavoriteCollection       = "favorites"
	RecommendationCollection = "recommendations"
)

// New returns store views over the collections of db.
func New(db *mongo.Database) store.Stores {
	return store.Stores{
		Properties: &PropertyStore{coll: db.Collection(PropertyCollection), reviews: ReviewCollection},
		Reviews:    &ReviewStore{coll: db.Collection(ReviewCollection)},
		Users:      &UserStore{coll: db.Collection(UserCollection)},
		Contacts:   &ContactStore{coll: db.Collection(ContactCollection)},
		Blogs:      &BlogStore{coll: db.Collection(BlogCollection)},

		Favorites:       &FavoriteStore{coll: db.Collection(FavoriteCollection), properties: PropertyCollection},
		Recommendations: &RecommendationStore{coll: db.Collection(RecommendationCollection), properties: PropertyCollection},
	}
}

// EnsureIndexes creates the lookup and uniqueness indexes the API relies on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		PropertyCollection: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "city", Value: 1}}},
			{Keys: bson.D{{Key: "locality", Value: 1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
		ReviewCollection: {
			{Keys: bson.D{{Key: "property", Value: 1}}},
		},
		UserCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		BlogCollection: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		FavoriteCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "propertyId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		RecommendationCollection: {
			{Keys: bson.D{{Key: "toUserId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}
	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("creating indexes on %s: %w", name, err)
		}
	}
	return nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	default:
		return err
	}
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter interface{}) (*T, error) {
	var out T
	if err := coll.FindOne(ctx, filter).Decode(&out); err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func findMany[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", coll.Name(), err)
	}
	return out, nil
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}

func stamp(id *primitive.ObjectID, created *time.Time) {
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
	if created.IsZero() {
		*created = time.Now()
	}
}
