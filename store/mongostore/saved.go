package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dcode-github/rental_listing_platform/models"
	"github.com/dcode-github/rental_listing_platform/store"
)

type FavoriteStore struct {
	coll       *mongo.Collection
	properties string
}

func (s *FavoriteStore) Add(ctx context.Context, f *models.Favorite) error {
	stamp(&f.ID, &f.CreatedAt)
	_, err := s.coll.InsertOne(ctx, f)
	return translate(err)
}

// Properties joins the user's favorites onto the listings they point at.
// The $unwind drops favorites whose listing no longer exists.
func (s *FavoriteStore) Properties(ctx context.Context, userID primitive.ObjectID) ([]models.Property, error) {
	pipeline := mongo.Pipeline{
		{
			{Key: "$match", Value: bson.M{"userId": userID}},
		},
		{
			{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}},
		},
		{
			{Key: "$lookup", Value: bson.M{
				"from":         s.properties,
				"localField":   "propertyId",
				"foreignField": "_id",
				"as":           "propertyDetails",
			}},
		},
		{
			{Key: "$unwind", Value: "$propertyDetails"},
		},
		{
			{Key: "$replaceRoot", Value: bson.M{"newRoot": "$propertyDetails"}},
		},
	}
	return aggregate[models.Property](ctx, s.coll, pipeline)
}

func (s *FavoriteStore) Remove(ctx context.Context, userID, propertyID primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"userId": userID, "propertyId": propertyID})
	if err != nil {
		return fmt.Errorf("removing favorite %s: %w", propertyID.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

type RecommendationStore struct {
	coll       *mongo.Collection
	properties string
}

func (s *RecommendationStore) Create(ctx context.Context, rec *models.Recommendation) error {
	stamp(&rec.ID, &rec.CreatedAt)
	_, err := s.coll.InsertOne(ctx, rec)
	return translate(err)
}

func (s *RecommendationStore) ForUser(ctx context.Context, userID primitive.ObjectID) ([]models.RecommendedProperty, error) {
	pipeline := mongo.Pipeline{
		{
			{Key: "$match", Value: bson.M{"toUserId": userID}},
		},
		{
			{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}},
		},
		{
			{Key: "$lookup", Value: bson.M{
				"from":         s.properties,
				"localField":   "propertyId",
				"foreignField": "_id",
				"as":           "propertyDetails",
			}},
		},
		{
			{Key: "$unwind", Value: "$propertyDetails"},
		},
		{
			{Key: "$replaceWith", Value: bson.M{
				"$mergeObjects": bson.A{
					"$propertyDetails",
					bson.M{"recommendedBy": "$fromUserId"},
				},
			}},
		},
	}
	return aggregate[models.RecommendedProperty](ctx, s.coll, pipeline)
}

func aggregate[T any](ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline) ([]T, error) {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregating %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", coll.Name(), err)
	}
	return out, nil
}
