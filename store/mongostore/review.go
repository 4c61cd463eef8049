package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dcode-github/rental_listing_platform/models"
)

type ReviewStore struct {
	coll *mongo.Collection
}

func (s *ReviewStore) Create(ctx context.Context, r *models.Review) error {
	stamp(&r.ID, &r.CreatedAt)
	_, err := s.coll.InsertOne(ctx, r)
	return translate(err)
}

func (s *ReviewStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	return findOne[models.Review](ctx, s.coll, bson.M{"_id": id})
}

func (s *ReviewStore) FindAll(ctx context.Context) ([]models.Review, error) {
	return findMany[models.Review](ctx, s.coll, bson.M{})
}

func (s *ReviewStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	var deleted models.Review
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&deleted); err != nil {
		return nil, translate(err)
	}
	return &deleted, nil
}
