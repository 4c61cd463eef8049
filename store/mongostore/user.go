package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dcode-github/rental_listing_platform/models"
	"github.com/dcode-github/rental_listing_platform/store"
)

type UserStore struct {
	coll *mongo.Collection
}

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	stamp(&u.ID, &u.CreatedAt)
	u.UpdatedAt = u.CreatedAt
	_, err := s.coll.InsertOne(ctx, u)
	return translate(err)
}

func (s *UserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return findOne[models.User](ctx, s.coll, bson.M{"_id": id})
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, s.coll, bson.M{"email": email})
}

func (s *UserStore) Replace(ctx context.Context, u *models.User) error {
	u.UpdatedAt = time.Now()
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
