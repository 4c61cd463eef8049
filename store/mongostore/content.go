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

type ContactStore struct {
	coll *mongo.Collection
}

func (s *ContactStore) Create(ctx context.Context, c *models.Contact) error {
	stamp(&c.ID, &c.CreatedAt)
	_, err := s.coll.InsertOne(ctx, c)
	return translate(err)
}

func (s *ContactStore) FindAll(ctx context.Context) ([]models.Contact, error) {
	return findMany[models.Contact](ctx, s.coll, bson.M{}, newestFirst())
}

type BlogStore struct {
	coll *mongo.Collection
}

func (s *BlogStore) Create(ctx context.Context, b *models.Blog) error {
	stamp(&b.ID, &b.CreatedAt)
	_, err := s.coll.InsertOne(ctx, b)
	return translate(err)
}

func (s *BlogStore) FindAll(ctx context.Context) ([]models.Blog, error) {
	return findMany[models.Blog](ctx, s.coll, bson.M{}, newestFirst())
}

func (s *BlogStore) FindBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	return findOne[models.Blog](ctx, s.coll, bson.M{"slug": slug})
}

func (s *BlogStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error) {
	return findOne[models.Blog](ctx, s.coll, bson.M{"_id": id})
}

func (s *BlogStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("deleting blog %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
