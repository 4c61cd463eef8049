package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dcode-github/rental_listing_platform/filters"
	"github.com/dcode-github/rental_listing_platform/models"
	"github.com/dcode-github/rental_listing_platform/store"
)

type PropertyStore struct {
	coll    *mongo.Collection
	reviews string
}

func (s *PropertyStore) Create(ctx context.Context, p *models.Property) error {
	stamp(&p.ID, &p.CreatedAt)
	p.UpdatedAt = p.CreatedAt
	if p.Reviews == nil {
		p.Reviews = []primitive.ObjectID{}
	}
	if _, err := s.coll.InsertOne(ctx, p); err != nil {
		return translate(err)
	}
	return nil
}

func (s *PropertyStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	return findOne[models.Property](ctx, s.coll, bson.M{"_id": id})
}

// propertyWithReviews is the shape produced by the $lookup stage.
type propertyWithReviews struct {
	models.Property `bson:",inline"`
	ReviewDocs      []models.Review `bson:"reviewDocs"`
}

// FindDetail expands the review ids with a $lookup and restores the order
// of the property's review list, which $lookup does not guarantee.
func (s *PropertyStore) FindDetail(ctx context.Context, id primitive.ObjectID) (*models.PropertyDetail, error) {
	pipeline := mongo.Pipeline{
		{
			{Key: "$match", Value: bson.M{"_id": id}},
		},
		{
			{Key: "$lookup", Value: bson.M{
				"from":         s.reviews,
				"localField":   "reviews",
				"foreignField": "_id",
				"as":           "reviewDocs",
			}},
		},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregating property %s: %w", id.Hex(), err)
	}
	defer cursor.Close(ctx)

	var rows []propertyWithReviews
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decoding property %s: %w", id.Hex(), err)
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}

	row := rows[0]
	byID := make(map[primitive.ObjectID]models.Review, len(row.ReviewDocs))
	for _, r := range row.ReviewDocs {
		byID[r.ID] = r
	}
	detail := &models.PropertyDetail{Property: row.Property, Reviews: []models.Review{}}
	for _, rid := range row.Property.Reviews {
		if r, ok := byID[rid]; ok {
			detail.Reviews = append(detail.Reviews, r)
		}
	}
	return detail, nil
}

func (s *PropertyStore) FindAll(ctx context.Context) ([]models.Property, error) {
	return findMany[models.Property](ctx, s.coll, bson.M{})
}

func (s *PropertyStore) FindByCity(ctx context.Context, city string) ([]models.Property, error) {
	return findMany[models.Property](ctx, s.coll, bson.M{"city": city})
}

func (s *PropertyStore) FindByLocality(ctx context.Context, locality string) ([]models.Property, error) {
	return findMany[models.Property](ctx, s.coll, bson.M{"locality": locality})
}

func (s *PropertyStore) FindBySlug(ctx context.Context, slug string) (*models.Property, error) {
	return findOne[models.Property](ctx, s.coll, bson.M{"slug": slug})
}

func (s *PropertyStore) Filter(ctx context.Context, f filters.PropertyFilter) ([]models.Property, error) {
	opts := options.Find().SetSkip(f.Skip()).SetLimit(f.Limit)
	return findMany[models.Property](ctx, s.coll, f.BSON(), opts)
}

func (s *PropertyStore) Replace(ctx context.Context, p *models.Property) error {
	p.UpdatedAt = time.Now()
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *PropertyStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("deleting property %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *PropertyStore) PushReview(ctx context.Context, propertyID, reviewID primitive.ObjectID) error {
	update := bson.M{
		"$push": bson.M{"reviews": reviewID},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": propertyID}, update)
	if err != nil {
		return fmt.Errorf("pushing review onto %s: %w", propertyID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *PropertyStore) PullReview(ctx context.Context, propertyID, reviewID primitive.ObjectID) error {
	update := bson.M{"$pull": bson.M{"reviews": reviewID}}
	if _, err := s.coll.UpdateOne(ctx, bson.M{"_id": propertyID}, update); err != nil {
		return fmt.Errorf("pulling review from %s: %w", propertyID.Hex(), err)
	}
	return nil
}
