// Package store defines the persistence contracts used by the controllers.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dcode-github/rental_listing_platform/filters"
	"github.com/dcode-github/rental_listing_platform/models"
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

type PropertyStore interface {
	Create(ctx context.Context, p *models.Property) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Property, error)
	FindDetail(ctx context.Context, id primitive.ObjectID) (*models.PropertyDetail, error)
	FindAll(ctx context.Context) ([]models.Property, error)
	FindByCity(ctx context.Context, city string) ([]models.Property, error)
	FindByLocality(ctx context.Context, locality string) ([]models.Property, error)
	FindBySlug(ctx context.Context, slug string) (*models.Property, error)
	Filter(ctx context.Context, f filters.PropertyFilter) ([]models.Property, error)
	Replace(ctx context.Context, p *models.Property) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	PushReview(ctx context.Context, propertyID, reviewID primitive.ObjectID) error
	PullReview(ctx context.Context, propertyID, reviewID primitive.ObjectID) error
}

type ReviewStore interface {
	Create(ctx context.Context, r *models.Review) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	FindAll(ctx context.Context) ([]models.Review, error)
	// Delete removes the review and returns the deleted document.
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Replace(ctx context.Context, u *models.User) error
}

type ContactStore interface {
	Create(ctx context.Context, c *models.Contact) error
	FindAll(ctx context.Context) ([]models.Contact, error)
}

type BlogStore interface {
	Create(ctx context.Context, b *models.Blog) error
	FindAll(ctx context.Context) ([]models.Blog, error)
	FindBySlug(ctx context.Context, slug string) (*models.Blog, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type FavoriteStore interface {
	Add(ctx context.Context, f *models.Favorite) error
	// Properties returns the user's saved listings, newest first. Favorites
	// whose listing was deleted are skipped.
	Properties(ctx context.Context, userID primitive.ObjectID) ([]models.Property, error)
	Remove(ctx context.Context, userID, propertyID primitive.ObjectID) error
}

type RecommendationStore interface {
	Create(ctx context.Context, rec *models.Recommendation) error
	// ForUser returns the listings recommended to userID, newest first.
	ForUser(ctx context.Context, userID primitive.ObjectID) ([]models.RecommendedProperty, error)
}

// Stores bundles every collection the API touches.
type Stores struct {
	Properties PropertyStore
	Reviews    ReviewStore
	Users      UserStore
	Contacts   ContactStore
	Blogs      BlogStore

	Favorites       FavoriteStore
	Recommendations RecommendationStore
}
