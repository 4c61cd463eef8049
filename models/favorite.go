package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Favorite is a listing a user saved for later.
type Favorite struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	PropertyID primitive.ObjectID `bson:"propertyId" json:"propertyId"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

type FavoriteRequest struct {
	PropertyID string `json:"propertyId" validate:"required,len=24,hexadecimal"`
}
