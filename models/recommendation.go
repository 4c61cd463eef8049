package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Recommendation is a listing one user pointed out to another.
type Recommendation struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FromUserID primitive.ObjectID `bson:"fromUserId" json:"fromUserId"`
	ToUserID   primitive.ObjectID `bson:"toUserId" json:"toUserId"`
	PropertyID primitive.ObjectID `bson:"propertyId" json:"propertyId"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

type RecommendationRequest struct {
	PropertyID string `json:"propertyId" validate:"required,len=24,hexadecimal"`
	ToEmail    string `json:"toEmail" validate:"required,email"`
}

// RecommendedProperty is a listing as seen by the recipient.
type RecommendedProperty struct {
	Property      `bson:",inline"`
	RecommendedBy primitive.ObjectID `bson:"recommendedBy" json:"recommendedBy"`
}
