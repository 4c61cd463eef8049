package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Property  primitive.ObjectID `bson:"property" json:"property"`
	User      string             `bson:"user" json:"user"`
	Username  string             `bson:"username" json:"username"`
	Rating    float64            `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type ReviewRequest struct {
	PropertyID string  `json:"propertyId" validate:"required,len=24,hexadecimal"`
	Rating     float64 `json:"rating" validate:"required,min=1,max=5"`
	Comment    string  `json:"comment" validate:"required,max=2000"`
	Username   string  `json:"username" validate:"max=100"`
}
