package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Contact struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name" validate:"required,max=100"`
	Email     string             `bson:"email" json:"email" validate:"required,email"`
	Phone     string             `bson:"phone" json:"phone" validate:"omitempty,max=20"`
	Message   string             `bson:"message" json:"message" validate:"required,max=5000"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
