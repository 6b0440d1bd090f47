package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Favorite bookmarks a listing for a user. (UserID, PropertyType, PropertyID) is unique.
type Favorite struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	PropertyType string             `bson:"propertyType" json:"propertyType"`
	PropertyID   primitive.ObjectID `bson:"propertyId" json:"propertyId"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
