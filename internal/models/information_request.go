package models

import (
	"time"
)

// InformationRequest is a "contact the owner" submission about a listing.
type InformationRequest struct {
	ID        string    `bson:"_id" json:"id"`
	Base      string    `bson:"base" json:"base"` // Base slug
	ListingID string    `bson:"listing_id" json:"listing_id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Message   string    `bson:"message" json:"message"`
	UserID    string    `bson:"user_id,omitempty" json:"user_id,omitempty"` // Set if the sender was signed in
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	Sent      bool      `bson:"sent" json:"sent"` // False initially, true after the email task ran
}
