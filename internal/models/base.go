package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Base is a site instance (tenant). Listings and menus are scoped to it.
type Base struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Slug         string             `bson:"slug" json:"slug"`
	Name         string             `bson:"name" json:"name"`
	Domains      []string           `bson:"domains" json:"domains"`
	Markets      []string           `bson:"markets" json:"markets"` // Listing markets served by this base
	ContactEmail string             `bson:"contact_email,omitempty" json:"contact_email,omitempty"`
}
