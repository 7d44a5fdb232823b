package models

import "time"

// UserPropertyBookmark links a user to a listing they saved.
type UserPropertyBookmark struct {
	UserID    string    `bson:"user_id" json:"user_id"`
	ListingID string    `bson:"listing_id" json:"listing_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
