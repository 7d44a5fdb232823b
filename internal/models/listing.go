package models

import (
	"strings"
	"time"
)

// ListingType distinguishes rentals from sales.
type ListingType string

const (
	ListingTypeRental ListingType = "r"
	ListingTypeSale   ListingType = "s"
)

// PropertyListing is a property record imported from a listing feed.
type PropertyListing struct {
	ListingID   string      `bson:"listing_id" json:"listing_id"` // Feed (MLS) identifier
	ListingType ListingType `bson:"listing_type" json:"listing_type"`
	Market      string      `bson:"market" json:"market"`
	Featured    bool        `bson:"featured" json:"featured"`
	Title       string      `bson:"title" json:"title"`
	Description string      `bson:"description" json:"description"`
	Address1    string      `bson:"address1" json:"address1"`
	City        string      `bson:"city" json:"city"`
	State       string      `bson:"state" json:"state"`
	Zip         string      `bson:"zip" json:"zip"`
	Price       float64     `bson:"price" json:"price"`
	Bedrooms    int         `bson:"bedrooms" json:"bedrooms"`
	Bathrooms   float64     `bson:"bathrooms" json:"bathrooms"`
	Photos      []string    `bson:"photos" json:"photos"` // Object storage keys
	UpdatedAt   time.Time   `bson:"updated_at" json:"updated_at"`
}

// IsRental reports whether the listing is for rent.
func (l PropertyListing) IsRental() bool {
	return l.ListingType == ListingTypeRental
}

// FullAddress joins the non-empty address parts, e.g. "12 Main St, Springfield, IL 62701".
func (l PropertyListing) FullAddress() string {
	region := strings.TrimSpace(strings.Join([]string{l.State, l.Zip}, " "))
	parts := make([]string, 0, 3)
	for _, p := range []string{l.Address1, l.City, region} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
