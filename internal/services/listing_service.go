package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pythonegrove/codesamples/internal/db"
	"github.com/pythonegrove/codesamples/internal/models"
)

// IListingService defines the read operations the site performs on property listings.
type IListingService interface {
	FindByListingID(ctx context.Context, listingID string) (*models.PropertyListing, error)
	ListRentals(ctx context.Context, markets []string, location LocationQuery) ([]models.PropertyListing, error)
	PageRentals(ctx context.Context, markets []string, location LocationQuery, pageNumber, pageSize int) ([]models.PropertyListing, Pagination, error)
	FindRentalsByListingIDs(ctx context.Context, listingIDs []string) ([]models.PropertyListing, error)
}

// listingService implements IListingService.
type listingService struct {
	db *mongo.Database
}

// NewListingService creates a new ListingService.
func NewListingService(database *mongo.Database) IListingService {
	return &listingService{db: database}
}

// rentalSort puts featured listings first, newest updates next.
var rentalSort = bson.D{
	{Key: "featured", Value: -1},
	{Key: "updated_at", Value: -1},
	{Key: "listing_id", Value: 1},
}

// RentalFilter scopes rentals to the given markets and applies the location query.
// An empty market list matches nothing.
func RentalFilter(markets []string, location LocationQuery) bson.M {
	if markets == nil {
		markets = []string{}
	}
	filter := bson.M{
		"listing_type": models.ListingTypeRental,
		"market":       bson.M{"$in": markets},
	}
	for k, v := range location.Filter() {
		filter[k] = v
	}
	return filter
}

// FindByListingID returns mongo.ErrNoDocuments when the listing does not exist.
func (s *listingService) FindByListingID(ctx context.Context, listingID string) (*models.PropertyListing, error) {
	var listing models.PropertyListing
	err := s.db.Collection(db.ListingsCollection).FindOne(ctx, bson.M{"listing_id": listingID}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding listing %s: %w", listingID, err)
	}
	return &listing, nil
}

// ListRentals returns every rental of the markets matching location.
func (s *listingService) ListRentals(ctx context.Context, markets []string, location LocationQuery) ([]models.PropertyListing, error) {
	return s.find(ctx, RentalFilter(markets, location), options.Find().SetSort(rentalSort))
}

// PageRentals returns one page of ListRentals. Out of range page numbers are clamped.
func (s *listingService) PageRentals(ctx context.Context, markets []string, location LocationQuery, pageNumber, pageSize int) ([]models.PropertyListing, Pagination, error) {
	filter := RentalFilter(markets, location)

	total, err := s.db.Collection(db.ListingsCollection).CountDocuments(ctx, filter)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to count rentals: %w", err)
	}
	page := NewPagination(pageNumber, pageSize, total)

	opts := options.Find().
		SetSort(rentalSort).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Size))
	listings, err := s.find(ctx, filter, opts)
	if err != nil {
		return nil, Pagination{}, err
	}
	return listings, page, nil
}

// FindRentalsByListingIDs returns the rentals among listingIDs, featured first.
func (s *listingService) FindRentalsByListingIDs(ctx context.Context, listingIDs []string) ([]models.PropertyListing, error) {
	if len(listingIDs) == 0 {
		return []models.PropertyListing{}, nil
	}
	filter := bson.M{
		"listing_type": models.ListingTypeRental,
		"listing_id":   bson.M{"$in": listingIDs},
	}
	opts := options.Find().SetSort(bson.D{{Key: "featured", Value: -1}, {Key: "listing_id", Value: 1}})
	return s.find(ctx, filter, opts)
}

func (s *listingService) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.PropertyListing, error) {
	cursor, err := s.db.Collection(db.ListingsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to execute listing query: %w", err)
	}
	defer cursor.Close(ctx)

	listings := []models.PropertyListing{}
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}
	return listings, nil
}
