package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pythonegrove/codesamples/internal/db"
)

// IBookmarkService reads the listings a user has saved.
type IBookmarkService interface {
	ListingIDsForUser(ctx context.Context, userID string) ([]string, error)
}

type bookmarkService struct {
	db *mongo.Database
}

// NewBookmarkService creates a new BookmarkService.
func NewBookmarkService(database *mongo.Database) IBookmarkService {
	return &bookmarkService{db: database}
}

// ListingIDsForUser returns the distinct listing ids bookmarked by userID.
func (s *bookmarkService) ListingIDsForUser(ctx context.Context, userID string) ([]string, error) {
	values, err := s.db.Collection(db.BookmarksCollection).Distinct(ctx, "listing_id", bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to load bookmarks for user %s: %w", userID, err)
	}

	ids := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
