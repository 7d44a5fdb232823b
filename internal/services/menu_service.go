package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pythonegrove/codesamples/internal/cache"
	"github.com/pythonegrove/codesamples/internal/db"
	"github.com/pythonegrove/codesamples/internal/models"
)

// IMenuService builds the top navigation menu of a base.
type IMenuService interface {
	TopMenu(ctx context.Context, baseSlug string) (*models.Menu, error)
	Invalidate(ctx context.Context, baseSlug string) error
}

type menuService struct {
	db    *mongo.Database
	cache cache.IJSONCache
	ttl   time.Duration
}

// NewMenuService creates a new MenuService. A nil cache disables caching.
func NewMenuService(database *mongo.Database, c cache.IJSONCache, ttl time.Duration) IMenuService {
	return &menuService{db: database, cache: c, ttl: ttl}
}

// TopMenuPipeline joins the items of baseSlug with their category and orders them
// by category order, then item order.
func TopMenuPipeline(baseSlug string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"base": baseSlug}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         db.MenuCategoriesCollection,
			"localField":   "category_id",
			"foreignField": "_id",
			"as":           "category",
		}}},
		{{Key: "$unwind", Value: "$category"}},
		{{Key: "$sort", Value: bson.D{
			{Key: "category.order", Value: 1},
			{Key: "category._id", Value: 1},
			{Key: "order", Value: 1},
			{Key: "_id", Value: 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":           0,
			"category_name": "$category.category_name",
			"item_name":     1,
			"url":           1,
		}}},
	}
}

// GroupMenu groups ordered rows by category name. Category order follows the
// first appearance of each category; item order within a category is kept.
func GroupMenu(rows []models.MenuRow) *models.Menu {
	menu := models.NewMenu()
	for _, row := range rows {
		menu.Add(row)
	}
	return menu
}

func (s *menuService) TopMenu(ctx context.Context, baseSlug string) (*models.Menu, error) {
	if s.cache != nil {
		cached := models.NewMenu()
		hit, err := s.cache.GetJSON(ctx, baseSlug, cached)
		if err != nil {
			log.Printf("Menu cache read failed for base %s: %v", baseSlug, err)
		} else if hit {
			return cached, nil
		}
	}

	cursor, err := s.db.Collection(db.MenuItemsCollection).Aggregate(ctx, TopMenuPipeline(baseSlug))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate menu for base %s: %w", baseSlug, err)
	}
	defer cursor.Close(ctx)

	var rows []models.MenuRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode menu rows: %w", err)
	}
	menu := GroupMenu(rows)

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, baseSlug, menu, s.ttl); err != nil {
			log.Printf("Menu cache write failed for base %s: %v", baseSlug, err)
		}
	}
	return menu, nil
}

// Invalidate drops the cached menu of a base.
func (s *menuService) Invalidate(ctx context.Context, baseSlug string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, baseSlug)
}
