package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names shared by the services.
const (
	BasesCollection               = "bases"
	ListingsCollection            = "property_listings"
	BookmarksCollection           = "user_property_bookmarks"
	MenuCategoriesCollection      = "menu_categories"
	MenuItemsCollection           = "menu_items"
	InformationRequestsCollection = "information_requests"
	EmailTemplatesCollection      = "email_templates"
)

// ConnectDB initializes and returns a MongoDB client and database instance.
func ConnectDB(uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	ctxPing, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := client.Ping(ctxPing, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Printf("Connected to MongoDB database %q", dbName)
	return client, client.Database(dbName), nil
}

// DisconnectDB closes the MongoDB client connection.
func DisconnectDB(client *mongo.Client) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect MongoDB: %w", err)
	}
	log.Println("MongoDB connection closed.")
	return nil
}

// indexSpecs lists the indexes the site queries rely on.
var indexSpecs = map[string][]mongo.IndexModel{
	BasesCollection: {
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "domains", Value: 1}}},
	},
	ListingsCollection: {
		{Keys: bson.D{{Key: "listing_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "listing_type", Value: 1}, {Key: "market", Value: 1}, {Key: "featured", Value: -1}}},
	},
	BookmarksCollection: {
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "listing_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	MenuCategoriesCollection: {
		{Keys: bson.D{{Key: "base", Value: 1}, {Key: "order", Value: 1}}},
	},
	MenuItemsCollection: {
		{Keys: bson.D{{Key: "base", Value: 1}, {Key: "category_id", Value: 1}, {Key: "order", Value: 1}}},
	},
	InformationRequestsCollection: {
		{Keys: bson.D{{Key: "listing_id", Value: 1}, {Key: "created_at", Value: -1}}},
	},
	EmailTemplatesCollection: {
		{Keys: bson.D{{Key: "template_id", Value: 1}, {Key: "locale", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
}

// EnsureIndexes creates the indexes in indexSpecs. Existing indexes are left alone.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	for collection, models := range indexSpecs {
		if _, err := database.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
	}
	return nil
}
