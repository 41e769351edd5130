package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/developerapptim/superkafe-multitenant-sub004/internal/domain"
)

// CatalogRepository implements domain.CatalogReader against the menu and
// recipe collections owned by the catalog service. This side only reads;
// menu items and recipes are authored elsewhere.
type CatalogRepository struct {
	menuItems *mongo.Collection
	recipes   *mongo.Collection
}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository(db *mongo.Database) *CatalogRepository {
	menuItems := db.Collection("menu_items")
	recipes := db.Collection("recipes")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _ = menuItems.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "tenantId", Value: 1},
			{Key: "menuItemId", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	_, _ = recipes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "tenantId", Value: 1},
			{Key: "menuItemId", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})

	return &CatalogRepository{
		menuItems: menuItems,
		recipes:   recipes,
	}
}

// GetMenuItem retrieves a menu item; (nil, nil) when missing
func (r *CatalogRepository) GetMenuItem(ctx context.Context, tenantID, menuItemID string) (*domain.MenuItem, error) {
	var item domain.MenuItem
	filter := bson.M{"tenantId": tenantID, "menuItemId": menuItemID}

	err := r.menuItems.FindOne(ctx, filter).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &item, nil
}

// GetRecipe retrieves the recipe for a menu item; (nil, nil) when the item
// has no recipe (bundles, items sold without ingredient tracking)
func (r *CatalogRepository) GetRecipe(ctx context.Context, tenantID, menuItemID string) (*domain.Recipe, error) {
	var recipe domain.Recipe
	filter := bson.M{"tenantId": tenantID, "menuItemId": menuItemID}

	err := r.recipes.FindOne(ctx, filter).Decode(&recipe)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &recipe, nil
}
