package domain

import "errors"

// Errors for catalog entities
var (
	ErrMenuItemNotFound = errors.New("menu item not found")
	ErrRecipeNotFound   = errors.New("recipe not found")
	ErrNestedBundle     = errors.New("bundle component cannot itself be a bundle")
)

// MenuItem is the catalog entry an order line references. A bundle has no
// recipe of its own; its stock consumption derives entirely from the
// recipes of its components.
type MenuItem struct {
	MenuItemID       string            `bson:"menuItemId" json:"menuItemId"`
	TenantID         string            `bson:"tenantId" json:"tenantId"`
	Name             string            `bson:"name" json:"name"`
	Price            float64           `bson:"price" json:"price"`
	IsBundle         bool              `bson:"isBundle" json:"isBundle"`
	BundleComponents []BundleComponent `bson:"bundleComponents,omitempty" json:"bundleComponents,omitempty"`
}

// BundleComponent is one constituent of a bundle menu item
type BundleComponent struct {
	ProductID string `bson:"productId" json:"productId"`
	Quantity  int    `bson:"quantity" json:"quantity"`
}

// Recipe maps a menu item to the ingredients one unit consumes. One
// recipe per menu item.
type Recipe struct {
	MenuItemID  string             `bson:"menuItemId" json:"menuItemId"`
	TenantID    string             `bson:"tenantId" json:"tenantId"`
	Ingredients []RecipeIngredient `bson:"ingredients" json:"ingredients"`
}

// RecipeIngredient is one ingredient line of a recipe. QuantityRequired
// is per menu-item unit, in the ingredient's recipe unit (gramasi).
type RecipeIngredient struct {
	IngredientID     string  `bson:"ingredientId" json:"ingredientId"`
	QuantityRequired float64 `bson:"quantityRequired" json:"quantityRequired"`
}

// IngredientRequirement is a resolved (ingredient, quantity) pair after
// recipe resolution and bundle expansion.
type IngredientRequirement struct {
	IngredientID string
	RequiredQty  float64
}

// ValidateBundle enforces the catalog-authoring rule that a bundle's
// components are plain items. Bundles of bundles are rejected here so
// order-time resolution only ever expands one level.
func ValidateBundle(item *MenuItem, lookup func(productID string) (*MenuItem, error)) error {
	if !item.IsBundle {
		return nil
	}
	for _, comp := range item.BundleComponents {
		component, err := lookup(comp.ProductID)
		if err != nil {
			return err
		}
		if component == nil {
			return ErrMenuItemNotFound
		}
		if component.IsBundle {
			return ErrNestedBundle
		}
	}
	return nil
}
