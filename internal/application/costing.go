package application

import (
	"context"
	"fmt"

	"github.com/developerapptim/superkafe-multitenant-sub004/internal/domain"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/logging"
)

// CostingService resolves recipes (expanding bundles one level) and
// computes the locked per-unit cost of goods at order creation. It is
// pure read and compute; no stock is mutated here.
type CostingService struct {
	catalog        domain.CatalogReader
	ingredientRepo domain.IngredientRepository
	logger         *logging.Logger
}

// NewCostingService creates a new CostingService
func NewCostingService(catalog domain.CatalogReader, ingredientRepo domain.IngredientRepository, logger *logging.Logger) *CostingService {
	return &CostingService{
		catalog:        catalog,
		ingredientRepo: ingredientRepo,
		logger:         logger.WithComponent("costing"),
	}
}

// ResolveIngredients maps a menu item and quantity to the flat list of
// (ingredient, quantity) requirements. A bundle expands one level into
// its components' recipes, summing quantities for shared ingredients.
// A menu item with no recipe resolves to an empty list.
func (s *CostingService) ResolveIngredients(ctx context.Context, tenantID, menuItemID string, qty int) ([]domain.IngredientRequirement, error) {
	item, err := s.catalog.GetMenuItem(ctx, tenantID, menuItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}
	if item == nil {
		return nil, domain.ErrMenuItemNotFound
	}

	totals := make(map[string]float64)
	order := make([]string, 0)

	accumulate := func(recipe *domain.Recipe, units float64) {
		if recipe == nil {
			return
		}
		for _, ing := range recipe.Ingredients {
			if _, seen := totals[ing.IngredientID]; !seen {
				order = append(order, ing.IngredientID)
			}
			totals[ing.IngredientID] += ing.QuantityRequired * units
		}
	}

	if item.IsBundle {
		for _, comp := range item.BundleComponents {
			recipe, err := s.catalog.GetRecipe(ctx, tenantID, comp.ProductID)
			if err != nil {
				return nil, fmt.Errorf("failed to get recipe for bundle component %s: %w", comp.ProductID, err)
			}
			accumulate(recipe, float64(comp.Quantity*qty))
		}
	} else {
		recipe, err := s.catalog.GetRecipe(ctx, tenantID, menuItemID)
		if err != nil {
			return nil, fmt.Errorf("failed to get recipe: %w", err)
		}
		accumulate(recipe, float64(qty))
	}

	requirements := make([]domain.IngredientRequirement, 0, len(order))
	for _, id := range order {
		requirements = append(requirements, domain.IngredientRequirement{
			IngredientID: id,
			RequiredQty:  totals[id],
		})
	}
	return requirements, nil
}

// LockCosts enriches order items with their frozen per-unit cost of
// goods and returns the order's total cost. The per-unit cost is the
// sum over resolved ingredients of costPerRecipeUnit * quantityRequired;
// items without a recipe lock at zero. Once stored on the order the
// value is never recomputed, so later price changes cannot alter a
// placed order's margin.
func (s *CostingService) LockCosts(ctx context.Context, tenantID string, items []domain.OrderItem) ([]domain.OrderItem, float64, error) {
	totalCost := 0.0
	enriched := make([]domain.OrderItem, len(items))

	for i, item := range items {
		perUnit, err := s.unitCost(ctx, tenantID, item.MenuItemID)
		if err != nil {
			return nil, 0, err
		}

		item.LockedCost = perUnit
		enriched[i] = item
		totalCost += perUnit * float64(item.Qty)
	}

	return enriched, totalCost, nil
}

// unitCost computes the cost of goods for one unit of a menu item
func (s *CostingService) unitCost(ctx context.Context, tenantID, menuItemID string) (float64, error) {
	requirements, err := s.ResolveIngredients(ctx, tenantID, menuItemID, 1)
	if err != nil {
		return 0, err
	}
	if len(requirements) == 0 {
		return 0, nil
	}

	cost := 0.0
	for _, req := range requirements {
		ing, err := s.ingredientRepo.FindByID(ctx, tenantID, req.IngredientID)
		if err != nil {
			return 0, fmt.Errorf("failed to get ingredient %s: %w", req.IngredientID, err)
		}
		if ing == nil {
			// A dangling reference would also fail the process-stage
			// deduction; reject at placement instead of locking a cost
			// the order can never realize.
			s.logger.Warn("recipe references missing ingredient",
				"menuItemId", menuItemID, "ingredientId", req.IngredientID)
			return 0, fmt.Errorf("%w: %s", domain.ErrIngredientNotFound, req.IngredientID)
		}
		cost += ing.CostPerRecipeUnit() * req.RequiredQty
	}
	return cost, nil
}
