package domain

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors for Ingredient aggregate
var (
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrVersionConflict    = errors.New("ingredient version conflict")
)

// IngredientType distinguishes stocked goods from labor/service lines
type IngredientType string

const (
	IngredientPhysical    IngredientType = "physical"
	IngredientNonPhysical IngredientType = "non_physical"
)

// StockPolicy controls whether deductions may drive stock negative
type StockPolicy string

const (
	// StockPolicyPermissive allows negative stock; oversell is surfaced
	// through metrics and events rather than rejected.
	StockPolicyPermissive StockPolicy = "permissive"
	// StockPolicyStrict rejects any deduction that would go below zero.
	StockPolicyStrict StockPolicy = "strict"
)

// IsValid checks if the policy is a known value
func (p StockPolicy) IsValid() bool {
	return p == StockPolicyPermissive || p == StockPolicyStrict
}

// Ingredient holds per-ingredient stock level and unit cost. Version backs
// the optimistic-concurrency update in the repository: every persisted
// mutation is filtered on the version read and bumps it by one.
type Ingredient struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	IngredientID      string             `bson:"ingredientId" json:"ingredientId"`
	TenantID          string             `bson:"tenantId" json:"tenantId"`
	Name              string             `bson:"name" json:"name"`
	StockQty          float64            `bson:"stockQty" json:"stockQty"`
	UnitCost          float64            `bson:"unitCost" json:"unitCost"`
	Unit              string             `bson:"unit" json:"unit"`
	UnitOfPurchase    string             `bson:"unitOfPurchase,omitempty" json:"unitOfPurchase,omitempty"`
	ConversionRate    float64            `bson:"conversionRate" json:"conversionRate"`
	Type              IngredientType     `bson:"type" json:"type"`
	LastPurchasePrice float64            `bson:"lastPurchasePrice,omitempty" json:"lastPurchasePrice,omitempty"`
	LastPurchaseDate  *time.Time         `bson:"lastPurchaseDate,omitempty" json:"lastPurchaseDate,omitempty"`
	Version           int64              `bson:"version" json:"version"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsPhysical reports whether the ingredient tracks real stock
func (ing *Ingredient) IsPhysical() bool {
	return ing.Type == IngredientPhysical
}

// CostPerRecipeUnit returns the cost of one recipe unit (e.g. one gram),
// derived from the purchase-unit cost and the conversion rate.
func (ing *Ingredient) CostPerRecipeUnit() float64 {
	if ing.ConversionRate > 0 {
		return ing.UnitCost / ing.ConversionRate
	}
	return ing.UnitCost
}

// Deduct decrements stock by qty and returns the history entry to append.
// Non-physical ingredients are skipped silently (nil entry, nil error).
// Under the strict policy a deduction below zero is rejected; under the
// permissive policy it goes through and the caller reports the oversell.
func (ing *Ingredient) Deduct(qty float64, note, referenceID string, policy StockPolicy) (*StockHistory, error) {
	if !ing.IsPhysical() {
		return nil, nil
	}
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	if policy == StockPolicyStrict && ing.StockQty-qty < 0 {
		return nil, fmt.Errorf("%w: %s has %.2f, need %.2f", ErrInsufficientStock, ing.Name, ing.StockQty, qty)
	}

	before := ing.StockQty
	ing.StockQty -= qty
	ing.UpdatedAt = time.Now().UTC()

	return NewStockHistory(ing, MovementOut, qty, before, note, referenceID), nil
}

// Revert increments stock by qty, undoing a prior deduction. Symmetric
// with Deduct: non-physical ingredients are a silent no-op.
func (ing *Ingredient) Revert(qty float64, note, referenceID string) (*StockHistory, error) {
	if !ing.IsPhysical() {
		return nil, nil
	}
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	before := ing.StockQty
	ing.StockQty += qty
	ing.UpdatedAt = time.Now().UTC()

	return NewStockHistory(ing, MovementIn, qty, before, note, referenceID), nil
}

// Restock adds purchased stock and recomputes the moving-average unit
// cost: newCost = (oldStock*oldCost + purchaseTotal) / (oldStock + addedQty).
// A non-positive denominator falls back to purchase price per added unit.
func (ing *Ingredient) Restock(purchaseQty, conversionRate, purchaseTotal float64) (*StockHistory, error) {
	if purchaseQty <= 0 {
		return nil, ErrInvalidQuantity
	}
	if conversionRate <= 0 {
		conversionRate = 1
	}

	addedQty := purchaseQty * conversionRate
	before := ing.StockQty

	// Moving average over recipe units; a non-positive existing stock
	// contributes nothing to the average.
	oldCostPerUnit := ing.CostPerRecipeUnit()
	oldValue := before * oldCostPerUnit
	if before <= 0 {
		oldValue = 0
	}
	denom := before + addedQty
	newCostPerUnit := purchaseTotal / addedQty
	if denom > 0 && before > 0 {
		newCostPerUnit = (oldValue + purchaseTotal) / denom
	}
	ing.UnitCost = newCostPerUnit * conversionRate
	ing.ConversionRate = conversionRate

	ing.StockQty += addedQty
	now := time.Now().UTC()
	ing.LastPurchasePrice = purchaseTotal / purchaseQty
	ing.LastPurchaseDate = &now
	ing.UpdatedAt = now

	return NewStockHistory(ing, MovementRestock, addedQty, before, "restock", ""), nil
}

// ManualAdjust applies a signed stock correction. Negative deltas record
// as opname (stock count correction), positive deltas as in.
func (ing *Ingredient) ManualAdjust(delta float64, note string) (*StockHistory, error) {
	if delta == 0 {
		return nil, ErrInvalidQuantity
	}

	before := ing.StockQty
	ing.StockQty += delta
	ing.UpdatedAt = time.Now().UTC()

	movementType := MovementIn
	qty := delta
	if delta < 0 {
		movementType = MovementOpname
		qty = -delta
	}

	return NewStockHistory(ing, movementType, qty, before, note, ""), nil
}

// IsOversold reports whether the current stock level is negative
func (ing *Ingredient) IsOversold() bool {
	return ing.StockQty < 0
}
