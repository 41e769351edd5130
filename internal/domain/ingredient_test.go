package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestIngredient(stockQty, unitCost float64) *Ingredient {
	now := time.Now().UTC()
	return &Ingredient{
		IngredientID:   "ing-coffee-beans",
		TenantID:       "tenant-1",
		Name:           "Coffee Beans",
		StockQty:       stockQty,
		UnitCost:       unitCost,
		Unit:           "g",
		ConversionRate: 1,
		Type:           IngredientPhysical,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestIngredientDeduct(t *testing.T) {
	t.Run("deduct records out movement with snapshots", func(t *testing.T) {
		ing := createTestIngredient(1000, 0.1)

		entry, err := ing.Deduct(20, "order ORD-001", "ORD-001", StockPolicyPermissive)
		require.NoError(t, err)
		require.NotNil(t, entry)

		assert.Equal(t, 980.0, ing.StockQty)
		assert.Equal(t, MovementOut, entry.Type)
		assert.Equal(t, 20.0, entry.Qty)
		assert.Equal(t, 1000.0, entry.StockBefore)
		assert.Equal(t, 980.0, entry.StockAfter)
		assert.Equal(t, "ORD-001", entry.ReferenceID)
	})

	t.Run("non-physical ingredient is a silent no-op", func(t *testing.T) {
		ing := createTestIngredient(0, 0)
		ing.Type = IngredientNonPhysical

		entry, err := ing.Deduct(5, "service fee", "", StockPolicyStrict)
		require.NoError(t, err)
		assert.Nil(t, entry)
		assert.Equal(t, 0.0, ing.StockQty)
	})

	t.Run("permissive policy allows negative stock", func(t *testing.T) {
		ing := createTestIngredient(10, 0.1)

		entry, err := ing.Deduct(25, "", "", StockPolicyPermissive)
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, -15.0, ing.StockQty)
		assert.True(t, ing.IsOversold())
	})

	t.Run("strict policy rejects going negative", func(t *testing.T) {
		ing := createTestIngredient(10, 0.1)

		entry, err := ing.Deduct(25, "", "", StockPolicyStrict)
		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.Nil(t, entry)
		assert.Equal(t, 10.0, ing.StockQty)
	})

	t.Run("non-positive quantity rejected", func(t *testing.T) {
		ing := createTestIngredient(100, 0.1)
		_, err := ing.Deduct(0, "", "", StockPolicyPermissive)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})
}

func TestIngredientRevert(t *testing.T) {
	t.Run("revert restores a prior deduction", func(t *testing.T) {
		ing := createTestIngredient(1000, 0.1)

		_, err := ing.Deduct(20, "order", "ORD-001", StockPolicyPermissive)
		require.NoError(t, err)

		entry, err := ing.Revert(20, "cancel ORD-001", "ORD-001")
		require.NoError(t, err)
		require.NotNil(t, entry)

		assert.Equal(t, 1000.0, ing.StockQty)
		assert.Equal(t, MovementIn, entry.Type)
		assert.Equal(t, 980.0, entry.StockBefore)
		assert.Equal(t, 1000.0, entry.StockAfter)
	})

	t.Run("non-physical revert is a silent no-op", func(t *testing.T) {
		ing := createTestIngredient(0, 0)
		ing.Type = IngredientNonPhysical

		entry, err := ing.Revert(5, "", "")
		require.NoError(t, err)
		assert.Nil(t, entry)
	})
}

func TestIngredientRestock(t *testing.T) {
	t.Run("moving average cost", func(t *testing.T) {
		// 100 units at cost 10 plus 100 new units bought for 2000
		// => (100*10 + 2000) / 200 = 15 per unit
		ing := createTestIngredient(100, 10)

		entry, err := ing.Restock(100, 1, 2000)
		require.NoError(t, err)
		require.NotNil(t, entry)

		assert.Equal(t, 200.0, ing.StockQty)
		assert.InDelta(t, 15.0, ing.UnitCost, 1e-9)
		assert.Equal(t, MovementRestock, entry.Type)
		assert.Equal(t, 100.0, entry.Qty)
		assert.Equal(t, 20.0, ing.LastPurchasePrice)
		require.NotNil(t, ing.LastPurchaseDate)
	})

	t.Run("conversion rate expands purchase units", func(t *testing.T) {
		// 2 kg at 1000 g/kg for 50000 => 2000 g added at 25/g
		ing := createTestIngredient(0, 0)
		ing.ConversionRate = 1000

		entry, err := ing.Restock(2, 1000, 50_000)
		require.NoError(t, err)

		assert.Equal(t, 2000.0, ing.StockQty)
		assert.Equal(t, 2000.0, entry.Qty)
		assert.InDelta(t, 25.0, ing.CostPerRecipeUnit(), 1e-9)
	})

	t.Run("restock onto empty stock uses purchase cost", func(t *testing.T) {
		ing := createTestIngredient(0, 99)

		_, err := ing.Restock(50, 1, 500)
		require.NoError(t, err)

		assert.Equal(t, 50.0, ing.StockQty)
		assert.InDelta(t, 10.0, ing.UnitCost, 1e-9)
	})

	t.Run("non-positive quantity rejected", func(t *testing.T) {
		ing := createTestIngredient(100, 10)
		_, err := ing.Restock(0, 1, 100)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})
}

func TestIngredientManualAdjust(t *testing.T) {
	t.Run("negative delta records opname", func(t *testing.T) {
		ing := createTestIngredient(100, 10)

		entry, err := ing.ManualAdjust(-7, "stock count")
		require.NoError(t, err)

		assert.Equal(t, 93.0, ing.StockQty)
		assert.Equal(t, MovementOpname, entry.Type)
		assert.Equal(t, 7.0, entry.Qty)
	})

	t.Run("positive delta records in", func(t *testing.T) {
		ing := createTestIngredient(100, 10)

		entry, err := ing.ManualAdjust(12, "found in storeroom")
		require.NoError(t, err)

		assert.Equal(t, 112.0, ing.StockQty)
		assert.Equal(t, MovementIn, entry.Type)
		assert.Equal(t, 12.0, entry.Qty)
	})

	t.Run("zero delta rejected", func(t *testing.T) {
		ing := createTestIngredient(100, 10)
		_, err := ing.ManualAdjust(0, "")
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})
}

func TestCostPerRecipeUnit(t *testing.T) {
	ing := createTestIngredient(1000, 50_000)
	ing.ConversionRate = 1000
	assert.InDelta(t, 50.0, ing.CostPerRecipeUnit(), 1e-9)

	// no conversion rate falls back to raw cost
	ing.ConversionRate = 0
	assert.Equal(t, 50_000.0, ing.CostPerRecipeUnit())
}
