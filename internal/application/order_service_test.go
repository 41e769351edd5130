package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/developerapptim/superkafe-multitenant-sub004/internal/domain"
	apperrors "github.com/developerapptim/superkafe-multitenant-sub004/pkg/errors"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/tenant"
)

type orderServiceFixture struct {
	orders      *fakeOrderRepo
	ingredients *fakeIngredientRepo
	history     *fakeHistoryRepo
	shifts      *fakeShiftRepo
	customers   *fakeCustomerRepo
	catalog     *fakeCatalog
	service     *OrderService
	shiftSvc    *ShiftService
	ctx         context.Context
}

func newOrderServiceFixture(t *testing.T) *orderServiceFixture {
	t.Helper()

	history := newFakeHistoryRepo()
	ingredients := newFakeIngredientRepo(history)
	orders := newFakeOrderRepo()
	shifts := newFakeShiftRepo()
	customers := newFakeCustomerRepo()
	catalog := newFakeCatalog()
	logger := testLogger()
	m := testMetrics()

	costing := NewCostingService(catalog, ingredients, logger)
	loyalty := NewLoyaltyService(customers, domain.DefaultLoyaltyConfig(), logger, m)
	service := NewOrderService(orders, ingredients, shifts, costing, loyalty, catalog,
		passthroughTx{}, domain.StockPolicyPermissive, logger, m)

	return &orderServiceFixture{
		orders:      orders,
		ingredients: ingredients,
		history:     history,
		shifts:      shifts,
		customers:   customers,
		catalog:     catalog,
		service:     service,
		shiftSvc:    NewShiftService(shifts, logger),
		ctx:         tenant.ToContext(context.Background(), &tenant.Context{TenantID: "tenant-1"}),
	}
}

// seedLatte sets up coffee beans (1000 g at 0.1/g) and a latte recipe
// needing 20 g per cup.
func (f *orderServiceFixture) seedLatte() {
	f.ingredients.add(&domain.Ingredient{
		IngredientID:   "ing-coffee-beans",
		TenantID:       "tenant-1",
		Name:           "Coffee Beans",
		StockQty:       1000,
		UnitCost:       0.1,
		Unit:           "g",
		ConversionRate: 1,
		Type:           domain.IngredientPhysical,
		Version:        1,
	})
	f.catalog.items["menu-latte"] = &domain.MenuItem{
		MenuItemID: "menu-latte", TenantID: "tenant-1", Name: "Latte", Price: 25_000,
	}
	f.catalog.recipes["menu-latte"] = &domain.Recipe{
		MenuItemID: "menu-latte",
		TenantID:   "tenant-1",
		Ingredients: []domain.RecipeIngredient{
			{IngredientID: "ing-coffee-beans", QuantityRequired: 20},
		},
	}
}

func (f *orderServiceFixture) createOrder(t *testing.T, cmd CreateOrderCommand) *OrderCreatedResponse {
	t.Helper()
	resp, err := f.service.CreateOrder(f.ctx, cmd)
	require.NoError(t, err)
	return resp
}

func (f *orderServiceFixture) stockOf(t *testing.T, ingredientID string) float64 {
	t.Helper()
	ing, err := f.ingredients.FindByID(f.ctx, "tenant-1", ingredientID)
	require.NoError(t, err)
	require.NotNil(t, ing)
	return ing.StockQty
}

func TestBasicSaleScenario(t *testing.T) {
	f := newOrderServiceFixture(t)
	f.seedLatte()

	resp := f.createOrder(t, CreateOrderCommand{
		Items: []CreateOrderItemCommand{{MenuItemID: "menu-latte", Qty: 1}},
	})

	// locked cost: 20 g * 0.1 per g
	require.Len(t, resp.Order.Items, 1)
	assert.InDelta(t, 2.0, resp.Order.Items[0].LockedCost, 1e-9)
	assert.False(t, resp.Order.StockDeducted)
	assert.Equal(t, 1000.0, f.stockOf(t, "ing-coffee-beans"))

	_, err := f.service.UpdateStatus(f.ctx, UpdateStatusCommand{OrderID: resp.Order.OrderID, Status: "process"})
	require.NoError(t, err)

	assert.Equal(t, 980.0, f.stockOf(t, "ing-coffee-beans"))
	outEntries := f.history.entriesOfType(domain.MovementOut)
	require.Len(t, outEntries, 1)
	assert.Equal(t, 20.0, outEntries[0].Qty)
	assert.Equal(t, 1000.0, outEntries[0].StockBefore)
	assert.Equal(t, 980.0, outEntries[0].StockAfter)
}

func TestIdempotentStockDeduction(t *testing.T) {
	f := newOrderServiceFixture(t)
	f.seedLatte()

	resp := f.createOrder(t, CreateOrderCommand{
		Items: []CreateOrderItemCommand{{MenuItemID: "menu-latte", Qty: 2}},
	})

	_, err := f.service.UpdateStatus(f.ctx, UpdateStatusCommand{OrderID: resp.Order.OrderID, Status: "process"})
	require.NoError(t, err)
	afterFirst := f.stockOf(t, "ing-coffee-beans")
	assert.Equal(t, 960.0, afterFirst)

	// the repeat call updates status only, stock untouched
	_, err = f.service.UpdateStatus(f.ctx, UpdateStatusCommand{OrderID: resp.Order.OrderID, Status: "process"})
	require.NoError(t, err)
	assert.Equal(t, afterFirst, f.stockOf(t, "ing-coffee-beans"))
	assert.Len(t, f.history.entriesOfType(domain.MovementOut), 1)
}

func TestConcurrentProcessTransitionsDeductOnce(t *testing.T) {
	f := newOrderServiceFixture(t)
	f.seedLatte()

	resp := f.createOrder(t, CreateOrderCommand{
		Items: []CreateOrderItemCommand{{MenuItemID: "menu-latte", Qty: 1}},
	})

	// Two callers read the order before either commits; both snapshots
	// carry stockDeducted=false.
	first, err := f.orders.FindByID(f.ctx, "tenant-1", resp.Order.OrderID)
	require.NoError(t, err)
	require.NotNil(t, first)
	second, err := f.orders.FindByID(f.ctx, "tenant-1", resp.Order.OrderID)
	require.NoError(t, err)
	require.NotNil(t, second)

	require.NoError(t, f.service.deductAndTransition(f.ctx, first, domain.StatusNew))

	// The loser's stale flag is overruled by the persisted claim; the
	// transition still succeeds but touches no stock.
	require.NoError(t, f.service.deductAndTransition(f.ctx, second, domain.StatusNew))

	assert.Equal(t, 980.0, f.stockOf(t, "ing-coffee-beans"))
	assert.Len(t, f.history.entriesOfType(domain.MovementOut), 1)

	stored, err := f.orders.FindByID(f.ctx, "tenant-1", resp.Order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcess, stored.Status)
	assert.True(t, stored.StockDeducted)
}

func TestConcurrentCancelsRevertOnce(t *testing.T) {
	f := newOrderServiceFixture(t)
	f.seedLatte()

	resp := f.createOrder(t, CreateOrderCommand{
		Items: []CreateOrderItemCommand{{MenuItemID: "menu-latte", Qty: 1}},
	})
	_, err := f.service.UpdateStatus(f.ctx, UpdateStatusCommand{OrderID: resp.Order.OrderID, Status: "process"})
	require.NoError(t, err)
	require.Equal(t, 980.0, f.stockOf(t, "ing-coffee-beans"))

	first, err := f.orders.FindByID(f.ctx, "tenant-1", resp.Order.OrderID)
	require.NoError(t, err)
	second, err := f.orders.FindByID(f.ctx, "tenant-1", resp.Order.OrderID)
	require.NoError(t, err)

	require.NoError(t, f.service.cancelOrder(f.ctx, first, domain.StatusProcess, "customer left"))
	require.NoError(t, f.service.cancelOrder(f.ctx, second, domain.StatusProcess, "customer left"))

	assert.Equal(t, 1000.0, f.stockOf(t, "ing-coffee-beans"))
	assert.Len(t, f.history.entriesOfType(domain.MovementIn), 1)

	stored, err := f.orders.FindByID(f.ctx, "tenant-1", resp.Order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancel, stored.Status)
	assert.False(t, stored.StockDeducted)
}

func TestDeductionReversionSymmetry(t *testing.T) {
	f := newOrderServiceFixture(t)
	f.seedLatte()

	resp := f.createOrder(t, CreateOrderCommand{
		Items: []CreateOrderItemCommand{{MenuItemID: "menu-latte", Qty: 3}},
	})

	_, err := f.service.UpdateStatus(f.ctx, UpdateStatusCommand{OrderID: resp.Order.OrderID, Status: "process"})
	require.NoError(t, err)
	assert.Equal(t, 940.0, f.stockOf(t, "ing-coffee-beans"))

	result, err := f.service.UpdateStatus(f.ctx, UpdateStatusCommand{OrderID: resp.Order.OrderID, Status: "cancel", Reason: "customer left"})
	require.NoError(t, err)

	assert.Equal(t, 1000.0, f.stockOf(t, "ing-coffee-beans"))
	assert.False(t, result.Order.StockDeducted)
	assert.Equal(t, "cancel", result.Order.Status)
	require.Len(t, f.history.entriesOfType(domain.MovementIn), 1)
	assert.Equal(t, 60.0, f.history.entriesOfType(domain.MovementIn)[0].Qty)
}

func TestCancellationRefund(t *testing.T) {
	f := newOrderServiceFixture(t)
	f.seedLatte()

	resp := f.createOrder(t, CreateOrderCommand{
		Items: []CreateOrderItemCommand{{MenuItemID: "menu-latte", Qty: 1}},
	})
	_, err := f.service.UpdateStatus(f.ctx, UpdateStatusCommand{OrderID: resp.Order.OrderID, Status: "process"})
	require.NoError(t, err)
	_, err = f.service.PayOrder(f.ctx, PayOrderCommand{OrderID: resp.Order.OrderID, PaymentMethod: "cash"})
	require.NoError(t, err)

	result, err := f.service.UpdateStatus(f.ctx, UpdateStatusCommand{OrderID: resp.Order.OrderID, Status: "cancel"})
	require.NoError(t, err)

	assert.Equal(t, 1000.0, f.stockOf(t, "ing-coffee-beans"))
	assert.Equal(t, "refunded", result.Order.PaymentStatus)
}

func TestCostLockImmutability(t *testing.T) {
	f := newOrderServiceFixture(t)
	f.seedLatte()

	resp := f.createOrder(t, CreateOrderCommand{
		Items: []CreateOrderItemCommand{{MenuItemID: "menu-latte", Qty: 1}},
	})
	assert.InDelta(t, 2.0, resp.Order.Items[0].LockedCost, 1e-9)

	// the beans get pricier after the order was placed
	ing, err := f.ingredients.FindByID(f.ctx, "tenant-1", "ing-coffee-beans")
	require.NoError(t, err)
	ing.UnitCost = 5.0
	f.ingredients.add(ing)

	fetched, err := f.service.GetOrder(f.ctx, resp.Order.OrderID)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, fetched.Items[0].LockedCost, 1e-9)

	// a new order locks at the new price
	resp2 := f.createOrder(t, CreateOrderCommand{
		Items: []CreateOrderItemCommand{{MenuItemID: "menu-latte", Qty: 1}},
	})
	assert.InDelta(t, 100.0, resp2.Order.Items[0].LockedCost, 1e-9)
}

func TestBundleExpansion(t *testing.T) {
	f := newOrderServiceFixture(t)
	f.seedLatte()
	f.ingredients.add(&domain.Ingredient{
		IngredientID: "ing-milk", TenantID: "tenant-1", Name: "Milk",
		StockQty: 5000, UnitCost: 0.02, Unit: "ml", ConversionRate: 1,
		Type: domain.IngredientPhysical, Version: 1,
	})
	f.catalog.items["menu-milk-tea"] = &domain.MenuItem{
		MenuItemID: "menu-milk-tea", TenantID: "tenant-1", Name: "Milk Tea", Price: 20_000,
	}
	f.catalog.recipes["menu-milk-tea"] = &domain.Recipe{
		MenuItemID: "menu-milk-tea",
		TenantID:   "tenant-1",
		Ingredients: []domain.RecipeIngredient{
			{IngredientID: "ing-milk", QuantityRequired: 150},
			{IngredientID: "ing-coffee-beans", QuantityRequired: 5},
		},
	}
	// bundle: 2x latte + 1x milk tea per set
	f.catalog.items["menu-duo-set"] = &domain.MenuItem{
		MenuItemID: "menu-duo-set", TenantID: "tenant-1", Name: "Duo Set", Price: 60_000,
		IsBundle: true,
		BundleComponents: []domain.BundleComponent{
			{ProductID: "menu-latte", Quantity: 2},
			{ProductID: "menu-milk-tea", Quantity: 1},
		},
	}

	resp := f.createOrder(t, CreateOrderCommand{
		Items: []CreateOrderItemCommand{{MenuItemID: "menu-duo-set", Qty: 3}},
	})

	// locked cost per set: 2*(20*0.1) + 1*(150*0.02 + 5*0.1) = 4 + 3.5
	assert.InDelta(t, 7.5, resp.Order.Items[0].LockedCost, 1e-9)

	_, err := f.service.UpdateStatus(f.ctx, UpdateStatusCommand{OrderID: resp.Order.OrderID, Status: "process"})
	require.NoError(t, err)

	// beans: 3 sets * (2*20 + 1*5) = 135; milk: 3 * 150 = 450
	assert.Equal(t, 865.0, f.stockOf(t, "ing-coffee-beans"))
	assert.Equal(t, 4550.0, f.stockOf(t, "ing-milk"))
}

func TestNoRecipeLocksZeroCost(t *testing.T) {
	f := newOrderServiceFixture(t)
	f.catalog.items["menu-service-fee"] = &domain.MenuItem{
		MenuItemID: "menu-service-fee", TenantID: "tenant-1", Name: "Service Fee", Price: 5_000,
	}

	resp := f.createOrder(t, CreateOrderCommand{
		Items: []CreateOrderItemCommand{{MenuItemID: "menu-service-fee", Qty: 1}},
	})
	assert.Zero(t, resp.Order.Items[0].LockedCost)

	// processing an order with no recipe deducts nothing
	_, err := f.service.UpdateStatus(f.ctx, UpdateStatusCommand{OrderID: resp.Order.OrderID, Status: "process"})
	require.NoError(t, err)
	assert.Empty(t, f.history.entriesOfType(domain.MovementOut))
}

func TestMergePreservesTotals(t *testing.T) {
	f := newOrderServiceFixture(t)
	f.seedLatte()

	a := f.createOrder(t, CreateOrderCommand{
		Items: []CreateOrderItemCommand{{MenuItemID: "menu-latte", Qty: 2}},
	})
	b := f.createOrder(t, CreateOrderCommand{
		Items: []CreateOrderItemCommand{{MenuItemID: "menu-latte", Qty: 1}},
	})

	merged, err := f.service.MergeOrders(f.ctx, MergeOrdersCommand{
		OrderIDs: []string{a.Order.OrderID, b.Order.OrderID},
		MergedBy: "user-1",
	})
	require.NoError(t, err)

	assert.Equal(t, a.Order.Total+b.Order.Total, merged.Total)
	assert.Len(t, merged.Items, len(a.Order.Items)+len(b.Order.Items))
	assert.True(t, merged.IsMerged)

	srcA, err := f.service.GetOrder(f.ctx, a.Order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "merged", srcA.Status)
	assert.Equal(t, merged.OrderID, srcA.MergedIntoID)
}

func TestMergeRejectsDeductedOrder(t *testing.T) {
	f := newOrderServiceFixture(t)
	f.seedLatte()

	a := f.createOrder(t, CreateOrderCommand{
		Items: []CreateOrderItemCommand{{MenuItemID: "menu-latte", Qty: 1}},
	})
	b := f.createOrder(t, CreateOrderCommand{
		Items: []CreateOrderItemCommand{{MenuItemID: "menu-latte", Qty: 1}},
	})
	_, err := f.service.UpdateStatus(f.ctx, UpdateStatusCommand{OrderID: b.Order.OrderID, Status: "process"})
	require.NoError(t, err)

	_, err = f.service.MergeOrders(f.ctx, MergeOrdersCommand{
		OrderIDs: []string{a.Order.OrderID, b.Order.OrderID},
		MergedBy: "user-1",
	})
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidTransition, appErr.Code)
}

func TestDeletionGuard(t *testing.T) {
	f := newOrderServiceFixture(t)
	f.seedLatte()

	t.Run("unpaid order deletes", func(t *testing.T) {
		resp := f.createOrder(t, CreateOrderCommand{
			Items: []CreateOrderItemCommand{{MenuItemID: "menu-latte", Qty: 1}},
		})
		require.NoError(t, f.service.DeleteOrder(f.ctx, DeleteOrderCommand{OrderID: resp.Order.OrderID}))

		_, err := f.service.GetOrder(f.ctx, resp.Order.OrderID)
		require.Error(t, err)
	})

	t.Run("paid order refuses deletion", func(t *testing.T) {
		resp := f.createOrder(t, CreateOrderCommand{
			Items: []CreateOrderItemCommand{{MenuItemID: "menu-latte", Qty: 1}},
		})
		_, err := f.service.PayOrder(f.ctx, PayOrderCommand{OrderID: resp.Order.OrderID, PaymentMethod: "cash"})
		require.NoError(t, err)

		err = f.service.DeleteOrder(f.ctx, DeleteOrderCommand{OrderID: resp.Order.OrderID})
		require.Error(t, err)
		appErr, ok := err.(*apperrors.AppError)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeDeletionForbidden, appErr.Code)
	})

	t.Run("done order refuses deletion", func(t *testing.T) {
		resp := f.createOrder(t, CreateOrderCommand{
			Items: []CreateOrderItemCommand{{MenuItemID: "menu-latte", Qty: 1}},
		})
		_, err := f.service.UpdateStatus(f.ctx, UpdateStatusCommand{OrderID: resp.Order.OrderID, Status: "process"})
		require.NoError(t, err)
		_, err = f.service.UpdateStatus(f.ctx, UpdateStatusCommand{OrderID: resp.Order.OrderID, Status: "done"})
		require.NoError(t, err)

		err = f.service.DeleteOrder(f.ctx, DeleteOrderCommand{OrderID: resp.Order.OrderID})
		require.Error(t, err)
	})
}

func TestPayingAlreadyPaidOrderRejected(t *testing.T) {
	f := newOrderServiceFixture(t)
	f.seedLatte()

	resp := f.createOrder(t, CreateOrderCommand{
		Items: []CreateOrderItemCommand{{MenuItemID: "menu-latte", Qty: 1}},
	})
	_, err := f.service.PayOrder(f.ctx, PayOrderCommand{OrderID: resp.Order.OrderID, PaymentMethod: "cash"})
	require.NoError(t, err)

	_, err = f.service.PayOrder(f.ctx, PayOrderCommand{OrderID: resp.Order.OrderID, PaymentMethod: "cash"})
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInvalidTransition, appErr.Code)
}

func TestSettlementRunsOnce(t *testing.T) {
	f := newOrderServiceFixture(t)
	f.seedLatte()
	_, err := f.shiftSvc.OpenShift(f.ctx, OpenShiftCommand{StartCash: 100_000, OpenedBy: "user-1"})
	require.NoError(t, err)

	resp := f.createOrder(t, CreateOrderCommand{
		Items: []CreateOrderItemCommand{{MenuItemID: "menu-latte", Qty: 1}},
	})
	_, err = f.service.UpdateStatus(f.ctx, UpdateStatusCommand{OrderID: resp.Order.OrderID, Status: "process"})
	require.NoError(t, err)
	_, err = f.service.PayOrder(f.ctx, PayOrderCommand{OrderID: resp.Order.OrderID, PaymentMethod: "cash"})
	require.NoError(t, err)

	result, err := f.service.UpdateStatus(f.ctx, UpdateStatusCommand{OrderID: resp.Order.OrderID, Status: "done"})
	require.NoError(t, err)
	require.NotNil(t, result.Settlement)
	assert.True(t, result.Settlement.Settled)
	assert.Equal(t, EffectApplied, result.Settlement.Ledger.Status)

	shift, err := f.shifts.FindOpen(f.ctx, "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, 25_000.0, shift.CashSales)

	// repeating the done transition does not double-count the sale
	again, err := f.service.UpdateStatus(f.ctx, UpdateStatusCommand{OrderID: resp.Order.OrderID, Status: "done"})
	require.NoError(t, err)
	assert.Nil(t, again.Settlement)

	shift, err = f.shifts.FindOpen(f.ctx, "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, 25_000.0, shift.CashSales)
}

func TestSettlementWithNoOpenShiftIsBestEffort(t *testing.T) {
	f := newOrderServiceFixture(t)
	f.seedLatte()

	resp := f.createOrder(t, CreateOrderCommand{
		Items: []CreateOrderItemCommand{{MenuItemID: "menu-latte", Qty: 1}},
	})
	_, err := f.service.UpdateStatus(f.ctx, UpdateStatusCommand{OrderID: resp.Order.OrderID, Status: "process"})
	require.NoError(t, err)
	_, err = f.service.PayOrder(f.ctx, PayOrderCommand{OrderID: resp.Order.OrderID, PaymentMethod: "cash"})
	require.NoError(t, err)

	result, err := f.service.UpdateStatus(f.ctx, UpdateStatusCommand{OrderID: resp.Order.OrderID, Status: "done"})
	require.NoError(t, err)
	require.NotNil(t, result.Settlement)
	// the sale still settles; the missed accrual is reported, not hidden
	assert.True(t, result.Settlement.Settled)
	assert.Equal(t, EffectSkipped, result.Settlement.Ledger.Status)
	assert.Equal(t, "done", result.Order.Status)
}

func TestLoyaltyTierBoundary(t *testing.T) {
	f := newOrderServiceFixture(t)
	f.seedLatte()
	f.catalog.items["menu-feast"] = &domain.MenuItem{
		MenuItemID: "menu-feast", TenantID: "tenant-1", Name: "Feast", Price: 100_000,
	}

	customer, err := domain.NewCustomer("CUST-100", "tenant-1", "Rina", "+628111111111")
	require.NoError(t, err)
	customer.TotalSpent = 499_999
	require.NoError(t, f.customers.Save(f.ctx, customer))

	resp := f.createOrder(t, CreateOrderCommand{
		CustomerID: "CUST-100",
		Items:      []CreateOrderItemCommand{{MenuItemID: "menu-feast", Qty: 1}},
	})
	_, err = f.service.UpdateStatus(f.ctx, UpdateStatusCommand{OrderID: resp.Order.OrderID, Status: "process"})
	require.NoError(t, err)
	_, err = f.service.PayOrder(f.ctx, PayOrderCommand{OrderID: resp.Order.OrderID, PaymentMethod: "qris"})
	require.NoError(t, err)

	result, err := f.service.UpdateStatus(f.ctx, UpdateStatusCommand{OrderID: resp.Order.OrderID, Status: "done"})
	require.NoError(t, err)
	require.NotNil(t, result.Settlement)
	assert.Equal(t, EffectApplied, result.Settlement.Loyalty.Status)
	// pre-order spend 499,999 is regular: floor(100000/10000)*1.0 = 10
	assert.Equal(t, int64(10), result.Settlement.PointsEarned)

	updated, err := f.customers.FindByID(f.ctx, "tenant-1", "CUST-100")
	require.NoError(t, err)
	assert.Equal(t, 599_999.0, updated.TotalSpent)
	assert.Equal(t, domain.TierSilver, updated.Tier)
}

func TestWalkInPaidFlow(t *testing.T) {
	f := newOrderServiceFixture(t)
	f.seedLatte()
	_, err := f.shiftSvc.OpenShift(f.ctx, OpenShiftCommand{StartCash: 50_000, OpenedBy: "user-1"})
	require.NoError(t, err)

	resp := f.createOrder(t, CreateOrderCommand{
		Items:         []CreateOrderItemCommand{{MenuItemID: "menu-latte", Qty: 1}},
		Paid:          true,
		PaymentMethod: "cash",
	})

	// one call: deducted, done, paid, settled
	assert.Equal(t, "done", resp.Order.Status)
	assert.Equal(t, "paid", resp.Order.PaymentStatus)
	assert.True(t, resp.Order.StockDeducted)
	require.NotNil(t, resp.Settlement)
	assert.True(t, resp.Settlement.Settled)
	assert.Equal(t, 980.0, f.stockOf(t, "ing-coffee-beans"))

	shift, err := f.shifts.FindOpen(f.ctx, "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, 25_000.0, shift.CashSales)
	assert.Equal(t, 75_000.0, shift.CurrentCash)
}

func TestPermissiveOversell(t *testing.T) {
	f := newOrderServiceFixture(t)
	f.seedLatte()

	ing, err := f.ingredients.FindByID(f.ctx, "tenant-1", "ing-coffee-beans")
	require.NoError(t, err)
	ing.StockQty = 10
	f.ingredients.add(ing)

	resp := f.createOrder(t, CreateOrderCommand{
		Items: []CreateOrderItemCommand{{MenuItemID: "menu-latte", Qty: 1}},
	})
	_, err = f.service.UpdateStatus(f.ctx, UpdateStatusCommand{OrderID: resp.Order.OrderID, Status: "process"})
	require.NoError(t, err)

	assert.Equal(t, -10.0, f.stockOf(t, "ing-coffee-beans"))
}

func TestStrictPolicyRejectsOversell(t *testing.T) {
	f := newOrderServiceFixture(t)
	f.seedLatte()

	logger := testLogger()
	m := testMetrics()
	costing := NewCostingService(f.catalog, f.ingredients, logger)
	loyalty := NewLoyaltyService(f.customers, domain.DefaultLoyaltyConfig(), logger, m)
	strict := NewOrderService(f.orders, f.ingredients, f.shifts, costing, loyalty, f.catalog,
		passthroughTx{}, domain.StockPolicyStrict, logger, m)

	ing, err := f.ingredients.FindByID(f.ctx, "tenant-1", "ing-coffee-beans")
	require.NoError(t, err)
	ing.StockQty = 10
	f.ingredients.add(ing)

	resp, err := strict.CreateOrder(f.ctx, CreateOrderCommand{
		Items: []CreateOrderItemCommand{{MenuItemID: "menu-latte", Qty: 1}},
	})
	require.NoError(t, err)

	_, err = strict.UpdateStatus(f.ctx, UpdateStatusCommand{OrderID: resp.Order.OrderID, Status: "process"})
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, 10.0, f.stockOf(t, "ing-coffee-beans"))
}

func TestFailedWalkInCreationLeavesNothing(t *testing.T) {
	f := newOrderServiceFixture(t)
	f.seedLatte()

	logger := testLogger()
	m := testMetrics()
	costing := NewCostingService(f.catalog, f.ingredients, logger)
	loyalty := NewLoyaltyService(f.customers, domain.DefaultLoyaltyConfig(), logger, m)
	strict := NewOrderService(f.orders, f.ingredients, f.shifts, costing, loyalty, f.catalog,
		passthroughTx{}, domain.StockPolicyStrict, logger, m)

	ing, err := f.ingredients.FindByID(f.ctx, "tenant-1", "ing-coffee-beans")
	require.NoError(t, err)
	ing.StockQty = 10
	f.ingredients.add(ing)

	_, err = strict.CreateOrder(f.ctx, CreateOrderCommand{
		Items:         []CreateOrderItemCommand{{MenuItemID: "menu-latte", Qty: 1}},
		Paid:          true,
		PaymentMethod: "cash",
	})
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeInsufficientStock, appErr.Code)

	// the rejected placement must not leave a paid order or any stock
	// movement behind
	active, err := f.orders.FindActive(f.ctx, "tenant-1", domain.DefaultPagination())
	require.NoError(t, err)
	assert.Empty(t, active)
	assert.Equal(t, 10.0, f.stockOf(t, "ing-coffee-beans"))
	assert.Empty(t, f.history.entriesOfType(domain.MovementOut))
}

func TestDanglingIngredientRejectedAtPlacement(t *testing.T) {
	f := newOrderServiceFixture(t)

	f.catalog.items["menu-matcha"] = &domain.MenuItem{
		MenuItemID: "menu-matcha", TenantID: "tenant-1", Name: "Matcha Latte", Price: 30_000,
	}
	f.catalog.recipes["menu-matcha"] = &domain.Recipe{
		MenuItemID: "menu-matcha",
		TenantID:   "tenant-1",
		Ingredients: []domain.RecipeIngredient{
			{IngredientID: "ing-matcha-powder", QuantityRequired: 5},
		},
	}

	_, err := f.service.CreateOrder(f.ctx, CreateOrderCommand{
		Items: []CreateOrderItemCommand{{MenuItemID: "menu-matcha", Qty: 1}},
	})
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestSecondOpenShiftRejected(t *testing.T) {
	f := newOrderServiceFixture(t)

	first, err := f.shiftSvc.OpenShift(f.ctx, OpenShiftCommand{StartCash: 100_000, OpenedBy: "user-1"})
	require.NoError(t, err)

	_, err = f.shiftSvc.OpenShift(f.ctx, OpenShiftCommand{StartCash: 200_000, OpenedBy: "user-2"})
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)

	open, err := f.shifts.FindOpen(f.ctx, "tenant-1")
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, first.ShiftID, open.ShiftID)
}
