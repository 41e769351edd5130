package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test fixtures
func createTestOrderItems() []OrderItem {
	return []OrderItem{
		{
			MenuItemID: "menu-latte",
			Name:       "Latte",
			Qty:        2,
			UnitPrice:  25_000,
			LockedCost: 4_000,
		},
		{
			MenuItemID: "menu-croissant",
			Name:       "Croissant",
			Qty:        1,
			UnitPrice:  18_000,
			LockedCost: 7_500,
		},
	}
}

func createTestOrder(t *testing.T, orderID string) *Order {
	t.Helper()
	order, err := NewOrder(orderID, "tenant-1", createTestOrderItems())
	require.NoError(t, err)
	return order
}

func TestNewOrder(t *testing.T) {
	t.Run("valid order creation", func(t *testing.T) {
		order, err := NewOrder("ORD-001", "tenant-1", createTestOrderItems())
		require.NoError(t, err)
		require.NotNil(t, order)

		assert.Equal(t, "ORD-001", order.OrderID)
		assert.Equal(t, StatusNew, order.Status)
		assert.Equal(t, PaymentUnpaid, order.PaymentStatus)
		assert.False(t, order.StockDeducted)
		assert.False(t, order.Settled)
		assert.Equal(t, 68_000.0, order.Total)
		assert.Equal(t, 68_000.0, order.Subtotal)
		assert.Equal(t, 15_500.0, order.TotalCost)
		assert.Equal(t, 3, order.TotalItems())

		events := order.DomainEvents()
		require.Len(t, events, 1)
		created, ok := events[0].(*OrderCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, "ORD-001", created.OrderID)
	})

	t.Run("order with no items", func(t *testing.T) {
		order, err := NewOrder("ORD-002", "tenant-1", nil)
		assert.ErrorIs(t, err, ErrNoItems)
		assert.Nil(t, order)
	})
}

func TestOrderMarkProcessing(t *testing.T) {
	t.Run("first call requires deduction", func(t *testing.T) {
		order := createTestOrder(t, "ORD-010")

		deduct, err := order.MarkProcessing()
		require.NoError(t, err)
		assert.True(t, deduct)
		assert.Equal(t, StatusProcess, order.Status)
		assert.True(t, order.StockDeducted)
	})

	t.Run("second call is a stock no-op", func(t *testing.T) {
		order := createTestOrder(t, "ORD-011")

		_, err := order.MarkProcessing()
		require.NoError(t, err)

		deduct, err := order.MarkProcessing()
		require.NoError(t, err)
		assert.False(t, deduct)
		assert.Equal(t, StatusProcess, order.Status)
		assert.True(t, order.StockDeducted)
	})

	t.Run("cancelled order rejected", func(t *testing.T) {
		order := createTestOrder(t, "ORD-012")
		_, err := order.Cancel("changed mind")
		require.NoError(t, err)

		_, err = order.MarkProcessing()
		assert.ErrorIs(t, err, ErrOrderCancelled)
	})

	t.Run("done order rejected", func(t *testing.T) {
		order := createTestOrder(t, "ORD-013")
		_, err := order.MarkProcessing()
		require.NoError(t, err)
		require.NoError(t, order.MarkServed())
		require.NoError(t, order.MarkDone())

		_, err = order.MarkProcessing()
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestOrderLifecycle(t *testing.T) {
	order := createTestOrder(t, "ORD-020")

	_, err := order.MarkProcessing()
	require.NoError(t, err)
	require.NoError(t, order.MarkServed())
	require.NoError(t, order.MarkDone())
	assert.Equal(t, StatusDone, order.Status)

	// done is idempotent
	require.NoError(t, order.MarkDone())

	// served cannot follow done
	assert.ErrorIs(t, order.MarkServed(), ErrInvalidStatus)
}

func TestOrderPay(t *testing.T) {
	t.Run("pay once", func(t *testing.T) {
		order := createTestOrder(t, "ORD-030")

		require.NoError(t, order.Pay(PaymentMethodCash))
		assert.Equal(t, PaymentPaid, order.PaymentStatus)
		assert.Equal(t, PaymentMethodCash, order.PaymentMethod)
	})

	t.Run("paying an already-paid order is rejected", func(t *testing.T) {
		order := createTestOrder(t, "ORD-031")
		require.NoError(t, order.Pay(PaymentMethodQRIS))

		err := order.Pay(PaymentMethodCash)
		assert.ErrorIs(t, err, ErrAlreadyPaid)
		assert.Equal(t, PaymentMethodQRIS, order.PaymentMethod)
	})
}

func TestOrderMarkSettled(t *testing.T) {
	t.Run("settles paid order once", func(t *testing.T) {
		order := createTestOrder(t, "ORD-040")
		require.NoError(t, order.Pay(PaymentMethodCash))

		require.NoError(t, order.MarkSettled())
		assert.True(t, order.Settled)

		assert.ErrorIs(t, order.MarkSettled(), ErrAlreadySettled)
	})

	t.Run("unpaid order cannot settle", func(t *testing.T) {
		order := createTestOrder(t, "ORD-041")
		assert.ErrorIs(t, order.MarkSettled(), ErrNotPaid)
	})
}

func TestOrderCancel(t *testing.T) {
	t.Run("cancel before deduction needs no revert", func(t *testing.T) {
		order := createTestOrder(t, "ORD-050")

		revert, err := order.Cancel("customer left")
		require.NoError(t, err)
		assert.False(t, revert)
		assert.Equal(t, StatusCancel, order.Status)
		assert.Equal(t, "customer left", order.CancellationReason)
		assert.False(t, order.StockDeducted)
	})

	t.Run("cancel after deduction flags revert", func(t *testing.T) {
		order := createTestOrder(t, "ORD-051")
		_, err := order.MarkProcessing()
		require.NoError(t, err)

		revert, err := order.Cancel("kitchen out of stock")
		require.NoError(t, err)
		assert.True(t, revert)
		assert.False(t, order.StockDeducted)
	})

	t.Run("cancelling a paid order refunds it", func(t *testing.T) {
		order := createTestOrder(t, "ORD-052")
		require.NoError(t, order.Pay(PaymentMethodCash))

		_, err := order.Cancel("")
		require.NoError(t, err)
		assert.Equal(t, PaymentRefunded, order.PaymentStatus)
	})

	t.Run("cancel is idempotent", func(t *testing.T) {
		order := createTestOrder(t, "ORD-053")
		_, err := order.Cancel("first")
		require.NoError(t, err)

		revert, err := order.Cancel("second")
		require.NoError(t, err)
		assert.False(t, revert)
		assert.Equal(t, "first", order.CancellationReason)
	})

	t.Run("done order cannot be cancelled", func(t *testing.T) {
		order := createTestOrder(t, "ORD-054")
		_, err := order.MarkProcessing()
		require.NoError(t, err)
		require.NoError(t, order.MarkDone())

		_, err = order.Cancel("too late")
		assert.ErrorIs(t, err, ErrCannotCancelTerminal)
	})
}

func TestMergeOrders(t *testing.T) {
	t.Run("merge preserves totals and item counts", func(t *testing.T) {
		a := createTestOrder(t, "ORD-060")
		b := createTestOrder(t, "ORD-061")

		merged, err := MergeOrders("ORD-062", "tenant-1", "user-1", []*Order{a, b})
		require.NoError(t, err)

		assert.Equal(t, a.Total+b.Total, merged.Total)
		assert.Len(t, merged.Items, len(a.Items)+len(b.Items))
		assert.True(t, merged.IsMerged)
		assert.Equal(t, []string{"ORD-060", "ORD-061"}, merged.OriginalOrderIDs)
		assert.Equal(t, StatusNew, merged.Status)
		assert.False(t, merged.StockDeducted)

		assert.Equal(t, StatusMerged, a.Status)
		assert.Equal(t, "ORD-062", a.MergedIntoID)
		assert.Equal(t, StatusMerged, b.Status)
		assert.False(t, a.IsActive())
	})

	t.Run("merge rejects order with deducted stock", func(t *testing.T) {
		a := createTestOrder(t, "ORD-063")
		b := createTestOrder(t, "ORD-064")
		_, err := b.MarkProcessing()
		require.NoError(t, err)

		_, err = MergeOrders("ORD-065", "tenant-1", "user-1", []*Order{a, b})
		assert.ErrorIs(t, err, ErrCannotMergeDeducted)
		// sources untouched on failure
		assert.Equal(t, StatusNew, a.Status)
	})

	t.Run("merge rejects cancelled source", func(t *testing.T) {
		a := createTestOrder(t, "ORD-066")
		b := createTestOrder(t, "ORD-067")
		_, err := b.Cancel("")
		require.NoError(t, err)

		_, err = MergeOrders("ORD-068", "tenant-1", "user-1", []*Order{a, b})
		assert.ErrorIs(t, err, ErrCannotMergeTerminal)
	})

	t.Run("merge requires two orders", func(t *testing.T) {
		a := createTestOrder(t, "ORD-069")
		_, err := MergeOrders("ORD-070", "tenant-1", "user-1", []*Order{a})
		assert.ErrorIs(t, err, ErrMergeNeedsTwoOrders)
	})
}

func TestOrderCanDelete(t *testing.T) {
	t.Run("unpaid new order can be deleted", func(t *testing.T) {
		order := createTestOrder(t, "ORD-080")
		assert.NoError(t, order.CanDelete())
	})

	t.Run("paid order cannot be deleted", func(t *testing.T) {
		order := createTestOrder(t, "ORD-081")
		require.NoError(t, order.Pay(PaymentMethodCard))
		assert.ErrorIs(t, order.CanDelete(), ErrCannotDeletePaid)
	})

	t.Run("done order cannot be deleted", func(t *testing.T) {
		order := createTestOrder(t, "ORD-082")
		_, err := order.MarkProcessing()
		require.NoError(t, err)
		require.NoError(t, order.MarkDone())
		assert.ErrorIs(t, order.CanDelete(), ErrCannotDeleteDone)
	})
}
