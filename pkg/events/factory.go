package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventFactory creates CloudEvents for POS domain events
type EventFactory struct {
	source string
}

// NewEventFactory creates a new EventFactory for a specific source
func NewEventFactory(source string) *EventFactory {
	return &EventFactory{source: source}
}

// CreateEvent creates a new POSCloudEvent with the given parameters
func (f *EventFactory) CreateEvent(
	ctx context.Context,
	eventType string,
	subject string,
	data interface{},
) *POSCloudEvent {
	return &POSCloudEvent{
		SpecVersion:     "1.0",
		Type:            eventType,
		Source:          f.source,
		Subject:         subject,
		ID:              uuid.New().String(),
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Data:            data,
	}
}

// CreateTenantEvent creates an event carrying tenant and correlation tracking
func (f *EventFactory) CreateTenantEvent(
	ctx context.Context,
	eventType string,
	subject string,
	data interface{},
	tenantID string,
	correlationID string,
) *POSCloudEvent {
	event := f.CreateEvent(ctx, eventType, subject, data)
	event.TenantID = tenantID
	event.CorrelationID = correlationID
	return event
}

// CreateOrderCreatedEvent creates an OrderCreated event
func (f *EventFactory) CreateOrderCreatedEvent(
	ctx context.Context,
	orderID string,
	tableNumber string,
	items []OrderLine,
	total float64,
	totalCost float64,
) *POSCloudEvent {
	data := OrderCreatedData{
		OrderID:     orderID,
		TableNumber: tableNumber,
		Items:       items,
		Total:       total,
		TotalCost:   totalCost,
	}
	return f.CreateEvent(ctx, OrderCreated, "order/"+orderID, data)
}

// CreateOrderStatusChangedEvent creates an OrderStatusChanged event
func (f *EventFactory) CreateOrderStatusChangedEvent(
	ctx context.Context,
	orderID string,
	fromStatus string,
	toStatus string,
	stockDeducted bool,
) *POSCloudEvent {
	data := OrderStatusChangedData{
		OrderID:       orderID,
		FromStatus:    fromStatus,
		ToStatus:      toStatus,
		StockDeducted: stockDeducted,
	}
	return f.CreateEvent(ctx, OrderStatusChanged, "order/"+orderID, data)
}

// CreateOrderMergedEvent creates an OrderMerged event
func (f *EventFactory) CreateOrderMergedEvent(
	ctx context.Context,
	mergedOrderID string,
	originalOrderIDs []string,
	total float64,
	mergedBy string,
) *POSCloudEvent {
	data := OrderMergedData{
		MergedOrderID:    mergedOrderID,
		OriginalOrderIDs: originalOrderIDs,
		Total:            total,
		MergedBy:         mergedBy,
	}
	return f.CreateEvent(ctx, OrderMerged, "order/"+mergedOrderID, data)
}

// CreateOrderSettledEvent creates an OrderSettled event
func (f *EventFactory) CreateOrderSettledEvent(
	ctx context.Context,
	orderID string,
	total float64,
	paymentMethod string,
	shiftID string,
	customerID string,
) *POSCloudEvent {
	data := OrderSettledData{
		OrderID:       orderID,
		Total:         total,
		PaymentMethod: paymentMethod,
		ShiftID:       shiftID,
		CustomerID:    customerID,
	}
	return f.CreateEvent(ctx, OrderSettled, "order/"+orderID, data)
}

// CreateStockMovementEvent creates a StockMovement event
func (f *EventFactory) CreateStockMovementEvent(
	ctx context.Context,
	ingredientID string,
	movementType string,
	qty float64,
	stockBefore float64,
	stockAfter float64,
	referenceID string,
	note string,
) *POSCloudEvent {
	data := StockMovementData{
		IngredientID: ingredientID,
		MovementType: movementType,
		Qty:          qty,
		StockBefore:  stockBefore,
		StockAfter:   stockAfter,
		ReferenceID:  referenceID,
		Note:         note,
	}
	return f.CreateEvent(ctx, StockMovement, "ingredient/"+ingredientID, data)
}

// CreateShiftOpenedEvent creates a ShiftOpened event
func (f *EventFactory) CreateShiftOpenedEvent(
	ctx context.Context,
	shiftID string,
	startCash float64,
	openedBy string,
) *POSCloudEvent {
	data := ShiftOpenedData{
		ShiftID:   shiftID,
		StartCash: startCash,
		OpenedBy:  openedBy,
	}
	return f.CreateEvent(ctx, ShiftOpened, "shift/"+shiftID, data)
}

// CreateShiftClosedEvent creates a ShiftClosed event
func (f *EventFactory) CreateShiftClosedEvent(
	ctx context.Context,
	shiftID string,
	cashSales float64,
	nonCashSales float64,
	endCash float64,
	variance float64,
) *POSCloudEvent {
	data := ShiftClosedData{
		ShiftID:      shiftID,
		CashSales:    cashSales,
		NonCashSales: nonCashSales,
		EndCash:      endCash,
		Variance:     variance,
	}
	return f.CreateEvent(ctx, ShiftClosed, "shift/"+shiftID, data)
}

// CreatePointsAwardedEvent creates a PointsAwarded event
func (f *EventFactory) CreatePointsAwardedEvent(
	ctx context.Context,
	customerID string,
	orderID string,
	pointsEarned int64,
	tier string,
	totalSpent float64,
) *POSCloudEvent {
	data := PointsAwardedData{
		CustomerID:   customerID,
		OrderID:      orderID,
		PointsEarned: pointsEarned,
		Tier:         tier,
		TotalSpent:   totalSpent,
	}
	return f.CreateEvent(ctx, PointsAwarded, "customer/"+customerID, data)
}
