package domain

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents a domain event
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
	AggregateID() string
}

// BaseDomainEvent contains common event fields
type BaseDomainEvent struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	AggregateId string    `json:"aggregateId"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseDomainEvent) EventType() string     { return e.Type }
func (e BaseDomainEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseDomainEvent) AggregateID() string   { return e.AggregateId }

func newBaseEvent(eventType, aggregateID string) BaseDomainEvent {
	return BaseDomainEvent{
		ID:          uuid.New().String(),
		Type:        eventType,
		AggregateId: aggregateID,
		Timestamp:   time.Now().UTC(),
	}
}

// OrderCreatedEvent is raised when a new order is placed
type OrderCreatedEvent struct {
	BaseDomainEvent
	OrderID    string      `json:"orderId"`
	TenantID   string      `json:"tenantId"`
	CustomerID string      `json:"customerId,omitempty"`
	Items      []OrderItem `json:"items"`
	Total      float64     `json:"total"`
	TotalCost  float64     `json:"totalCost"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(order *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: newBaseEvent("pos.order.created", order.OrderID),
		OrderID:         order.OrderID,
		TenantID:        order.TenantID,
		CustomerID:      order.CustomerID,
		Items:           order.Items,
		Total:           order.Total,
		TotalCost:       order.TotalCost,
	}
}

// OrderStatusChangedEvent is raised on every status transition
type OrderStatusChangedEvent struct {
	BaseDomainEvent
	OrderID       string `json:"orderId"`
	TenantID      string `json:"tenantId"`
	FromStatus    Status `json:"fromStatus"`
	ToStatus      Status `json:"toStatus"`
	StockDeducted bool   `json:"stockDeducted"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(order *Order, from Status) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: newBaseEvent("pos.order.status_changed", order.OrderID),
		OrderID:         order.OrderID,
		TenantID:        order.TenantID,
		FromStatus:      from,
		ToStatus:        order.Status,
		StockDeducted:   order.StockDeducted,
	}
}

// OrderCancelledEvent is raised when an order is cancelled
type OrderCancelledEvent struct {
	BaseDomainEvent
	OrderID       string        `json:"orderId"`
	TenantID      string        `json:"tenantId"`
	Reason        string        `json:"reason"`
	StockReverted bool          `json:"stockReverted"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
}

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(order *Order, reason string) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: newBaseEvent("pos.order.cancelled", order.OrderID),
		OrderID:         order.OrderID,
		TenantID:        order.TenantID,
		Reason:          reason,
		StockReverted:   !order.StockDeducted,
		PaymentStatus:   order.PaymentStatus,
	}
}

// OrderMergedEvent is raised when orders are combined into a new order
type OrderMergedEvent struct {
	BaseDomainEvent
	OrderID          string   `json:"orderId"`
	TenantID         string   `json:"tenantId"`
	OriginalOrderIDs []string `json:"originalOrderIds"`
	MergedBy         string   `json:"mergedBy"`
	Total            float64  `json:"total"`
}

// NewOrderMergedEvent creates a new OrderMergedEvent
func NewOrderMergedEvent(order *Order, originalIDs []string, mergedBy string) *OrderMergedEvent {
	return &OrderMergedEvent{
		BaseDomainEvent:  newBaseEvent("pos.order.merged", order.OrderID),
		OrderID:          order.OrderID,
		TenantID:         order.TenantID,
		OriginalOrderIDs: originalIDs,
		MergedBy:         mergedBy,
		Total:            order.Total,
	}
}

// OrderSettledEvent is raised exactly once when ledger and loyalty
// accrual run for a paid order
type OrderSettledEvent struct {
	BaseDomainEvent
	OrderID       string        `json:"orderId"`
	TenantID      string        `json:"tenantId"`
	Total         float64       `json:"total"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	ShiftID       string        `json:"shiftId,omitempty"`
	CustomerID    string        `json:"customerId,omitempty"`
}

// NewOrderSettledEvent creates a new OrderSettledEvent
func NewOrderSettledEvent(order *Order) *OrderSettledEvent {
	return &OrderSettledEvent{
		BaseDomainEvent: newBaseEvent("pos.order.settled", order.OrderID),
		OrderID:         order.OrderID,
		TenantID:        order.TenantID,
		Total:           order.Total,
		PaymentMethod:   order.PaymentMethod,
		ShiftID:         order.ShiftID,
		CustomerID:      order.CustomerID,
	}
}

// OrderDeletedEvent is raised when an unpaid, uncompleted order is deleted
type OrderDeletedEvent struct {
	BaseDomainEvent
	OrderID  string `json:"orderId"`
	TenantID string `json:"tenantId"`
	Status   Status `json:"status"`
}

// NewOrderDeletedEvent creates a new OrderDeletedEvent
func NewOrderDeletedEvent(order *Order) *OrderDeletedEvent {
	return &OrderDeletedEvent{
		BaseDomainEvent: newBaseEvent("pos.order.deleted", order.OrderID),
		OrderID:         order.OrderID,
		TenantID:        order.TenantID,
		Status:          order.Status,
	}
}

// StockMovementEvent is raised for every ingredient stock mutation
type StockMovementEvent struct {
	BaseDomainEvent
	IngredientID string       `json:"ingredientId"`
	TenantID     string       `json:"tenantId"`
	MovementType MovementType `json:"movementType"`
	Qty          float64      `json:"qty"`
	StockBefore  float64      `json:"stockBefore"`
	StockAfter   float64      `json:"stockAfter"`
	ReferenceID  string       `json:"referenceId,omitempty"`
}

// NewStockMovementEvent creates a new StockMovementEvent
func NewStockMovementEvent(entry *StockHistory) *StockMovementEvent {
	return &StockMovementEvent{
		BaseDomainEvent: newBaseEvent("pos.stock.movement", entry.IngredientID),
		IngredientID:    entry.IngredientID,
		TenantID:        entry.TenantID,
		MovementType:    entry.Type,
		Qty:             entry.Qty,
		StockBefore:     entry.StockBefore,
		StockAfter:      entry.StockAfter,
		ReferenceID:     entry.ReferenceID,
	}
}

// OversoldEvent is raised when a permissive-policy deduction drives stock negative
type OversoldEvent struct {
	BaseDomainEvent
	IngredientID string  `json:"ingredientId"`
	TenantID     string  `json:"tenantId"`
	StockAfter   float64 `json:"stockAfter"`
	OrderID      string  `json:"orderId,omitempty"`
}

// NewOversoldEvent creates a new OversoldEvent
func NewOversoldEvent(ingredientID, tenantID string, stockAfter float64, orderID string) *OversoldEvent {
	return &OversoldEvent{
		BaseDomainEvent: newBaseEvent("pos.stock.oversold", ingredientID),
		IngredientID:    ingredientID,
		TenantID:        tenantID,
		StockAfter:      stockAfter,
		OrderID:         orderID,
	}
}

// ShiftOpenedEvent is raised when a cash-drawer shift opens
type ShiftOpenedEvent struct {
	BaseDomainEvent
	ShiftID   string  `json:"shiftId"`
	TenantID  string  `json:"tenantId"`
	StartCash float64 `json:"startCash"`
}

// NewShiftOpenedEvent creates a new ShiftOpenedEvent
func NewShiftOpenedEvent(shift *Shift) *ShiftOpenedEvent {
	return &ShiftOpenedEvent{
		BaseDomainEvent: newBaseEvent("pos.shift.opened", shift.ShiftID),
		ShiftID:         shift.ShiftID,
		TenantID:        shift.TenantID,
		StartCash:       shift.StartCash,
	}
}

// ShiftClosedEvent is raised when a shift closes, carrying the cash variance
type ShiftClosedEvent struct {
	BaseDomainEvent
	ShiftID      string  `json:"shiftId"`
	TenantID     string  `json:"tenantId"`
	EndCash      float64 `json:"endCash"`
	ExpectedCash float64 `json:"expectedCash"`
	Variance     float64 `json:"variance"`
	CashSales    float64 `json:"cashSales"`
	NonCashSales float64 `json:"nonCashSales"`
}

// NewShiftClosedEvent creates a new ShiftClosedEvent
func NewShiftClosedEvent(shift *Shift) *ShiftClosedEvent {
	return &ShiftClosedEvent{
		BaseDomainEvent: newBaseEvent("pos.shift.closed", shift.ShiftID),
		ShiftID:         shift.ShiftID,
		TenantID:        shift.TenantID,
		EndCash:         shift.EndCash,
		ExpectedCash:    shift.ExpectedCash(),
		Variance:        shift.Variance(),
		CashSales:       shift.CashSales,
		NonCashSales:    shift.NonCashSales,
	}
}

// PointsAwardedEvent is raised when loyalty points accrue on settlement
type PointsAwardedEvent struct {
	BaseDomainEvent
	CustomerID   string  `json:"customerId"`
	TenantID     string  `json:"tenantId"`
	OrderID      string  `json:"orderId"`
	PointsEarned int64   `json:"pointsEarned"`
	TierApplied  Tier    `json:"tierApplied"`
	NewTier      Tier    `json:"newTier"`
	OrderTotal   float64 `json:"orderTotal"`
}

// NewPointsAwardedEvent creates a new PointsAwardedEvent
func NewPointsAwardedEvent(customer *Customer, orderID string, pointsEarned int64, tierApplied Tier, orderTotal float64) *PointsAwardedEvent {
	return &PointsAwardedEvent{
		BaseDomainEvent: newBaseEvent("pos.loyalty.points_awarded", customer.CustomerID),
		CustomerID:      customer.CustomerID,
		TenantID:        customer.TenantID,
		OrderID:         orderID,
		PointsEarned:    pointsEarned,
		TierApplied:     tierApplied,
		NewTier:         customer.Tier,
		OrderTotal:      orderTotal,
	}
}
