package events

import (
	"time"
)

// EventType constants for POS domain events
const (
	// Order events
	OrderCreated       = "pos.order.created"
	OrderStatusChanged = "pos.order.status-changed"
	OrderMerged        = "pos.order.merged"
	OrderDeleted       = "pos.order.deleted"
	OrderSettled       = "pos.order.settled"
	OrderCancelled     = "pos.order.cancelled"

	// Stock events
	StockMovement = "pos.stock.movement"
	StockRestock  = "pos.stock.restocked"
	OversoldAlert = "pos.stock.oversold-alert"

	// Shift events
	ShiftOpened = "pos.shift.opened"
	ShiftClosed = "pos.shift.closed"

	// Loyalty events
	PointsAwarded = "pos.loyalty.points-awarded"
	TierChanged   = "pos.loyalty.tier-changed"
)

// Source constants for event sources
const (
	SourceOrders    = "/pos/order-engine"
	SourceInventory = "/pos/inventory-ledger"
	SourceShifts    = "/pos/shift-ledger"
	SourceLoyalty   = "/pos/loyalty"
)

// POSCloudEvent represents a CloudEvents v1.0 compliant event
type POSCloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	Type            string      `json:"type"`
	Source          string      `json:"source"`
	Subject         string      `json:"subject,omitempty"`
	ID              string      `json:"id"`
	Time            time.Time   `json:"time"`
	DataContentType string      `json:"datacontenttype"`
	Data            interface{} `json:"data"`

	// POS-specific extensions
	CorrelationID string `json:"poscorrelationid,omitempty"`
	TenantID      string `json:"postenantid,omitempty"`
}

// OrderCreatedData represents the data payload for OrderCreated event
type OrderCreatedData struct {
	OrderID     string      `json:"orderId"`
	TableNumber string      `json:"tableNumber,omitempty"`
	Items       []OrderLine `json:"items"`
	Total       float64     `json:"total"`
	TotalCost   float64     `json:"totalCost"`
}

// OrderLine represents an item on an order event payload
type OrderLine struct {
	MenuItemID string  `json:"menuItemId"`
	Qty        int     `json:"qty"`
	UnitPrice  float64 `json:"unitPrice"`
	LockedCost float64 `json:"lockedCost"`
}

// OrderStatusChangedData represents the data payload for OrderStatusChanged event
type OrderStatusChangedData struct {
	OrderID       string `json:"orderId"`
	FromStatus    string `json:"fromStatus"`
	ToStatus      string `json:"toStatus"`
	StockDeducted bool   `json:"stockDeducted"`
}

// OrderMergedData represents the data payload for OrderMerged event
type OrderMergedData struct {
	MergedOrderID    string   `json:"mergedOrderId"`
	OriginalOrderIDs []string `json:"originalOrderIds"`
	Total            float64  `json:"total"`
	MergedBy         string   `json:"mergedBy"`
}

// OrderSettledData represents the data payload for OrderSettled event
type OrderSettledData struct {
	OrderID       string  `json:"orderId"`
	Total         float64 `json:"total"`
	PaymentMethod string  `json:"paymentMethod"`
	ShiftID       string  `json:"shiftId,omitempty"`
	CustomerID    string  `json:"customerId,omitempty"`
}

// StockMovementData represents the data payload for StockMovement event
type StockMovementData struct {
	IngredientID string  `json:"ingredientId"`
	MovementType string  `json:"movementType"` // "in", "out", "opname", "restock"
	Qty          float64 `json:"qty"`
	StockBefore  float64 `json:"stockBefore"`
	StockAfter   float64 `json:"stockAfter"`
	ReferenceID  string  `json:"referenceId,omitempty"`
	Note         string  `json:"note,omitempty"`
}

// ShiftOpenedData represents the data payload for ShiftOpened event
type ShiftOpenedData struct {
	ShiftID   string  `json:"shiftId"`
	StartCash float64 `json:"startCash"`
	OpenedBy  string  `json:"openedBy,omitempty"`
}

// ShiftClosedData represents the data payload for ShiftClosed event
type ShiftClosedData struct {
	ShiftID      string  `json:"shiftId"`
	CashSales    float64 `json:"cashSales"`
	NonCashSales float64 `json:"nonCashSales"`
	EndCash      float64 `json:"endCash"`
	Variance     float64 `json:"variance"`
}

// PointsAwardedData represents the data payload for PointsAwarded event
type PointsAwardedData struct {
	CustomerID   string  `json:"customerId"`
	OrderID      string  `json:"orderId"`
	PointsEarned int64   `json:"pointsEarned"`
	Tier         string  `json:"tier"`
	TotalSpent   float64 `json:"totalSpent"`
}
