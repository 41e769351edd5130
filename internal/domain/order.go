package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors for Order aggregate
var (
	ErrNoItems              = errors.New("order must have at least one item")
	ErrInvalidStatus        = errors.New("invalid status transition")
	ErrOrderCancelled       = errors.New("order has been cancelled")
	ErrOrderMerged          = errors.New("order has been merged")
	ErrAlreadyPaid          = errors.New("order already paid")
	ErrNotPaid              = errors.New("order is not paid")
	ErrAlreadySettled       = errors.New("order already settled")
	ErrAlreadyDeducted      = errors.New("stock already deducted for order")
	ErrNotDeducted          = errors.New("stock not deducted for order")
	ErrCannotDeletePaid     = errors.New("cannot delete paid order")
	ErrCannotDeleteDone     = errors.New("cannot delete completed order")
	ErrCannotMergeDeducted  = errors.New("cannot merge order with deducted stock")
	ErrCannotMergeTerminal  = errors.New("cannot merge cancelled or merged order")
	ErrMergeNeedsTwoOrders  = errors.New("merge requires at least two orders")
	ErrCannotCancelTerminal = errors.New("cannot cancel completed or merged order")
)

// Status represents order lifecycle status
type Status string

const (
	StatusNew     Status = "new"
	StatusProcess Status = "process"
	StatusServed  Status = "served"
	StatusDone    Status = "done"
	StatusCancel  Status = "cancel"
	StatusMerged  Status = "merged"
)

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusProcess, StatusServed, StatusDone, StatusCancel, StatusMerged:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are allowed from this status
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusCancel || s == StatusMerged
}

// PaymentStatus represents order payment state
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// PaymentMethod represents how a sale was paid
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodQRIS     PaymentMethod = "qris"
	PaymentMethodTransfer PaymentMethod = "transfer"
)

// IsCash reports whether the method settles into the cash drawer
func (m PaymentMethod) IsCash() bool {
	return m == PaymentMethodCash
}

// Order is the aggregate root for the order lifecycle bounded context.
// LockedCost on each item is frozen at creation and never recomputed;
// StockDeducted guards deduction/reversion idempotency; Settled guards
// at-most-once ledger and loyalty accrual.
type Order struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID            string             `bson:"orderId" json:"orderId"`
	TenantID           string             `bson:"tenantId" json:"tenantId"`
	CustomerID         string             `bson:"customerId,omitempty" json:"customerId,omitempty"`
	CustomerPhone      string             `bson:"customerPhone,omitempty" json:"customerPhone,omitempty"`
	CustomerName       string             `bson:"customerName,omitempty" json:"customerName,omitempty"`
	TableNumber        string             `bson:"tableNumber,omitempty" json:"tableNumber,omitempty"`
	Items              []OrderItem        `bson:"items" json:"items"`
	Subtotal           float64            `bson:"subtotal" json:"subtotal"`
	Total              float64            `bson:"total" json:"total"`
	TotalCost          float64            `bson:"totalCost" json:"totalCost"`
	Status             Status             `bson:"status" json:"status"`
	PaymentStatus      PaymentStatus      `bson:"paymentStatus" json:"paymentStatus"`
	PaymentMethod      PaymentMethod      `bson:"paymentMethod,omitempty" json:"paymentMethod,omitempty"`
	StockDeducted      bool               `bson:"stockDeducted" json:"stockDeducted"`
	Settled            bool               `bson:"settled" json:"settled"`
	ShiftID            string             `bson:"shiftId,omitempty" json:"shiftId,omitempty"`
	IsMerged           bool               `bson:"isMerged" json:"isMerged"`
	OriginalOrderIDs   []string           `bson:"originalOrderIds,omitempty" json:"originalOrderIds,omitempty"`
	MergedIntoID       string             `bson:"mergedIntoId,omitempty" json:"mergedIntoId,omitempty"`
	MergedBy           string             `bson:"mergedBy,omitempty" json:"mergedBy,omitempty"`
	CancellationReason string             `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Domain events - transient, not persisted
	domainEvents []DomainEvent `bson:"-" json:"-"`
}

// OrderItem represents a line item in an order.
// LockedCost is the per-unit cost of goods (HPP) frozen at order creation.
type OrderItem struct {
	MenuItemID string  `bson:"menuItemId" json:"menuItemId"`
	Name       string  `bson:"name" json:"name"`
	Qty        int     `bson:"qty" json:"qty"`
	UnitPrice  float64 `bson:"unitPrice" json:"unitPrice"`
	LockedCost float64 `bson:"lockedCost" json:"lockedCost"`
	Note       string  `bson:"note,omitempty" json:"note,omitempty"`
}

// LineTotal returns the item subtotal (price times quantity)
func (i OrderItem) LineTotal() float64 {
	return i.UnitPrice * float64(i.Qty)
}

// LineCost returns the frozen cost of goods for the full line
func (i OrderItem) LineCost() float64 {
	return i.LockedCost * float64(i.Qty)
}

// NewOrder creates a new Order aggregate in status new with no stock deducted.
// Items are expected to carry their LockedCost already (set by the cost
// locking pass before construction).
func NewOrder(orderID, tenantID string, items []OrderItem) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	subtotal := 0.0
	totalCost := 0.0
	for _, item := range items {
		subtotal += item.LineTotal()
		totalCost += item.LineCost()
	}

	now := time.Now().UTC()
	order := &Order{
		ID:            primitive.NewObjectID(),
		OrderID:       orderID,
		TenantID:      tenantID,
		Items:         items,
		Subtotal:      subtotal,
		Total:         subtotal,
		TotalCost:     totalCost,
		Status:        StatusNew,
		PaymentStatus: PaymentUnpaid,
		StockDeducted: false,
		Settled:       false,
		CreatedAt:     now,
		UpdatedAt:     now,
		domainEvents:  make([]DomainEvent, 0),
	}

	order.addDomainEvent(NewOrderCreatedEvent(order))

	return order, nil
}

// MarkProcessing transitions the order to process status. The stock
// deduction itself is handled by the application layer inside a storage
// transaction; this method only validates the transition and flips the
// idempotency flag. It returns true when stock must actually be deducted
// (first call), false when the deduction already happened.
func (o *Order) MarkProcessing() (bool, error) {
	if o.Status == StatusCancel {
		return false, ErrOrderCancelled
	}
	if o.Status == StatusMerged {
		return false, ErrOrderMerged
	}
	if o.Status != StatusNew && o.Status != StatusProcess {
		return false, ErrInvalidStatus
	}

	deduct := !o.StockDeducted
	o.Status = StatusProcess
	o.StockDeducted = true
	o.UpdatedAt = time.Now().UTC()

	return deduct, nil
}

// MarkServed transitions the order to served status
func (o *Order) MarkServed() error {
	if o.Status == StatusCancel {
		return ErrOrderCancelled
	}
	if o.Status == StatusMerged {
		return ErrOrderMerged
	}
	if o.Status != StatusProcess {
		return ErrInvalidStatus
	}

	o.Status = StatusServed
	o.UpdatedAt = time.Now().UTC()

	return nil
}

// MarkDone completes the order. Settlement side effects (shift ledger,
// loyalty points) are triggered by the application layer only when
// MarkSettled succeeds afterwards.
func (o *Order) MarkDone() error {
	if o.Status == StatusCancel {
		return ErrOrderCancelled
	}
	if o.Status == StatusMerged {
		return ErrOrderMerged
	}
	if o.Status == StatusDone {
		return nil
	}
	if o.Status != StatusProcess && o.Status != StatusServed {
		return ErrInvalidStatus
	}

	o.Status = StatusDone
	o.UpdatedAt = time.Now().UTC()

	return nil
}

// Pay records payment on the order. Paying an already-paid order is
// rejected, never silently accepted.
func (o *Order) Pay(method PaymentMethod) error {
	if o.Status == StatusCancel {
		return ErrOrderCancelled
	}
	if o.Status == StatusMerged {
		return ErrOrderMerged
	}
	if o.PaymentStatus == PaymentPaid {
		return ErrAlreadyPaid
	}

	o.PaymentStatus = PaymentPaid
	o.PaymentMethod = method
	o.UpdatedAt = time.Now().UTC()

	return nil
}

// MarkSettled flips the at-most-once settlement guard. Callers run the
// ledger and loyalty side effects only after this succeeds and the flag
// has been persisted.
func (o *Order) MarkSettled() error {
	if o.Settled {
		return ErrAlreadySettled
	}
	if o.PaymentStatus != PaymentPaid {
		return ErrNotPaid
	}

	o.Settled = true
	o.UpdatedAt = time.Now().UTC()

	return nil
}

// Cancel cancels the order. Returns true when a stock reversion is due
// (stock had been deducted and is now flagged for revert). A paid order
// is auto-refunded.
func (o *Order) Cancel(reason string) (bool, error) {
	if o.Status == StatusDone {
		return false, ErrCannotCancelTerminal
	}
	if o.Status == StatusMerged {
		return false, ErrOrderMerged
	}
	if o.Status == StatusCancel {
		return false, nil
	}

	revert := o.StockDeducted
	o.Status = StatusCancel
	o.StockDeducted = false
	o.CancellationReason = reason
	if o.PaymentStatus == PaymentPaid {
		o.PaymentStatus = PaymentRefunded
	}
	o.UpdatedAt = time.Now().UTC()
	o.addDomainEvent(NewOrderCancelledEvent(o, reason))

	return revert, nil
}

// CanMerge reports whether this order may participate as a merge source
func (o *Order) CanMerge() error {
	if o.Status == StatusCancel || o.Status == StatusMerged {
		return ErrCannotMergeTerminal
	}
	if o.StockDeducted {
		return ErrCannotMergeDeducted
	}
	return nil
}

// MarkMergedInto marks this order as absorbed into a combined order.
// Merged orders are hidden from active views and are terminal.
func (o *Order) MarkMergedInto(targetOrderID string) error {
	if err := o.CanMerge(); err != nil {
		return err
	}

	o.Status = StatusMerged
	o.MergedIntoID = targetOrderID
	o.UpdatedAt = time.Now().UTC()

	return nil
}

// MergeOrders combines the given source orders into one new order. Every
// source must be mergeable (not cancelled, not merged, stock untouched).
// Item lists concatenate and totals sum; the new order starts in status
// new with no stock deducted.
func MergeOrders(newOrderID, tenantID, mergedBy string, sources []*Order) (*Order, error) {
	if len(sources) < 2 {
		return nil, ErrMergeNeedsTwoOrders
	}

	items := make([]OrderItem, 0)
	originalIDs := make([]string, 0, len(sources))
	for _, src := range sources {
		if err := src.CanMerge(); err != nil {
			return nil, err
		}
		items = append(items, src.Items...)
		originalIDs = append(originalIDs, src.OrderID)
	}

	merged, err := NewOrder(newOrderID, tenantID, items)
	if err != nil {
		return nil, err
	}
	merged.IsMerged = true
	merged.OriginalOrderIDs = originalIDs
	merged.MergedBy = mergedBy
	merged.ClearDomainEvents()
	merged.addDomainEvent(NewOrderMergedEvent(merged, originalIDs, mergedBy))

	for _, src := range sources {
		if err := src.MarkMergedInto(merged.OrderID); err != nil {
			return nil, err
		}
	}

	return merged, nil
}

// CanDelete reports whether the order may be deleted. Paid and completed
// orders are financial history and must never be destroyed.
func (o *Order) CanDelete() error {
	if o.PaymentStatus == PaymentPaid {
		return ErrCannotDeletePaid
	}
	if o.Status == StatusDone {
		return ErrCannotDeleteDone
	}
	return nil
}

// IsActive reports whether the order shows up in active-order views
func (o *Order) IsActive() bool {
	return o.Status == StatusNew || o.Status == StatusProcess || o.Status == StatusServed
}

// TotalItems returns the total quantity across all line items
func (o *Order) TotalItems() int {
	total := 0
	for _, item := range o.Items {
		total += item.Qty
	}
	return total
}

// addDomainEvent adds a domain event to the order
func (o *Order) addDomainEvent(event DomainEvent) {
	o.domainEvents = append(o.domainEvents, event)
}

// AddStatusChangedEvent records a status transition event for publication
func (o *Order) AddStatusChangedEvent(from Status) {
	o.addDomainEvent(NewOrderStatusChangedEvent(o, from))
}

// AddSettledEvent records a settlement event for publication
func (o *Order) AddSettledEvent() {
	o.addDomainEvent(NewOrderSettledEvent(o))
}

// AddDeletedEvent records a deletion event for publication
func (o *Order) AddDeletedEvent() {
	o.addDomainEvent(NewOrderDeletedEvent(o))
}

// DomainEvents returns all pending domain events
func (o *Order) DomainEvents() []DomainEvent {
	return o.domainEvents
}

// ClearDomainEvents clears all pending domain events
func (o *Order) ClearDomainEvents() {
	o.domainEvents = make([]DomainEvent, 0)
}
