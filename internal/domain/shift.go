package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors for Shift aggregate
var (
	ErrShiftNotFound      = errors.New("shift not found")
	ErrNoOpenShift        = errors.New("no open shift")
	ErrShiftAlreadyOpen   = errors.New("shift already open for tenant")
	ErrShiftClosed        = errors.New("shift already closed")
	ErrMultipleOpenShifts = errors.New("multiple open shifts detected")
)

// Shift is the cash-drawer shift aggregate. At most one shift per tenant
// has EndTime == nil; the repository enforces that with a unique partial
// index, so a concurrent second open loses with a duplicate-key error.
type Shift struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ShiftID      string             `bson:"shiftId" json:"shiftId"`
	TenantID     string             `bson:"tenantId" json:"tenantId"`
	OpenedBy     string             `bson:"openedBy,omitempty" json:"openedBy,omitempty"`
	ClosedBy     string             `bson:"closedBy,omitempty" json:"closedBy,omitempty"`
	StartTime    time.Time          `bson:"startTime" json:"startTime"`
	EndTime      *time.Time         `bson:"endTime" json:"endTime"`
	StartCash    float64            `bson:"startCash" json:"startCash"`
	EndCash      float64            `bson:"endCash,omitempty" json:"endCash,omitempty"`
	CurrentCash  float64            `bson:"currentCash" json:"currentCash"`
	NonCash      float64            `bson:"currentNonCash" json:"currentNonCash"`
	CashSales    float64            `bson:"cashSales" json:"cashSales"`
	NonCashSales float64            `bson:"nonCashSales" json:"nonCashSales"`
	OrderIDs     []string           `bson:"orderIds" json:"orderIds"`
	Adjustments  []ShiftAdjustment  `bson:"adjustments" json:"adjustments"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	domainEvents []DomainEvent `bson:"-" json:"-"`
}

// ShiftAdjustment is a signed manual cash movement (kasbon, debt
// settlement, drawer correction) recorded against an open shift.
type ShiftAdjustment struct {
	Amount      float64   `bson:"amount" json:"amount"`
	Description string    `bson:"description" json:"description"`
	RecordedBy  string    `bson:"recordedBy,omitempty" json:"recordedBy,omitempty"`
	Timestamp   time.Time `bson:"timestamp" json:"timestamp"`
}

// OpenShift starts a new cash-drawer shift with the counted opening float
func OpenShift(shiftID, tenantID, openedBy string, startCash float64) *Shift {
	now := time.Now().UTC()
	shift := &Shift{
		ID:           primitive.NewObjectID(),
		ShiftID:      shiftID,
		TenantID:     tenantID,
		OpenedBy:     openedBy,
		StartTime:    now,
		EndTime:      nil,
		StartCash:    startCash,
		CurrentCash:  startCash,
		OrderIDs:     make([]string, 0),
		Adjustments:  make([]ShiftAdjustment, 0),
		CreatedAt:    now,
		UpdatedAt:    now,
		domainEvents: make([]DomainEvent, 0),
	}
	shift.addDomainEvent(NewShiftOpenedEvent(shift))
	return shift
}

// IsOpen reports whether the shift is still accruing
func (s *Shift) IsOpen() bool {
	return s.EndTime == nil
}

// AccrueSale adds a settled order's amount to the matching counters. The
// repository applies the equivalent mutation with atomic $inc operators;
// this method keeps the in-memory aggregate consistent and validates state.
func (s *Shift) AccrueSale(orderID string, amount float64, method PaymentMethod) error {
	if !s.IsOpen() {
		return ErrShiftClosed
	}

	if method.IsCash() {
		s.CashSales += amount
		s.CurrentCash += amount
	} else {
		s.NonCashSales += amount
		s.NonCash += amount
	}
	s.OrderIDs = append(s.OrderIDs, orderID)
	s.UpdatedAt = time.Now().UTC()

	return nil
}

// RecordAdjustment appends a signed cash adjustment and updates the drawer
func (s *Shift) RecordAdjustment(amount float64, description, recordedBy string) error {
	if !s.IsOpen() {
		return ErrShiftClosed
	}

	s.Adjustments = append(s.Adjustments, ShiftAdjustment{
		Amount:      amount,
		Description: description,
		RecordedBy:  recordedBy,
		Timestamp:   time.Now().UTC(),
	})
	s.CurrentCash += amount
	s.UpdatedAt = time.Now().UTC()

	return nil
}

// Close ends the shift with the counted closing cash
func (s *Shift) Close(endCash float64, closedBy string) error {
	if !s.IsOpen() {
		return ErrShiftClosed
	}

	now := time.Now().UTC()
	s.EndTime = &now
	s.EndCash = endCash
	s.ClosedBy = closedBy
	s.UpdatedAt = now
	s.addDomainEvent(NewShiftClosedEvent(s))

	return nil
}

// ExpectedCash returns the cash the drawer should hold: opening float plus
// cash sales plus the sum of signed adjustments.
func (s *Shift) ExpectedCash() float64 {
	expected := s.StartCash + s.CashSales
	for _, adj := range s.Adjustments {
		expected += adj.Amount
	}
	return expected
}

// Variance returns counted minus expected cash; meaningful after Close
func (s *Shift) Variance() float64 {
	return s.EndCash - s.ExpectedCash()
}

// addDomainEvent adds a domain event to the shift
func (s *Shift) addDomainEvent(event DomainEvent) {
	s.domainEvents = append(s.domainEvents, event)
}

// DomainEvents returns all pending domain events
func (s *Shift) DomainEvents() []DomainEvent {
	return s.domainEvents
}

// ClearDomainEvents clears all pending domain events
func (s *Shift) ClearDomainEvents() {
	s.domainEvents = make([]DomainEvent, 0)
}
