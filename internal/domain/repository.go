package domain

import (
	"context"
	"time"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Save persists an order (upsert) together with its pending domain
	// events in the transactional outbox
	Save(ctx context.Context, order *Order) error

	// SaveAll persists multiple orders atomically (used by merge)
	SaveAll(ctx context.Context, orders []*Order) error

	// FindByID retrieves an order by its OrderID; (nil, nil) when missing
	FindByID(ctx context.Context, tenantID, orderID string) (*Order, error)

	// FindByIDs retrieves multiple orders by OrderID
	FindByIDs(ctx context.Context, tenantID string, orderIDs []string) ([]*Order, error)

	// FindActive retrieves orders visible in active views (new/process/served)
	FindActive(ctx context.Context, tenantID string, pagination Pagination) ([]*Order, error)

	// FindByFilter retrieves orders matching the filter
	FindByFilter(ctx context.Context, tenantID string, filter OrderFilter, pagination Pagination) ([]*Order, error)

	// MarkSettled atomically flips the persisted settled flag, filtered on
	// settled == false. Returns ErrAlreadySettled when the flag was
	// already set, so side effects never run twice.
	MarkSettled(ctx context.Context, tenantID, orderID string) error

	// MarkStockDeducted atomically claims the stock deduction, filtered on
	// stockDeducted == false. Returns ErrAlreadyDeducted when another
	// transition got there first; callers must then skip the movements.
	MarkStockDeducted(ctx context.Context, tenantID, orderID string) error

	// MarkStockReverted atomically claims the stock reversion, filtered on
	// stockDeducted == true. Returns ErrNotDeducted when there is nothing
	// to revert.
	MarkStockReverted(ctx context.Context, tenantID, orderID string) error

	// Delete removes an order and writes its pending domain events to the
	// outbox in the same transaction; the deletion guard is checked by
	// the caller
	Delete(ctx context.Context, order *Order) error

	// Count returns the number of orders matching the filter
	Count(ctx context.Context, tenantID string, filter OrderFilter) (int64, error)
}

// IngredientRepository defines the interface for ingredient persistence.
// Every mutation is a compare-and-set on {ingredientId, version}; the
// implementation retries on conflict and appends the history entry in the
// same transaction as the stock update.
type IngredientRepository interface {
	// FindByID retrieves an ingredient; (nil, nil) when missing
	FindByID(ctx context.Context, tenantID, ingredientID string) (*Ingredient, error)

	// FindByIDs retrieves multiple ingredients
	FindByIDs(ctx context.Context, tenantID string, ingredientIDs []string) ([]*Ingredient, error)

	// Save inserts a new ingredient
	Save(ctx context.Context, ingredient *Ingredient) error

	// ApplyMovement atomically persists a mutated ingredient plus its
	// history entry. mutate is re-run against a fresh read on version
	// conflict; it returns the history entry to append, or nil for a
	// silent no-op (non-physical ingredients).
	ApplyMovement(ctx context.Context, tenantID, ingredientID string, mutate func(*Ingredient) (*StockHistory, error)) (*StockHistory, error)
}

// StockHistoryRepository defines the interface for the append-only stock log
type StockHistoryRepository interface {
	// Append inserts a history entry; entries are never updated or deleted
	Append(ctx context.Context, entry *StockHistory) error

	// FindByIngredient lists entries for an ingredient, newest first
	FindByIngredient(ctx context.Context, tenantID, ingredientID string, pagination Pagination) ([]*StockHistory, error)

	// TopUsage aggregates out movements per ingredient over a date range
	TopUsage(ctx context.Context, tenantID string, from, to time.Time, limit int64) ([]IngredientUsage, error)
}

// ShiftRepository defines the interface for shift persistence
type ShiftRepository interface {
	// Save inserts a new shift; a second open shift for the tenant fails
	// with ErrShiftAlreadyOpen via the unique partial index
	Save(ctx context.Context, shift *Shift) error

	// FindOpen returns the tenant's open shift; (nil, nil) when none.
	// Multiple open shifts return the most recent and ErrMultipleOpenShifts.
	FindOpen(ctx context.Context, tenantID string) (*Shift, error)

	// FindByID retrieves a shift; (nil, nil) when missing
	FindByID(ctx context.Context, tenantID, shiftID string) (*Shift, error)

	// AccrueSale atomically adds a sale to the open shift's counters,
	// filtered on endTime == null. Returns ErrNoOpenShift when no shift
	// is open.
	AccrueSale(ctx context.Context, tenantID, orderID string, amount float64, method PaymentMethod) (*Shift, error)

	// RecordAdjustment atomically appends an adjustment to the open shift
	RecordAdjustment(ctx context.Context, tenantID string, adjustment ShiftAdjustment) (*Shift, error)

	// Close ends the open shift
	Close(ctx context.Context, tenantID string, endCash float64, closedBy string) (*Shift, error)
}

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByPhone retrieves a customer by phone; (nil, nil) when missing
	FindByPhone(ctx context.Context, tenantID, phone string) (*Customer, error)

	// FindByName retrieves a customer by case-insensitive exact name
	FindByName(ctx context.Context, tenantID, name string) (*Customer, error)

	// FindByID retrieves a customer; (nil, nil) when missing
	FindByID(ctx context.Context, tenantID, customerID string) (*Customer, error)

	// Save persists a customer (upsert)
	Save(ctx context.Context, customer *Customer) error
}

// CatalogReader is the read-only view into externally-owned catalog
// storage. The order engine never writes menu items or recipes.
type CatalogReader interface {
	// GetMenuItem retrieves a menu item; (nil, nil) when missing
	GetMenuItem(ctx context.Context, tenantID, menuItemID string) (*MenuItem, error)

	// GetRecipe retrieves the recipe for a menu item; (nil, nil) when the
	// item has no recipe
	GetRecipe(ctx context.Context, tenantID, menuItemID string) (*Recipe, error)
}

// Pagination represents pagination options
type Pagination struct {
	Page     int64
	PageSize int64
}

// DefaultPagination returns default pagination options
func DefaultPagination() Pagination {
	return Pagination{
		Page:     1,
		PageSize: 20,
	}
}

// Skip returns the number of documents to skip
func (p Pagination) Skip() int64 {
	return (p.Page - 1) * p.PageSize
}

// Limit returns the maximum number of documents to return
func (p Pagination) Limit() int64 {
	return p.PageSize
}

// OrderFilter represents filter options for querying orders
type OrderFilter struct {
	Status        *Status
	PaymentStatus *PaymentStatus
	CustomerID    *string
	TableNumber   *string
	FromDate      *time.Time
	ToDate        *time.Time
}
