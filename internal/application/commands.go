package application

import (
	"time"

	"github.com/developerapptim/superkafe-multitenant-sub004/internal/domain"
)

// CreateOrderCommand creates a new order. Paid walk-in orders run the
// full deduct-and-settle flow in one call.
type CreateOrderCommand struct {
	CustomerID    string                   `json:"customerId,omitempty"`
	CustomerPhone string                   `json:"customerPhone,omitempty"`
	CustomerName  string                   `json:"customerName,omitempty"`
	TableNumber   string                   `json:"tableNumber,omitempty"`
	Items         []CreateOrderItemCommand `json:"items" binding:"required,min=1,dive"`
	Paid          bool                     `json:"paid,omitempty"`
	PaymentMethod string                   `json:"paymentMethod,omitempty" binding:"omitempty,payment_method"`
}

// CreateOrderItemCommand is one requested line item
type CreateOrderItemCommand struct {
	MenuItemID string `json:"menuItemId" binding:"required"`
	Qty        int    `json:"qty" binding:"required,min=1"`
	Note       string `json:"note,omitempty"`
}

// UpdateStatusCommand transitions an order's lifecycle status
type UpdateStatusCommand struct {
	OrderID string `json:"-"`
	Status  string `json:"status" binding:"required,order_status"`
	Reason  string `json:"reason,omitempty"`
}

// PayOrderCommand records payment on an order
type PayOrderCommand struct {
	OrderID       string `json:"-"`
	PaymentMethod string `json:"paymentMethod" binding:"required,payment_method"`
}

// MergeOrdersCommand combines multiple orders into one
type MergeOrdersCommand struct {
	OrderIDs []string `json:"orderIds" binding:"required,min=2"`
	MergedBy string   `json:"-"`
}

// DeleteOrderCommand removes an unpaid, uncompleted order
type DeleteOrderCommand struct {
	OrderID string `json:"-"`
}

// RestockCommand adds purchased stock to an ingredient
type RestockCommand struct {
	IngredientID   string  `json:"-"`
	PurchaseQty    float64 `json:"purchaseQty" binding:"required,gt=0"`
	ConversionRate float64 `json:"conversionRate" binding:"omitempty,gt=0"`
	PurchaseTotal  float64 `json:"purchaseTotal" binding:"required,gt=0"`
}

// AdjustStockCommand applies a signed manual stock correction
type AdjustStockCommand struct {
	IngredientID string  `json:"-"`
	Delta        float64 `json:"delta" binding:"required"`
	Note         string  `json:"note" binding:"required"`
}

// OpenShiftCommand opens the tenant's cash-drawer shift
type OpenShiftCommand struct {
	StartCash float64 `json:"startCash" binding:"min=0"`
	OpenedBy  string  `json:"-"`
}

// CloseShiftCommand closes the open shift with the counted cash
type CloseShiftCommand struct {
	EndCash  float64 `json:"endCash" binding:"min=0"`
	ClosedBy string  `json:"-"`
}

// ShiftAdjustmentCommand records a signed cash adjustment on the open shift
type ShiftAdjustmentCommand struct {
	Amount      float64 `json:"amount" binding:"required"`
	Description string  `json:"description" binding:"required"`
	RecordedBy  string  `json:"-"`
}

// ListOrdersQuery filters the order listing
type ListOrdersQuery struct {
	Status        string `form:"status" binding:"omitempty,order_status"`
	PaymentStatus string `form:"paymentStatus"`
	ActiveOnly    bool   `form:"active"`
	Page          int64  `form:"page"`
	PageSize      int64  `form:"pageSize"`
}

// ToDomainPagination converts query paging to domain pagination
func (q ListOrdersQuery) ToDomainPagination() domain.Pagination {
	p := domain.DefaultPagination()
	if q.Page > 0 {
		p.Page = q.Page
	}
	if q.PageSize > 0 && q.PageSize <= 100 {
		p.PageSize = q.PageSize
	}
	return p
}

// ToDomainFilter converts query filters to a domain filter
func (q ListOrdersQuery) ToDomainFilter() domain.OrderFilter {
	filter := domain.OrderFilter{}
	if q.Status != "" {
		status := domain.Status(q.Status)
		filter.Status = &status
	}
	if q.PaymentStatus != "" {
		ps := domain.PaymentStatus(q.PaymentStatus)
		filter.PaymentStatus = &ps
	}
	return filter
}

// StockHistoryQuery pages an ingredient's stock history
type StockHistoryQuery struct {
	IngredientID string `form:"-"`
	Page         int64  `form:"page"`
	PageSize     int64  `form:"pageSize"`
}

// TopUsageQuery parameterises the top-usage aggregation
type TopUsageQuery struct {
	From  time.Time `form:"from" time_format:"2006-01-02"`
	To    time.Time `form:"to" time_format:"2006-01-02"`
	Limit int64     `form:"limit"`
}
