package application

import (
	"time"

	"github.com/developerapptim/superkafe-multitenant-sub004/internal/domain"
)

// OrderDTO is the transport representation of an order
type OrderDTO struct {
	OrderID            string         `json:"orderId"`
	CustomerID         string         `json:"customerId,omitempty"`
	CustomerName       string         `json:"customerName,omitempty"`
	CustomerPhone      string         `json:"customerPhone,omitempty"`
	TableNumber        string         `json:"tableNumber,omitempty"`
	Items              []OrderItemDTO `json:"items"`
	Subtotal           float64        `json:"subtotal"`
	Total              float64        `json:"total"`
	Status             string         `json:"status"`
	PaymentStatus      string         `json:"paymentStatus"`
	PaymentMethod      string         `json:"paymentMethod,omitempty"`
	StockDeducted      bool           `json:"stockDeducted"`
	Settled            bool           `json:"settled"`
	ShiftID            string         `json:"shiftId,omitempty"`
	IsMerged           bool           `json:"isMerged"`
	OriginalOrderIDs   []string       `json:"originalOrderIds,omitempty"`
	MergedIntoID       string         `json:"mergedIntoId,omitempty"`
	CancellationReason string         `json:"cancellationReason,omitempty"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

// OrderItemDTO is a transport line item
type OrderItemDTO struct {
	MenuItemID string  `json:"menuItemId"`
	Name       string  `json:"name"`
	Qty        int     `json:"qty"`
	UnitPrice  float64 `json:"unitPrice"`
	LockedCost float64 `json:"lockedCost"`
	Note       string  `json:"note,omitempty"`
}

// ToOrderDTO maps an order aggregate to its DTO
func ToOrderDTO(order *domain.Order) *OrderDTO {
	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO{
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Qty:        item.Qty,
			UnitPrice:  item.UnitPrice,
			LockedCost: item.LockedCost,
			Note:       item.Note,
		})
	}

	return &OrderDTO{
		OrderID:            order.OrderID,
		CustomerID:         order.CustomerID,
		CustomerName:       order.CustomerName,
		CustomerPhone:      order.CustomerPhone,
		TableNumber:        order.TableNumber,
		Items:              items,
		Subtotal:           order.Subtotal,
		Total:              order.Total,
		Status:             string(order.Status),
		PaymentStatus:      string(order.PaymentStatus),
		PaymentMethod:      string(order.PaymentMethod),
		StockDeducted:      order.StockDeducted,
		Settled:            order.Settled,
		ShiftID:            order.ShiftID,
		IsMerged:           order.IsMerged,
		OriginalOrderIDs:   order.OriginalOrderIDs,
		MergedIntoID:       order.MergedIntoID,
		CancellationReason: order.CancellationReason,
		CreatedAt:          order.CreatedAt,
		UpdatedAt:          order.UpdatedAt,
	}
}

// ToOrderDTOs maps a slice of orders
func ToOrderDTOs(orders []*domain.Order) []OrderDTO {
	dtos := make([]OrderDTO, 0, len(orders))
	for _, order := range orders {
		dtos = append(dtos, *ToOrderDTO(order))
	}
	return dtos
}

// PagedOrdersResult wraps an order listing with pagination metadata
type PagedOrdersResult struct {
	Data       []OrderDTO `json:"data"`
	Page       int64      `json:"page"`
	PageSize   int64      `json:"pageSize"`
	TotalItems int64      `json:"totalItems"`
	TotalPages int64      `json:"totalPages"`
}

// IngredientDTO is the transport representation of an ingredient
type IngredientDTO struct {
	IngredientID      string     `json:"ingredientId"`
	Name              string     `json:"name"`
	StockQty          float64    `json:"stockQty"`
	UnitCost          float64    `json:"unitCost"`
	Unit              string     `json:"unit"`
	ConversionRate    float64    `json:"conversionRate"`
	Type              string     `json:"type"`
	LastPurchasePrice float64    `json:"lastPurchasePrice,omitempty"`
	LastPurchaseDate  *time.Time `json:"lastPurchaseDate,omitempty"`
}

// ToIngredientDTO maps an ingredient to its DTO
func ToIngredientDTO(ing *domain.Ingredient) *IngredientDTO {
	return &IngredientDTO{
		IngredientID:      ing.IngredientID,
		Name:              ing.Name,
		StockQty:          ing.StockQty,
		UnitCost:          ing.UnitCost,
		Unit:              ing.Unit,
		ConversionRate:    ing.ConversionRate,
		Type:              string(ing.Type),
		LastPurchasePrice: ing.LastPurchasePrice,
		LastPurchaseDate:  ing.LastPurchaseDate,
	}
}

// StockHistoryDTO is a transport stock-log entry
type StockHistoryDTO struct {
	HistoryID      string    `json:"historyId"`
	IngredientID   string    `json:"ingredientId"`
	IngredientName string    `json:"ingredientName"`
	Type           string    `json:"type"`
	Qty            float64   `json:"qty"`
	StockBefore    float64   `json:"stockBefore"`
	StockAfter     float64   `json:"stockAfter"`
	Note           string    `json:"note,omitempty"`
	ReferenceID    string    `json:"referenceId,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// ToStockHistoryDTOs maps history entries
func ToStockHistoryDTOs(entries []*domain.StockHistory) []StockHistoryDTO {
	dtos := make([]StockHistoryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, StockHistoryDTO{
			HistoryID:      e.HistoryID,
			IngredientID:   e.IngredientID,
			IngredientName: e.IngredientName,
			Type:           string(e.Type),
			Qty:            e.Qty,
			StockBefore:    e.StockBefore,
			StockAfter:     e.StockAfter,
			Note:           e.Note,
			ReferenceID:    e.ReferenceID,
			Timestamp:      e.Timestamp,
		})
	}
	return dtos
}

// ShiftDTO is the transport representation of a shift
type ShiftDTO struct {
	ShiftID      string               `json:"shiftId"`
	OpenedBy     string               `json:"openedBy,omitempty"`
	ClosedBy     string               `json:"closedBy,omitempty"`
	StartTime    time.Time            `json:"startTime"`
	EndTime      *time.Time           `json:"endTime"`
	StartCash    float64              `json:"startCash"`
	EndCash      float64              `json:"endCash,omitempty"`
	CurrentCash  float64              `json:"currentCash"`
	NonCash      float64              `json:"currentNonCash"`
	CashSales    float64              `json:"cashSales"`
	NonCashSales float64              `json:"nonCashSales"`
	ExpectedCash float64              `json:"expectedCash"`
	Variance     *float64             `json:"variance,omitempty"`
	OrderCount   int                  `json:"orderCount"`
	Adjustments  []ShiftAdjustmentDTO `json:"adjustments"`
}

// ShiftAdjustmentDTO is a transport cash adjustment
type ShiftAdjustmentDTO struct {
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	RecordedBy  string    `json:"recordedBy,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// ToShiftDTO maps a shift aggregate to its DTO
func ToShiftDTO(shift *domain.Shift) *ShiftDTO {
	adjustments := make([]ShiftAdjustmentDTO, 0, len(shift.Adjustments))
	for _, adj := range shift.Adjustments {
		adjustments = append(adjustments, ShiftAdjustmentDTO{
			Amount:      adj.Amount,
			Description: adj.Description,
			RecordedBy:  adj.RecordedBy,
			Timestamp:   adj.Timestamp,
		})
	}

	dto := &ShiftDTO{
		ShiftID:      shift.ShiftID,
		OpenedBy:     shift.OpenedBy,
		ClosedBy:     shift.ClosedBy,
		StartTime:    shift.StartTime,
		EndTime:      shift.EndTime,
		StartCash:    shift.StartCash,
		EndCash:      shift.EndCash,
		CurrentCash:  shift.CurrentCash,
		NonCash:      shift.NonCash,
		CashSales:    shift.CashSales,
		NonCashSales: shift.NonCashSales,
		ExpectedCash: shift.ExpectedCash(),
		OrderCount:   len(shift.OrderIDs),
		Adjustments:  adjustments,
	}
	if !shift.IsOpen() {
		variance := shift.Variance()
		dto.Variance = &variance
	}
	return dto
}

// CustomerDTO is the transport representation of a customer
type CustomerDTO struct {
	CustomerID    string     `json:"customerId"`
	Name          string     `json:"name"`
	Phone         string     `json:"phone,omitempty"`
	TotalSpent    float64    `json:"totalSpent"`
	VisitCount    int64      `json:"visitCount"`
	Points        int64      `json:"points"`
	Tier          string     `json:"tier"`
	LastOrderDate *time.Time `json:"lastOrderDate,omitempty"`
}

// ToCustomerDTO maps a customer to its DTO
func ToCustomerDTO(customer *domain.Customer) *CustomerDTO {
	return &CustomerDTO{
		CustomerID:    customer.CustomerID,
		Name:          customer.Name,
		Phone:         customer.Phone,
		TotalSpent:    customer.TotalSpent,
		VisitCount:    customer.VisitCount,
		Points:        customer.Points,
		Tier:          string(customer.Tier),
		LastOrderDate: customer.LastOrderDate,
	}
}
