package application

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/developerapptim/superkafe-multitenant-sub004/internal/domain"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/errors"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/logging"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/metrics"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/tenant"
)

// TransactionRunner executes a function inside a storage transaction.
// The context passed to fn carries the transaction; repositories called
// with it join the same unit of work.
type TransactionRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// OrderService owns the order lifecycle: placement with cost locking,
// the status state machine with its compensating stock actions, payment,
// settlement, merging, and the deletion guard.
type OrderService struct {
	orders      domain.OrderRepository
	ingredients domain.IngredientRepository
	shifts      domain.ShiftRepository
	costing     *CostingService
	loyalty     *LoyaltyService
	catalog     domain.CatalogReader
	tx          TransactionRunner
	stockPolicy domain.StockPolicy
	logger      *logging.Logger
	metrics     *metrics.Metrics
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orders domain.OrderRepository,
	ingredients domain.IngredientRepository,
	shifts domain.ShiftRepository,
	costing *CostingService,
	loyalty *LoyaltyService,
	catalog domain.CatalogReader,
	tx TransactionRunner,
	stockPolicy domain.StockPolicy,
	logger *logging.Logger,
	m *metrics.Metrics,
) *OrderService {
	if !stockPolicy.IsValid() {
		stockPolicy = domain.StockPolicyPermissive
	}
	return &OrderService{
		orders:      orders,
		ingredients: ingredients,
		shifts:      shifts,
		costing:     costing,
		loyalty:     loyalty,
		catalog:     catalog,
		tx:          tx,
		stockPolicy: stockPolicy,
		logger:      logger.WithComponent("orders"),
		metrics:     m,
	}
}

// OrderCreatedResponse is returned by CreateOrder; Settlement is set
// only for the paid walk-in flow.
type OrderCreatedResponse struct {
	Order      OrderDTO           `json:"order"`
	Settlement *SettlementOutcome `json:"settlement,omitempty"`
}

// CreateOrder places a new order with locked costs and no stock
// deducted. A paid walk-in order additionally runs the process-stage
// deduction and the settlement side effects in the same call.
func (s *OrderService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*OrderCreatedResponse, error) {
	tenantCtx, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized(err.Error())
	}

	items, err := s.buildOrderItems(ctx, tenantCtx.TenantID, cmd.Items)
	if err != nil {
		return nil, errors.MapDomainError(err)
	}

	// Freeze per-unit cost of goods before the order exists; these
	// values are never recomputed.
	items, _, err = s.costing.LockCosts(ctx, tenantCtx.TenantID, items)
	if err != nil {
		return nil, errors.MapDomainError(err)
	}

	orderID := "ORD-" + uuid.New().String()[:8]
	order, err := domain.NewOrder(orderID, tenantCtx.TenantID, items)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}
	order.CustomerID = cmd.CustomerID
	order.CustomerPhone = cmd.CustomerPhone
	order.CustomerName = cmd.CustomerName
	order.TableNumber = cmd.TableNumber

	if shift, err := s.shifts.FindOpen(ctx, tenantCtx.TenantID); err == nil && shift != nil {
		order.ShiftID = shift.ShiftID
	}

	if cmd.Paid {
		method := domain.PaymentMethod(cmd.PaymentMethod)
		if method == "" {
			method = domain.PaymentMethodCash
		}
		if err := order.Pay(method); err != nil {
			return nil, errors.MapDomainError(err)
		}
	}

	if cmd.Paid {
		// Walk-in immediate-settlement flow: deduct, complete and persist
		// in one transaction. The order is not saved until the movements
		// succeed, so a failed deduction leaves no paid order behind.
		err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
			if _, err := order.MarkProcessing(); err != nil {
				return err
			}
			order.AddStatusChangedEvent(domain.StatusNew)
			if err := s.applyStockMovements(txCtx, order, false); err != nil {
				return err
			}
			if err := order.MarkDone(); err != nil {
				return err
			}
			order.AddStatusChangedEvent(domain.StatusProcess)
			return s.orders.Save(txCtx, order)
		})
		if err != nil {
			return nil, errors.MapDomainError(err)
		}
		s.metrics.RecordOrderTransition(string(domain.StatusProcess), string(domain.StatusDone))
	} else if err := s.orders.Save(ctx, order); err != nil {
		s.logger.WithError(err).Error("failed to save order", "orderId", orderID)
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	s.metrics.RecordOrderCreated(orderType(order))
	s.logger.WithContext(ctx).Info("order created",
		"orderId", orderID, "total", order.Total, "items", len(order.Items), "paid", cmd.Paid)

	response := &OrderCreatedResponse{Order: *ToOrderDTO(order)}
	if cmd.Paid {
		response.Settlement = s.settle(ctx, order)
		response.Order = *ToOrderDTO(order)
	}

	return response, nil
}

// GetOrder retrieves an order by ID
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*OrderDTO, error) {
	tenantCtx, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized(err.Error())
	}

	order, err := s.orders.FindByID(ctx, tenantCtx.TenantID, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, errors.ErrNotFoundWithID("order", orderID)
	}
	return ToOrderDTO(order), nil
}

// ListOrders lists orders with filters and pagination
func (s *OrderService) ListOrders(ctx context.Context, query ListOrdersQuery) (*PagedOrdersResult, error) {
	tenantCtx, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized(err.Error())
	}

	pagination := query.ToDomainPagination()
	filter := query.ToDomainFilter()

	var orders []*domain.Order
	if query.ActiveOnly {
		orders, err = s.orders.FindActive(ctx, tenantCtx.TenantID, pagination)
	} else {
		orders, err = s.orders.FindByFilter(ctx, tenantCtx.TenantID, filter, pagination)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	total, err := s.orders.Count(ctx, tenantCtx.TenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	totalPages := (total + pagination.PageSize - 1) / pagination.PageSize
	return &PagedOrdersResult{
		Data:       ToOrderDTOs(orders),
		Page:       pagination.Page,
		PageSize:   pagination.PageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// UpdateStatusResponse carries the updated order; Settlement is set when
// the transition completed a paid order.
type UpdateStatusResponse struct {
	Order      OrderDTO           `json:"order"`
	Settlement *SettlementOutcome `json:"settlement,omitempty"`
}

// UpdateStatus drives the order state machine. The process transition
// deducts ingredient stock atomically with the status change; cancel
// reverts a prior deduction and auto-refunds a paid order; done settles
// a paid order's ledger and loyalty side effects.
func (s *OrderService) UpdateStatus(ctx context.Context, cmd UpdateStatusCommand) (*UpdateStatusResponse, error) {
	tenantCtx, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized(err.Error())
	}

	order, err := s.orders.FindByID(ctx, tenantCtx.TenantID, cmd.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, errors.ErrNotFoundWithID("order", cmd.OrderID)
	}

	from := order.Status
	target := domain.Status(cmd.Status)
	response := &UpdateStatusResponse{}

	switch target {
	case domain.StatusProcess:
		if err := s.deductAndTransition(ctx, order, from); err != nil {
			return nil, errors.MapDomainError(err)
		}

	case domain.StatusServed:
		if err := order.MarkServed(); err != nil {
			return nil, errors.MapDomainError(err)
		}
		order.AddStatusChangedEvent(from)
		if err := s.orders.Save(ctx, order); err != nil {
			return nil, fmt.Errorf("failed to save order: %w", err)
		}

	case domain.StatusDone:
		if err := order.MarkDone(); err != nil {
			return nil, errors.MapDomainError(err)
		}
		order.AddStatusChangedEvent(from)
		if err := s.orders.Save(ctx, order); err != nil {
			return nil, fmt.Errorf("failed to save order: %w", err)
		}
		if order.PaymentStatus == domain.PaymentPaid && !order.Settled {
			response.Settlement = s.settle(ctx, order)
		}

	case domain.StatusCancel:
		if err := s.cancelOrder(ctx, order, from, cmd.Reason); err != nil {
			return nil, errors.MapDomainError(err)
		}

	default:
		return nil, errors.ErrInvalidTransition(fmt.Sprintf("cannot transition to %s", cmd.Status))
	}

	s.metrics.RecordOrderTransition(string(from), string(order.Status))
	s.logger.WithContext(ctx).Info("order status changed",
		"orderId", order.OrderID, "from", from, "to", order.Status)

	response.Order = *ToOrderDTO(order)
	return response, nil
}

// PayOrder records payment. Paying an already-paid order is rejected.
// A paid order that is already done settles immediately.
func (s *OrderService) PayOrder(ctx context.Context, cmd PayOrderCommand) (*UpdateStatusResponse, error) {
	tenantCtx, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized(err.Error())
	}

	order, err := s.orders.FindByID(ctx, tenantCtx.TenantID, cmd.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, errors.ErrNotFoundWithID("order", cmd.OrderID)
	}

	if err := order.Pay(domain.PaymentMethod(cmd.PaymentMethod)); err != nil {
		return nil, errors.MapDomainError(err)
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	s.logger.WithContext(ctx).Info("order paid",
		"orderId", order.OrderID, "method", cmd.PaymentMethod, "total", order.Total)

	response := &UpdateStatusResponse{}
	if order.Status == domain.StatusDone && !order.Settled {
		response.Settlement = s.settle(ctx, order)
	}
	response.Order = *ToOrderDTO(order)
	return response, nil
}

// MergeOrders combines the given orders into one new order. Every source
// must exist, be unmergeable into nothing else, and have no stock
// deducted; merged orders disappear from active views.
func (s *OrderService) MergeOrders(ctx context.Context, cmd MergeOrdersCommand) (*OrderDTO, error) {
	tenantCtx, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized(err.Error())
	}

	sources, err := s.orders.FindByIDs(ctx, tenantCtx.TenantID, cmd.OrderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	if len(sources) != len(cmd.OrderIDs) {
		return nil, errors.ErrNotFound("order")
	}

	mergedID := "ORD-" + uuid.New().String()[:8]
	merged, err := domain.MergeOrders(mergedID, tenantCtx.TenantID, cmd.MergedBy, sources)
	if err != nil {
		return nil, errors.MapDomainError(err)
	}

	all := append([]*domain.Order{merged}, sources...)
	if err := s.orders.SaveAll(ctx, all); err != nil {
		return nil, fmt.Errorf("failed to save merged orders: %w", err)
	}

	s.metrics.RecordOrderMerged()
	s.logger.WithContext(ctx).Info("orders merged",
		"orderId", mergedID, "sourceIds", cmd.OrderIDs, "total", merged.Total)

	return ToOrderDTO(merged), nil
}

// DeleteOrder removes an order unless it is paid or done; financial
// history is never destroyed.
func (s *OrderService) DeleteOrder(ctx context.Context, cmd DeleteOrderCommand) error {
	tenantCtx, err := tenant.FromContext(ctx)
	if err != nil {
		return errors.ErrUnauthorized(err.Error())
	}

	order, err := s.orders.FindByID(ctx, tenantCtx.TenantID, cmd.OrderID)
	if err != nil {
		return fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return errors.ErrNotFoundWithID("order", cmd.OrderID)
	}

	if err := order.CanDelete(); err != nil {
		return errors.ErrDeletionForbidden(err.Error())
	}

	order.AddDeletedEvent()
	if err := s.orders.Delete(ctx, order); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	s.logger.WithContext(ctx).Info("order deleted", "orderId", cmd.OrderID, "status", order.Status)
	return nil
}

// deductAndTransition runs the process transition. Exactly one call
// deducts: the persisted stockDeducted flag is claimed with a filtered
// update inside the same transaction as the movements, so a concurrent
// transition working from a stale read loses the claim and skips the
// stock entirely. Either everything commits or nothing does.
func (s *OrderService) deductAndTransition(ctx context.Context, order *domain.Order, from domain.Status) error {
	deduct, err := order.MarkProcessing()
	if err != nil {
		return err
	}
	order.AddStatusChangedEvent(from)

	if !deduct {
		return s.orders.Save(ctx, order)
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.orders.MarkStockDeducted(txCtx, order.TenantID, order.OrderID); err != nil {
			return err
		}
		if err := s.applyStockMovements(txCtx, order, false); err != nil {
			return err
		}
		return s.orders.Save(txCtx, order)
	})
	if stderrors.Is(err, domain.ErrAlreadyDeducted) {
		// Lost the claim: another transition already deducted. Persist
		// the status change only.
		return s.orders.Save(ctx, order)
	}
	return err
}

// cancelOrder cancels the order, reverting stock when a deduction had
// been applied. The reversion claims the stockDeducted flag the same way
// the deduction does, so two concurrent cancels revert once.
func (s *OrderService) cancelOrder(ctx context.Context, order *domain.Order, from domain.Status, reason string) error {
	revert, err := order.Cancel(reason)
	if err != nil {
		return err
	}
	order.AddStatusChangedEvent(from)

	if !revert {
		return s.orders.Save(ctx, order)
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.orders.MarkStockReverted(txCtx, order.TenantID, order.OrderID); err != nil {
			return err
		}
		if err := s.applyStockMovements(txCtx, order, true); err != nil {
			return err
		}
		return s.orders.Save(txCtx, order)
	})
	if stderrors.Is(err, domain.ErrNotDeducted) {
		return s.orders.Save(ctx, order)
	}
	return err
}

// applyStockMovements resolves every line item's ingredients and applies
// the deduction (or reversion) through the per-ingredient CAS.
func (s *OrderService) applyStockMovements(ctx context.Context, order *domain.Order, revert bool) error {
	note := "order " + order.OrderID
	if revert {
		note = "cancel " + note
	}

	for _, item := range order.Items {
		requirements, err := s.costing.ResolveIngredients(ctx, order.TenantID, item.MenuItemID, item.Qty)
		if err != nil {
			return err
		}

		for _, req := range requirements {
			qty := req.RequiredQty
			entry, err := s.ingredients.ApplyMovement(ctx, order.TenantID, req.IngredientID, func(ing *domain.Ingredient) (*domain.StockHistory, error) {
				if revert {
					return ing.Revert(qty, note, order.OrderID)
				}
				return ing.Deduct(qty, note, order.OrderID, s.stockPolicy)
			})
			if err != nil {
				return err
			}
			if entry == nil {
				continue
			}

			s.metrics.RecordStockMovement(string(entry.Type))
			s.logger.StockMovement(ctx, entry.IngredientID, string(entry.Type),
				entry.Qty, entry.StockBefore, entry.StockAfter, note)

			if !revert && entry.StockAfter < 0 {
				s.metrics.RecordOversold(entry.IngredientName)
				s.logger.WithContext(ctx).Warn("ingredient oversold",
					"ingredientId", entry.IngredientID, "stockAfter", entry.StockAfter, "orderId", order.OrderID)
			}
		}
	}
	return nil
}

// settle runs the at-most-once settlement for a paid order: flip the
// persisted settled flag, then the best-effort ledger and loyalty side
// effects. Effect failures are reported in the outcome, never swallowed
// silently, and never abort the order operation.
func (s *OrderService) settle(ctx context.Context, order *domain.Order) *SettlementOutcome {
	if err := s.orders.MarkSettled(ctx, order.TenantID, order.OrderID); err != nil {
		if stderrors.Is(err, domain.ErrAlreadySettled) {
			return skippedOutcome("order already settled")
		}
		s.logger.WithError(err).Error("failed to mark order settled", "orderId", order.OrderID)
		return &SettlementOutcome{
			Ledger:  EffectResult{Status: EffectFailed, Detail: err.Error()},
			Loyalty: EffectResult{Status: EffectFailed, Detail: err.Error()},
		}
	}
	order.Settled = true

	outcome := &SettlementOutcome{Settled: true}

	shift, err := s.shifts.AccrueSale(ctx, order.TenantID, order.OrderID, order.Total, order.PaymentMethod)
	switch {
	case stderrors.Is(err, domain.ErrNoOpenShift):
		s.metrics.RecordMissedAccrual()
		s.logger.WithContext(ctx).Warn("sale settled with no open shift",
			"orderId", order.OrderID, "total", order.Total)
		outcome.Ledger = EffectResult{Status: EffectSkipped, Detail: "no open shift"}
	case err != nil:
		s.logger.WithError(err).Error("shift accrual failed", "orderId", order.OrderID)
		outcome.Ledger = EffectResult{Status: EffectFailed, Detail: err.Error()}
	default:
		s.metrics.RecordShiftAccrual(string(order.PaymentMethod))
		order.ShiftID = shift.ShiftID
		outcome.Ledger = EffectResult{Status: EffectApplied}
		outcome.ShiftID = shift.ShiftID
	}

	if order.CustomerID == "" && order.CustomerPhone == "" && order.CustomerName == "" {
		outcome.Loyalty = EffectResult{Status: EffectSkipped, Detail: "no customer on order"}
	} else {
		result, err := s.loyalty.Award(ctx, order.TenantID, order.CustomerID, order.CustomerPhone, order.CustomerName, order.Total, order.OrderID)
		if err != nil {
			s.logger.WithError(err).Error("loyalty accrual failed", "orderId", order.OrderID)
			outcome.Loyalty = EffectResult{Status: EffectFailed, Detail: err.Error()}
		} else {
			order.CustomerID = result.CustomerID
			outcome.Loyalty = EffectResult{Status: EffectApplied}
			outcome.PointsEarned = result.PointsEarned
		}
	}

	order.AddSettledEvent()
	if err := s.orders.Save(ctx, order); err != nil {
		s.logger.WithError(err).Error("failed to save settled order", "orderId", order.OrderID)
	}

	s.metrics.RecordOrderSettled(string(order.PaymentMethod))
	return outcome
}

// buildOrderItems resolves menu items into order line items with catalog
// names and current prices.
func (s *OrderService) buildOrderItems(ctx context.Context, tenantID string, items []CreateOrderItemCommand) ([]domain.OrderItem, error) {
	result := make([]domain.OrderItem, 0, len(items))
	for _, req := range items {
		menuItem, err := s.catalog.GetMenuItem(ctx, tenantID, req.MenuItemID)
		if err != nil {
			return nil, fmt.Errorf("failed to get menu item: %w", err)
		}
		if menuItem == nil {
			return nil, domain.ErrMenuItemNotFound
		}
		result = append(result, domain.OrderItem{
			MenuItemID: menuItem.MenuItemID,
			Name:       menuItem.Name,
			Qty:        req.Qty,
			UnitPrice:  menuItem.Price,
			Note:       req.Note,
		})
	}
	return result, nil
}

func orderType(order *domain.Order) string {
	if order.TableNumber != "" {
		return "dine_in"
	}
	return "walk_in"
}
