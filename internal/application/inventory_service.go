package application

import (
	"context"
	"fmt"
	"time"

	"github.com/developerapptim/superkafe-multitenant-sub004/internal/domain"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/errors"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/logging"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/metrics"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/tenant"
)

// InventoryService handles direct stock operations outside the order
// flow: restock with moving-average cost, manual corrections, the stock
// log, and usage analytics.
type InventoryService struct {
	ingredients domain.IngredientRepository
	history     domain.StockHistoryRepository
	logger      *logging.Logger
	metrics     *metrics.Metrics
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(ingredients domain.IngredientRepository, history domain.StockHistoryRepository, logger *logging.Logger, m *metrics.Metrics) *InventoryService {
	return &InventoryService{
		ingredients: ingredients,
		history:     history,
		logger:      logger.WithComponent("inventory"),
		metrics:     m,
	}
}

// GetIngredient retrieves an ingredient by ID
func (s *InventoryService) GetIngredient(ctx context.Context, ingredientID string) (*IngredientDTO, error) {
	tenantCtx, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized(err.Error())
	}

	ing, err := s.ingredients.FindByID(ctx, tenantCtx.TenantID, ingredientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ingredient: %w", err)
	}
	if ing == nil {
		return nil, errors.ErrNotFoundWithID("ingredient", ingredientID)
	}
	return ToIngredientDTO(ing), nil
}

// Restock adds purchased stock and recomputes the moving-average cost
func (s *InventoryService) Restock(ctx context.Context, cmd RestockCommand) (*IngredientDTO, error) {
	tenantCtx, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized(err.Error())
	}

	var updated *domain.Ingredient
	entry, err := s.ingredients.ApplyMovement(ctx, tenantCtx.TenantID, cmd.IngredientID, func(ing *domain.Ingredient) (*domain.StockHistory, error) {
		entry, err := ing.Restock(cmd.PurchaseQty, cmd.ConversionRate, cmd.PurchaseTotal)
		updated = ing
		return entry, err
	})
	if err != nil {
		return nil, errors.MapDomainError(err)
	}

	s.metrics.RecordStockMovement(string(domain.MovementRestock))
	s.logger.StockMovement(ctx, cmd.IngredientID, string(domain.MovementRestock),
		entry.Qty, entry.StockBefore, entry.StockAfter, "restock")

	return ToIngredientDTO(updated), nil
}

// AdjustStock applies a signed manual correction (opname for negative
// deltas, in for positive)
func (s *InventoryService) AdjustStock(ctx context.Context, cmd AdjustStockCommand) (*IngredientDTO, error) {
	tenantCtx, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized(err.Error())
	}

	var updated *domain.Ingredient
	entry, err := s.ingredients.ApplyMovement(ctx, tenantCtx.TenantID, cmd.IngredientID, func(ing *domain.Ingredient) (*domain.StockHistory, error) {
		entry, err := ing.ManualAdjust(cmd.Delta, cmd.Note)
		updated = ing
		return entry, err
	})
	if err != nil {
		return nil, errors.MapDomainError(err)
	}

	s.metrics.RecordStockMovement(string(entry.Type))
	s.logger.StockMovement(ctx, cmd.IngredientID, string(entry.Type),
		entry.Qty, entry.StockBefore, entry.StockAfter, cmd.Note)

	return ToIngredientDTO(updated), nil
}

// GetStockHistory lists an ingredient's stock log, newest first
func (s *InventoryService) GetStockHistory(ctx context.Context, query StockHistoryQuery) ([]StockHistoryDTO, error) {
	tenantCtx, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized(err.Error())
	}

	pagination := domain.DefaultPagination()
	if query.Page > 0 {
		pagination.Page = query.Page
	}
	if query.PageSize > 0 && query.PageSize <= 100 {
		pagination.PageSize = query.PageSize
	}

	entries, err := s.history.FindByIngredient(ctx, tenantCtx.TenantID, query.IngredientID, pagination)
	if err != nil {
		return nil, fmt.Errorf("failed to get stock history: %w", err)
	}
	return ToStockHistoryDTOs(entries), nil
}

// TopUsage aggregates out movements per ingredient over a date range
func (s *InventoryService) TopUsage(ctx context.Context, query TopUsageQuery) ([]domain.IngredientUsage, error) {
	tenantCtx, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, errors.ErrUnauthorized(err.Error())
	}

	from := query.From
	to := query.To
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(0, -1, 0)
	}
	limit := query.Limit
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	usage, err := s.history.TopUsage(ctx, tenantCtx.TenantID, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate usage: %w", err)
	}
	return usage, nil
}
