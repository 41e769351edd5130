package application

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/developerapptim/superkafe-multitenant-sub004/internal/domain"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/logging"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/metrics"
)

// In-memory fakes implementing the repository interfaces. They mirror
// the storage contracts closely enough to exercise the services:
// MarkSettled and the stock-flag claims are atomic check-and-sets, Save
// on shifts enforces the single-open-shift constraint, and ApplyMovement
// appends history alongside the stock update.

func testLogger() *logging.Logger {
	return logging.New(&logging.Config{
		Level:       logging.LevelError,
		ServiceName: "test",
		Output:      io.Discard,
	})
}

func testMetrics() *metrics.Metrics {
	return metrics.New(&metrics.Config{ServiceName: "test", Namespace: "test"})
}

type passthroughTx struct{}

func (passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*domain.Order)}
}

func (r *fakeOrderRepo) Save(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *order
	r.orders[order.OrderID] = &copied
	order.ClearDomainEvents()
	return nil
}

func (r *fakeOrderRepo) SaveAll(ctx context.Context, orders []*domain.Order) error {
	for _, order := range orders {
		if err := r.Save(ctx, order); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeOrderRepo) FindByID(ctx context.Context, tenantID, orderID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok || order.TenantID != tenantID {
		return nil, nil
	}
	copied := *order
	return &copied, nil
}

func (r *fakeOrderRepo) FindByIDs(ctx context.Context, tenantID string, orderIDs []string) ([]*domain.Order, error) {
	result := make([]*domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		order, err := r.FindByID(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		if order != nil {
			result = append(result, order)
		}
	}
	return result, nil
}

func (r *fakeOrderRepo) FindActive(ctx context.Context, tenantID string, pagination domain.Pagination) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*domain.Order, 0)
	for _, order := range r.orders {
		if order.TenantID == tenantID && order.IsActive() {
			copied := *order
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].OrderID < result[j].OrderID })
	return result, nil
}

func (r *fakeOrderRepo) FindByFilter(ctx context.Context, tenantID string, filter domain.OrderFilter, pagination domain.Pagination) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*domain.Order, 0)
	for _, order := range r.orders {
		if order.TenantID != tenantID {
			continue
		}
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		if filter.PaymentStatus != nil && order.PaymentStatus != *filter.PaymentStatus {
			continue
		}
		copied := *order
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].OrderID < result[j].OrderID })
	return result, nil
}

func (r *fakeOrderRepo) MarkSettled(ctx context.Context, tenantID, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok || order.TenantID != tenantID {
		return domain.ErrInvalidStatus
	}
	if order.Settled {
		return domain.ErrAlreadySettled
	}
	order.Settled = true
	return nil
}

func (r *fakeOrderRepo) MarkStockDeducted(ctx context.Context, tenantID, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok || order.TenantID != tenantID {
		return domain.ErrInvalidStatus
	}
	if order.StockDeducted {
		return domain.ErrAlreadyDeducted
	}
	order.StockDeducted = true
	return nil
}

func (r *fakeOrderRepo) MarkStockReverted(ctx context.Context, tenantID, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok || order.TenantID != tenantID {
		return domain.ErrInvalidStatus
	}
	if !order.StockDeducted {
		return domain.ErrNotDeducted
	}
	order.StockDeducted = false
	return nil
}

func (r *fakeOrderRepo) Delete(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.orders, order.OrderID)
	return nil
}

func (r *fakeOrderRepo) Count(ctx context.Context, tenantID string, filter domain.OrderFilter) (int64, error) {
	orders, err := r.FindByFilter(ctx, tenantID, filter, domain.DefaultPagination())
	if err != nil {
		return 0, err
	}
	return int64(len(orders)), nil
}

type fakeIngredientRepo struct {
	mu          sync.Mutex
	ingredients map[string]*domain.Ingredient
	history     *fakeHistoryRepo
}

func newFakeIngredientRepo(history *fakeHistoryRepo) *fakeIngredientRepo {
	return &fakeIngredientRepo{
		ingredients: make(map[string]*domain.Ingredient),
		history:     history,
	}
}

func (r *fakeIngredientRepo) add(ing *domain.Ingredient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ingredients[ing.IngredientID] = ing
}

func (r *fakeIngredientRepo) FindByID(ctx context.Context, tenantID, ingredientID string) (*domain.Ingredient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ing, ok := r.ingredients[ingredientID]
	if !ok || ing.TenantID != tenantID {
		return nil, nil
	}
	copied := *ing
	return &copied, nil
}

func (r *fakeIngredientRepo) FindByIDs(ctx context.Context, tenantID string, ingredientIDs []string) ([]*domain.Ingredient, error) {
	result := make([]*domain.Ingredient, 0, len(ingredientIDs))
	for _, id := range ingredientIDs {
		ing, err := r.FindByID(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		if ing != nil {
			result = append(result, ing)
		}
	}
	return result, nil
}

func (r *fakeIngredientRepo) Save(ctx context.Context, ingredient *domain.Ingredient) error {
	r.add(ingredient)
	return nil
}

func (r *fakeIngredientRepo) ApplyMovement(ctx context.Context, tenantID, ingredientID string, mutate func(*domain.Ingredient) (*domain.StockHistory, error)) (*domain.StockHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ing, ok := r.ingredients[ingredientID]
	if !ok || ing.TenantID != tenantID {
		return nil, domain.ErrIngredientNotFound
	}

	entry, err := mutate(ing)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}
	ing.Version++
	r.history.append(entry)
	return entry, nil
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries []*domain.StockHistory
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{entries: make([]*domain.StockHistory, 0)}
}

func (r *fakeHistoryRepo) append(entry *domain.StockHistory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *fakeHistoryRepo) Append(ctx context.Context, entry *domain.StockHistory) error {
	r.append(entry)
	return nil
}

func (r *fakeHistoryRepo) FindByIngredient(ctx context.Context, tenantID, ingredientID string, pagination domain.Pagination) ([]*domain.StockHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*domain.StockHistory, 0)
	for _, e := range r.entries {
		if e.TenantID == tenantID && e.IngredientID == ingredientID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (r *fakeHistoryRepo) TopUsage(ctx context.Context, tenantID string, from, to time.Time, limit int64) ([]domain.IngredientUsage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	totals := make(map[string]*domain.IngredientUsage)
	for _, e := range r.entries {
		if e.TenantID != tenantID || e.Type != domain.MovementOut {
			continue
		}
		usage, ok := totals[e.IngredientID]
		if !ok {
			usage = &domain.IngredientUsage{IngredientID: e.IngredientID, IngredientName: e.IngredientName}
			totals[e.IngredientID] = usage
		}
		usage.TotalUsed += e.Qty
		usage.MovementCount++
	}
	result := make([]domain.IngredientUsage, 0, len(totals))
	for _, usage := range totals {
		result = append(result, *usage)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TotalUsed > result[j].TotalUsed })
	if int64(len(result)) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *fakeHistoryRepo) entriesOfType(movementType domain.MovementType) []*domain.StockHistory {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*domain.StockHistory, 0)
	for _, e := range r.entries {
		if e.Type == movementType {
			result = append(result, e)
		}
	}
	return result
}

type fakeShiftRepo struct {
	mu     sync.Mutex
	shifts []*domain.Shift
}

func newFakeShiftRepo() *fakeShiftRepo {
	return &fakeShiftRepo{shifts: make([]*domain.Shift, 0)}
}

func (r *fakeShiftRepo) Save(ctx context.Context, shift *domain.Shift) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.shifts {
		if existing.TenantID == shift.TenantID && existing.IsOpen() {
			return domain.ErrShiftAlreadyOpen
		}
	}
	shift.ClearDomainEvents()
	r.shifts = append(r.shifts, shift)
	return nil
}

func (r *fakeShiftRepo) open(tenantID string) *domain.Shift {
	for _, shift := range r.shifts {
		if shift.TenantID == tenantID && shift.IsOpen() {
			return shift
		}
	}
	return nil
}

func (r *fakeShiftRepo) FindOpen(ctx context.Context, tenantID string) (*domain.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	shift := r.open(tenantID)
	if shift == nil {
		return nil, nil
	}
	copied := *shift
	return &copied, nil
}

func (r *fakeShiftRepo) FindByID(ctx context.Context, tenantID, shiftID string) (*domain.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, shift := range r.shifts {
		if shift.TenantID == tenantID && shift.ShiftID == shiftID {
			copied := *shift
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeShiftRepo) AccrueSale(ctx context.Context, tenantID, orderID string, amount float64, method domain.PaymentMethod) (*domain.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	shift := r.open(tenantID)
	if shift == nil {
		return nil, domain.ErrNoOpenShift
	}
	if err := shift.AccrueSale(orderID, amount, method); err != nil {
		return nil, err
	}
	copied := *shift
	return &copied, nil
}

func (r *fakeShiftRepo) RecordAdjustment(ctx context.Context, tenantID string, adjustment domain.ShiftAdjustment) (*domain.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	shift := r.open(tenantID)
	if shift == nil {
		return nil, domain.ErrNoOpenShift
	}
	if err := shift.RecordAdjustment(adjustment.Amount, adjustment.Description, adjustment.RecordedBy); err != nil {
		return nil, err
	}
	copied := *shift
	return &copied, nil
}

func (r *fakeShiftRepo) Close(ctx context.Context, tenantID string, endCash float64, closedBy string) (*domain.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	shift := r.open(tenantID)
	if shift == nil {
		return nil, domain.ErrNoOpenShift
	}
	if err := shift.Close(endCash, closedBy); err != nil {
		return nil, err
	}
	shift.ClearDomainEvents()
	copied := *shift
	return &copied, nil
}

type fakeCustomerRepo struct {
	mu        sync.Mutex
	customers map[string]*domain.Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: make(map[string]*domain.Customer)}
}

func (r *fakeCustomerRepo) FindByPhone(ctx context.Context, tenantID, phone string) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.TenantID == tenantID && c.Phone == phone {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeCustomerRepo) FindByName(ctx context.Context, tenantID, name string) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.TenantID == tenantID && strings.EqualFold(c.Name, name) {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeCustomerRepo) FindByID(ctx context.Context, tenantID, customerID string) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[customerID]
	if !ok || c.TenantID != tenantID {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCustomerRepo) Save(ctx context.Context, customer *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *customer
	r.customers[customer.CustomerID] = &copied
	return nil
}

type fakeCatalog struct {
	items   map[string]*domain.MenuItem
	recipes map[string]*domain.Recipe
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		items:   make(map[string]*domain.MenuItem),
		recipes: make(map[string]*domain.Recipe),
	}
}

func (c *fakeCatalog) GetMenuItem(ctx context.Context, tenantID, menuItemID string) (*domain.MenuItem, error) {
	return c.items[menuItemID], nil
}

func (c *fakeCatalog) GetRecipe(ctx context.Context, tenantID, menuItemID string) (*domain.Recipe, error) {
	return c.recipes[menuItemID], nil
}
