package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/developerapptim/superkafe-multitenant-sub004/internal/domain"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/events"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/outbox"
	outboxMongo "github.com/developerapptim/superkafe-multitenant-sub004/pkg/outbox/mongodb"
)

// OrderRepository implements domain.OrderRepository using MongoDB
type OrderRepository struct {
	collection   *mongo.Collection
	db           *mongo.Database
	outboxRepo   *outboxMongo.OutboxRepository
	eventFactory *events.EventFactory
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository(db *mongo.Database, eventFactory *events.EventFactory) *OrderRepository {
	collection := db.Collection("orders")
	outboxRepo := outboxMongo.NewOutboxRepository(db)

	// Create indexes
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "tenantId", Value: 1},
				{Key: "orderId", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "tenantId", Value: 1},
				{Key: "status", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "tenantId", Value: 1},
				{Key: "customerId", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "tenantId", Value: 1},
				{Key: "shiftId", Value: 1},
			},
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	// Create outbox indexes
	_ = outboxRepo.EnsureIndexes(ctx)

	return &OrderRepository{
		collection:   collection,
		db:           db,
		outboxRepo:   outboxRepo,
		eventFactory: eventFactory,
	}
}

// Save persists an order with its domain events in a single transaction
func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	return runInTransaction(ctx, r.db, func(sessCtx mongo.SessionContext) error {
		return r.saveInTxn(sessCtx, order)
	})
}

// SaveAll persists multiple orders atomically. Used by merge, where the
// combined order and its marked sources must land together.
func (r *OrderRepository) SaveAll(ctx context.Context, orders []*domain.Order) error {
	return runInTransaction(ctx, r.db, func(sessCtx mongo.SessionContext) error {
		for _, order := range orders {
			if err := r.saveInTxn(sessCtx, order); err != nil {
				return err
			}
		}
		return nil
	})
}

// saveInTxn upserts the aggregate and writes its pending domain events to
// the outbox inside the caller's transaction.
func (r *OrderRepository) saveInTxn(sessCtx mongo.SessionContext, order *domain.Order) error {
	order.UpdatedAt = time.Now().UTC()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"tenantId": order.TenantID, "orderId": order.OrderID}
	update := bson.M{"$set": order}

	if _, err := r.collection.UpdateOne(sessCtx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}

	outboxEvents, err := toOutboxEvents(sessCtx, r.eventFactory, order.TenantID, order.OrderID, "Order", order.DomainEvents())
	if err != nil {
		return err
	}
	if len(outboxEvents) > 0 {
		if err := r.outboxRepo.SaveAll(sessCtx, outboxEvents); err != nil {
			return fmt.Errorf("failed to save outbox events: %w", err)
		}
	}

	order.ClearDomainEvents()

	return nil
}

// FindByID retrieves an order by its OrderID
func (r *OrderRepository) FindByID(ctx context.Context, tenantID, orderID string) (*domain.Order, error) {
	var order domain.Order
	filter := bson.M{"tenantId": tenantID, "orderId": orderID}

	err := r.collection.FindOne(ctx, filter).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &order, nil
}

// FindByIDs retrieves multiple orders by OrderID
func (r *OrderRepository) FindByIDs(ctx context.Context, tenantID string, orderIDs []string) ([]*domain.Order, error) {
	filter := bson.M{
		"tenantId": tenantID,
		"orderId":  bson.M{"$in": orderIDs},
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	return r.findMany(ctx, filter, opts)
}

// FindActive retrieves orders visible in active views (new/process/served)
func (r *OrderRepository) FindActive(ctx context.Context, tenantID string, pagination domain.Pagination) ([]*domain.Order, error) {
	filter := bson.M{
		"tenantId": tenantID,
		"status": bson.M{"$in": []domain.Status{
			domain.StatusNew,
			domain.StatusProcess,
			domain.StatusServed,
		}},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(pagination.Skip()).
		SetLimit(pagination.Limit())

	return r.findMany(ctx, filter, opts)
}

// FindByFilter retrieves orders matching the filter
func (r *OrderRepository) FindByFilter(ctx context.Context, tenantID string, filter domain.OrderFilter, pagination domain.Pagination) ([]*domain.Order, error) {
	mongoFilter := r.buildFilter(tenantID, filter)
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(pagination.Skip()).
		SetLimit(pagination.Limit())

	return r.findMany(ctx, mongoFilter, opts)
}

// MarkSettled atomically flips the persisted settled flag. The filter on
// settled == false makes this the at-most-once gate for ledger and loyalty
// side effects: a second caller matches nothing and gets ErrAlreadySettled.
func (r *OrderRepository) MarkSettled(ctx context.Context, tenantID, orderID string) error {
	filter := bson.M{
		"tenantId": tenantID,
		"orderId":  orderID,
		"settled":  false,
	}
	update := bson.M{
		"$set": bson.M{
			"settled":   true,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return domain.ErrAlreadySettled
	}

	return nil
}

// MarkStockDeducted atomically claims the stock deduction for an order.
// The filter on stockDeducted == false means exactly one of any number of
// concurrent process transitions matches; the losers get ErrAlreadyDeducted
// and must not apply movements. Because the claim runs inside the caller's
// transaction, a transaction retry re-evaluates it against the committed
// flag instead of a stale read.
func (r *OrderRepository) MarkStockDeducted(ctx context.Context, tenantID, orderID string) error {
	return r.claimStockFlag(ctx, tenantID, orderID, false, domain.ErrAlreadyDeducted)
}

// MarkStockReverted atomically claims the stock reversion for an order,
// filtered on stockDeducted == true. A second cancel matches nothing and
// gets ErrNotDeducted.
func (r *OrderRepository) MarkStockReverted(ctx context.Context, tenantID, orderID string) error {
	return r.claimStockFlag(ctx, tenantID, orderID, true, domain.ErrNotDeducted)
}

func (r *OrderRepository) claimStockFlag(ctx context.Context, tenantID, orderID string, from bool, lost error) error {
	filter := bson.M{
		"tenantId":      tenantID,
		"orderId":       orderID,
		"stockDeducted": from,
	}
	update := bson.M{
		"$set": bson.M{
			"stockDeducted": !from,
			"updatedAt":     time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return lost
	}

	return nil
}

// Delete removes an order and writes its pending domain events to the
// outbox in the same transaction. The deletion guard (paid or completed
// orders are never deleted) is enforced by the caller before this runs.
func (r *OrderRepository) Delete(ctx context.Context, order *domain.Order) error {
	return runInTransaction(ctx, r.db, func(sessCtx mongo.SessionContext) error {
		filter := bson.M{"tenantId": order.TenantID, "orderId": order.OrderID}

		result, err := r.collection.DeleteOne(sessCtx, filter)
		if err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}
		if result.DeletedCount == 0 {
			return errors.New("order not found")
		}

		outboxEvents, err := toOutboxEvents(sessCtx, r.eventFactory, order.TenantID, order.OrderID, "Order", order.DomainEvents())
		if err != nil {
			return err
		}
		if len(outboxEvents) > 0 {
			if err := r.outboxRepo.SaveAll(sessCtx, outboxEvents); err != nil {
				return fmt.Errorf("failed to save outbox events: %w", err)
			}
		}

		order.ClearDomainEvents()

		return nil
	})
}

// Count returns the total number of orders matching the filter
func (r *OrderRepository) Count(ctx context.Context, tenantID string, filter domain.OrderFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, r.buildFilter(tenantID, filter))
}

// findMany is a helper for finding multiple orders
func (r *OrderRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Order, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []*domain.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// buildFilter builds a MongoDB filter from an OrderFilter
func (r *OrderRepository) buildFilter(tenantID string, filter domain.OrderFilter) bson.M {
	mongoFilter := bson.M{"tenantId": tenantID}

	if filter.Status != nil {
		mongoFilter["status"] = *filter.Status
	}

	if filter.PaymentStatus != nil {
		mongoFilter["paymentStatus"] = *filter.PaymentStatus
	}

	if filter.CustomerID != nil {
		mongoFilter["customerId"] = *filter.CustomerID
	}

	if filter.TableNumber != nil {
		mongoFilter["tableNumber"] = *filter.TableNumber
	}

	if filter.FromDate != nil || filter.ToDate != nil {
		dateFilter := bson.M{}
		if filter.FromDate != nil {
			dateFilter["$gte"] = *filter.FromDate
		}
		if filter.ToDate != nil {
			dateFilter["$lte"] = *filter.ToDate
		}
		mongoFilter["createdAt"] = dateFilter
	}

	return mongoFilter
}

// GetOutboxRepository returns the outbox repository for this service
func (r *OrderRepository) GetOutboxRepository() outbox.Repository {
	return r.outboxRepo
}
