package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/developerapptim/superkafe-multitenant-sub004/internal/domain"
)

// StockHistoryRepository implements domain.StockHistoryRepository using
// MongoDB. The collection is append-only: entries are inserted and read,
// never updated or deleted.
type StockHistoryRepository struct {
	collection *mongo.Collection
}

// NewStockHistoryRepository creates a new StockHistoryRepository
func NewStockHistoryRepository(db *mongo.Database) *StockHistoryRepository {
	collection := db.Collection("stock_history")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "tenantId", Value: 1},
				{Key: "ingredientId", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "tenantId", Value: 1},
				{Key: "type", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		{
			Keys:    bson.D{{Key: "historyId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &StockHistoryRepository{collection: collection}
}

// Append inserts a history entry
func (r *StockHistoryRepository) Append(ctx context.Context, entry *domain.StockHistory) error {
	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

// FindByIngredient lists entries for an ingredient, newest first
func (r *StockHistoryRepository) FindByIngredient(ctx context.Context, tenantID, ingredientID string, pagination domain.Pagination) ([]*domain.StockHistory, error) {
	filter := bson.M{"tenantId": tenantID, "ingredientId": ingredientID}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetSkip(pagination.Skip()).
		SetLimit(pagination.Limit())

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []*domain.StockHistory
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}

// TopUsage aggregates out movements per ingredient over a date range,
// ranked by total quantity consumed.
func (r *StockHistoryRepository) TopUsage(ctx context.Context, tenantID string, from, to time.Time, limit int64) ([]domain.IngredientUsage, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"tenantId": tenantID,
			"type":     domain.MovementOut,
			"timestamp": bson.M{
				"$gte": from,
				"$lte": to,
			},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":            "$ingredientId",
			"ingredientName": bson.M{"$last": "$ingredientName"},
			"totalUsed":      bson.M{"$sum": "$qty"},
			"movementCount":  bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"totalUsed": -1}}},
		{{Key: "$limit", Value: limit}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var usage []domain.IngredientUsage
	if err := cursor.All(ctx, &usage); err != nil {
		return nil, err
	}

	return usage, nil
}
