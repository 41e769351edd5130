package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/developerapptim/superkafe-multitenant-sub004/internal/domain"
	"github.com/developerapptim/superkafe-multitenant-sub004/pkg/metrics"
)

// maxMovementRetries bounds the CAS retry loop. Contention on a single
// ingredient is short-lived (one busy menu item), so a handful of retries
// is enough before surfacing the conflict.
const maxMovementRetries = 5

// IngredientRepository implements domain.IngredientRepository using MongoDB.
// Stock mutations are optimistic: every update is filtered on the version
// read and bumps it by one, so concurrent movements on the same ingredient
// never overwrite each other.
type IngredientRepository struct {
	collection *mongo.Collection
	db         *mongo.Database
	history    *StockHistoryRepository
	metrics    *metrics.Metrics
}

// NewIngredientRepository creates a new IngredientRepository
func NewIngredientRepository(db *mongo.Database, history *StockHistoryRepository, m *metrics.Metrics) *IngredientRepository {
	collection := db.Collection("ingredients")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "tenantId", Value: 1},
				{Key: "ingredientId", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "tenantId", Value: 1},
				{Key: "stockQty", Value: 1},
			},
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &IngredientRepository{
		collection: collection,
		db:         db,
		history:    history,
		metrics:    m,
	}
}

// FindByID retrieves an ingredient by its IngredientID
func (r *IngredientRepository) FindByID(ctx context.Context, tenantID, ingredientID string) (*domain.Ingredient, error) {
	var ingredient domain.Ingredient
	filter := bson.M{"tenantId": tenantID, "ingredientId": ingredientID}

	err := r.collection.FindOne(ctx, filter).Decode(&ingredient)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &ingredient, nil
}

// FindByIDs retrieves multiple ingredients
func (r *IngredientRepository) FindByIDs(ctx context.Context, tenantID string, ingredientIDs []string) ([]*domain.Ingredient, error) {
	filter := bson.M{
		"tenantId":     tenantID,
		"ingredientId": bson.M{"$in": ingredientIDs},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ingredients []*domain.Ingredient
	if err := cursor.All(ctx, &ingredients); err != nil {
		return nil, err
	}

	return ingredients, nil
}

// Save inserts a new ingredient
func (r *IngredientRepository) Save(ctx context.Context, ingredient *domain.Ingredient) error {
	ingredient.UpdatedAt = time.Now().UTC()
	_, err := r.collection.InsertOne(ctx, ingredient)
	return err
}

// ApplyMovement atomically persists a mutated ingredient plus its history
// entry. The mutation runs against a fresh read; the update is filtered on
// the version that was read, and a lost race re-reads and re-runs the
// mutation. The history entry lands in the same transaction as the stock
// update, so the append-only log never diverges from the stock level.
// A nil entry from mutate means the movement does not apply (non-physical
// ingredient) and nothing is persisted.
func (r *IngredientRepository) ApplyMovement(
	ctx context.Context,
	tenantID, ingredientID string,
	mutate func(*domain.Ingredient) (*domain.StockHistory, error),
) (*domain.StockHistory, error) {
	for attempt := 0; attempt < maxMovementRetries; attempt++ {
		ingredient, err := r.FindByID(ctx, tenantID, ingredientID)
		if err != nil {
			return nil, err
		}
		if ingredient == nil {
			return nil, domain.ErrIngredientNotFound
		}

		expectedVersion := ingredient.Version

		entry, err := mutate(ingredient)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return nil, nil
		}

		ingredient.Version = expectedVersion + 1

		var conflict bool
		err = runInTransaction(ctx, r.db, func(sessCtx mongo.SessionContext) error {
			filter := bson.M{
				"tenantId":     tenantID,
				"ingredientId": ingredientID,
				"version":      expectedVersion,
			}

			result, err := r.collection.UpdateOne(sessCtx, filter, bson.M{"$set": ingredient})
			if err != nil {
				return err
			}
			if result.MatchedCount == 0 {
				conflict = true
				return nil
			}

			return r.history.Append(sessCtx, entry)
		})
		if err != nil {
			return nil, err
		}

		if conflict {
			r.metrics.RecordStockCASConflict(string(entry.Type))
			continue
		}

		return entry, nil
	}

	return nil, domain.ErrVersionConflict
}
