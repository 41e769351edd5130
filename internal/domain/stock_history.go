package domain

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MovementType classifies stock history entries
type MovementType string

const (
	MovementIn      MovementType = "in"
	MovementOut     MovementType = "out"
	MovementOpname  MovementType = "opname"
	MovementRestock MovementType = "restock"
)

// IsValid checks if the movement type is a known value
func (m MovementType) IsValid() bool {
	switch m {
	case MovementIn, MovementOut, MovementOpname, MovementRestock:
		return true
	default:
		return false
	}
}

// StockHistory is an append-only record of a single stock mutation with
// before/after snapshots. Entries are written in the same storage
// transaction as the mutation and are never updated or deleted.
type StockHistory struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	HistoryID      string             `bson:"historyId" json:"historyId"`
	TenantID       string             `bson:"tenantId" json:"tenantId"`
	IngredientID   string             `bson:"ingredientId" json:"ingredientId"`
	IngredientName string             `bson:"ingredientName" json:"ingredientName"`
	Type           MovementType       `bson:"type" json:"type"`
	Qty            float64            `bson:"qty" json:"qty"`
	StockBefore    float64            `bson:"stockBefore" json:"stockBefore"`
	StockAfter     float64            `bson:"stockAfter" json:"stockAfter"`
	Note           string             `bson:"note,omitempty" json:"note,omitempty"`
	ReferenceID    string             `bson:"referenceId,omitempty" json:"referenceId,omitempty"`
	Timestamp      time.Time          `bson:"timestamp" json:"timestamp"`
}

// NewStockHistory builds a history entry from the ingredient's post-mutation
// state. StockBefore is passed explicitly since the ingredient has already
// been updated by the time the entry is created.
func NewStockHistory(ing *Ingredient, movementType MovementType, qty, stockBefore float64, note, referenceID string) *StockHistory {
	return &StockHistory{
		ID:             primitive.NewObjectID(),
		HistoryID:      uuid.New().String(),
		TenantID:       ing.TenantID,
		IngredientID:   ing.IngredientID,
		IngredientName: ing.Name,
		Type:           movementType,
		Qty:            qty,
		StockBefore:    stockBefore,
		StockAfter:     ing.StockQty,
		Note:           note,
		ReferenceID:    referenceID,
		Timestamp:      time.Now().UTC(),
	}
}

// IngredientUsage is the result row of the top-usage aggregation over
// out movements in a date range.
type IngredientUsage struct {
	IngredientID   string  `bson:"_id" json:"ingredientId"`
	IngredientName string  `bson:"ingredientName" json:"ingredientName"`
	TotalUsed      float64 `bson:"totalUsed" json:"totalUsed"`
	MovementCount  int64   `bson:"movementCount" json:"movementCount"`
}
