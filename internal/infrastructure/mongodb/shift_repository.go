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
	outboxMongo "github.com/developerapptim/superkafe-multitenant-sub004/pkg/outbox/mongodb"
)

// ShiftRepository implements domain.ShiftRepository using MongoDB. The
// one-open-shift-per-tenant rule is enforced by a unique partial index on
// tenantId over documents with endTime == null, so a concurrent second
// open loses at the storage layer with a duplicate-key error.
type ShiftRepository struct {
	collection   *mongo.Collection
	db           *mongo.Database
	outboxRepo   *outboxMongo.OutboxRepository
	eventFactory *events.EventFactory
}

// NewShiftRepository creates a new ShiftRepository
func NewShiftRepository(db *mongo.Database, eventFactory *events.EventFactory) *ShiftRepository {
	collection := db.Collection("shifts")
	outboxRepo := outboxMongo.NewOutboxRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "tenantId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"endTime": bson.M{"$type": "null"}}),
		},
		{
			Keys: bson.D{
				{Key: "tenantId", Value: 1},
				{Key: "shiftId", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "tenantId", Value: 1},
				{Key: "startTime", Value: -1},
			},
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
	_ = outboxRepo.EnsureIndexes(ctx)

	return &ShiftRepository{
		collection:   collection,
		db:           db,
		outboxRepo:   outboxRepo,
		eventFactory: eventFactory,
	}
}

// Save inserts a new shift together with its opened event. A second open
// shift for the tenant violates the partial unique index and maps to
// ErrShiftAlreadyOpen.
func (r *ShiftRepository) Save(ctx context.Context, shift *domain.Shift) error {
	err := runInTransaction(ctx, r.db, func(sessCtx mongo.SessionContext) error {
		if _, err := r.collection.InsertOne(sessCtx, shift); err != nil {
			return err
		}

		outboxEvents, err := toOutboxEvents(sessCtx, r.eventFactory, shift.TenantID, shift.ShiftID, "Shift", shift.DomainEvents())
		if err != nil {
			return err
		}
		if len(outboxEvents) > 0 {
			if err := r.outboxRepo.SaveAll(sessCtx, outboxEvents); err != nil {
				return fmt.Errorf("failed to save outbox events: %w", err)
			}
		}

		shift.ClearDomainEvents()

		return nil
	})
	if err != nil {
		if isDuplicateKey(err) {
			return domain.ErrShiftAlreadyOpen
		}
		return err
	}

	return nil
}

// isDuplicateKey unwraps transaction wrapping around a duplicate-key error,
// which mongo.IsDuplicateKeyError does not do on its own
func isDuplicateKey(err error) bool {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if mongo.IsDuplicateKeyError(e) {
			return true
		}
	}
	return false
}

// FindOpen returns the tenant's open shift; (nil, nil) when none is open.
// More than one open shift should be impossible under the partial index;
// if it is observed anyway the most recent is returned together with
// ErrMultipleOpenShifts so callers can alert.
func (r *ShiftRepository) FindOpen(ctx context.Context, tenantID string) (*domain.Shift, error) {
	filter := bson.M{"tenantId": tenantID, "endTime": nil}
	opts := options.Find().SetSort(bson.D{{Key: "startTime", Value: -1}}).SetLimit(2)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var shifts []*domain.Shift
	if err := cursor.All(ctx, &shifts); err != nil {
		return nil, err
	}

	switch len(shifts) {
	case 0:
		return nil, nil
	case 1:
		return shifts[0], nil
	default:
		return shifts[0], domain.ErrMultipleOpenShifts
	}
}

// FindByID retrieves a shift by its ShiftID
func (r *ShiftRepository) FindByID(ctx context.Context, tenantID, shiftID string) (*domain.Shift, error) {
	var shift domain.Shift
	filter := bson.M{"tenantId": tenantID, "shiftId": shiftID}

	err := r.collection.FindOne(ctx, filter).Decode(&shift)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &shift, nil
}

// AccrueSale atomically adds a settled order to the open shift's counters.
// The filter on endTime == null means a sale can never accrue to a closed
// shift; when no shift is open the caller gets ErrNoOpenShift and decides
// how loudly to complain.
func (r *ShiftRepository) AccrueSale(ctx context.Context, tenantID, orderID string, amount float64, method domain.PaymentMethod) (*domain.Shift, error) {
	inc := bson.M{"nonCashSales": amount, "currentNonCash": amount}
	if method.IsCash() {
		inc = bson.M{"cashSales": amount, "currentCash": amount}
	}

	filter := bson.M{"tenantId": tenantID, "endTime": nil}
	update := bson.M{
		"$inc":  inc,
		"$push": bson.M{"orderIds": orderID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var shift domain.Shift
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&shift)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNoOpenShift
		}
		return nil, err
	}

	return &shift, nil
}

// RecordAdjustment atomically appends a signed cash adjustment to the open shift
func (r *ShiftRepository) RecordAdjustment(ctx context.Context, tenantID string, adjustment domain.ShiftAdjustment) (*domain.Shift, error) {
	if adjustment.Timestamp.IsZero() {
		adjustment.Timestamp = time.Now().UTC()
	}

	filter := bson.M{"tenantId": tenantID, "endTime": nil}
	update := bson.M{
		"$push": bson.M{"adjustments": adjustment},
		"$inc":  bson.M{"currentCash": adjustment.Amount},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var shift domain.Shift
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&shift)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNoOpenShift
		}
		return nil, err
	}

	return &shift, nil
}

// Close ends the open shift. The closing update is filtered on endTime ==
// null so a raced double close only succeeds once; the closed event with
// the cash variance goes to the outbox in the same transaction.
func (r *ShiftRepository) Close(ctx context.Context, tenantID string, endCash float64, closedBy string) (*domain.Shift, error) {
	shift, err := r.FindOpen(ctx, tenantID)
	if err != nil && !errors.Is(err, domain.ErrMultipleOpenShifts) {
		return nil, err
	}
	if shift == nil {
		return nil, domain.ErrNoOpenShift
	}

	if err := shift.Close(endCash, closedBy); err != nil {
		return nil, err
	}

	err = runInTransaction(ctx, r.db, func(sessCtx mongo.SessionContext) error {
		filter := bson.M{"tenantId": tenantID, "shiftId": shift.ShiftID, "endTime": nil}
		update := bson.M{
			"$set": bson.M{
				"endTime":   shift.EndTime,
				"endCash":   shift.EndCash,
				"closedBy":  shift.ClosedBy,
				"updatedAt": shift.UpdatedAt,
			},
		}

		result, err := r.collection.UpdateOne(sessCtx, filter, update)
		if err != nil {
			return err
		}
		if result.MatchedCount == 0 {
			return domain.ErrNoOpenShift
		}

		outboxEvents, err := toOutboxEvents(sessCtx, r.eventFactory, shift.TenantID, shift.ShiftID, "Shift", shift.DomainEvents())
		if err != nil {
			return err
		}
		if len(outboxEvents) > 0 {
			return r.outboxRepo.SaveAll(sessCtx, outboxEvents)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNoOpenShift) {
			return nil, domain.ErrNoOpenShift
		}
		return nil, err
	}

	shift.ClearDomainEvents()

	return shift, nil
}
