package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/developerapptim/superkafe-multitenant-sub004/internal/domain"
)

// CustomerRepository implements domain.CustomerRepository using MongoDB
type CustomerRepository struct {
	collection *mongo.Collection
}

// NewCustomerRepository creates a new CustomerRepository
func NewCustomerRepository(db *mongo.Database) *CustomerRepository {
	collection := db.Collection("customers")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "tenantId", Value: 1},
				{Key: "customerId", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "tenantId", Value: 1},
				{Key: "phone", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "tenantId", Value: 1},
				{Key: "name", Value: 1},
			},
			Options: options.Index().SetCollation(&options.Collation{Locale: "en", Strength: 2}),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &CustomerRepository{collection: collection}
}

// FindByPhone retrieves a customer by phone number
func (r *CustomerRepository) FindByPhone(ctx context.Context, tenantID, phone string) (*domain.Customer, error) {
	return r.findOne(ctx, bson.M{"tenantId": tenantID, "phone": phone}, nil)
}

// FindByName retrieves a customer by case-insensitive exact name match,
// served by the collated index rather than a regex scan
func (r *CustomerRepository) FindByName(ctx context.Context, tenantID, name string) (*domain.Customer, error) {
	opts := options.FindOne().SetCollation(&options.Collation{Locale: "en", Strength: 2})
	return r.findOne(ctx, bson.M{"tenantId": tenantID, "name": name}, opts)
}

// FindByID retrieves a customer by its CustomerID
func (r *CustomerRepository) FindByID(ctx context.Context, tenantID, customerID string) (*domain.Customer, error) {
	return r.findOne(ctx, bson.M{"tenantId": tenantID, "customerId": customerID}, nil)
}

// Save persists a customer (upsert on CustomerID)
func (r *CustomerRepository) Save(ctx context.Context, customer *domain.Customer) error {
	customer.UpdatedAt = time.Now().UTC()
	if customer.ID.IsZero() {
		customer.ID = primitive.NewObjectID()
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"tenantId": customer.TenantID, "customerId": customer.CustomerID}
	update := bson.M{"$set": customer}

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

func (r *CustomerRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*domain.Customer, error) {
	var customer domain.Customer

	var err error
	if opts != nil {
		err = r.collection.FindOne(ctx, filter, opts).Decode(&customer)
	} else {
		err = r.collection.FindOne(ctx, filter).Decode(&customer)
	}
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &customer, nil
}
