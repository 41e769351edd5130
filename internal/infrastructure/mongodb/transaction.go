package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	posmongo "github.com/developerapptim/superkafe-multitenant-sub004/pkg/mongodb"
)

// TransactionRunner adapts the shared Mongo client's session handling to the
// application layer's transactional callback. The session context is passed
// through as a plain context.Context so repositories called inside the
// callback join the same transaction.
type TransactionRunner struct {
	client *posmongo.Client
}

// NewTransactionRunner creates a TransactionRunner backed by the given client
func NewTransactionRunner(client *posmongo.Client) *TransactionRunner {
	return &TransactionRunner{client: client}
}

// WithTransaction runs fn inside a single MongoDB transaction
func (r *TransactionRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		return fn(sessCtx)
	})
}

// runInTransaction executes fn transactionally against db. When ctx already
// carries a session (the caller wrapped this call in a TransactionRunner),
// fn joins that transaction instead of starting a nested one.
func runInTransaction(ctx context.Context, db *mongo.Database, fn func(sessCtx mongo.SessionContext) error) error {
	if session := mongo.SessionFromContext(ctx); session != nil {
		return fn(mongo.NewSessionContext(ctx, session))
	}

	session, err := db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}
