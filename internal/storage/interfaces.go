package storage

import (
	"context"

	"elasticity-lab/internal/domain"
)

// TransactionStore provides read access to the transactions fact table.
// The estimation engine only ever reads it; InsertBulk exists for the
// seeding path and tests.
type TransactionStore interface {
	// InsertBulk adds multiple transactions atomically.
	InsertBulk(ctx context.Context, txs []*domain.Transaction) error

	// GetAll retrieves every transaction, ordered by timestamp ASC.
	// Used by the batch path (single scan per run) and weekly aggregation.
	GetAll(ctx context.Context) ([]*domain.Transaction, error)

	// GetByProduct retrieves all transactions for a product, ordered by timestamp ASC.
	GetByProduct(ctx context.Context, productID int64) ([]*domain.Transaction, error)

	// GetByCustomer retrieves all transactions for a customer, ordered by timestamp ASC.
	GetByCustomer(ctx context.Context, customerID int64) ([]*domain.Transaction, error)

	// GetByCustomerProduct retrieves transactions matching both ids, ordered by timestamp ASC.
	GetByCustomerProduct(ctx context.Context, customerID, productID int64) ([]*domain.Transaction, error)
}

// ElasticityStore provides access to one computed-elasticity result table.
// Three instances exist per backend, bound to the product, customer, and
// (customer, product) tables respectively; rows carry the matching Level.
type ElasticityStore interface {
	// ReplaceAll atomically clears the table and inserts rows. Running the
	// batch twice on an unchanged transaction store therefore yields the
	// same result set, never accumulated duplicates.
	ReplaceAll(ctx context.Context, rows []*domain.EntityElasticity) error

	// GetAll retrieves every row, ordered by entity key then price type.
	GetAll(ctx context.Context) ([]*domain.EntityElasticity, error)

	// GetByKey retrieves the row for (key, priceType). Returns ErrNotFound
	// if no batch run has produced one.
	GetByKey(ctx context.Context, key domain.EntityKey, priceType string) (*domain.EntityElasticity, error)
}
