package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"elasticity-lab/internal/domain"
	"elasticity-lab/internal/storage"
)

// TransactionStore implements storage.TransactionStore using PostgreSQL.
type TransactionStore struct {
	pool *Pool
}

// NewTransactionStore creates a new TransactionStore.
func NewTransactionStore(pool *Pool) *TransactionStore {
	return &TransactionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TransactionStore = (*TransactionStore)(nil)

const transactionColumns = `id, retailer_id, store_id, customer_id, product_id, timestamp, quantity, regular_price, sale_price, created_at`

// InsertBulk adds multiple transactions atomically.
func (s *TransactionStore) InsertBulk(ctx context.Context, txs []*domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO transactions (
			retailer_id, store_id, customer_id, product_id, timestamp, quantity, regular_price, sale_price
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for _, t := range txs {
		_, err := tx.Exec(ctx, query,
			t.RetailerID,
			t.StoreID,
			t.CustomerID,
			t.ProductID,
			t.Timestamp,
			t.Quantity,
			t.RegularPrice,
			t.SalePrice,
		)
		if err != nil {
			return fmt.Errorf("insert transaction in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetAll retrieves every transaction, ordered by timestamp ASC.
func (s *TransactionStore) GetAll(ctx context.Context) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// GetByProduct retrieves all transactions for a product, ordered by timestamp ASC.
func (s *TransactionStore) GetByProduct(ctx context.Context, productID int64) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE product_id = $1
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("get transactions by product: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// GetByCustomer retrieves all transactions for a customer, ordered by timestamp ASC.
func (s *TransactionStore) GetByCustomer(ctx context.Context, customerID int64) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE customer_id = $1
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("get transactions by customer: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// GetByCustomerProduct retrieves transactions matching both ids, ordered by timestamp ASC.
func (s *TransactionStore) GetByCustomerProduct(ctx context.Context, customerID, productID int64) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE customer_id = $1 AND product_id = $2
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, customerID, productID)
	if err != nil {
		return nil, fmt.Errorf("get transactions by customer and product: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// scanTransactions scans all rows into Transaction structs.
func scanTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	var result []*domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		err := rows.Scan(
			&t.ID,
			&t.RetailerID,
			&t.StoreID,
			&t.CustomerID,
			&t.ProductID,
			&t.Timestamp,
			&t.Quantity,
			&t.RegularPrice,
			&t.SalePrice,
			&t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		result = append(result, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return result, nil
}
