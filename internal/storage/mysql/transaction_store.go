package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"elasticity-lab/internal/domain"
	"elasticity-lab/internal/storage"
)

// TransactionStore implements storage.TransactionStore using MariaDB/MySQL.
type TransactionStore struct {
	db *sql.DB
}

// NewTransactionStore creates a new TransactionStore.
func NewTransactionStore(db *sql.DB) *TransactionStore {
	return &TransactionStore{db: db}
}

// Compile-time interface check.
var _ storage.TransactionStore = (*TransactionStore)(nil)

const transactionColumns = `id, retailer_id, store_id, customer_id, product_id, timestamp, quantity, regular_price, sale_price, created_at`

// InsertBulk adds multiple transactions atomically.
func (s *TransactionStore) InsertBulk(ctx context.Context, txs []*domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO transactions (
			retailer_id, store_id, customer_id, product_id, timestamp, quantity, regular_price, sale_price, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for _, t := range txs {
		if _, err := tx.ExecContext(ctx, query,
			t.RetailerID,
			t.StoreID,
			t.CustomerID,
			t.ProductID,
			t.Timestamp,
			t.Quantity,
			t.RegularPrice,
			t.SalePrice,
			t.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert transaction in bulk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetAll retrieves every transaction, ordered by timestamp ASC.
func (s *TransactionStore) GetAll(ctx context.Context) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY timestamp ASC, id ASC`
	return s.query(ctx, query)
}

// GetByProduct retrieves all transactions for a product, ordered by timestamp ASC.
func (s *TransactionStore) GetByProduct(ctx context.Context, productID int64) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE product_id = ? ORDER BY timestamp ASC, id ASC`
	return s.query(ctx, query, productID)
}

// GetByCustomer retrieves all transactions for a customer, ordered by timestamp ASC.
func (s *TransactionStore) GetByCustomer(ctx context.Context, customerID int64) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE customer_id = ? ORDER BY timestamp ASC, id ASC`
	return s.query(ctx, query, customerID)
}

// GetByCustomerProduct retrieves transactions matching both ids, ordered by timestamp ASC.
func (s *TransactionStore) GetByCustomerProduct(ctx context.Context, customerID, productID int64) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE customer_id = ? AND product_id = ? ORDER BY timestamp ASC, id ASC`
	return s.query(ctx, query, customerID, productID)
}

func (s *TransactionStore) query(ctx context.Context, query string, args ...any) ([]*domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var result []*domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(
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
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		result = append(result, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return result, nil
}
