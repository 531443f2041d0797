package memory

import (
	"context"
	"sort"
	"sync"

	"elasticity-lab/internal/domain"
	"elasticity-lab/internal/storage"
)

// TransactionStore is an in-memory implementation of storage.TransactionStore.
type TransactionStore struct {
	mu     sync.RWMutex
	data   []*domain.Transaction
	nextID int64
}

// NewTransactionStore creates a new in-memory transaction store.
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{nextID: 1}
}

// Compile-time interface check.
var _ storage.TransactionStore = (*TransactionStore)(nil)

// InsertBulk adds multiple transactions atomically.
func (s *TransactionStore) InsertBulk(_ context.Context, txs []*domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	for _, tx := range txs {
		if tx == nil {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tx := range txs {
		txCopy := *tx
		txCopy.ID = s.nextID
		s.nextID++
		s.data = append(s.data, &txCopy)
	}
	return nil
}

// GetAll retrieves every transaction, ordered by timestamp ASC.
func (s *TransactionStore) GetAll(_ context.Context) ([]*domain.Transaction, error) {
	return s.filter(func(*domain.Transaction) bool { return true }), nil
}

// GetByProduct retrieves all transactions for a product, ordered by timestamp ASC.
func (s *TransactionStore) GetByProduct(_ context.Context, productID int64) ([]*domain.Transaction, error) {
	return s.filter(func(tx *domain.Transaction) bool { return tx.ProductID == productID }), nil
}

// GetByCustomer retrieves all transactions for a customer, ordered by timestamp ASC.
func (s *TransactionStore) GetByCustomer(_ context.Context, customerID int64) ([]*domain.Transaction, error) {
	return s.filter(func(tx *domain.Transaction) bool { return tx.CustomerID == customerID }), nil
}

// GetByCustomerProduct retrieves transactions matching both ids, ordered by timestamp ASC.
func (s *TransactionStore) GetByCustomerProduct(_ context.Context, customerID, productID int64) ([]*domain.Transaction, error) {
	return s.filter(func(tx *domain.Transaction) bool {
		return tx.CustomerID == customerID && tx.ProductID == productID
	}), nil
}

func (s *TransactionStore) filter(match func(*domain.Transaction) bool) []*domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Transaction
	for _, tx := range s.data {
		if match(tx) {
			txCopy := *tx
			result = append(result, &txCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp != result[j].Timestamp {
			return result[i].Timestamp < result[j].Timestamp
		}
		return result[i].ID < result[j].ID
	})

	return result
}
