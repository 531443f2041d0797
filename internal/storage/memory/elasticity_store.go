package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"elasticity-lab/internal/domain"
	"elasticity-lab/internal/storage"
)

// ElasticityStore is an in-memory implementation of storage.ElasticityStore
// bound to one aggregation level.
type ElasticityStore struct {
	level string

	mu   sync.RWMutex
	data map[string]*domain.EntityElasticity // keyed by entity key + price type
}

// NewProductElasticityStore creates an in-memory product-level store.
func NewProductElasticityStore() *ElasticityStore {
	return &ElasticityStore{level: domain.LevelProduct, data: make(map[string]*domain.EntityElasticity)}
}

// NewCustomerElasticityStore creates an in-memory customer-level store.
func NewCustomerElasticityStore() *ElasticityStore {
	return &ElasticityStore{level: domain.LevelCustomer, data: make(map[string]*domain.EntityElasticity)}
}

// NewPairElasticityStore creates an in-memory (customer, product)-level store.
func NewPairElasticityStore() *ElasticityStore {
	return &ElasticityStore{level: domain.LevelCustomerProduct, data: make(map[string]*domain.EntityElasticity)}
}

// Compile-time interface check.
var _ storage.ElasticityStore = (*ElasticityStore)(nil)

// rowKey generates a unique key for a row.
func rowKey(key domain.EntityKey, priceType string) string {
	return fmt.Sprintf("%s|%s", key.String(), priceType)
}

// ReplaceAll atomically clears the table and inserts rows.
func (s *ElasticityStore) ReplaceAll(_ context.Context, rows []*domain.EntityElasticity) error {
	for _, r := range rows {
		if r == nil || r.Level != s.level || !domain.ValidPriceType(r.PriceType) {
			return storage.ErrInvalidInput
		}
	}

	next := make(map[string]*domain.EntityElasticity, len(rows))
	for _, r := range rows {
		rowCopy := *r
		next[rowKey(r.Key(), r.PriceType)] = &rowCopy
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = next
	return nil
}

// GetAll retrieves every row, ordered by entity key then price type.
func (s *ElasticityStore) GetAll(_ context.Context) ([]*domain.EntityElasticity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.EntityElasticity, 0, len(s.data))
	for _, r := range s.data {
		rowCopy := *r
		result = append(result, &rowCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		ac, bc := idOrZero(a.CustomerID), idOrZero(b.CustomerID)
		if ac != bc {
			return ac < bc
		}
		ap, bp := idOrZero(a.ProductID), idOrZero(b.ProductID)
		if ap != bp {
			return ap < bp
		}
		return a.PriceType < b.PriceType
	})

	return result, nil
}

// GetByKey retrieves the row for (key, priceType). Returns ErrNotFound if absent.
func (s *ElasticityStore) GetByKey(_ context.Context, key domain.EntityKey, priceType string) (*domain.EntityElasticity, error) {
	if key == nil || key.Level() != s.level || !domain.ValidPriceType(priceType) {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.data[rowKey(key, priceType)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	rowCopy := *r
	return &rowCopy, nil
}

func idOrZero(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}
