// Package sampling turns raw transactions into regression samples:
// it groups rows by an entity key projection and builds (quantity, price)
// points either one-per-transaction or one-per-ISO-week.
package sampling

import (
	"sort"

	"elasticity-lab/internal/domain"
)

// GroupBy partitions transactions by the key projection fn, one linear
// pass. Input order is preserved within each group.
func GroupBy[K comparable](txs []*domain.Transaction, fn func(*domain.Transaction) K) map[K][]*domain.Transaction {
	groups := make(map[K][]*domain.Transaction)
	for _, tx := range txs {
		k := fn(tx)
		groups[k] = append(groups[k], tx)
	}
	return groups
}

// ByProduct groups transactions by product id.
func ByProduct(txs []*domain.Transaction) map[int64][]*domain.Transaction {
	return GroupBy(txs, func(tx *domain.Transaction) int64 { return tx.ProductID })
}

// ByCustomer groups transactions by customer id.
func ByCustomer(txs []*domain.Transaction) map[int64][]*domain.Transaction {
	return GroupBy(txs, func(tx *domain.Transaction) int64 { return tx.CustomerID })
}

// ByPair groups transactions by observed (customer, product) pair.
// Only pairs that appear together in at least one transaction show up;
// the full customer x product cross-product is never materialized.
func ByPair(txs []*domain.Transaction) map[domain.PairKey][]*domain.Transaction {
	return GroupBy(txs, func(tx *domain.Transaction) domain.PairKey {
		return domain.PairKey{CustomerID: tx.CustomerID, ProductID: tx.ProductID}
	})
}

// DistinctProducts returns the sorted distinct product ids in txs.
func DistinctProducts(txs []*domain.Transaction) []int64 {
	return distinctInt64(txs, func(tx *domain.Transaction) int64 { return tx.ProductID })
}

// DistinctCustomers returns the sorted distinct customer ids in txs.
func DistinctCustomers(txs []*domain.Transaction) []int64 {
	return distinctInt64(txs, func(tx *domain.Transaction) int64 { return tx.CustomerID })
}

// DistinctPairs returns the observed (customer, product) pairs in txs,
// sorted by customer id then product id for deterministic iteration.
func DistinctPairs(txs []*domain.Transaction) []domain.PairKey {
	seen := make(map[domain.PairKey]struct{})
	for _, tx := range txs {
		seen[domain.PairKey{CustomerID: tx.CustomerID, ProductID: tx.ProductID}] = struct{}{}
	}

	pairs := make([]domain.PairKey, 0, len(seen))
	for k := range seen {
		pairs = append(pairs, k)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].CustomerID != pairs[j].CustomerID {
			return pairs[i].CustomerID < pairs[j].CustomerID
		}
		return pairs[i].ProductID < pairs[j].ProductID
	})
	return pairs
}

func distinctInt64(txs []*domain.Transaction, fn func(*domain.Transaction) int64) []int64 {
	seen := make(map[int64]struct{})
	for _, tx := range txs {
		seen[fn(tx)] = struct{}{}
	}

	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
