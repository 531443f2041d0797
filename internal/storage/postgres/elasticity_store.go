package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"elasticity-lab/internal/domain"
	"elasticity-lab/internal/storage"
)

// ElasticityStore implements storage.ElasticityStore using PostgreSQL,
// bound to one result table per aggregation level.
type ElasticityStore struct {
	pool  *Pool
	level string
	table string
}

// NewProductElasticityStore creates a store bound to product_elasticities.
func NewProductElasticityStore(pool *Pool) *ElasticityStore {
	return &ElasticityStore{pool: pool, level: domain.LevelProduct, table: "product_elasticities"}
}

// NewCustomerElasticityStore creates a store bound to customer_elasticities.
func NewCustomerElasticityStore(pool *Pool) *ElasticityStore {
	return &ElasticityStore{pool: pool, level: domain.LevelCustomer, table: "customer_elasticities"}
}

// NewPairElasticityStore creates a store bound to customer_product_elasticities.
func NewPairElasticityStore(pool *Pool) *ElasticityStore {
	return &ElasticityStore{pool: pool, level: domain.LevelCustomerProduct, table: "customer_product_elasticities"}
}

// Compile-time interface check.
var _ storage.ElasticityStore = (*ElasticityStore)(nil)

// ReplaceAll atomically clears the table and inserts rows in one
// transaction, keeping repeated batch runs idempotent.
func (s *ElasticityStore) ReplaceAll(ctx context.Context, rows []*domain.EntityElasticity) error {
	for _, r := range rows {
		if r == nil || r.Level != s.level || !domain.ValidPriceType(r.PriceType) {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s", s.table)); err != nil {
		return fmt.Errorf("clear %s: %w", s.table, err)
	}

	for _, r := range rows {
		if err := s.insertRow(ctx, tx, r); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *ElasticityStore) insertRow(ctx context.Context, tx pgx.Tx, r *domain.EntityElasticity) error {
	var err error
	switch s.level {
	case domain.LevelProduct:
		_, err = tx.Exec(ctx, `
			INSERT INTO product_elasticities (product_id, price_type, elasticity, sample_size, computed_at)
			VALUES ($1, $2, $3, $4, $5)
		`, r.ProductID, r.PriceType, r.Elasticity, r.SampleSize, r.ComputedAt)
	case domain.LevelCustomer:
		_, err = tx.Exec(ctx, `
			INSERT INTO customer_elasticities (customer_id, price_type, elasticity, sample_size, computed_at)
			VALUES ($1, $2, $3, $4, $5)
		`, r.CustomerID, r.PriceType, r.Elasticity, r.SampleSize, r.ComputedAt)
	case domain.LevelCustomerProduct:
		_, err = tx.Exec(ctx, `
			INSERT INTO customer_product_elasticities (customer_id, product_id, price_type, elasticity, sample_size, computed_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, r.CustomerID, r.ProductID, r.PriceType, r.Elasticity, r.SampleSize, r.ComputedAt)
	}
	if err != nil {
		return fmt.Errorf("insert %s row: %w", s.table, err)
	}
	return nil
}

// GetAll retrieves every row, ordered by entity key then price type.
func (s *ElasticityStore) GetAll(ctx context.Context) ([]*domain.EntityElasticity, error) {
	rows, err := s.pool.Query(ctx, s.selectQuery(""))
	if err != nil {
		return nil, fmt.Errorf("get all %s: %w", s.table, err)
	}
	defer rows.Close()

	return s.scanRows(rows)
}

// GetByKey retrieves the row for (key, priceType). Returns ErrNotFound if absent.
func (s *ElasticityStore) GetByKey(ctx context.Context, key domain.EntityKey, priceType string) (*domain.EntityElasticity, error) {
	if key == nil || key.Level() != s.level || !domain.ValidPriceType(priceType) {
		return nil, storage.ErrInvalidInput
	}

	var row pgx.Row
	switch k := key.(type) {
	case domain.ProductKey:
		row = s.pool.QueryRow(ctx, s.selectQuery("WHERE product_id = $1 AND price_type = $2"), k.ProductID, priceType)
	case domain.CustomerKey:
		row = s.pool.QueryRow(ctx, s.selectQuery("WHERE customer_id = $1 AND price_type = $2"), k.CustomerID, priceType)
	case domain.PairKey:
		row = s.pool.QueryRow(ctx, s.selectQuery("WHERE customer_id = $1 AND product_id = $2 AND price_type = $3"), k.CustomerID, k.ProductID, priceType)
	default:
		return nil, storage.ErrInvalidInput
	}

	r, err := s.scanRow(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get %s by key: %w", s.table, err)
	}
	return r, nil
}

// selectQuery builds the level-appropriate SELECT with an optional WHERE clause.
func (s *ElasticityStore) selectQuery(where string) string {
	var cols, order string
	switch s.level {
	case domain.LevelProduct:
		cols = "product_id, NULL::bigint, price_type, elasticity, sample_size, computed_at"
		order = "ORDER BY product_id ASC, price_type ASC"
	case domain.LevelCustomer:
		cols = "NULL::bigint, customer_id, price_type, elasticity, sample_size, computed_at"
		order = "ORDER BY customer_id ASC, price_type ASC"
	case domain.LevelCustomerProduct:
		cols = "product_id, customer_id, price_type, elasticity, sample_size, computed_at"
		order = "ORDER BY customer_id ASC, product_id ASC, price_type ASC"
	}
	if where != "" {
		return fmt.Sprintf("SELECT %s FROM %s %s %s", cols, s.table, where, order)
	}
	return fmt.Sprintf("SELECT %s FROM %s %s", cols, s.table, order)
}

func (s *ElasticityStore) scanRows(rows pgx.Rows) ([]*domain.EntityElasticity, error) {
	var result []*domain.EntityElasticity
	for rows.Next() {
		r, err := s.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s row: %w", s.table, err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", s.table, err)
	}
	return result, nil
}

func (s *ElasticityStore) scanRow(row pgx.Row) (*domain.EntityElasticity, error) {
	r := &domain.EntityElasticity{Level: s.level}
	err := row.Scan(&r.ProductID, &r.CustomerID, &r.PriceType, &r.Elasticity, &r.SampleSize, &r.ComputedAt)
	if err != nil {
		return nil, err
	}
	return r, nil
}
