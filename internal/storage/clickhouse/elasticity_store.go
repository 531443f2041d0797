package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"elasticity-lab/internal/domain"
	"elasticity-lab/internal/storage"
)

// ElasticityStore implements storage.ElasticityStore using ClickHouse,
// bound to one result table per aggregation level. ClickHouse holds the
// computed tables consumed by downstream BI, so the API is scan-oriented:
// truncate-and-batch-insert on write, ordered selects on read.
type ElasticityStore struct {
	conn  *Conn
	level string
	table string
}

// NewProductElasticityStore creates a store bound to product_elasticities.
func NewProductElasticityStore(conn *Conn) *ElasticityStore {
	return &ElasticityStore{conn: conn, level: domain.LevelProduct, table: "product_elasticities"}
}

// NewCustomerElasticityStore creates a store bound to customer_elasticities.
func NewCustomerElasticityStore(conn *Conn) *ElasticityStore {
	return &ElasticityStore{conn: conn, level: domain.LevelCustomer, table: "customer_elasticities"}
}

// NewPairElasticityStore creates a store bound to customer_product_elasticities.
func NewPairElasticityStore(conn *Conn) *ElasticityStore {
	return &ElasticityStore{conn: conn, level: domain.LevelCustomerProduct, table: "customer_product_elasticities"}
}

// Compile-time interface check.
var _ storage.ElasticityStore = (*ElasticityStore)(nil)

// ReplaceAll truncates the table and batch-inserts rows. ClickHouse has no
// cross-statement transactions; a failed insert after truncate leaves the
// table empty rather than holding stale rows from a previous run.
func (s *ElasticityStore) ReplaceAll(ctx context.Context, rows []*domain.EntityElasticity) error {
	for _, r := range rows {
		if r == nil || r.Level != s.level || !domain.ValidPriceType(r.PriceType) {
			return storage.ErrInvalidInput
		}
	}

	if err := s.conn.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s", s.table)); err != nil {
		return fmt.Errorf("truncate %s: %w", s.table, err)
	}
	if len(rows) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, s.insertQuery())
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		if err := s.appendRow(batch, r); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

func (s *ElasticityStore) insertQuery() string {
	switch s.level {
	case domain.LevelCustomer:
		return `INSERT INTO customer_elasticities (customer_id, price_type, elasticity, sample_size, computed_at)`
	case domain.LevelCustomerProduct:
		return `INSERT INTO customer_product_elasticities (customer_id, product_id, price_type, elasticity, sample_size, computed_at)`
	default:
		return `INSERT INTO product_elasticities (product_id, price_type, elasticity, sample_size, computed_at)`
	}
}

func (s *ElasticityStore) appendRow(batch driver.Batch, r *domain.EntityElasticity) error {
	switch s.level {
	case domain.LevelCustomer:
		return batch.Append(*r.CustomerID, r.PriceType, r.Elasticity, int32(r.SampleSize), r.ComputedAt)
	case domain.LevelCustomerProduct:
		return batch.Append(*r.CustomerID, *r.ProductID, r.PriceType, r.Elasticity, int32(r.SampleSize), r.ComputedAt)
	default:
		return batch.Append(*r.ProductID, r.PriceType, r.Elasticity, int32(r.SampleSize), r.ComputedAt)
	}
}

// GetAll retrieves every row, ordered by entity key then price type.
func (s *ElasticityStore) GetAll(ctx context.Context) ([]*domain.EntityElasticity, error) {
	rows, err := s.conn.Query(ctx, s.selectQuery(""))
	if err != nil {
		return nil, fmt.Errorf("get all %s: %w", s.table, err)
	}
	defer rows.Close()

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

// GetByKey retrieves the row for (key, priceType). Returns ErrNotFound if absent.
func (s *ElasticityStore) GetByKey(ctx context.Context, key domain.EntityKey, priceType string) (*domain.EntityElasticity, error) {
	if key == nil || key.Level() != s.level || !domain.ValidPriceType(priceType) {
		return nil, storage.ErrInvalidInput
	}

	var (
		query string
		args  []any
	)
	switch k := key.(type) {
	case domain.ProductKey:
		query = s.selectQuery("WHERE product_id = ? AND price_type = ?")
		args = []any{k.ProductID, priceType}
	case domain.CustomerKey:
		query = s.selectQuery("WHERE customer_id = ? AND price_type = ?")
		args = []any{k.CustomerID, priceType}
	case domain.PairKey:
		query = s.selectQuery("WHERE customer_id = ? AND product_id = ? AND price_type = ?")
		args = []any{k.CustomerID, k.ProductID, priceType}
	default:
		return nil, storage.ErrInvalidInput
	}

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get %s by key: %w", s.table, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, storage.ErrNotFound
	}
	r, err := s.scanRow(rows)
	if err != nil {
		return nil, fmt.Errorf("scan %s row: %w", s.table, err)
	}
	return r, nil
}

func (s *ElasticityStore) selectQuery(where string) string {
	var cols, order string
	switch s.level {
	case domain.LevelCustomer:
		cols = "CAST(NULL AS Nullable(Int64)), CAST(customer_id AS Nullable(Int64)), price_type, elasticity, sample_size, computed_at"
		order = "ORDER BY customer_id ASC, price_type ASC"
	case domain.LevelCustomerProduct:
		cols = "CAST(product_id AS Nullable(Int64)), CAST(customer_id AS Nullable(Int64)), price_type, elasticity, sample_size, computed_at"
		order = "ORDER BY customer_id ASC, product_id ASC, price_type ASC"
	default:
		cols = "CAST(product_id AS Nullable(Int64)), CAST(NULL AS Nullable(Int64)), price_type, elasticity, sample_size, computed_at"
		order = "ORDER BY product_id ASC, price_type ASC"
	}
	if where != "" {
		return fmt.Sprintf("SELECT %s FROM %s FINAL %s %s", cols, s.table, where, order)
	}
	return fmt.Sprintf("SELECT %s FROM %s FINAL %s", cols, s.table, order)
}

func (s *ElasticityStore) scanRow(rows driver.Rows) (*domain.EntityElasticity, error) {
	r := &domain.EntityElasticity{Level: s.level}
	var (
		productID  *int64
		customerID *int64
		sampleSize int32
	)
	if err := rows.Scan(&productID, &customerID, &r.PriceType, &r.Elasticity, &sampleSize, &r.ComputedAt); err != nil {
		return nil, err
	}
	r.ProductID = productID
	r.CustomerID = customerID
	r.SampleSize = int(sampleSize)
	return r, nil
}
