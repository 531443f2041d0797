package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"elasticity-lab/internal/domain"
	"elasticity-lab/internal/storage"
)

// Generator produces reports from the persisted elasticity tables.
type Generator struct {
	productStore  storage.ElasticityStore
	customerStore storage.ElasticityStore
	pairStore     storage.ElasticityStore
	now           func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(productStore, customerStore, pairStore storage.ElasticityStore) *Generator {
	return &Generator{
		productStore:  productStore,
		customerStore: customerStore,
		pairStore:     pairStore,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate loads all three elasticity tables and builds the report.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	productRows, err := g.loadLevel(ctx, g.productStore, domain.LevelProduct)
	if err != nil {
		return nil, err
	}
	customerRows, err := g.loadLevel(ctx, g.customerStore, domain.LevelCustomer)
	if err != nil {
		return nil, err
	}
	pairRows, err := g.loadLevel(ctx, g.pairStore, domain.LevelCustomerProduct)
	if err != nil {
		return nil, err
	}

	most, least := findExtremes(productRows)

	return &Report{
		GeneratedAt: g.now(),
		LevelSummaries: []LevelSummary{
			summarize(domain.LevelProduct, productRows),
			summarize(domain.LevelCustomer, customerRows),
			summarize(domain.LevelCustomerProduct, pairRows),
		},
		ProductRows:  productRows,
		CustomerRows: customerRows,
		PairRows:     pairRows,
		MostElastic:  most,
		LeastElastic: least,
	}, nil
}

func (g *Generator) loadLevel(ctx context.Context, store storage.ElasticityStore, level string) ([]ElasticityRow, error) {
	stored, err := store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s elasticities: %w", level, err)
	}

	rows := make([]ElasticityRow, len(stored))
	for i, e := range stored {
		rows[i] = ElasticityRow{
			Level:      e.Level,
			ProductID:  e.ProductID,
			CustomerID: e.CustomerID,
			PriceType:  e.PriceType,
			Elasticity: e.Elasticity,
			SampleSize: e.SampleSize,
			ComputedAt: e.ComputedAt,
		}
	}

	// Sort by (customer_id, product_id, price_type)
	sort.Slice(rows, func(i, j int) bool {
		if a, b := idOrZero(rows[i].CustomerID), idOrZero(rows[j].CustomerID); a != b {
			return a < b
		}
		if a, b := idOrZero(rows[i].ProductID), idOrZero(rows[j].ProductID); a != b {
			return a < b
		}
		return rows[i].PriceType < rows[j].PriceType
	})
	return rows, nil
}

func summarize(level string, rows []ElasticityRow) LevelSummary {
	s := LevelSummary{Level: level, TotalRows: len(rows)}
	for _, r := range rows {
		if r.Elasticity == nil {
			s.NullRows++
		} else {
			s.Estimated++
		}
	}
	if s.TotalRows > 0 {
		s.NullRate = float64(s.NullRows) / float64(s.TotalRows)
	}
	return s
}

// findExtremes picks the most and least price-sensitive product rows.
// Most elastic means the lowest (most negative) coefficient.
func findExtremes(rows []ElasticityRow) (most, least *ElasticityRow) {
	for i := range rows {
		r := &rows[i]
		if r.Elasticity == nil {
			continue
		}
		if most == nil || *r.Elasticity < *most.Elasticity {
			most = r
		}
		if least == nil || *r.Elasticity > *least.Elasticity {
			least = r
		}
	}
	return most, least
}

func idOrZero(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}
