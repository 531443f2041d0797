package reporting

import "time"

// Report summarizes the persisted elasticity tables.
type Report struct {
	GeneratedAt time.Time

	// Per-level summaries, ordered product, customer, customer_product.
	LevelSummaries []LevelSummary

	// Rows per level, sorted by entity key then price type.
	ProductRows  []ElasticityRow
	CustomerRows []ElasticityRow
	PairRows     []ElasticityRow

	// Extremes across estimable product rows. Nil when no product row
	// carries a numeric estimate.
	MostElastic  *ElasticityRow
	LeastElastic *ElasticityRow
}

// LevelSummary holds row counts for one aggregation level.
type LevelSummary struct {
	Level     string
	TotalRows int
	Estimated int
	NullRows  int
	NullRate  float64 // NullRows / TotalRows, 0 if TotalRows == 0
}

// ElasticityRow is one persisted estimate flattened for rendering.
type ElasticityRow struct {
	Level      string
	ProductID  *int64
	CustomerID *int64
	PriceType  string
	Elasticity *float64
	SampleSize int
	ComputedAt int64 // Unix ms
}
