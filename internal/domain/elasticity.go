package domain

// EntityElasticity is one computed elasticity row, keyed by
// (level, entity ids, price type). Corresponds to the
// product_elasticities / customer_elasticities /
// customer_product_elasticities result tables.
type EntityElasticity struct {
	Level      string   // LevelProduct | LevelCustomer | LevelCustomerProduct
	ProductID  *int64   // set for product and customer_product levels
	CustomerID *int64   // set for customer and customer_product levels
	PriceType  string   // PriceTypeRegular | PriceTypeSale
	Elasticity *float64 // signed OLS slope; nil means no usable estimate
	SampleSize int      // valid points that fed the regression (0 if none)
	ComputedAt int64    // Unix timestamp in milliseconds
}

// Key returns the EntityKey this row was computed for.
func (e *EntityElasticity) Key() EntityKey {
	switch e.Level {
	case LevelCustomer:
		return CustomerKey{CustomerID: *e.CustomerID}
	case LevelCustomerProduct:
		return PairKey{CustomerID: *e.CustomerID, ProductID: *e.ProductID}
	default:
		return ProductKey{ProductID: *e.ProductID}
	}
}
