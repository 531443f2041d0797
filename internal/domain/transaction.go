package domain

// Transaction represents a single order line from the retail transaction log.
// Corresponds to transactions table in PostgreSQL (orders fact table).
// Transactions are immutable facts; the estimation engine never mutates them.
type Transaction struct {
	ID           int64   // BIGSERIAL primary key
	RetailerID   int64   // retailer owning the store
	StoreID      int64   // store where the purchase happened
	CustomerID   int64   // purchasing customer
	ProductID    int64   // purchased product
	Timestamp    int64   // Unix timestamp in milliseconds
	Quantity     int64   // units purchased, expected > 0
	RegularPrice float64 // list price at time of purchase
	SalePrice    float64 // actually-paid price at time of purchase
	CreatedAt    int64   // record creation timestamp (ms)
}

// Price type constants select which price column feeds the regression.
const (
	PriceTypeRegular = "regular"
	PriceTypeSale    = "sale"
)

// ValidPriceType reports whether pt is one of the two recognized price types.
// Any other value is a configuration error, not a data error.
func ValidPriceType(pt string) bool {
	return pt == PriceTypeRegular || pt == PriceTypeSale
}

// PriceForType returns the price column of tx selected by pt.
// pt must be validated with ValidPriceType before calling.
func PriceForType(tx *Transaction, pt string) float64 {
	if pt == PriceTypeSale {
		return tx.SalePrice
	}
	return tx.RegularPrice
}
