package domain

import "fmt"

// Aggregation level constants identify which entity dimension an
// elasticity estimate was computed for.
const (
	LevelProduct         = "product"
	LevelCustomer        = "customer"
	LevelCustomerProduct = "customer_product"
)

// EntityKey is the grouping dimension for an elasticity estimate:
// a product, a customer, or a (customer, product) pair.
type EntityKey interface {
	// Level returns the aggregation level constant for this key shape.
	Level() string
	// String returns a stable human-readable form, used in logs and errors.
	String() string
}

// ProductKey groups transactions by product across all customers.
type ProductKey struct {
	ProductID int64
}

func (k ProductKey) Level() string  { return LevelProduct }
func (k ProductKey) String() string { return fmt.Sprintf("product %d", k.ProductID) }

// CustomerKey groups transactions by customer across all products.
type CustomerKey struct {
	CustomerID int64
}

func (k CustomerKey) Level() string  { return LevelCustomer }
func (k CustomerKey) String() string { return fmt.Sprintf("customer %d", k.CustomerID) }

// PairKey groups transactions by a (customer, product) pair. Only pairs
// observed together in at least one transaction are meaningful.
type PairKey struct {
	CustomerID int64
	ProductID  int64
}

func (k PairKey) Level() string { return LevelCustomerProduct }
func (k PairKey) String() string {
	return fmt.Sprintf("customer %d / product %d", k.CustomerID, k.ProductID)
}
