// Package estimator provides the synchronous single-entity estimation
// path used by the API layer: fetch matching transactions for one
// explicit key combination, filter, and fit the log-log regression.
package estimator

import (
	"context"
	"errors"
	"fmt"

	"elasticity-lab/internal/domain"
	"elasticity-lab/internal/regression"
	"elasticity-lab/internal/sampling"
	"elasticity-lab/internal/storage"
)

// ErrInvalidPriceType is returned when the requested price type is not
// "regular" or "sale". Configuration error, surfaced immediately.
var ErrInvalidPriceType = errors.New(`price_type must be "regular" or "sale"`)

// ErrInvalidQuery is returned when neither product_id nor customer_id is set.
var ErrInvalidQuery = errors.New("at least one of product_id and customer_id is required")

// ErrNoMatchingData is returned when zero transactions match the filter.
// Distinct from regression.ErrInsufficientData, which means rows matched
// but fewer than 2 survived validity filtering.
var ErrNoMatchingData = errors.New("no transactions match the requested filter")

// Query identifies one estimation request. At least one of ProductID and
// CustomerID must be set; both present narrows to the pair.
type Query struct {
	ProductID  *int64
	CustomerID *int64
	PriceType  string // defaults to regular when empty
	Weekly     bool   // aggregate into ISO-week buckets before fitting
}

// Result is a successful estimate: the signed elasticity coefficient plus
// the echoed entity key and price type.
type Result struct {
	Level      string
	ProductID  *int64
	CustomerID *int64
	PriceType  string
	Elasticity float64
	SampleSize int
}

// Estimator computes single-entity elasticities against a transaction store.
type Estimator struct {
	transactionStore storage.TransactionStore
}

// New creates a new Estimator.
func New(transactionStore storage.TransactionStore) *Estimator {
	return &Estimator{transactionStore: transactionStore}
}

// Estimate runs the single-query path: validate, fetch, filter, fit.
// Failures are typed: ErrInvalidPriceType, ErrInvalidQuery,
// ErrNoMatchingData, regression.ErrInsufficientData,
// regression.ErrDegenerate, or a wrapped store error.
func (e *Estimator) Estimate(ctx context.Context, q Query) (*Result, error) {
	priceType := q.PriceType
	if priceType == "" {
		priceType = domain.PriceTypeRegular
	}
	if !domain.ValidPriceType(priceType) {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidPriceType, q.PriceType)
	}

	txs, level, err := e.fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, ErrNoMatchingData
	}

	var sample []domain.SamplePoint
	if q.Weekly {
		sample = sampling.WeeklySample(txs, priceType)
	} else {
		sample = sampling.RawSample(txs, priceType)
	}

	slope, size, err := regression.FitSample(sample)
	if err != nil {
		return nil, err
	}

	return &Result{
		Level:      level,
		ProductID:  q.ProductID,
		CustomerID: q.CustomerID,
		PriceType:  priceType,
		Elasticity: slope,
		SampleSize: size,
	}, nil
}

// fetch selects the store query matching the key combination.
func (e *Estimator) fetch(ctx context.Context, q Query) ([]*domain.Transaction, string, error) {
	switch {
	case q.CustomerID != nil && q.ProductID != nil:
		txs, err := e.transactionStore.GetByCustomerProduct(ctx, *q.CustomerID, *q.ProductID)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", storage.ErrStoreUnavailable, err)
		}
		return txs, domain.LevelCustomerProduct, nil
	case q.ProductID != nil:
		txs, err := e.transactionStore.GetByProduct(ctx, *q.ProductID)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", storage.ErrStoreUnavailable, err)
		}
		return txs, domain.LevelProduct, nil
	case q.CustomerID != nil:
		txs, err := e.transactionStore.GetByCustomer(ctx, *q.CustomerID)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", storage.ErrStoreUnavailable, err)
		}
		return txs, domain.LevelCustomer, nil
	default:
		return nil, "", ErrInvalidQuery
	}
}
