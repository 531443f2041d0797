package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elasticity-lab/internal/domain"
	"elasticity-lab/internal/storage"
	"elasticity-lab/internal/storage/postgres"
)

func productRow(productID int64, priceType string, elasticity *float64, sampleSize int) *domain.EntityElasticity {
	return &domain.EntityElasticity{
		Level:      domain.LevelProduct,
		ProductID:  ptr(productID),
		PriceType:  priceType,
		Elasticity: elasticity,
		SampleSize: sampleSize,
		ComputedAt: 1700000000000,
	}
}

func TestElasticityStore_ReplaceAllAndGetAll(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewProductElasticityStore(pool)

	rows := []*domain.EntityElasticity{
		productRow(2, domain.PriceTypeRegular, ptr(-0.7), 12),
		productRow(1, domain.PriceTypeRegular, ptr(-1.4), 25),
		productRow(1, domain.PriceTypeSale, nil, 1),
	}
	require.NoError(t, store.ReplaceAll(ctx, rows))

	retrieved, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, retrieved, 3)

	// Ordered by product id then price type.
	assert.Equal(t, int64(1), *retrieved[0].ProductID)
	assert.Equal(t, domain.PriceTypeRegular, retrieved[0].PriceType)
	assert.Equal(t, int64(1), *retrieved[1].ProductID)
	assert.Equal(t, domain.PriceTypeSale, retrieved[1].PriceType)
	assert.Equal(t, int64(2), *retrieved[2].ProductID)

	require.NotNil(t, retrieved[0].Elasticity)
	assert.InDelta(t, -1.4, *retrieved[0].Elasticity, 0.0001)
	assert.Equal(t, 25, retrieved[0].SampleSize)

	// Null estimate round-trips as nil.
	assert.Nil(t, retrieved[1].Elasticity)
	assert.Equal(t, 1, retrieved[1].SampleSize)
}

func TestElasticityStore_ReplaceAllClearsPreviousRows(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewProductElasticityStore(pool)

	require.NoError(t, store.ReplaceAll(ctx, []*domain.EntityElasticity{
		productRow(1, domain.PriceTypeRegular, ptr(-1.0), 10),
		productRow(2, domain.PriceTypeRegular, ptr(-2.0), 10),
	}))
	require.NoError(t, store.ReplaceAll(ctx, []*domain.EntityElasticity{
		productRow(3, domain.PriceTypeRegular, ptr(-3.0), 10),
	}))

	retrieved, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, retrieved, 1)
	assert.Equal(t, int64(3), *retrieved[0].ProductID)

	// Previous rows are gone.
	_, err = store.GetByKey(ctx, domain.ProductKey{ProductID: 1}, domain.PriceTypeRegular)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestElasticityStore_GetByKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewProductElasticityStore(pool)

	require.NoError(t, store.ReplaceAll(ctx, []*domain.EntityElasticity{
		productRow(1, domain.PriceTypeRegular, ptr(-1.4), 25),
		productRow(1, domain.PriceTypeSale, ptr(-2.2), 18),
	}))

	row, err := store.GetByKey(ctx, domain.ProductKey{ProductID: 1}, domain.PriceTypeSale)
	require.NoError(t, err)
	require.NotNil(t, row.Elasticity)
	assert.InDelta(t, -2.2, *row.Elasticity, 0.0001)
	assert.Equal(t, domain.PriceTypeSale, row.PriceType)

	_, err = store.GetByKey(ctx, domain.ProductKey{ProductID: 99}, domain.PriceTypeRegular)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestElasticityStore_PairLevel(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewPairElasticityStore(pool)

	rows := []*domain.EntityElasticity{
		{
			Level:      domain.LevelCustomerProduct,
			CustomerID: ptr(int64(7)),
			ProductID:  ptr(int64(1)),
			PriceType:  domain.PriceTypeRegular,
			Elasticity: ptr(-0.5),
			SampleSize: 9,
			ComputedAt: 1700000000000,
		},
	}
	require.NoError(t, store.ReplaceAll(ctx, rows))

	row, err := store.GetByKey(ctx, domain.PairKey{CustomerID: 7, ProductID: 1}, domain.PriceTypeRegular)
	require.NoError(t, err)
	require.NotNil(t, row.CustomerID)
	require.NotNil(t, row.ProductID)
	assert.Equal(t, int64(7), *row.CustomerID)
	assert.Equal(t, int64(1), *row.ProductID)
	assert.Equal(t, domain.LevelCustomerProduct, row.Level)
}

func TestElasticityStore_ReplaceAllEmpty(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewCustomerElasticityStore(pool)

	require.NoError(t, store.ReplaceAll(ctx, []*domain.EntityElasticity{
		{
			Level:      domain.LevelCustomer,
			CustomerID: ptr(int64(5)),
			PriceType:  domain.PriceTypeRegular,
			Elasticity: ptr(-0.9),
			SampleSize: 40,
			ComputedAt: 1700000000000,
		},
	}))
	require.NoError(t, store.ReplaceAll(ctx, nil))

	retrieved, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, retrieved)
}
