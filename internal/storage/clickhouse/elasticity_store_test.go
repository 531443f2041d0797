package clickhouse

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elasticity-lab/internal/domain"
	"elasticity-lab/internal/storage"
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
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewProductElasticityStore(conn)

	rows := []*domain.EntityElasticity{
		productRow(2, domain.PriceTypeRegular, ptr(-0.7), 12),
		productRow(1, domain.PriceTypeRegular, ptr(-1.4), 25),
		productRow(1, domain.PriceTypeSale, nil, 1),
	}
	require.NoError(t, store.ReplaceAll(ctx, rows))

	retrieved, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, retrieved, 3)

	assert.Equal(t, int64(1), *retrieved[0].ProductID)
	assert.Equal(t, domain.PriceTypeRegular, retrieved[0].PriceType)
	require.NotNil(t, retrieved[0].Elasticity)
	assert.InDelta(t, -1.4, *retrieved[0].Elasticity, 0.0001)

	// Null estimate round-trips as nil.
	assert.Nil(t, retrieved[1].Elasticity)
	assert.Equal(t, 1, retrieved[1].SampleSize)
}

func TestElasticityStore_ReplaceAllClearsPreviousRows(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewProductElasticityStore(conn)

	require.NoError(t, store.ReplaceAll(ctx, []*domain.EntityElasticity{
		productRow(1, domain.PriceTypeRegular, ptr(-1.0), 10),
	}))
	require.NoError(t, store.ReplaceAll(ctx, []*domain.EntityElasticity{
		productRow(2, domain.PriceTypeRegular, ptr(-2.0), 10),
	}))

	retrieved, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, retrieved, 1)
	assert.Equal(t, int64(2), *retrieved[0].ProductID)
}

func TestElasticityStore_GetByKey(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewProductElasticityStore(conn)

	require.NoError(t, store.ReplaceAll(ctx, []*domain.EntityElasticity{
		productRow(1, domain.PriceTypeRegular, ptr(-1.4), 25),
		productRow(1, domain.PriceTypeSale, ptr(-2.2), 18),
	}))

	row, err := store.GetByKey(ctx, domain.ProductKey{ProductID: 1}, domain.PriceTypeSale)
	require.NoError(t, err)
	require.NotNil(t, row.Elasticity)
	assert.InDelta(t, -2.2, *row.Elasticity, 0.0001)

	_, err = store.GetByKey(ctx, domain.ProductKey{ProductID: 99}, domain.PriceTypeRegular)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestElasticityStore_PairLevel(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPairElasticityStore(conn)

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
