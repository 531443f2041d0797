package sampling

import (
	"testing"
	"time"

	"elasticity-lab/internal/domain"
)

func ms(year int, month time.Month, day int) int64 {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC).UnixMilli()
}

func TestRawSample_SelectsPriceColumn(t *testing.T) {
	txs := []*domain.Transaction{
		{Quantity: 10, RegularPrice: 100, SalePrice: 80},
		{Quantity: 5, RegularPrice: 200, SalePrice: 150},
	}

	regular := RawSample(txs, domain.PriceTypeRegular)
	sale := RawSample(txs, domain.PriceTypeSale)

	if regular[0].Price != 100 || regular[1].Price != 200 {
		t.Errorf("regular sample picked wrong column: %+v", regular)
	}
	if sale[0].Price != 80 || sale[1].Price != 150 {
		t.Errorf("sale sample picked wrong column: %+v", sale)
	}
	if regular[0].Quantity != 10 || regular[1].Quantity != 5 {
		t.Errorf("quantity mismatch: %+v", regular)
	}
}

func TestWeeklyBuckets_SumsQuantityAndMeansPrice(t *testing.T) {
	// Monday and Wednesday of the same ISO week, plus one the week after.
	txs := []*domain.Transaction{
		{Quantity: 3, SalePrice: 10, Timestamp: ms(2024, time.January, 8)},
		{Quantity: 2, SalePrice: 20, Timestamp: ms(2024, time.January, 10)},
		{Quantity: 7, SalePrice: 30, Timestamp: ms(2024, time.January, 15)},
	}

	buckets := WeeklyBuckets(txs, domain.PriceTypeSale)

	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	if buckets[0].Quantity != 5 {
		t.Errorf("expected summed quantity 5, got %v", buckets[0].Quantity)
	}
	if buckets[0].Price != 15 {
		t.Errorf("expected mean price 15, got %v", buckets[0].Price)
	}
	if buckets[1].Quantity != 7 || buckets[1].Price != 30 {
		t.Errorf("second bucket mismatch: %+v", buckets[1])
	}
	if !(buckets[0].Year < buckets[1].Year || (buckets[0].Year == buckets[1].Year && buckets[0].Week < buckets[1].Week)) {
		t.Errorf("buckets not ordered by (year, week): %+v", buckets)
	}
}

func TestWeeklyBuckets_Deterministic(t *testing.T) {
	txs := []*domain.Transaction{
		{Quantity: 1, RegularPrice: 5, Timestamp: ms(2024, time.March, 4)},
		{Quantity: 2, RegularPrice: 6, Timestamp: ms(2024, time.March, 11)},
		{Quantity: 3, RegularPrice: 7, Timestamp: ms(2024, time.March, 18)},
		{Quantity: 4, RegularPrice: 8, Timestamp: ms(2024, time.March, 5)},
	}

	first := WeeklyBuckets(txs, domain.PriceTypeRegular)
	second := WeeklyBuckets(txs, domain.PriceTypeRegular)

	if len(first) != len(second) {
		t.Fatalf("bucket count changed between runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("bucket %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestISOWeek_YearBoundary(t *testing.T) {
	// 2024-12-30 (Monday) belongs to ISO week 1 of 2025.
	year, week := ISOWeek(ms(2024, time.December, 30))
	if year != 2025 || week != 1 {
		t.Errorf("expected 2025/W1, got %d/W%d", year, week)
	}

	// 2021-01-01 (Friday) belongs to ISO week 53 of 2020.
	year, week = ISOWeek(ms(2021, time.January, 1))
	if year != 2020 || week != 53 {
		t.Errorf("expected 2020/W53, got %d/W%d", year, week)
	}
}

func TestGroupBy_AllThreeKeyShapes(t *testing.T) {
	txs := []*domain.Transaction{
		{CustomerID: 1, ProductID: 7},
		{CustomerID: 1, ProductID: 8},
		{CustomerID: 2, ProductID: 7},
		{CustomerID: 1, ProductID: 7},
	}

	byProduct := ByProduct(txs)
	if len(byProduct) != 2 || len(byProduct[7]) != 3 || len(byProduct[8]) != 1 {
		t.Errorf("ByProduct grouping wrong: %v", byProduct)
	}

	byCustomer := ByCustomer(txs)
	if len(byCustomer) != 2 || len(byCustomer[1]) != 3 || len(byCustomer[2]) != 1 {
		t.Errorf("ByCustomer grouping wrong: %v", byCustomer)
	}

	byPair := ByPair(txs)
	if len(byPair) != 3 {
		t.Fatalf("expected 3 observed pairs, got %d", len(byPair))
	}
	if len(byPair[domain.PairKey{CustomerID: 1, ProductID: 7}]) != 2 {
		t.Errorf("pair (1,7) should have 2 rows")
	}
}

func TestDistinctPairs_ObservedOnly(t *testing.T) {
	txs := []*domain.Transaction{
		{CustomerID: 2, ProductID: 9},
		{CustomerID: 1, ProductID: 7},
		{CustomerID: 2, ProductID: 9},
	}

	pairs := DistinctPairs(txs)

	// Observed pairs only, never the 2x2 cross-product.
	if len(pairs) != 2 {
		t.Fatalf("expected 2 observed pairs, got %d", len(pairs))
	}
	if pairs[0] != (domain.PairKey{CustomerID: 1, ProductID: 7}) {
		t.Errorf("pairs not sorted by customer then product: %+v", pairs)
	}
}

func TestDistinctProducts_Sorted(t *testing.T) {
	txs := []*domain.Transaction{
		{ProductID: 9}, {ProductID: 3}, {ProductID: 9}, {ProductID: 1},
	}

	ids := DistinctProducts(txs)

	want := []int64{1, 3, 9}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("expected %v, got %v", want, ids)
			break
		}
	}
}
