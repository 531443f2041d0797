package memory

import (
	"context"
	"testing"

	"elasticity-lab/internal/domain"
)

func TestTransactionStore_InsertAndGetAll(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()

	txs := []*domain.Transaction{
		{CustomerID: 1, ProductID: 7, Timestamp: 2000, Quantity: 5, RegularPrice: 200},
		{CustomerID: 1, ProductID: 7, Timestamp: 1000, Quantity: 10, RegularPrice: 100},
	}

	if err := store.InsertBulk(ctx, txs); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	all, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}

	if len(all) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(all))
	}
	if all[0].Timestamp != 1000 || all[1].Timestamp != 2000 {
		t.Errorf("transactions not ordered by timestamp: %v, %v", all[0].Timestamp, all[1].Timestamp)
	}
}

func TestTransactionStore_FilterQueries(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()

	txs := []*domain.Transaction{
		{CustomerID: 1, ProductID: 7, Timestamp: 1000, Quantity: 1},
		{CustomerID: 1, ProductID: 8, Timestamp: 2000, Quantity: 1},
		{CustomerID: 2, ProductID: 7, Timestamp: 3000, Quantity: 1},
	}
	if err := store.InsertBulk(ctx, txs); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	byProduct, err := store.GetByProduct(ctx, 7)
	if err != nil {
		t.Fatalf("GetByProduct failed: %v", err)
	}
	if len(byProduct) != 2 {
		t.Errorf("expected 2 rows for product 7, got %d", len(byProduct))
	}

	byCustomer, err := store.GetByCustomer(ctx, 1)
	if err != nil {
		t.Fatalf("GetByCustomer failed: %v", err)
	}
	if len(byCustomer) != 2 {
		t.Errorf("expected 2 rows for customer 1, got %d", len(byCustomer))
	}

	byPair, err := store.GetByCustomerProduct(ctx, 2, 7)
	if err != nil {
		t.Fatalf("GetByCustomerProduct failed: %v", err)
	}
	if len(byPair) != 1 || byPair[0].Timestamp != 3000 {
		t.Errorf("pair query returned wrong rows: %+v", byPair)
	}
}

func TestTransactionStore_ReadsReturnCopies(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.Transaction{{ProductID: 7, Timestamp: 1000, Quantity: 3}}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	first, _ := store.GetAll(ctx)
	first[0].Quantity = 999

	second, _ := store.GetAll(ctx)
	if second[0].Quantity != 3 {
		t.Errorf("store data mutated through a read copy: %d", second[0].Quantity)
	}
}
