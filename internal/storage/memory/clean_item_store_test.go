package memory

import (
	"context"
	"errors"
	"testing"

	"seller-segment-lab/internal/domain"
	"seller-segment-lab/internal/storage"
)

func TestCleanItemStore_InsertBulkAndGet(t *testing.T) {
	store := NewCleanItemStore()
	ctx := context.Background()

	items := []*domain.CleanItem{
		{Line: 4, SellerID: "b", Price: 30},
		{Line: 2, SellerID: "a", Price: 10},
		{Line: 3, SellerID: "a", Price: 20},
	}
	if err := store.InsertBulk(ctx, "run-1", items); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	all, err := store.GetByRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetByRun failed: %v", err)
	}
	if len(all) != 3 || all[0].Line != 2 || all[2].Line != 4 {
		t.Errorf("Expected items ordered by line, got %+v", all)
	}

	bySeller, err := store.GetBySeller(ctx, "run-1", "a")
	if err != nil {
		t.Fatalf("GetBySeller failed: %v", err)
	}
	if len(bySeller) != 2 {
		t.Errorf("Expected 2 items for seller a, got %d", len(bySeller))
	}

	other, _ := store.GetByRun(ctx, "run-2")
	if len(other) != 0 {
		t.Errorf("Expected runs to be isolated, got %d items", len(other))
	}
}

func TestCleanItemStore_DuplicateFailsWholeBatch(t *testing.T) {
	store := NewCleanItemStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, "run-1", []*domain.CleanItem{{Line: 2}}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	err := store.InsertBulk(ctx, "run-1", []*domain.CleanItem{{Line: 3}, {Line: 2}})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("Expected ErrDuplicateKey, got %v", err)
	}
	all, _ := store.GetByRun(ctx, "run-1")
	if len(all) != 1 {
		t.Errorf("Expected failed batch to write nothing, got %d items", len(all))
	}

	err = store.InsertBulk(ctx, "run-1", []*domain.CleanItem{{Line: 5}, {Line: 5}})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected intra-batch ErrDuplicateKey, got %v", err)
	}
}

func TestCleanItemStore_ReturnsCopies(t *testing.T) {
	store := NewCleanItemStore()
	ctx := context.Background()

	item := &domain.CleanItem{Line: 2, Price: 10}
	if err := store.InsertBulk(ctx, "run-1", []*domain.CleanItem{item}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}
	item.Price = 99

	got, _ := store.GetByRun(ctx, "run-1")
	got[0].Price = 42

	again, _ := store.GetByRun(ctx, "run-1")
	if again[0].Price != 10 {
		t.Errorf("Expected stored price 10, got %f", again[0].Price)
	}
}
