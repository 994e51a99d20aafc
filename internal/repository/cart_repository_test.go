package repository

import (
	"errors"
	"testing"

	"go-commerce-service/internal/domain"
)

func TestCartRepositoryUpsertAccumulatesQuantity(t *testing.T) {
	db := newRepositoryDBForTest(t)
	cartRepo := NewCartRepository(db)
	productRepo := NewProductRepository(db)
	user := createTestUser(t, db, "user1", "user1@x.com")

	product := &domain.Product{Name: "Keyboard", PriceCents: 4999, Stock: 10, CreatedBy: user.ID}
	if err := productRepo.Create(product); err != nil {
		t.Fatalf("create product: %v", err)
	}

	if err := cartRepo.Upsert(user.ID, product.ID, 1); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := cartRepo.Upsert(user.ID, product.ID, 2); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	items, err := cartRepo.ListByUser(user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one row per product, got %d", len(items))
	}
	if items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", items[0].Quantity)
	}
	if items[0].Product == nil || items[0].Product.Name != "Keyboard" {
		t.Fatalf("expected product preloaded: %+v", items[0].Product)
	}
}

func TestCartRepositorySetRemoveClear(t *testing.T) {
	db := newRepositoryDBForTest(t)
	cartRepo := NewCartRepository(db)
	productRepo := NewProductRepository(db)
	user := createTestUser(t, db, "user1", "user1@x.com")

	p1 := &domain.Product{Name: "Mouse", PriceCents: 1999, Stock: 5, CreatedBy: user.ID}
	p2 := &domain.Product{Name: "Monitor", PriceCents: 19999, Stock: 2, CreatedBy: user.ID}
	for _, p := range []*domain.Product{p1, p2} {
		if err := productRepo.Create(p); err != nil {
			t.Fatalf("create product %s: %v", p.Name, err)
		}
	}
	if err := cartRepo.Upsert(user.ID, p1.ID, 1); err != nil {
		t.Fatalf("upsert p1: %v", err)
	}
	if err := cartRepo.Upsert(user.ID, p2.ID, 1); err != nil {
		t.Fatalf("upsert p2: %v", err)
	}

	if err := cartRepo.SetQuantity(user.ID, p1.ID, 4); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if err := cartRepo.SetQuantity(user.ID, 9999, 4); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("expected ErrCartItemNotFound, got %v", err)
	}

	if err := cartRepo.Remove(user.ID, p2.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := cartRepo.Remove(user.ID, p2.ID); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("expected repeat remove not found, got %v", err)
	}

	if err := cartRepo.Clear(user.ID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	items, err := cartRepo.ListByUser(user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(items))
	}
}

func TestProductRepositoryCRUD(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewProductRepository(db)

	product := &domain.Product{Name: "Desk", Description: "Standing desk", PriceCents: 39999, Stock: 3, CreatedBy: 1}
	if err := repo.Create(product); err != nil {
		t.Fatalf("create: %v", err)
	}

	product.PriceCents = 34999
	product.Stock = 2
	if err := repo.Update(product); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.FindByID(product.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.PriceCents != 34999 || got.Stock != 2 {
		t.Fatalf("unexpected product after update: %+v", got)
	}

	if err := repo.Delete(product.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.FindByID(product.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if err := repo.Delete(product.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected repeat delete not found, got %v", err)
	}
}
