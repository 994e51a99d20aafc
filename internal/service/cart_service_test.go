package service

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-commerce-service/internal/apperror"
	"go-commerce-service/internal/domain"
	"go-commerce-service/internal/repository"
)

func newCommerceFixture(t *testing.T) (*CartService, *CatalogService) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Product{}, &domain.CartItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	products := repository.NewProductRepository(db)
	cart := repository.NewCartRepository(db)
	return NewCartService(cart, products), NewCatalogService(products)
}

func TestCatalogCRUD(t *testing.T) {
	_, catalog := newCommerceFixture(t)

	created, err := catalog.Create(ProductInput{Name: "Widget", PriceCents: 1999, Stock: 5}, 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 || created.CreatedBy != 1 {
		t.Fatalf("unexpected product: %+v", created)
	}

	updated, err := catalog.Update(created.ID, ProductInput{Name: "Widget v2", PriceCents: 2499, Stock: 3})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Widget v2" || updated.PriceCents != 2499 {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if _, err := catalog.Update(9999, ProductInput{Name: "X"}); apperror.From(err).Status != 404 {
		t.Fatalf("update missing: expected 404, got %v", err)
	}

	_, err = catalog.Create(ProductInput{PriceCents: 100}, 1)
	if apperror.From(err).Status != 400 {
		t.Fatalf("nameless product: expected 400, got %v", err)
	}

	if err := catalog.Delete(created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := catalog.Get(created.ID); apperror.From(err).Status != 404 {
		t.Fatalf("get deleted: expected 404, got %v", err)
	}
}

func TestCartAccumulatesQuantity(t *testing.T) {
	cart, catalog := newCommerceFixture(t)
	product, err := catalog.Create(ProductInput{Name: "Widget", PriceCents: 1999}, 1)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	if err := cart.Add(7, product.ID, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := cart.Add(7, product.ID, 3); err != nil {
		t.Fatalf("second add: %v", err)
	}

	items, err := cart.List(7)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 5 {
		t.Fatalf("expected one row with quantity 5, got %+v", items)
	}
	if items[0].Product == nil || items[0].Product.Name != "Widget" {
		t.Fatalf("expected product preloaded, got %+v", items[0].Product)
	}
}

func TestCartQuantityRules(t *testing.T) {
	cart, catalog := newCommerceFixture(t)
	product, err := catalog.Create(ProductInput{Name: "Widget", PriceCents: 1999}, 1)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	if err := cart.Add(7, 9999, 1); apperror.From(err).Status != 404 {
		t.Fatalf("add missing product: expected 404, got %v", err)
	}

	// Zero-or-negative add defaults to one.
	if err := cart.Add(7, product.ID, 0); err != nil {
		t.Fatalf("add default quantity: %v", err)
	}
	items, _ := cart.List(7)
	if len(items) != 1 || items[0].Quantity != 1 {
		t.Fatalf("expected quantity 1, got %+v", items)
	}

	if err := cart.SetQuantity(7, product.ID, -1); apperror.From(err).Status != 400 {
		t.Fatalf("negative quantity: expected 400, got %v", err)
	}
	if err := cart.SetQuantity(7, product.ID, 4); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	// Setting zero removes the row.
	if err := cart.SetQuantity(7, product.ID, 0); err != nil {
		t.Fatalf("set zero: %v", err)
	}
	if items, _ := cart.List(7); len(items) != 0 {
		t.Fatalf("expected empty cart, got %+v", items)
	}

	if err := cart.Remove(7, product.ID); apperror.From(err).Status != 404 {
		t.Fatalf("remove missing: expected 404, got %v", err)
	}

	if err := cart.Add(7, product.ID, 2); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if err := cart.Clear(7); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if items, _ := cart.List(7); len(items) != 0 {
		t.Fatalf("expected cleared cart, got %+v", items)
	}
}
