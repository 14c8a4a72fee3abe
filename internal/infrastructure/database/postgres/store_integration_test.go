package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/your-org/inventory-backend/internal/app"
	"github.com/your-org/inventory-backend/internal/config"
	"github.com/your-org/inventory-backend/internal/domain/article"
	"github.com/your-org/inventory-backend/internal/domain/purchaseorder"
	"github.com/your-org/inventory-backend/internal/domain/sale"
	"github.com/your-org/inventory-backend/internal/domain/supplier"
	"github.com/your-org/inventory-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/inventory-backend/internal/pkg/apperror"
	"github.com/your-org/inventory-backend/internal/testutil"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Run with TEST_DATABASE_DSN pointing at a disposable database, e.g.
// TEST_DATABASE_DSN="host=localhost user=inventory_user password=inventory_password dbname=inventory_test sslmode=disable"
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set; skipping postgres integration test")
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	migration := postgres.NewMigration(db, testutil.Logger())
	if err := migration.DropAllTables(); err != nil {
		t.Fatalf("drop tables: %v", err)
	}
	if err := migration.RunAutoMigrations(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := migration.CreateIndexes(); err != nil {
		t.Fatalf("create indexes: %v", err)
	}
	if err := migration.SeedOrderStates(); err != nil {
		t.Fatalf("seed order states: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newServices(db *gorm.DB) *app.Services {
	cfg := &config.Config{
		Inventory: config.InventoryConfig{DefaultServiceLevel: 95},
		Scheduler: config.SchedulerConfig{Workers: 2, LockTTL: time.Minute},
	}
	return app.NewServices(cfg, postgres.NewStore(db), testutil.Logger(), nil).
		WithClock(testutil.Clock(testutil.Now))
}

func seedCatalogue(t *testing.T, services *app.Services, stock int) *article.Article {
	t.Helper()
	ctx := context.Background()

	art, err := services.Articles.CreateArticle(ctx, &article.CreateArticleRequest{
		Description:  "Hex bolt M8",
		AnnualDemand: testutil.Float(1000),
		DemandStdDev: testutil.Float(10),
		HoldingCost:  2,
		Stock:        stock,
		SalePrice:    20,
	})
	if err != nil {
		t.Fatalf("CreateArticle() error = %v", err)
	}

	if _, err := services.Suppliers.CreateSupplier(ctx, &supplier.CreateSupplierRequest{
		FirstName: "Ana",
		LastName:  "Ruiz",
		Email:     "ana@example.com",
		Articles: []supplier.AssociationInput{{
			ArticleID:    art.ID,
			UnitPrice:    10,
			OrderCost:    50,
			LeadTimeDays: 5,
			ServiceLevel: 95,
			Policy:       "fixed_lot",
		}},
	}); err != nil {
		t.Fatalf("CreateSupplier() error = %v", err)
	}
	return art
}

func TestStoreSaleAndReceipt(t *testing.T) {
	db := openTestDB(t)
	services := newServices(db)
	ctx := context.Background()
	art := seedCatalogue(t, services, 20)

	receipt, err := services.Sales.CreateSale(ctx, &sale.CreateSaleRequest{
		Items: []sale.SaleItemRequest{{ArticleID: art.ID, Quantity: 6}},
	})
	if err != nil {
		t.Fatalf("CreateSale() error = %v", err)
	}
	if len(receipt.PurchaseOrders) != 1 || receipt.PurchaseOrders[0].Quantity != 224 {
		t.Fatalf("purchase orders = %+v, want one order of 224", receipt.PurchaseOrders)
	}

	order := receipt.PurchaseOrders[0]
	if _, err := services.PurchaseOrders.SendOrder(ctx, order.ID); err != nil {
		t.Fatalf("SendOrder() error = %v", err)
	}
	if _, err := services.PurchaseOrders.FinalizeOrder(ctx, order.ID); err != nil {
		t.Fatalf("FinalizeOrder() error = %v", err)
	}

	got, err := services.Articles.GetArticle(ctx, art.ID)
	if err != nil {
		t.Fatalf("GetArticle() error = %v", err)
	}
	if got.Stock != 14+224 {
		t.Errorf("stock = %d, want %d", got.Stock, 14+224)
	}

	_, err = services.Sales.CreateSale(ctx, &sale.CreateSaleRequest{
		Items: []sale.SaleItemRequest{{ArticleID: art.ID, Quantity: 1000}},
	})
	if !apperror.IsConflict(err) {
		t.Errorf("oversized sale: err = %v, want conflict", err)
	}
}

func TestStoreConcurrentSales(t *testing.T) {
	db := openTestDB(t)
	services := newServices(db)
	ctx := context.Background()
	art := seedCatalogue(t, services, 30)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := services.Sales.CreateSale(ctx, &sale.CreateSaleRequest{
				Items: []sale.SaleItemRequest{{ArticleID: art.ID, Quantity: 2}},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("CreateSale() error = %v", err)
		}
	}

	got, err := services.Articles.GetArticle(ctx, art.ID)
	if err != nil {
		t.Fatalf("GetArticle() error = %v", err)
	}
	if got.Stock != 10 {
		t.Errorf("stock = %d, want 10", got.Stock)
	}

	orders, err := services.PurchaseOrders.GetOrders(ctx, purchaseorder.Filter{ArticleID: art.ID})
	if err != nil {
		t.Fatalf("GetOrders() error = %v", err)
	}
	if len(orders) != 1 {
		t.Errorf("got %d purchase orders, want exactly 1", len(orders))
	}
}
