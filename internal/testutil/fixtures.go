// Package testutil builds fixtures over the in-memory store for service and handler tests.
package testutil

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/inventory-backend/internal/domain/article"
	"github.com/your-org/inventory-backend/internal/domain/supplier"
	"github.com/your-org/inventory-backend/internal/infrastructure/database/memory"
)

// Now is the fixed clock used across tests
var Now = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// Clock returns a time source pinned to at
func Clock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

// Logger discards everything
func Logger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func Float(v float64) *float64 { return &v }
func Int(v int) *int           { return &v }
func Uint(v uint) *uint        { return &v }
func Bool(v bool) *bool        { return &v }

// ArticleSpec describes a seeded article
type ArticleSpec struct {
	Description  string
	AnnualDemand *float64
	DemandStdDev *float64
	HoldingCost  float64
	Stock        int
	SalePrice    float64
}

// StandardArticle has D=1000, sigma=10, H=2, which yields Q=224 and R=14 for S=50, L=5
func StandardArticle(stock int) ArticleSpec {
	return ArticleSpec{
		Description:  "Hex bolt M8",
		AnnualDemand: Float(1000),
		DemandStdDev: Float(10),
		HoldingCost:  2,
		Stock:        stock,
		SalePrice:    20,
	}
}

// SeedArticle stores an article directly
func SeedArticle(t testing.TB, store *memory.Store, spec ArticleSpec) *article.Article {
	t.Helper()
	if spec.Description == "" {
		spec.Description = "Article"
	}
	a := &article.Article{
		Description:  spec.Description,
		AnnualDemand: spec.AnnualDemand,
		DemandStdDev: spec.DemandStdDev,
		HoldingCost:  decimal.NewFromFloat(spec.HoldingCost),
		Stock:        spec.Stock,
		SalePrice:    decimal.NewFromFloat(spec.SalePrice),
	}
	if err := store.CreateArticle(context.Background(), a); err != nil {
		t.Fatalf("seed article: %v", err)
	}
	return a
}

// SeedSupplier stores a supplier directly
func SeedSupplier(t testing.TB, store *memory.Store, email string) *supplier.Supplier {
	t.Helper()
	s := &supplier.Supplier{FirstName: "Ana", LastName: "Ruiz", Email: email}
	if err := store.CreateSupplier(context.Background(), s); err != nil {
		t.Fatalf("seed supplier: %v", err)
	}
	return s
}

// Stock reads the committed stock of an article
func Stock(t testing.TB, store *memory.Store, articleID uint) int {
	t.Helper()
	a, err := store.GetArticle(context.Background(), articleID)
	if err != nil {
		t.Fatalf("get article %d: %v", articleID, err)
	}
	return a.Stock
}
