package pdf

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/inventory-backend/internal/config"
	"github.com/your-org/inventory-backend/internal/domain/article"
	"github.com/your-org/inventory-backend/internal/domain/purchaseorder"
	"github.com/your-org/inventory-backend/internal/domain/supplier"
	"github.com/your-org/inventory-backend/internal/domain/supplierarticle"
)

func testOrder() *purchaseorder.PurchaseOrder {
	sa := &supplierarticle.SupplierArticle{
		ID:           3,
		ArticleID:    7,
		SupplierID:   2,
		UnitPrice:    decimal.NewFromFloat(12.5),
		LeadTimeDays: 5,
		Supplier:     &supplier.Supplier{ID: 2, FirstName: "Ana", LastName: "Ruiz", Email: "ana@acme.test"},
		Article:      &article.Article{ID: 7, Description: "Hex bolt <M8>"},
	}
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	o := purchaseorder.NewOrder(sa, 40, decimal.NewFromInt(25), purchaseorder.SourcePeriodicReview, now)
	o.ID = 42
	o.SupplierArticle = sa
	return o
}

func TestBuildData(t *testing.T) {
	s := NewService(&config.Config{Documents: config.DocumentsConfig{CompanyName: "Acme Stock"}})
	s.now = func() time.Time { return time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC) }

	data := s.BuildData(testOrder())

	checks := map[string][2]string{
		"number":    {data.Number, "PO-000042"},
		"supplier":  {data.SupplierName, "Ana Ruiz"},
		"line":      {data.LineAmount, "500.00"},
		"orderCost": {data.OrderCost, "25.00"},
		"total":     {data.Total, "525.00"},
		"expected":  {data.ExpectedAt, "2024-03-06"},
		"state":     {data.State, "pending"},
		"source":    {data.Source, "periodic_review"},
		"issued":    {data.IssuedAt, "March 2, 2024"},
	}
	for name, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s = %q, want %q", name, c[0], c[1])
		}
	}
	if data.ReceivedAt != "" {
		t.Errorf("ReceivedAt = %q, want empty for a pending order", data.ReceivedAt)
	}
}

func TestRenderHTMLEscapesContent(t *testing.T) {
	s := NewService(&config.Config{})

	html, err := s.RenderHTML(testOrder())
	if err != nil {
		t.Fatalf("RenderHTML() error = %v", err)
	}

	out := string(html)
	for _, want := range []string{"PO-000042", "ana@acme.test", "Hex bolt &lt;M8&gt;", "525.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered HTML missing %q", want)
		}
	}
}
