// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/shopspring/decimal"
	"github.com/your-org/inventory-backend/internal/config"
	"github.com/your-org/inventory-backend/internal/domain/purchaseorder"
)

// Service renders purchase orders to PDF
type Service struct {
	config *config.Config
	tmpl   *template.Template
	now    func() time.Time
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	if cfg.Documents.WkhtmltopdfPath != "" {
		wkhtmltopdf.SetPath(cfg.Documents.WkhtmltopdfPath)
	}
	return &Service{
		config: cfg,
		tmpl:   template.Must(template.New("purchase-order").Parse(purchaseOrderTemplate)),
		now:    time.Now,
	}
}

// PurchaseOrderData is what the purchase order template renders
type PurchaseOrderData struct {
	Number        string
	IssuedAt      string
	CompanyName   string
	State         string
	Source        string
	SupplierName  string
	SupplierEmail string
	SupplierPhone string
	ArticleID     uint
	Description   string
	Quantity      int
	UnitPrice     string
	LineAmount    string
	OrderCost     string
	Total         string
	ExpectedAt    string
	ReceivedAt    string
}

// DocumentNumber formats the printed order number
func DocumentNumber(o *purchaseorder.PurchaseOrder) string {
	return fmt.Sprintf("PO-%06d", o.ID)
}

// BuildData flattens an order with its preloaded association for the template
func (s *Service) BuildData(o *purchaseorder.PurchaseOrder) PurchaseOrderData {
	line := o.UnitPrice.Mul(decimal.NewFromInt(int64(o.Quantity))).Round(2)
	data := PurchaseOrderData{
		Number:      DocumentNumber(o),
		IssuedAt:    s.now().Format("January 2, 2006"),
		CompanyName: s.config.Documents.CompanyName,
		State:       o.StateID.String(),
		Source:      string(o.Source),
		ArticleID:   o.ArticleID,
		Quantity:    o.Quantity,
		UnitPrice:   o.UnitPrice.StringFixed(2),
		LineAmount:  line.StringFixed(2),
		OrderCost:   o.OrderCost.StringFixed(2),
		Total:       o.TotalAmount.StringFixed(2),
		ExpectedAt:  o.EstimatedReceiptAt.Format("2006-01-02"),
	}
	if o.ReceivedAt != nil {
		data.ReceivedAt = o.ReceivedAt.Format("2006-01-02")
	}
	if sa := o.SupplierArticle; sa != nil {
		if sa.Supplier != nil {
			data.SupplierName = sa.Supplier.FullName()
			data.SupplierEmail = sa.Supplier.Email
			data.SupplierPhone = sa.Supplier.Phone
		}
		if sa.Article != nil {
			data.Description = sa.Article.Description
		}
	}
	return data
}

// RenderHTML executes the purchase order template
func (s *Service) RenderHTML(o *purchaseorder.PurchaseOrder) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, s.BuildData(o)); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// GeneratePurchaseOrder renders o to a PDF document
func (s *Service) GeneratePurchaseOrder(o *purchaseorder.PurchaseOrder) (*bytes.Buffer, error) {
	html, err := s.RenderHTML(o)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html))
	page.FooterRight.Set("[page]/[topage]")
	page.FooterFontSize.Set(9)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

const purchaseOrderTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Purchase order {{.Number}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { border-bottom: 2px solid #eee; padding-bottom: 16px; margin-bottom: 24px; }
        .title { font-size: 26px; font-weight: bold; color: #2563eb; }
        .meta td { padding: 4px 12px 4px 0; }
        .meta .label { font-weight: bold; }
        .items { width: 100%; border-collapse: collapse; margin: 24px 0; }
        .items th, .items td { border: 1px solid #ddd; padding: 10px 8px; text-align: left; }
        .items th { background-color: #f8f9fa; }
        .items .num { text-align: right; }
        .totals { width: 40%; margin-left: auto; }
        .totals td { padding: 4px 0; }
        .totals .grand { font-weight: bold; font-size: 16px; border-top: 2px solid #333; }
    </style>
</head>
<body>
    <div class="header">
        <div class="title">Purchase order {{.Number}}</div>
        <div>{{.CompanyName}}</div>
        <div>Issued {{.IssuedAt}}</div>
    </div>

    <table class="meta">
        <tr><td class="label">Supplier</td><td>{{.SupplierName}}</td></tr>
        <tr><td class="label">Email</td><td>{{.SupplierEmail}}</td></tr>
        {{if .SupplierPhone}}<tr><td class="label">Phone</td><td>{{.SupplierPhone}}</td></tr>{{end}}
        <tr><td class="label">State</td><td>{{.State}}</td></tr>
        <tr><td class="label">Origin</td><td>{{.Source}}</td></tr>
        <tr><td class="label">Expected receipt</td><td>{{.ExpectedAt}}</td></tr>
        {{if .ReceivedAt}}<tr><td class="label">Received</td><td>{{.ReceivedAt}}</td></tr>{{end}}
    </table>

    <table class="items">
        <thead>
            <tr><th>Article</th><th>Description</th><th class="num">Quantity</th><th class="num">Unit price</th><th class="num">Amount</th></tr>
        </thead>
        <tbody>
            <tr>
                <td>#{{.ArticleID}}</td>
                <td>{{.Description}}</td>
                <td class="num">{{.Quantity}}</td>
                <td class="num">{{.UnitPrice}}</td>
                <td class="num">{{.LineAmount}}</td>
            </tr>
        </tbody>
    </table>

    <table class="totals">
        <tr><td>Articles</td><td class="num">{{.LineAmount}}</td></tr>
        <tr><td>Order cost</td><td class="num">{{.OrderCost}}</td></tr>
        <tr class="grand"><td>Total</td><td class="num">{{.Total}}</td></tr>
    </table>
</body>
</html>
`
