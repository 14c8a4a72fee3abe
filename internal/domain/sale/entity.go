// internal/domain/sale/entity.go
package sale

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/inventory-backend/internal/domain/article"
)

// Sale aggregates the lines sold in one transaction
type Sale struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Total     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total"`
	SoldAt    time.Time       `gorm:"not null;index" json:"sold_at"`
	CreatedAt time.Time       `json:"created_at"`

	// Relationships
	Lines []SaleLine `gorm:"foreignKey:SaleID" json:"lines"`
}

// TableName specifies the table name for Sale
func (Sale) TableName() string {
	return "sales"
}

// SaleLine is one article sold within a sale
type SaleLine struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	SaleID    uint            `gorm:"not null;index" json:"sale_id"`
	ArticleID uint            `gorm:"not null;index" json:"article_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	LineTotal decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"line_total"`

	// Relationships
	Article *article.Article `gorm:"foreignKey:ArticleID" json:"article,omitempty"`
}

// TableName specifies the table name for SaleLine
func (SaleLine) TableName() string {
	return "sale_lines"
}

// CalculateTotal sums the line totals
func (s *Sale) CalculateTotal() {
	total := decimal.Zero
	for _, line := range s.Lines {
		total = total.Add(line.LineTotal)
	}
	s.Total = total.Round(2)
}
