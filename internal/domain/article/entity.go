// internal/domain/article/entity.go
package article

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Article represents a stocked item (SKU)
type Article struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Description  string          `gorm:"not null;size:255" json:"description"`
	AnnualDemand *float64        `gorm:"type:numeric(14,2)" json:"annual_demand"`
	DemandStdDev *float64        `gorm:"type:numeric(14,4)" json:"demand_std_dev"`
	HoldingCost  decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"holding_cost"`
	Stock        int             `gorm:"not null;default:0;check:chk_articles_stock,stock >= 0" json:"stock"`
	SalePrice    decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"sale_price"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName specifies the table name for Article
func (Article) TableName() string {
	return "articles"
}

// IsActive reports whether the article has not been soft-deleted
func (a *Article) IsActive() bool {
	return !a.DeletedAt.Valid
}

// CanFulfill checks if there's enough stock for a sale line
func (a *Article) CanFulfill(quantity int) bool {
	return a.Stock >= quantity
}

// DemandFigures returns annual demand and its standard deviation.
// ok is false when either figure is missing.
func (a *Article) DemandFigures() (demand, stdDev float64, ok bool) {
	if a.AnnualDemand == nil || a.DemandStdDev == nil {
		return 0, 0, false
	}
	return *a.AnnualDemand, *a.DemandStdDev, true
}
