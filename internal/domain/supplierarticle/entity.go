// internal/domain/supplierarticle/entity.go
package supplierarticle

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/inventory-backend/internal/domain/article"
	"github.com/your-org/inventory-backend/internal/domain/supplier"
)

// Policy is the replenishment policy selected for an association
type Policy string

const (
	PolicyFixedLot      Policy = "fixed_lot"      // continuous review, EOQ + reorder point
	PolicyFixedInterval Policy = "fixed_interval" // periodic review, order up to maximum
)

// IsValid reports whether p is a known policy
func (p Policy) IsValid() bool {
	return p == PolicyFixedLot || p == PolicyFixedInterval
}

// SupplierArticle links one supplier to one article with its pricing and policy
type SupplierArticle struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	SupplierID         uint            `gorm:"not null;uniqueIndex:idx_supplier_article" json:"supplier_id"`
	ArticleID          uint            `gorm:"not null;uniqueIndex:idx_supplier_article;index" json:"article_id"`
	UnitPrice          decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"unit_price"`
	OrderCost          decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"order_cost"`
	PurchaseCost       decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"purchase_cost"`
	LeadTimeDays       int             `gorm:"not null;default:0" json:"lead_time_days"`
	ServiceLevel       int             `gorm:"not null" json:"service_level"`
	Policy             Policy          `gorm:"type:varchar(20);not null" json:"policy"`
	IsDefault          bool            `gorm:"not null;default:false;index" json:"is_default"`
	TotalInventoryCost decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"cgi"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`

	// Relationships
	Supplier       *supplier.Supplier `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Article        *article.Article   `gorm:"foreignKey:ArticleID" json:"article,omitempty"`
	InventoryModel *InventoryModel    `gorm:"foreignKey:SupplierArticleID" json:"inventory_model,omitempty"`
}

// TableName specifies the table name for SupplierArticle
func (SupplierArticle) TableName() string {
	return "supplier_articles"
}

// InventoryModel stores the policy-derived figures of an association.
// Only the fields of the selected policy are populated.
type InventoryModel struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	SupplierArticleID uint       `gorm:"uniqueIndex;not null" json:"supplier_article_id"`
	OptimalLot        *int       `json:"optimal_lot"`
	ReorderPoint      *int       `json:"reorder_point"`
	ReviewPeriodDays  *int       `json:"review_period_days"`
	LastReviewAt      *time.Time `json:"last_review_at"`
	SafetyStock       *float64   `gorm:"type:numeric(14,2)" json:"safety_stock"`
	MaxInventory      *float64   `gorm:"type:numeric(14,2)" json:"max_inventory"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TableName specifies the table name for InventoryModel
func (InventoryModel) TableName() string {
	return "inventory_models"
}

// SetFixedLot populates the continuous-review fields and clears the periodic ones
func (m *InventoryModel) SetFixedLot(optimalLot, reorderPoint int, safetyStock float64) {
	m.OptimalLot = &optimalLot
	m.ReorderPoint = &reorderPoint
	m.SafetyStock = &safetyStock
	m.ReviewPeriodDays = nil
	m.LastReviewAt = nil
	m.MaxInventory = nil
}

// SetFixedInterval populates the periodic-review fields and clears the
// continuous ones. An existing review date is kept; otherwise reviewedAt is used.
func (m *InventoryModel) SetFixedInterval(reviewPeriodDays int, reviewedAt time.Time, safetyStock, maxInventory float64) {
	m.ReviewPeriodDays = &reviewPeriodDays
	if m.LastReviewAt == nil {
		m.LastReviewAt = &reviewedAt
	}
	m.SafetyStock = &safetyStock
	m.MaxInventory = &maxInventory
	m.OptimalLot = nil
	m.ReorderPoint = nil
}

// NextReviewAt returns the date the next periodic review is due
func (m *InventoryModel) NextReviewAt() (time.Time, bool) {
	if m.ReviewPeriodDays == nil {
		return time.Time{}, false
	}
	if m.LastReviewAt == nil {
		return time.Time{}, true
	}
	return m.LastReviewAt.AddDate(0, 0, *m.ReviewPeriodDays), true
}

// ReviewDue reports whether a periodic review should run at now
func (m *InventoryModel) ReviewDue(now time.Time) bool {
	next, ok := m.NextReviewAt()
	if !ok {
		return false
	}
	return !now.Before(next)
}

// Filter narrows association listings
type Filter struct {
	ArticleID  uint
	SupplierID uint
	Policy     Policy
	// DefaultOnly keeps only each article's default association
	DefaultOnly bool
	// IncludeInactive keeps associations whose article or supplier is soft-deleted
	IncludeInactive bool
}

// ReorderCandidate is a fixed-lot article whose stock fell under its reorder point
type ReorderCandidate struct {
	AssociationID uint   `json:"supplier_article_id"`
	ArticleID     uint   `json:"article_id"`
	Description   string `json:"description"`
	SupplierID    uint   `json:"supplier_id"`
	SupplierName  string `json:"supplier_name"`
	Stock         int    `json:"stock"`
	ReorderPoint  int    `json:"reorder_point"`
	OptimalLot    int    `json:"optimal_lot"`
}

// SafetyStockAlert is an article whose stock fell under its safety stock
type SafetyStockAlert struct {
	AssociationID uint    `json:"supplier_article_id"`
	ArticleID     uint    `json:"article_id"`
	Description   string  `json:"description"`
	SupplierID    uint    `json:"supplier_id"`
	Policy        Policy  `json:"policy"`
	Stock         int     `json:"stock"`
	SafetyStock   float64 `json:"safety_stock"`
}

// SupplierCost is one row of an article's CGI report
type SupplierCost struct {
	AssociationID    uint    `json:"supplier_article_id"`
	SupplierID       uint    `json:"supplier_id"`
	SupplierName     string  `json:"supplier_name"`
	Policy           Policy  `json:"policy"`
	IsDefault        bool    `json:"is_default"`
	OptimalLot       *int    `json:"optimal_lot,omitempty"`
	ReviewPeriodDays *int    `json:"review_period_days,omitempty"`
	HoldingCost      float64 `json:"holding_cost"`
	OrderingCost     float64 `json:"ordering_cost"`
	PurchaseCost     float64 `json:"purchase_cost"`
	TotalCost        float64 `json:"total_cost"`
	StoredCost       float64 `json:"stored_cgi"`
}
