// internal/infrastructure/database/postgres/store.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/your-org/inventory-backend/internal/domain/article"
	"github.com/your-org/inventory-backend/internal/domain/purchaseorder"
	"github.com/your-org/inventory-backend/internal/domain/sale"
	"github.com/your-org/inventory-backend/internal/domain/supplier"
	"github.com/your-org/inventory-backend/internal/domain/supplierarticle"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInsufficientStock is returned when a guarded decrement matches no row
var ErrInsufficientStock = errors.New("insufficient stock")

type txKey struct{}

// Store implements the domain repositories on gorm
type Store struct {
	db *gorm.DB
}

// NewStore creates a store over db
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// conn returns the transaction bound to ctx, if any
func (s *Store) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return s.db.WithContext(ctx)
}

// WithinTransaction runs fn in a transaction carried by the context. Nested
// calls join the outer transaction.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// ARTICLES

func (s *Store) CreateArticle(ctx context.Context, a *article.Article) error {
	return s.conn(ctx).Create(a).Error
}

func (s *Store) ListArticles(ctx context.Context) ([]article.Article, error) {
	var articles []article.Article
	err := s.conn(ctx).Order("id").Find(&articles).Error
	return articles, err
}

func (s *Store) GetArticle(ctx context.Context, id uint) (*article.Article, error) {
	var a article.Article
	if err := s.conn(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) LockArticle(ctx context.Context, id uint) (*article.Article, error) {
	var a article.Article
	if err := forUpdate(s.conn(ctx)).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) UpdateArticle(ctx context.Context, a *article.Article) error {
	return s.conn(ctx).Model(&article.Article{ID: a.ID}).Updates(map[string]interface{}{
		"description":    a.Description,
		"annual_demand":  a.AnnualDemand,
		"demand_std_dev": a.DemandStdDev,
		"holding_cost":   a.HoldingCost,
		"stock":          a.Stock,
		"sale_price":     a.SalePrice,
	}).Error
}

func (s *Store) SoftDeleteArticle(ctx context.Context, id uint) error {
	return s.conn(ctx).Delete(&article.Article{}, id).Error
}

func (s *Store) DecrementStock(ctx context.Context, articleID uint, quantity int) error {
	result := s.conn(ctx).Model(&article.Article{}).
		Where("id = ? AND stock >= ?", articleID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// IncrementStock also applies to soft-deleted articles so receipts are never lost
func (s *Store) IncrementStock(ctx context.Context, articleID uint, quantity int) error {
	result := s.conn(ctx).Unscoped().Model(&article.Article{}).
		Where("id = ?", articleID).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SUPPLIERS

func (s *Store) CreateSupplier(ctx context.Context, sup *supplier.Supplier) error {
	return s.conn(ctx).Create(sup).Error
}

func (s *Store) ListSuppliers(ctx context.Context) ([]supplier.Supplier, error) {
	var suppliers []supplier.Supplier
	err := s.conn(ctx).Order("id").Find(&suppliers).Error
	return suppliers, err
}

func (s *Store) GetSupplier(ctx context.Context, id uint) (*supplier.Supplier, error) {
	var sup supplier.Supplier
	if err := s.conn(ctx).First(&sup, id).Error; err != nil {
		return nil, err
	}
	return &sup, nil
}

func (s *Store) UpdateSupplier(ctx context.Context, sup *supplier.Supplier) error {
	return s.conn(ctx).Model(&supplier.Supplier{ID: sup.ID}).Updates(map[string]interface{}{
		"first_name": sup.FirstName,
		"last_name":  sup.LastName,
		"email":      sup.Email,
		"phone":      sup.Phone,
	}).Error
}

func (s *Store) SoftDeleteSupplier(ctx context.Context, id uint) error {
	return s.conn(ctx).Delete(&supplier.Supplier{}, id).Error
}

// SupplierEmailTaken includes soft-deleted suppliers since the unique index does
func (s *Store) SupplierEmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	var count int64
	err := s.conn(ctx).Unscoped().Model(&supplier.Supplier{}).
		Where("LOWER(email) = ? AND id <> ?", strings.ToLower(email), excludeID).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) CountDefaultAssociationsForSupplier(ctx context.Context, supplierID uint) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&supplierarticle.SupplierArticle{}).
		Where("supplier_id = ? AND is_default = ?", supplierID, true).
		Count(&count).Error
	return count, err
}

// SUPPLIER ARTICLES

func (s *Store) associations(ctx context.Context) *gorm.DB {
	return s.conn(ctx).
		Preload("Article").
		Preload("Supplier").
		Preload("InventoryModel")
}

func (s *Store) GetAssociation(ctx context.Context, id uint) (*supplierarticle.SupplierArticle, error) {
	var sa supplierarticle.SupplierArticle
	if err := s.associations(ctx).First(&sa, id).Error; err != nil {
		return nil, err
	}
	return &sa, nil
}

func (s *Store) FindAssociation(ctx context.Context, supplierID, articleID uint) (*supplierarticle.SupplierArticle, error) {
	var sa supplierarticle.SupplierArticle
	err := s.associations(ctx).
		Where("supplier_id = ? AND article_id = ?", supplierID, articleID).
		First(&sa).Error
	if err != nil {
		return nil, err
	}
	return &sa, nil
}

func (s *Store) DefaultAssociation(ctx context.Context, articleID uint) (*supplierarticle.SupplierArticle, error) {
	var sa supplierarticle.SupplierArticle
	err := s.associations(ctx).
		Where("article_id = ? AND is_default = ?", articleID, true).
		First(&sa).Error
	if err != nil {
		return nil, err
	}
	return &sa, nil
}

func (s *Store) ListAssociations(ctx context.Context, filter supplierarticle.Filter) ([]supplierarticle.SupplierArticle, error) {
	query := s.associations(ctx).
		Model(&supplierarticle.SupplierArticle{}).
		Select("supplier_articles.*")

	if !filter.IncludeInactive {
		query = query.
			Joins("JOIN articles ON articles.id = supplier_articles.article_id AND articles.deleted_at IS NULL").
			Joins("JOIN suppliers ON suppliers.id = supplier_articles.supplier_id AND suppliers.deleted_at IS NULL")
	}
	if filter.ArticleID != 0 {
		query = query.Where("supplier_articles.article_id = ?", filter.ArticleID)
	}
	if filter.SupplierID != 0 {
		query = query.Where("supplier_articles.supplier_id = ?", filter.SupplierID)
	}
	if filter.Policy != "" {
		query = query.Where("supplier_articles.policy = ?", filter.Policy)
	}
	if filter.DefaultOnly {
		query = query.Where("supplier_articles.is_default = ?", true)
	}

	var list []supplierarticle.SupplierArticle
	err := query.Order("supplier_articles.id").Find(&list).Error
	return list, err
}

func (s *Store) CreateAssociation(ctx context.Context, sa *supplierarticle.SupplierArticle) error {
	db := s.conn(ctx)
	if err := db.Omit(clause.Associations).Create(sa).Error; err != nil {
		return err
	}

	if sa.InventoryModel == nil {
		sa.InventoryModel = &supplierarticle.InventoryModel{}
	}
	sa.InventoryModel.SupplierArticleID = sa.ID
	return db.Create(sa.InventoryModel).Error
}

func (s *Store) SaveAssociation(ctx context.Context, sa *supplierarticle.SupplierArticle) error {
	db := s.conn(ctx)
	err := db.Model(&supplierarticle.SupplierArticle{ID: sa.ID}).Updates(map[string]interface{}{
		"unit_price":           sa.UnitPrice,
		"order_cost":           sa.OrderCost,
		"purchase_cost":        sa.PurchaseCost,
		"lead_time_days":       sa.LeadTimeDays,
		"service_level":        sa.ServiceLevel,
		"policy":               sa.Policy,
		"is_default":           sa.IsDefault,
		"total_inventory_cost": sa.TotalInventoryCost,
	}).Error
	if err != nil {
		return err
	}

	m := sa.InventoryModel
	if m == nil {
		return nil
	}
	if m.ID == 0 {
		m.SupplierArticleID = sa.ID
		return db.Create(m).Error
	}

	return db.Model(&supplierarticle.InventoryModel{ID: m.ID}).Updates(map[string]interface{}{
		"optimal_lot":        m.OptimalLot,
		"reorder_point":      m.ReorderPoint,
		"review_period_days": m.ReviewPeriodDays,
		"last_review_at":     m.LastReviewAt,
		"safety_stock":       m.SafetyStock,
		"max_inventory":      m.MaxInventory,
	}).Error
}

func (s *Store) DemoteDefaults(ctx context.Context, articleID, keepID uint) error {
	return s.conn(ctx).Model(&supplierarticle.SupplierArticle{}).
		Where("article_id = ? AND is_default = ? AND id <> ?", articleID, true, keepID).
		Update("is_default", false).Error
}

// DeleteAssociation removes the inventory model first to satisfy the foreign key
func (s *Store) DeleteAssociation(ctx context.Context, id uint) error {
	db := s.conn(ctx)
	if err := db.Where("supplier_article_id = ?", id).Delete(&supplierarticle.InventoryModel{}).Error; err != nil {
		return err
	}
	return db.Delete(&supplierarticle.SupplierArticle{}, id).Error
}

func (s *Store) CountAssociationsForSupplier(ctx context.Context, supplierID uint) (int64, error) {
	var count int64
	err := s.conn(ctx).Model(&supplierarticle.SupplierArticle{}).
		Where("supplier_id = ?", supplierID).
		Count(&count).Error
	return count, err
}

func (s *Store) LockInventoryModel(ctx context.Context, id uint) (*supplierarticle.InventoryModel, error) {
	var m supplierarticle.InventoryModel
	if err := forUpdate(s.conn(ctx)).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) MarkReviewed(ctx context.Context, inventoryModelID uint, at time.Time) error {
	return s.conn(ctx).Model(&supplierarticle.InventoryModel{ID: inventoryModelID}).
		Update("last_review_at", at).Error
}

// PURCHASE ORDERS

func (s *Store) openOrders(ctx context.Context) *gorm.DB {
	return s.conn(ctx).Model(&purchaseorder.PurchaseOrder{}).
		Where("state_id IN ?", purchaseorder.OpenStates)
}

func (s *Store) CountOpenOrdersForArticle(ctx context.Context, articleID uint) (int64, error) {
	var count int64
	err := s.openOrders(ctx).Where("article_id = ?", articleID).Count(&count).Error
	return count, err
}

func (s *Store) CountOpenOrdersForSupplier(ctx context.Context, supplierID uint) (int64, error) {
	var count int64
	err := s.openOrders(ctx).Where("supplier_id = ?", supplierID).Count(&count).Error
	return count, err
}

func (s *Store) CountOpenOrdersForAssociation(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := s.openOrders(ctx).Where("supplier_article_id = ?", id).Count(&count).Error
	return count, err
}

func (s *Store) SumOpenOrderQuantity(ctx context.Context, articleID uint) (int, error) {
	var total int64
	err := s.openOrders(ctx).
		Where("article_id = ?", articleID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	return int(total), err
}

func (s *Store) CreateOrder(ctx context.Context, o *purchaseorder.PurchaseOrder) error {
	return s.conn(ctx).Omit(clause.Associations).Create(o).Error
}

func (s *Store) GetOrder(ctx context.Context, id uint) (*purchaseorder.PurchaseOrder, error) {
	var o purchaseorder.PurchaseOrder
	err := s.conn(ctx).
		Preload("SupplierArticle.Supplier", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("SupplierArticle.Article", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		First(&o, id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) LockOrder(ctx context.Context, id uint) (*purchaseorder.PurchaseOrder, error) {
	var o purchaseorder.PurchaseOrder
	if err := forUpdate(s.conn(ctx)).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *Store) ListOrders(ctx context.Context, filter purchaseorder.Filter) ([]purchaseorder.PurchaseOrder, error) {
	query := s.conn(ctx).
		Preload("SupplierArticle.Supplier", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("SupplierArticle.Article", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })

	if len(filter.States) > 0 {
		query = query.Where("state_id IN ?", filter.States)
	}
	if filter.ArticleID != 0 {
		query = query.Where("article_id = ?", filter.ArticleID)
	}
	if filter.SupplierID != 0 {
		query = query.Where("supplier_id = ?", filter.SupplierID)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}

	var orders []purchaseorder.PurchaseOrder
	err := query.Order("created_at DESC, id DESC").Find(&orders).Error
	return orders, err
}

func (s *Store) SaveOrder(ctx context.Context, o *purchaseorder.PurchaseOrder) error {
	return s.conn(ctx).Model(&purchaseorder.PurchaseOrder{ID: o.ID}).Updates(map[string]interface{}{
		"quantity":     o.Quantity,
		"total_amount": o.TotalAmount,
		"state_id":     o.StateID,
		"received_at":  o.ReceivedAt,
	}).Error
}

// SALES

func (s *Store) CreateSale(ctx context.Context, sl *sale.Sale) error {
	return s.conn(ctx).Omit("Lines.Article").Create(sl).Error
}

func (s *Store) ListSales(ctx context.Context) ([]sale.Sale, error) {
	var sales []sale.Sale
	err := s.conn(ctx).Preload("Lines").Order("sold_at DESC, id DESC").Find(&sales).Error
	return sales, err
}

func (s *Store) GetSale(ctx context.Context, id uint) (*sale.Sale, error) {
	var sl sale.Sale
	err := s.conn(ctx).
		Preload("Lines").
		Preload("Lines.Article", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		First(&sl, id).Error
	if err != nil {
		return nil, err
	}
	return &sl, nil
}
