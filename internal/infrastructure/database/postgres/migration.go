// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/inventory-backend/internal/domain/article"
	"github.com/your-org/inventory-backend/internal/domain/purchaseorder"
	"github.com/your-org/inventory-backend/internal/domain/sale"
	"github.com/your-org/inventory-backend/internal/domain/supplier"
	"github.com/your-org/inventory-backend/internal/domain/supplierarticle"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Migration handles database migrations
type Migration struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, log logrus.FieldLogger) *Migration {
	return &Migration{
		db:  db,
		log: log,
	}
}

// models in dependency order
func models() []interface{} {
	return []interface{}{
		&purchaseorder.OrderState{},
		&article.Article{},
		&supplier.Supplier{},
		&supplierarticle.SupplierArticle{},
		&supplierarticle.InventoryModel{},
		&purchaseorder.PurchaseOrder{},
		&sale.Sale{},
		&sale.SaleLine{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.log.Info("🔄 Running database auto-migrations...")

	for _, model := range models() {
		m.log.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.log.Info("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates the indexes AutoMigrate cannot express
func (m *Migration) CreateIndexes() error {
	m.log.Info("🔄 Creating additional database indexes...")

	indexes := []string{
		// at most one default association per article
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_supplier_articles_one_default ON supplier_articles(article_id) WHERE is_default",
		"CREATE INDEX IF NOT EXISTS idx_supplier_articles_policy_default ON supplier_articles(policy, is_default)",

		"CREATE INDEX IF NOT EXISTS idx_purchase_orders_article_state ON purchase_orders(article_id, state_id)",
		"CREATE INDEX IF NOT EXISTS idx_purchase_orders_supplier_state ON purchase_orders(supplier_id, state_id)",
		"CREATE INDEX IF NOT EXISTS idx_purchase_orders_created_at ON purchase_orders(created_at DESC)",

		"CREATE INDEX IF NOT EXISTS idx_articles_active ON articles(id) WHERE deleted_at IS NULL",
		"CREATE INDEX IF NOT EXISTS idx_sales_sold_at ON sales(sold_at DESC)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.log.WithError(err).Warn("⚠️ Failed to create index")
			failCount++
		} else {
			successCount++
		}
	}

	m.log.Infof("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	if failCount > 0 {
		return fmt.Errorf("%d index statements failed", failCount)
	}
	return nil
}

// SeedOrderStates inserts the purchase order state lookup rows
func (m *Migration) SeedOrderStates() error {
	m.log.Info("🌱 Seeding order states...")

	states := purchaseorder.SeedStates()
	if err := m.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&states).Error; err != nil {
		return fmt.Errorf("failed to seed order states: %w", err)
	}

	return nil
}

// DropAllTables drops all tables (use with extreme caution)
func (m *Migration) DropAllTables() error {
	m.log.Warn("⚠️ WARNING: Dropping all database tables...")

	all := models()
	for i := len(all) - 1; i >= 0; i-- {
		if err := m.db.Migrator().DropTable(all[i]); err != nil {
			return fmt.Errorf("failed to drop table for %T: %w", all[i], err)
		}
		m.log.Debugf("🗑️ Dropped table for %T", all[i])
	}

	m.log.Info("✅ All tables dropped successfully")
	return nil
}

// GetTableInfo logs the record count of every table
func (m *Migration) GetTableInfo() error {
	var tables []string
	if err := m.db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename").Scan(&tables).Error; err != nil {
		return err
	}

	totalRecords := int64(0)
	for _, table := range tables {
		var count int64
		m.db.Table(table).Count(&count)
		totalRecords += count

		m.log.WithFields(logrus.Fields{"table": table, "records": count}).Info("📊 Table")
	}

	m.log.Infof("📈 Total records across %d tables: %d", len(tables), totalRecords)
	return nil
}
