// Package app assembles the domain services over a storage backend.
package app

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/inventory-backend/internal/config"
	"github.com/your-org/inventory-backend/internal/domain/article"
	"github.com/your-org/inventory-backend/internal/domain/purchaseorder"
	"github.com/your-org/inventory-backend/internal/domain/replenishment"
	"github.com/your-org/inventory-backend/internal/domain/sale"
	"github.com/your-org/inventory-backend/internal/domain/supplier"
	"github.com/your-org/inventory-backend/internal/domain/supplierarticle"
	"github.com/your-org/inventory-backend/internal/interfaces/http/handlers"
	"github.com/your-org/inventory-backend/internal/interfaces/http/routes"
)

// Storage is everything the services need from a backend
type Storage interface {
	article.Repository
	supplier.Repository
	supplierarticle.Repository
	purchaseorder.Repository
	sale.Repository
	replenishment.Repository
}

// Services holds the wired domain services
type Services struct {
	Articles       *article.Service
	Suppliers      *supplier.Service
	Associations   *supplierarticle.Service
	PurchaseOrders *purchaseorder.Service
	Sales          *sale.Service
	Replenishment  *replenishment.Job
}

// NewServices wires the services over store. locker may be nil for a
// single-process deployment.
func NewServices(cfg *config.Config, store Storage, logger logrus.FieldLogger, locker replenishment.Locker) *Services {
	associations := supplierarticle.NewService(store).
		WithDefaultServiceLevel(cfg.Inventory.DefaultServiceLevel)

	opts := []replenishment.Option{replenishment.WithWorkers(cfg.Scheduler.Workers)}
	if locker != nil {
		opts = append(opts, replenishment.WithLocker(locker, cfg.Scheduler.LockTTL))
	}

	return &Services{
		Articles:       article.NewService(store, associations),
		Suppliers:      supplier.NewService(store, associations),
		Associations:   associations,
		PurchaseOrders: purchaseorder.NewService(store),
		Sales:          sale.NewService(store, logger.WithField("component", "sale")),
		Replenishment:  replenishment.NewJob(store, logger.WithField("component", "replenishment"), opts...),
	}
}

// WithClock pins every service to now, used by tests and the CLI
func (s *Services) WithClock(now func() time.Time) *Services {
	s.Associations.WithClock(now)
	s.PurchaseOrders.WithClock(now)
	s.Sales.WithClock(now)
	return s
}

// Handlers builds the HTTP handlers for the services
func (s *Services) Handlers(renderer handlers.PurchaseOrderRenderer, logger logrus.FieldLogger) *routes.Handlers {
	return &routes.Handlers{
		Articles:         handlers.NewArticleHandler(s.Articles, s.Associations, logger),
		Suppliers:        handlers.NewSupplierHandler(s.Suppliers, s.Associations, logger),
		SupplierArticles: handlers.NewSupplierArticleHandler(s.Associations, logger),
		PurchaseOrders:   handlers.NewPurchaseOrderHandler(s.PurchaseOrders, renderer, logger),
		Sales:            handlers.NewSaleHandler(s.Sales, logger),
		Reports:          handlers.NewReportHandler(s.Associations, logger),
		Replenishment:    handlers.NewReplenishmentHandler(s.Replenishment, logger),
	}
}
