// internal/domain/sale/service.go
package sale

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/inventory-backend/internal/domain/article"
	"github.com/your-org/inventory-backend/internal/domain/purchaseorder"
	"github.com/your-org/inventory-backend/internal/domain/supplierarticle"
	"github.com/your-org/inventory-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// Repository is the storage the sale service depends on
type Repository interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	LockArticle(ctx context.Context, id uint) (*article.Article, error)
	DecrementStock(ctx context.Context, articleID uint, quantity int) error
	DefaultAssociation(ctx context.Context, articleID uint) (*supplierarticle.SupplierArticle, error)
	CountOpenOrdersForArticle(ctx context.Context, articleID uint) (int64, error)
	CreateOrder(ctx context.Context, o *purchaseorder.PurchaseOrder) error
	CreateSale(ctx context.Context, s *Sale) error
	ListSales(ctx context.Context) ([]Sale, error)
	GetSale(ctx context.Context, id uint) (*Sale, error)
}

// Service handles sales and the reorders they trigger
type Service struct {
	repo   Repository
	logger logrus.FieldLogger
	now    func() time.Time
}

// NewService creates a new sale service
func NewService(repo Repository, logger logrus.FieldLogger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the time source, used by tests
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateSaleRequest represents sale creation data
type CreateSaleRequest struct {
	Items []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
}

// SaleItemRequest is one requested line
type SaleItemRequest struct {
	ArticleID uint `json:"article_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

// Receipt is the result of a sale, including any reorder it raised
type Receipt struct {
	Sale           *Sale                         `json:"sale"`
	PurchaseOrders []purchaseorder.PurchaseOrder `json:"purchase_orders"`
}

// CreateSale records a sale. Stock is checked and decremented for every line
// and fixed-lot reorders are raised in a single transaction; any insufficient
// line aborts the whole sale.
func (s *Service) CreateSale(ctx context.Context, req *CreateSaleRequest) (*Receipt, error) {
	if len(req.Items) == 0 {
		return nil, apperror.Validation("a sale needs at least one item")
	}

	demand := make(map[uint]int)
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, apperror.Validation("quantity for article %d must be greater than zero", item.ArticleID)
		}
		demand[item.ArticleID] += item.Quantity
	}

	// lock rows in id order so concurrent sales cannot deadlock
	ids := make([]uint, 0, len(demand))
	for id := range demand {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	receipt := &Receipt{PurchaseOrders: make([]purchaseorder.PurchaseOrder, 0)}

	err := s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		articles := make(map[uint]*article.Article, len(ids))
		for _, id := range ids {
			a, err := s.repo.LockArticle(ctx, id)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperror.NotFound("article %d not found", id).WithDetail("article_id", id)
				}
				return apperror.Internal(fmt.Sprintf("failed to load article %d", id), err)
			}
			if !a.CanFulfill(demand[id]) {
				return apperror.Conflict("insufficient stock for article with id %d", id).
					WithDetail("article_id", id).
					WithDetail("available", a.Stock).
					WithDetail("requested", demand[id])
			}
			articles[id] = a
		}

		sale := &Sale{SoldAt: s.now()}
		for _, item := range req.Items {
			price := articles[item.ArticleID].SalePrice
			sale.Lines = append(sale.Lines, SaleLine{
				ArticleID: item.ArticleID,
				Quantity:  item.Quantity,
				UnitPrice: price,
				LineTotal: price.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2),
			})
		}
		sale.CalculateTotal()

		if err := s.repo.CreateSale(ctx, sale); err != nil {
			return apperror.Internal("failed to create sale", err)
		}

		for _, id := range ids {
			if err := s.repo.DecrementStock(ctx, id, demand[id]); err != nil {
				return apperror.Internal(fmt.Sprintf("failed to update stock of article %d", id), err)
			}

			remaining := articles[id].Stock - demand[id]
			order, err := s.reorderIfNeeded(ctx, id, remaining)
			if err != nil {
				return err
			}
			if order != nil {
				receipt.PurchaseOrders = append(receipt.PurchaseOrders, *order)
			}
		}

		receipt.Sale = sale
		return nil
	})
	if err != nil {
		return nil, err
	}

	return receipt, nil
}

// reorderIfNeeded raises an EOQ order when the article's default association
// uses the fixed-lot policy, stock reached the reorder point and nothing is on order
func (s *Service) reorderIfNeeded(ctx context.Context, articleID uint, remaining int) (*purchaseorder.PurchaseOrder, error) {
	sa, err := s.repo.DefaultAssociation(ctx, articleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperror.Internal("failed to load default association", err)
	}

	if sa.Policy != supplierarticle.PolicyFixedLot {
		return nil, nil
	}
	m := sa.InventoryModel
	if m == nil || m.ReorderPoint == nil || m.OptimalLot == nil {
		return nil, nil
	}
	if remaining > *m.ReorderPoint {
		return nil, nil
	}

	open, err := s.repo.CountOpenOrdersForArticle(ctx, articleID)
	if err != nil {
		return nil, apperror.Internal("failed to check purchase orders", err)
	}
	if open > 0 {
		return nil, nil
	}

	if *m.OptimalLot <= 0 {
		s.logger.WithField("article_id", articleID).Warn("Skipping automatic reorder: optimal lot is zero")
		return nil, nil
	}

	order := purchaseorder.NewOrder(sa, *m.OptimalLot, decimal.Zero, purchaseorder.SourceReorderPoint, s.now())
	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, apperror.Internal("failed to create purchase order", err)
	}

	s.logger.WithFields(logrus.Fields{
		"article_id":        articleID,
		"supplier_id":       sa.SupplierID,
		"purchase_order_id": order.ID,
		"quantity":          order.Quantity,
		"stock":             remaining,
		"reorder_point":     *m.ReorderPoint,
	}).Info("Reorder point reached, purchase order raised")

	return order, nil
}

// GetSales retrieves all sales with their lines, newest first
func (s *Service) GetSales(ctx context.Context) ([]Sale, error) {
	sales, err := s.repo.ListSales(ctx)
	if err != nil {
		return nil, apperror.Internal("failed to retrieve sales", err)
	}
	return sales, nil
}

// GetSale retrieves a sale by ID
func (s *Service) GetSale(ctx context.Context, id uint) (*Sale, error) {
	sale, err := s.repo.GetSale(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("sale %d not found", id)
		}
		return nil, apperror.Internal(fmt.Sprintf("failed to load sale %d", id), err)
	}
	return sale, nil
}
