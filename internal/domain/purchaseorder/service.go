// internal/domain/purchaseorder/service.go
package purchaseorder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/inventory-backend/internal/domain/supplierarticle"
	"github.com/your-org/inventory-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// Repository is the storage the purchase order service depends on
type Repository interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	GetAssociation(ctx context.Context, id uint) (*supplierarticle.SupplierArticle, error)
	CreateOrder(ctx context.Context, o *PurchaseOrder) error
	GetOrder(ctx context.Context, id uint) (*PurchaseOrder, error)
	LockOrder(ctx context.Context, id uint) (*PurchaseOrder, error)
	ListOrders(ctx context.Context, filter Filter) ([]PurchaseOrder, error)
	SaveOrder(ctx context.Context, o *PurchaseOrder) error
	IncrementStock(ctx context.Context, articleID uint, quantity int) error
}

// Filter narrows order listings
type Filter struct {
	States     []StateID
	ArticleID  uint
	SupplierID uint
	Source     Source
}

// Service drives the purchase order lifecycle
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new purchase order service
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// WithClock replaces the time source, used by tests
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateOrderRequest represents manual order creation data
type CreateOrderRequest struct {
	SupplierArticleID uint `json:"supplier_article_id" binding:"required"`
	Quantity          int  `json:"quantity" binding:"required,gt=0"`
}

// UpdateOrderRequest represents a quantity and/or state change
type UpdateOrderRequest struct {
	Quantity *int     `json:"quantity" binding:"omitempty,gt=0"`
	State    *StateID `json:"state"`
}

// CreateOrder raises a manual pending order at the association's current unit price
func (s *Service) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*PurchaseOrder, error) {
	if req.Quantity <= 0 {
		return nil, apperror.Validation("quantity must be greater than zero")
	}

	var created *PurchaseOrder
	err := s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		sa, err := s.repo.GetAssociation(ctx, req.SupplierArticleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("supplier article %d not found", req.SupplierArticleID)
			}
			return apperror.Internal("failed to load supplier article", err)
		}
		if sa.Article == nil || sa.Supplier == nil {
			return apperror.Conflict("supplier article %d refers to an inactive article or supplier", sa.ID)
		}

		order := NewOrder(sa, req.Quantity, decimal.Zero, SourceManual, s.now())
		if err := s.repo.CreateOrder(ctx, order); err != nil {
			return apperror.Internal("failed to create purchase order", err)
		}
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// GetOrder retrieves an order by ID
func (s *Service) GetOrder(ctx context.Context, id uint) (*PurchaseOrder, error) {
	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, id)
	}
	return o, nil
}

// GetOrders retrieves orders matching filter, newest first
func (s *Service) GetOrders(ctx context.Context, filter Filter) ([]PurchaseOrder, error) {
	orders, err := s.repo.ListOrders(ctx, filter)
	if err != nil {
		return nil, apperror.Internal("failed to retrieve purchase orders", err)
	}
	return orders, nil
}

// UpdateOrder applies a quantity and/or state change.
//
// Pending orders accept quantity changes and moves to sent or cancelled.
// Sent orders only accept finalization, which stamps the receipt date and
// adds the quantity to the article's stock in the same transaction.
// Finalized and cancelled orders are immutable.
func (s *Service) UpdateOrder(ctx context.Context, id uint, req *UpdateOrderRequest) (*PurchaseOrder, error) {
	if req.Quantity == nil && req.State == nil {
		return nil, apperror.Validation("nothing to update")
	}
	if req.Quantity != nil && *req.Quantity <= 0 {
		return nil, apperror.Validation("quantity must be greater than zero")
	}
	if req.State != nil && !req.State.IsValid() {
		return nil, apperror.Validation("unknown order state %d", uint(*req.State))
	}

	var updated *PurchaseOrder
	err := s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		o, err := s.repo.LockOrder(ctx, id)
		if err != nil {
			return notFoundOr(err, id)
		}

		if o.StateID.IsTerminal() {
			return apperror.Conflict("purchase order %d is %s and can no longer be modified", id, o.StateID).
				WithDetail("state", o.StateID.String())
		}

		switch o.StateID {
		case StatePending:
			if req.Quantity != nil {
				o.SetQuantity(*req.Quantity)
			}
			if req.State != nil {
				if !o.StateID.CanTransitionTo(*req.State) {
					return transitionConflict(o, *req.State)
				}
				o.StateID = *req.State
			}

		case StateSent:
			if req.Quantity != nil {
				return apperror.Conflict("purchase order %d has been sent; its quantity can no longer change", id)
			}
			if !o.StateID.CanTransitionTo(*req.State) {
				return transitionConflict(o, *req.State)
			}
			now := s.now()
			o.StateID = StateFinalized
			o.ReceivedAt = &now
			if err := s.repo.IncrementStock(ctx, o.ArticleID, o.Quantity); err != nil {
				return apperror.Internal("failed to receive stock", err)
			}
		}

		if err := s.repo.SaveOrder(ctx, o); err != nil {
			return apperror.Internal("failed to update purchase order", err)
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// SendOrder moves a pending order to sent
func (s *Service) SendOrder(ctx context.Context, id uint) (*PurchaseOrder, error) {
	state := StateSent
	return s.UpdateOrder(ctx, id, &UpdateOrderRequest{State: &state})
}

// CancelOrder cancels a pending order
func (s *Service) CancelOrder(ctx context.Context, id uint) (*PurchaseOrder, error) {
	state := StateCancelled
	return s.UpdateOrder(ctx, id, &UpdateOrderRequest{State: &state})
}

// FinalizeOrder receives a sent order
func (s *Service) FinalizeOrder(ctx context.Context, id uint) (*PurchaseOrder, error) {
	state := StateFinalized
	return s.UpdateOrder(ctx, id, &UpdateOrderRequest{State: &state})
}

func transitionConflict(o *PurchaseOrder, target StateID) error {
	return apperror.Conflict("purchase order %d cannot move from %s to %s", o.ID, o.StateID, target).
		WithDetail("from", o.StateID.String()).
		WithDetail("to", target.String())
}

func notFoundOr(err error, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound("purchase order %d not found", id)
	}
	return apperror.Internal(fmt.Sprintf("failed to load purchase order %d", id), err)
}
