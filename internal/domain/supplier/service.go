// internal/domain/supplier/service.go
package supplier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/your-org/inventory-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// Repository is the storage the supplier service depends on
type Repository interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	CreateSupplier(ctx context.Context, s *Supplier) error
	ListSuppliers(ctx context.Context) ([]Supplier, error)
	GetSupplier(ctx context.Context, id uint) (*Supplier, error)
	UpdateSupplier(ctx context.Context, s *Supplier) error
	SoftDeleteSupplier(ctx context.Context, id uint) error
	SupplierEmailTaken(ctx context.Context, email string, excludeID uint) (bool, error)
	CountDefaultAssociationsForSupplier(ctx context.Context, supplierID uint) (int64, error)
	CountOpenOrdersForSupplier(ctx context.Context, supplierID uint) (int64, error)
}

// AssociationInput describes an article the new supplier provides
type AssociationInput struct {
	ArticleID        uint    `json:"article_id" binding:"required"`
	UnitPrice        float64 `json:"unit_price" binding:"gte=0"`
	OrderCost        float64 `json:"order_cost" binding:"gte=0"`
	LeadTimeDays     int     `json:"lead_time_days" binding:"gte=0"`
	ServiceLevel     int     `json:"service_level" binding:"omitempty,service_level"`
	Policy           string  `json:"policy" binding:"required,policy"`
	ReviewPeriodDays *int    `json:"review_period_days" binding:"omitempty,gt=0"`
	IsDefault        bool    `json:"is_default"`
}

// AssociationCreator creates supplier-article associations inside the caller's transaction
type AssociationCreator interface {
	CreateForSupplier(ctx context.Context, supplierID uint, inputs []AssociationInput) error
}

// Service handles supplier business logic
type Service struct {
	repo         Repository
	associations AssociationCreator
}

// NewService creates a new supplier service
func NewService(repo Repository, associations AssociationCreator) *Service {
	return &Service{
		repo:         repo,
		associations: associations,
	}
}

// CreateSupplierRequest represents supplier creation data
type CreateSupplierRequest struct {
	FirstName string             `json:"first_name" binding:"required,max=100"`
	LastName  string             `json:"last_name" binding:"max=100"`
	Email     string             `json:"email" binding:"required,email"`
	Phone     string             `json:"phone" binding:"max=30"`
	Articles  []AssociationInput `json:"articles" binding:"omitempty,dive"`
}

// UpdateSupplierRequest represents supplier update data
type UpdateSupplierRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,max=100"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Phone     *string `json:"phone" binding:"omitempty,max=30"`
}

// CreateSupplier creates a supplier together with its initial associations
func (s *Service) CreateSupplier(ctx context.Context, req *CreateSupplierRequest) (*Supplier, error) {
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.Email) == "" {
		return nil, apperror.Validation("first_name and email are required")
	}
	if len(req.Articles) > 0 && s.associations == nil {
		return nil, apperror.Internal("failed to create supplier", errors.New("association creator not configured"))
	}

	created := &Supplier{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     normalizeEmail(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
	}

	err := s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.ensureEmailFree(ctx, created.Email, 0); err != nil {
			return err
		}

		if err := s.repo.CreateSupplier(ctx, created); err != nil {
			return apperror.Internal("failed to create supplier", err)
		}

		if len(req.Articles) > 0 {
			return s.associations.CreateForSupplier(ctx, created.ID, req.Articles)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// GetSuppliers retrieves all active suppliers
func (s *Service) GetSuppliers(ctx context.Context) ([]Supplier, error) {
	suppliers, err := s.repo.ListSuppliers(ctx)
	if err != nil {
		return nil, apperror.Internal("failed to retrieve suppliers", err)
	}
	return suppliers, nil
}

// GetSupplier retrieves an active supplier by ID
func (s *Service) GetSupplier(ctx context.Context, id uint) (*Supplier, error) {
	sup, err := s.repo.GetSupplier(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, id)
	}
	return sup, nil
}

// UpdateSupplier modifies the contact fields of a supplier
func (s *Service) UpdateSupplier(ctx context.Context, id uint, req *UpdateSupplierRequest) (*Supplier, error) {
	var updated *Supplier

	err := s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		sup, err := s.repo.GetSupplier(ctx, id)
		if err != nil {
			return notFoundOr(err, id)
		}

		if req.FirstName != nil {
			if strings.TrimSpace(*req.FirstName) == "" {
				return apperror.Validation("first_name cannot be empty")
			}
			sup.FirstName = strings.TrimSpace(*req.FirstName)
		}
		if req.LastName != nil {
			sup.LastName = strings.TrimSpace(*req.LastName)
		}
		if req.Phone != nil {
			sup.Phone = strings.TrimSpace(*req.Phone)
		}
		if req.Email != nil {
			email := normalizeEmail(*req.Email)
			if email != sup.Email {
				if err := s.ensureEmailFree(ctx, email, sup.ID); err != nil {
					return err
				}
				sup.Email = email
			}
		}

		if err := s.repo.UpdateSupplier(ctx, sup); err != nil {
			return apperror.Internal("failed to update supplier", err)
		}
		updated = sup
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteSupplier soft-deletes a supplier that is nobody's default and has no open orders
func (s *Service) DeleteSupplier(ctx context.Context, id uint) error {
	return s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetSupplier(ctx, id); err != nil {
			return notFoundOr(err, id)
		}

		defaults, err := s.repo.CountDefaultAssociationsForSupplier(ctx, id)
		if err != nil {
			return apperror.Internal("failed to check default associations", err)
		}
		if defaults > 0 {
			return apperror.Conflict("supplier %d is the default supplier of %d article(s)", id, defaults).
				WithDetail("supplier_id", id)
		}

		open, err := s.repo.CountOpenOrdersForSupplier(ctx, id)
		if err != nil {
			return apperror.Internal("failed to check purchase orders", err)
		}
		if open > 0 {
			return apperror.Conflict("supplier %d has pending or sent purchase orders", id).
				WithDetail("supplier_id", id)
		}

		if err := s.repo.SoftDeleteSupplier(ctx, id); err != nil {
			return apperror.Internal("failed to delete supplier", err)
		}
		return nil
	})
}

func (s *Service) ensureEmailFree(ctx context.Context, email string, excludeID uint) error {
	taken, err := s.repo.SupplierEmailTaken(ctx, email, excludeID)
	if err != nil {
		return apperror.Internal("failed to check supplier email", err)
	}
	if taken {
		return apperror.Conflict("email %s is already in use", email).WithDetail("email", email)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func notFoundOr(err error, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound("supplier %d not found", id)
	}
	return apperror.Internal(fmt.Sprintf("failed to load supplier %d", id), err)
}
