// internal/domain/article/service.go
package article

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/your-org/inventory-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// Repository is the storage the article service depends on
type Repository interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	CreateArticle(ctx context.Context, a *Article) error
	ListArticles(ctx context.Context) ([]Article, error)
	GetArticle(ctx context.Context, id uint) (*Article, error)
	LockArticle(ctx context.Context, id uint) (*Article, error)
	UpdateArticle(ctx context.Context, a *Article) error
	SoftDeleteArticle(ctx context.Context, id uint) error
	CountOpenOrdersForArticle(ctx context.Context, articleID uint) (int64, error)
}

// PolicyRecalculator refreshes the derived policy figures of an article's
// associations after its demand or cost inputs change
type PolicyRecalculator interface {
	RecalculateForArticle(ctx context.Context, articleID uint) error
}

// Service handles article business logic
type Service struct {
	repo         Repository
	recalculator PolicyRecalculator
}

// NewService creates a new article service
func NewService(repo Repository, recalculator PolicyRecalculator) *Service {
	return &Service{
		repo:         repo,
		recalculator: recalculator,
	}
}

// CreateArticleRequest represents article creation data
type CreateArticleRequest struct {
	Description  string   `json:"description" binding:"required,max=255"`
	AnnualDemand *float64 `json:"annual_demand" binding:"required,gte=0"`
	DemandStdDev *float64 `json:"demand_std_dev" binding:"required,gte=0"`
	HoldingCost  float64  `json:"holding_cost" binding:"gte=0"`
	Stock        int      `json:"stock" binding:"gte=0"`
	SalePrice    float64  `json:"sale_price" binding:"gte=0"`
}

// UpdateArticleRequest represents article update data
type UpdateArticleRequest struct {
	Description  *string  `json:"description" binding:"omitempty,max=255"`
	AnnualDemand *float64 `json:"annual_demand" binding:"omitempty,gte=0"`
	DemandStdDev *float64 `json:"demand_std_dev" binding:"omitempty,gte=0"`
	HoldingCost  *float64 `json:"holding_cost" binding:"omitempty,gte=0"`
	Stock        *int     `json:"stock" binding:"omitempty,gte=0"`
	SalePrice    *float64 `json:"sale_price" binding:"omitempty,gte=0"`
}

func (r *CreateArticleRequest) validate() error {
	if strings.TrimSpace(r.Description) == "" {
		return apperror.Validation("description is required")
	}
	if r.AnnualDemand != nil && *r.AnnualDemand < 0 {
		return apperror.Validation("annual_demand cannot be negative")
	}
	if r.DemandStdDev != nil && *r.DemandStdDev < 0 {
		return apperror.Validation("demand_std_dev cannot be negative")
	}
	if r.HoldingCost < 0 || r.SalePrice < 0 {
		return apperror.Validation("costs and prices cannot be negative")
	}
	if r.Stock < 0 {
		return apperror.Validation("stock cannot be negative")
	}
	return nil
}

// CreateArticle creates a new article
func (s *Service) CreateArticle(ctx context.Context, req *CreateArticleRequest) (*Article, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	a := &Article{
		Description:  strings.TrimSpace(req.Description),
		AnnualDemand: req.AnnualDemand,
		DemandStdDev: req.DemandStdDev,
		HoldingCost:  decimal.NewFromFloat(req.HoldingCost),
		Stock:        req.Stock,
		SalePrice:    decimal.NewFromFloat(req.SalePrice),
	}

	if err := s.repo.CreateArticle(ctx, a); err != nil {
		return nil, apperror.Internal("failed to create article", err)
	}

	return a, nil
}

// GetArticles retrieves all active articles
func (s *Service) GetArticles(ctx context.Context) ([]Article, error) {
	articles, err := s.repo.ListArticles(ctx)
	if err != nil {
		return nil, apperror.Internal("failed to retrieve articles", err)
	}
	return articles, nil
}

// GetArticle retrieves an active article by ID
func (s *Service) GetArticle(ctx context.Context, id uint) (*Article, error) {
	a, err := s.repo.GetArticle(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, id)
	}
	return a, nil
}

// UpdateArticle modifies an article. When demand, its deviation or the
// holding cost change, every association's policy figures are recomputed in
// the same transaction.
func (s *Service) UpdateArticle(ctx context.Context, id uint, req *UpdateArticleRequest) (*Article, error) {
	var updated *Article

	err := s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		a, err := s.repo.LockArticle(ctx, id)
		if err != nil {
			return notFoundOr(err, id)
		}

		recalculate := false

		if req.Description != nil {
			if strings.TrimSpace(*req.Description) == "" {
				return apperror.Validation("description cannot be empty")
			}
			a.Description = strings.TrimSpace(*req.Description)
		}
		if req.AnnualDemand != nil && !floatPtrEqual(a.AnnualDemand, req.AnnualDemand) {
			a.AnnualDemand = req.AnnualDemand
			recalculate = true
		}
		if req.DemandStdDev != nil && !floatPtrEqual(a.DemandStdDev, req.DemandStdDev) {
			a.DemandStdDev = req.DemandStdDev
			recalculate = true
		}
		if req.HoldingCost != nil {
			holding := decimal.NewFromFloat(*req.HoldingCost)
			if !holding.Equal(a.HoldingCost) {
				a.HoldingCost = holding
				recalculate = true
			}
		}
		if req.Stock != nil {
			if *req.Stock < 0 {
				return apperror.Validation("stock cannot be negative")
			}
			a.Stock = *req.Stock
		}
		if req.SalePrice != nil {
			a.SalePrice = decimal.NewFromFloat(*req.SalePrice)
		}

		if err := s.repo.UpdateArticle(ctx, a); err != nil {
			return apperror.Internal("failed to update article", err)
		}

		if recalculate && s.recalculator != nil {
			if err := s.recalculator.RecalculateForArticle(ctx, a.ID); err != nil {
				return err
			}
		}

		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteArticle soft-deletes an article that has no open purchase orders
func (s *Service) DeleteArticle(ctx context.Context, id uint) error {
	return s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.LockArticle(ctx, id); err != nil {
			return notFoundOr(err, id)
		}

		open, err := s.repo.CountOpenOrdersForArticle(ctx, id)
		if err != nil {
			return apperror.Internal("failed to check purchase orders", err)
		}
		if open > 0 {
			return apperror.Conflict("article %d has pending or sent purchase orders", id).
				WithDetail("article_id", id)
		}

		if err := s.repo.SoftDeleteArticle(ctx, id); err != nil {
			return apperror.Internal("failed to delete article", err)
		}
		return nil
	})
}

func notFoundOr(err error, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound("article %d not found", id)
	}
	return apperror.Internal(fmt.Sprintf("failed to load article %d", id), err)
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
