// internal/domain/supplierarticle/service.go
package supplierarticle

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/inventory-backend/internal/domain/article"
	"github.com/your-org/inventory-backend/internal/domain/supplier"
	"github.com/your-org/inventory-backend/internal/pkg/apperror"
	"github.com/your-org/inventory-backend/internal/pkg/stockmath"
	"gorm.io/gorm"
)

// Repository is the storage the association manager depends on
type Repository interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	GetArticle(ctx context.Context, id uint) (*article.Article, error)
	LockArticle(ctx context.Context, id uint) (*article.Article, error)
	GetSupplier(ctx context.Context, id uint) (*supplier.Supplier, error)
	GetAssociation(ctx context.Context, id uint) (*SupplierArticle, error)
	FindAssociation(ctx context.Context, supplierID, articleID uint) (*SupplierArticle, error)
	DefaultAssociation(ctx context.Context, articleID uint) (*SupplierArticle, error)
	ListAssociations(ctx context.Context, filter Filter) ([]SupplierArticle, error)
	CreateAssociation(ctx context.Context, sa *SupplierArticle) error
	SaveAssociation(ctx context.Context, sa *SupplierArticle) error
	DemoteDefaults(ctx context.Context, articleID, keepID uint) error
	DeleteAssociation(ctx context.Context, id uint) error
	CountAssociationsForSupplier(ctx context.Context, supplierID uint) (int64, error)
	CountOpenOrdersForAssociation(ctx context.Context, id uint) (int64, error)
	CountOpenOrdersForArticle(ctx context.Context, articleID uint) (int64, error)
}

// Service keeps associations and their inventory models consistent
type Service struct {
	repo                Repository
	now                 func() time.Time
	defaultServiceLevel int
}

// NewService creates a new association manager
func NewService(repo Repository) *Service {
	return &Service{
		repo:                repo,
		now:                 time.Now,
		defaultServiceLevel: 95,
	}
}

// WithClock replaces the time source, used by tests
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithDefaultServiceLevel sets the service level used when a request omits one
func (s *Service) WithDefaultServiceLevel(level int) *Service {
	if _, ok := stockmath.ZScore(level); ok {
		s.defaultServiceLevel = level
	}
	return s
}

// CreateRequest represents association creation data
type CreateRequest struct {
	SupplierID       uint    `json:"supplier_id" binding:"required"`
	ArticleID        uint    `json:"article_id" binding:"required"`
	UnitPrice        float64 `json:"unit_price" binding:"gte=0"`
	OrderCost        float64 `json:"order_cost" binding:"gte=0"`
	LeadTimeDays     int     `json:"lead_time_days" binding:"gte=0"`
	ServiceLevel     int     `json:"service_level" binding:"omitempty,service_level"`
	Policy           Policy  `json:"policy" binding:"required,policy"`
	ReviewPeriodDays *int    `json:"review_period_days" binding:"omitempty,gt=0"`
	IsDefault        bool    `json:"is_default"`
}

// UpdateRequest represents association update data. ReplacementDefaultID
// names the association promoted when the current default is unset.
type UpdateRequest struct {
	UnitPrice            *float64 `json:"unit_price" binding:"omitempty,gte=0"`
	OrderCost            *float64 `json:"order_cost" binding:"omitempty,gte=0"`
	LeadTimeDays         *int     `json:"lead_time_days" binding:"omitempty,gte=0"`
	ServiceLevel         *int     `json:"service_level" binding:"omitempty,service_level"`
	Policy               *Policy  `json:"policy" binding:"omitempty,policy"`
	ReviewPeriodDays     *int     `json:"review_period_days" binding:"omitempty,gt=0"`
	IsDefault            *bool    `json:"is_default"`
	ReplacementDefaultID *uint    `json:"replacement_default_id"`
}

// CreateResult reports the created association and whether the default flag was forced
type CreateResult struct {
	Association   *SupplierArticle `json:"association"`
	DefaultForced bool             `json:"default_forced"`
}

func (r *CreateRequest) validate() error {
	if r.UnitPrice < 0 || r.OrderCost < 0 {
		return apperror.Validation("unit_price and order_cost cannot be negative")
	}
	if r.LeadTimeDays < 0 {
		return apperror.Validation("lead_time_days cannot be negative")
	}
	if !r.Policy.IsValid() {
		return apperror.Validation("unknown policy %q", r.Policy)
	}
	if _, ok := stockmath.ZScore(r.ServiceLevel); !ok {
		return apperror.Validation("unsupported service level %d", r.ServiceLevel).
			WithDetail("supported", stockmath.ServiceLevels())
	}
	if r.Policy == PolicyFixedInterval && (r.ReviewPeriodDays == nil || *r.ReviewPeriodDays <= 0) {
		return apperror.Validation("review_period_days is required for the fixed_interval policy")
	}
	return nil
}

// Create adds an association. The first association of an article always
// becomes its default; DefaultForced tells the caller when that overrode the request.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*CreateResult, error) {
	var result *CreateResult

	err := s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		r, err := s.create(ctx, req)
		result = r
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// CreateForSupplier creates the initial associations of a new supplier. It
// runs inside the caller's transaction.
func (s *Service) CreateForSupplier(ctx context.Context, supplierID uint, inputs []supplier.AssociationInput) error {
	for _, in := range inputs {
		req := &CreateRequest{
			SupplierID:       supplierID,
			ArticleID:        in.ArticleID,
			UnitPrice:        in.UnitPrice,
			OrderCost:        in.OrderCost,
			LeadTimeDays:     in.LeadTimeDays,
			ServiceLevel:     in.ServiceLevel,
			Policy:           Policy(in.Policy),
			ReviewPeriodDays: in.ReviewPeriodDays,
			IsDefault:        in.IsDefault,
		}
		if _, err := s.create(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) create(ctx context.Context, req *CreateRequest) (*CreateResult, error) {
	if req.ServiceLevel == 0 {
		req.ServiceLevel = s.defaultServiceLevel
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	art, err := s.repo.LockArticle(ctx, req.ArticleID)
	if err != nil {
		return nil, notFoundOr(err, "article", req.ArticleID)
	}

	sup, err := s.repo.GetSupplier(ctx, req.SupplierID)
	if err != nil {
		return nil, notFoundOr(err, "supplier", req.SupplierID)
	}

	if _, err := s.repo.FindAssociation(ctx, req.SupplierID, req.ArticleID); err == nil {
		return nil, apperror.Conflict("supplier %d already supplies article %d", req.SupplierID, req.ArticleID)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Internal("failed to check existing association", err)
	}

	hasDefault := true
	if _, err := s.repo.DefaultAssociation(ctx, req.ArticleID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Internal("failed to load default association", err)
		}
		hasDefault = false
	}

	sa := &SupplierArticle{
		SupplierID:     req.SupplierID,
		ArticleID:      req.ArticleID,
		UnitPrice:      decimal.NewFromFloat(req.UnitPrice),
		OrderCost:      decimal.NewFromFloat(req.OrderCost),
		LeadTimeDays:   req.LeadTimeDays,
		ServiceLevel:   req.ServiceLevel,
		Policy:         req.Policy,
		IsDefault:      req.IsDefault || !hasDefault,
		InventoryModel: &InventoryModel{},
	}

	if err := s.applyPolicy(art, sa, req.ReviewPeriodDays); err != nil {
		return nil, err
	}

	if sa.IsDefault && hasDefault {
		if err := s.repo.DemoteDefaults(ctx, req.ArticleID, 0); err != nil {
			return nil, apperror.Internal("failed to demote default association", err)
		}
	}

	if err := s.repo.CreateAssociation(ctx, sa); err != nil {
		return nil, apperror.Internal("failed to create association", err)
	}

	sa.Article = art
	sa.Supplier = sup

	return &CreateResult{
		Association:   sa,
		DefaultForced: !hasDefault && !req.IsDefault,
	}, nil
}

// Get retrieves an association with its article, supplier and inventory model
func (s *Service) Get(ctx context.Context, id uint) (*SupplierArticle, error) {
	sa, err := s.repo.GetAssociation(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "supplier article", id)
	}
	return sa, nil
}

// List retrieves associations matching filter
func (s *Service) List(ctx context.Context, filter Filter) ([]SupplierArticle, error) {
	list, err := s.repo.ListAssociations(ctx, filter)
	if err != nil {
		return nil, apperror.Internal("failed to retrieve associations", err)
	}
	return list, nil
}

// Update modifies an association. Policy figures are recomputed only when a
// causal input changed; purchase cost always follows the unit price.
func (s *Service) Update(ctx context.Context, id uint, req *UpdateRequest) (*SupplierArticle, error) {
	var updated *SupplierArticle

	err := s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetAssociation(ctx, id)
		if err != nil {
			return notFoundOr(err, "supplier article", id)
		}

		art, err := s.repo.LockArticle(ctx, current.ArticleID)
		if err != nil {
			return notFoundOr(err, "article", current.ArticleID)
		}

		// writers of an association and its model hold the article lock, so
		// this read sees every change committed before ours
		sa, err := s.repo.GetAssociation(ctx, id)
		if err != nil {
			return notFoundOr(err, "supplier article", id)
		}

		if err := s.applyDefaultChange(ctx, sa, req); err != nil {
			return err
		}

		causal := false
		if req.OrderCost != nil {
			if *req.OrderCost < 0 {
				return apperror.Validation("order_cost cannot be negative")
			}
			cost := decimal.NewFromFloat(*req.OrderCost)
			if !cost.Equal(sa.OrderCost) {
				sa.OrderCost = cost
				causal = true
			}
		}
		if req.LeadTimeDays != nil && *req.LeadTimeDays != sa.LeadTimeDays {
			if *req.LeadTimeDays < 0 {
				return apperror.Validation("lead_time_days cannot be negative")
			}
			sa.LeadTimeDays = *req.LeadTimeDays
			causal = true
		}
		if req.ServiceLevel != nil && *req.ServiceLevel != sa.ServiceLevel {
			if _, ok := stockmath.ZScore(*req.ServiceLevel); !ok {
				return apperror.Validation("unsupported service level %d", *req.ServiceLevel).
					WithDetail("supported", stockmath.ServiceLevels())
			}
			sa.ServiceLevel = *req.ServiceLevel
			causal = true
		}
		if req.Policy != nil && *req.Policy != sa.Policy {
			if !req.Policy.IsValid() {
				return apperror.Validation("unknown policy %q", *req.Policy)
			}
			sa.Policy = *req.Policy
			causal = true
		}

		if sa.InventoryModel == nil {
			sa.InventoryModel = &InventoryModel{SupplierArticleID: sa.ID}
			causal = true
		}

		reviewPeriod := sa.InventoryModel.ReviewPeriodDays
		if req.ReviewPeriodDays != nil {
			if *req.ReviewPeriodDays <= 0 {
				return apperror.Validation("review_period_days must be greater than zero")
			}
			if reviewPeriod == nil || *reviewPeriod != *req.ReviewPeriodDays {
				causal = true
			}
			reviewPeriod = req.ReviewPeriodDays
		}

		priceChanged := false
		if req.UnitPrice != nil {
			if *req.UnitPrice < 0 {
				return apperror.Validation("unit_price cannot be negative")
			}
			price := decimal.NewFromFloat(*req.UnitPrice)
			priceChanged = !price.Equal(sa.UnitPrice)
			sa.UnitPrice = price
		}

		switch {
		case causal:
			if err := s.applyPolicy(art, sa, reviewPeriod); err != nil {
				return err
			}
		case priceChanged:
			if err := s.applyCost(art, sa); err != nil {
				return err
			}
		default:
			sa.PurchaseCost = purchaseCost(art, sa)
		}

		if err := s.repo.SaveAssociation(ctx, sa); err != nil {
			return apperror.Internal("failed to update association", err)
		}

		sa.Article = art
		updated = sa
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// applyDefaultChange enforces the single-default rule for an update
func (s *Service) applyDefaultChange(ctx context.Context, sa *SupplierArticle, req *UpdateRequest) error {
	if req.IsDefault == nil || *req.IsDefault == sa.IsDefault {
		return nil
	}

	if *req.IsDefault {
		if err := s.repo.DemoteDefaults(ctx, sa.ArticleID, sa.ID); err != nil {
			return apperror.Internal("failed to demote default association", err)
		}
		sa.IsDefault = true
		return nil
	}

	if req.ReplacementDefaultID == nil {
		return apperror.Conflict("association %d is the default for article %d; name a replacement_default_id to unset it", sa.ID, sa.ArticleID)
	}

	replacement, err := s.repo.GetAssociation(ctx, *req.ReplacementDefaultID)
	if err != nil {
		return notFoundOr(err, "supplier article", *req.ReplacementDefaultID)
	}
	if replacement.ID == sa.ID || replacement.ArticleID != sa.ArticleID {
		return apperror.Validation("replacement_default_id must be another association of article %d", sa.ArticleID)
	}
	if replacement.Supplier == nil {
		return apperror.Conflict("supplier of association %d is inactive", replacement.ID)
	}

	if err := s.repo.DemoteDefaults(ctx, sa.ArticleID, replacement.ID); err != nil {
		return apperror.Internal("failed to demote default association", err)
	}
	replacement.IsDefault = true
	if err := s.repo.SaveAssociation(ctx, replacement); err != nil {
		return apperror.Internal("failed to promote replacement association", err)
	}
	sa.IsDefault = false
	return nil
}

// Delete removes an association and its inventory model
func (s *Service) Delete(ctx context.Context, id uint) error {
	return s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetAssociation(ctx, id)
		if err != nil {
			return notFoundOr(err, "supplier article", id)
		}
		// a soft-deleted article has no other writers left to order against
		if _, err := s.repo.LockArticle(ctx, current.ArticleID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.Internal("failed to lock article", err)
		}
		// the default flag may have moved before the lock was granted
		sa, err := s.repo.GetAssociation(ctx, id)
		if err != nil {
			return notFoundOr(err, "supplier article", id)
		}

		count, err := s.repo.CountAssociationsForSupplier(ctx, sa.SupplierID)
		if err != nil {
			return apperror.Internal("failed to count supplier associations", err)
		}
		if count <= 1 {
			return apperror.Conflict("association %d is the last one of supplier %d", id, sa.SupplierID)
		}

		if sa.IsDefault {
			return apperror.Conflict("association %d is the default for article %d", id, sa.ArticleID)
		}

		open, err := s.repo.CountOpenOrdersForAssociation(ctx, id)
		if err != nil {
			return apperror.Internal("failed to check purchase orders", err)
		}
		if open > 0 {
			return apperror.Conflict("association %d has pending or sent purchase orders", id)
		}

		if err := s.repo.DeleteAssociation(ctx, id); err != nil {
			return apperror.Internal("failed to delete association", err)
		}
		return nil
	})
}

// RecalculateForArticle recomputes every association of an article. It joins
// the caller's transaction when there is one.
func (s *Service) RecalculateForArticle(ctx context.Context, articleID uint) error {
	return s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		art, err := s.repo.LockArticle(ctx, articleID)
		if err != nil {
			return notFoundOr(err, "article", articleID)
		}

		list, err := s.repo.ListAssociations(ctx, Filter{ArticleID: articleID, IncludeInactive: true})
		if err != nil {
			return apperror.Internal("failed to load associations", err)
		}

		for i := range list {
			sa := &list[i]
			if sa.InventoryModel == nil {
				sa.InventoryModel = &InventoryModel{SupplierArticleID: sa.ID}
			}
			if err := s.applyPolicy(art, sa, sa.InventoryModel.ReviewPeriodDays); err != nil {
				return err
			}
			if err := s.repo.SaveAssociation(ctx, sa); err != nil {
				return apperror.Internal("failed to update association", err)
			}
		}
		return nil
	})
}

// ReorderCandidates lists default fixed-lot articles whose stock is under the
// reorder point and that have nothing on order
func (s *Service) ReorderCandidates(ctx context.Context) ([]ReorderCandidate, error) {
	list, err := s.repo.ListAssociations(ctx, Filter{Policy: PolicyFixedLot, DefaultOnly: true})
	if err != nil {
		return nil, apperror.Internal("failed to load associations", err)
	}

	candidates := make([]ReorderCandidate, 0)
	for _, sa := range list {
		m := sa.InventoryModel
		if sa.Article == nil || m == nil || m.ReorderPoint == nil {
			continue
		}
		if sa.Article.Stock >= *m.ReorderPoint {
			continue
		}

		open, err := s.repo.CountOpenOrdersForArticle(ctx, sa.ArticleID)
		if err != nil {
			return nil, apperror.Internal("failed to check purchase orders", err)
		}
		if open > 0 {
			continue
		}

		c := ReorderCandidate{
			AssociationID: sa.ID,
			ArticleID:     sa.ArticleID,
			Description:   sa.Article.Description,
			SupplierID:    sa.SupplierID,
			Stock:         sa.Article.Stock,
			ReorderPoint:  *m.ReorderPoint,
		}
		if m.OptimalLot != nil {
			c.OptimalLot = *m.OptimalLot
		}
		if sa.Supplier != nil {
			c.SupplierName = sa.Supplier.FullName()
		}
		candidates = append(candidates, c)
	}

	return candidates, nil
}

// BelowSafetyStock lists articles whose stock is under the safety stock of
// their default association, whatever the policy
func (s *Service) BelowSafetyStock(ctx context.Context) ([]SafetyStockAlert, error) {
	list, err := s.repo.ListAssociations(ctx, Filter{DefaultOnly: true})
	if err != nil {
		return nil, apperror.Internal("failed to load associations", err)
	}

	alerts := make([]SafetyStockAlert, 0)
	for _, sa := range list {
		m := sa.InventoryModel
		if sa.Article == nil || m == nil || m.SafetyStock == nil {
			continue
		}
		if float64(sa.Article.Stock) >= *m.SafetyStock {
			continue
		}
		alerts = append(alerts, SafetyStockAlert{
			AssociationID: sa.ID,
			ArticleID:     sa.ArticleID,
			Description:   sa.Article.Description,
			SupplierID:    sa.SupplierID,
			Policy:        sa.Policy,
			Stock:         sa.Article.Stock,
			SafetyStock:   *m.SafetyStock,
		})
	}

	return alerts, nil
}

// CostReport recomputes the CGI of every active supplier of an article from
// current data, cheapest first. Stored CGI values are reported alongside.
func (s *Service) CostReport(ctx context.Context, articleID uint) ([]SupplierCost, error) {
	art, err := s.repo.GetArticle(ctx, articleID)
	if err != nil {
		return nil, notFoundOr(err, "article", articleID)
	}

	list, err := s.repo.ListAssociations(ctx, Filter{ArticleID: articleID})
	if err != nil {
		return nil, apperror.Internal("failed to load associations", err)
	}

	report := make([]SupplierCost, 0, len(list))
	for i := range list {
		sa := &list[i]
		if sa.Supplier == nil {
			continue
		}

		breakdown, lot, err := costBreakdown(art, sa)
		if err != nil {
			return nil, err
		}
		breakdown = breakdown.Rounded()

		row := SupplierCost{
			AssociationID: sa.ID,
			SupplierID:    sa.SupplierID,
			SupplierName:  sa.Supplier.FullName(),
			Policy:        sa.Policy,
			IsDefault:     sa.IsDefault,
			HoldingCost:   breakdown.Holding,
			OrderingCost:  breakdown.Ordering,
			PurchaseCost:  breakdown.Purchase,
			TotalCost:     breakdown.Total,
			StoredCost:    sa.TotalInventoryCost.InexactFloat64(),
		}
		if sa.Policy == PolicyFixedLot {
			row.OptimalLot = &lot
		} else if sa.InventoryModel != nil {
			row.ReviewPeriodDays = sa.InventoryModel.ReviewPeriodDays
		}
		report = append(report, row)
	}

	sort.SliceStable(report, func(i, j int) bool {
		return report[i].TotalCost < report[j].TotalCost
	})

	return report, nil
}

// applyPolicy recomputes the inventory model for the selected policy, then purchase cost and CGI
func (s *Service) applyPolicy(art *article.Article, sa *SupplierArticle, reviewPeriod *int) error {
	demand, stdDev, ok := art.DemandFigures()
	if !ok {
		return apperror.Conflict("article %d has no demand figures", art.ID).WithDetail("article_id", art.ID)
	}
	z, ok := stockmath.ZScore(sa.ServiceLevel)
	if !ok {
		return apperror.Validation("unsupported service level %d", sa.ServiceLevel)
	}

	if sa.InventoryModel == nil {
		sa.InventoryModel = &InventoryModel{SupplierArticleID: sa.ID}
	}
	m := sa.InventoryModel
	lead := float64(sa.LeadTimeDays)

	switch sa.Policy {
	case PolicyFixedLot:
		lot, err := stockmath.EOQAndReorderPoint(demand, sa.OrderCost.InexactFloat64(), art.HoldingCost.InexactFloat64(), lead)
		if err != nil {
			return mathConflict(err, art.ID)
		}
		safety := stockmath.RoundUnits(stockmath.SafetyStockFixedLot(z, stdDev, lead))
		m.SetFixedLot(lot.Q, lot.R, safety)

	case PolicyFixedInterval:
		if reviewPeriod == nil || *reviewPeriod <= 0 {
			return apperror.Validation("review_period_days is required for the fixed_interval policy")
		}
		period := float64(*reviewPeriod)
		safety := stockmath.RoundUnits(stockmath.SafetyStockFixedInterval(period, lead, z, stdDev))
		maxInventory := stockmath.RoundUnits(stockmath.MaxInventory(stockmath.DailyDemand(demand), period, lead, z, stdDev))
		m.SetFixedInterval(*reviewPeriod, s.now(), safety, maxInventory)

	default:
		return apperror.Validation("unknown policy %q", sa.Policy)
	}

	return s.applyCost(art, sa)
}

// applyCost refreshes purchase cost and CGI from the stored model
func (s *Service) applyCost(art *article.Article, sa *SupplierArticle) error {
	sa.PurchaseCost = purchaseCost(art, sa)

	breakdown, _, err := costBreakdown(art, sa)
	if err != nil {
		return err
	}
	sa.TotalInventoryCost = stockmath.Money(breakdown.Total)
	return nil
}

func purchaseCost(art *article.Article, sa *SupplierArticle) decimal.Decimal {
	demand, _, _ := art.DemandFigures()
	return stockmath.Money(stockmath.PurchaseCost(sa.UnitPrice.InexactFloat64(), demand))
}

// costBreakdown computes the CGI components from current article and
// association data. For fixed-lot it also returns the lot size used.
func costBreakdown(art *article.Article, sa *SupplierArticle) (stockmath.CostBreakdown, int, error) {
	demand, _, ok := art.DemandFigures()
	if !ok {
		return stockmath.CostBreakdown{}, 0, apperror.Conflict("article %d has no demand figures", art.ID)
	}
	holding := art.HoldingCost.InexactFloat64()
	orderCost := sa.OrderCost.InexactFloat64()
	unitPrice := sa.UnitPrice.InexactFloat64()

	switch sa.Policy {
	case PolicyFixedLot:
		lot, err := stockmath.EOQAndReorderPoint(demand, orderCost, holding, float64(sa.LeadTimeDays))
		if err != nil {
			return stockmath.CostBreakdown{}, 0, mathConflict(err, art.ID)
		}
		c, err := stockmath.FixedLotCost(demand, lot.Q, holding, orderCost, unitPrice)
		if err != nil {
			return stockmath.CostBreakdown{}, 0, mathConflict(err, art.ID)
		}
		return c, lot.Q, nil

	case PolicyFixedInterval:
		if sa.InventoryModel == nil || sa.InventoryModel.ReviewPeriodDays == nil {
			return stockmath.CostBreakdown{}, 0, apperror.Conflict("association %d has no review period", sa.ID)
		}
		c, err := stockmath.FixedIntervalCost(demand, float64(*sa.InventoryModel.ReviewPeriodDays), holding, orderCost, unitPrice)
		if err != nil {
			return stockmath.CostBreakdown{}, 0, mathConflict(err, art.ID)
		}
		return c, 0, nil
	}

	return stockmath.CostBreakdown{}, 0, apperror.Validation("unknown policy %q", sa.Policy)
}

func mathConflict(err error, articleID uint) error {
	switch {
	case errors.Is(err, stockmath.ErrZeroHoldingCost):
		return apperror.Conflict("article %d has a zero holding cost; the optimal lot is undefined", articleID).
			WithDetail("article_id", articleID)
	case errors.Is(err, stockmath.ErrZeroLotSize):
		return apperror.Conflict("optimal lot for article %d is zero; check demand and order cost", articleID).
			WithDetail("article_id", articleID)
	case errors.Is(err, stockmath.ErrZeroReviewPeriod):
		return apperror.Conflict("review period must be greater than zero")
	}
	return apperror.Internal("failed to compute inventory policy", err)
}

func notFoundOr(err error, entity string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound("%s %d not found", entity, id)
	}
	return apperror.Internal(fmt.Sprintf("failed to load %s %d", entity, id), err)
}
