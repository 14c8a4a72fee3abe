// internal/domain/replenishment/job.go
package replenishment

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/inventory-backend/internal/domain/article"
	"github.com/your-org/inventory-backend/internal/domain/purchaseorder"
	"github.com/your-org/inventory-backend/internal/domain/supplierarticle"
	"github.com/your-org/inventory-backend/internal/pkg/stockmath"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const lockKey = "replenishment:periodic-review"

var (
	// ErrRunInProgress is returned when another run holds the job
	ErrRunInProgress = errors.New("replenishment run already in progress")
	// ErrLocked is returned by a Locker when the lock is held elsewhere
	ErrLocked = errors.New("lock held by another process")
)

// Repository is the storage the replenishment job depends on
type Repository interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	ListAssociations(ctx context.Context, filter supplierarticle.Filter) ([]supplierarticle.SupplierArticle, error)
	GetAssociation(ctx context.Context, id uint) (*supplierarticle.SupplierArticle, error)
	LockInventoryModel(ctx context.Context, id uint) (*supplierarticle.InventoryModel, error)
	LockArticle(ctx context.Context, id uint) (*article.Article, error)
	SumOpenOrderQuantity(ctx context.Context, articleID uint) (int, error)
	CreateOrder(ctx context.Context, o *purchaseorder.PurchaseOrder) error
	MarkReviewed(ctx context.Context, inventoryModelID uint, at time.Time) error
}

// Locker serializes runs across processes
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

// Outcome classifies what happened to one association during a run
type Outcome string

const (
	OutcomeOrdered  Outcome = "ordered"
	OutcomeReviewed Outcome = "reviewed"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeNotDue   Outcome = "not_due"
	OutcomeFailed   Outcome = "failed"
)

// Review is the result for a single association
type Review struct {
	AssociationID uint    `json:"supplier_article_id"`
	ArticleID     uint    `json:"article_id"`
	Outcome       Outcome `json:"outcome"`
	Position      int     `json:"inventory_position,omitempty"`
	Quantity      int     `json:"quantity,omitempty"`
	OrderID       uint    `json:"purchase_order_id,omitempty"`
	Reason        string  `json:"reason,omitempty"`
}

// Report summarizes a run
type Report struct {
	RunAt    time.Time `json:"run_at"`
	Scanned  int       `json:"scanned"`
	Ordered  int       `json:"ordered"`
	Reviewed int       `json:"reviewed"`
	Skipped  int       `json:"skipped"`
	Failed   int       `json:"failed"`
	Reviews  []Review  `json:"reviews"`
}

func (r *Report) add(review Review) {
	switch review.Outcome {
	case OutcomeOrdered:
		r.Ordered++
	case OutcomeReviewed:
		r.Reviewed++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	case OutcomeNotDue:
		return
	}
	r.Reviews = append(r.Reviews, review)
}

// Job runs the periodic review of fixed-interval associations
type Job struct {
	repo    Repository
	locker  Locker
	logger  logrus.FieldLogger
	workers int
	lockTTL time.Duration
	running atomic.Bool
}

// Option configures a Job
type Option func(*Job)

// WithLocker enables cross-process exclusion
func WithLocker(locker Locker, ttl time.Duration) Option {
	return func(j *Job) {
		j.locker = locker
		j.lockTTL = ttl
	}
}

// WithWorkers bounds how many associations are reviewed concurrently
func WithWorkers(n int) Option {
	return func(j *Job) {
		if n > 0 {
			j.workers = n
		}
	}
}

// NewJob creates a replenishment job
func NewJob(repo Repository, logger logrus.FieldLogger, opts ...Option) *Job {
	j := &Job{
		repo:    repo,
		logger:  logger,
		workers: 1,
		lockTTL: 10 * time.Minute,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Run reviews every default fixed-interval association whose review date has
// elapsed at now. Runs never overlap: a second call while one is active, in
// this process or another holding the lock, returns ErrRunInProgress.
func (j *Job) Run(ctx context.Context, now time.Time) (*Report, error) {
	if !j.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer j.running.Store(false)

	if j.locker != nil {
		release, err := j.locker.Acquire(ctx, lockKey, j.lockTTL)
		if err != nil {
			if errors.Is(err, ErrLocked) {
				return nil, ErrRunInProgress
			}
			return nil, err
		}
		defer func() {
			if err := release(context.Background()); err != nil {
				j.logger.WithError(err).Warn("Failed to release replenishment lock")
			}
		}()
	}

	associations, err := j.repo.ListAssociations(ctx, supplierarticle.Filter{
		Policy:      supplierarticle.PolicyFixedInterval,
		DefaultOnly: true,
	})
	if err != nil {
		return nil, err
	}

	report := &Report{RunAt: now, Reviews: make([]Review, 0)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.workers)

	for i := range associations {
		sa := associations[i]
		m := sa.InventoryModel
		if m == nil || m.ReviewPeriodDays == nil {
			continue
		}
		report.Scanned++
		if !m.ReviewDue(now) {
			continue
		}

		g.Go(func() error {
			review := j.review(gctx, &sa, now)
			mu.Lock()
			report.add(review)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	j.logger.WithFields(logrus.Fields{
		"scanned":  report.Scanned,
		"ordered":  report.Ordered,
		"reviewed": report.Reviewed,
		"skipped":  report.Skipped,
		"failed":   report.Failed,
	}).Info("Replenishment run completed")

	return report, nil
}

// review processes one due association in its own transaction
func (j *Job) review(ctx context.Context, sa *supplierarticle.SupplierArticle, now time.Time) Review {
	result := Review{AssociationID: sa.ID, ArticleID: sa.ArticleID}
	log := j.logger.WithFields(logrus.Fields{
		"supplier_article_id": sa.ID,
		"article_id":          sa.ArticleID,
	})

	if _, ok := stockmath.ZScore(sa.ServiceLevel); !ok {
		return j.skip(log, result, "unsupported service level")
	}
	if sa.Article == nil {
		return j.skip(log, result, "article is inactive")
	}
	if _, _, ok := sa.Article.DemandFigures(); !ok {
		return j.skip(log, result, "article is missing demand or its standard deviation")
	}

	err := j.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		// lock order is article, then inventory model, as in every association update
		art, err := j.repo.LockArticle(ctx, sa.ArticleID)
		if err != nil {
			return err
		}
		m, err := j.repo.LockInventoryModel(ctx, sa.InventoryModel.ID)
		if err != nil {
			return err
		}
		// another run may have reviewed it since the scan
		if !m.ReviewDue(now) {
			result.Outcome = OutcomeNotDue
			return nil
		}

		// order at the terms in force now, not at scan time
		current, err := j.repo.GetAssociation(ctx, sa.ID)
		if err != nil {
			return err
		}
		if current.Policy != supplierarticle.PolicyFixedInterval || !current.IsDefault || m.ReviewPeriodDays == nil {
			result.Outcome = OutcomeSkipped
			result.Reason = "association is no longer the default fixed-interval supplier"
			return nil
		}
		z, ok := stockmath.ZScore(current.ServiceLevel)
		if !ok {
			result.Outcome = OutcomeSkipped
			result.Reason = "unsupported service level"
			return nil
		}

		demand, stdDev, ok := art.DemandFigures()
		if !ok {
			result.Outcome = OutcomeSkipped
			result.Reason = "article is missing demand or its standard deviation"
			return nil
		}

		onOrder, err := j.repo.SumOpenOrderQuantity(ctx, art.ID)
		if err != nil {
			return err
		}
		position := art.Stock + onOrder

		raw := stockmath.ReplenishmentQuantity(
			stockmath.DailyDemand(demand),
			float64(*m.ReviewPeriodDays),
			float64(current.LeadTimeDays),
			z, stdDev,
			float64(position),
		)
		quantity := stockmath.OrderQuantity(raw)

		result.Position = position
		result.Quantity = quantity
		result.Outcome = OutcomeReviewed

		if quantity > 0 {
			order := purchaseorder.NewOrder(current, quantity, current.OrderCost, purchaseorder.SourcePeriodicReview, now)
			if err := j.repo.CreateOrder(ctx, order); err != nil {
				return err
			}
			result.OrderID = order.ID
			result.Outcome = OutcomeOrdered
		}

		return j.repo.MarkReviewed(ctx, m.ID, now)
	})

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return j.skip(log, result, "article or inventory model no longer exists")
	case err != nil:
		log.WithError(err).Error("Replenishment review failed")
		result.Outcome = OutcomeFailed
		result.Reason = err.Error()
		return result
	case result.Outcome == OutcomeSkipped:
		log.WithField("reason", result.Reason).Warn("Skipping replenishment review")
	case result.Outcome == OutcomeOrdered:
		log.WithFields(logrus.Fields{
			"purchase_order_id":  result.OrderID,
			"quantity":           result.Quantity,
			"inventory_position": result.Position,
		}).Info("Periodic review raised a purchase order")
	}

	return result
}

func (j *Job) skip(log logrus.FieldLogger, result Review, reason string) Review {
	log.WithField("reason", reason).Warn("Skipping replenishment review")
	result.Outcome = OutcomeSkipped
	result.Reason = reason
	return result
}
