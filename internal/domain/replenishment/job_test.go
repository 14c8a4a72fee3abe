package replenishment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/your-org/inventory-backend/internal/domain/article"
	"github.com/your-org/inventory-backend/internal/domain/purchaseorder"
	"github.com/your-org/inventory-backend/internal/domain/replenishment"
	"github.com/your-org/inventory-backend/internal/domain/supplierarticle"
	"github.com/your-org/inventory-backend/internal/infrastructure/database/memory"
	"github.com/your-org/inventory-backend/internal/testutil"
)

type fixture struct {
	store       *memory.Store
	articleID   uint
	association *supplierarticle.SupplierArticle
}

// setup seeds an article with 20 units and a default 30-day fixed-interval
// association last reviewed at testutil.Now. Its order-up-to level is 193.21.
func setup(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	art := testutil.SeedArticle(t, store, testutil.StandardArticle(20))
	sup := testutil.SeedSupplier(t, store, "ana@example.com")

	created, err := supplierarticle.NewService(store).WithClock(testutil.Clock(testutil.Now)).Create(context.Background(), &supplierarticle.CreateRequest{
		SupplierID:       sup.ID,
		ArticleID:        art.ID,
		UnitPrice:        10,
		OrderCost:        50,
		LeadTimeDays:     5,
		ServiceLevel:     95,
		Policy:           supplierarticle.PolicyFixedInterval,
		ReviewPeriodDays: testutil.Int(30),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return &fixture{store: store, articleID: art.ID, association: created.Association}
}

func (f *fixture) orders(t *testing.T) []purchaseorder.PurchaseOrder {
	t.Helper()
	list, err := f.store.ListOrders(context.Background(), purchaseorder.Filter{ArticleID: f.articleID})
	if err != nil {
		t.Fatalf("ListOrders() error = %v", err)
	}
	return list
}

func (f *fixture) lastReview(t *testing.T) time.Time {
	t.Helper()
	m, err := f.store.LockInventoryModel(context.Background(), f.association.InventoryModel.ID)
	if err != nil {
		t.Fatalf("LockInventoryModel() error = %v", err)
	}
	return *m.LastReviewAt
}

func TestRunNotDue(t *testing.T) {
	f := setup(t)
	job := replenishment.NewJob(f.store, testutil.Logger())

	report, err := job.Run(context.Background(), testutil.Now.AddDate(0, 0, 29))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Scanned != 1 || report.Ordered != 0 || len(report.Reviews) != 0 {
		t.Errorf("unexpected report: %+v", report)
	}
	if len(f.orders(t)) != 0 {
		t.Error("order raised before the review date")
	}
}

func TestRunRaisesOrderAndAdvancesReview(t *testing.T) {
	f := setup(t)
	job := replenishment.NewJob(f.store, testutil.Logger(), replenishment.WithWorkers(4))
	due := testutil.Now.AddDate(0, 0, 30)

	report, err := job.Run(context.Background(), due)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Ordered != 1 || len(report.Reviews) != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	review := report.Reviews[0]
	if review.Position != 20 || review.Quantity != 173 {
		t.Errorf("position, quantity = %d, %d; want 20, 173", review.Position, review.Quantity)
	}

	orders := f.orders(t)
	if len(orders) != 1 {
		t.Fatalf("got %d orders, want 1", len(orders))
	}
	o := orders[0]
	if o.Source != purchaseorder.SourcePeriodicReview || o.StateID != purchaseorder.StatePending {
		t.Errorf("source, state = %v, %v", o.Source, o.StateID)
	}
	// order cost 50 + 173 * 10
	if got := o.TotalAmount.StringFixed(2); got != "1780.00" {
		t.Errorf("TotalAmount = %s, want 1780.00", got)
	}
	if want := due.AddDate(0, 0, 5); !o.EstimatedReceiptAt.Equal(want) {
		t.Errorf("EstimatedReceiptAt = %v, want %v", o.EstimatedReceiptAt, want)
	}
	if got := f.lastReview(t); !got.Equal(due) {
		t.Errorf("LastReviewAt = %v, want %v", got, due)
	}

	// an immediate second run finds nothing due
	report, err = job.Run(context.Background(), due)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if report.Ordered != 0 || len(f.orders(t)) != 1 {
		t.Errorf("second run raised another order: %+v", report)
	}
}

// racingStore runs hook once, inside the job's transaction, right after the
// article lock is granted
type racingStore struct {
	*memory.Store
	hook func(ctx context.Context)
}

func (r *racingStore) LockArticle(ctx context.Context, id uint) (*article.Article, error) {
	a, err := r.Store.LockArticle(ctx, id)
	if err == nil && r.hook != nil {
		hook := r.hook
		r.hook = nil
		hook(ctx)
	}
	return a, err
}

func TestRunOrdersAtCurrentTerms(t *testing.T) {
	f := setup(t)
	racing := &racingStore{Store: f.store, hook: func(ctx context.Context) {
		sa, err := f.store.GetAssociation(ctx, f.association.ID)
		if err != nil {
			t.Errorf("GetAssociation() error = %v", err)
			return
		}
		sa.UnitPrice = decimal.NewFromInt(12)
		if err := f.store.SaveAssociation(ctx, sa); err != nil {
			t.Errorf("SaveAssociation() error = %v", err)
		}
	}}
	job := replenishment.NewJob(racing, testutil.Logger())

	report, err := job.Run(context.Background(), testutil.Now.AddDate(0, 0, 30))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Ordered != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	orders := f.orders(t)
	if len(orders) != 1 {
		t.Fatalf("got %d orders, want 1", len(orders))
	}
	// order cost 50 + 173 * 12, the price saved after the scan
	if got := orders[0].TotalAmount.StringFixed(2); got != "2126.00" {
		t.Errorf("TotalAmount = %s, want 2126.00", got)
	}
}

func TestRunCountsOpenOrders(t *testing.T) {
	f := setup(t)
	if _, err := purchaseorder.NewService(f.store).CreateOrder(context.Background(), &purchaseorder.CreateOrderRequest{
		SupplierArticleID: f.association.ID,
		Quantity:          100,
	}); err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	report, err := replenishment.NewJob(f.store, testutil.Logger()).Run(context.Background(), testutil.Now.AddDate(0, 0, 31))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.Reviews) != 1 || report.Reviews[0].Position != 120 || report.Reviews[0].Quantity != 73 {
		t.Errorf("unexpected reviews: %+v", report.Reviews)
	}
}

func TestRunAdvancesReviewWithoutOrder(t *testing.T) {
	f := setup(t)
	a, _ := f.store.GetArticle(context.Background(), f.articleID)
	a.Stock = 500
	if err := f.store.UpdateArticle(context.Background(), a); err != nil {
		t.Fatalf("UpdateArticle() error = %v", err)
	}

	due := testutil.Now.AddDate(0, 0, 30)
	report, err := replenishment.NewJob(f.store, testutil.Logger()).Run(context.Background(), due)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Reviewed != 1 || report.Ordered != 0 {
		t.Errorf("unexpected report: %+v", report)
	}
	if got := f.lastReview(t); !got.Equal(due) {
		t.Errorf("LastReviewAt = %v, want %v", got, due)
	}
}

func TestRunSkipsMissingDemand(t *testing.T) {
	f := setup(t)
	a, _ := f.store.GetArticle(context.Background(), f.articleID)
	a.DemandStdDev = nil
	if err := f.store.UpdateArticle(context.Background(), a); err != nil {
		t.Fatalf("UpdateArticle() error = %v", err)
	}

	report, err := replenishment.NewJob(f.store, testutil.Logger()).Run(context.Background(), testutil.Now.AddDate(0, 0, 30))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Skipped != 1 || report.Ordered != 0 {
		t.Errorf("unexpected report: %+v", report)
	}
	if got := f.lastReview(t); !got.Equal(testutil.Now) {
		t.Errorf("LastReviewAt = %v, want unchanged %v", got, testutil.Now)
	}
}

func TestRunIgnoresNonDefaultAssociations(t *testing.T) {
	f := setup(t)
	other := testutil.SeedSupplier(t, f.store, "other@example.com")

	// the new fixed-lot default displaces the interval association
	if _, err := supplierarticle.NewService(f.store).Create(context.Background(), &supplierarticle.CreateRequest{
		SupplierID:   other.ID,
		ArticleID:    f.articleID,
		UnitPrice:    10,
		OrderCost:    50,
		LeadTimeDays: 5,
		ServiceLevel: 95,
		Policy:       supplierarticle.PolicyFixedLot,
		IsDefault:    true,
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	report, err := replenishment.NewJob(f.store, testutil.Logger()).Run(context.Background(), testutil.Now.AddDate(0, 0, 60))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Scanned != 0 || len(f.orders(t)) != 0 {
		t.Errorf("non-default association was reviewed: %+v", report)
	}
}

type fakeLocker struct {
	err      error
	acquired int
	released int
}

func (l *fakeLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.acquired++
	return func(context.Context) error {
		l.released++
		return nil
	}, nil
}

func TestRunWithLocker(t *testing.T) {
	f := setup(t)

	held := &fakeLocker{err: replenishment.ErrLocked}
	_, err := replenishment.NewJob(f.store, testutil.Logger(), replenishment.WithLocker(held, time.Minute)).
		Run(context.Background(), testutil.Now.AddDate(0, 0, 30))
	if !errors.Is(err, replenishment.ErrRunInProgress) {
		t.Fatalf("err = %v, want ErrRunInProgress", err)
	}
	if len(f.orders(t)) != 0 {
		t.Error("locked run raised an order")
	}

	free := &fakeLocker{}
	if _, err := replenishment.NewJob(f.store, testutil.Logger(), replenishment.WithLocker(free, time.Minute)).
		Run(context.Background(), testutil.Now.AddDate(0, 0, 30)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if free.acquired != 1 || free.released != 1 {
		t.Errorf("acquired, released = %d, %d; want 1, 1", free.acquired, free.released)
	}

	broken := &fakeLocker{err: errors.New("redis down")}
	_, err = replenishment.NewJob(f.store, testutil.Logger(), replenishment.WithLocker(broken, time.Minute)).
		Run(context.Background(), testutil.Now)
	if err == nil || errors.Is(err, replenishment.ErrRunInProgress) {
		t.Errorf("err = %v, want the locker failure", err)
	}
}
