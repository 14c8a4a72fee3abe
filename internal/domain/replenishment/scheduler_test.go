package replenishment

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/inventory-backend/internal/domain/article"
	"github.com/your-org/inventory-backend/internal/domain/purchaseorder"
	"github.com/your-org/inventory-backend/internal/domain/supplierarticle"
)

// countingRepo has nothing to review and counts scans
type countingRepo struct {
	scans atomic.Int32
}

func (r *countingRepo) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (r *countingRepo) ListAssociations(ctx context.Context, filter supplierarticle.Filter) ([]supplierarticle.SupplierArticle, error) {
	r.scans.Add(1)
	return nil, nil
}

func (r *countingRepo) GetAssociation(ctx context.Context, id uint) (*supplierarticle.SupplierArticle, error) {
	return nil, nil
}

func (r *countingRepo) LockInventoryModel(ctx context.Context, id uint) (*supplierarticle.InventoryModel, error) {
	return nil, nil
}

func (r *countingRepo) LockArticle(ctx context.Context, id uint) (*article.Article, error) {
	return nil, nil
}

func (r *countingRepo) SumOpenOrderQuantity(ctx context.Context, articleID uint) (int, error) {
	return 0, nil
}

func (r *countingRepo) CreateOrder(ctx context.Context, o *purchaseorder.PurchaseOrder) error {
	return nil
}

func (r *countingRepo) MarkReviewed(ctx context.Context, inventoryModelID uint, at time.Time) error {
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestNewSchedulerSpec(t *testing.T) {
	job := NewJob(&countingRepo{}, quietLogger())

	tests := []struct {
		name    string
		spec    string
		wantErr bool
	}{
		{"default", "", false},
		{"every minute", "* * * * *", false},
		{"descriptor", "@daily", false},
		{"garbage", "every day at four", true},
		{"six fields", "0 0 4 * * *", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewScheduler(job, tt.spec, time.UTC, quietLogger())
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewScheduler(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
			if err == nil && len(s.cron.Entries()) != 1 {
				t.Errorf("got %d cron entries, want 1", len(s.cron.Entries()))
			}
		})
	}
}

func TestTickSkipsWhileRunning(t *testing.T) {
	repo := &countingRepo{}
	job := NewJob(repo, quietLogger())
	s, err := NewScheduler(job, DefaultSchedule, time.UTC, quietLogger())
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	s.tick()
	if got := repo.scans.Load(); got != 1 {
		t.Fatalf("scans = %d after one tick, want 1", got)
	}

	job.running.Store(true)
	s.tick()
	if got := repo.scans.Load(); got != 1 {
		t.Errorf("scans = %d, tick ran while a run was active", got)
	}

	if _, err := job.Run(context.Background(), time.Now()); err != ErrRunInProgress {
		t.Errorf("Run() error = %v, want ErrRunInProgress", err)
	}
}

func TestStartStop(t *testing.T) {
	s, err := NewScheduler(NewJob(&countingRepo{}, quietLogger()), DefaultSchedule, time.UTC, quietLogger())
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}
