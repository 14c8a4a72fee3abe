package purchaseorder

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/inventory-backend/internal/domain/supplierarticle"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to StateID
		want     bool
	}{
		{StatePending, StatePending, true},
		{StatePending, StateSent, true},
		{StatePending, StateCancelled, true},
		{StatePending, StateFinalized, false},
		{StateSent, StateFinalized, true},
		{StateSent, StateCancelled, false},
		{StateSent, StatePending, false},
		{StateFinalized, StatePending, false},
		{StateCancelled, StateSent, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStateJSON(t *testing.T) {
	b, err := json.Marshal(StateSent)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(b) != `"sent"` {
		t.Errorf("Marshal() = %s, want \"sent\"", b)
	}

	var s StateID
	if err := json.Unmarshal([]byte(`"cancelled"`), &s); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if s != StateCancelled {
		t.Errorf("Unmarshal() = %v, want cancelled", s)
	}

	if err := json.Unmarshal([]byte(`"shipped"`), &s); err == nil {
		t.Error("Unmarshal() accepted an unknown state")
	}
}

func TestNewOrder(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	sa := &supplierarticle.SupplierArticle{
		ID:           7,
		ArticleID:    3,
		SupplierID:   2,
		UnitPrice:    decimal.NewFromFloat(12.5),
		LeadTimeDays: 5,
	}

	o := NewOrder(sa, 40, decimal.NewFromInt(25), SourcePeriodicReview, now)
	if o.StateID != StatePending {
		t.Errorf("StateID = %v, want pending", o.StateID)
	}
	if got := o.TotalAmount.StringFixed(2); got != "525.00" {
		t.Errorf("TotalAmount = %s, want 525.00", got)
	}
	if want := now.AddDate(0, 0, 5); !o.EstimatedReceiptAt.Equal(want) {
		t.Errorf("EstimatedReceiptAt = %v, want %v", o.EstimatedReceiptAt, want)
	}

	o.SetQuantity(10)
	if got := o.TotalAmount.StringFixed(2); got != "150.00" {
		t.Errorf("TotalAmount after SetQuantity = %s, want 150.00", got)
	}
}
