// internal/domain/purchaseorder/entity.go
package purchaseorder

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/inventory-backend/internal/domain/supplierarticle"
)

// StateID identifies a row of the order_states lookup table
type StateID uint

const (
	StatePending   StateID = 1
	StateSent      StateID = 2
	StateFinalized StateID = 3
	StateCancelled StateID = 4
)

var stateNames = map[StateID]string{
	StatePending:   "pending",
	StateSent:      "sent",
	StateFinalized: "finalized",
	StateCancelled: "cancelled",
}

// transitions lists the allowed target states per source state
var transitions = map[StateID][]StateID{
	StatePending: {StatePending, StateSent, StateCancelled},
	StateSent:    {StateFinalized},
}

// String returns the state's name
func (s StateID) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", uint(s))
}

// IsValid reports whether s is a seeded state
func (s StateID) IsValid() bool {
	_, ok := stateNames[s]
	return ok
}

// IsTerminal reports whether no transition leaves s
func (s StateID) IsTerminal() bool {
	return s == StateFinalized || s == StateCancelled
}

// IsOpen reports whether the order still counts as on-order stock
func (s StateID) IsOpen() bool {
	return s == StatePending || s == StateSent
}

// CanTransitionTo checks the order lifecycle
func (s StateID) CanTransitionTo(target StateID) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// ParseState resolves a state name
func ParseState(name string) (StateID, error) {
	for id, n := range stateNames {
		if n == name {
			return id, nil
		}
	}
	return 0, fmt.Errorf("unknown order state %q", name)
}

func (s StateID) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *StateID) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseState(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// OpenStates are the states that block deletions and duplicate reorders
var OpenStates = []StateID{StatePending, StateSent}

// OrderState is the seeded lookup row
type OrderState struct {
	ID   StateID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name string  `gorm:"uniqueIndex;not null;size:20" json:"name"`
}

// TableName specifies the table name for OrderState
func (OrderState) TableName() string {
	return "order_states"
}

// SeedStates returns the lookup rows in id order
func SeedStates() []OrderState {
	return []OrderState{
		{ID: StatePending, Name: StatePending.String()},
		{ID: StateSent, Name: StateSent.String()},
		{ID: StateFinalized, Name: StateFinalized.String()},
		{ID: StateCancelled, Name: StateCancelled.String()},
	}
}

// Source records what raised an order
type Source string

const (
	SourceManual         Source = "manual"
	SourceReorderPoint   Source = "reorder_point"
	SourcePeriodicReview Source = "periodic_review"
)

// PurchaseOrder represents an order placed with a supplier for one article
type PurchaseOrder struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	SupplierArticleID  uint            `gorm:"not null;index" json:"supplier_article_id"`
	ArticleID          uint            `gorm:"not null;index" json:"article_id"`
	SupplierID         uint            `gorm:"not null;index" json:"supplier_id"`
	Quantity           int             `gorm:"not null" json:"quantity"`
	UnitPrice          decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	OrderCost          decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"order_cost"`
	TotalAmount        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_amount"`
	StateID            StateID         `gorm:"not null;index;default:1" json:"state"`
	Source             Source          `gorm:"type:varchar(20);not null;default:'manual'" json:"source"`
	EstimatedReceiptAt time.Time       `gorm:"not null" json:"estimated_receipt_at"`
	ReceivedAt         *time.Time      `json:"received_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`

	// Relationships
	SupplierArticle *supplierarticle.SupplierArticle `gorm:"foreignKey:SupplierArticleID" json:"supplier_article,omitempty"`
}

// TableName specifies the table name for PurchaseOrder
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewOrder builds a pending order for an association. orderCost is added on
// top of the line amount and is zero for orders that do not carry it.
func NewOrder(sa *supplierarticle.SupplierArticle, quantity int, orderCost decimal.Decimal, source Source, now time.Time) *PurchaseOrder {
	o := &PurchaseOrder{
		SupplierArticleID:  sa.ID,
		ArticleID:          sa.ArticleID,
		SupplierID:         sa.SupplierID,
		UnitPrice:          sa.UnitPrice,
		OrderCost:          orderCost,
		StateID:            StatePending,
		Source:             source,
		EstimatedReceiptAt: now.AddDate(0, 0, sa.LeadTimeDays),
	}
	o.SetQuantity(quantity)
	return o
}

// SetQuantity changes the quantity and recalculates the total from the stored unit price
func (o *PurchaseOrder) SetQuantity(quantity int) {
	o.Quantity = quantity
	o.TotalAmount = o.OrderCost.Add(o.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))).Round(2)
}
