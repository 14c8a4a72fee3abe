// internal/domain/supplier/entity.go
package supplier

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Supplier represents a vendor that articles can be purchased from
type Supplier struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	FirstName string         `gorm:"not null;size:100" json:"first_name"`
	LastName  string         `gorm:"size:100" json:"last_name"`
	Email     string         `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Phone     string         `gorm:"size:30" json:"phone"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName specifies the table name for Supplier
func (Supplier) TableName() string {
	return "suppliers"
}

// FullName returns the supplier's display name
func (s *Supplier) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// IsActive reports whether the supplier has not been soft-deleted
func (s *Supplier) IsActive() bool {
	return !s.DeletedAt.Valid
}
