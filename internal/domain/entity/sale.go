package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SyncStatus is the delivery state of a locally persisted sale.
type SyncStatus string

const (
	// SyncStatusPending means the sale is durable locally and awaiting
	// confirmed delivery to the back office.
	SyncStatusPending SyncStatus = "pending"
	// SyncStatusSynced means the back office has acknowledged the sale; the
	// local row only remains until cleanup deletes it.
	SyncStatusSynced SyncStatus = "synced"
)

// PendingSale is a finalized receipt held in the terminal's own database.
// The sale snapshot itself is immutable after Finalize; only Status changes,
// and the row is deleted only after it has reached synced.
type PendingSale struct {
	LocalID     uuid.UUID  `gorm:"type:uuid;primary_key" json:"local_id"`
	Status      SyncStatus `gorm:"size:20;not null;index" json:"status"`
	Total       int64      `gorm:"not null" json:"total"`
	Paid        int64      `gorm:"default:0" json:"paid"`
	PaymentType string     `gorm:"size:50" json:"payment_type"`
	IsReturn    bool       `gorm:"default:false" json:"is_return"`
	CustomerID  *uuid.UUID `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	RegisterID  string     `gorm:"size:100;not null" json:"register_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relationships
	Items []PendingSaleItem `gorm:"foreignKey:SaleLocalID;constraint:OnDelete:CASCADE" json:"items"`
}

// TableName returns the table name for the PendingSale model
func (PendingSale) TableName() string {
	return "pending_sales"
}

// Due returns the unpaid remainder of the sale.
func (s *PendingSale) Due() int64 {
	return s.Total - s.Paid
}

// NeedsDebtRecord reports whether a successful submission should be followed
// by a debt registration: a partially paid, non-return sale with a customer
// attached.
func (s *PendingSale) NeedsDebtRecord() bool {
	return s.Due() > 0 && s.CustomerID != nil && !s.IsReturn
}

// PendingSaleItem is one line of a locally persisted sale snapshot.
type PendingSaleItem struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SaleLocalID   uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	ProductID     uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Code          string    `gorm:"size:100" json:"code"`
	BaseUnitPrice int64     `gorm:"not null" json:"base_unit_price"`
	UnitPrice     int64     `gorm:"not null" json:"unit_price"`
	Quantity      int       `gorm:"not null" json:"quantity"`
}

// BeforeCreate generates a UUID before creating a new sale item
func (i *PendingSaleItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PendingSaleItem model
func (PendingSaleItem) TableName() string {
	return "pending_sale_items"
}
