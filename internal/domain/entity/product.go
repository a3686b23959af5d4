package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a locally cached mirror of the back-office catalog, kept on the
// terminal so the register can keep selling while offline. Prices are whole
// currency units; BasePrice is the cost-anchored price that markup applies to.
type Product struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Code      string    `gorm:"size:100;unique;not null" json:"code"`
	BasePrice int64     `gorm:"not null" json:"base_price"`
	Unit      string    `gorm:"size:50" json:"unit,omitempty"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "cached_products"
}
