package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SuspendedCart is a parked working cart: the cashier sets a sale aside and
// resumes it later, with line pricing (including any negotiated markup)
// restored exactly as it was.
type SuspendedCart struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Label      string     `gorm:"size:255" json:"label"`
	IsReturn   bool       `gorm:"default:false" json:"is_return"`
	CustomerID *uuid.UUID `gorm:"type:uuid" json:"customer_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`

	// Relationships
	Items []SuspendedCartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
}

// BeforeCreate generates a UUID before creating a new suspended cart
func (s *SuspendedCart) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SuspendedCart model
func (SuspendedCart) TableName() string {
	return "suspended_carts"
}

// SuspendedCartItem is one persisted line of a parked cart. NegotiatedMarkup
// is stored as text so the percent survives round-tripping at full precision.
type SuspendedCartItem struct {
	ID               uuid.UUID   `gorm:"type:uuid;primary_key" json:"id"`
	CartID           uuid.UUID   `gorm:"type:uuid;not null;index" json:"-"`
	ProductID        uuid.UUID   `gorm:"type:uuid;not null" json:"product_id"`
	Name             string      `gorm:"size:255;not null" json:"name"`
	Code             string      `gorm:"size:100" json:"code"`
	BaseUnitPrice    int64       `gorm:"not null" json:"base_unit_price"`
	UnitPrice        int64       `gorm:"not null" json:"unit_price"`
	Quantity         int         `gorm:"not null" json:"quantity"`
	Mode             PricingMode `gorm:"size:20;not null" json:"pricing_mode"`
	NegotiatedMarkup string      `gorm:"size:32" json:"negotiated_markup,omitempty"`
}

// BeforeCreate generates a UUID before creating a new suspended cart item
func (i *SuspendedCartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SuspendedCartItem model
func (SuspendedCartItem) TableName() string {
	return "suspended_cart_items"
}

// SuspendCart snapshots a working cart into a SuspendedCart record.
func SuspendCart(cart *Cart, label string) *SuspendedCart {
	id := uuid.New()
	lines := cart.Items()
	items := make([]SuspendedCartItem, len(lines))
	for i := range lines {
		items[i] = SuspendedCartItem{
			CartID:        id,
			ProductID:     lines[i].ProductID,
			Name:          lines[i].Name,
			Code:          lines[i].Code,
			BaseUnitPrice: lines[i].BaseUnitPrice,
			UnitPrice:     lines[i].UnitPrice,
			Quantity:      lines[i].Quantity,
			Mode:          lines[i].Mode,
		}
		if lines[i].Mode == PricingNegotiated {
			items[i].NegotiatedMarkup = lines[i].NegotiatedMarkup.String()
		}
	}

	return &SuspendedCart{
		ID:         id,
		Label:      label,
		IsReturn:   cart.IsReturn(),
		CustomerID: cart.CustomerID(),
		CreatedAt:  time.Now(),
		Items:      items,
	}
}

// ToCart rebuilds a working cart from the suspended snapshot.
func (s *SuspendedCart) ToCart() (*Cart, error) {
	items := make([]LineItem, len(s.Items))
	for i := range s.Items {
		items[i] = LineItem{
			ProductID:     s.Items[i].ProductID,
			Name:          s.Items[i].Name,
			Code:          s.Items[i].Code,
			BaseUnitPrice: s.Items[i].BaseUnitPrice,
			UnitPrice:     s.Items[i].UnitPrice,
			Quantity:      s.Items[i].Quantity,
			Mode:          s.Items[i].Mode,
		}
		if s.Items[i].Mode == PricingNegotiated {
			markup, err := decimal.NewFromString(s.Items[i].NegotiatedMarkup)
			if err != nil {
				return nil, err
			}
			items[i].NegotiatedMarkup = markup
		}
	}

	return RestoreCart(items, s.IsReturn, s.CustomerID), nil
}
