package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/kassahq/terminal-api/internal/domain/pricing"
	"github.com/kassahq/terminal-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// PricingMode says how a line item's unit price is derived.
type PricingMode string

const (
	// PricingTiered derives the unit price from the quantity tier.
	PricingTiered PricingMode = "tiered"
	// PricingNegotiated uses an operator-entered markup percent instead.
	PricingNegotiated PricingMode = "negotiated"
)

// LineItem is one product line in the working cart. UnitPrice is the
// post-markup (or negotiated) price; BaseUnitPrice is the cost-anchored price
// the markup applies to. NegotiatedMarkup is only meaningful when Mode is
// PricingNegotiated.
type LineItem struct {
	ProductID        uuid.UUID       `json:"product_id"`
	Name             string          `json:"name"`
	Code             string          `json:"code"`
	BaseUnitPrice    int64           `json:"base_unit_price"`
	UnitPrice        int64           `json:"unit_price"`
	Quantity         int             `json:"quantity"`
	Mode             PricingMode     `json:"pricing_mode"`
	NegotiatedMarkup decimal.Decimal `json:"negotiated_markup,omitempty"`
}

// LineTotal returns unit price times quantity.
func (li *LineItem) LineTotal() int64 {
	return li.UnitPrice * int64(li.Quantity)
}

// Discount reports the tiered-vs-negotiated difference for display. Zero for
// tiered lines; may be negative when the negotiated price is above the tier.
func (li *LineItem) Discount() int64 {
	if li.Mode != PricingNegotiated {
		return 0
	}
	tiered := pricing.UnitPrice(li.BaseUnitPrice, li.Quantity)
	return pricing.Discount(tiered, li.UnitPrice)
}

// reprice recomputes the unit price for the item's current quantity. The
// negotiated markup is a percent, not a frozen amount, so it is reapplied to
// the base price on every quantity change.
func (li *LineItem) reprice() {
	if li.Mode == PricingNegotiated {
		li.UnitPrice = pricing.NegotiatedPrice(li.BaseUnitPrice, li.NegotiatedMarkup)
		return
	}
	li.UnitPrice = pricing.UnitPrice(li.BaseUnitPrice, li.Quantity)
}

// Cart is the working sale before commitment: an ordered list of line items
// with at most one line per product, a sale/return mode flag, and an optional
// linked customer. It is an explicitly owned value object; callers construct
// it with NewCart and pass it around.
type Cart struct {
	items      []LineItem
	isReturn   bool
	customerID *uuid.UUID
}

// NewCart creates an empty cart in normal sale mode.
func NewCart() *Cart {
	return &Cart{}
}

// RestoreCart rebuilds a cart from previously saved line items (a resumed
// suspended receipt).
func RestoreCart(items []LineItem, isReturn bool, customerID *uuid.UUID) *Cart {
	c := &Cart{
		items:      make([]LineItem, len(items)),
		isReturn:   isReturn,
		customerID: customerID,
	}
	copy(c.items, items)
	return c
}

// Items returns a copy of the current line items.
func (c *Cart) Items() []LineItem {
	items := make([]LineItem, len(c.items))
	copy(items, c.items)
	return items
}

// IsReturn reports whether the cart is in return mode.
func (c *Cart) IsReturn() bool {
	return c.isReturn
}

// CustomerID returns the linked customer, if any.
func (c *Cart) CustomerID() *uuid.UUID {
	return c.customerID
}

// IsEmpty reports whether the cart has no line items.
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *Cart) find(productID uuid.UUID) *LineItem {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			return &c.items[i]
		}
	}
	return nil
}

// AddOrIncrement adds a product to the cart with quantity 1, or increments the
// existing line's quantity. The unit price is recomputed for the new quantity;
// an active negotiated markup stays in effect.
func (c *Cart) AddOrIncrement(product *Product) {
	if item := c.find(product.ID); item != nil {
		item.Quantity++
		item.reprice()
		return
	}

	c.items = append(c.items, LineItem{
		ProductID:     product.ID,
		Name:          product.Name,
		Code:          product.Code,
		BaseUnitPrice: product.BasePrice,
		UnitPrice:     pricing.UnitPrice(product.BasePrice, 1),
		Quantity:      1,
		Mode:          PricingTiered,
	})
}

// SetQuantity sets a line's quantity. Zero removes the line (the register UI's
// clear-the-box-to-delete contract); negative quantities are rejected.
func (c *Cart) SetQuantity(productID uuid.UUID, quantity int) error {
	if quantity < 0 {
		return apperror.ErrInvalidQuantity
	}

	item := c.find(productID)
	if item == nil {
		return apperror.NewNotFoundError("Cart item")
	}

	if quantity == 0 {
		c.Remove(productID)
		return nil
	}

	item.Quantity = quantity
	item.reprice()
	return nil
}

// ApplyNegotiatedMarkup switches a line to negotiated pricing with the given
// markup percent and recomputes its unit price.
func (c *Cart) ApplyNegotiatedMarkup(productID uuid.UUID, percent decimal.Decimal) error {
	if percent.IsNegative() || percent.GreaterThan(decimal.NewFromInt(100)) {
		return apperror.ErrInvalidMarkup
	}

	item := c.find(productID)
	if item == nil {
		return apperror.NewNotFoundError("Cart item")
	}

	item.Mode = PricingNegotiated
	item.NegotiatedMarkup = percent
	item.reprice()
	return nil
}

// ClearNegotiatedMarkup restores tiered pricing on a line.
func (c *Cart) ClearNegotiatedMarkup(productID uuid.UUID) error {
	item := c.find(productID)
	if item == nil {
		return apperror.NewNotFoundError("Cart item")
	}

	item.Mode = PricingTiered
	item.NegotiatedMarkup = decimal.Decimal{}
	item.reprice()
	return nil
}

// Remove drops a line from the cart. Removing an absent product is a no-op.
func (c *Cart) Remove(productID uuid.UUID) {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// Total sums unit price times quantity over the current items. It is always
// recomputed so it cannot drift from the line items.
func (c *Cart) Total() int64 {
	var total int64
	for i := range c.items {
		total += c.items[i].LineTotal()
	}
	return total
}

// SetCustomer links a customer to the working sale.
func (c *Cart) SetCustomer(customerID *uuid.UUID) {
	c.customerID = customerID
}

// ToggleReturnMode flips between sale and return mode. Both directions clear
// the cart: the two modes never share contents.
func (c *Cart) ToggleReturnMode() {
	c.isReturn = !c.isReturn
	c.items = nil
	c.customerID = nil
}

// Clear empties the cart and drops the linked customer, keeping the mode.
func (c *Cart) Clear() {
	c.items = nil
	c.customerID = nil
}

// Finalize snapshots the cart into an immutable PendingSale. The cart itself
// is left untouched; the caller clears it once the pipeline has accepted the
// sale.
func (c *Cart) Finalize(paymentType string, paid int64, registerID string) (*PendingSale, error) {
	if c.IsEmpty() {
		return nil, apperror.ErrEmptyCart
	}

	localID := uuid.New()
	items := make([]PendingSaleItem, len(c.items))
	for i := range c.items {
		items[i] = PendingSaleItem{
			SaleLocalID:   localID,
			ProductID:     c.items[i].ProductID,
			Name:          c.items[i].Name,
			Code:          c.items[i].Code,
			BaseUnitPrice: c.items[i].BaseUnitPrice,
			UnitPrice:     c.items[i].UnitPrice,
			Quantity:      c.items[i].Quantity,
		}
	}

	return &PendingSale{
		LocalID:     localID,
		Status:      SyncStatusPending,
		Total:       c.Total(),
		Paid:        paid,
		PaymentType: paymentType,
		IsReturn:    c.isReturn,
		CustomerID:  c.customerID,
		RegisterID:  registerID,
		CreatedAt:   time.Now(),
		Items:       items,
	}, nil
}
