package entity

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/kassahq/terminal-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

func testProduct(name string, basePrice int64) *Product {
	return &Product{
		ID:        uuid.New(),
		Name:      name,
		Code:      "P-" + name,
		BasePrice: basePrice,
		IsActive:  true,
	}
}

func TestCartAddOrIncrement(t *testing.T) {
	cart := NewCart()
	p := testProduct("rice", 1000)

	cart.AddOrIncrement(p)
	items := cart.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Quantity != 1 {
		t.Errorf("expected quantity 1, got %d", items[0].Quantity)
	}
	if items[0].UnitPrice != 1150 {
		t.Errorf("expected tier-1 price 1150, got %d", items[0].UnitPrice)
	}

	// Same product increments, never duplicates
	cart.AddOrIncrement(p)
	items = cart.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 item after re-add, got %d", len(items))
	}
	if items[0].Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", items[0].Quantity)
	}
}

func TestCartUniquePerProduct(t *testing.T) {
	cart := NewCart()
	a := testProduct("a", 500)
	b := testProduct("b", 700)

	cart.AddOrIncrement(a)
	cart.AddOrIncrement(b)
	cart.AddOrIncrement(a)
	if err := cart.SetQuantity(b.ID, 12); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}

	seen := make(map[uuid.UUID]bool)
	for _, item := range cart.Items() {
		if seen[item.ProductID] {
			t.Fatalf("duplicate line for product %s", item.ProductID)
		}
		seen[item.ProductID] = true
	}
}

func TestCartSetQuantityRepricesTier(t *testing.T) {
	cart := NewCart()
	p := testProduct("flour", 1000)
	cart.AddOrIncrement(p)

	if err := cart.SetQuantity(p.ID, 50); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	if got := cart.Items()[0].UnitPrice; got != 1130 {
		t.Errorf("expected 13%% tier price 1130 at quantity 50, got %d", got)
	}

	if err := cart.SetQuantity(p.ID, 150); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	if got := cart.Items()[0].UnitPrice; got != 1110 {
		t.Errorf("expected 11%% tier price 1110 at quantity 150, got %d", got)
	}
}

func TestCartSetQuantityZeroRemoves(t *testing.T) {
	cart := NewCart()
	p := testProduct("sugar", 800)
	cart.AddOrIncrement(p)

	if err := cart.SetQuantity(p.ID, 0); err != nil {
		t.Fatalf("SetQuantity(0): %v", err)
	}
	if !cart.IsEmpty() {
		t.Error("expected cart to be empty after setting quantity to 0")
	}
}

func TestCartSetQuantityNegativeRejected(t *testing.T) {
	cart := NewCart()
	p := testProduct("salt", 300)
	cart.AddOrIncrement(p)

	err := cart.SetQuantity(p.ID, -1)
	if !errors.Is(err, apperror.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	// Cart unchanged
	if got := cart.Items()[0].Quantity; got != 1 {
		t.Errorf("expected quantity to stay 1, got %d", got)
	}
}

func TestCartNegotiatedMarkup(t *testing.T) {
	cart := NewCart()
	p := testProduct("oil", 1000)
	cart.AddOrIncrement(p)

	if err := cart.ApplyNegotiatedMarkup(p.ID, decimal.NewFromInt(5)); err != nil {
		t.Fatalf("ApplyNegotiatedMarkup: %v", err)
	}
	item := cart.Items()[0]
	if item.UnitPrice != 1050 {
		t.Errorf("expected negotiated price 1050, got %d", item.UnitPrice)
	}
	if item.Discount() != 100 {
		t.Errorf("expected discount 100 against tier price 1150, got %d", item.Discount())
	}

	// The override is a percent: a quantity change reapplies it to the base price
	if err := cart.SetQuantity(p.ID, 50); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	if got := cart.Items()[0].UnitPrice; got != 1050 {
		t.Errorf("expected negotiated price to hold at 1050 after quantity change, got %d", got)
	}

	// Clearing restores tiered pricing
	if err := cart.ClearNegotiatedMarkup(p.ID); err != nil {
		t.Fatalf("ClearNegotiatedMarkup: %v", err)
	}
	if got := cart.Items()[0].UnitPrice; got != 1130 {
		t.Errorf("expected tier price 1130 after clearing override, got %d", got)
	}
}

func TestCartNegotiatedMarkupOutOfRange(t *testing.T) {
	cart := NewCart()
	p := testProduct("tea", 1000)
	cart.AddOrIncrement(p)

	if err := cart.ApplyNegotiatedMarkup(p.ID, decimal.NewFromInt(-1)); !errors.Is(err, apperror.ErrInvalidMarkup) {
		t.Errorf("expected ErrInvalidMarkup for negative percent, got %v", err)
	}
	if err := cart.ApplyNegotiatedMarkup(p.ID, decimal.NewFromInt(101)); !errors.Is(err, apperror.ErrInvalidMarkup) {
		t.Errorf("expected ErrInvalidMarkup for percent over 100, got %v", err)
	}
}

func TestCartTotal(t *testing.T) {
	cart := NewCart()
	a := testProduct("a", 1000)
	b := testProduct("b", 2000)

	cart.AddOrIncrement(a)
	cart.AddOrIncrement(b)
	if err := cart.SetQuantity(b.ID, 10); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}

	var want int64
	for _, item := range cart.Items() {
		want += item.UnitPrice * int64(item.Quantity)
	}
	if got := cart.Total(); got != want {
		t.Errorf("Total() = %d, want sum of line totals %d", got, want)
	}
}

func TestCartToggleReturnModeClears(t *testing.T) {
	cart := NewCart()
	cart.AddOrIncrement(testProduct("a", 1000))
	customerID := uuid.New()
	cart.SetCustomer(&customerID)

	cart.ToggleReturnMode()
	if !cart.IsReturn() {
		t.Error("expected return mode after toggle")
	}
	if !cart.IsEmpty() {
		t.Error("expected cart cleared when entering return mode")
	}

	cart.AddOrIncrement(testProduct("b", 500))
	cart.ToggleReturnMode()
	if cart.IsReturn() {
		t.Error("expected sale mode after second toggle")
	}
	if !cart.IsEmpty() {
		t.Error("expected cart cleared when leaving return mode")
	}
}

func TestCartFinalize(t *testing.T) {
	cart := NewCart()

	if _, err := cart.Finalize("cash", 0, "register-1"); !errors.Is(err, apperror.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}

	p := testProduct("rice", 1000)
	cart.AddOrIncrement(p)
	customerID := uuid.New()
	cart.SetCustomer(&customerID)

	sale, err := cart.Finalize("cash", 500, "register-1")
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if sale.LocalID == uuid.Nil {
		t.Error("expected a generated local ID")
	}
	if sale.Status != SyncStatusPending {
		t.Errorf("expected initial status pending, got %s", sale.Status)
	}
	if sale.Total != 1150 {
		t.Errorf("expected total 1150, got %d", sale.Total)
	}
	if sale.Due() != 650 {
		t.Errorf("expected due 650, got %d", sale.Due())
	}
	if !sale.NeedsDebtRecord() {
		t.Error("expected partially paid customer sale to need a debt record")
	}
	if len(sale.Items) != 1 {
		t.Fatalf("expected 1 sale item, got %d", len(sale.Items))
	}

	// Finalize does not clear the cart; the caller does once the pipeline accepts
	if cart.IsEmpty() {
		t.Error("expected cart to remain populated after Finalize")
	}
}

func TestSuspendAndResumeCart(t *testing.T) {
	cart := NewCart()
	p := testProduct("rice", 1000)
	cart.AddOrIncrement(p)
	if err := cart.ApplyNegotiatedMarkup(p.ID, decimal.RequireFromString("7.5")); err != nil {
		t.Fatalf("ApplyNegotiatedMarkup: %v", err)
	}

	suspended := SuspendCart(cart, "table 4")
	restored, err := suspended.ToCart()
	if err != nil {
		t.Fatalf("ToCart: %v", err)
	}

	items := restored.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 restored item, got %d", len(items))
	}
	if items[0].Mode != PricingNegotiated {
		t.Errorf("expected negotiated mode restored, got %s", items[0].Mode)
	}
	if !items[0].NegotiatedMarkup.Equal(decimal.RequireFromString("7.5")) {
		t.Errorf("expected markup 7.5 restored, got %s", items[0].NegotiatedMarkup)
	}
	if items[0].UnitPrice != cart.Items()[0].UnitPrice {
		t.Errorf("expected unit price preserved across suspend/resume")
	}
}
