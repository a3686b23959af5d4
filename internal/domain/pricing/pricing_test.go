package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTieredMarkupPercent(t *testing.T) {
	cases := []struct {
		quantity int
		want     int64
	}{
		{1, 15},
		{9, 15},
		{10, 13},
		{50, 13},
		{99, 13},
		{100, 11},
		{150, 11},
		{1000, 11},
	}

	for _, tc := range cases {
		got := TieredMarkupPercent(tc.quantity)
		if !got.Equal(decimal.NewFromInt(tc.want)) {
			t.Errorf("TieredMarkupPercent(%d) = %s, want %d", tc.quantity, got, tc.want)
		}
	}
}

func TestUnitPrice(t *testing.T) {
	cases := []struct {
		basePrice int64
		quantity  int
		want      int64
	}{
		{1000, 1, 1150},
		{1000, 50, 1130},
		{1000, 150, 1110},
		{1000, 9, 1150},
		{1000, 10, 1130},
		{1000, 99, 1130},
		{1000, 100, 1110},
		// Rounding to the nearest whole unit
		{333, 1, 383},  // 333 * 1.15 = 382.95
		{999, 50, 1129}, // 999 * 1.13 = 1128.87
	}

	for _, tc := range cases {
		got := UnitPrice(tc.basePrice, tc.quantity)
		if got != tc.want {
			t.Errorf("UnitPrice(%d, %d) = %d, want %d", tc.basePrice, tc.quantity, got, tc.want)
		}
	}
}

func TestUnitPriceIdempotent(t *testing.T) {
	first := UnitPrice(1000, 42)
	second := UnitPrice(1000, 42)
	if first != second {
		t.Errorf("UnitPrice not idempotent: %d != %d", first, second)
	}
}

func TestNegotiatedPrice(t *testing.T) {
	got := NegotiatedPrice(1000, decimal.NewFromInt(5))
	if got != 1050 {
		t.Errorf("NegotiatedPrice(1000, 5) = %d, want 1050", got)
	}

	// Fractional markup percent is allowed
	got = NegotiatedPrice(1000, decimal.RequireFromString("12.5"))
	if got != 1125 {
		t.Errorf("NegotiatedPrice(1000, 12.5) = %d, want 1125", got)
	}

	// Zero markup sells at base price
	got = NegotiatedPrice(1000, decimal.Zero)
	if got != 1000 {
		t.Errorf("NegotiatedPrice(1000, 0) = %d, want 1000", got)
	}
}

func TestDiscount(t *testing.T) {
	tiered := UnitPrice(1000, 1)
	negotiated := NegotiatedPrice(1000, decimal.NewFromInt(5))
	if d := Discount(tiered, negotiated); d != 100 {
		t.Errorf("Discount(%d, %d) = %d, want 100", tiered, negotiated, d)
	}

	// Negotiated above tier shows as a negative discount
	higher := NegotiatedPrice(1000, decimal.NewFromInt(20))
	if d := Discount(tiered, higher); d != -50 {
		t.Errorf("Discount(%d, %d) = %d, want -50", tiered, higher, d)
	}
}
